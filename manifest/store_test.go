package manifest

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/arbex/export"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestStore_RecordAndSummarize(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	started := time.Now()

	s.Record(ctx, export.RecordEntry{
		RunID: "run-1", Path: "src/app.ts", Kind: "text",
		Strategy: export.StrategyDirect, OK: true, Duration: 12 * time.Millisecond,
	})
	s.Record(ctx, export.RecordEntry{
		RunID: "run-1", Path: "img/logo.png", Kind: "placeholder",
		Strategy: export.StrategyPreview, OK: false, Note: export.NoteNoPreview,
	})

	// Close drains the async buffer before we read back.
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	sum, err := s.Summarize(ctx, "run-1")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if sum.Entries != 2 || sum.OK != 1 || sum.Placeholders != 1 {
		t.Fatalf("summary: %+v", sum)
	}
	if len(sum.Notes) != 1 || sum.Notes[0] != export.NoteNoPreview {
		t.Fatalf("notes: %v", sum.Notes)
	}

	if err := s.LogRun(ctx, "run-1", "arbex_x.zip", started, time.Now()); err != nil {
		t.Fatalf("log run: %v", err)
	}
}

func TestStore_UnknownRunIsEmpty(t *testing.T) {
	s := testStore(t)
	defer s.Close()

	sum, err := s.Summarize(context.Background(), "no-such-run")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if sum.Entries != 0 {
		t.Fatalf("entries: got %d, want 0", sum.Entries)
	}
}

func TestStore_CloseIdempotent(t *testing.T) {
	s := testStore(t)
	if err := s.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
