package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"time"
)

// Assembler accumulates entries for one export run and finalizes them into
// a single ZIP artifact. It owns the accumulation exclusively; hand-off
// happens at Finalize. Entry order is insertion order except that a path
// collision keeps the later payload in the earlier slot (last-write-wins,
// matching the at-most-one-entry-per-path semantics of the archive format).
type Assembler struct {
	order   []string
	entries map[string]Entry
}

// NewAssembler creates an empty Assembler.
func NewAssembler() *Assembler {
	return &Assembler{entries: make(map[string]Entry)}
}

// Add records an entry, overwriting any previous entry at the same path.
func (a *Assembler) Add(e Entry) {
	if _, seen := a.entries[e.FullPath]; !seen {
		a.order = append(a.order, e.FullPath)
	}
	a.entries[e.FullPath] = e
}

// Len returns the number of distinct paths recorded.
func (a *Assembler) Len() int { return len(a.order) }

// Entries returns the recorded entries in insertion order.
func (a *Assembler) Entries() []Entry {
	out := make([]Entry, 0, len(a.order))
	for _, p := range a.order {
		out = append(out, a.entries[p])
	}
	return out
}

// Finalize encodes all entries into one ZIP byte stream. Zero entries is a
// distinguished whole-run failure (ErrNothingExported), not a silently
// empty artifact. Only leaf entries are written; directories exist solely
// through the "/"-joined entry paths.
func (a *Assembler) Finalize() ([]byte, error) {
	if len(a.order) == 0 {
		return nil, ErrNothingExported
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range a.order {
		e := a.entries[p]
		w, err := zw.Create(strings.TrimPrefix(e.FullPath, "/"))
		if err != nil {
			return nil, fmt.Errorf("export: zip create %q: %w", e.FullPath, err)
		}
		if _, err := w.Write(e.Payload); err != nil {
			return nil, fmt.Errorf("export: zip write %q: %w", e.FullPath, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("export: zip close: %w", err)
	}
	return buf.Bytes(), nil
}

// ArtifactName builds the output filename: <prefix>_<RFC3339 timestamp with
// ":" and "." replaced by "-">.zip.
func ArtifactName(prefix string, now time.Time) string {
	ts := now.UTC().Format(time.RFC3339)
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	return prefix + "_" + ts + ".zip"
}
