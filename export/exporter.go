// CLAUDE:SUMMARY Orchestrates one export run: expand to fixed point, resolve paths, extract each leaf, assemble the ZIP.
// Package export reconstructs a file/folder tree rendered by an external,
// asynchronously updating surface and materializes it into one ZIP
// archive. The surface exposes no data API: structure and content are only
// observable by triggering UI state changes and reading rendered output
// back, possibly through more than one channel (viewer text, a
// copy-to-clipboard side effect, or an embedded data-URI preview for
// non-text content).
//
// The engine is strictly sequential. The surface keeps single-focus,
// single-selection UI state; concurrent triggers would corrupt it, so
// exactly one logical flow drives it, suspending at fixed settle points.
//
// Failure handling splits two ways: global failures (surface unavailable,
// no tree found) abort the run before any artifact exists; per-leaf
// failures degrade to placeholder entries and the run continues. Partial
// export is always preferred over total failure.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Recorder receives per-leaf outcomes for diagnostics. The manifest
// package implements it over sqlite; a nil Recorder disables recording.
type Recorder interface {
	Record(ctx context.Context, e RecordEntry)
}

// RecordEntry is one processed leaf, as seen by a Recorder.
type RecordEntry struct {
	RunID    string
	Path     string
	Kind     string // text | binary | placeholder
	Strategy string
	OK       bool
	Note     string
	Duration time.Duration
}

// Report summarizes a finished run.
type Report struct {
	RunID        string    `json:"run_id"`
	ArtifactName string    `json:"artifact_name"`
	Artifact     []byte    `json:"-"`
	Leaves       int       `json:"leaves"`
	TextEntries  int       `json:"text_entries"`
	BinEntries   int       `json:"binary_entries"`
	Placeholders int       `json:"placeholders"`
	Stalled      int       `json:"stalled_containers"`
	Passes       int       `json:"expansion_passes"`
	Started      time.Time `json:"started"`
	Finished     time.Time `json:"finished"`
}

// Exporter runs the full extraction pipeline against one surface.
type Exporter struct {
	surface  Surface
	cfg      Config
	classify *Classifier
	rec      Recorder
}

// New creates an Exporter. rec may be nil.
func New(s Surface, cfg Config, rec Recorder) *Exporter {
	cfg.defaults()
	return &Exporter{
		surface:  s,
		cfg:      cfg,
		classify: NewClassifier(cfg.BinaryExtensions, false),
		rec:      rec,
	}
}

// Run executes one export: expansion to fixed point, enumeration, per-leaf
// path resolution + extraction, archive assembly. Leaves are processed in
// the surface's enumeration order, which is not guaranteed stable across
// runs; the only ordering contract on the artifact is path uniqueness.
func (e *Exporter) Run(ctx context.Context) (*Report, error) {
	if e.surface == nil {
		return nil, ErrNoSurface
	}
	log := e.cfg.Logger
	runID := uuid.Must(uuid.NewV7()).String()
	started := time.Now()

	passes, stalled, err := ExpandAll(ctx, e.surface, e.cfg)
	if err != nil {
		return nil, fmt.Errorf("export: expansion: %w", err)
	}

	nodes, err := e.surface.Enumerate(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: enumerate: %w", err)
	}
	if len(nodes) == 0 {
		return nil, ErrEmptyTree
	}

	rep := &Report{RunID: runID, Stalled: len(stalled), Passes: passes, Started: started}
	asm := NewAssembler()

	for _, n := range nodes {
		if n.Kind != KindLeaf {
			continue
		}
		rep.Leaves++

		leafStart := time.Now()
		res, fullPath, err := e.extractLeaf(ctx, n)
		if err != nil {
			return nil, err // only context cancellation propagates here
		}

		asm.Add(Entry{FullPath: fullPath, Payload: res.Payload(), Kind: res.Kind})

		switch res.Kind {
		case ResultText:
			rep.TextEntries++
		case ResultBinary:
			rep.BinEntries++
		default:
			rep.Placeholders++
			log.Warn("export: leaf degraded to placeholder", "path", fullPath, "note", res.Note)
		}

		if e.rec != nil {
			e.rec.Record(ctx, RecordEntry{
				RunID:    runID,
				Path:     fullPath,
				Kind:     res.Kind.String(),
				Strategy: res.Strategy,
				OK:       res.Kind != ResultPlaceholder,
				Note:     res.Note,
				Duration: time.Since(leafStart),
			})
		}
	}

	artifact, err := asm.Finalize()
	if err != nil {
		return nil, err
	}
	rep.Artifact = artifact
	rep.Finished = time.Now()
	rep.ArtifactName = ArtifactName(e.cfg.Prefix, rep.Finished)

	log.Info("export: run complete",
		"run", runID,
		"artifact", rep.ArtifactName,
		"leaves", rep.Leaves,
		"placeholders", rep.Placeholders,
		"stalled", rep.Stalled,
		"elapsed", time.Since(started))
	return rep, nil
}

// extractLeaf resolves one leaf's path and extracts its content. Every
// failure mode short of context cancellation degrades to a placeholder.
func (e *Exporter) extractLeaf(ctx context.Context, n Node) (Result, string, error) {
	segs, err := ResolvePath(ctx, e.surface, n, e.cfg.MaxDepth)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, "", err
		}
		// Partial segments are still usable; the leaf lands shallower than
		// it should rather than vanishing.
		e.cfg.Logger.Warn("export: path resolution degraded", "leaf", n.Name, "error", err)
	}
	fullPath := JoinPath(segs, n.Name)

	var res Result
	if e.classify.Classify(n.Name) == ResultBinary {
		res, err = ExtractBinary(ctx, e.surface, n, fullPath, e.cfg)
	} else {
		res, err = ExtractText(ctx, e.surface, n, fullPath, e.cfg)
	}
	if err != nil {
		return Result{}, "", err
	}
	return res, fullPath, nil
}
