// CLAUDE:SUMMARY Runner: wires browser, accessor, engine and manifest into one export run against a live page.
// Package arbex exports a file/folder tree rendered by a dynamic web
// surface into a single ZIP archive. The surface exposes no data API;
// arbex drives its UI (expand folders, select files) through a headless
// or headful Chrome and reads the rendered output back.
//
// The reusable extraction engine lives in the export package; this
// package binds it to a live browser and an optional sqlite manifest.
package arbex

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/arbex/export"
	"github.com/hazyhaar/arbex/internal/browser"
	"github.com/hazyhaar/arbex/manifest"
)

// Runner owns everything a run needs: the Chrome process, the tab showing
// the surface, the engine, and the manifest store.
type Runner struct {
	cfg    Config
	logger *slog.Logger

	mgr     *browser.Manager
	tab     *browser.Tab
	surface export.Surface

	db    *sql.DB
	store *manifest.Store
}

// New creates a Runner. Call Start before Export.
func New(cfg Config, logger *slog.Logger) *Runner {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	cfg.Browser.Logger = logger
	cfg.Engine.Logger = logger
	return &Runner{cfg: cfg, logger: logger}
}

// Start launches the browser, opens the target page and prepares the
// accessor. Any failure here is global: no artifact will be produced.
func (r *Runner) Start(ctx context.Context) error {
	if err := r.cfg.Validate(); err != nil {
		return err
	}

	r.mgr = browser.NewManager(r.cfg.Browser)
	if _, err := r.mgr.Start(ctx); err != nil {
		return fmt.Errorf("arbex: %w", err)
	}

	tab, err := browser.OpenTab(ctx, r.mgr, r.cfg.URL)
	if err != nil {
		r.mgr.Close()
		return fmt.Errorf("arbex: %w", err)
	}
	r.tab = tab

	// Clipboard access requires input focus; only meaningful headful.
	if r.mgr.Headful() {
		if err := tab.Focus(ctx); err != nil {
			r.logger.Warn("arbex: focus failed, clipboard fallback degraded", "error", err)
		}
	}

	acc, err := browser.NewAccessor(ctx, tab, r.cfg.Selectors, r.mgr.Headful(), r.logger)
	if err != nil {
		r.Stop()
		return fmt.Errorf("arbex: %w", err)
	}
	r.surface = acc

	if r.cfg.ManifestPath != "" {
		db, err := manifest.Open(r.cfg.ManifestPath)
		if err != nil {
			r.Stop()
			return fmt.Errorf("arbex: %w", err)
		}
		r.db = db
		r.store = manifest.NewStore(db, r.logger)
	}

	return nil
}

// Export runs one extraction and writes the archive into OutputDir. It
// returns the engine report plus the artifact's path on disk.
func (r *Runner) Export(ctx context.Context) (*export.Report, string, error) {
	var rec export.Recorder
	if r.store != nil {
		rec = r.store
	}

	rep, err := export.New(r.surface, r.cfg.Engine, rec).Run(ctx)
	if err != nil {
		return nil, "", err
	}

	if r.store != nil {
		if err := r.store.LogRun(ctx, rep.RunID, rep.ArtifactName, rep.Started, rep.Finished); err != nil {
			r.logger.Warn("arbex: manifest run log failed", "error", err)
		}
	}

	path := filepath.Join(r.cfg.OutputDir, rep.ArtifactName)
	if err := os.WriteFile(path, rep.Artifact, 0o644); err != nil {
		return nil, "", fmt.Errorf("arbex: write artifact: %w", err)
	}
	r.logger.Info("arbex: artifact written", "path", path, "bytes", len(rep.Artifact))
	return rep, path, nil
}

// Stop releases every resource. Safe to call after a partial Start.
func (r *Runner) Stop() {
	if r.store != nil {
		r.store.Close()
		r.store = nil
	}
	if r.db != nil {
		r.db.Close()
		r.db = nil
	}
	if r.tab != nil {
		r.tab.Close()
		r.tab = nil
	}
	if r.mgr != nil {
		r.mgr.Close()
		r.mgr = nil
	}
}
