package export

import (
	"context"
	"fmt"
	"strings"
)

// Strategy names reported in Result.Strategy.
const (
	StrategyDirect    = "direct"
	StrategyClipboard = "clipboard"
	StrategyNone      = "none"
	StrategyPreview   = "preview"
)

// textStrategy is one attempt at reading a leaf's text. It returns the text
// and ok=true on acceptance, or ok=false ("no opinion") to let the chain
// move on. Errors are absorbed by the chain: a failed attempt yields
// nothing and is not retried.
type textStrategy struct {
	name    string
	attempt func(ctx context.Context, s Surface, leaf Node, cfg Config) (string, bool, error)
}

// ExtractText selects the leaf, waits for the viewer to render, then runs
// the strategy chain. Direct read goes first: it has no focus dependency
// and no side effect on the clipboard. The clipboard fallback only runs
// when the execution context holds input focus, which the surface requires
// before permitting clipboard access.
//
// Both attempts apply the same acceptance filter: non-trivial length and
// not matching the boilerplate predicate (a false-positive signature of the
// surface's generic "file created" message). An exhausted chain produces a
// Placeholder result, never an error: one unreadable leaf must not abort
// the run.
func ExtractText(ctx context.Context, s Surface, leaf Node, fullPath string, cfg Config) (Result, error) {
	cfg.defaults()

	if err := s.Trigger(ctx, leaf.ID, ActionSelect); err != nil {
		return placeholderResult(fullPath, StrategyNone, "select failed: "+err.Error()), nil
	}
	if err := sleep(ctx, cfg.DisplaySettle.Std()); err != nil {
		return Result{}, err
	}

	chain := []textStrategy{
		{name: StrategyDirect, attempt: directRead},
		{name: StrategyClipboard, attempt: clipboardRead},
	}

	for _, st := range chain {
		text, ok, err := st.attempt(ctx, s, leaf, cfg)
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, err
			}
			cfg.Logger.Debug("export: strategy failed", "strategy", st.name, "leaf", leaf.Name, "error", err)
			continue
		}
		if ok {
			return Result{Text: text, Kind: ResultText, Strategy: st.name}, nil
		}
	}

	return placeholderResult(fullPath, StrategyNone, "all text strategies empty"), nil
}

func directRead(ctx context.Context, s Surface, leaf Node, cfg Config) (string, bool, error) {
	text, err := s.DisplayedText(ctx)
	if err != nil {
		return "", false, err
	}
	if !acceptText(text, cfg) {
		return "", false, nil
	}
	return text, true, nil
}

func clipboardRead(ctx context.Context, s Surface, leaf Node, cfg Config) (string, bool, error) {
	focused, err := s.Focused(ctx)
	if err != nil || !focused {
		// No focus means the surface will refuse clipboard access; skip
		// silently rather than fail the leaf.
		return "", false, err
	}

	if err := s.CopyToClipboard(ctx, leaf.ID); err != nil {
		return "", false, err
	}
	if err := sleep(ctx, cfg.ClipboardSettle.Std()); err != nil {
		return "", false, err
	}

	text, err := s.ReadClipboard(ctx)
	if err != nil {
		return "", false, err
	}
	if !acceptText(text, cfg) {
		return "", false, nil
	}
	return text, true, nil
}

// acceptText is the shared sanity filter for both strategies.
func acceptText(text string, cfg Config) bool {
	if len(strings.TrimSpace(text)) < cfg.MinTextLen {
		return false
	}
	return !cfg.Boilerplate(text)
}

func placeholderResult(fullPath, strategy, note string) Result {
	return Result{
		Text:     fmt.Sprintf("[arbex] extraction failed for %s: %s\n", fullPath, note),
		Kind:     ResultPlaceholder,
		Strategy: strategy,
		Note:     note,
	}
}
