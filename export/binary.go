package export

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

// Placeholder notes for the two binary sub-cases. Kept distinct because
// "nothing rendered" and "rendered but undecodable" diagnose differently.
const (
	NoteNoPreview    = "no preview rendered"
	NoteNotDecodable = "preview present but not base64"
)

const base64Marker = ";base64,"

// ExtractBinary selects the leaf, waits for the preview to render, and
// decodes its embedded data URI. A leaf without a preview, or with a
// preview in an unexpected encoding, degrades to a Placeholder carrying
// the distinguishing note; it never aborts the run.
func ExtractBinary(ctx context.Context, s Surface, leaf Node, fullPath string, cfg Config) (Result, error) {
	cfg.defaults()

	if err := s.Trigger(ctx, leaf.ID, ActionSelect); err != nil {
		return placeholderResult(fullPath, StrategyNone, "select failed: "+err.Error()), nil
	}
	if err := sleep(ctx, cfg.DisplaySettle.Std()); err != nil {
		return Result{}, err
	}

	payload, ok, err := s.PreviewPayload(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, err
		}
		return placeholderResult(fullPath, StrategyPreview, "preview read failed: "+err.Error()), nil
	}
	if !ok || payload == "" {
		return placeholderResult(fullPath, StrategyPreview, NoteNoPreview), nil
	}

	data, err := DecodeDataURI(payload)
	if err != nil {
		return placeholderResult(fullPath, StrategyPreview, NoteNotDecodable), nil
	}
	return Result{Data: data, Kind: ResultBinary, Strategy: StrategyPreview}, nil
}

// DecodeDataURI decodes a base64 data URI ("data:<mime>;base64,<payload>")
// into raw bytes. Any other scheme or encoding is an error.
func DecodeDataURI(uri string) ([]byte, error) {
	if !strings.HasPrefix(uri, "data:") {
		return nil, fmt.Errorf("export: not a data URI")
	}
	i := strings.Index(uri, base64Marker)
	if i < 0 {
		return nil, fmt.Errorf("export: data URI is not base64-encoded")
	}
	data, err := base64.StdEncoding.DecodeString(uri[i+len(base64Marker):])
	if err != nil {
		return nil, fmt.Errorf("export: decode data URI: %w", err)
	}
	return data, nil
}
