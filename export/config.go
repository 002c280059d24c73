package export

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that YAML-decodes from either a Go duration
// string ("250ms") or an integer nanosecond count. yaml.v3 has no native
// duration support.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("export: invalid duration node: %w", err)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(n)
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("export: invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config tunes the engine. All fields are read before a run starts and
// never mutated mid-run.
type Config struct {
	// ExpandSettle is the wait after each expansion trigger, tolerating
	// asynchronous rendering of the opened subtree.
	ExpandSettle Duration `yaml:"expand_settle"`

	// BatchSettle is the longer wait after a full batch of expansions,
	// before the next enumeration pass.
	BatchSettle Duration `yaml:"batch_settle"`

	// DisplaySettle is the wait after selecting a leaf, before reading the
	// content viewer.
	DisplaySettle Duration `yaml:"display_settle"`

	// ClipboardSettle is the wait between triggering a copy action and
	// reading the clipboard back.
	ClipboardSettle Duration `yaml:"clipboard_settle"`

	// MaxPasses bounds expansion passes. The refused-node bookkeeping
	// already guarantees termination; this is a backstop for surfaces that
	// re-mint node identities on every render.
	MaxPasses int `yaml:"max_passes"`

	// MaxDepth bounds path resolution steps.
	MaxDepth int `yaml:"max_depth"`

	// MinTextLen is the smallest accepted direct/clipboard read, in bytes
	// after trimming. Shorter reads are treated as empty.
	MinTextLen int `yaml:"min_text_len"`

	// BinaryExtensions extends the default binary extension set. Entries
	// are matched case-insensitively, with or without a leading dot.
	BinaryExtensions []string `yaml:"binary_extensions"`

	// BoilerplateMarkers configures the default false-positive filter: a
	// read that contains every marker at once is rejected as surface
	// boilerplate rather than real content. Ignored when Boilerplate is set.
	BoilerplateMarkers []string `yaml:"boilerplate_markers"`

	// Boilerplate overrides the marker-based filter with an arbitrary
	// predicate. Not configurable from YAML.
	Boilerplate func(string) bool `yaml:"-"`

	// Prefix names the artifact: <prefix>_<timestamp>.zip.
	Prefix string `yaml:"prefix"`

	Logger *slog.Logger `yaml:"-"`
}

func (c *Config) defaults() {
	if c.ExpandSettle <= 0 {
		c.ExpandSettle = Duration(300 * time.Millisecond)
	}
	if c.BatchSettle <= 0 {
		c.BatchSettle = Duration(time.Second)
	}
	if c.DisplaySettle <= 0 {
		c.DisplaySettle = Duration(500 * time.Millisecond)
	}
	if c.ClipboardSettle <= 0 {
		c.ClipboardSettle = Duration(300 * time.Millisecond)
	}
	if c.MaxPasses <= 0 {
		c.MaxPasses = 64
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = 64
	}
	if c.MinTextLen <= 0 {
		c.MinTextLen = 1
	}
	if len(c.BoilerplateMarkers) == 0 {
		c.BoilerplateMarkers = []string{"index.html", "package.json"}
	}
	if c.Boilerplate == nil {
		markers := c.BoilerplateMarkers
		c.Boilerplate = func(s string) bool {
			for _, m := range markers {
				if !strings.Contains(s, m) {
					return false
				}
			}
			return true
		}
	}
	if c.Prefix == "" {
		c.Prefix = "arbex"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// sleep waits for d or until ctx is cancelled. Cancellation wins even
// against a zero-length wait.
func sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
