package arbex

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hazyhaar/arbex/export"
)

func TestLoadConfigFile(t *testing.T) {
	yaml := `
url: https://studio.example/projects/42
browser:
  mode: headful
  xvfb_display: ":42"
selectors:
  item: '[role="treeitem"]'
  viewer: "#viewer"
engine:
  expand_settle: 250ms
  batch_settle: 2s
  prefix: artifacts
  binary_extensions: [sqlite]
  boilerplate_markers: ["index.html", "style.css"]
output_dir: /tmp/exports
manifest: /tmp/arbex.db
`
	path := filepath.Join(t.TempDir(), "arbex.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if cfg.URL != "https://studio.example/projects/42" {
		t.Errorf("URL: got %q", cfg.URL)
	}
	if cfg.Browser.Mode != "headful" || cfg.Browser.XvfbDisplay != ":42" {
		t.Errorf("browser: %+v", cfg.Browser)
	}
	if cfg.Engine.ExpandSettle != export.Duration(250*time.Millisecond) {
		t.Errorf("ExpandSettle: got %v", cfg.Engine.ExpandSettle)
	}
	if cfg.Engine.BatchSettle != export.Duration(2*time.Second) {
		t.Errorf("BatchSettle: got %v", cfg.Engine.BatchSettle)
	}
	if cfg.Engine.Prefix != "artifacts" {
		t.Errorf("Prefix: got %q", cfg.Engine.Prefix)
	}
	if cfg.OutputDir != "/tmp/exports" || cfg.ManifestPath != "/tmp/arbex.db" {
		t.Errorf("output: dir=%q manifest=%q", cfg.OutputDir, cfg.ManifestPath)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestConfigDefaultsAndValidate(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.OutputDir != "." {
		t.Errorf("OutputDir: got %q, want .", cfg.OutputDir)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate: want error without url")
	}
}

func TestLoadConfigFile_Missing(t *testing.T) {
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("want error for missing file")
	}
}
