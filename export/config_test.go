package export

import (
	"testing"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.defaults()

	if cfg.ExpandSettle != Duration(300*time.Millisecond) {
		t.Errorf("ExpandSettle: got %v", cfg.ExpandSettle)
	}
	if cfg.BatchSettle != Duration(time.Second) {
		t.Errorf("BatchSettle: got %v", cfg.BatchSettle)
	}
	if cfg.DisplaySettle != Duration(500*time.Millisecond) {
		t.Errorf("DisplaySettle: got %v", cfg.DisplaySettle)
	}
	if cfg.MaxPasses != 64 || cfg.MaxDepth != 64 {
		t.Errorf("caps: passes=%d depth=%d", cfg.MaxPasses, cfg.MaxDepth)
	}
	if cfg.Prefix != "arbex" {
		t.Errorf("Prefix: got %q", cfg.Prefix)
	}
	if cfg.Boilerplate == nil {
		t.Fatal("Boilerplate predicate not defaulted")
	}
	if !cfg.Boilerplate("made index.html plus package.json") {
		t.Error("default predicate: both markers present should match")
	}
	if cfg.Boilerplate("just index.html") {
		t.Error("default predicate: one marker must not match")
	}
}

func TestConfigDefaults_KeepExplicit(t *testing.T) {
	cfg := Config{ExpandSettle: Duration(time.Millisecond), Prefix: "tree"}
	cfg.defaults()
	if cfg.ExpandSettle != Duration(time.Millisecond) {
		t.Errorf("explicit ExpandSettle overridden: %v", cfg.ExpandSettle)
	}
	if cfg.Prefix != "tree" {
		t.Errorf("explicit Prefix overridden: %q", cfg.Prefix)
	}
}
