package arbex

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/arbex/export"
	"github.com/hazyhaar/arbex/internal/browser"
)

// Config is the top-level arbex configuration.
type Config struct {
	// URL of the page presenting the tree to export.
	URL string `yaml:"url"`

	Browser   browser.Config    `yaml:"browser"`
	Selectors browser.Selectors `yaml:"selectors"`
	Engine    export.Config     `yaml:"engine"`

	// OutputDir receives the finished archive. Default ".".
	OutputDir string `yaml:"output_dir"`

	// ManifestPath enables the sqlite run manifest when non-empty.
	ManifestPath string `yaml:"manifest"`
}

// LoadConfigFile reads a YAML configuration file and applies defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("arbex: parse config %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills zero values. Engine and browser sections default
// themselves again at construction; this only covers the top level.
func (c *Config) ApplyDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
}

// Validate rejects configurations that cannot start a run.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("arbex: config: url is required")
	}
	return nil
}
