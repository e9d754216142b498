package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/internalerr"
)

// Output formats for extracted results.
const (
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
)

// Config holds the settings of a batch run. Empty data paths select the
// embedded tables.
type Config struct {
	Data      Data          `yaml:"data" mapstructure:"data"`
	Workers   int           `yaml:"workers" mapstructure:"workers"`
	Languages []string      `yaml:"languages" mapstructure:"languages"`
	CacheTTL  time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	Progress  int           `yaml:"progress_every" mapstructure:"progress_every"`
	Output    Output        `yaml:"output" mapstructure:"output"`
	Database  string        `yaml:"database" mapstructure:"database"`

	// LanguageMinConfidence drops language guesses below this score (0..1).
	LanguageMinConfidence float64 `yaml:"language_min_confidence" mapstructure:"language_min_confidence"`
}

// Data points at the rule and reference tables.
type Data struct {
	Rules          string `yaml:"rules" mapstructure:"rules"`
	Stoplist       string `yaml:"stoplist" mapstructure:"stoplist"`
	Cities         string `yaml:"cities" mapstructure:"cities"`
	Certifications string `yaml:"certifications" mapstructure:"certifications"`
}

// Output controls how results are written.
type Output struct {
	Format string `yaml:"format" mapstructure:"format"`
	Path   string `yaml:"path" mapstructure:"path"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Languages:             []string{"de", "en"},
		CacheTTL:              30 * time.Minute,
		Progress:              100,
		Output:                Output{Format: FormatJSON},
		LanguageMinConfidence: 0.2,
	}
}

// Load reads a YAML settings file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings a run cannot use.
func (c Config) Validate() error {
	switch strings.ToLower(c.Output.Format) {
	case FormatJSON, FormatJSONL:
	default:
		return fmt.Errorf("output format %q: %w", c.Output.Format, internalerr.ErrInvalidConfig)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers %d: %w", c.Workers, internalerr.ErrInvalidConfig)
	}
	if c.Progress < 0 {
		return fmt.Errorf("progress_every %d: %w", c.Progress, internalerr.ErrInvalidConfig)
	}
	if c.LanguageMinConfidence < 0 || c.LanguageMinConfidence > 1 {
		return fmt.Errorf("language_min_confidence %v: %w", c.LanguageMinConfidence, internalerr.ErrInvalidConfig)
	}
	return nil
}

// Loader returns a loader for the configured data tables.
func (c Config) Loader() Loader {
	return Loader{
		RulesPath:          c.Data.Rules,
		StoplistPath:       c.Data.Stoplist,
		CitiesPath:         c.Data.Cities,
		CertificationsPath: c.Data.Certifications,
	}
}

// Marshal renders the settings as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
