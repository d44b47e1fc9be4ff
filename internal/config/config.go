package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate *validator.Validate

type Config struct {
	Convert    ConvertConfig     `yaml:"convert"`
	Output     OutputConfig      `yaml:"output"`
	Collectors []CollectorConfig `yaml:"collectors" validate:"dive"`
	Publishers []PublisherConfig `yaml:"publishers" validate:"dive"`
	Archive    ArchiveConfig     `yaml:"archive"`
	GeoIP      GeoIPConfig       `yaml:"geoip"`
	Metrics    MetricsConfig     `yaml:"metrics"`
}

type ConvertConfig struct {
	Workers     int  `yaml:"workers" validate:"min=1,max=256"`
	SkipInvalid bool `yaml:"skip_invalid"`
}

type OutputConfig struct {
	Base64 bool `yaml:"base64"`
}

type CollectorConfig struct {
	Name   string                 `yaml:"name" validate:"required"`
	Type   string                 `yaml:"type" validate:"required,oneof=file stdin"`
	Params map[string]interface{} `yaml:"params"`
}

type PublisherConfig struct {
	Name   string                 `yaml:"name" validate:"required"`
	Type   string                 `yaml:"type" validate:"required,oneof=stdout file"`
	Params map[string]interface{} `yaml:"params"`
}

type ArchiveConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Path     string `yaml:"path" validate:"required_if=Enabled true"`
	MaxLinks int    `yaml:"max_links" validate:"min=0"`
}

type GeoIPConfig struct {
	CountryPath string `yaml:"country_path"`
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

func init() {
	validate = validator.New()
}

// Default is the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{Workers: 4},
		Collectors: []CollectorConfig{
			{Name: "stdin", Type: "stdin"},
		},
		Publishers: []PublisherConfig{
			{Name: "console", Type: "stdout"},
		},
		Archive: ArchiveConfig{
			Path:     "proxylink.db",
			MaxLinks: 5000,
		},
	}
}

// Load reads path over the defaults. An empty path means config.yaml, which
// may be absent; an explicitly named file must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = "config.yaml"
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// A file that lists its own collectors or publishers replaces the defaults.
		cfg.Collectors, cfg.Publishers = nil, nil
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config yaml: %w", err)
		}
		if cfg.Collectors == nil {
			cfg.Collectors = Default().Collectors
		}
		if cfg.Publishers == nil {
			cfg.Publishers = Default().Publishers
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("config validation failed: %w", err)
	}

	seen := make(map[string]bool)
	for _, p := range c.Publishers {
		if seen[p.Name] {
			return fmt.Errorf("duplicate publisher name %q", p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

func formatValidationErrors(errs validator.ValidationErrors) error {
	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, fmt.Sprintf("field '%s' failed validation: %s", err.Namespace(), err.Tag()))
	}
	return fmt.Errorf("validation errors: %v", msgs)
}

func (c *Config) FilterCollectors(names []string) {
	if len(names) == 0 {
		return
	}
	whitelist := make(map[string]bool)
	for _, n := range names {
		whitelist[n] = true
	}
	var filtered []CollectorConfig
	for _, item := range c.Collectors {
		if whitelist[item.Name] {
			filtered = append(filtered, item)
		}
	}
	c.Collectors = filtered
}

func (c *Config) FilterPublishers(names []string) {
	if len(names) == 0 {
		return
	}
	whitelist := make(map[string]bool)
	for _, n := range names {
		whitelist[n] = true
	}
	var filtered []PublisherConfig
	for _, item := range c.Publishers {
		if whitelist[item.Name] {
			filtered = append(filtered, item)
		}
	}
	c.Publishers = filtered
}
