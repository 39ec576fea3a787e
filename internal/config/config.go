package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file looked up in the working directory
// when none is given.
const DefaultFile = "ftmpl.yaml"

// Config holds all the configuration the application needs to run.
type Config struct {
	// Paths are the template search directories, tried in order.
	Paths []string `yaml:"paths"`
	// Suffix is the template file suffix.
	Suffix string `yaml:"suffix"`

	LogFormat string `yaml:"log_format"`
	LogLevel  string `yaml:"log_level"`
	Color     string `yaml:"color"`

	// ObserveLog, when set, is a file every template render is appended to
	// as a JSON line.
	ObserveLog string `yaml:"observe_log"`

	// Listen is the address of the render server.
	Listen string `yaml:"listen"`

	// Transforms defines extra options as pipelines of existing ones.
	Transforms map[string][]string `yaml:"transforms"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Paths:     []string{"."},
		Suffix:    ".ftmpl",
		LogFormat: "text",
		LogLevel:  "info",
		Color:     "auto",
		Listen:    ":8080",
	}
}

// Load reads a YAML file over the defaults. Unknown keys are errors.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOptional loads path, or DefaultFile if path is empty. A missing
// DefaultFile is not an error; a missing explicit path is.
func LoadOptional(path string) (Config, error) {
	if path != "" {
		return Load(path)
	}
	if _, err := os.Stat(DefaultFile); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(DefaultFile)
}

// NewConfig validates cfg and returns a normalized copy.
func NewConfig(cfg Config) (*Config, error) {
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.Color = strings.ToLower(cfg.Color)

	if len(cfg.Paths) == 0 {
		return nil, errors.New("paths must list at least one template directory")
	}
	if cfg.Suffix == "" || !strings.HasPrefix(cfg.Suffix, ".") {
		return nil, fmt.Errorf("invalid suffix %q: must start with '.'", cfg.Suffix)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, errors.New("invalid log-format: must be 'text' or 'json'")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, errors.New("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}
	switch cfg.Color {
	case "auto", "on", "off":
	default:
		return nil, errors.New("invalid color: must be 'auto', 'on', or 'off'")
	}
	for name, steps := range cfg.Transforms {
		if len(steps) == 0 {
			return nil, fmt.Errorf("transform %q has no steps", name)
		}
	}
	return &cfg, nil
}
