// Package config loads bookpipe defaults from a YAML file.
// Values in the file are defaults only: explicit command-line flags win.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/gaurav-prasanna/bookpipe/core"
)

// FileName is the base name searched in the working directory.
const FileName = "bookpipe"

// MaxInputSize limits config files to 1MB.
var MaxInputSize = 1 << 20

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("config parse error")
)

// Config mirrors the convert flags. Pointer fields distinguish "unset" from
// an explicit false or zero.
type Config struct {
	Format       string                `yaml:"format"`
	Output       string                `yaml:"output"`
	Clean        bool                  `yaml:"clean"`
	Metadata     *bool                 `yaml:"metadata"`
	TOC          *bool                 `yaml:"toc"`
	HeadingLevel int                   `yaml:"headingLevel"`
	CSS          string                `yaml:"css"`
	Compact      bool                  `yaml:"compact"`
	Recursive    bool                  `yaml:"recursive"`
	Workers      int                   `yaml:"workers"`
	Normalize    core.NormalizeOptions `yaml:"normalize"`
	PDF          core.PDFOptions       `yaml:"pdf"`
}

// Options builds conversion options from the file, starting from
// core.DefaultOptions.
func (c *Config) Options() core.Options {
	opts := core.DefaultOptions()
	if c.Metadata != nil {
		opts.IncludeMetadata = *c.Metadata
	}
	if c.TOC != nil {
		opts.IncludeTOC = *c.TOC
	}
	if c.HeadingLevel != 0 {
		opts.HeadingLevel = c.HeadingLevel
	}
	opts.CustomCSS = c.CSS
	opts.Pretty = !c.Compact
	opts.Normalize = c.Normalize.WithDefaults()
	if c.PDF.PageSize != "" {
		opts.PDF.PageSize = c.PDF.PageSize
	}
	if c.PDF.FontSize != 0 {
		opts.PDF.FontSize = c.PDF.FontSize
	}
	return opts
}

// Validate checks the format name and the option ranges.
func (c *Config) Validate() error {
	if c.Format != "" {
		if _, err := core.ParseOutputFormat(c.Format); err != nil {
			return err
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", core.ErrInvalidOptions, c.Workers)
	}
	return c.Options().Validate()
}

// Parse decodes data strictly: unknown keys are errors.
func Parse(data []byte) (*Config, error) {
	if len(data) > MaxInputSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrConfigParse, len(data), MaxInputSize)
	}
	var cfg Config
	if len(data) == 0 {
		return &cfg, nil
	}
	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads the config at path. An empty path searches the default
// locations and returns an empty Config when none exists; an explicit path
// that does not exist is an error.
func Load(path string) (*Config, string, error) {
	if path == "" {
		found, ok := Find()
		if !ok {
			return &Config{}, "", nil
		}
		path = found
	}

	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, path, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, path, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, path, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, path, nil
}

// Find returns the first existing config file among bookpipe.yaml and
// bookpipe.yml in the working directory, then config.yaml and config.yml
// under the user config directory.
func Find() (string, bool) {
	for _, p := range searchPaths() {
		if fileExists(p) {
			return p, true
		}
	}
	return "", false
}

func searchPaths() []string {
	paths := []string{FileName + ".yaml", FileName + ".yml"}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths,
			filepath.Join(dir, FileName, "config.yaml"),
			filepath.Join(dir, FileName, "config.yml"),
		)
	}
	return paths
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
