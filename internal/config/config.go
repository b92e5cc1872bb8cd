// Package config loads the fspdf configuration file.
//
// The file is YAML and is searched in the current directory, the user
// configuration directory and a system-wide directory; the first file found
// wins. Every key is optional.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"fspdf/internal/log"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// FileName is the name of the configuration file in every search directory.
const FileName = "fspdf.yaml"

// SystemDir is the system-wide configuration directory.
var SystemDir = "/etc/fspdf"

const (
	RasterizerConvert  = "convert"
	RasterizerPdftoppm = "pdftoppm"
	StamperPdftk       = "pdftk"
	StamperPdfcpu      = "pdfcpu"
)

// Config holds every recognized option.
type Config struct {
	// Signature is the default signature image used when -s is not given.
	Signature string `yaml:"signature"`

	// Font is a TrueType/OpenType file for text stamps. Empty selects the
	// built-in Go Regular face.
	Font       string  `yaml:"font"`
	FontSize   float64 `yaml:"font_size"`
	LineHeight float64 `yaml:"line_height"`

	// Density is the rasterization resolution in dots per inch.
	Density  int `yaml:"density"`
	MinWidth int `yaml:"min_width"`

	Rasterizer string `yaml:"rasterizer"`
	Stamper    string `yaml:"stamper"`

	Eraser Eraser `yaml:"eraser"`

	path string
}

// Eraser describes the opaque patch placed in erase mode. Like a signature
// it is placed at its natural size in canvas pixels; page-relative width is
// fixed at placement.
type Eraser struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Color  string `yaml:"color"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		FontSize:   72,
		LineHeight: 1.2,
		Density:    150,
		MinWidth:   50,
		Rasterizer: RasterizerConvert,
		Stamper:    StamperPdftk,
		Eraser: Eraser{
			Width:  300,
			Height: 80,
			Color:  "#ffffff",
		},
	}
}

// Path returns the file the configuration was read from, or "" for defaults.
func (c *Config) Path() string {
	return c.path
}

// SearchPaths lists candidate configuration files in priority order.
func SearchPaths() []string {
	paths := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "fspdf", FileName))
	}
	return append(paths, filepath.Join(SystemDir, FileName))
}

// Find returns the first existing regular file among paths.
func Find(paths []string) (string, bool) {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err == nil && info.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}

// Load reads the file at path on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	cfg := Default()
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	cfg.path = path

	base := filepath.Dir(path)
	cfg.Signature = resolvePath(base, cfg.Signature)
	cfg.Font = resolvePath(base, cfg.Font)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// LoadDefault loads the first configuration file found in SearchPaths, or
// the defaults when there is none.
func LoadDefault() (*Config, error) {
	path, ok := Find(SearchPaths())
	if !ok {
		log.Trace.Println("no config file found, using defaults")
		return Default(), nil
	}
	log.Info.Printf("using config %s", path)
	return Load(path)
}

// Validate checks option ranges and backend names.
func (c *Config) Validate() error {
	switch c.Rasterizer {
	case RasterizerConvert, RasterizerPdftoppm:
	default:
		return errors.Errorf("unknown rasterizer %q", c.Rasterizer)
	}
	switch c.Stamper {
	case StamperPdftk, StamperPdfcpu:
	default:
		return errors.Errorf("unknown stamper %q", c.Stamper)
	}
	if c.Density <= 0 {
		return errors.Errorf("density must be positive, got %d", c.Density)
	}
	if c.FontSize <= 0 {
		return errors.Errorf("font_size must be positive, got %g", c.FontSize)
	}
	if c.LineHeight <= 0 {
		return errors.Errorf("line_height must be positive, got %g", c.LineHeight)
	}
	if c.MinWidth < 1 {
		return errors.Errorf("min_width must be at least 1, got %d", c.MinWidth)
	}
	if c.Eraser.Width < 1 || c.Eraser.Height < 1 {
		return errors.Errorf("eraser size must be positive, got %dx%d", c.Eraser.Width, c.Eraser.Height)
	}
	return nil
}

// resolvePath expands a leading ~ and makes relative paths relative to base.
func resolvePath(base, p string) string {
	if p == "" {
		return ""
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
