package models

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Redaction fill appearance values.
const (
	AppearanceWhiteout = "whiteout"
	AppearanceBlackout = "blackout"
)

// RedactionConfig holds the full runtime configuration for a pipeline run.
// Values come from DefaultConfig, optionally overridden by a YAML config
// file, and finally by CLI flags.
type RedactionConfig struct {
	PDFDir     string `yaml:"pdf_dir"`
	XMLDir     string `yaml:"xml_dir"`
	OutputDir  string `yaml:"output_dir"`
	ServiceURL string `yaml:"service_url"`

	Workers       int `yaml:"workers"`
	RedactWorkers int `yaml:"redact_workers"`

	// Durations are set from CLI flags (parsed with time.ParseDuration),
	// not from the config file.
	RequestTimeout time.Duration `yaml:"-"`

	// MaxAge controls phase-1 reuse of already generated XML. Zero means
	// the extraction service is always called.
	MaxAge       time.Duration `yaml:"-"`
	ForceExtract bool          `yaml:"-"`

	// Region consolidation tunables.
	HorizontalRatio      float64 `yaml:"horizontal_ratio"`
	LineHeightMultiplier float64 `yaml:"line_height_multiplier"`
	HeaderZone           float64 `yaml:"header_zone"`
	FooterZone           float64 `yaml:"footer_zone"`
	Padding              float64 `yaml:"padding"`
	Appearance           string  `yaml:"appearance"`

	// Fallback page dimensions for pages without a surface declaration.
	DefaultPageWidth  float64 `yaml:"default_page_width"`
	DefaultPageHeight float64 `yaml:"default_page_height"`
}

// DefaultConfig returns the configuration used when no file or flag
// overrides anything.
func DefaultConfig() *RedactionConfig {
	return &RedactionConfig{
		PDFDir:               "pdf_source",
		XMLDir:               "grobid_raw_xml_output",
		OutputDir:            "redacted_pdf_output",
		ServiceURL:           "http://localhost:8070/api/processFulltextDocument",
		Workers:              10,
		RedactWorkers:        10,
		RequestTimeout:       180 * time.Second,
		MaxAge:               0,
		HorizontalRatio:      0.16,
		LineHeightMultiplier: 4.0,
		HeaderZone:           120.0,
		FooterZone:           80.0,
		Padding:              7.0,
		Appearance:           AppearanceWhiteout,
		DefaultPageWidth:     595.0,
		DefaultPageHeight:    842.0,
	}
}

// LoadConfig reads a YAML config file over the defaults. Missing keys keep
// their default values.
func LoadConfig(path string) (*RedactionConfig, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}
