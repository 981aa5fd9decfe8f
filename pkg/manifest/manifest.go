// Package manifest writes a YAML summary of a finished pipeline run.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// PhaseSummary aggregates one phase's outcomes.
type PhaseSummary struct {
	Total     int     `yaml:"total"`
	Succeeded int     `yaml:"succeeded"`
	Failed    int     `yaml:"failed"`
	Seconds   float64 `yaml:"seconds"`
}

// DocumentOutcome is one document's result within a phase.
type DocumentOutcome struct {
	Item    string `yaml:"item"`
	Phase   string `yaml:"phase"`
	Success bool   `yaml:"success"`
	Message string `yaml:"message"`
}

// RunSummary is the top-level manifest structure.
type RunSummary struct {
	GeneratedAt  string            `yaml:"generated_at"`
	PDFDir       string            `yaml:"pdf_dir"`
	XMLDir       string            `yaml:"xml_dir"`
	OutputDir    string            `yaml:"output_dir"`
	TotalSeconds float64           `yaml:"total_seconds"`
	Extraction   PhaseSummary      `yaml:"extraction"`
	Redaction    PhaseSummary      `yaml:"redaction"`
	Documents    []DocumentOutcome `yaml:"documents"`
}

// WriteSummary marshals the summary to a timestamped YAML file inside dir
// and returns the written path.
func WriteSummary(dir string, summary *RunSummary) (string, error) {
	if summary.GeneratedAt == "" {
		summary.GeneratedAt = time.Now().Format(time.RFC3339)
	}

	data, err := yaml.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("failed to marshal run summary: %w", err)
	}

	name := fmt.Sprintf("run_summary_%s.yaml", time.Now().Format("2006-01-02_15-04-05"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write run summary: %w", err)
	}
	return path, nil
}
