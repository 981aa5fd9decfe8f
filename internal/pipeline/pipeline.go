// Package pipeline orchestrates the two-phase batch run: PDFs are sent to
// the extraction service concurrently, then the produced XML drives
// concurrent redaction. Phase 2 never starts before every phase-1 job has
// finished.
package pipeline

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/HowieRosier/pdf-redactor/models"
	"github.com/HowieRosier/pdf-redactor/pkg/db"
	"github.com/HowieRosier/pdf-redactor/pkg/grobid"
	"github.com/HowieRosier/pdf-redactor/pkg/manifest"
	"github.com/HowieRosier/pdf-redactor/pkg/regions"
	"github.com/HowieRosier/pdf-redactor/pkg/render"
	"github.com/HowieRosier/pdf-redactor/pkg/storage"
	"github.com/HowieRosier/pdf-redactor/pkg/teiparse"
)

// Pipeline holds the collaborators for one batch run. Individual job
// failures never fail the pipeline; Run only returns an error for setup
// problems such as an uncreatable directory.
type Pipeline struct {
	Config       *models.RedactionConfig
	Logger       *slog.Logger
	Client       *grobid.Client
	Store        *storage.Storage
	Parser       *teiparse.Parser
	Consolidator *regions.Consolidator
	Planner      *regions.Planner
	Redactor     *render.Redactor

	// Database is optional; when nil, outcomes are only logged.
	Database *db.DB
}

func New(cfg *models.RedactionConfig, logger *slog.Logger, database *db.DB) *Pipeline {
	return &Pipeline{
		Config:       cfg,
		Logger:       logger,
		Client:       grobid.NewClient(cfg.ServiceURL, cfg.RequestTimeout),
		Store:        &storage.Storage{},
		Parser:       &teiparse.Parser{},
		Consolidator: regions.NewConsolidator(cfg),
		Planner:      regions.NewPlanner(cfg),
		Redactor:     render.NewRedactor(cfg.Appearance),
		Database:     database,
	}
}

// Run executes both phases with a hard barrier between them and the two
// discovery-based halts: no PDFs found, or no XML produced.
func (p *Pipeline) Run() error {
	start := time.Now()

	if err := p.setupDirectories(); err != nil {
		return err
	}

	runID := p.startRun()

	pdfs, err := listFiles(p.Config.PDFDir, ".pdf")
	if err != nil {
		return err
	}
	if len(pdfs) == 0 {
		p.Logger.Info("no PDF files found, halting", "dir", p.Config.PDFDir)
		p.finishRun(runID, time.Since(start))
		return nil
	}

	phase1Start := time.Now()
	extractResults := p.runExtraction(runID, pdfs)
	phase1Time := time.Since(phase1Start)
	p.Logger.Info("extraction phase complete", "documents", len(extractResults), "seconds", phase1Time.Seconds())

	xmls, err := listFiles(p.Config.XMLDir, ".xml")
	if err != nil {
		return err
	}
	if len(xmls) == 0 {
		p.Logger.Info("no XML files to process, halting", "dir", p.Config.XMLDir)
		p.finishRun(runID, time.Since(start))
		return nil
	}

	phase2Start := time.Now()
	redactResults := p.runRedaction(runID, xmls)
	phase2Time := time.Since(phase2Start)
	p.Logger.Info("redaction phase complete", "documents", len(redactResults), "seconds", phase2Time.Seconds())

	total := time.Since(start)
	p.finishRun(runID, total)
	p.writeSummary(extractResults, redactResults, phase1Time, phase2Time, total)

	p.Logger.Info("all phases complete", "total_seconds", total.Seconds())
	return nil
}

// RunExtraction runs phase 1 only.
func (p *Pipeline) RunExtraction() error {
	start := time.Now()
	if err := p.setupDirectories(); err != nil {
		return err
	}
	runID := p.startRun()

	pdfs, err := listFiles(p.Config.PDFDir, ".pdf")
	if err != nil {
		return err
	}
	if len(pdfs) == 0 {
		p.Logger.Info("no PDF files found, halting", "dir", p.Config.PDFDir)
		p.finishRun(runID, time.Since(start))
		return nil
	}

	results := p.runExtraction(runID, pdfs)
	total := time.Since(start)
	p.finishRun(runID, total)
	p.Logger.Info("extraction phase complete", "documents", len(results), "seconds", total.Seconds())
	return nil
}

// RunRedaction runs phase 2 only, against whatever XML already exists.
func (p *Pipeline) RunRedaction() error {
	start := time.Now()
	if err := p.setupDirectories(); err != nil {
		return err
	}
	runID := p.startRun()

	xmls, err := listFiles(p.Config.XMLDir, ".xml")
	if err != nil {
		return err
	}
	if len(xmls) == 0 {
		p.Logger.Info("no XML files to process, halting", "dir", p.Config.XMLDir)
		p.finishRun(runID, time.Since(start))
		return nil
	}

	results := p.runRedaction(runID, xmls)
	total := time.Since(start)
	p.finishRun(runID, total)
	p.Logger.Info("redaction phase complete", "documents", len(results), "seconds", total.Seconds())
	return nil
}

func (p *Pipeline) setupDirectories() error {
	for _, dir := range []string{p.Config.PDFDir, p.Config.XMLDir, p.Config.OutputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) startRun() int64 {
	if p.Database == nil {
		return 0
	}
	runID, err := p.Database.CreateRun(p.Config)
	if err != nil {
		p.Logger.Warn("failed to record run in database", "error", err)
		return 0
	}
	return runID
}

func (p *Pipeline) finishRun(runID int64, total time.Duration) {
	if p.Database == nil || runID == 0 {
		return
	}
	if err := p.Database.FinishRun(runID, total); err != nil {
		p.Logger.Warn("failed to finish run in database", "error", err)
	}
}

func (p *Pipeline) recordResult(runID int64, phase string, result models.JobResult) {
	if p.Database == nil || runID == 0 {
		return
	}
	if err := p.Database.RecordResult(runID, phase, result); err != nil {
		p.Logger.Warn("failed to record result in database", "item", result.ItemName, "error", err)
	}
}

func (p *Pipeline) logResult(phase string, result models.JobResult) {
	if result.Success {
		p.Logger.Info("job succeeded", "phase", phase, "item", result.ItemName, "message", result.Message)
	} else {
		p.Logger.Error("job failed", "phase", phase, "item", result.ItemName, "message", result.Message)
	}
}

func (p *Pipeline) writeSummary(extract, redact []models.JobResult, phase1, phase2, total time.Duration) {
	summary := &manifest.RunSummary{
		PDFDir:       p.Config.PDFDir,
		XMLDir:       p.Config.XMLDir,
		OutputDir:    p.Config.OutputDir,
		TotalSeconds: total.Seconds(),
		Extraction:   summarizePhase(extract, phase1),
		Redaction:    summarizePhase(redact, phase2),
	}
	for _, r := range extract {
		summary.Documents = append(summary.Documents, outcome(db.PhaseExtract, r))
	}
	for _, r := range redact {
		summary.Documents = append(summary.Documents, outcome(db.PhaseRedact, r))
	}

	path, err := manifest.WriteSummary(p.Config.OutputDir, summary)
	if err != nil {
		p.Logger.Warn("failed to write run summary", "error", err)
		return
	}
	p.Logger.Info("run summary written", "path", path)
}

func summarizePhase(results []models.JobResult, elapsed time.Duration) manifest.PhaseSummary {
	s := manifest.PhaseSummary{Total: len(results), Seconds: elapsed.Seconds()}
	for _, r := range results {
		if r.Success {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s
}

func outcome(phase string, r models.JobResult) manifest.DocumentOutcome {
	return manifest.DocumentOutcome{
		Item:    r.ItemName,
		Phase:   phase,
		Success: r.Success,
		Message: r.Message,
	}
}

// listFiles returns the file names (not paths) in dir whose extension
// matches ext case-insensitively, sorted for deterministic submission
// order.
func listFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ext) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
