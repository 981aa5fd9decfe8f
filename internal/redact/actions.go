// Package redact wires the CLI commands to the pipeline.
package redact

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/HowieRosier/pdf-redactor/internal/pipeline"
	"github.com/HowieRosier/pdf-redactor/models"
	"github.com/HowieRosier/pdf-redactor/pkg/db"
)

// RunAction executes the full two-phase pipeline.
func RunAction(c *cli.Context) error {
	logger := newLogger(c)
	cfg, err := buildConfig(c)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	database := openDatabase(logger)
	if database != nil {
		defer database.Close()
	}

	return pipeline.New(cfg, logger, database).Run()
}

// ExtractAction runs phase 1 only.
func ExtractAction(c *cli.Context) error {
	logger := newLogger(c)
	cfg, err := buildConfig(c)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	database := openDatabase(logger)
	if database != nil {
		defer database.Close()
	}

	return pipeline.New(cfg, logger, database).RunExtraction()
}

// RedactAction runs phase 2 only, against existing XML.
func RedactAction(c *cli.Context) error {
	logger := newLogger(c)
	cfg, err := buildConfig(c)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	database := openDatabase(logger)
	if database != nil {
		defer database.Close()
	}

	return pipeline.New(cfg, logger, database).RunRedaction()
}

// ReportAction prints the stored outcomes of a past run.
func ReportAction(c *cli.Context) error {
	logger := newLogger(c)

	database, err := db.Open()
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(2)
	}
	defer database.Close()

	runID := int64(c.Int("run"))
	if runID == 0 {
		runID, err = database.GetLatestRunID()
		if err != nil {
			return err
		}
	}

	run, err := database.GetRunByID(runID)
	if err != nil {
		return err
	}
	results, err := database.GetRunResults(runID)
	if err != nil {
		return err
	}

	fmt.Printf("Run %d (started %s)\n", run.RunID, run.StartedAt.Format(time.RFC3339))
	fmt.Printf("  source: %s  xml: %s  output: %s\n", run.PDFDir, run.XMLDir, run.OutputDir)
	if run.TotalSeconds.Valid {
		fmt.Printf("  total: %.2fs\n", run.TotalSeconds.Float64)
	}
	fmt.Println()

	for _, r := range results {
		status := "ok"
		if !r.Success {
			status = "FAILED"
		}
		fmt.Printf("  [%s %s] %s: %s\n", r.Phase, status, r.ItemName, r.Message)
	}
	if len(results) == 0 {
		fmt.Println("  (no job results recorded)")
	}
	return nil
}

func newLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// openDatabase opens the run store; a failure degrades to log-only
// reporting instead of aborting the run.
func openDatabase(logger *slog.Logger) *db.DB {
	database, err := db.Open()
	if err != nil {
		logger.Warn("failed to open database, outcomes will only be logged", "error", err)
		return nil
	}
	return database
}

// buildConfig layers defaults, the optional config file, and CLI flags, in
// that order. Flags win.
func buildConfig(c *cli.Context) (*models.RedactionConfig, error) {
	cfg := models.DefaultConfig()
	if c.IsSet("config") {
		loaded, err := models.LoadConfig(c.String("config"))
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if c.IsSet("pdf-dir") {
		cfg.PDFDir = c.String("pdf-dir")
	}
	if c.IsSet("xml-dir") {
		cfg.XMLDir = c.String("xml-dir")
	}
	if c.IsSet("output-dir") {
		cfg.OutputDir = c.String("output-dir")
	}
	if c.IsSet("url") {
		cfg.ServiceURL = c.String("url")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
		if !c.IsSet("redact-workers") {
			cfg.RedactWorkers = cfg.Workers
		}
	}
	if c.IsSet("redact-workers") {
		cfg.RedactWorkers = c.Int("redact-workers")
	}
	if c.IsSet("max-age") {
		maxAge, err := time.ParseDuration(c.String("max-age"))
		if err != nil {
			return nil, fmt.Errorf("invalid max-age duration: %w", err)
		}
		cfg.MaxAge = maxAge
	}
	cfg.ForceExtract = c.Bool("force-extract")

	if cfg.Workers < 1 || cfg.RedactWorkers < 1 {
		return nil, fmt.Errorf("worker counts must be at least 1")
	}
	return cfg, nil
}
