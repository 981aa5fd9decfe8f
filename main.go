package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/HowieRosier/pdf-redactor/internal/redact"
)

func main() {
	pipelineFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  "pdf-dir",
			Usage: "directory holding the source PDF files",
		},
		&cli.StringFlag{
			Name:  "xml-dir",
			Usage: "directory for the intermediate extraction XML",
		},
		&cli.StringFlag{
			Name:  "output-dir",
			Usage: "directory for the redacted PDFs",
		},
		&cli.StringFlag{
			Name:  "url",
			Usage: "extraction service URL",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "concurrent workers for the extraction phase",
		},
		&cli.IntFlag{
			Name:  "redact-workers",
			Usage: "concurrent workers for the redaction phase (defaults to --workers)",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "path to a YAML config file",
		},
		&cli.StringFlag{
			Name:  "max-age",
			Usage: "reuse existing XML newer than this duration (e.g. 24h); 0 always re-extracts",
		},
		&cli.BoolFlag{
			Name:  "force-extract",
			Usage: "ignore existing XML and always call the extraction service",
		},
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "only log errors",
		},
	}

	app := &cli.App{
		Name:  "pdf-redactor",
		Usage: "cover bibliographic reference blocks in PDFs using extraction-service coordinates",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "run both phases: extract XML, then redact the PDFs",
				Flags:  pipelineFlags,
				Action: redact.RunAction,
			},
			{
				Name:   "extract",
				Usage:  "phase 1 only: generate extraction XML for every source PDF",
				Flags:  pipelineFlags,
				Action: redact.ExtractAction,
			},
			{
				Name:   "redact",
				Usage:  "phase 2 only: redact PDFs from already generated XML",
				Flags:  pipelineFlags,
				Action: redact.RedactAction,
			},
			{
				Name:  "report",
				Usage: "print the stored outcomes of a past run",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "run",
						Usage: "run ID to report on (default: latest)",
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "only log errors",
					},
				},
				Action: redact.ReportAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
