package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/HowieRosier/pdf-redactor/models"
	"github.com/HowieRosier/pdf-redactor/pkg/db"
)

// runExtraction fans the PDF list out to a bounded worker pool and drains
// the results. Results arrive in completion order, which is not
// deterministic across runs.
func (p *Pipeline) runExtraction(runID int64, pdfs []string) []models.JobResult {
	p.Logger.Info("starting extraction phase", "documents", len(pdfs), "workers", p.Config.Workers)

	jobs := make(chan string, len(pdfs))
	results := make(chan models.JobResult, len(pdfs))

	var wg sync.WaitGroup
	for w := 1; w <= poolSize(p.Config.Workers, len(pdfs)); w++ {
		wg.Add(1)
		go p.extractWorker(w, &wg, jobs, results)
	}

	for _, name := range pdfs {
		jobs <- name
	}
	close(jobs)

	wg.Wait()
	close(results)

	collected := make([]models.JobResult, 0, len(pdfs))
	for result := range results {
		collected = append(collected, result)
		p.logResult(db.PhaseExtract, result)
		p.recordResult(runID, db.PhaseExtract, result)
	}
	return collected
}

// runRedaction is the phase-2 counterpart of runExtraction, fed by the XML
// files the first phase produced.
func (p *Pipeline) runRedaction(runID int64, xmls []string) []models.JobResult {
	p.Logger.Info("starting redaction phase", "documents", len(xmls), "workers", p.Config.RedactWorkers)

	jobs := make(chan string, len(xmls))
	results := make(chan models.JobResult, len(xmls))

	var wg sync.WaitGroup
	for w := 1; w <= poolSize(p.Config.RedactWorkers, len(xmls)); w++ {
		wg.Add(1)
		go p.redactWorker(w, &wg, jobs, results)
	}

	for _, name := range xmls {
		jobs <- name
	}
	close(jobs)

	wg.Wait()
	close(results)

	collected := make([]models.JobResult, 0, len(xmls))
	for result := range results {
		collected = append(collected, result)
		p.logResult(db.PhaseRedact, result)
		p.recordResult(runID, db.PhaseRedact, result)
	}
	return collected
}

func (p *Pipeline) extractWorker(id int, wg *sync.WaitGroup, jobs <-chan string, results chan<- models.JobResult) {
	defer wg.Done()
	for name := range jobs {
		p.Logger.Info("worker started job", "phase", db.PhaseExtract, "worker_id", id, "item", name)
		results <- p.extractOne(name)
	}
}

func (p *Pipeline) redactWorker(id int, wg *sync.WaitGroup, jobs <-chan string, results chan<- models.JobResult) {
	defer wg.Done()
	for name := range jobs {
		p.Logger.Info("worker started job", "phase", db.PhaseRedact, "worker_id", id, "item", name)
		results <- p.redactOne(name)
	}
}

// extractOne performs one phase-1 unit of work: send the PDF to the
// extraction service and persist the returned XML. Every failure is
// contained in the JobResult.
func (p *Pipeline) extractOne(pdfName string) models.JobResult {
	pdfPath := filepath.Join(p.Config.PDFDir, pdfName)
	xmlPath := filepath.Join(p.Config.XMLDir, baseName(pdfName)+".xml")

	if !p.Config.ForceExtract && p.Store.IsFresh(xmlPath, p.Config.MaxAge) {
		return models.JobResult{ItemName: pdfName, Success: true,
			Message: "Fresh XML already present; service call skipped."}
	}

	body, err := p.Client.ProcessFulltext(pdfPath)
	if err != nil {
		return models.JobResult{ItemName: pdfName, Success: false, Message: err.Error()}
	}

	if err := p.Store.SaveFile(xmlPath, body); err != nil {
		return models.JobResult{ItemName: pdfName, Success: false, Message: err.Error()}
	}

	return models.JobResult{ItemName: pdfName, Success: true, Message: "Success"}
}

// redactOne performs one phase-2 unit of work: locate the companion PDF,
// derive the redaction rectangles from the XML, and either copy the PDF
// verbatim (nothing found) or draw the fills and save.
func (p *Pipeline) redactOne(xmlName string) models.JobResult {
	xmlPath := filepath.Join(p.Config.XMLDir, xmlName)
	base := baseName(xmlName)
	pdfPath := filepath.Join(p.Config.PDFDir, base+".pdf")
	outPath := filepath.Join(p.Config.OutputDir, base+"_cleaned.pdf")

	if !p.Store.HasFile(pdfPath) {
		return models.JobResult{ItemName: xmlName, Success: false,
			Message: fmt.Sprintf("Corresponding PDF not found at '%s'", pdfPath)}
	}

	rects := p.planRects(xmlPath)
	if len(rects) == 0 {
		if err := p.Store.CopyFile(pdfPath, outPath); err != nil {
			return models.JobResult{ItemName: xmlName, Success: false, Message: err.Error()}
		}
		return models.JobResult{ItemName: xmlName, Success: true,
			Message: "No references found; original file copied."}
	}

	if err := p.Redactor.Apply(pdfPath, outPath, rects); err != nil {
		return models.JobResult{ItemName: xmlName, Success: false, Message: err.Error()}
	}

	return models.JobResult{ItemName: xmlName, Success: true,
		Message: fmt.Sprintf("Success (%d area(s) covered).", len(rects))}
}

// planRects runs the parse → consolidate → plan chain for one XML file.
// Unreadable or annotation-free XML yields no rectangles rather than an
// error, which the caller treats as "nothing to redact".
func (p *Pipeline) planRects(xmlPath string) []models.FinalRect {
	f, err := os.Open(xmlPath)
	if err != nil {
		return nil
	}
	defer f.Close()

	boxesByPage, geometry := p.Parser.ParseCoordinates(f)
	if len(boxesByPage) == 0 {
		return nil
	}

	merged := p.Consolidator.ConsolidatePages(boxesByPage, geometry)
	return p.Planner.Plan(merged)
}

func baseName(fileName string) string {
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}

func poolSize(workers, jobs int) int {
	if workers < 1 {
		workers = 1
	}
	if workers > jobs {
		return jobs
	}
	return workers
}
