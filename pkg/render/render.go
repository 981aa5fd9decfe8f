// Package render applies redaction rectangles to a PDF. It wraps the
// unipdf reader/creator pair: pages are replayed into a new document and
// opaque fills are drawn over the requested rectangles.
package render

import (
	"fmt"
	"os"

	"github.com/unidoc/unipdf/v3/creator"
	"github.com/unidoc/unipdf/v3/model"

	"github.com/HowieRosier/pdf-redactor/models"
)

type Redactor struct {
	fill creator.Color
}

// NewRedactor picks the fill color from the configured appearance; anything
// other than whiteout draws black.
func NewRedactor(appearance string) *Redactor {
	fill := creator.ColorWhite
	if appearance != models.AppearanceWhiteout {
		fill = creator.ColorBlack
	}
	return &Redactor{fill: fill}
}

// Apply copies srcPath to dstPath with every rect drawn as an opaque fill
// on its page. Rects whose page index falls outside the document are
// ignored. TEI coordinates are top-left origin, the same as the creator's
// drawing space, so they pass through unchanged.
func (r *Redactor) Apply(srcPath, dstPath string, rects []models.FinalRect) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", srcPath, err)
	}
	defer f.Close()

	reader, err := model.NewPdfReader(f)
	if err != nil {
		return fmt.Errorf("failed to read PDF: %w", err)
	}
	numPages, err := reader.GetNumPages()
	if err != nil {
		return fmt.Errorf("failed to get page count: %w", err)
	}

	byPage := make(map[int][]models.FinalRect)
	for _, rect := range rects {
		if rect.Page >= 1 && rect.Page <= numPages {
			byPage[rect.Page] = append(byPage[rect.Page], rect)
		}
	}

	c := creator.New()
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page, err := reader.GetPage(pageNum)
		if err != nil {
			return fmt.Errorf("failed to get page %d: %w", pageNum, err)
		}
		if err := c.AddPage(page); err != nil {
			return fmt.Errorf("failed to add page %d: %w", pageNum, err)
		}
		for _, rect := range byPage[pageNum] {
			box := c.NewRectangle(rect.X0, rect.Y0, rect.X1-rect.X0, rect.Y1-rect.Y0)
			box.SetFillColor(r.fill)
			box.SetBorderColor(r.fill)
			if err := c.Draw(box); err != nil {
				return fmt.Errorf("failed to draw on page %d: %w", pageNum, err)
			}
		}
	}

	if err := c.WriteToFile(dstPath); err != nil {
		return fmt.Errorf("failed to write %s: %w", dstPath, err)
	}
	return nil
}
