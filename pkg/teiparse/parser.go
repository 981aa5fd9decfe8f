// Package teiparse extracts coordinate annotations and page geometry from
// the TEI markup returned by the extraction service.
package teiparse

import (
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/HowieRosier/pdf-redactor/models"
)

type Parser struct{}

// ParseCoordinates reads one TEI document and returns the reference boxes
// keyed by page (in document order) plus the declared page geometry.
// Malformed or empty input yields empty maps, never an error: a document
// without usable annotations simply has nothing to redact.
func (p *Parser) ParseCoordinates(r io.Reader) (map[int][]models.RawBox, map[int]models.PageGeometry) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return map[int][]models.RawBox{}, map[int]models.PageGeometry{}
	}
	return extractBoxes(doc), extractGeometry(doc)
}

// extractBoxes collects the coords attributes of reference entries. The
// search is scoped to the back matter first; documents whose references
// were not placed under <back> fall back to an unscoped search. goquery
// lowercases element names, hence "biblstruct".
func extractBoxes(doc *goquery.Document) map[int][]models.RawBox {
	refs := doc.Find("back biblstruct")
	if refs.Length() == 0 {
		refs = doc.Find("biblstruct")
	}

	byPage := make(map[int][]models.RawBox)
	refs.Each(func(_ int, s *goquery.Selection) {
		coords, ok := s.Attr("coords")
		if !ok {
			return
		}
		for _, group := range strings.Split(coords, ";") {
			box, ok := parseGroup(group)
			if !ok {
				continue
			}
			byPage[box.Page] = append(byPage[box.Page], box)
		}
	})
	return byPage
}

// parseGroup parses one "page,x,y,w,h" coordinate group. Groups with the
// wrong field count, non-numeric fields, or a page below 1 are skipped.
func parseGroup(group string) (models.RawBox, bool) {
	parts := strings.Split(group, ",")
	if len(parts) != 5 {
		return models.RawBox{}, false
	}

	page, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || page < 1 {
		return models.RawBox{}, false
	}

	vals := make([]float64, 4)
	for i, raw := range parts[1:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return models.RawBox{}, false
		}
		vals[i] = v
	}

	return models.RawBox{Page: page, X: vals[0], Y: vals[1], W: vals[2], H: vals[3]}, true
}

// extractGeometry collects page dimensions from surface elements. The
// lower-right corner (lrx, lry) doubles as width/height since surfaces
// start at the origin. Non-positive or malformed dimensions are ignored.
func extractGeometry(doc *goquery.Document) map[int]models.PageGeometry {
	dims := make(map[int]models.PageGeometry)
	doc.Find("surface").Each(func(_ int, s *goquery.Selection) {
		page, err := strconv.Atoi(strings.TrimSpace(s.AttrOr("n", "")))
		if err != nil {
			return
		}
		width, errW := strconv.ParseFloat(strings.TrimSpace(s.AttrOr("lrx", "")), 64)
		height, errH := strconv.ParseFloat(strings.TrimSpace(s.AttrOr("lry", "")), 64)
		if errW != nil || errH != nil || width <= 0 || height <= 0 {
			return
		}
		dims[page] = models.PageGeometry{Page: page, Width: width, Height: height}
	})
	return dims
}
