// Package regions turns the raw per-page reference boxes into a minimal
// set of merged rectangles and expands them into the final redaction
// coordinates.
package regions

import (
	"sort"

	"github.com/HowieRosier/pdf-redactor/models"
)

// Consolidator clusters one page's boxes by horizontal proximity, cleans
// out header/footer artifacts and stray sub-clusters, and merges what
// survives into union bounding boxes.
type Consolidator struct {
	HorizontalRatio      float64
	LineHeightMultiplier float64
	HeaderZone           float64
	FooterZone           float64
	DefaultPageWidth     float64
	DefaultPageHeight    float64
}

func NewConsolidator(cfg *models.RedactionConfig) *Consolidator {
	return &Consolidator{
		HorizontalRatio:      cfg.HorizontalRatio,
		LineHeightMultiplier: cfg.LineHeightMultiplier,
		HeaderZone:           cfg.HeaderZone,
		FooterZone:           cfg.FooterZone,
		DefaultPageWidth:     cfg.DefaultPageWidth,
		DefaultPageHeight:    cfg.DefaultPageHeight,
	}
}

// ConsolidatePages runs Consolidate over every page in ascending page
// order. Pages without a geometry declaration fall back to the configured
// default page size.
func (c *Consolidator) ConsolidatePages(boxesByPage map[int][]models.RawBox, geometry map[int]models.PageGeometry) []models.MergedRegion {
	pages := make([]int, 0, len(boxesByPage))
	for page := range boxesByPage {
		pages = append(pages, page)
	}
	sort.Ints(pages)

	var regions []models.MergedRegion
	for _, page := range pages {
		geo, ok := geometry[page]
		if !ok {
			geo = models.PageGeometry{Page: page, Width: c.DefaultPageWidth, Height: c.DefaultPageHeight}
		}
		regions = append(regions, c.Consolidate(page, boxesByPage[page], geo.Width, geo.Height)...)
	}
	return regions
}

// Consolidate merges one page's boxes, given in document order, into
// regions. A new cluster starts whenever the left edge jumps more than
// HorizontalRatio of the page width from the previous box: boxes of one
// reference block share a stable left margin, so a large jump signals a
// different block or page furniture.
func (c *Consolidator) Consolidate(page int, boxes []models.RawBox, pageWidth, pageHeight float64) []models.MergedRegion {
	if len(boxes) == 0 {
		return nil
	}

	threshold := pageWidth * c.HorizontalRatio
	var clusters [][]models.RawBox
	current := []models.RawBox{boxes[0]}
	for i := 1; i < len(boxes); i++ {
		if boxes[i].X-boxes[i-1].X > threshold {
			if cleaned := c.cleanCluster(current, pageHeight); len(cleaned) > 0 {
				clusters = append(clusters, cleaned)
			}
			current = []models.RawBox{boxes[i]}
		} else {
			current = append(current, boxes[i])
		}
	}
	if cleaned := c.cleanCluster(current, pageHeight); len(cleaned) > 0 {
		clusters = append(clusters, cleaned)
	}

	regions := make([]models.MergedRegion, 0, len(clusters))
	for i, cluster := range clusters {
		regions = append(regions, mergeCluster(page, i+1, cluster))
	}
	return regions
}

// cleanCluster removes likely noise from one raw cluster.
//
// Singletons pass through untouched. Two-box clusters are
// disproportionately often page furniture, so each box is checked against
// the header and footer zones; both may be dropped, leaving the cluster
// empty. Larger clusters are split on vertical jumps exceeding the median
// line gap times LineHeightMultiplier, and only the largest sub-cluster
// survives: a genuine reference list is many tightly and regularly spaced
// boxes, while same-margin noise elsewhere on the page forms a small,
// loosely spaced sub-cluster.
func (c *Consolidator) cleanCluster(cluster []models.RawBox, pageHeight float64) []models.RawBox {
	if len(cluster) <= 1 {
		return cluster
	}

	if len(cluster) == 2 {
		var kept []models.RawBox
		for _, b := range cluster {
			inHeader := b.Y < c.HeaderZone
			inFooter := b.Y > pageHeight-c.FooterZone
			if !inHeader && !inFooter {
				kept = append(kept, b)
			}
		}
		return kept
	}

	sorted := make([]models.RawBox, len(cluster))
	copy(sorted, cluster)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y < sorted[j].Y })

	var gaps []float64
	for i := 1; i < len(sorted); i++ {
		if g := sorted[i].Y - sorted[i-1].Y; g > 0 {
			gaps = append(gaps, g)
		}
	}
	if len(gaps) == 0 {
		// All boxes on one line; no line height to estimate.
		return sorted
	}

	jumpThreshold := median(gaps) * c.LineHeightMultiplier

	var subClusters [][]models.RawBox
	sub := []models.RawBox{sorted[0]}
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Y-sorted[i-1].Y > jumpThreshold {
			subClusters = append(subClusters, sub)
			sub = []models.RawBox{sorted[i]}
		} else {
			sub = append(sub, sorted[i])
		}
	}
	subClusters = append(subClusters, sub)

	// Ties go to the first sub-cluster encountered.
	largest := subClusters[0]
	for _, s := range subClusters[1:] {
		if len(s) > len(largest) {
			largest = s
		}
	}
	return largest
}

// mergeCluster computes the union bounding box of a cleaned cluster.
func mergeCluster(page, clusterID int, cluster []models.RawBox) models.MergedRegion {
	minX, minY := cluster[0].X, cluster[0].Y
	maxX1, maxY1 := cluster[0].X+cluster[0].W, cluster[0].Y+cluster[0].H
	for _, b := range cluster[1:] {
		if b.X < minX {
			minX = b.X
		}
		if b.Y < minY {
			minY = b.Y
		}
		if x1 := b.X + b.W; x1 > maxX1 {
			maxX1 = x1
		}
		if y1 := b.Y + b.H; y1 > maxY1 {
			maxY1 = y1
		}
	}
	return models.MergedRegion{
		Page:      page,
		ClusterID: clusterID,
		X:         minX,
		Y:         minY,
		W:         maxX1 - minX,
		H:         maxY1 - minY,
	}
}

func median(vals []float64) float64 {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
