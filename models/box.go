// Package models defines the value types and configuration shared across
// the redaction pipeline.
package models

// RawBox is one coordinate annotation detected on one page, in page
// coordinate units with the origin at the top-left corner.
type RawBox struct {
	Page int
	X    float64
	Y    float64
	W    float64
	H    float64
}

// PageGeometry holds the declared dimensions of one page.
type PageGeometry struct {
	Page   int
	Width  float64
	Height float64
}

// MergedRegion is the union bounding box of one cleaned cluster of boxes.
// ClusterID is 1-based in cleaning order, kept for traceability.
type MergedRegion struct {
	Page      int
	ClusterID int
	X         float64
	Y         float64
	W         float64
	H         float64
}

// FinalRect is a MergedRegion expanded by the configured padding on all
// four sides. X0/Y0 is the top-left corner, X1/Y1 the bottom-right.
type FinalRect struct {
	Page int
	X0   float64
	Y0   float64
	X1   float64
	Y1   float64
}

// JobResult holds the outcome of one processed document. It is created
// exactly once per job, on success or on a caught failure, and never
// mutated afterwards.
type JobResult struct {
	ItemName string
	Success  bool
	Message  string
}
