package regions

import "github.com/HowieRosier/pdf-redactor/models"

// Planner expands merged regions into the absolute rectangles handed to
// the renderer. Padding is uniform on all four sides, so every FinalRect
// fully contains its source region.
type Planner struct {
	Padding float64
}

func NewPlanner(cfg *models.RedactionConfig) *Planner {
	return &Planner{Padding: cfg.Padding}
}

func (p *Planner) Plan(regions []models.MergedRegion) []models.FinalRect {
	if len(regions) == 0 {
		return nil
	}
	rects := make([]models.FinalRect, 0, len(regions))
	for _, r := range regions {
		rects = append(rects, models.FinalRect{
			Page: r.Page,
			X0:   r.X - p.Padding,
			Y0:   r.Y - p.Padding,
			X1:   r.X + r.W + p.Padding,
			Y1:   r.Y + r.H + p.Padding,
		})
	}
	return rects
}
