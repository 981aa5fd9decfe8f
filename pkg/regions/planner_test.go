package regions

import (
	"testing"

	"github.com/HowieRosier/pdf-redactor/models"
)

func TestPlan_PaddingExpandsUniformly(t *testing.T) {
	p := NewPlanner(models.DefaultConfig())
	regions := []models.MergedRegion{
		{Page: 2, ClusterID: 1, X: 50, Y: 400, W: 200, H: 80},
	}

	got := p.Plan(regions)
	if len(got) != 1 {
		t.Fatalf("got %d rects, want 1", len(got))
	}
	want := models.FinalRect{Page: 2, X0: 43, Y0: 393, X1: 257, Y1: 487}
	if got[0] != want {
		t.Errorf("rect = %+v, want %+v", got[0], want)
	}
}

func TestPlan_RectContainsRegion(t *testing.T) {
	p := &Planner{Padding: 7}
	regions := []models.MergedRegion{
		{Page: 1, X: 0, Y: 0, W: 10, H: 10},
		{Page: 1, X: 321.5, Y: 88.25, W: 12.5, H: 640},
	}

	for i, r := range regions {
		rect := p.Plan([]models.MergedRegion{r})[0]
		if rect.X0 > r.X || rect.Y0 > r.Y || rect.X1 < r.X+r.W || rect.Y1 < r.Y+r.H {
			t.Errorf("rect %d %+v does not contain region %+v", i, rect, r)
		}
	}
}

func TestPlan_EmptyInput(t *testing.T) {
	p := &Planner{Padding: 7}
	if got := p.Plan(nil); got != nil {
		t.Errorf("Plan(nil) = %v, want nil", got)
	}
}
