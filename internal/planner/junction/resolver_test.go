package junction

import (
	"testing"

	"floorplan-engine/internal/planner/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func w(id string, x1, y1, x2, y2, th float64) models.Wall {
	return models.Wall{ID: id, Start: models.Point{X: x1, Y: y1}, End: models.Point{X: x2, Y: y2}, Thickness: th}
}

func p(x, y float64) models.Point { return models.Point{X: x, Y: y} }

// прямоугольник 400x300 по часовой стрелке (ось y вниз): Normal() смотрит внутрь
func rectangle() []models.Wall {
	return []models.Wall{
		w("a", 0, 0, 400, 0, 15),
		w("b", 400, 0, 400, 300, 15),
		w("c", 400, 300, 0, 300, 15),
		w("d", 0, 300, 0, 0, 15),
	}
}

func TestRectangleCorners(t *testing.T) {
	r := New(models.DefaultTolerances())
	walls := rectangle()
	a := walls[0]
	self := models.NewIDSet(a.ID)

	inward := a.Normal()
	assert.InDelta(t, -7.5, r.FaceOffset(walls, a, a.End, inward, self), 1e-9)
	assert.InDelta(t, -7.5, r.FaceOffset(walls, a, a.Start, inward, self), 1e-9)

	outward := inward.Neg()
	assert.InDelta(t, 7.5, r.FaceOffset(walls, a, a.End, outward, self), 1e-9)
	assert.InDelta(t, 7.5, r.FaceOffset(walls, a, a.Start, outward, self), 1e-9)
}

func TestCenterlineHasNoOffset(t *testing.T) {
	r := New(models.DefaultTolerances())
	walls := rectangle()
	assert.Zero(t, r.FaceOffset(walls, walls[0], walls[0].End, models.Point{}, models.NewIDSet()))
}

func TestTJunctionRetractsBothFaces(t *testing.T) {
	r := New(models.DefaultTolerances())
	stem := w("A", 0, 0, 0, 300, 10)
	bar := w("B", -200, 0, 200, 0, 20)
	walls := []models.Wall{stem, bar}

	for _, normal := range []models.Point{stem.Normal(), stem.Normal().Neg()} {
		assert.InDelta(t, -10, r.FaceOffset(walls, stem, stem.Start, normal, models.NewIDSet()), 1e-9)
	}

	contacts := r.Contacts(walls, stem, stem.Start, stem.Normal(), models.NewIDSet())
	require.Len(t, contacts, 1)
	assert.Equal(t, ClassBlocking, contacts[0].Class)
	assert.True(t, contacts[0].TJunction)
	assert.InDelta(t, 10, contacts[0].Retraction, 1e-9)
}

func TestFreeEndExtendsByHalfThickness(t *testing.T) {
	r := New(models.DefaultTolerances())
	stem := w("A", 0, 0, 0, 300, 10)
	assert.InDelta(t, 5, r.FaceOffset([]models.Wall{stem}, stem, stem.End, stem.Normal(), models.NewIDSet()), 1e-9)
}

func TestContinuationKeepsFaceFlush(t *testing.T) {
	r := New(models.DefaultTolerances())
	left := w("l", 0, 0, 100, 0, 15)
	right := w("r", 100, 0, 200, 0, 15)
	walls := []models.Wall{left, right}

	c := r.Classify(left, right, left.End, left.Normal())
	assert.Equal(t, ClassContinuation, c.Class)
	assert.Zero(t, r.FaceOffset(walls, left, left.End, left.Normal(), models.NewIDSet()))
}

func TestBlockingBeatsContinuation(t *testing.T) {
	r := New(models.DefaultTolerances())
	left := w("l", 0, 0, 100, 0, 20)
	right := w("r", 100, 0, 200, 0, 20)
	stem := w("s", 100, 0, 100, 200, 10)
	walls := []models.Wall{left, right, stem}

	// грань со стороны примыкающей стены укорачивается, противоположная остается на стыке
	assert.InDelta(t, -5, r.FaceOffset(walls, left, left.End, left.Normal(), models.NewIDSet()), 1e-9)
	assert.Zero(t, r.FaceOffset(walls, left, left.End, left.Normal().Neg(), models.NewIDSet()))
}

func TestIgnoreAndCandidates(t *testing.T) {
	r := New(models.DefaultTolerances())
	walls := rectangle()

	got := r.Candidates(walls, walls[0], walls[0].End, models.NewIDSet("b"))
	assert.Empty(t, got)

	got = r.Candidates(walls, walls[0], walls[0].End, models.NewIDSet())
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
	assert.True(t, r.IsBlocking(got[0], walls[0].End, walls[0].Normal()))
	assert.False(t, r.IsBlocking(got[0], walls[0].End, walls[0].Normal().Neg()))
}
