package elements

import (
	"math"
	"testing"

	"floorplan-engine/internal/planner/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hostWall = models.Wall{ID: "w", Start: models.Point{X: 100, Y: 0}, End: models.Point{X: 100, Y: 400}, Thickness: 15}

func TestPositionAndRotation(t *testing.T) {
	assert.Equal(t, models.Point{X: 100, Y: 100}, Position(hostWall, 0.25))
	assert.InDelta(t, math.Pi/2, Rotation(hostWall), 1e-9)
}

func TestClearances(t *testing.T) {
	c := Clearances(hostWall, models.Anchor{T: 0.25, Width: 80})
	assert.InDelta(t, 60, c.Left, 1e-9)
	assert.InDelta(t, 260, c.Right, 1e-9)

	edge := Clearances(hostWall, models.Anchor{T: 0, Width: 80})
	assert.Zero(t, edge.Left)
}

func TestDragTClamps(t *testing.T) {
	assert.InDelta(t, 0.5, DragT(hostWall, models.Point{X: 160, Y: 200}), 1e-9)
	assert.Equal(t, 1.0, DragT(hostWall, models.Point{X: 100, Y: 900}))
	assert.Equal(t, 0.0, DragT(hostWall, models.Point{X: 100, Y: -50}))
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		name  string
		in    models.Anchor
		t     float64
		width float64
	}{
		{"inside", models.Anchor{T: 0.3, Width: 80}, 0.3, 80},
		{"t above", models.Anchor{T: 1.4, Width: 80}, 1, 80},
		{"t below", models.Anchor{T: -0.1, Width: 80}, 0, 80},
		{"nan t", models.Anchor{T: math.NaN(), Width: 80}, 0.5, 80},
		{"wider than wall", models.Anchor{T: 0.5, Width: 1000}, 0.5, 400},
		{"zero width", models.Anchor{T: 0.5, Width: 0}, 0.5, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.in, hostWall, 1)
			assert.Equal(t, tc.t, got.T)
			assert.Equal(t, tc.width, got.Width)
		})
	}
}

func TestClone(t *testing.T) {
	d := models.Door{ID: "d", Anchor: models.Anchor{WallID: "w", T: 0.5, Width: 80}, FlipX: true}

	c := Clone(d, "d2")
	door, ok := c.(models.Door)
	require.True(t, ok)
	assert.Equal(t, "d2", door.ID)
	assert.InDelta(t, 0.6, door.T, 1e-9)
	assert.True(t, door.FlipX)

	atEnd := Clone(models.Window{ID: "n", Anchor: models.Anchor{WallID: "w", T: 0.95, Width: 60}}, "n2")
	assert.InDelta(t, 0.85, atEnd.Placement().T, 1e-9)
}

func TestPlaceOrphan(t *testing.T) {
	d := models.Door{ID: "d", Anchor: models.Anchor{WallID: "gone", T: 0.5, Width: 80}}
	_, ok := Place(d, []models.Wall{hostWall})
	assert.False(t, ok)

	d.WallID = "w"
	p, ok := Place(d, []models.Wall{hostWall})
	require.True(t, ok)
	assert.Equal(t, KindDoor, p.Kind)
	assert.Equal(t, models.Point{X: 100, Y: 200}, p.Position)
}
