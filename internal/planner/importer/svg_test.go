package importer

import (
	"strings"
	"testing"

	"floorplan-engine/internal/planner/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const planSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="500" height="400">
  <rect id="Wall_top" x="0" y="-7.5" width="400" height="15"/>
  <g id="layer">
    <path id="Wall_side" d="M 400 0 V 300 H 0 V 0"/>
  </g>
  <rect id="Door_1" x="160" y="-7.5" width="80" height="15"/>
  <rect id="Window_1" x="392.5" y="100" width="15" height="90"/>
  <rect id="Door_far" x="1000" y="1000" width="80" height="10"/>
  <path id="Kitchen_room" d="M 0 0 L 400 0 L 400 300 L 0 300 Z"/>
  <rect id="Decor" x="10" y="10" width="5" height="5"/>
</svg>`

func TestImport_Plan(t *testing.T) {
	p, err := New(Options{}).Import(strings.NewReader(planSVG))
	require.NoError(t, err)

	require.Len(t, p.Walls, 4)
	assert.Equal(t, models.Wall{ID: "Wall_top", Start: models.Point{X: 0, Y: 0}, End: models.Point{X: 400, Y: 0}, Thickness: 15}, p.Walls[0])
	assert.Equal(t, "Wall_side", p.Walls[1].ID)
	assert.Equal(t, "wall-1", p.Walls[2].ID)
	assert.Equal(t, "wall-2", p.Walls[3].ID)
	assert.Equal(t, models.Point{X: 400, Y: 300}, p.Walls[2].Start)
	assert.Equal(t, models.Point{X: 0, Y: 300}, p.Walls[2].End)

	require.Len(t, p.Doors, 1)
	assert.Equal(t, models.Anchor{WallID: "Wall_top", T: 0.5, Width: 80}, p.Doors[0].Anchor)

	require.Len(t, p.Windows, 1)
	assert.Equal(t, "Wall_side", p.Windows[0].WallID)
	assert.InDelta(t, 145.0/300, p.Windows[0].T, 1e-9)
	assert.Equal(t, 90.0, p.Windows[0].Width)
	assert.Equal(t, 120.0, p.Windows[0].Height)

	require.Len(t, p.Rooms, 1)
	assert.Equal(t, "Kitchen", p.Rooms[0].Name)
	assert.Len(t, p.Rooms[0].Polygon, 4)
	assert.InDelta(t, 12.0, p.Rooms[0].Area, 1e-9)
}

func TestImport_Rejects(t *testing.T) {
	tests := []struct {
		name string
		svg  string
	}{
		{"not xml", `{"walls":[]}`},
		{"no walls", `<svg><rect id="Door_1" x="0" y="0" width="80" height="10"/></svg>`},
		{"degenerate wall", `<svg><path id="Wall_1" d="M 0 0 L 0 0"/></svg>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Options{}).Import(strings.NewReader(tt.svg))
			assert.ErrorIs(t, err, ErrInvalidSVG)
		})
	}
}

func TestImport_DuplicateIDs(t *testing.T) {
	svg := `<svg>
  <rect id="Wall_a" x="0" y="0" width="100" height="10"/>
  <rect id="Wall_a" x="0" y="50" width="100" height="10"/>
</svg>`

	p, err := New(Options{WallThickness: 20}).Import(strings.NewReader(svg))
	require.NoError(t, err)
	require.Len(t, p.Walls, 2)
	assert.Equal(t, "Wall_a", p.Walls[0].ID)
	assert.Equal(t, "wall-1", p.Walls[1].ID)
	assert.Equal(t, 10.0, p.Walls[1].Thickness)
}

func TestParsePath(t *testing.T) {
	points, closed, err := ParsePath("M 0 0 l 10 0 v 10 h -10 z")
	require.NoError(t, err)
	assert.True(t, closed)
	assert.Equal(t, []models.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}, points)

	points, closed, err = ParsePath("M0,0 10,0 10,10")
	require.NoError(t, err)
	assert.False(t, closed)
	assert.Len(t, points, 3)

	_, _, err = ParsePath("   ")
	assert.Error(t, err)
}
