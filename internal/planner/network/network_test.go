package network

import (
	"fmt"
	"math"
	"testing"

	"floorplan-engine/internal/planner/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNetwork() *Network {
	n := New(DefaultRules())
	seq := 0
	n.SetIDGenerator(func() string {
		seq++
		return fmt.Sprintf("w%d", seq)
	})
	return n
}

func pt(x, y float64) models.Point { return models.Point{X: x, Y: y} }

func rectangle(t *testing.T, n *Network) []models.Wall {
	t.Helper()
	corners := []models.Point{pt(0, 0), pt(400, 0), pt(400, 300), pt(0, 300)}
	var out []models.Wall
	for i := range corners {
		w, ok := n.AddWall(corners[i], corners[(i+1)%len(corners)], 15)
		require.True(t, ok)
		out = append(out, w)
	}
	return out
}

func TestAddWallRejectsDegenerate(t *testing.T) {
	n := newTestNetwork()

	_, ok := n.AddWall(pt(10, 10), pt(10, 10), 15)
	assert.False(t, ok)
	_, ok = n.AddWall(pt(math.NaN(), 0), pt(10, 10), 15)
	assert.False(t, ok)
	assert.Empty(t, n.Walls())

	w, ok := n.AddWall(pt(0, 0), pt(100, 0), -3)
	require.True(t, ok)
	assert.Equal(t, "w1", w.ID)
	assert.Equal(t, n.Rules().Tol.MinThickness, w.Thickness)
}

func TestVertexIndexMatchesReference(t *testing.T) {
	n := newTestNetwork()
	walls := rectangle(t, n)
	r := n.Rules()

	check := func() {
		assert.Equal(t, r.Vertices(n.Walls()), n.Vertices())
	}
	check()

	n.TranslateVertex(pt(400, 0), pt(20, 10), n.WallsAt(pt(400, 0)))
	check()
	_, err := n.SplitWallAt(walls[2].ID, pt(200, 300))
	require.NoError(t, err)
	check()
	_, err = n.DeleteWall(walls[0].ID)
	require.NoError(t, err)
	check()
	_, err = n.UpdateWallLength(walls[1].ID, 500, SideRight)
	require.NoError(t, err)
	check()

	assert.Equal(t, 2, n.Degree(pt(0, 300)))
}

func TestTranslateVertexRoundTrip(t *testing.T) {
	n := newTestNetwork()
	rectangle(t, n)
	before := n.Walls()

	origin := pt(400, 300)
	ids := n.WallsAt(origin)
	require.Len(t, ids, 2)

	delta := pt(37.25, -12.5)
	n.TranslateVertex(origin, delta, ids)
	n.TranslateVertex(origin.Add(delta), delta.Neg(), ids)

	after := n.Walls()
	require.Len(t, after, len(before))
	for i := range before {
		assert.InDelta(t, before[i].Start.X, after[i].Start.X, 1e-6)
		assert.InDelta(t, before[i].Start.Y, after[i].Start.Y, 1e-6)
		assert.InDelta(t, before[i].End.X, after[i].End.X, 1e-6)
		assert.InDelta(t, before[i].End.Y, after[i].End.Y, 1e-6)
	}
}

func TestTranslateVertexDegenerateIsNoop(t *testing.T) {
	n := newTestNetwork()
	a, _ := n.AddWall(pt(0, 0), pt(100, 0), 10)
	before := n.Walls()

	n.TranslateVertex(pt(100, 0), pt(-100, 0), []string{a.ID})
	assert.Equal(t, before, n.Walls())
}

func TestUpdateWallLength(t *testing.T) {
	n := newTestNetwork()
	w, _ := n.AddWall(pt(0, 0), pt(300, 0), 10)

	_, err := n.UpdateWallLength(w.ID, 500, SideRight)
	require.NoError(t, err)
	got, _ := n.Wall(w.ID)
	assert.Equal(t, pt(0, 0), got.Start)
	assert.InDelta(t, 500, got.End.X, 1e-9)

	_, err = n.UpdateWallLength(w.ID, 200, SideLeft)
	require.NoError(t, err)
	got, _ = n.Wall(w.ID)
	assert.InDelta(t, 300, got.Start.X, 1e-9)
	assert.InDelta(t, 500, got.End.X, 1e-9)

	_, err = n.UpdateWallLength(w.ID, -20, SideRight)
	require.NoError(t, err)
	got, _ = n.Wall(w.ID)
	assert.InDelta(t, n.Rules().Tol.MinLength, got.Length(), 1e-9)

	_, err = n.UpdateWallLength(w.ID, math.NaN(), SideRight)
	assert.ErrorIs(t, err, ErrInvalidValue)
	_, err = n.UpdateWallLength(w.ID, 100, Side("middle"))
	assert.ErrorIs(t, err, ErrInvalidValue)
	_, err = n.UpdateWallLength("missing", 100, SideRight)
	assert.ErrorIs(t, err, ErrWallNotFound)
}

func TestUpdateWallThickness(t *testing.T) {
	n := newTestNetwork()
	w, _ := n.AddWall(pt(0, 0), pt(300, 0), 10)

	_, err := n.UpdateWallThickness(w.ID, 25)
	require.NoError(t, err)
	got, _ := n.Wall(w.ID)
	assert.Equal(t, 25.0, got.Thickness)

	_, err = n.UpdateWallThickness(w.ID, math.Inf(1))
	assert.ErrorIs(t, err, ErrInvalidValue)
	_, err = n.UpdateWallThickness("missing", 10)
	assert.ErrorIs(t, err, ErrWallNotFound)
}

func TestSplitWallAt(t *testing.T) {
	n := newTestNetwork()
	w, _ := n.AddWall(pt(0, 0), pt(500, 0), 20)
	other, _ := n.AddWall(pt(500, 0), pt(500, 300), 20)

	walls, err := n.SplitWallAt(w.ID, pt(250, 40))
	require.NoError(t, err)
	require.Len(t, walls, 3)

	assert.Equal(t, w.ID, walls[0].ID)
	assert.InDelta(t, 250, walls[0].Length(), 1e-9)
	assert.Equal(t, "w3", walls[1].ID, "second half is inserted after the first")
	assert.InDelta(t, 250, walls[1].Length(), 1e-9)
	assert.Equal(t, pt(250, 0), walls[1].Start)
	assert.Equal(t, 20.0, walls[1].Thickness)
	assert.Equal(t, other.ID, walls[2].ID)
}

func TestSplitWallNearEndpointIsNoop(t *testing.T) {
	n := newTestNetwork()
	w, _ := n.AddWall(pt(0, 0), pt(500, 0), 20)

	walls, err := n.SplitWallAt(w.ID, pt(-30, 0))
	require.NoError(t, err)
	require.Len(t, walls, 1)

	_, err = n.SplitWallAt("missing", pt(0, 0))
	assert.ErrorIs(t, err, ErrWallNotFound)
}

func TestMoveWallDragsNeighbours(t *testing.T) {
	n := newTestNetwork()
	walls := rectangle(t, n)

	// верхняя стена y=0 уезжает вниз на проекцию delta на нормаль
	_, err := n.MoveWall(walls[0].ID, pt(13, -50))
	require.NoError(t, err)

	top, _ := n.Wall(walls[0].ID)
	right, _ := n.Wall(walls[1].ID)
	left, _ := n.Wall(walls[3].ID)
	assert.InDelta(t, -50, top.Start.Y, 1e-9)
	assert.InDelta(t, 0, top.Start.X, 1e-9)
	assert.InDelta(t, -50, right.Start.Y, 1e-9)
	assert.InDelta(t, -50, left.End.Y, 1e-9)
}

func TestDeleteWallKeepsElements(t *testing.T) {
	n := newTestNetwork()
	w, _ := n.AddWall(pt(0, 0), pt(500, 0), 20)
	_, err := n.PutElement(models.Door{Anchor: models.Anchor{WallID: w.ID, T: 0.5, Width: 80}})
	require.NoError(t, err)

	walls, err := n.DeleteWall(w.ID)
	require.NoError(t, err)
	assert.Empty(t, walls)
	assert.Len(t, n.Elements(), 1)
	assert.Empty(t, n.Placements(), "orphans are skipped")

	_, err = n.DeleteWall(w.ID)
	assert.ErrorIs(t, err, ErrWallNotFound)
}

func TestRooms(t *testing.T) {
	n := newTestNetwork()
	rooms := n.SetRooms([]models.Room{{ID: "r1", Polygon: []models.Point{pt(0, 0), pt(400, 0), pt(400, 300), pt(0, 300)}}})
	require.Len(t, rooms, 1)
	assert.InDelta(t, 12, rooms[0].Area, 1e-9)

	_, err := n.MoveRoom("r1", pt(100, 0))
	require.NoError(t, err)
	r, ok := n.RoomAt(pt(450, 10))
	require.True(t, ok)
	assert.Equal(t, "r1", r.ID)

	_, err = n.MoveRoom("missing", pt(1, 1))
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestOnChangeAndProjectRoundTrip(t *testing.T) {
	n := newTestNetwork()
	var changes []Change
	n.OnChange(func(c Change) { changes = append(changes, c) })

	walls := rectangle(t, n)
	_, err := n.PutElement(models.Window{Anchor: models.Anchor{WallID: walls[1].ID, T: 0.3, Width: 90}, Height: 120})
	require.NoError(t, err)
	require.Len(t, changes, 5)
	assert.Equal(t, ChangeElements, changes[4].Kind)

	p := n.Project("p1", "Flat")
	assert.Len(t, p.Walls, 4)
	assert.Len(t, p.Windows, 1)
	assert.Empty(t, p.Doors)

	restored := FromProject(p, n.Rules())
	assert.Equal(t, p, restored.Project("p1", "Flat"))
}
