package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnit(t *testing.T) {
	u := Point{X: 3, Y: 4}.Unit()
	assert.InDelta(t, 0.6, u.X, 1e-9)
	assert.InDelta(t, 0.8, u.Y, 1e-9)

	assert.Equal(t, Point{}, Point{}.Unit())

	// короткий вектор не раздувается до единичной длины
	short := Point{X: 0.05}.Unit()
	assert.InDelta(t, 0.5, short.X, 1e-9)
	assert.False(t, math.IsNaN(short.X))
}

func TestPerpIsLeftNormal(t *testing.T) {
	assert.Equal(t, Point{X: 0, Y: 1}, Point{X: 1}.Perp())
	assert.Equal(t, 0.0, Point{X: 2, Y: 5}.Dot(Point{X: 2, Y: 5}.Perp()))
}

func TestProjectOntoSegment(t *testing.T) {
	a, b := Point{}, Point{X: 100}

	cases := []struct {
		name  string
		p     Point
		proj  Point
		param float64
	}{
		{"inside", Point{X: 25, Y: 10}, Point{X: 25}, 0.25},
		{"before start", Point{X: -50, Y: 3}, Point{}, 0},
		{"after end", Point{X: 150, Y: -3}, Point{X: 100}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			proj, param := ProjectOntoSegment(tc.p, a, b)
			assert.InDelta(t, tc.proj.X, proj.X, 1e-9)
			assert.InDelta(t, tc.proj.Y, proj.Y, 1e-9)
			assert.InDelta(t, tc.param, param, 1e-9)
		})
	}
}

func TestProjectOntoDegenerateSegment(t *testing.T) {
	proj, param := ProjectOntoSegment(Point{X: 5, Y: 5}, Point{X: 1, Y: 1}, Point{X: 1, Y: 1})
	assert.Equal(t, Point{X: 1, Y: 1}, proj)
	assert.False(t, math.IsNaN(param))
}

func TestDistances(t *testing.T) {
	assert.InDelta(t, 5, Distance(Point{}, Point{X: 3, Y: 4}), 1e-9)
	assert.InDelta(t, 10, DistanceToSegment(Point{X: 50, Y: 10}, Point{}, Point{X: 100}), 1e-9)
	assert.InDelta(t, 5, DistanceToSegment(Point{X: 103, Y: 4}, Point{}, Point{X: 100}), 1e-9)
	assert.InDelta(t, 4, DistanceToLine(Point{X: 103, Y: 4}, Point{}, Point{X: 100}), 1e-9)
}

func TestLineIntersection(t *testing.T) {
	s, ok := LineIntersection(Point{}, Point{X: 1}, Point{X: 30, Y: -10}, Point{Y: 1})
	assert.True(t, ok)
	assert.InDelta(t, 30, s, 1e-9)

	_, ok = LineIntersection(Point{}, Point{X: 1}, Point{Y: 5}, Point{X: 2})
	assert.False(t, ok)
}

func TestPolygons(t *testing.T) {
	square := []Point{{X: 0, Y: 0}, {X: 400, Y: 0}, {X: 400, Y: 300}, {X: 0, Y: 300}}

	assert.InDelta(t, 120000, PolygonArea(square), 1e-9)
	assert.InDelta(t, 1400, PolygonPerimeter(square), 1e-9)
	assert.True(t, PointInPolygon(Point{X: 200, Y: 150}, square))
	assert.False(t, PointInPolygon(Point{X: 500, Y: 150}, square))
	assert.False(t, PointInPolygon(Point{X: 1, Y: 1}, square[:2]))
	assert.Zero(t, PolygonArea(square[:2]))
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, 1.0, Clamp(3, 0, 1))
	assert.Equal(t, 0.0, Clamp(-3, 0, 1))
	assert.Equal(t, Point{X: 13, Y: -2}, Round(Point{X: 12.6, Y: -2.4}))
	assert.False(t, IsFinite(math.NaN()))
	assert.False(t, IsFinite(math.Inf(1)))
	assert.True(t, IsFinite(0))
	assert.True(t, Point{X: 1}.Near(Point{X: 1.5}, 0.5))
	assert.Equal(t, Point{X: 50, Y: 5}, Midpoint(Point{}, Point{X: 100, Y: 10}))
}
