package geometry

import "math"

// ============================================================
// Geometry primitives
// ============================================================

// MinSegmentLength нижняя граница длины при делении на длину отрезка.
const MinSegmentLength = 0.1

// Point точка плана в сантиметрах.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(o Point) Point     { return Point{X: p.X + o.X, Y: p.Y + o.Y} }
func (p Point) Sub(o Point) Point     { return Point{X: p.X - o.X, Y: p.Y - o.Y} }
func (p Point) Scale(k float64) Point { return Point{X: p.X * k, Y: p.Y * k} }
func (p Point) Dot(o Point) float64   { return p.X*o.X + p.Y*o.Y }
func (p Point) Cross(o Point) float64 { return p.X*o.Y - p.Y*o.X }
func (p Point) Len() float64          { return math.Hypot(p.X, p.Y) }
func (p Point) Perp() Point           { return Point{X: -p.Y, Y: p.X} }
func (p Point) Neg() Point            { return Point{X: -p.X, Y: -p.Y} }
func (p Point) IsZero() bool          { return p.X == 0 && p.Y == 0 }

// Near совпадение точек в пределах eps.
func (p Point) Near(o Point, eps float64) bool {
	return Distance(p, o) <= eps
}

// Unit нормирует вектор. Длина меньше MinSegmentLength считается равной ей,
// поэтому результат никогда не содержит NaN.
func (p Point) Unit() Point {
	l := p.Len()
	if l == 0 {
		return Point{}
	}
	return p.Scale(1 / math.Max(l, MinSegmentLength))
}

// Distance евклидово расстояние.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Lerp возвращает a + t*(b-a).
func Lerp(a, b Point, t float64) Point {
	return Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// Midpoint середина отрезка.
func Midpoint(a, b Point) Point {
	return Lerp(a, b, 0.5)
}

// ============================================================
// Segments
// ============================================================

// ProjectOntoSegment проецирует p на отрезок ab, параметр t зажат в [0,1].
func ProjectOntoSegment(p, a, b Point) (Point, float64) {
	d := b.Sub(a)
	lenSq := d.Dot(d)
	if lenSq < MinSegmentLength*MinSegmentLength {
		lenSq = MinSegmentLength * MinSegmentLength
	}
	t := Clamp(p.Sub(a).Dot(d)/lenSq, 0, 1)
	return Lerp(a, b, t), t
}

// DistanceToSegment расстояние от p до ближайшей точки отрезка ab.
func DistanceToSegment(p, a, b Point) float64 {
	proj, _ := ProjectOntoSegment(p, a, b)
	return Distance(p, proj)
}

// DistanceToLine расстояние от p до бесконечной прямой через a и b.
func DistanceToLine(p, a, b Point) float64 {
	d := b.Sub(a)
	l := math.Max(d.Len(), MinSegmentLength)
	return math.Abs(d.Cross(p.Sub(a))) / l
}

// LineIntersection пересекает прямые p+s*u и q+r*v и возвращает s.
// ok=false для параллельных прямых.
func LineIntersection(p, u, q, v Point) (float64, bool) {
	denom := u.Cross(v)
	if math.Abs(denom) < 1e-9 {
		return 0, false
	}
	return q.Sub(p).Cross(v) / denom, true
}

// ============================================================
// Polygons
// ============================================================

// PointInPolygon ray casting; точки на границе могут попасть в любую сторону.
func PointInPolygon(p Point, poly []Point) bool {
	if len(poly) < 3 {
		return false
	}
	inside := false
	j := len(poly) - 1
	for i := range poly {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// PolygonArea площадь по формуле шнурка (без знака), в см².
func PolygonArea(poly []Point) float64 {
	if len(poly) < 3 {
		return 0
	}
	var sum float64
	j := len(poly) - 1
	for i := range poly {
		sum += poly[j].X*poly[i].Y - poly[i].X*poly[j].Y
		j = i
	}
	return math.Abs(sum) / 2
}

// PolygonPerimeter периметр замкнутого контура.
func PolygonPerimeter(poly []Point) float64 {
	if len(poly) < 2 {
		return 0
	}
	var sum float64
	j := len(poly) - 1
	for i := range poly {
		sum += Distance(poly[j], poly[i])
		j = i
	}
	return sum
}

// ============================================================
// Helpers
// ============================================================

func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Round округляет до целого сантиметра.
func Round(p Point) Point {
	return Point{X: math.Round(p.X), Y: math.Round(p.Y)}
}

// IsFinite проверяет, что число пригодно для записи в модель.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
