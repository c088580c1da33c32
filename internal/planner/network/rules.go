package network

import (
	"math"
	"sort"

	"floorplan-engine/internal/planner/geometry"
	"floorplan-engine/internal/planner/models"
)

// ============================================================
// Rules: чистые запросы над списком стен
// ============================================================

// Rules хранит допуски и отвечает на геометрические вопросы о стенах.
// Все методы, чистые функции от переданных срезов.
type Rules struct {
	Tol models.Tolerances
}

func NewRules(tol models.Tolerances) Rules {
	return Rules{Tol: tol.WithDefaults()}
}

func DefaultRules() Rules {
	return Rules{Tol: models.DefaultTolerances()}
}

// NeighborsAt возвращает стены, у которых хотя бы один конец ближе tolerance к p.
func (r Rules) NeighborsAt(walls []models.Wall, p models.Point, tolerance float64, excludeID string) []models.Wall {
	var out []models.Wall
	for _, w := range walls {
		if w.ID == excludeID {
			continue
		}
		if geometry.Distance(w.Start, p) <= tolerance || geometry.Distance(w.End, p) <= tolerance {
			out = append(out, w)
		}
	}
	return out
}

// SharedVertex ищет общую вершину двух стен.
func (r Rules) SharedVertex(a, b models.Wall) (models.Point, bool) {
	for _, pa := range [2]models.Point{a.Start, a.End} {
		for _, pb := range [2]models.Point{b.Start, b.End} {
			if geometry.Distance(pa, pb) <= r.Tol.Vertex {
				return pa, true
			}
		}
	}
	return models.Point{}, false
}

// IsPerpendicularConnection общая вершина и |cos| между направлениями < PerpendicularDot.
func (r Rules) IsPerpendicularConnection(a, b models.Wall) bool {
	if _, ok := r.SharedVertex(a, b); !ok {
		return false
	}
	return math.Abs(a.Direction().Dot(b.Direction())) < r.Tol.PerpendicularDot
}

func (r Rules) IsHorizontal(w models.Wall) bool {
	return math.Abs(w.End.Y-w.Start.Y) < r.Tol.Axis
}

func (r Rules) IsVertical(w models.Wall) bool {
	return math.Abs(w.End.X-w.Start.X) < r.Tol.Axis
}

// IsCollinearContinuation упрощенный тест для ортогональных планов:
// обе стены горизонтальны или обе вертикальны и не образуют перпендикулярного стыка.
// Диагональные стены считаются коллинеарными, только если оба конца b лежат
// на прямой a в пределах допуска.
func (r Rules) IsCollinearContinuation(a, b models.Wall) bool {
	if r.IsPerpendicularConnection(a, b) {
		return false
	}
	switch {
	case r.IsHorizontal(a) && r.IsHorizontal(b):
		return true
	case r.IsVertical(a) && r.IsVertical(b):
		return true
	case r.IsHorizontal(a) || r.IsVertical(a) || r.IsHorizontal(b) || r.IsVertical(b):
		return false
	}
	return geometry.DistanceToLine(b.Start, a.Start, a.End) < r.Tol.Axis &&
		geometry.DistanceToLine(b.End, a.Start, a.End) < r.Tol.Axis
}

// IsPointInAnyRoom проверяет попадание точки хотя бы в один контур.
func (r Rules) IsPointInAnyRoom(p models.Point, rooms []models.Room) bool {
	for _, room := range rooms {
		if geometry.PointInPolygon(p, room.Polygon) {
			return true
		}
	}
	return false
}

// ============================================================
// Vertices
// ============================================================

// Vertex производная вершина: концы стен, совпавшие после округления.
type Vertex struct {
	Point   models.Point `json:"point"`
	Degree  int          `json:"degree"`
	WallIDs []string     `json:"wallIds"`
}

type vertexKey struct {
	X, Y int64
}

type endpointRef struct {
	wallID string
	end    int // 0, start, 1, end
	point  models.Point
}

func (r Rules) keyOf(p models.Point) vertexKey {
	return vertexKey{
		X: int64(math.Round(p.X / r.Tol.Vertex)),
		Y: int64(math.Round(p.Y / r.Tol.Vertex)),
	}
}

// Vertices группирует концы стен по округленной координате (эталонный алгоритм,
// пересчитывается на каждый вызов).
func (r Rules) Vertices(walls []models.Wall) []Vertex {
	groups := make(map[vertexKey][]endpointRef)
	for _, w := range walls {
		groups[r.keyOf(w.Start)] = append(groups[r.keyOf(w.Start)], endpointRef{wallID: w.ID, end: 0, point: w.Start})
		groups[r.keyOf(w.End)] = append(groups[r.keyOf(w.End)], endpointRef{wallID: w.ID, end: 1, point: w.End})
	}
	return buildVertices(groups)
}

func buildVertices(groups map[vertexKey][]endpointRef) []Vertex {
	keys := make([]vertexKey, 0, len(groups))
	for k, refs := range groups {
		if len(refs) > 0 {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].X != keys[j].X {
			return keys[i].X < keys[j].X
		}
		return keys[i].Y < keys[j].Y
	})

	out := make([]Vertex, 0, len(keys))
	for _, k := range keys {
		refs := append([]endpointRef{}, groups[k]...)
		sort.Slice(refs, func(i, j int) bool {
			if refs[i].wallID != refs[j].wallID {
				return refs[i].wallID < refs[j].wallID
			}
			return refs[i].end < refs[j].end
		})
		v := Vertex{Point: refs[0].point, Degree: len(refs)}
		for _, ref := range refs {
			v.WallIDs = appendUnique(v.WallIDs, ref.wallID)
		}
		out = append(out, v)
	}
	return out
}

func contains(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}

func appendUnique(dst []string, src ...string) []string {
	for _, s := range src {
		if !contains(dst, s) {
			dst = append(dst, s)
		}
	}
	return dst
}
