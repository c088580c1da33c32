package junction

import (
	"math"

	"floorplan-engine/internal/planner/geometry"
	"floorplan-engine/internal/planner/models"
)

// ============================================================
// Junction classification
// ============================================================

// Class роль соседней стены в стыке относительно выбранной грани.
type Class string

const (
	ClassCollinear    Class = "collinear"
	ClassContinuation Class = "continuation"
	ClassBlocking     Class = "blocking"
	ClassExtending    Class = "extending"
)

// Contact классифицированный сосед в точке стыка.
type Contact struct {
	WallID     string  `json:"wallId"`
	Class      Class   `json:"class"`
	TJunction  bool    `json:"tJunction"`
	Retraction float64 `json:"retraction,omitempty"`
	Extension  float64 `json:"extension,omitempty"`
}

type Resolver struct {
	tol models.Tolerances
}

func New(tol models.Tolerances) *Resolver {
	return &Resolver{tol: tol.WithDefaults()}
}

// Candidates стены, чей отрезок проходит ближе допуска стыка к point,
// кроме самой стены и ignore.
func (r *Resolver) Candidates(walls []models.Wall, wall models.Wall, point models.Point, ignore models.IDSet) []models.Wall {
	var out []models.Wall
	for _, c := range walls {
		if c.ID == wall.ID || ignore.Has(c.ID) {
			continue
		}
		if geometry.DistanceToSegment(point, c.Start, c.End) <= r.tol.Junction {
			out = append(out, c)
		}
	}
	return out
}

// IsBlocking сосед закрывает грань: его дальний конец лежит со стороны normal
// (cos > BlockingDot) либо точка стыка приходится на середину соседа (T-стык).
func (r *Resolver) IsBlocking(cand models.Wall, point, normal models.Point) bool {
	blocking, _ := r.blocking(cand, point, normal)
	return blocking
}

func (r *Resolver) blocking(cand models.Wall, point, normal models.Point) (blocking, tJunction bool) {
	ds := geometry.Distance(cand.Start, point)
	de := geometry.Distance(cand.End, point)
	if ds > r.tol.Junction && de > r.tol.Junction {
		return true, true
	}
	far := cand.End
	if de < ds {
		far = cand.Start
	}
	n := normal.Unit()
	if n.IsZero() {
		return false, false
	}
	return far.Sub(point).Unit().Dot(n) > r.tol.BlockingDot, false
}

// Classify определяет роль cand в стыке wall в точке point для грани normal.
func (r *Resolver) Classify(wall, cand models.Wall, point, normal models.Point) Contact {
	c := Contact{WallID: cand.ID}
	uw := wall.Direction()
	uc := cand.Direction()

	if math.Abs(uw.Cross(uc)) < r.tol.CollinearCross {
		c.Class = ClassCollinear
		if math.Abs(uw.Dot(uc)) > 1-r.tol.CollinearCross {
			c.Class = ClassContinuation
		}
		return c
	}

	blocking, tj := r.blocking(cand, point, normal)
	c.TJunction = tj
	if blocking {
		c.Class = ClassBlocking
		c.Retraction = r.retraction(wall, cand, point, normal)
		return c
	}
	c.Class = ClassExtending
	c.Extension = cand.Thickness / 2
	return c
}

// retraction пересекает линию грани стены с обеими гранями соседа и берет
// параметр, дальше всего уходящий внутрь стены от точки стыка.
func (r *Resolver) retraction(wall, cand models.Wall, point, normal models.Point) float64 {
	inward := wall.Other(point).Sub(point).Unit()
	face := point.Add(normal.Unit().Scale(wall.Thickness / 2))

	uc := cand.Direction()
	nc := uc.Perp()
	best := math.Inf(-1)
	for _, sign := range [2]float64{1, -1} {
		q := cand.Start.Add(nc.Scale(sign * cand.Thickness / 2))
		if s, ok := geometry.LineIntersection(face, inward, q, uc); ok && s > best {
			best = s
		}
	}
	if math.IsInf(best, -1) {
		return 0
	}
	return math.Max(0, best)
}

// ============================================================
// Face offset
// ============================================================

// FaceOffset знаковое смещение конца грани относительно конца осевой линии
// в точке point: отрицательное, грань укорачивается, положительное, удлиняется.
// Нулевая normal означает саму осевую линию (смещение 0).
//
// Приоритет: минимальное укорочение среди закрывающих соседей; иначе 0 при
// продолжении; иначе максимальное удлинение; иначе свободный торец, половина
// собственной толщины.
func (r *Resolver) FaceOffset(walls []models.Wall, wall models.Wall, point, normal models.Point, ignore models.IDSet) float64 {
	if normal.Unit().IsZero() {
		return 0
	}

	retraction := math.Inf(1)
	continuation := false
	extension := math.Inf(-1)

	for _, cand := range r.Candidates(walls, wall, point, ignore) {
		c := r.Classify(wall, cand, point, normal)
		switch c.Class {
		case ClassBlocking:
			retraction = math.Min(retraction, c.Retraction)
		case ClassContinuation:
			continuation = true
		case ClassExtending:
			extension = math.Max(extension, c.Extension)
		}
	}

	switch {
	case !math.IsInf(retraction, 1):
		return -retraction
	case continuation:
		return 0
	case !math.IsInf(extension, -1):
		return extension
	}
	return wall.Thickness / 2
}

// Contacts все классифицированные соседи в точке (для отладки и рендера).
func (r *Resolver) Contacts(walls []models.Wall, wall models.Wall, point, normal models.Point, ignore models.IDSet) []Contact {
	var out []Contact
	for _, cand := range r.Candidates(walls, wall, point, ignore) {
		out = append(out, r.Classify(wall, cand, point, normal))
	}
	return out
}
