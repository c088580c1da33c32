package snap

import (
	"math"

	"floorplan-engine/internal/planner/geometry"
	"floorplan-engine/internal/planner/models"
)

// ============================================================
// Snapping engine
// ============================================================

// Kind какая привязка сработала.
type Kind string

const (
	KindNone   Kind = "none"
	KindVertex Kind = "vertex"
	KindAxis   Kind = "axis"
	KindEdge   Kind = "edge"
	KindGrid   Kind = "grid"
)

// Request входные данные одного кадра. Walls, снимок на момент начала действия.
type Request struct {
	Raw     models.Point
	Walls   []models.Wall
	Rooms   []models.Room
	Enabled bool
	Zoom    float64
	// Anchor начало действия: первая точка рисуемой стены или исходная
	// позиция перетаскиваемой вершины.
	Anchor *models.Point
}

// Result скорректированная точка и направляющие для рендера.
type Result struct {
	Point  models.Point `json:"point"`
	Kind   Kind         `json:"kind"`
	GuideX *float64     `json:"guideX,omitempty"` // вертикальная направляющая x = GuideX
	GuideY *float64     `json:"guideY,omitempty"` // горизонтальная направляющая y = GuideY
}

type Engine struct {
	tol models.Tolerances
}

func New(tol models.Tolerances) *Engine {
	return &Engine{tol: tol.WithDefaults()}
}

// ResolvePointer применяет привязки в порядке приоритета:
// вершина → выравнивание по осям → ребро → сетка 1 см.
func (e *Engine) ResolvePointer(req Request) Result {
	if !req.Enabled {
		return Result{Point: req.Raw, Kind: KindNone}
	}
	zoom := req.Zoom
	if zoom <= 0 || !geometry.IsFinite(zoom) {
		zoom = 1
	}
	raw := req.Raw
	targets := collectTargets(req.Walls, req.Rooms)

	// 1. Вершины
	if p, ok := nearestPoint(raw, targets, e.tol.VertexSnapPx/zoom); ok {
		return Result{Point: p, Kind: KindVertex}
	}

	// 2. Оси
	axisTargets := targets
	if req.Anchor != nil {
		axisTargets = append([]models.Point{*req.Anchor}, targets...)
	}
	axisTol := e.tol.AxisSnapPx / zoom
	lockX, okX := nearestAxis(raw.X, axisTargets, func(p models.Point) float64 { return p.X }, axisTol)
	lockY, okY := nearestAxis(raw.Y, axisTargets, func(p models.Point) float64 { return p.Y }, axisTol)

	if okX && okY {
		return Result{Point: models.Point{X: lockX, Y: lockY}, Kind: KindAxis, GuideX: &lockX, GuideY: &lockY}
	}

	candidate := raw
	if okX {
		candidate.X = lockX
	}
	if okY {
		candidate.Y = lockY
	}

	// 3. Ребра. Попадание на ребро снимает одиночную осевую фиксацию.
	if p, ok := nearestEdge(candidate, req.Walls, e.tol.EdgeSnapPx/zoom); ok {
		return Result{Point: p, Kind: KindEdge}
	}

	// 4. Сетка
	res := Result{Point: geometry.Round(candidate), Kind: KindGrid}
	if okX {
		res.Point.X = lockX
		res.Kind = KindAxis
		res.GuideX = &lockX
	}
	if okY {
		res.Point.Y = lockY
		res.Kind = KindAxis
		res.GuideY = &lockY
	}
	return res
}

// ============================================================
// Candidates
// ============================================================

func collectTargets(walls []models.Wall, rooms []models.Room) []models.Point {
	out := make([]models.Point, 0, len(walls)*2)
	for _, w := range walls {
		out = append(out, w.Start, w.End)
	}
	for _, r := range rooms {
		out = append(out, r.Polygon...)
	}
	return out
}

func nearestPoint(p models.Point, targets []models.Point, radius float64) (models.Point, bool) {
	best := math.MaxFloat64
	var found models.Point
	for _, t := range targets {
		if d := geometry.Distance(p, t); d <= radius && d < best {
			best = d
			found = t
		}
	}
	return found, best != math.MaxFloat64
}

func nearestAxis(v float64, targets []models.Point, axis func(models.Point) float64, radius float64) (float64, bool) {
	best := math.MaxFloat64
	var found float64
	for _, t := range targets {
		tv := axis(t)
		if d := math.Abs(tv - v); d <= radius && d < best {
			best = d
			found = tv
		}
	}
	return found, best != math.MaxFloat64
}

func nearestEdge(p models.Point, walls []models.Wall, radius float64) (models.Point, bool) {
	best := math.MaxFloat64
	var found models.Point
	for _, w := range walls {
		proj, _ := geometry.ProjectOntoSegment(p, w.Start, w.End)
		if d := geometry.Distance(p, proj); d <= radius && d < best {
			best = d
			found = proj
		}
	}
	return found, best != math.MaxFloat64
}
