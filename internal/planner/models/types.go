package models

import (
	"floorplan-engine/internal/planner/geometry"
)

// ============================================================
// Plan records
// ============================================================

// Point координата плана (1 единица = 1 см).
type Point = geometry.Point

// Wall стена как осевой отрезок с толщиной.
type Wall struct {
	ID        string  `json:"id"`
	Start     Point   `json:"start"`
	End       Point   `json:"end"`
	Thickness float64 `json:"thickness"`
}

// Length длина осевой линии.
func (w Wall) Length() float64 {
	return geometry.Distance(w.Start, w.End)
}

// Direction единичный вектор от Start к End.
func (w Wall) Direction() Point {
	return w.End.Sub(w.Start).Unit()
}

// Normal левая нормаль к направлению стены. Знак грани задается множителем.
func (w Wall) Normal() Point {
	return w.Direction().Perp()
}

// Other возвращает противоположный конец стены относительно p.
func (w Wall) Other(p Point) Point {
	if geometry.Distance(w.Start, p) <= geometry.Distance(w.End, p) {
		return w.End
	}
	return w.Start
}

// Room замкнутый контур помещения. Стенами не владеет.
type Room struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Polygon []Point `json:"polygon"`
	Area    float64 `json:"area"` // м²
	Color   string  `json:"color"`
}

// ComputeArea пересчитывает площадь по контуру (см² → м²).
func (r Room) ComputeArea() float64 {
	return geometry.PolygonArea(r.Polygon) / 10000
}

// ============================================================
// Project (save/load contract)
// ============================================================

type Project struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Walls   []Wall   `json:"walls"`
	Rooms   []Room   `json:"rooms"`
	Doors   []Door   `json:"doors"`
	Windows []Window `json:"windows"`
}
