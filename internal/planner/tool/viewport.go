package tool

import (
	"floorplan-engine/internal/planner/geometry"
	"floorplan-engine/internal/planner/models"
)

const (
	minZoom = 0.05
	maxZoom = 50
)

// Viewport преобразование экран → план: world = (screen - offset) / zoom.
type Viewport struct {
	Offset models.Point `json:"offset"`
	Zoom   float64      `json:"zoom"`
}

func (v Viewport) zoom() float64 {
	if v.Zoom <= 0 || !geometry.IsFinite(v.Zoom) {
		return 1
	}
	return v.Zoom
}

func (v Viewport) ToWorld(screen models.Point) models.Point {
	return screen.Sub(v.Offset).Scale(1 / v.zoom())
}

func (v Viewport) ToScreen(world models.Point) models.Point {
	return world.Scale(v.zoom()).Add(v.Offset)
}

// ZoomAt масштабирует вокруг экранной точки: точка плана под курсором остается на месте.
func (v Viewport) ZoomAt(screen models.Point, factor float64) Viewport {
	if factor <= 0 || !geometry.IsFinite(factor) {
		return v
	}
	anchor := v.ToWorld(screen)
	v.Zoom = geometry.Clamp(v.zoom()*factor, minZoom, maxZoom)
	v.Offset = screen.Sub(anchor.Scale(v.Zoom))
	return v
}
