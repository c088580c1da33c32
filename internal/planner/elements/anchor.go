package elements

import (
	"math"

	"floorplan-engine/internal/planner/geometry"
	"floorplan-engine/internal/planner/models"
)

// ============================================================
// Element anchoring
// ============================================================

// CloneOffset сдвиг t у копии элемента.
const CloneOffset = 0.1

const (
	KindDoor   = "door"
	KindWindow = "window"
)

// Kind возвращает вид элемента.
func Kind(e models.Element) string {
	switch e.(type) {
	case models.Door:
		return KindDoor
	case models.Window:
		return KindWindow
	}
	return ""
}

// Resolve находит стену-носитель. ok=false для "осиротевших" элементов:
// такие элементы не участвуют в запросах.
func Resolve(e models.Element, walls []models.Wall) (models.Wall, bool) {
	id := e.Placement().WallID
	for _, w := range walls {
		if w.ID == id {
			return w, true
		}
	}
	return models.Wall{}, false
}

// Position центр проема: start + t*(end-start).
func Position(wall models.Wall, t float64) models.Point {
	return geometry.Lerp(wall.Start, wall.End, t)
}

// Rotation угол направления стены в радианах.
func Rotation(wall models.Wall) float64 {
	d := wall.End.Sub(wall.Start)
	return math.Atan2(d.Y, d.X)
}

// Clearance расстояния от краев проема до концов стены.
type Clearance struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

func Clearances(wall models.Wall, a models.Anchor) Clearance {
	l := wall.Length()
	return Clearance{
		Left:  math.Max(0, a.T*l-a.Width/2),
		Right: math.Max(0, (1-a.T)*l-a.Width/2),
	}
}

// DragT проецирует указатель на стену и возвращает t в [0,1].
func DragT(wall models.Wall, pointer models.Point) float64 {
	_, t := geometry.ProjectOntoSegment(pointer, wall.Start, wall.End)
	return t
}

// Normalize зажимает t в [0,1] и ширину в [minWidth, длина стены].
func Normalize(a models.Anchor, wall models.Wall, minWidth float64) models.Anchor {
	if !geometry.IsFinite(a.T) {
		a.T = 0.5
	}
	a.T = geometry.Clamp(a.T, 0, 1)

	l := wall.Length()
	if !geometry.IsFinite(a.Width) || a.Width < minWidth {
		a.Width = minWidth
	}
	if a.Width > l {
		a.Width = l
	}
	return a
}

// Clone копирует элемент под новым id и сдвигает его вдоль стены.
func Clone(e models.Element, id string) models.Element {
	a := e.Placement()
	if a.T+CloneOffset <= 1 {
		a.T += CloneOffset
	} else {
		a.T = math.Max(0, a.T-CloneOffset)
	}
	return models.WithAnchor(models.WithID(e, id), a)
}

// ============================================================
// Placement for renderers
// ============================================================

type Placement struct {
	ID        string       `json:"id"`
	Kind      string       `json:"kind"`
	WallID    string       `json:"wallId"`
	Position  models.Point `json:"position"`
	Rotation  float64      `json:"rotation"`
	Width     float64      `json:"width"`
	Clearance Clearance    `json:"clearance"`
}

// Place считает абсолютное положение элемента. ok=false, если стены нет.
func Place(e models.Element, walls []models.Wall) (Placement, bool) {
	wall, ok := Resolve(e, walls)
	if !ok {
		return Placement{}, false
	}
	a := e.Placement()
	return Placement{
		ID:        e.ElementID(),
		Kind:      Kind(e),
		WallID:    wall.ID,
		Position:  Position(wall, a.T),
		Rotation:  Rotation(wall),
		Width:     a.Width,
		Clearance: Clearances(wall, a),
	}, true
}
