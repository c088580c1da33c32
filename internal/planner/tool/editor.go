package tool

import (
	"fmt"
	"math"

	"floorplan-engine/internal/planner/elements"
	"floorplan-engine/internal/planner/geometry"
	"floorplan-engine/internal/planner/models"
	"floorplan-engine/internal/planner/network"
	"floorplan-engine/internal/planner/snap"
)

// ============================================================
// Modes & events
// ============================================================

type Mode string

const (
	ModeSelect      Mode = "select"
	ModeWall        Mode = "wall"
	ModeDoor        Mode = "door"
	ModeWindow      Mode = "window"
	ModeRuler       Mode = "ruler"
	ModeCalibration Mode = "calibration"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeSelect, ModeWall, ModeDoor, ModeWindow, ModeRuler, ModeCalibration:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// Event событие указателя в экранных координатах.
type Event struct {
	Screen models.Point `json:"screen"`
	Button Button       `json:"button"`
	Shift  bool         `json:"shift"`
	Space  bool         `json:"space"`
}

// Settings параметры инструментов.
type Settings struct {
	SnapEnabled   bool    `json:"snapEnabled"`
	ContinueWalls bool    `json:"continueWalls"`
	WallThickness float64 `json:"wallThickness"`
	DoorWidth     float64 `json:"doorWidth"`
	WindowWidth   float64 `json:"windowWidth"`
	WindowHeight  float64 `json:"windowHeight"`
}

func DefaultSettings() Settings {
	return Settings{
		SnapEnabled:   true,
		WallThickness: 15,
		DoorWidth:     80,
		WindowWidth:   90,
		WindowHeight:  100,
	}
}

// Segment отрезок в процессе рисования (стена, линейка, калибровка).
type Segment struct {
	Start models.Point `json:"start"`
	End   models.Point `json:"end"`
}

func (s Segment) Length() float64 { return geometry.Distance(s.Start, s.End) }

// Feedback то, что нужно рендеру после обработки события.
type Feedback struct {
	Mode      Mode         `json:"mode"`
	Snap      *snap.Result `json:"snap,omitempty"`
	Draft     *Segment     `json:"draft,omitempty"`
	Ruler     *Segment     `json:"ruler,omitempty"`
	Committed *models.Wall `json:"committed,omitempty"`
	Placed    string       `json:"placed,omitempty"`
	Dragging  string       `json:"dragging,omitempty"`
	Panning   bool         `json:"panning,omitempty"`
	Viewport  Viewport     `json:"viewport"`
}

// ============================================================
// Editor
// ============================================================

type dragKind string

const (
	dragVertex  dragKind = "vertex"
	dragWall    dragKind = "wall"
	dragElement dragKind = "element"
	dragRoom    dragKind = "room"
)

type dragState struct {
	kind     dragKind
	id       string
	origin   models.Point
	current  models.Point
	wallIDs  []string
	snapshot []models.Wall // стены до начала drag, цели привязки
}

// Editor конечный автомат инструментов. Один экземпляр на проект,
// события обрабатываются последовательно.
type Editor struct {
	net      *network.Network
	snapper  *snap.Engine
	mode     Mode
	view     Viewport
	settings Settings

	draft       *Segment
	ruler       *Segment
	calibration *Segment
	drag        *dragState
	panFrom     *models.Point
}

func NewEditor(net *network.Network, settings Settings) *Editor {
	return &Editor{
		net:      net,
		snapper:  snap.New(net.Rules().Tol),
		mode:     ModeSelect,
		view:     Viewport{Zoom: 1},
		settings: settings,
	}
}

func (e *Editor) Network() *network.Network { return e.net }
func (e *Editor) Mode() Mode                { return e.mode }
func (e *Editor) Viewport() Viewport        { return e.view }
func (e *Editor) Settings() Settings        { return e.settings }

func (e *Editor) SetSettings(s Settings) { e.settings = s }

// Rebind переключает редактор на другую сеть (откат правки). Режим, вид,
// черновик и калибровка сохраняются; перетаскивание прерывается.
func (e *Editor) Rebind(net *network.Network) {
	e.net = net
	e.drag = nil
}

// SetMode переключает инструмент и сбрасывает незавершенные действия.
func (e *Editor) SetMode(m Mode) Feedback {
	e.mode = m
	e.reset()
	return e.feedback()
}

// Escape отменяет текущее действие: незафиксированная стена просто исчезает.
func (e *Editor) Escape() Feedback {
	e.reset()
	return e.feedback()
}

func (e *Editor) reset() {
	e.draft = nil
	e.ruler = nil
	e.drag = nil
	e.panFrom = nil
}

// Wheel масштабирует вид вокруг курсора.
func (e *Editor) Wheel(screen models.Point, factor float64) Feedback {
	e.view = e.view.ZoomAt(screen, factor)
	return e.feedback()
}

// ============================================================
// Pointer events
// ============================================================

func (e *Editor) PointerDown(ev Event) Feedback {
	if ev.Button != ButtonLeft || ev.Space {
		e.startPan(ev.Screen)
		return e.feedback()
	}
	world := e.view.ToWorld(ev.Screen)

	switch e.mode {
	case ModeWall:
		if e.draft == nil {
			res := e.resolve(world, e.net.Walls(), nil)
			e.draft = &Segment{Start: res.Point, End: res.Point}
			return e.feedbackWith(res)
		}
	case ModeRuler, ModeCalibration:
		res := e.resolve(world, e.net.Walls(), nil)
		e.ruler = &Segment{Start: res.Point, End: res.Point}
		return e.feedbackWith(res)
	case ModeDoor, ModeWindow:
		fb := e.feedback()
		if id, ok := e.placeElement(world); ok {
			fb.Placed = id
		}
		return fb
	case ModeSelect:
		if !e.startDrag(world) {
			e.startPan(ev.Screen)
		}
	}
	return e.feedback()
}

func (e *Editor) PointerMove(ev Event) Feedback {
	if e.panFrom != nil {
		e.view.Offset = e.view.Offset.Add(ev.Screen.Sub(*e.panFrom))
		p := ev.Screen
		e.panFrom = &p
		return e.feedback()
	}
	world := e.view.ToWorld(ev.Screen)

	switch {
	case e.mode == ModeWall && e.draft != nil:
		start := e.draft.Start
		res := e.resolve(world, e.net.Walls(), &start)
		e.draft.End = res.Point
		return e.feedbackWith(res)
	case (e.mode == ModeRuler || e.mode == ModeCalibration) && e.ruler != nil:
		start := e.ruler.Start
		res := e.resolve(world, e.net.Walls(), &start)
		e.ruler.End = res.Point
		return e.feedbackWith(res)
	case e.drag != nil:
		if res, ok := e.continueDrag(world); ok {
			return e.feedbackWith(res)
		}
	}
	return e.feedback()
}

func (e *Editor) PointerUp(ev Event) Feedback {
	if e.panFrom != nil {
		e.panFrom = nil
		return e.feedback()
	}

	switch {
	case e.mode == ModeWall && e.draft != nil:
		draft := *e.draft
		e.draft = nil
		fb := e.feedback()
		w, ok := e.net.AddWall(draft.Start, draft.End, e.settings.WallThickness)
		if !ok {
			return fb
		}
		fb.Committed = &w
		if ev.Shift || e.settings.ContinueWalls {
			e.draft = &Segment{Start: w.End, End: w.End}
			next := *e.draft
			fb.Draft = &next
		}
		return fb
	case e.mode == ModeCalibration && e.ruler != nil:
		if e.ruler.Length() > 0 {
			c := *e.ruler
			e.calibration = &c
		}
	case e.drag != nil:
		e.drag = nil
	}
	return e.feedback()
}

// ============================================================
// Calibration
// ============================================================

// Calibration возвращает последний отрезок калибровки.
func (e *Editor) Calibration() (Segment, bool) {
	if e.calibration == nil {
		return Segment{}, false
	}
	return *e.calibration, true
}

// CalibrationScale множитель, переводящий длины плана в реальные:
// realLength: введенная пользователем длина отрезка калибровки.
func (e *Editor) CalibrationScale(realLength float64) (float64, error) {
	if e.calibration == nil {
		return 0, fmt.Errorf("no calibration line")
	}
	if !geometry.IsFinite(realLength) || realLength <= 0 {
		return 0, fmt.Errorf("calibration length %v: %w", realLength, network.ErrInvalidValue)
	}
	return realLength / math.Max(e.calibration.Length(), geometry.MinSegmentLength), nil
}

// ============================================================
// Internals
// ============================================================

func (e *Editor) resolve(world models.Point, walls []models.Wall, anchor *models.Point) snap.Result {
	return e.snapper.ResolvePointer(snap.Request{
		Raw:     world,
		Walls:   walls,
		Rooms:   e.net.Rooms(),
		Enabled: e.settings.SnapEnabled,
		Zoom:    e.view.zoom(),
		Anchor:  anchor,
	})
}

func (e *Editor) startPan(screen models.Point) {
	p := screen
	e.panFrom = &p
}

// hitRadius: радиус попадания в мировых единицах.
func (e *Editor) hitRadius(px float64) float64 {
	return px / e.view.zoom()
}

// startDrag выбирает цель по приоритету: вершина, проем, стена, помещение.
func (e *Editor) startDrag(world models.Point) bool {
	tol := e.net.Rules().Tol
	walls := e.net.Walls()

	if v, ok := e.nearestVertex(world, e.hitRadius(tol.VertexSnapPx)); ok {
		ids := e.net.WallsAt(v)
		e.drag = &dragState{kind: dragVertex, origin: v, current: v, wallIDs: ids, snapshot: walls}
		return true
	}

	for _, p := range e.net.Placements() {
		wall, _ := e.net.Wall(p.WallID)
		if geometry.Distance(world, p.Position) <= p.Width/2 && geometry.DistanceToSegment(world, wall.Start, wall.End) <= wall.Thickness/2+e.hitRadius(tol.EdgeSnapPx) {
			e.drag = &dragState{kind: dragElement, id: p.ID, origin: world, current: world}
			return true
		}
	}

	bestDist := math.MaxFloat64
	var best models.Wall
	for _, w := range walls {
		d := geometry.DistanceToSegment(world, w.Start, w.End)
		if d <= w.Thickness/2+e.hitRadius(tol.EdgeSnapPx) && d < bestDist {
			bestDist, best = d, w
		}
	}
	if bestDist != math.MaxFloat64 {
		e.drag = &dragState{kind: dragWall, id: best.ID, origin: world, current: world}
		return true
	}

	if room, ok := e.net.RoomAt(world); ok {
		e.drag = &dragState{kind: dragRoom, id: room.ID, origin: world, current: world}
		return true
	}
	return false
}

func (e *Editor) continueDrag(world models.Point) (snap.Result, bool) {
	d := e.drag
	switch d.kind {
	case dragVertex:
		origin := d.origin
		res := e.resolve(world, d.snapshot, &origin)
		delta := res.Point.Sub(d.current)
		e.net.TranslateVertex(d.current, delta, d.wallIDs)
		if len(d.wallIDs) > 0 {
			if w, ok := e.net.Wall(d.wallIDs[0]); ok && (w.Start.Near(res.Point, 1e-9) || w.End.Near(res.Point, 1e-9)) {
				d.current = res.Point
			}
		}
		return res, true
	case dragWall:
		w, ok := e.net.Wall(d.id)
		if !ok {
			e.drag = nil
			return snap.Result{}, false
		}
		normal := w.Normal()
		step := normal.Scale(world.Sub(d.current).Dot(normal))
		if _, err := e.net.MoveWall(d.id, step); err == nil {
			d.current = d.current.Add(step)
		}
	case dragElement:
		el, ok := e.net.Element(d.id)
		if !ok {
			e.drag = nil
			return snap.Result{}, false
		}
		host, ok := elements.Resolve(el, e.net.Walls())
		if !ok {
			e.drag = nil
			return snap.Result{}, false
		}
		t := elements.DragT(host, world)
		var upd models.ElementUpdate = models.DoorUpdate{T: &t}
		if _, isWindow := el.(models.Window); isWindow {
			upd = models.WindowUpdate{T: &t}
		}
		e.net.UpdateElement(d.id, upd)
	case dragRoom:
		if _, err := e.net.MoveRoom(d.id, world.Sub(d.current)); err == nil {
			d.current = world
		}
	}
	return snap.Result{}, false
}

func (e *Editor) nearestVertex(p models.Point, radius float64) (models.Point, bool) {
	best := math.MaxFloat64
	var found models.Point
	for _, w := range e.net.Walls() {
		for _, end := range [2]models.Point{w.Start, w.End} {
			if d := geometry.Distance(p, end); d <= radius && d < best {
				best, found = d, end
			}
		}
	}
	return found, best != math.MaxFloat64
}

// placeElement ставит дверь или окно на ближайшую стену под курсором.
func (e *Editor) placeElement(world models.Point) (string, bool) {
	tol := e.net.Rules().Tol
	bestDist := math.MaxFloat64
	var host models.Wall
	for _, w := range e.net.Walls() {
		d := geometry.DistanceToSegment(world, w.Start, w.End)
		if d <= w.Thickness/2+e.hitRadius(tol.EdgeSnapPx) && d < bestDist {
			bestDist, host = d, w
		}
	}
	if bestDist == math.MaxFloat64 {
		return "", false
	}

	anchor := models.Anchor{WallID: host.ID, T: elements.DragT(host, world)}
	var el models.Element
	if e.mode == ModeWindow {
		anchor.Width = e.settings.WindowWidth
		el = models.Window{Anchor: anchor, Height: e.settings.WindowHeight}
	} else {
		anchor.Width = e.settings.DoorWidth
		el = models.Door{Anchor: anchor}
	}
	placed, err := e.net.PutElement(el)
	if err != nil {
		return "", false
	}
	return placed.ElementID(), true
}

func (e *Editor) feedback() Feedback {
	fb := Feedback{Mode: e.mode, Viewport: e.view, Panning: e.panFrom != nil}
	if e.draft != nil {
		d := *e.draft
		fb.Draft = &d
	}
	if e.ruler != nil {
		r := *e.ruler
		fb.Ruler = &r
	}
	if e.drag != nil {
		fb.Dragging = string(e.drag.kind)
	}
	return fb
}

func (e *Editor) feedbackWith(res snap.Result) Feedback {
	fb := e.feedback()
	fb.Snap = &res
	return fb
}
