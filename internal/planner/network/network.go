package network

import (
	"errors"
	"fmt"
	"math"

	"floorplan-engine/internal/planner/elements"
	"floorplan-engine/internal/planner/geometry"
	"floorplan-engine/internal/planner/models"

	"github.com/google/uuid"
)

var (
	ErrWallNotFound    = errors.New("wall not found")
	ErrRoomNotFound    = errors.New("room not found")
	ErrElementNotFound = errors.New("element not found")
	ErrInvalidValue    = errors.New("invalid value")
	ErrUpdateMismatch  = errors.New("update does not match element kind")
)

// zeroLength: стены короче считаются вырожденными и не создаются.
const zeroLength = 1e-6

// Side выбирает конец стены, который пересчитывается при смене длины.
type Side string

const (
	SideLeft  Side = "left"  // двигается start
	SideRight Side = "right" // двигается end
)

// ============================================================
// Change notifications
// ============================================================

type ChangeKind string

const (
	ChangeWalls    ChangeKind = "walls"
	ChangeRooms    ChangeKind = "rooms"
	ChangeElements ChangeKind = "elements"
)

type Change struct {
	Kind ChangeKind
	IDs  []string
}

// ============================================================
// Network
// ============================================================

// Network владелец стен, помещений и проемов плана.
// Не потокобезопасен: один писатель на событие.
type Network struct {
	rules    Rules
	walls    map[string]models.Wall
	order    []string
	rooms    []models.Room
	elements map[string]models.Element
	elOrder  []string
	index    *vertexIndex
	onChange []func(Change)
	newID    func() string
}

func New(rules Rules) *Network {
	return &Network{
		rules:    rules,
		walls:    make(map[string]models.Wall),
		elements: make(map[string]models.Element),
		index:    newVertexIndex(rules),
		newID:    uuid.NewString,
	}
}

// FromProject собирает сеть из сохраненного проекта.
// Вырожденные стены пропускаются, проемы сохраняются как есть.
func FromProject(p models.Project, rules Rules) *Network {
	n := New(rules)
	for _, w := range p.Walls {
		n.insert(n.sanitize(w))
	}
	n.rooms = withAreas(p.Rooms)
	for _, d := range p.Doors {
		n.putElement(n.normalized(d))
	}
	for _, w := range p.Windows {
		n.putElement(n.normalized(w))
	}
	return n
}

// Project выгружает текущее состояние в формат сохранения.
func (n *Network) Project(id, name string) models.Project {
	p := models.Project{
		ID:      id,
		Name:    name,
		Walls:   n.Walls(),
		Rooms:   n.Rooms(),
		Doors:   []models.Door{},
		Windows: []models.Window{},
	}
	for _, e := range n.Elements() {
		switch v := e.(type) {
		case models.Door:
			p.Doors = append(p.Doors, v)
		case models.Window:
			p.Windows = append(p.Windows, v)
		}
	}
	return p
}

func (n *Network) Rules() Rules { return n.rules }

// SetIDGenerator подменяет генератор id (в тестах, детерминированный).
func (n *Network) SetIDGenerator(f func() string) {
	if f == nil {
		n.newID = uuid.NewString
		return
	}
	n.newID = f
}

// OnChange регистрирует наблюдателя, вызываемого после каждой мутации.
func (n *Network) OnChange(fn func(Change)) {
	n.onChange = append(n.onChange, fn)
}

func (n *Network) notify(kind ChangeKind, ids ...string) {
	c := Change{Kind: kind, IDs: ids}
	for _, fn := range n.onChange {
		fn(c)
	}
}

// ============================================================
// Queries
// ============================================================

// Walls возвращает копию стен в порядке добавления (снимок для drag).
func (n *Network) Walls() []models.Wall {
	out := make([]models.Wall, 0, len(n.order))
	for _, id := range n.order {
		out = append(out, n.walls[id])
	}
	return out
}

func (n *Network) Wall(id string) (models.Wall, bool) {
	w, ok := n.walls[id]
	return w, ok
}

func (n *Network) Rooms() []models.Room {
	return append([]models.Room{}, n.rooms...)
}

func (n *Network) Vertices() []Vertex {
	return n.index.vertices()
}

// Degree число концов стен в вершине p.
func (n *Network) Degree(p models.Point) int {
	return n.index.degreeAt(p)
}

func (n *Network) NeighborsAt(p models.Point, tolerance float64, excludeID string) []models.Wall {
	return n.rules.NeighborsAt(n.Walls(), p, tolerance, excludeID)
}

// ============================================================
// Wall mutations
// ============================================================

// AddWall создает стену. Нулевая длина, тихий отказ (ok=false).
func (n *Network) AddWall(start, end models.Point, thickness float64) (models.Wall, bool) {
	return n.InsertWall(models.Wall{Start: start, End: end, Thickness: thickness})
}

// InsertWall добавляет стену с заданным id (пустой id, сгенерировать).
// Существующая стена с тем же id заменяется.
func (n *Network) InsertWall(w models.Wall) (models.Wall, bool) {
	if !validPoint(w.Start) || !validPoint(w.End) || geometry.Distance(w.Start, w.End) < zeroLength {
		return models.Wall{}, false
	}
	if w.ID == "" {
		w.ID = n.newID()
	}
	w = n.sanitize(w)
	n.insert(w)
	n.notify(ChangeWalls, w.ID)
	return w, true
}

func (n *Network) insert(w models.Wall) {
	if geometry.Distance(w.Start, w.End) < zeroLength {
		return
	}
	if _, exists := n.walls[w.ID]; !exists {
		n.order = append(n.order, w.ID)
	}
	n.walls[w.ID] = w
	n.index.update(w)
}

func (n *Network) insertAfter(afterID string, w models.Wall) {
	n.walls[w.ID] = w
	n.index.update(w)
	for i, id := range n.order {
		if id == afterID {
			n.order = append(n.order[:i+1], append([]string{w.ID}, n.order[i+1:]...)...)
			return
		}
	}
	n.order = append(n.order, w.ID)
}

func (n *Network) set(w models.Wall) {
	n.walls[w.ID] = w
	n.index.update(w)
}

// DeleteWall удаляет стену. Проемы на ней остаются: отвязка, забота вызывающего.
func (n *Network) DeleteWall(id string) ([]models.Wall, error) {
	if _, ok := n.walls[id]; !ok {
		return nil, fmt.Errorf("delete %s: %w", id, ErrWallNotFound)
	}
	delete(n.walls, id)
	n.index.remove(id)
	for i, oid := range n.order {
		if oid == id {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
	n.notify(ChangeWalls, id)
	return n.Walls(), nil
}

// TranslateVertex сдвигает на delta все концы перечисленных стен, совпадающие
// с original в пределах допуска вершины. Если сдвиг выродил бы стену, ничего не меняется.
func (n *Network) TranslateVertex(original, delta models.Point, wallIDs []string) []models.Wall {
	if !validPoint(original) || !validPoint(delta) {
		return n.Walls()
	}

	var moved []models.Wall
	for _, id := range wallIDs {
		w, ok := n.walls[id]
		if !ok {
			continue
		}
		changed := false
		if geometry.Distance(w.Start, original) <= n.rules.Tol.Vertex {
			w.Start = w.Start.Add(delta)
			changed = true
		}
		if geometry.Distance(w.End, original) <= n.rules.Tol.Vertex {
			w.End = w.End.Add(delta)
			changed = true
		}
		if !changed {
			continue
		}
		if geometry.Distance(w.Start, w.End) < zeroLength {
			return n.Walls()
		}
		moved = append(moved, w)
	}

	ids := make([]string, 0, len(moved))
	for _, w := range moved {
		n.set(w)
		ids = append(ids, w.ID)
	}
	if len(ids) > 0 {
		n.notify(ChangeWalls, ids...)
		n.renormalize(ids...)
	}
	return n.Walls()
}

// WallsAt id стен, у которых есть конец в вершине p.
func (n *Network) WallsAt(p models.Point) []string {
	var ids []string
	for _, w := range n.NeighborsAt(p, n.rules.Tol.Vertex, "") {
		ids = append(ids, w.ID)
	}
	return ids
}

// UpdateWallLength пересчитывает один конец так, чтобы длина стала newLength.
// Направление и второй конец сохраняются; неположительная длина поднимается до минимума.
func (n *Network) UpdateWallLength(id string, newLength float64, side Side) ([]models.Wall, error) {
	w, ok := n.walls[id]
	if !ok {
		return nil, fmt.Errorf("update length %s: %w", id, ErrWallNotFound)
	}
	if !geometry.IsFinite(newLength) {
		return nil, fmt.Errorf("update length %s: %w", id, ErrInvalidValue)
	}
	newLength = math.Max(newLength, n.rules.Tol.MinLength)

	dir := w.Direction()
	switch side {
	case SideLeft:
		w.Start = w.End.Sub(dir.Scale(newLength))
	case SideRight, "":
		w.End = w.Start.Add(dir.Scale(newLength))
	default:
		return nil, fmt.Errorf("update length %s: side %q: %w", id, side, ErrInvalidValue)
	}
	n.set(w)
	n.notify(ChangeWalls, id)
	n.renormalize(id)
	return n.Walls(), nil
}

// UpdateWallThickness задает толщину; неположительная поднимается до минимума.
func (n *Network) UpdateWallThickness(id string, thickness float64) ([]models.Wall, error) {
	w, ok := n.walls[id]
	if !ok {
		return nil, fmt.Errorf("update thickness %s: %w", id, ErrWallNotFound)
	}
	if !geometry.IsFinite(thickness) {
		return nil, fmt.Errorf("update thickness %s: %w", id, ErrInvalidValue)
	}
	w.Thickness = math.Max(thickness, n.rules.Tol.MinThickness)
	n.set(w)
	n.notify(ChangeWalls, id)
	return n.Walls(), nil
}

// SplitWallAt вставляет вершину в проекцию p на стену. Первая половина
// сохраняет id, вторая получает новый. Проемы переезжают на свою половину.
// Разрез у самого конца (вырожденная половина), тихий отказ.
func (n *Network) SplitWallAt(id string, p models.Point) ([]models.Wall, error) {
	w, ok := n.walls[id]
	if !ok {
		return nil, fmt.Errorf("split %s: %w", id, ErrWallNotFound)
	}
	proj, t := geometry.ProjectOntoSegment(p, w.Start, w.End)
	l := w.Length()
	if t*l < zeroLength || (1-t)*l < zeroLength {
		return n.Walls(), nil
	}

	first := models.Wall{ID: w.ID, Start: w.Start, End: proj, Thickness: w.Thickness}
	second := models.Wall{ID: n.newID(), Start: proj, End: w.End, Thickness: w.Thickness}
	n.set(first)
	n.insertAfter(first.ID, second)

	var moved []string
	for _, eid := range n.elOrder {
		e := n.elements[eid]
		a := e.Placement()
		if a.WallID != id {
			continue
		}
		host := first
		if a.T <= t {
			a.T = a.T / t
		} else {
			a.T = (a.T - t) / (1 - t)
			host = second
		}
		a.WallID = host.ID
		n.elements[eid] = models.WithAnchor(e, elements.Normalize(a, host, n.rules.Tol.MinLength))
		moved = append(moved, eid)
	}

	n.notify(ChangeWalls, first.ID, second.ID)
	if len(moved) > 0 {
		n.notify(ChangeElements, moved...)
	}
	return n.Walls(), nil
}

// MoveWall сдвигает стену перпендикулярно ее направлению на проекцию delta
// на нормаль. Примыкающие стены тянутся за общими вершинами.
func (n *Network) MoveWall(id string, delta models.Point) ([]models.Wall, error) {
	w, ok := n.walls[id]
	if !ok {
		return nil, fmt.Errorf("move %s: %w", id, ErrWallNotFound)
	}
	normal := w.Normal()
	offset := normal.Scale(delta.Dot(normal))
	if offset.Len() < zeroLength {
		return n.Walls(), nil
	}

	startIDs := n.WallsAt(w.Start)
	endIDs := n.WallsAt(w.End)
	n.TranslateVertex(w.Start, offset, startIDs)
	n.TranslateVertex(w.End, offset, endIDs)
	return n.Walls(), nil
}

func (n *Network) sanitize(w models.Wall) models.Wall {
	if !geometry.IsFinite(w.Thickness) || w.Thickness < n.rules.Tol.MinThickness {
		w.Thickness = n.rules.Tol.MinThickness
	}
	return w
}

// ============================================================
// Rooms
// ============================================================

// SetRooms заменяет помещения целиком (их строит внешний детектор).
func (n *Network) SetRooms(rooms []models.Room) []models.Room {
	n.rooms = withAreas(rooms)
	ids := make([]string, 0, len(rooms))
	for _, r := range n.rooms {
		ids = append(ids, r.ID)
	}
	n.notify(ChangeRooms, ids...)
	return n.Rooms()
}

// MoveRoom переносит контур помещения на delta.
func (n *Network) MoveRoom(id string, delta models.Point) ([]models.Room, error) {
	for i, r := range n.rooms {
		if r.ID != id {
			continue
		}
		poly := make([]models.Point, len(r.Polygon))
		for j, p := range r.Polygon {
			poly[j] = p.Add(delta)
		}
		n.rooms[i].Polygon = poly
		n.notify(ChangeRooms, id)
		return n.Rooms(), nil
	}
	return nil, fmt.Errorf("move room %s: %w", id, ErrRoomNotFound)
}

// RoomAt возвращает первое помещение, содержащее p.
func (n *Network) RoomAt(p models.Point) (models.Room, bool) {
	for _, r := range n.rooms {
		if geometry.PointInPolygon(p, r.Polygon) {
			return r, true
		}
	}
	return models.Room{}, false
}

func withAreas(rooms []models.Room) []models.Room {
	out := make([]models.Room, len(rooms))
	for i, r := range rooms {
		r.Polygon = append([]models.Point{}, r.Polygon...)
		r.Area = r.ComputeArea()
		out[i] = r
	}
	return out
}

func validPoint(p models.Point) bool {
	return geometry.IsFinite(p.X) && geometry.IsFinite(p.Y)
}
