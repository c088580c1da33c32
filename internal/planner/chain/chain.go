package chain

import (
	"math"
	"sort"

	"floorplan-engine/internal/planner/geometry"
	"floorplan-engine/internal/planner/junction"
	"floorplan-engine/internal/planner/models"
	"floorplan-engine/internal/planner/network"
)

// ============================================================
// Collinear chain walk
// ============================================================

// Walk результат прохода по коллинеарным продолжениям от одного конца стены.
type Walk struct {
	TerminalPoint  models.Point
	AddedLength    float64
	TerminalWallID string
	Visited        models.IDSet
}

type Aggregator struct {
	rules    network.Rules
	resolver *junction.Resolver
}

func New(rules network.Rules) *Aggregator {
	return &Aggregator{rules: rules, resolver: junction.New(rules.Tol)}
}

func (a *Aggregator) Resolver() *junction.Resolver { return a.resolver }

// WalkFrom идет от конца from стены wall наружу, пока находится непосещенное
// коллинеарное продолжение и ни один другой сосед в вершине не закрывает грань normal.
// visited не изменяется: возвращается расширенная копия.
func (a *Aggregator) WalkFrom(walls []models.Wall, wall models.Wall, from, normal models.Point, visited models.IDSet) Walk {
	visited = visited.With(wall.ID)
	current := wall
	p := from
	var added float64

	for {
		next, ok := a.nextLink(walls, current, p, visited)
		if !ok {
			break
		}
		if a.faceBlockedAt(walls, current, p, normal, visited.With(next.ID)) {
			break
		}
		visited = visited.With(next.ID)
		added += next.Length()
		p = next.Other(p)
		current = next
	}

	return Walk{
		TerminalPoint:  p,
		AddedLength:    added,
		TerminalWallID: current.ID,
		Visited:        visited,
	}
}

func (a *Aggregator) nextLink(walls []models.Wall, current models.Wall, p models.Point, visited models.IDSet) (models.Wall, bool) {
	neighbors := a.rules.NeighborsAt(walls, p, a.rules.Tol.Vertex, current.ID)
	sort.Slice(neighbors, func(i, j int) bool { return neighbors[i].ID < neighbors[j].ID })

	back := current.Other(p).Sub(p)
	for _, n := range neighbors {
		if visited.Has(n.ID) {
			continue
		}
		if !a.rules.IsCollinearContinuation(current, n) || a.rules.IsPerpendicularConnection(current, n) {
			continue
		}
		// продолжение должно уходить от p в сторону, противоположную current
		if n.Other(p).Sub(p).Dot(back) >= 0 {
			continue
		}
		return n, true
	}
	return models.Wall{}, false
}

func (a *Aggregator) faceBlockedAt(walls []models.Wall, current models.Wall, p, normal models.Point, ignore models.IDSet) bool {
	for _, c := range a.resolver.Candidates(walls, current, p, ignore) {
		if a.resolver.Classify(current, c, p, normal).Class == junction.ClassBlocking {
			return true
		}
	}
	return false
}

// ============================================================
// Measurement
// ============================================================

// Measurement размер одного прямого участка для подписи.
type Measurement struct {
	WallID        string       `json:"wallId"`
	ChainIDs      []string     `json:"chainIds"`
	FaceSign      int          `json:"faceSign"`
	Length        float64      `json:"length"`
	DisplayLength float64      `json:"displayLength"`
	StartOffset   float64      `json:"startOffset"`
	EndOffset     float64      `json:"endOffset"`
	Start         models.Point `json:"start"`
	End           models.Point `json:"end"`
	LabelPosition models.Point `json:"labelPosition"`
	IsLeader      bool         `json:"isLeader"`
}

// Measure размер всей коллинеарной цепочки, в которую входит wall.
// faceSign: +1, грань по Normal(), -1, противоположная, 0, осевая линия.
// Подпись выводит только лидер: стена с лексикографически первым id в цепочке.
func (a *Aggregator) Measure(walls []models.Wall, wall models.Wall, faceSign int) Measurement {
	normal := wall.Normal().Scale(float64(sign(faceSign)))
	start := a.WalkFrom(walls, wall, wall.Start, normal, models.NewIDSet())
	end := a.WalkFrom(walls, wall, wall.End, normal, start.Visited)

	ids := end.Visited.Sorted()
	m := Measurement{
		WallID:   wall.ID,
		ChainIDs: ids,
		FaceSign: sign(faceSign),
		Length:   wall.Length() + start.AddedLength + end.AddedLength,
		IsLeader: len(ids) > 0 && ids[0] == wall.ID,
	}

	if m.FaceSign != 0 {
		if tw, ok := find(walls, start.TerminalWallID); ok {
			m.StartOffset = a.resolver.FaceOffset(walls, tw, start.TerminalPoint, normal, end.Visited)
		}
		if tw, ok := find(walls, end.TerminalWallID); ok {
			m.EndOffset = a.resolver.FaceOffset(walls, tw, end.TerminalPoint, normal, end.Visited)
		}
	}
	m.Length += m.StartOffset + m.EndOffset
	m.DisplayLength = math.Round(m.Length)
	a.place(&m, wall, start.TerminalPoint, end.TerminalPoint, normal)
	return m
}

// MeasureSegment размер грани одной стены без обхода цепочки
// (внутренние размеры помещений считаются по сегментам).
func (a *Aggregator) MeasureSegment(walls []models.Wall, wall models.Wall, faceSign int) Measurement {
	normal := wall.Normal().Scale(float64(sign(faceSign)))
	self := models.NewIDSet(wall.ID)
	m := Measurement{
		WallID:   wall.ID,
		ChainIDs: []string{wall.ID},
		FaceSign: sign(faceSign),
		Length:   wall.Length(),
		IsLeader: true,
	}
	if m.FaceSign != 0 {
		m.StartOffset = a.resolver.FaceOffset(walls, wall, wall.Start, normal, self)
		m.EndOffset = a.resolver.FaceOffset(walls, wall, wall.End, normal, self)
	}
	m.Length += m.StartOffset + m.EndOffset
	m.DisplayLength = math.Round(m.Length)
	a.place(&m, wall, wall.Start, wall.End, normal)
	return m
}

// place считает концы размерной линии на грани и позицию подписи.
func (a *Aggregator) place(m *Measurement, wall models.Wall, from, to, normal models.Point) {
	axis := to.Sub(from).Unit()
	shift := normal.Unit().Scale(wall.Thickness / 2)
	m.Start = from.Sub(axis.Scale(m.StartOffset)).Add(shift)
	m.End = to.Add(axis.Scale(m.EndOffset)).Add(shift)
	m.LabelPosition = geometry.Midpoint(m.Start, m.End)
}

// ============================================================
// Faces
// ============================================================

// Face какую грань измерять.
type Face string

const (
	FaceInterior Face = "interior"
	FaceExterior Face = "exterior"
	FaceCenter   Face = "center"
)

// InteriorSign определяет, с какой стороны стены лежит помещение: пробная
// точка берется чуть дальше грани. ok=false, если помещения нет ни с одной стороны.
func (a *Aggregator) InteriorSign(wall models.Wall, rooms []models.Room) (int, bool) {
	mid := geometry.Midpoint(wall.Start, wall.End)
	probe := wall.Normal().Scale(wall.Thickness/2 + 1)
	switch {
	case a.rules.IsPointInAnyRoom(mid.Add(probe), rooms):
		return 1, true
	case a.rules.IsPointInAnyRoom(mid.Sub(probe), rooms):
		return -1, true
	}
	return 1, false
}

// MeasureAll возвращает подписи для всех стен: внутренние по сегментам,
// наружные и осевые по цепочкам, только от лидеров. Грань выбирается в мировых
// координатах, поэтому стены одной цепочки с разной ориентацией start/end
// идут по одной и той же грани; стена попадает не больше чем в одну подпись.
func (a *Aggregator) MeasureAll(walls []models.Wall, rooms []models.Room, face Face) []Measurement {
	var out []Measurement
	covered := models.NewIDSet()
	for _, w := range walls {
		if face == FaceInterior {
			s, _ := a.InteriorSign(w, rooms)
			out = append(out, a.MeasureSegment(walls, w, s))
			continue
		}

		var s int
		if face == FaceExterior {
			s = a.exteriorSign(w, rooms)
		}
		m := a.Measure(walls, w, s)
		if !m.IsLeader || anyCovered(covered, m.ChainIDs) {
			continue
		}
		covered = covered.With(m.ChainIDs...)
		out = append(out, m)
	}
	return out
}

// exteriorSign: грань, противоположная помещению. Без помещений берется
// каноническая нормаль оси, общая для всех коллинеарных стен.
func (a *Aggregator) exteriorSign(w models.Wall, rooms []models.Room) int {
	if s, ok := a.InteriorSign(w, rooms); ok {
		return -s
	}
	if w.Normal().Dot(CanonicalNormal(w)) < 0 {
		return -1
	}
	return 1
}

// CanonicalNormal: нормаль, не зависящая от порядка start/end. Направление
// оси приводится к x > 0 (для вертикали к y > 0).
func CanonicalNormal(w models.Wall) models.Point {
	d := w.Direction()
	if d.X < -1e-9 || (math.Abs(d.X) <= 1e-9 && d.Y < 0) {
		d = d.Neg()
	}
	return d.Perp()
}

func anyCovered(covered models.IDSet, ids []string) bool {
	for _, id := range ids {
		if covered.Has(id) {
			return true
		}
	}
	return false
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func find(walls []models.Wall, id string) (models.Wall, bool) {
	for _, w := range walls {
		if w.ID == id {
			return w, true
		}
	}
	return models.Wall{}, false
}
