package importer

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strings"

	"floorplan-engine/internal/planner/elements"
	"floorplan-engine/internal/planner/geometry"
	"floorplan-engine/internal/planner/models"
)

// ErrInvalidSVG документ не читается или в нем нет ни одной стены.
var ErrInvalidSVG = errors.New("invalid svg plan")

// ============================================================
// XML Structures
// ============================================================

type svgDocument struct {
	XMLName xml.Name `xml:"svg"`
	svgGroup
}

type svgGroup struct {
	Rects  []svgRect  `xml:"rect"`
	Paths  []svgPath  `xml:"path"`
	Groups []svgGroup `xml:"g"`
}

type svgRect struct {
	ID     string  `xml:"id,attr"`
	X      float64 `xml:"x,attr"`
	Y      float64 `xml:"y,attr"`
	Width  float64 `xml:"width,attr"`
	Height float64 `xml:"height,attr"`
}

type svgPath struct {
	ID string `xml:"id,attr"`
	D  string `xml:"d,attr"`
}

// shape: распознанный элемент чертежа.
type shape struct {
	id     string
	kind   string // wall, door, window, room
	points []models.Point
	closed bool
}

// ============================================================
// Importer
// ============================================================

// Options значения по умолчанию для того, чего нет в чертеже.
type Options struct {
	WallThickness float64
	WindowHeight  float64
	// MaxHoleDistance дальше этого центр проема не привязывается к стене.
	MaxHoleDistance float64
}

type Importer struct {
	opts Options
}

func New(opts Options) *Importer {
	if opts.WallThickness <= 0 {
		opts.WallThickness = 15
	}
	if opts.WindowHeight <= 0 {
		opts.WindowHeight = 120
	}
	if opts.MaxHoleDistance <= 0 {
		opts.MaxHoleDistance = 50
	}
	return &Importer{opts: opts}
}

// Import читает SVG-чертеж и собирает проект. Тип элемента определяется по
// префиксу id: Wall_, Door_, Window_, Room_ (а также *_room и Balcony*).
func (im *Importer) Import(r io.Reader) (models.Project, error) {
	var doc svgDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return models.Project{}, fmt.Errorf("%v: %w", err, ErrInvalidSVG)
	}

	shapes := collect(doc.svgGroup, nil)
	p := models.Project{
		Walls:   []models.Wall{},
		Rooms:   []models.Room{},
		Doors:   []models.Door{},
		Windows: []models.Window{},
	}
	ids := newIDPool()

	for _, s := range shapes {
		if s.kind == "wall" {
			p.Walls = append(p.Walls, im.walls(s, ids)...)
		}
	}
	if len(p.Walls) == 0 {
		return models.Project{}, fmt.Errorf("no walls found: %w", ErrInvalidSVG)
	}

	var skipped int
	for _, s := range shapes {
		switch s.kind {
		case "door", "window":
			anchor, ok := im.anchor(s, p.Walls)
			if !ok {
				skipped++
				continue
			}
			if s.kind == "door" {
				p.Doors = append(p.Doors, models.Door{ID: ids.take(s.id, "door"), Anchor: anchor})
			} else {
				p.Windows = append(p.Windows, models.Window{ID: ids.take(s.id, "window"), Anchor: anchor, Height: im.opts.WindowHeight})
			}
		case "room":
			if len(s.points) < 3 {
				skipped++
				continue
			}
			room := models.Room{ID: ids.take(s.id, "room"), Name: roomName(s.id), Polygon: s.points}
			room.Area = room.ComputeArea()
			p.Rooms = append(p.Rooms, room)
		}
	}

	log.Printf("[IMPORT] SVG parsed: %d walls, %d doors, %d windows, %d rooms, %d skipped",
		len(p.Walls), len(p.Doors), len(p.Windows), len(p.Rooms), skipped)
	return p, nil
}

func collect(g svgGroup, out []shape) []shape {
	for _, r := range g.Rects {
		kind := classifyElementByID(r.ID)
		if kind == "" || r.Width <= 0 || r.Height <= 0 {
			continue
		}
		out = append(out, shape{
			id:   r.ID,
			kind: kind,
			points: []models.Point{
				{X: r.X, Y: r.Y},
				{X: r.X + r.Width, Y: r.Y},
				{X: r.X + r.Width, Y: r.Y + r.Height},
				{X: r.X, Y: r.Y + r.Height},
			},
			closed: true,
		})
	}
	for _, path := range g.Paths {
		kind := classifyElementByID(path.ID)
		if kind == "" {
			continue
		}
		points, closed, err := ParsePath(path.D)
		if err != nil || len(points) < 2 {
			continue
		}
		out = append(out, shape{id: path.ID, kind: kind, points: points, closed: closed})
	}
	for _, child := range g.Groups {
		out = collect(child, out)
	}
	return out
}

func classifyElementByID(id string) string {
	switch {
	case strings.HasPrefix(id, "Wall_"):
		return "wall"
	case strings.HasPrefix(id, "Door_"):
		return "door"
	case strings.HasPrefix(id, "Window_"):
		return "window"
	case strings.HasPrefix(id, "Room_"),
		strings.HasSuffix(id, "_room"),
		strings.HasSuffix(id, "_Room"),
		strings.HasPrefix(id, "Balcony"):
		return "room"
	}
	return ""
}

// ============================================================
// Walls
// ============================================================

// walls: замкнутый контур, стена-прямоугольник, осевая линия по длинной
// стороне габарита, толщина по короткой. Открытая ломаная, цепочка стен
// толщины по умолчанию.
func (im *Importer) walls(s shape, ids *idPool) []models.Wall {
	if s.closed {
		start, end, thickness := centerline(s.points)
		if thickness <= 0 {
			thickness = im.opts.WallThickness
		}
		if geometry.Distance(start, end) <= 0 {
			return nil
		}
		return []models.Wall{{ID: ids.take(s.id, "wall"), Start: start, End: end, Thickness: thickness}}
	}

	var out []models.Wall
	for i := 1; i < len(s.points); i++ {
		a, b := s.points[i-1], s.points[i]
		if geometry.Distance(a, b) <= 0 {
			continue
		}
		out = append(out, models.Wall{
			ID:        ids.take(s.id, "wall"),
			Start:     a,
			End:       b,
			Thickness: im.opts.WallThickness,
		})
	}
	return out
}

func centerline(points []models.Point) (start, end models.Point, thickness float64) {
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	width, height := maxX-minX, maxY-minY
	if width >= height {
		midY := minY + height/2
		return models.Point{X: minX, Y: midY}, models.Point{X: maxX, Y: midY}, height
	}
	midX := minX + width/2
	return models.Point{X: midX, Y: minY}, models.Point{X: midX, Y: maxY}, width
}

// ============================================================
// Holes
// ============================================================

// anchor привязывает проем к ближайшей стене по центру его габарита.
// Ширина проема, длинная сторона габарита.
func (im *Importer) anchor(s shape, walls []models.Wall) (models.Anchor, bool) {
	start, end, _ := centerline(s.points)
	center := geometry.Midpoint(start, end)
	width := geometry.Distance(start, end)

	var (
		best    models.Wall
		bestT   float64
		minDist = math.MaxFloat64
	)
	for _, w := range walls {
		proj, t := geometry.ProjectOntoSegment(center, w.Start, w.End)
		if d := geometry.Distance(center, proj); d < minDist {
			minDist, best, bestT = d, w, t
		}
	}
	if minDist > im.opts.MaxHoleDistance || width <= 0 {
		return models.Anchor{}, false
	}
	return elements.Normalize(models.Anchor{WallID: best.ID, T: bestT, Width: width}, best, 1), true
}

// ============================================================
// IDs
// ============================================================

type idPool struct {
	used map[string]struct{}
	seq  map[string]int
}

func newIDPool() *idPool {
	return &idPool{used: map[string]struct{}{}, seq: map[string]int{}}
}

// take возвращает id из чертежа, если он свободен, иначе prefix-N.
func (p *idPool) take(id, prefix string) string {
	if id != "" {
		if _, ok := p.used[id]; !ok {
			p.used[id] = struct{}{}
			return id
		}
	}
	for {
		p.seq[prefix]++
		candidate := fmt.Sprintf("%s-%d", prefix, p.seq[prefix])
		if _, ok := p.used[candidate]; !ok {
			p.used[candidate] = struct{}{}
			return candidate
		}
	}
}

func roomName(id string) string {
	name := strings.TrimPrefix(id, "Room_")
	name = strings.TrimSuffix(strings.TrimSuffix(name, "_room"), "_Room")
	return strings.ReplaceAll(name, "_", " ")
}
