package mapper

import (
	"fmt"
	"math"

	"floorplan-engine/internal/planner/elements"
	"floorplan-engine/internal/planner/geometry"
	"floorplan-engine/internal/planner/models"
	"floorplan-engine/internal/planner/network"
)

const (
	layerID      = "layer-1"
	sceneMargin  = 100
	doorHeight   = 215.0
	windowSill   = 90.0
	defaultColor = "#F5F5F5"
)

// ============================================================
// Exporter
// ============================================================

// Exporter выгружает проект в react-planner scene JSON.
type Exporter struct {
	rules network.Rules
}

func NewExporter(rules network.Rules) *Exporter {
	return &Exporter{rules: rules}
}

// Scene собирает сцену: вершины, производные вершины сети, линии, стены,
// holes: двери и окна с offset = t, areas, помещения.
func (e *Exporter) Scene(p models.Project) *models.Scene {
	vertices := make(map[string]models.Vertex)
	lines := make(map[string]models.Line)
	holes := make(map[string]models.Hole)
	areas := make(map[string]models.Area)

	derived := e.rules.Vertices(p.Walls)
	vertexIDs := make([]string, len(derived))
	for i, v := range derived {
		id := fmt.Sprintf("v%d", i+1)
		vertexIDs[i] = id
		vertices[id] = models.Vertex{
			ID:        id,
			Name:      "Vertex",
			Type:      "",
			Prototype: "vertices",
			X:         v.Point.X,
			Y:         v.Point.Y,
			Lines:     append([]string{}, v.WallIDs...),
			Areas:     []string{},
		}
	}

	for _, w := range p.Walls {
		lines[w.ID] = models.Line{
			ID:        w.ID,
			Name:      "Wall",
			Type:      "wall",
			Prototype: "lines",
			Vertices:  []string{nearestVertex(derived, vertexIDs, w.ID, w.Start), nearestVertex(derived, vertexIDs, w.ID, w.End)},
			Holes:     []string{},
			Properties: map[string]any{
				"thickness": models.LengthValue{Length: w.Thickness},
				"height":    models.LengthValue{Length: 300},
			},
		}
	}

	for _, d := range p.Doors {
		e.createHole(d, p.Walls, lines, holes)
	}
	for _, w := range p.Windows {
		e.createHole(w, p.Walls, lines, holes)
	}

	for _, r := range p.Rooms {
		createArea(r, vertices, areas)
	}

	width, height := sceneSize(p)
	layer := models.Layer{
		ID:       layerID,
		Altitude: 0,
		Order:    0,
		Opacity:  1,
		Name:     "default",
		Visible:  true,
		Vertices: vertices,
		Lines:    lines,
		Holes:    holes,
		Areas:    areas,
		Items:    map[string]any{},
		Selected: models.ElementsSet{Vertices: []string{}, Lines: []string{}, Holes: []string{}, Areas: []string{}, Items: []string{}},
	}

	return &models.Scene{
		Unit:          "cm",
		Layers:        map[string]models.Layer{layerID: layer},
		SelectedLayer: layerID,
		Grids:         defaultGrids(),
		Groups:        map[string]any{},
		Width:         width,
		Height:        height,
		Meta:          map[string]any{"project": p.ID, "name": p.Name},
		Guides:        defaultGuides(),
	}
}

// createHole привязывает проем к линии-хосту. Сироты в сцену не попадают.
func (e *Exporter) createHole(el models.Element, walls []models.Wall, lines map[string]models.Line, target map[string]models.Hole) {
	wall, ok := elements.Resolve(el, walls)
	if !ok {
		return
	}
	a := el.Placement()
	kind := elements.Kind(el)

	target[el.ElementID()] = models.Hole{
		ID:         el.ElementID(),
		Name:       kind,
		Type:       kind,
		Prototype:  "holes",
		Line:       wall.ID,
		Offset:     a.T,
		Properties: holeProperties(el, wall),
	}

	line := lines[wall.ID]
	line.Holes = append(line.Holes, el.ElementID())
	lines[wall.ID] = line
}

func createArea(r models.Room, vertices map[string]models.Vertex, target map[string]models.Area) {
	points := r.Polygon
	if len(points) > 1 && points[0] == points[len(points)-1] {
		points = points[:len(points)-1]
	}
	if len(points) < 3 {
		return
	}

	ids := make([]string, 0, len(points))
	for i, p := range points {
		id := fmt.Sprintf("%s-v%d", r.ID, i+1)
		vertices[id] = models.Vertex{
			ID:        id,
			Name:      "Vertex",
			Prototype: "vertices",
			X:         p.X,
			Y:         p.Y,
			Lines:     []string{},
			Areas:     []string{r.ID},
		}
		ids = append(ids, id)
	}

	color := r.Color
	if color == "" {
		color = defaultColor
	}
	name := r.Name
	if name == "" {
		name = r.ID
	}

	target[r.ID] = models.Area{
		ID:        r.ID,
		Name:      name,
		Type:      "area",
		Prototype: "areas",
		Vertices:  ids,
		Holes:     []string{},
		Properties: map[string]any{
			"patternColor": color,
			"thickness":    models.LengthValue{Length: 0},
			"area":         r.Area,
		},
	}
}

// ============================================================
// Helpers
// ============================================================

// nearestVertex: ближайшая к концу стены производная вершина, содержащая эту стену.
func nearestVertex(derived []network.Vertex, ids []string, wallID string, p models.Point) string {
	best := ""
	bestDist := math.MaxFloat64
	for i, v := range derived {
		if !hasWall(v, wallID) {
			continue
		}
		if d := geometry.Distance(v.Point, p); d < bestDist {
			bestDist = d
			best = ids[i]
		}
	}
	return best
}

func hasWall(v network.Vertex, wallID string) bool {
	for _, id := range v.WallIDs {
		if id == wallID {
			return true
		}
	}
	return false
}

func holeProperties(el models.Element, wall models.Wall) map[string]any {
	a := el.Placement()
	switch v := el.(type) {
	case models.Door:
		return map[string]any{
			"width":           models.LengthValue{Length: a.Width},
			"height":          models.LengthValue{Length: doorHeight},
			"altitude":        models.LengthValue{Length: 0},
			"thickness":       models.LengthValue{Length: wall.Thickness},
			"flip_orizzontal": v.FlipX,
			"flip_vertical":   v.FlipY,
		}
	case models.Window:
		return map[string]any{
			"width":         models.LengthValue{Length: a.Width},
			"height":        models.LengthValue{Length: v.Height},
			"altitude":      models.LengthValue{Length: windowSill},
			"thickness":     models.LengthValue{Length: wall.Thickness},
			"flip_vertical": v.FlipY,
		}
	}
	return map[string]any{}
}

// sceneSize: габарит плана от начала координат плюс поле.
func sceneSize(p models.Project) (float64, float64) {
	var maxX, maxY float64
	grow := func(pt models.Point) {
		maxX = math.Max(maxX, pt.X)
		maxY = math.Max(maxY, pt.Y)
	}
	for _, w := range p.Walls {
		grow(w.Start)
		grow(w.End)
	}
	for _, r := range p.Rooms {
		for _, pt := range r.Polygon {
			grow(pt)
		}
	}
	if maxX == 0 && maxY == 0 {
		return 3000, 2000
	}
	return maxX + sceneMargin, maxY + sceneMargin
}

func defaultGrids() map[string]models.Grid {
	return map[string]models.Grid{
		"h1": {
			ID:   "h1",
			Type: "horizontal-streak",
			Properties: map[string]any{
				"step":   20,
				"colors": []string{"#808080", "#ddd", "#ddd", "#ddd", "#ddd"},
			},
		},
		"v1": {
			ID:   "v1",
			Type: "vertical-streak",
			Properties: map[string]any{
				"step":   20,
				"colors": []string{"#808080", "#ddd", "#ddd", "#ddd", "#ddd"},
			},
		},
	}
}

func defaultGuides() models.Guides {
	return models.Guides{
		Horizontal: map[string]any{},
		Vertical:   map[string]any{},
		Circular:   map[string]any{},
	}
}
