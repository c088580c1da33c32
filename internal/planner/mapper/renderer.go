package mapper

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"floorplan-engine/internal/planner/chain"
	"floorplan-engine/internal/planner/geometry"
	"floorplan-engine/internal/planner/models"
)

// ============================================================
// Renderer
// ============================================================

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render собирает SVG-превью из сцены и подписей размеров.
func (r *Renderer) Render(scene *models.Scene, dimensions []chain.Measurement) (string, error) {
	if scene == nil {
		return "", fmt.Errorf("scene is nil")
	}

	layer, err := r.pickLayer(scene)
	if err != nil {
		return "", err
	}

	width, height := r.sceneSize(scene, layer)

	var elements []string
	elements = append(elements, r.renderAreas(layer)...)
	elements = append(elements, r.renderWalls(layer)...)
	elements = append(elements, r.renderHoles(layer)...)
	elements = append(elements, r.renderDimensions(dimensions)...)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		formatFloat(width), formatFloat(height), formatFloat(width), formatFloat(height)))
	builder.WriteString("\n")

	for _, elem := range elements {
		builder.WriteString("  ")
		builder.WriteString(elem)
		builder.WriteString("\n")
	}

	builder.WriteString(`</svg>`)
	return builder.String(), nil
}

// ============================================================
// Layer selection & sizing
// ============================================================

func (r *Renderer) pickLayer(scene *models.Scene) (models.Layer, error) {
	if len(scene.Layers) == 0 {
		return models.Layer{}, fmt.Errorf("scene has no layers")
	}

	if scene.SelectedLayer != "" {
		if layer, ok := scene.Layers[scene.SelectedLayer]; ok {
			return layer, nil
		}
	}

	var ids []string
	for id := range scene.Layers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return scene.Layers[ids[0]], nil
}

func (r *Renderer) sceneSize(scene *models.Scene, layer models.Layer) (float64, float64) {
	if scene.Width > 0 && scene.Height > 0 {
		return scene.Width, scene.Height
	}

	var maxX, maxY float64
	for _, v := range layer.Vertices {
		maxX = math.Max(maxX, v.X)
		maxY = math.Max(maxY, v.Y)
	}
	if maxX <= 0 || maxY <= 0 {
		return 1000, 1000
	}
	return maxX + sceneMargin, maxY + sceneMargin
}

// ============================================================
// Element renderers
// ============================================================

// Элементы выводятся в порядке id: SVG детерминирован.

func (r *Renderer) renderWalls(layer models.Layer) []string {
	var out []string

	for _, id := range sortedKeys(layer.Lines) {
		line := layer.Lines[id]
		v1, v2, ok := lineEnds(layer, line)
		if !ok {
			continue
		}

		thickness := lengthFromProperties(line.Properties, "thickness", 10)
		if thickness <= 0 {
			thickness = 10
		}

		corners := band(v1, v2, thickness)
		out = append(out, fmt.Sprintf(`<path id="%s" d="%s" fill="#ccc" stroke="#000" />`, line.ID, pathData(corners)))
	}

	return out
}

func (r *Renderer) renderHoles(layer models.Layer) []string {
	var out []string

	for _, id := range sortedKeys(layer.Holes) {
		hole := layer.Holes[id]
		line, ok := layer.Lines[hole.Line]
		if !ok {
			continue
		}
		v1, v2, ok := lineEnds(layer, line)
		if !ok {
			continue
		}

		center := geometry.Lerp(v1, v2, geometry.Clamp(hole.Offset, 0, 1))
		width := lengthFromProperties(hole.Properties, "width", 80)
		thickness := lengthFromProperties(hole.Properties, "thickness", lengthFromProperties(line.Properties, "thickness", 10))

		axis := v2.Sub(v1).Unit().Scale(width / 2)
		corners := band(center.Sub(axis), center.Add(axis), thickness)

		stroke := "#1f77b4"
		if hole.Type == "door" {
			stroke = "#d62728"
		}

		out = append(out, fmt.Sprintf(`<path id="%s" d="%s" fill="#fff" stroke="%s" />`, hole.ID, pathData(corners), stroke))
	}

	return out
}

func (r *Renderer) renderAreas(layer models.Layer) []string {
	var out []string

	for _, id := range sortedKeys(layer.Areas) {
		area := layer.Areas[id]
		points := r.collectAreaPoints(area, layer.Vertices)
		if len(points) < 3 {
			continue
		}

		fill := defaultColor
		if c, ok := area.Properties["patternColor"].(string); ok && c != "" {
			fill = c
		}

		out = append(out, fmt.Sprintf(`<path id="%s" d="%s" fill="%s" stroke="#888" />`, area.ID, pathData(points), fill))
	}

	return out
}

// renderDimensions рисует размерную линию вдоль грани и подпись в середине.
func (r *Renderer) renderDimensions(dimensions []chain.Measurement) []string {
	var out []string

	for _, m := range dimensions {
		angle := math.Atan2(m.End.Y-m.Start.Y, m.End.X-m.Start.X) * 180 / math.Pi
		if angle > 90 || angle < -90 {
			angle += 180
		}

		out = append(out, fmt.Sprintf(`<line class="dimension" x1="%s" y1="%s" x2="%s" y2="%s" stroke="#555" stroke-width="1" />`,
			formatFloat(m.Start.X), formatFloat(m.Start.Y), formatFloat(m.End.X), formatFloat(m.End.Y)))
		out = append(out, fmt.Sprintf(`<text class="dimension" x="%s" y="%s" font-size="12" text-anchor="middle" transform="rotate(%s %s %s)">%s</text>`,
			formatFloat(m.LabelPosition.X), formatFloat(m.LabelPosition.Y),
			formatFloat(angle), formatFloat(m.LabelPosition.X), formatFloat(m.LabelPosition.Y),
			formatFloat(m.DisplayLength)))
	}

	return out
}

// ============================================================
// Geometry helpers
// ============================================================

func (r *Renderer) collectAreaPoints(area models.Area, vertices map[string]models.Vertex) []models.Point {
	var points []models.Point

	for _, id := range area.Vertices {
		if v, ok := vertices[id]; ok {
			points = append(points, models.Point{X: v.X, Y: v.Y})
		}
	}

	if len(points) > 1 && points[0] == points[len(points)-1] {
		points = points[:len(points)-1]
	}

	return points
}

func lineEnds(layer models.Layer, line models.Line) (models.Point, models.Point, bool) {
	if len(line.Vertices) < 2 {
		return models.Point{}, models.Point{}, false
	}
	v1, ok1 := layer.Vertices[line.Vertices[0]]
	v2, ok2 := layer.Vertices[line.Vertices[1]]
	if !ok1 || !ok2 {
		return models.Point{}, models.Point{}, false
	}
	return models.Point{X: v1.X, Y: v1.Y}, models.Point{X: v2.X, Y: v2.Y}, true
}

// band: прямоугольник толщины thickness вокруг отрезка a-b.
func band(a, b models.Point, thickness float64) []models.Point {
	n := b.Sub(a).Unit().Perp().Scale(thickness / 2)
	return []models.Point{a.Add(n), b.Add(n), b.Sub(n), a.Sub(n)}
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ============================================================
// Formatting helpers
// ============================================================

func lengthFromProperties(props map[string]any, key string, def float64) float64 {
	if props == nil {
		return def
	}

	if raw, ok := props[key]; ok {
		switch v := raw.(type) {
		case float64:
			return v
		case models.LengthValue:
			return v.Length
		case map[string]any:
			if val, ok := v["length"]; ok {
				if f, ok := val.(float64); ok {
					return f
				}
			}
		}
	}
	return def
}

func pathData(points []models.Point) string {
	var path strings.Builder
	path.WriteString("M ")
	path.WriteString(formatPoint(points[0]))
	for _, p := range points[1:] {
		path.WriteString(" L ")
		path.WriteString(formatPoint(p))
	}
	path.WriteString(" Z")
	return path.String()
}

func formatFloat(val float64) string {
	return strconv.FormatFloat(math.Round(val*100)/100, 'f', -1, 64)
}

func formatPoint(p models.Point) string {
	return formatFloat(p.X) + " " + formatFloat(p.Y)
}
