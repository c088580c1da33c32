package importer

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"floorplan-engine/internal/planner/models"
)

// ============================================================
// Path Parser
// ============================================================

var errEmptyPath = errors.New("empty path")

var pathCommand = regexp.MustCompile(`([MmLlHhVvZz])([^MmLlHhVvZz]*)`)

// ParsePath разбирает атрибут d из команд M, L, H, V, Z (и относительных).
// closed=true, если контур замкнут командой Z; замыкающая точка не дублируется.
func ParsePath(d string) (points []models.Point, closed bool, err error) {
	d = strings.TrimSpace(d)
	if d == "" {
		return nil, false, errEmptyPath
	}

	var cur models.Point
	for _, match := range pathCommand.FindAllStringSubmatch(d, -1) {
		cmd := match[1]
		coords := parseCoords(match[2])

		switch cmd {
		case "M", "L":
			// повторные пары после M/L, неявные LineTo
			for i := 0; i+1 < len(coords); i += 2 {
				cur = models.Point{X: coords[i], Y: coords[i+1]}
				points = append(points, cur)
			}
		case "m", "l":
			for i := 0; i+1 < len(coords); i += 2 {
				cur = cur.Add(models.Point{X: coords[i], Y: coords[i+1]})
				points = append(points, cur)
			}
		case "H":
			for _, x := range coords {
				cur.X = x
				points = append(points, cur)
			}
		case "h":
			for _, dx := range coords {
				cur.X += dx
				points = append(points, cur)
			}
		case "V":
			for _, y := range coords {
				cur.Y = y
				points = append(points, cur)
			}
		case "v":
			for _, dy := range coords {
				cur.Y += dy
				points = append(points, cur)
			}
		case "Z", "z":
			closed = len(points) > 0
			if closed {
				cur = points[0]
			}
		}
	}

	if closed && len(points) > 1 && points[len(points)-1].Near(points[0], 1e-9) {
		points = points[:len(points)-1]
	}
	return points, closed, nil
}

func parseCoords(s string) []float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	// Разделитель: запятая или пробел
	var coords []float64
	for _, part := range strings.Fields(strings.ReplaceAll(s, ",", " ")) {
		if val, err := strconv.ParseFloat(part, 64); err == nil {
			coords = append(coords, val)
		}
	}
	return coords
}
