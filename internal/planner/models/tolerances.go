package models

// ============================================================
// Tolerances
// ============================================================

// Tolerances подобранные константы движка. Расстояния в см, радиусы
// привязки в экранных пикселях (делятся на zoom).
type Tolerances struct {
	Vertex           float64 `yaml:"vertex" json:"vertex"`                       // склейка концов стен в вершину
	Junction         float64 `yaml:"junction" json:"junction"`                   // стена "касается" точки стыка
	Axis             float64 `yaml:"axis" json:"axis"`                           // |Δy| или |Δx| для горизонтали/вертикали
	PerpendicularDot float64 `yaml:"perpendicular_dot" json:"perpendicular_dot"` // |cos| ниже, перпендикулярно
	BlockingDot      float64 `yaml:"blocking_dot" json:"blocking_dot"`           // cos выше, стена закрывает грань
	CollinearCross   float64 `yaml:"collinear_cross" json:"collinear_cross"`
	VertexSnapPx     float64 `yaml:"vertex_snap_px" json:"vertex_snap_px"`
	AxisSnapPx       float64 `yaml:"axis_snap_px" json:"axis_snap_px"`
	EdgeSnapPx       float64 `yaml:"edge_snap_px" json:"edge_snap_px"`
	MinThickness     float64 `yaml:"min_thickness" json:"min_thickness"`
	MinLength        float64 `yaml:"min_length" json:"min_length"`
}

func DefaultTolerances() Tolerances {
	return Tolerances{
		Vertex:           5,
		Junction:         5,
		Axis:             5,
		PerpendicularDot: 0.2,
		BlockingDot:      0.5,
		CollinearCross:   0.05,
		VertexSnapPx:     6,
		AxisSnapPx:       8,
		EdgeSnapPx:       8,
		MinThickness:     1,
		MinLength:        1,
	}
}

// WithDefaults заполняет незаданные (нулевые) поля значениями по умолчанию.
func (t Tolerances) WithDefaults() Tolerances {
	def := DefaultTolerances()
	fill := func(v *float64, d float64) {
		if *v <= 0 {
			*v = d
		}
	}
	fill(&t.Vertex, def.Vertex)
	fill(&t.Junction, def.Junction)
	fill(&t.Axis, def.Axis)
	fill(&t.PerpendicularDot, def.PerpendicularDot)
	fill(&t.BlockingDot, def.BlockingDot)
	fill(&t.CollinearCross, def.CollinearCross)
	fill(&t.VertexSnapPx, def.VertexSnapPx)
	fill(&t.AxisSnapPx, def.AxisSnapPx)
	fill(&t.EdgeSnapPx, def.EdgeSnapPx)
	fill(&t.MinThickness, def.MinThickness)
	fill(&t.MinLength, def.MinLength)
	return t
}
