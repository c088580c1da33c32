package models

// ============================================================
// Doors & windows
// ============================================================

// Anchor параметрическая привязка проема к стене.
type Anchor struct {
	WallID string  `json:"wallId"`
	T      float64 `json:"t"`
	Width  float64 `json:"width"`
}

type Door struct {
	ID string `json:"id"`
	Anchor
	FlipX bool `json:"flipX,omitempty"`
	FlipY bool `json:"flipY,omitempty"`
}

type Window struct {
	ID string `json:"id"`
	Anchor
	Height float64 `json:"height"`
	FlipY  bool    `json:"flipY,omitempty"`
}

// Element закрытый вариант Door | Window.
type Element interface {
	ElementID() string
	Placement() Anchor
	element()
}

func (d Door) ElementID() string   { return d.ID }
func (d Door) Placement() Anchor   { return d.Anchor }
func (Door) element()              {}
func (w Window) ElementID() string { return w.ID }
func (w Window) Placement() Anchor { return w.Anchor }
func (Window) element()            {}

// WithAnchor возвращает копию элемента с новой привязкой.
func WithAnchor(e Element, a Anchor) Element {
	switch v := e.(type) {
	case Door:
		v.Anchor = a
		return v
	case Window:
		v.Anchor = a
		return v
	}
	return e
}

// WithID возвращает копию элемента с новым id.
func WithID(e Element, id string) Element {
	switch v := e.(type) {
	case Door:
		v.ID = id
		return v
	case Window:
		v.ID = id
		return v
	}
	return e
}

// ============================================================
// Partial updates
// ============================================================

// ElementUpdate закрытый вариант частичных правок.
type ElementUpdate interface {
	update()
}

type DoorUpdate struct {
	WallID *string  `json:"wallId,omitempty"`
	T      *float64 `json:"t,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	FlipX  *bool    `json:"flipX,omitempty"`
	FlipY  *bool    `json:"flipY,omitempty"`
}

type WindowUpdate struct {
	WallID *string  `json:"wallId,omitempty"`
	T      *float64 `json:"t,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
	FlipY  *bool    `json:"flipY,omitempty"`
}

func (DoorUpdate) update()   {}
func (WindowUpdate) update() {}

// ApplyUpdate накладывает правку на элемент того же вида.
// ok=false, если вид правки не совпадает с видом элемента.
func ApplyUpdate(e Element, u ElementUpdate) (Element, bool) {
	switch el := e.(type) {
	case Door:
		upd, ok := u.(DoorUpdate)
		if !ok {
			return e, false
		}
		applyAnchor(&el.Anchor, upd.WallID, upd.T, upd.Width)
		if upd.FlipX != nil {
			el.FlipX = *upd.FlipX
		}
		if upd.FlipY != nil {
			el.FlipY = *upd.FlipY
		}
		return el, true
	case Window:
		upd, ok := u.(WindowUpdate)
		if !ok {
			return e, false
		}
		applyAnchor(&el.Anchor, upd.WallID, upd.T, upd.Width)
		if upd.Height != nil {
			el.Height = *upd.Height
		}
		if upd.FlipY != nil {
			el.FlipY = *upd.FlipY
		}
		return el, true
	}
	return e, false
}

func applyAnchor(a *Anchor, wallID *string, t, width *float64) {
	if wallID != nil {
		a.WallID = *wallID
	}
	if t != nil {
		a.T = *t
	}
	if width != nil {
		a.Width = *width
	}
}
