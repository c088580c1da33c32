package network

import (
	"fmt"

	"floorplan-engine/internal/planner/elements"
	"floorplan-engine/internal/planner/models"
)

// ============================================================
// Doors & windows
// ============================================================

// PutElement добавляет или заменяет проем. t и ширина зажимаются при записи.
func (n *Network) PutElement(e models.Element) (models.Element, error) {
	wall, ok := n.walls[e.Placement().WallID]
	if !ok {
		return nil, fmt.Errorf("put element on %s: %w", e.Placement().WallID, ErrWallNotFound)
	}
	if e.ElementID() == "" {
		e = models.WithID(e, n.newID())
	}
	e = models.WithAnchor(e, elements.Normalize(e.Placement(), wall, n.rules.Tol.MinLength))
	n.putElement(e)
	n.notify(ChangeElements, e.ElementID())
	return e, nil
}

func (n *Network) putElement(e models.Element) {
	id := e.ElementID()
	if id == "" {
		return
	}
	if _, exists := n.elements[id]; !exists {
		n.elOrder = append(n.elOrder, id)
	}
	n.elements[id] = e
}

// normalized зажимает привязку, если стена существует; сирот не трогает.
func (n *Network) normalized(e models.Element) models.Element {
	wall, ok := n.walls[e.Placement().WallID]
	if !ok {
		return e
	}
	return models.WithAnchor(e, elements.Normalize(e.Placement(), wall, n.rules.Tol.MinLength))
}

// renormalize заново зажимает проемы на стенах, длина которых изменилась:
// ширина проема не больше длины стены.
func (n *Network) renormalize(wallIDs ...string) {
	var changed []string
	for _, wallID := range wallIDs {
		for _, e := range n.ElementsOnWall(wallID) {
			if fixed := n.normalized(e); fixed.Placement() != e.Placement() {
				n.elements[e.ElementID()] = fixed
				changed = append(changed, e.ElementID())
			}
		}
	}
	if len(changed) > 0 {
		n.notify(ChangeElements, changed...)
	}
}

// UpdateElement применяет частичную правку соответствующего вида.
// Правка, переносящая проем на несуществующую стену, отклоняется целиком.
func (n *Network) UpdateElement(id string, u models.ElementUpdate) (models.Element, error) {
	e, ok := n.elements[id]
	if !ok {
		return nil, fmt.Errorf("update element %s: %w", id, ErrElementNotFound)
	}
	updated, ok := models.ApplyUpdate(e, u)
	if !ok {
		return nil, fmt.Errorf("update element %s: %w", id, ErrUpdateMismatch)
	}
	if updated.Placement().WallID != e.Placement().WallID {
		if _, exists := n.walls[updated.Placement().WallID]; !exists {
			return nil, fmt.Errorf("update element %s: %w", id, ErrWallNotFound)
		}
	}
	updated = n.normalized(updated)
	n.elements[id] = updated
	n.notify(ChangeElements, id)
	return updated, nil
}

// CloneElement копирует проем под новым id со сдвигом вдоль стены.
func (n *Network) CloneElement(id string) (models.Element, error) {
	e, ok := n.elements[id]
	if !ok {
		return nil, fmt.Errorf("clone element %s: %w", id, ErrElementNotFound)
	}
	clone := n.normalized(elements.Clone(e, n.newID()))
	n.putElement(clone)
	n.notify(ChangeElements, clone.ElementID())
	return clone, nil
}

func (n *Network) DeleteElement(id string) error {
	if _, ok := n.elements[id]; !ok {
		return fmt.Errorf("delete element %s: %w", id, ErrElementNotFound)
	}
	n.dropElement(id)
	n.notify(ChangeElements, id)
	return nil
}

func (n *Network) dropElement(id string) {
	delete(n.elements, id)
	for i, eid := range n.elOrder {
		if eid == id {
			n.elOrder = append(n.elOrder[:i], n.elOrder[i+1:]...)
			return
		}
	}
}

func (n *Network) Element(id string) (models.Element, bool) {
	e, ok := n.elements[id]
	return e, ok
}

func (n *Network) Elements() []models.Element {
	out := make([]models.Element, 0, len(n.elOrder))
	for _, id := range n.elOrder {
		out = append(out, n.elements[id])
	}
	return out
}

func (n *Network) ElementsOnWall(wallID string) []models.Element {
	var out []models.Element
	for _, id := range n.elOrder {
		if e := n.elements[id]; e.Placement().WallID == wallID {
			out = append(out, e)
		}
	}
	return out
}

// DetachElements удаляет все проемы стены и возвращает их.
func (n *Network) DetachElements(wallID string) []models.Element {
	removed := n.ElementsOnWall(wallID)
	ids := make([]string, 0, len(removed))
	for _, e := range removed {
		n.dropElement(e.ElementID())
		ids = append(ids, e.ElementID())
	}
	if len(ids) > 0 {
		n.notify(ChangeElements, ids...)
	}
	return removed
}

// Placements абсолютные положения проемов; сироты пропускаются.
func (n *Network) Placements() []elements.Placement {
	walls := n.Walls()
	var out []elements.Placement
	for _, e := range n.Elements() {
		if p, ok := elements.Place(e, walls); ok {
			out = append(out, p)
		}
	}
	return out
}
