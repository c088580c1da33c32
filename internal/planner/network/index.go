package network

import "floorplan-engine/internal/planner/models"

// ============================================================
// Vertex index
// ============================================================

// vertexIndex: хэш по сетке округленных координат, обновляется при каждой
// мутации. Результат совпадает с Rules.Vertices для того же набора стен.
type vertexIndex struct {
	rules  Rules
	groups map[vertexKey][]endpointRef
	keys   map[string][2]vertexKey
}

func newVertexIndex(rules Rules) *vertexIndex {
	return &vertexIndex{
		rules:  rules,
		groups: make(map[vertexKey][]endpointRef),
		keys:   make(map[string][2]vertexKey),
	}
}

func (ix *vertexIndex) add(w models.Wall) {
	ks := [2]vertexKey{ix.rules.keyOf(w.Start), ix.rules.keyOf(w.End)}
	ix.groups[ks[0]] = append(ix.groups[ks[0]], endpointRef{wallID: w.ID, end: 0, point: w.Start})
	ix.groups[ks[1]] = append(ix.groups[ks[1]], endpointRef{wallID: w.ID, end: 1, point: w.End})
	ix.keys[w.ID] = ks
}

func (ix *vertexIndex) remove(id string) {
	ks, ok := ix.keys[id]
	if !ok {
		return
	}
	for _, k := range ks {
		refs := ix.groups[k]
		kept := refs[:0]
		for _, ref := range refs {
			if ref.wallID != id {
				kept = append(kept, ref)
			}
		}
		if len(kept) == 0 {
			delete(ix.groups, k)
		} else {
			ix.groups[k] = kept
		}
	}
	delete(ix.keys, id)
}

func (ix *vertexIndex) update(w models.Wall) {
	ix.remove(w.ID)
	ix.add(w)
}

func (ix *vertexIndex) vertices() []Vertex {
	return buildVertices(ix.groups)
}

// degreeAt: число концов стен в ячейке точки p.
func (ix *vertexIndex) degreeAt(p models.Point) int {
	return len(ix.groups[ix.rules.keyOf(p)])
}
