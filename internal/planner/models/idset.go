package models

import "sort"

// IDSet неизменяемое множество id. With возвращает новое множество.
type IDSet struct {
	m map[string]struct{}
}

func NewIDSet(ids ...string) IDSet {
	s := IDSet{m: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.m[id] = struct{}{}
	}
	return s
}

func (s IDSet) Has(id string) bool {
	_, ok := s.m[id]
	return ok
}

func (s IDSet) Len() int { return len(s.m) }

func (s IDSet) With(ids ...string) IDSet {
	out := IDSet{m: make(map[string]struct{}, len(s.m)+len(ids))}
	for id := range s.m {
		out.m[id] = struct{}{}
	}
	for _, id := range ids {
		out.m[id] = struct{}{}
	}
	return out
}

// Sorted элементы в лексикографическом порядке.
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s.m))
	for id := range s.m {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
