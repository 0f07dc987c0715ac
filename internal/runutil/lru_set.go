// internal/runutil/lru_set.go
package runutil

import "container/list"

// DefaultLRUCap bounds an LRUSet built with a non-positive capacity.
const DefaultLRUCap = 100_000

// LRUSet remembers at most cap keys, forgetting the least recently seen.
// Not safe for concurrent use.
type LRUSet[K comparable] struct {
	cap   int
	order *list.List // front = most recent; values are K
	index map[K]*list.Element
}

func NewLRUSet[K comparable](capacity int) *LRUSet[K] {
	if capacity <= 0 {
		capacity = DefaultLRUCap
	}
	return &LRUSet[K]{cap: capacity, order: list.New(), index: make(map[K]*list.Element)}
}

// Add records k and reports whether it was already present.
func (s *LRUSet[K]) Add(k K) (seen bool) {
	if e, ok := s.index[k]; ok {
		s.order.MoveToFront(e)
		return true
	}
	s.index[k] = s.order.PushFront(k)
	if s.order.Len() > s.cap {
		oldest := s.order.Remove(s.order.Back()).(K)
		delete(s.index, oldest)
	}
	return false
}

func (s *LRUSet[K]) Len() int { return s.order.Len() }
