// core/model/model.go
package model

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"pairdp/core/alphabet"
	"pairdp/core/dist"
)

var (
	ErrModelLeased    = errors.New("model is leased by a running DP")
	ErrDuplicateState = errors.New("duplicate state")
	ErrUnknownState   = errors.New("state does not belong to this model")
	ErrBadAdvance     = errors.New("bad advance")
	ErrDotCycle       = errors.New("silent states form a cycle")
	ErrSilentEmission = errors.New("state does not emit")
	ErrBadTransition  = errors.New("bad transition")
)

// edge is one end of a transition: the successor on succ lists, the
// predecessor on pred lists.
type edge struct {
	state  *State
	weight float64
}

// Model is a pair-HMM: states, weighted transitions and the sentinel.
//
// Runs take a shared Lease for their whole duration. Mutators never block:
// while any lease is outstanding they fail with ErrModelLeased.
type Model struct {
	name string
	cp   *alphabet.CrossProduct

	lease   sync.RWMutex
	version atomic.Uint64

	byName  map[string]*State
	added   []*State // insertion order
	order   []*State // DP order, rebuilt on every structural change
	succ    map[*State][]edge
	pred    map[*State][]edge
	magical *State
}

// New creates a model holding only the sentinel state. The sentinel advances
// [1,1] and emits the all-gap pair with weight 1, which pins it to the padding
// row and column around the grid.
func New(name string, cp *alphabet.CrossProduct) *Model {
	m := &Model{
		name:   name,
		cp:     cp,
		byName: make(map[string]*State),
		succ:   make(map[*State][]edge),
		pred:   make(map[*State][]edge),
	}
	d := dist.New(cp)
	_ = d.SetWeight(alphabet.Pair{}, 1)
	_ = d.SetNullWeight(alphabet.Pair{}, 1)
	m.magical = &State{model: m, name: MagicalName, advance: [2]int{1, 1}, dist: d, magical: true}
	m.byName[MagicalName] = m.magical
	m.added = append(m.added, m.magical)
	_ = m.reorder()
	m.version.Store(1)
	return m
}

func (m *Model) Name() string                         { return m.name }
func (m *Model) CrossProduct() *alphabet.CrossProduct { return m.cp }
func (m *Model) Magical() *State                      { return m.magical }

// Version moves on every successful mutation.
func (m *Model) Version() uint64 { return m.version.Load() }

/* ------------------------------ lease ------------------------------ */

// Lease is a shared read guard over the model.
type Lease struct {
	m    *Model
	once sync.Once
}

// Lease blocks only while a mutation is in flight.
func (m *Model) Lease() *Lease {
	m.lease.RLock()
	return &Lease{m: m}
}

// Release is safe to call more than once.
func (l *Lease) Release() {
	l.once.Do(l.m.lease.RUnlock)
}

func (m *Model) mutate(fn func() error) error {
	if !m.lease.TryLock() {
		return ErrModelLeased
	}
	defer m.lease.Unlock()
	if err := fn(); err != nil {
		return err
	}
	m.version.Add(1)
	return nil
}

/* ---------------------------- mutators ----------------------------- */

// AddState adds an emitting state when advance is non-zero and a silent
// state when advance is [0,0].
func (m *Model) AddState(name string, advance [2]int) (*State, error) {
	var s *State
	err := m.mutate(func() error {
		if name == "" {
			return fmt.Errorf("%w: empty name", ErrDuplicateState)
		}
		if _, dup := m.byName[name]; dup {
			return fmt.Errorf("%w %q", ErrDuplicateState, name)
		}
		for _, a := range advance {
			if a != 0 && a != 1 {
				return fmt.Errorf("%w %v for %q (each side must be 0 or 1)", ErrBadAdvance, advance, name)
			}
		}
		s = &State{model: m, name: name, advance: advance}
		if advance != [2]int{} {
			s.dist = dist.New(m.cp)
		}
		m.byName[name] = s
		m.added = append(m.added, s)
		return m.reorder()
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// SetTransition adds from→to or replaces its weight. Weights are linear and
// non-negative; zero keeps the edge but makes it unusable. An edge that would
// close a loop of silent states is refused with ErrDotCycle.
func (m *Model) SetTransition(from, to *State, weight float64) error {
	return m.mutate(func() error {
		if err := m.owns(from, to); err != nil {
			return err
		}
		if math.IsNaN(weight) || math.IsInf(weight, 0) || weight < 0 {
			return fmt.Errorf("%w: %s->%s weight %v", ErrBadTransition, from.name, to.name, weight)
		}
		prevSucc, prevPred := m.succ[from], m.pred[to]
		m.succ[from] = upsert(prevSucc, to, weight)
		m.pred[to] = upsert(prevPred, from, weight)
		if err := m.reorder(); err != nil {
			m.succ[from], m.pred[to] = prevSucc, prevPred
			_ = m.reorder()
			return err
		}
		return nil
	})
}

func (m *Model) RemoveTransition(from, to *State) error {
	return m.mutate(func() error {
		if err := m.owns(from, to); err != nil {
			return err
		}
		ns, ok := drop(m.succ[from], to)
		if !ok {
			return fmt.Errorf("%w: no transition %s->%s", ErrBadTransition, from.name, to.name)
		}
		m.succ[from] = ns
		m.pred[to], _ = drop(m.pred[to], from)
		return m.reorder()
	})
}

// SetEmission sets the weight of one pair in an emitting state's distribution.
func (m *Model) SetEmission(s *State, p alphabet.Pair, weight float64) error {
	return m.mutate(func() error {
		if err := m.editable(s); err != nil {
			return err
		}
		return s.dist.SetWeight(p, weight)
	})
}

// SetNullEmission sets the null-model weight used by the odds score types.
func (m *Model) SetNullEmission(s *State, p alphabet.Pair, weight float64) error {
	return m.mutate(func() error {
		if err := m.editable(s); err != nil {
			return err
		}
		return s.dist.SetNullWeight(p, weight)
	})
}

func (m *Model) editable(s *State) error {
	if err := m.owns(s); err != nil {
		return err
	}
	if !s.Emitting() {
		return fmt.Errorf("%w: %s", ErrSilentEmission, s.name)
	}
	if s.magical {
		return fmt.Errorf("%w: the sentinel distribution is fixed", ErrSilentEmission)
	}
	return nil
}

func (m *Model) owns(states ...*State) error {
	for _, s := range states {
		if s == nil || s.model != m {
			return ErrUnknownState
		}
	}
	return nil
}

func upsert(list []edge, to *State, w float64) []edge {
	for i := range list {
		if list[i].state == to {
			out := append([]edge(nil), list...)
			out[i].weight = w
			return out
		}
	}
	return append(append([]edge(nil), list...), edge{state: to, weight: w})
}

func drop(list []edge, to *State) ([]edge, bool) {
	for i := range list {
		if list[i].state == to {
			out := append([]edge(nil), list[:i]...)
			return append(out, list[i+1:]...), true
		}
	}
	return list, false
}

/* ---------------------------- read view ---------------------------- */
// Everything below is meant to be read under a Lease.

// State finds a state by name.
func (m *Model) State(name string) (*State, bool) {
	s, ok := m.byName[name]
	return s, ok
}

// States returns every state in DP order: emitting states first (the
// sentinel among them, in insertion order), then silent states sorted so
// each comes after all of its silent predecessors.
func (m *Model) States() []*State { return append([]*State(nil), m.order...) }

// Successors lists to-states and linear weights of transitions leaving s.
func (m *Model) Successors(s *State) ([]*State, []float64) { return split(m.succ[s]) }

// Predecessors lists from-states and linear weights of transitions entering s.
func (m *Model) Predecessors(s *State) ([]*State, []float64) { return split(m.pred[s]) }

func split(list []edge) ([]*State, []float64) {
	states := make([]*State, len(list))
	ws := make([]float64, len(list))
	for i, e := range list {
		states[i], ws[i] = e.state, e.weight
	}
	return states, ws
}

// reorder rebuilds DP order and state indices. It runs under the write lock.
func (m *Model) reorder() error {
	var emit, dots []*State
	for _, s := range m.added {
		if s.Emitting() {
			emit = append(emit, s)
		} else {
			dots = append(dots, s)
		}
	}

	// Kahn over silent->silent edges, ties in insertion order.
	indeg := make(map[*State]int, len(dots))
	for _, d := range dots {
		for _, e := range m.pred[d] {
			if !e.state.Emitting() {
				indeg[d]++
			}
		}
	}
	sorted := make([]*State, 0, len(dots))
	done := make(map[*State]bool, len(dots))
	for len(sorted) < len(dots) {
		progressed := false
		for _, d := range dots {
			if done[d] || indeg[d] > 0 {
				continue
			}
			done[d] = true
			sorted = append(sorted, d)
			progressed = true
			for _, e := range m.succ[d] {
				if !e.state.Emitting() {
					indeg[e.state]--
				}
			}
		}
		if !progressed {
			return ErrDotCycle
		}
	}

	m.order = append(emit, sorted...)
	for i, s := range m.order {
		s.index = i
	}
	return nil
}

// Validate checks what the mutators cannot check one edit at a time: the
// sentinel must both start and end at least one path.
func (m *Model) Validate() error {
	if len(m.succ[m.magical]) == 0 {
		return fmt.Errorf("%w: model %q has no transition out of the start state", ErrBadTransition, m.name)
	}
	if len(m.pred[m.magical]) == 0 {
		return fmt.Errorf("%w: model %q has no transition into the end state", ErrBadTransition, m.name)
	}
	for _, s := range m.added {
		if s.Emitting() && s.advance == [2]int{} {
			return fmt.Errorf("%w: emitting state %q advances [0,0]", ErrBadAdvance, s.name)
		}
	}
	return nil
}
