// core/model/state.go
package model

import (
	"fmt"

	"pairdp/core/dist"
)

// MagicalName is the name of the sentinel state every model starts with.
const MagicalName = "_magical_"

// State is a node of the pair-HMM. Emitting states carry a distribution and
// a non-zero advance; silent ("dot") states have neither.
type State struct {
	model   *Model
	name    string
	index   int
	advance [2]int
	dist    *dist.Distribution
	magical bool
}

func (s *State) Name() string { return s.name }

// Index is the state's slot in DP order. It may change when states are added.
func (s *State) Index() int { return s.index }

// Advance is how many positions of sequence 1 and sequence 2 one visit consumes.
func (s *State) Advance() [2]int { return s.advance }

// Dist is the emission distribution, nil for silent states. Treat it as read-only;
// edits go through Model.SetEmission so the model version moves.
func (s *State) Dist() *dist.Distribution { return s.dist }

func (s *State) Emitting() bool { return s.dist != nil }

// Magical reports whether s is the start/end sentinel.
func (s *State) Magical() bool { return s.magical }

func (s *State) String() string {
	if s.Emitting() {
		return fmt.Sprintf("%s[%d,%d]", s.name, s.advance[0], s.advance[1])
	}
	return s.name + "[dot]"
}
