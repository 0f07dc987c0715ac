// core/dp/dp.go
package dp

import (
	"fmt"
	"math"

	"pairdp/core/alphabet"
	"pairdp/core/dist"
	"pairdp/core/model"
)

// PairwiseDP runs Forward, Backward and Viterbi over one pair-HMM.
// A single run is sequential. Independent runs over the same PairwiseDP may
// proceed concurrently; the model is leased for each run's lifetime.
type PairwiseDP struct {
	model *model.Model
	cache *emissionCache
}

func New(m *model.Model) *PairwiseDP {
	return &PairwiseDP{model: m, cache: newEmissionCache()}
}

func (dp *PairwiseDP) Model() *model.Model { return dp.model }

// CacheStats reports emission cache traffic since the DP was created.
func (dp *PairwiseDP) CacheStats() CacheStats { return dp.cache.stats() }

// run is the per-call view of the model: states in DP order, transition
// tables in log space, and the sequences padded by the grid.
type run struct {
	dp      *PairwiseDP
	lease   *model.Lease
	version uint64
	st      dist.ScoreType
	extract dist.Extractor

	states []*model.State
	nEmit  int
	magic  int
	adv    [][2]int

	pred, succ   [][]int
	predW, succW [][]float64

	seqs [2]alphabet.Sequence
	buf  []float64 // per-state option scratch

	emits map[alphabet.Pair][]float64
	hits  uint64
}

// begin validates the call and takes the model lease. Callers must
// defer r.release() once begin succeeds.
func (dp *PairwiseDP) begin(op string, seqs []alphabet.Sequence, st dist.ScoreType) (*run, error) {
	if len(seqs) != 2 {
		return nil, fmt.Errorf("%s: %w (got %d)", op, ErrNotPair, len(seqs))
	}
	extract, err := st.Extractor()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lease := dp.model.Lease()
	r := &run{dp: dp, lease: lease, version: dp.model.Version(), st: st, extract: extract,
		emits: make(map[alphabet.Pair][]float64)}
	if err := r.bind(seqs); err != nil {
		lease.Release()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	r.plan()
	return r, nil
}

func (r *run) release() {
	r.dp.cache.hits.Add(r.hits)
	r.lease.Release()
}

func (r *run) bind(seqs []alphabet.Sequence) error {
	cp := r.dp.model.CrossProduct()
	want := [2]*alphabet.Alphabet{cp.First, cp.Second}
	for i, s := range seqs {
		if !s.Alphabet.Equal(want[i]) {
			return fmt.Errorf("%w: sequence %d (%s) is %v, model expects %v", ErrAlphabetMismatch, i+1, s.ID, s.Alphabet, want[i])
		}
		if err := s.Validate(); err != nil {
			return err
		}
		r.seqs[i] = s
	}
	return nil
}

func (r *run) plan() {
	m := r.dp.model
	r.states = m.States()
	n := len(r.states)
	r.adv = make([][2]int, n)
	r.pred, r.succ = make([][]int, n), make([][]int, n)
	r.predW, r.succW = make([][]float64, n), make([][]float64, n)
	maxDeg := 0
	for i, s := range r.states {
		if s.Emitting() {
			r.nEmit = i + 1
		}
		if s.Magical() {
			r.magic = i
		}
		r.adv[i] = s.Advance()
		from, fw := m.Predecessors(s)
		r.pred[i], r.predW[i] = indexes(from), logs(fw)
		to, tw := m.Successors(s)
		r.succ[i], r.succW[i] = indexes(to), logs(tw)
		maxDeg = max(maxDeg, len(from), len(to))
	}
	r.buf = make([]float64, maxDeg)
}

func indexes(states []*model.State) []int {
	out := make([]int, len(states))
	for i, s := range states {
		out[i] = s.Index()
	}
	return out
}

// Transition weights go to log space whatever the score type.
func logs(ws []float64) []float64 {
	out := make([]float64, len(ws))
	for i, w := range ws {
		out[i] = math.Log(w)
	}
	return out
}

// symbol is the grid symbol of axis at position p. Positions 0 and len+1
// are padding and read as the gap.
func (r *run) symbol(axis, p int) alphabet.Symbol {
	syms := r.seqs[axis].Symbols
	if p < 1 || p > len(syms) {
		return alphabet.Gap
	}
	return syms[p-1]
}

// emit fills a cell's emissions the first time a cursor reaches it.
func (r *run) emit(c *Cell, p0, p1 int) {
	p := alphabet.Pair{A: r.symbol(0, p0), B: r.symbol(1, p1)}
	if v, ok := r.emits[p]; ok {
		r.hits++
		c.Emissions = v
		return
	}
	v := r.dp.cache.vector(r, p)
	r.emits[p] = v
	c.Emissions = v
}

// extent is the grid size along each axis, padding included.
func (r *run) extent() [2]int {
	return [2]int{r.seqs[0].Len() + 2, r.seqs[1].Len() + 2}
}
