// Package analysis implements the phased Leiden community detection
// session and the BFS-capacity fractal dimension estimator.
//
// Grounded on original_source's CXLeiden.c / CXNetworkMeasurement.c for
// the phase sequencing, local-move gain formula, and finite-difference
// coefficients, generalized into Go's worker-pool and validator idioms
// used elsewhere in this module.
package analysis

import (
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dd0wney/xnetgraph/pkg/ferrors"
	"github.com/dd0wney/xnetgraph/pkg/graph"
	"github.com/dd0wney/xnetgraph/pkg/metrics"
)

// Phase names the stage of a Leiden session's phased stepping loop.
type Phase int

const (
	PhaseBuild Phase = iota
	PhaseCoarseMove
	PhaseRefineMove
	PhaseAggregate
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseBuild:
		return "build"
	case PhaseCoarseMove:
		return "coarse_move"
	case PhaseRefineMove:
		return "refine_move"
	case PhaseAggregate:
		return "aggregate"
	case PhaseDone:
		return "done"
	default:
		return "failed"
	}
}

// Config configures a Leiden session (§4.8, §6 configuration table).
type Config struct {
	EdgeWeightAttribute string
	Resolution          float64 `validate:"gt=0"`
	Seed                uint32
	MaxLevels           int `validate:"gt=0"`
	MaxPasses           int `validate:"gt=0"`
	CommunityAttribute  string `validate:"required"`
}

var configValidator = validator.New()

func (c Config) validate() error {
	if err := configValidator.Struct(c); err != nil {
		return ferrors.InvalidArgument("NewSession", err.Error())
	}
	return nil
}

// levelGraph is one level of the Leiden coarsening hierarchy: a compact,
// weighted adjacency over dense node ids 0..n-1.
type levelGraph struct {
	directed bool
	n        int
	outNbr   [][]uint32
	outW     [][]float64
	inNbr    [][]uint32
	inW      [][]float64
	outDeg   []float64
	inDeg    []float64
	totalW   float64
}

func newLevelGraph(n int, directed bool) *levelGraph {
	lg := &levelGraph{
		directed: directed,
		n:        n,
		outNbr:   make([][]uint32, n),
		outW:     make([][]float64, n),
		outDeg:   make([]float64, n),
	}
	if directed {
		lg.inNbr = make([][]uint32, n)
		lg.inW = make([][]float64, n)
		lg.inDeg = make([]float64, n)
	}
	return lg
}

// buildLevel0Graph reads the active portion of g into a dense level-0
// graph, returning the dense-index -> original-node-index mapping.
func buildLevel0Graph(g *graph.Graph, weightAttrName string) (*levelGraph, []uint64, error) {
	var weightAttr *graph.Attribute
	if weightAttrName != "" {
		attr, ok := g.GetAttribute(graph.ScopeEdge, weightAttrName)
		if !ok {
			return nil, nil, ferrors.NotFound("NewSession", "edge attribute", 0)
		}
		weightAttr = attr
	}

	var activeNodes []uint64
	remap := make(map[uint64]uint32)
	for i := uint64(0); i < g.NodeCapacity(); i++ {
		if g.IsNodeActive(i) {
			remap[i] = uint32(len(activeNodes))
			activeNodes = append(activeNodes, i)
		}
	}

	lg := newLevelGraph(len(activeNodes), g.Directed())
	seen := make(map[uint64]struct{})
	for dense, orig := range activeNodes {
		for _, ne := range g.OutNeighbors(orig) {
			if _, dup := seen[ne.Edge]; dup && !g.Directed() {
				continue
			}
			w := 1.0
			if weightAttr != nil {
				vals, err := weightAttr.GetFloat64(int(ne.Edge))
				if err != nil {
					return nil, nil, err
				}
				w = vals[0]
			}
			nv := remap[ne.Neighbor]
			lg.outNbr[dense] = append(lg.outNbr[dense], nv)
			lg.outW[dense] = append(lg.outW[dense], w)
			lg.outDeg[dense] += w
			if !g.Directed() {
				seen[ne.Edge] = struct{}{}
			}
		}
		if g.Directed() {
			for _, ne := range g.InNeighbors(orig) {
				w := 1.0
				if weightAttr != nil {
					vals, err := weightAttr.GetFloat64(int(ne.Edge))
					if err != nil {
						return nil, nil, err
					}
					w = vals[0]
				}
				nv := remap[ne.Neighbor]
				lg.inNbr[dense] = append(lg.inNbr[dense], nv)
				lg.inW[dense] = append(lg.inW[dense], w)
				lg.inDeg[dense] += w
			}
		}
	}
	for _, d := range lg.outDeg {
		lg.totalW += d
	}
	return lg, activeNodes, nil
}

// aggregate coarsens lg by community, producing a new level graph whose
// dense node ids are the relabeled community ids 0..communityCount-1.
func aggregate(lg *levelGraph, community []uint32, communityCount int) *levelGraph {
	type key struct{ a, b uint32 }
	outW := make(map[key]float64)
	for u := 0; u < lg.n; u++ {
		cu := community[u]
		for i, v := range lg.outNbr[u] {
			cv := community[v]
			outW[key{cu, cv}] += lg.outW[u][i]
		}
	}

	next := newLevelGraph(communityCount, lg.directed)
	for k, w := range outW {
		next.outNbr[k.a] = append(next.outNbr[k.a], k.b)
		next.outW[k.a] = append(next.outW[k.a], w)
		next.outDeg[k.a] += w
		if lg.directed {
			next.inNbr[k.b] = append(next.inNbr[k.b], k.a)
			next.inW[k.b] = append(next.inW[k.b], w)
			next.inDeg[k.b] += w
		}
	}
	for _, d := range next.outDeg {
		next.totalW += d
	}
	return next
}

// relabel assigns dense ids 0..k-1 to the distinct values of ids, in
// order of first appearance, mirroring CXLeidenRelabelCommunities.
func relabel(ids []uint32) ([]uint32, int) {
	seen := make(map[uint32]uint32)
	out := make([]uint32, len(ids))
	for i, id := range ids {
		nid, ok := seen[id]
		if !ok {
			nid = uint32(len(seen))
			seen[id] = nid
		}
		out[i] = nid
	}
	return out, len(seen)
}

// moveState drives one budgeted local-move pass over a level graph,
// mirroring CXLeidenMoveState/CXLeidenMoveStateStep.
type moveState struct {
	lg          *levelGraph
	community   []uint32
	restriction []uint32 // non-nil during refine: candidates must share the restricting label

	totOut []float64
	totIn  []float64
	sizes  []uint32

	order     []int
	orderPos  int
	pass      int
	maxPasses int
	movedInPass int
	active    bool
	rng       *rand.Rand
	res       float64
}

func newMoveState(lg *levelGraph, community []uint32, restriction []uint32, rng *rand.Rand, maxPasses int, resolution float64) *moveState {
	n := lg.n
	ms := &moveState{
		lg:          lg,
		community:   community,
		restriction: restriction,
		totOut:      make([]float64, n),
		sizes:       make([]uint32, n),
		order:       make([]int, n),
		maxPasses:   maxPasses,
		active:      true,
		rng:         rng,
		res:         resolution,
	}
	if lg.directed {
		ms.totIn = make([]float64, n)
	}
	for u := 0; u < n; u++ {
		c := community[u]
		ms.totOut[c] += lg.outDeg[u]
		if lg.directed {
			ms.totIn[c] += lg.inDeg[u]
		}
		ms.sizes[c]++
		ms.order[u] = u
	}
	rng.Shuffle(n, func(i, j int) { ms.order[i], ms.order[j] = ms.order[j], ms.order[i] })
	return ms
}

// step consumes up to budget node visits, returning true once the move
// phase has converged (no moves in a full pass, or max passes reached).
func (ms *moveState) step(budget int) bool {
	if !ms.active {
		return true
	}
	lg := ms.lg
	n := lg.n
	if n == 0 || lg.totalW <= 0 {
		ms.active = false
		return true
	}
	invTotal := 1.0 / lg.totalW
	if budget <= 0 {
		budget = 1
	}

	steps := 0
	for steps < budget && ms.pass < ms.maxPasses {
		if ms.orderPos >= n {
			if ms.movedInPass == 0 {
				ms.active = false
				return true
			}
			ms.pass++
			if ms.pass >= ms.maxPasses {
				ms.active = false
				return true
			}
			ms.orderPos = 0
			ms.movedInPass = 0
			ms.rng.Shuffle(n, func(i, j int) { ms.order[i], ms.order[j] = ms.order[j], ms.order[i] })
			continue
		}

		u := ms.order[ms.orderPos]
		ms.orderPos++
		steps++

		current := ms.community[u]
		var restrictLabel uint32
		restricted := ms.restriction != nil
		if restricted {
			restrictLabel = ms.restriction[u]
		}

		degOut := lg.outDeg[u]
		degIn := 0.0
		if lg.directed {
			degIn = lg.inDeg[u]
		}
		ms.totOut[current] -= degOut
		if lg.directed {
			ms.totIn[current] -= degIn
		}
		ms.sizes[current]--

		candOutW := make(map[uint32]float64)
		candInW := make(map[uint32]float64)
		for i, v := range lg.outNbr[u] {
			if restricted && ms.restriction[v] != restrictLabel {
				continue
			}
			candOutW[ms.community[v]] += lg.outW[u][i]
		}
		if lg.directed {
			for i, v := range lg.inNbr[u] {
				if restricted && ms.restriction[v] != restrictLabel {
					continue
				}
				candInW[ms.community[v]] += lg.inW[u][i]
			}
		}

		best := current
		bestGain := 0.0
		seen := make(map[uint32]struct{}, len(candOutW)+len(candInW))
		for c := range candOutW {
			seen[c] = struct{}{}
		}
		for c := range candInW {
			seen[c] = struct{}{}
		}
		for c := range seen {
			var gain float64
			if lg.directed {
				gain = (candOutW[c] + candInW[c]) - ms.resolutionTerm(degOut, degIn, c, invTotal)
			} else {
				gain = candOutW[c] - ms.resolution()*degOut*ms.totOut[c]*invTotal
			}
			if gain > bestGain+1e-12 || (gain > bestGain-1e-12 && ms.rng.Float64() < 0.5 && c != current) {
				bestGain = gain
				best = c
			}
		}

		ms.community[u] = best
		ms.totOut[best] += degOut
		if lg.directed {
			ms.totIn[best] += degIn
		}
		ms.sizes[best]++
		if best != current {
			ms.movedInPass++
		}
	}

	if ms.pass >= ms.maxPasses {
		ms.active = false
		return true
	}
	return false
}

func (ms *moveState) resolutionTerm(degOut, degIn float64, c uint32, invTotal float64) float64 {
	return ms.resolution() * ((degOut*ms.totIn[c] + degIn*ms.totOut[c]) * invTotal)
}

func (ms *moveState) resolution() float64 { return ms.res }

// Session drives the phased Leiden state machine: local moves at the
// current level, a restricted refine pass, aggregation into the next
// level, and repeat until no further coarsening is possible or
// MaxLevels is reached. Mirrors CXLeidenSessionStep.
type Session struct {
	cfg   Config
	rng   *rand.Rand
	phase Phase
	level int

	level0     *levelGraph
	origNodes  []uint64
	cur        *levelGraph
	community  []uint32 // current level's community assignment
	coarseLbl  []uint32 // community label each level-0 node had entering the active coarse pass

	// composed maps level-0 node index -> current level's dense node index
	nodeToCurrent []uint32

	move      *moveState
	err       error
	startedAt time.Time
}

// NewSession builds a Leiden session over the active portion of g.
func NewSession(g *graph.Graph, cfg Config) (*Session, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	lg, origNodes, err := buildLevel0Graph(g, cfg.EdgeWeightAttribute)
	if err != nil {
		return nil, err
	}
	nodeToCurrent := make([]uint32, len(origNodes))
	for i := range nodeToCurrent {
		nodeToCurrent[i] = uint32(i)
	}
	community := make([]uint32, lg.n)
	for i := range community {
		community[i] = uint32(i)
	}
	return &Session{
		cfg:           cfg,
		rng:           rand.New(rand.NewSource(int64(cfg.Seed))),
		phase:         PhaseCoarseMove,
		level0:        lg,
		origNodes:     origNodes,
		cur:           lg,
		community:     community,
		nodeToCurrent: nodeToCurrent,
		startedAt:     time.Now(),
	}, nil
}

// Phase reports the session's current phase.
func (s *Session) Phase() Phase { return s.phase }

// Step advances the session by at most budget node visits, returning
// the phase reached. Call repeatedly until Phase() is PhaseDone (or
// PhaseFailed).
func (s *Session) Step(budget int) Phase {
	if s.phase == PhaseDone || s.phase == PhaseFailed {
		return s.phase
	}
	if s.level >= s.cfg.MaxLevels {
		s.phase = PhaseDone
		return s.phase
	}

	switch s.phase {
	case PhaseCoarseMove:
		if s.move == nil {
			s.move = newMoveState(s.cur, s.community, nil, s.rng, s.cfg.MaxPasses, s.cfg.Resolution)
		}
		if done := s.move.step(budget); done {
			s.coarseLbl = append([]uint32(nil), s.community...)
			relabelled, _ := relabel(s.community)
			copy(s.community, relabelled)
			s.move = nil
			s.phase = PhaseRefineMove
		}
	case PhaseRefineMove:
		if s.move == nil {
			refined := make([]uint32, s.cur.n)
			for i := range refined {
				refined[i] = uint32(i)
			}
			s.community = refined
			s.move = newMoveState(s.cur, s.community, s.coarseLbl, s.rng, s.cfg.MaxPasses, s.cfg.Resolution)
		}
		if done := s.move.step(budget); done {
			relabelled, count := relabel(s.community)
			s.community = relabelled
			s.move = nil
			if count == s.cur.n {
				s.phase = PhaseDone
			} else {
				s.phase = PhaseAggregate
			}
		}
	case PhaseAggregate:
		_, count := relabel(s.community)
		next := aggregate(s.cur, s.community, count)
		for i, c := range s.nodeToCurrent {
			s.nodeToCurrent[i] = s.community[c]
		}
		s.cur = next
		s.community = make([]uint32, next.n)
		for i := range s.community {
			s.community[i] = uint32(i)
		}
		s.level++
		if s.level >= s.cfg.MaxLevels {
			s.phase = PhaseDone
		} else {
			s.phase = PhaseCoarseMove
		}
	}
	return s.phase
}

// Modularity computes modularity of the final composed assignment
// directly against the level-0 graph, per CXLeidenModularity.
func (s *Session) Modularity() float64 {
	lg := s.level0
	if lg.n == 0 || lg.totalW <= 0 {
		return 0
	}
	m := lg.totalW
	_, count := relabel(s.nodeToCurrent)
	labels := relabelDense(s.nodeToCurrent, count)

	totOut := make([]float64, count)
	totIn := make([]float64, count)
	inWeight := make([]float64, count)
	for u := 0; u < lg.n; u++ {
		c := labels[u]
		totOut[c] += lg.outDeg[u]
		if lg.directed {
			totIn[c] += lg.inDeg[u]
		}
		for i, v := range lg.outNbr[u] {
			if labels[v] == c {
				inWeight[c] += lg.outW[u][i]
			}
		}
	}

	q := 0.0
	for c := 0; c < count; c++ {
		if lg.directed {
			q += inWeight[c]/m - s.cfg.Resolution*(totOut[c]/m)*(totIn[c]/m)
		} else {
			frac := totOut[c] / m
			q += inWeight[c]/m - s.cfg.Resolution*frac*frac
		}
	}
	return q
}

func relabelDense(ids []uint32, count int) []uint32 {
	// ids already dense (produced by relabel); this just returns a copy
	// sized for clarity at call sites.
	out := make([]uint32, len(ids))
	copy(out, ids)
	return out
}

// Finalize writes the final community assignment into a u32 node
// attribute on g named by cfg.CommunityAttribute.
func (s *Session) Finalize(g *graph.Graph) error {
	if s.phase != PhaseDone {
		return ferrors.InvalidArgument("Finalize", "session has not reached PhaseDone")
	}
	attr, err := g.DefineAttribute(graph.ScopeNode, s.cfg.CommunityAttribute, graph.TypeU32, 1)
	if err != nil {
		return err
	}
	for i, orig := range s.origNodes {
		if err := attr.SetFloat64(int(orig), []float64{float64(s.nodeToCurrent[i])}); err != nil {
			return err
		}
	}

	reg := metrics.DefaultRegistry()
	reg.LeidenLevelsTotal.Observe(float64(s.level + 1))
	reg.LeidenModularity.Set(s.Modularity())
	reg.LeidenSessionDuration.Observe(time.Since(s.startedAt).Seconds())
	return nil
}
