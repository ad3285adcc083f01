package graph

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestGraphInvariants property-tests the §8 invariants that must hold
// for any interleaving of add_nodes/add_edges/remove_nodes/remove_edges.
func TestGraphInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("node_count equals popcount(node_active)", prop.ForAll(
		func(adds []uint8) bool {
			g := NewGraph(true, 1, 1)
			var live []uint64
			for _, raw := range adds {
				n := int(raw%4) + 1
				if raw%7 == 0 && len(live) > 0 {
					victim := live[0]
					if err := g.RemoveNodes([]uint64{victim}); err != nil {
						return false
					}
					live = live[1:]
					continue
				}
				ids, err := g.AddNodes(n)
				if err != nil {
					return false
				}
				live = append(live, ids...)
			}
			active := 0
			for i := uint64(0); i < g.NodeCapacity(); i++ {
				if g.IsNodeActive(i) {
					active++
				}
			}
			return active == g.NodeCount() && g.NodeCount() == len(live)
		},
		gen.SliceOf(gen.UInt8()),
	))

	properties.Property("every active edge appears in both endpoints' containers", prop.ForAll(
		func(n uint8) bool {
			count := int(n%8) + 2
			g := NewGraph(true, uint64(count), uint64(count))
			nodes, err := g.AddNodes(count)
			if err != nil {
				return false
			}
			pairs := make([]EdgePair, 0, count-1)
			for i := 0; i < count-1; i++ {
				pairs = append(pairs, EdgePair{From: nodes[i], To: nodes[i+1]})
			}
			edgeIDs, err := g.AddEdges(pairs)
			if err != nil {
				return false
			}
			for i, e := range edgeIDs {
				from, to, ok := g.EdgeEndpoints(e)
				if !ok || from != pairs[i].From || to != pairs[i].To {
					return false
				}
				foundOut := false
				for _, ne := range g.OutNeighbors(from) {
					if ne.Edge == e {
						foundOut = true
					}
				}
				foundIn := false
				for _, ne := range g.InNeighbors(to) {
					if ne.Edge == e {
						foundIn = true
					}
				}
				if !foundOut || !foundIn {
					return false
				}
			}
			return true
		},
		gen.UInt8(),
	))

	properties.Property("attribute version strictly increases absent wrap", prop.ForAll(
		func(bumps uint8) bool {
			a, _ := NewAttribute("x", ScopeNode, TypeF64, 1, 1)
			prev := a.Version()
			for i := 0; i < int(bumps); i++ {
				_ = a.SetFloat64(0, []float64{float64(i)})
				if a.Version() <= prev {
					return false
				}
				prev = a.Version()
			}
			return true
		},
		gen.UInt8(),
	))

	properties.TestingRun(t)
}
