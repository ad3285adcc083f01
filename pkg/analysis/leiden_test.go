package analysis

import (
	"testing"

	"github.com/dd0wney/xnetgraph/pkg/graph"
)

// buildTwoCliques builds two 10-node cliques joined by a single bridge
// edge: community detection should recover exactly two communities with
// substantial modularity at resolution 1.0.
func buildTwoCliques(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.NewGraph(false, 20, 0)
	nodes, err := g.AddNodes(20)
	if err != nil {
		t.Fatalf("AddNodes() error = %v", err)
	}
	var pairs []graph.EdgePair
	for _, base := range []int{0, 10} {
		for i := 0; i < 10; i++ {
			for j := i + 1; j < 10; j++ {
				pairs = append(pairs, graph.EdgePair{From: nodes[base+i], To: nodes[base+j]})
			}
		}
	}
	pairs = append(pairs, graph.EdgePair{From: nodes[0], To: nodes[10]})
	if _, err := g.AddEdges(pairs); err != nil {
		t.Fatalf("AddEdges() error = %v", err)
	}
	return g
}

func runToCompletion(t *testing.T, s *Session) {
	t.Helper()
	for i := 0; i < 10000; i++ {
		if p := s.Step(64); p == PhaseDone || p == PhaseFailed {
			if p == PhaseFailed {
				t.Fatal("session reached PhaseFailed")
			}
			return
		}
	}
	t.Fatal("session did not converge within step budget")
}

func TestSessionFindsTwoCliqueCommunities(t *testing.T) {
	g := buildTwoCliques(t)
	cfg := Config{
		Resolution:         1.0,
		Seed:               7,
		MaxLevels:          10,
		MaxPasses:          20,
		CommunityAttribute: "community",
	}
	s, err := NewSession(g, cfg)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	runToCompletion(t, s)

	distinct := map[uint32]struct{}{}
	for _, c := range s.nodeToCurrent {
		distinct[c] = struct{}{}
	}
	if len(distinct) != 2 {
		t.Errorf("community count = %d, want 2", len(distinct))
	}

	if q := s.Modularity(); q <= 0.45 {
		t.Errorf("Modularity() = %v, want > 0.45", q)
	}

	if err := s.Finalize(g); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	attr, ok := g.GetAttribute(graph.ScopeNode, "community")
	if !ok {
		t.Fatal("community attribute missing after Finalize")
	}
	first, err := attr.GetFloat64(0)
	if err != nil {
		t.Fatalf("GetFloat64() error = %v", err)
	}
	last, err := attr.GetFloat64(19)
	if err != nil {
		t.Fatalf("GetFloat64() error = %v", err)
	}
	if first[0] == last[0] {
		t.Error("expected nodes from opposite cliques to land in different communities")
	}
}

func TestNewSessionRejectsInvalidConfig(t *testing.T) {
	g := graph.NewGraph(false, 1, 0)
	if _, err := g.AddNodes(1); err != nil {
		t.Fatalf("AddNodes() error = %v", err)
	}
	_, err := NewSession(g, Config{Resolution: 0, MaxLevels: 1, MaxPasses: 1, CommunityAttribute: "c"})
	if err == nil {
		t.Fatal("expected error for non-positive resolution")
	}
}

func TestRelabelIsDenseAndStable(t *testing.T) {
	ids := []uint32{5, 5, 2, 9, 2}
	out, count := relabel(ids)
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
	if out[0] != out[1] {
		t.Errorf("expected equal source ids to relabel equal, got %v", out)
	}
	if out[2] != out[4] {
		t.Errorf("expected equal source ids to relabel equal, got %v", out)
	}
	if out[0] == out[2] || out[0] == out[3] || out[2] == out[3] {
		t.Errorf("expected distinct source ids to relabel distinct, got %v", out)
	}
}
