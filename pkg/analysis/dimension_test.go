package analysis

import (
	"math"
	"testing"

	"github.com/dd0wney/xnetgraph/pkg/graph"
)

// buildPath builds an undirected path graph of n nodes: 0-1-2-...-(n-1).
func buildPath(t *testing.T, n int) (*graph.Graph, []uint64) {
	t.Helper()
	g := graph.NewGraph(false, uint64(n), 0)
	nodes, err := g.AddNodes(n)
	if err != nil {
		t.Fatalf("AddNodes() error = %v", err)
	}
	var pairs []graph.EdgePair
	for i := 0; i < n-1; i++ {
		pairs = append(pairs, graph.EdgePair{From: nodes[i], To: nodes[i+1]})
	}
	if _, err := g.AddEdges(pairs); err != nil {
		t.Fatalf("AddEdges() error = %v", err)
	}
	return g, nodes
}

func TestCapacitySeriesOnPathGraph(t *testing.T) {
	g, nodes := buildPath(t, 11)
	capacity := capacitySeries(g, nodes[5], 5)
	want := []uint32{1, 3, 5, 7, 9, 11}
	if len(capacity) != len(want) {
		t.Fatalf("len(capacity) = %d, want %d", len(capacity), len(want))
	}
	for i, w := range want {
		if capacity[i] != w {
			t.Errorf("capacity[%d] = %d, want %d", i, capacity[i], w)
		}
	}
}

func TestEstimateNodeDimensionLeastSquaresOnPathGraph(t *testing.T) {
	g, nodes := buildPath(t, 11)
	cfg := DimensionConfig{
		Method:   MethodLeastSquares,
		Order:    2,
		MaxLevel: 5,
		Radius:   3,
	}
	d, err := EstimateNodeDimension(g, nodes[5], cfg)
	if err != nil {
		t.Fatalf("EstimateNodeDimension() error = %v", err)
	}
	if math.Abs(d-1.0) > 0.05 {
		t.Errorf("dimension = %v, want ~1.0 +/- 0.05", d)
	}
}

func TestEstimateGlobalDimensionSamplesAllNodes(t *testing.T) {
	g, nodes := buildPath(t, 11)
	cfg := DimensionConfig{
		Method:   MethodLeastSquares,
		Order:    2,
		MaxLevel: 5,
		Radius:   3,
		Workers:  4,
	}
	d, err := EstimateGlobalDimension(g, nodes, cfg)
	if err != nil {
		t.Fatalf("EstimateGlobalDimension() error = %v", err)
	}
	if math.IsNaN(d) || math.IsInf(d, 0) {
		t.Errorf("dimension = %v, want finite", d)
	}
}

func TestDimensionConfigRejectsOrderOutOfRange(t *testing.T) {
	cfg := DimensionConfig{Method: MethodForwardDifference, Order: 7, MaxLevel: 10, Radius: 1}
	if err := cfg.validate(); err == nil {
		t.Fatal("expected error for order > 6 with forward difference")
	}
}

func TestForwardAndBackwardDifferenceAgreeInsideWindow(t *testing.T) {
	capacity := []uint32{1, 3, 5, 7, 9, 11, 13}
	fwd, err := estimateFromCapacity(capacity, DimensionConfig{Method: MethodForwardDifference, Order: 1, MaxLevel: 6, Radius: 2})
	if err != nil {
		t.Fatalf("forward difference error = %v", err)
	}
	bwd, err := estimateFromCapacity(capacity, DimensionConfig{Method: MethodBackwardDifference, Order: 1, MaxLevel: 6, Radius: 2})
	if err != nil {
		t.Fatalf("backward difference error = %v", err)
	}
	if math.Abs(fwd-bwd) > 0.3 {
		t.Errorf("forward = %v, backward = %v, expected roughly similar on a linear series", fwd, bwd)
	}
}
