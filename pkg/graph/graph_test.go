package graph

import "testing"

// TestBasicDirectedGraph exercises concrete scenario 1 of the graph
// engine's testable properties: directed add/remove of nodes and edges.
func TestBasicDirectedGraph(t *testing.T) {
	g := NewGraph(true, 4, 4)

	nodes, err := g.AddNodes(3)
	if err != nil {
		t.Fatalf("AddNodes() error = %v", err)
	}
	if nodes[0] != 0 || nodes[1] != 1 || nodes[2] != 2 {
		t.Fatalf("AddNodes() = %v, want [0 1 2]", nodes)
	}

	edges, err := g.AddEdges([]EdgePair{{0, 1}, {1, 2}})
	if err != nil {
		t.Fatalf("AddEdges() error = %v", err)
	}
	if edges[0] != 0 || edges[1] != 1 {
		t.Fatalf("AddEdges() = %v, want [0 1]", edges)
	}

	if got := len(g.OutNeighbors(0)); got != 1 {
		t.Fatalf("OutNeighbors(0) count = %d, want 1", got)
	}

	if err := g.RemoveEdges([]uint64{0}); err != nil {
		t.Fatalf("RemoveEdges() error = %v", err)
	}
	if g.EdgeCount() != 1 {
		t.Fatalf("EdgeCount() = %d, want 1", g.EdgeCount())
	}

	if err := g.RemoveNodes([]uint64{1}); err != nil {
		t.Fatalf("RemoveNodes() error = %v", err)
	}
	if g.IsNodeActive(1) {
		t.Fatal("node 1 should be inactive after RemoveNodes")
	}
	if g.EdgeCount() != 0 {
		t.Fatalf("EdgeCount() after removing node 1 = %d, want 0", g.EdgeCount())
	}
}

// TestAddNodesThenRemoveThenAddReusesLIFO covers the boundary behaviour
// of §8: add_nodes(1); remove_nodes([i]); add_nodes(1) returns i again.
func TestAddNodesThenRemoveThenAddReusesLIFO(t *testing.T) {
	g := NewGraph(true, 4, 4)
	first, _ := g.AddNodes(1)
	i := first[0]
	if err := g.RemoveNodes([]uint64{i}); err != nil {
		t.Fatalf("RemoveNodes() error = %v", err)
	}
	second, _ := g.AddNodes(1)
	if second[0] != i {
		t.Fatalf("AddNodes() after remove = %d, want %d (LIFO reuse)", second[0], i)
	}
}

func TestUndirectedEdgeSymmetric(t *testing.T) {
	g := NewGraph(false, 2, 2)
	nodes, _ := g.AddNodes(2)
	if _, err := g.AddEdges([]EdgePair{{nodes[0], nodes[1]}}); err != nil {
		t.Fatalf("AddEdges() error = %v", err)
	}
	if len(g.OutNeighbors(nodes[0])) != 1 || len(g.InNeighbors(nodes[0])) != 1 {
		t.Fatal("undirected edge must appear in both out and in containers of node 0")
	}
	if len(g.OutNeighbors(nodes[1])) != 1 || len(g.InNeighbors(nodes[1])) != 1 {
		t.Fatal("undirected edge must appear in both out and in containers of node 1")
	}
}

func TestAddEdgesRejectsInactiveEndpoint(t *testing.T) {
	g := NewGraph(true, 2, 2)
	nodes, _ := g.AddNodes(1)
	if _, err := g.AddEdges([]EdgePair{{nodes[0], 99}}); err == nil {
		t.Fatal("expected AddEdges() to fail for an inactive endpoint")
	}
}

func TestDefineAttributeCapacityTracksGrowth(t *testing.T) {
	g := NewGraph(true, 1, 1)
	attr, err := g.DefineAttribute(ScopeNode, "weight", TypeF64, 1)
	if err != nil {
		t.Fatalf("DefineAttribute() error = %v", err)
	}
	if attr.Capacity() != 1 {
		t.Fatalf("initial Capacity() = %d, want 1", attr.Capacity())
	}
	if _, err := g.AddNodes(10); err != nil {
		t.Fatalf("AddNodes() error = %v", err)
	}
	if attr.Capacity() < 11 {
		t.Fatalf("Capacity() after growth = %d, want >= 11", attr.Capacity())
	}
}

func TestCompactRenumbersAndPreservesAttributes(t *testing.T) {
	g := NewGraph(true, 4, 4)
	nodes, _ := g.AddNodes(4)
	weight, _ := g.DefineAttribute(ScopeNode, "weight", TypeF64, 1)
	for i, n := range nodes {
		_ = weight.SetFloat64(int(n), []float64{float64(i)})
	}
	_, _ = g.AddEdges([]EdgePair{{nodes[0], nodes[1]}, {nodes[2], nodes[3]}})
	_ = g.RemoveNodes([]uint64{nodes[1]})

	compacted, err := g.Compact("_original_ids_", "")
	if err != nil {
		t.Fatalf("Compact() error = %v", err)
	}
	if compacted.NodeCount() != 3 {
		t.Fatalf("NodeCount() after compact = %d, want 3", compacted.NodeCount())
	}
	origIDs, ok := compacted.GetAttribute(ScopeNode, "_original_ids_")
	if !ok {
		t.Fatal("expected compaction to synthesize _original_ids_")
	}
	got, _ := origIDs.GetFloat64(0)
	if got[0] != 0 {
		t.Fatalf("_original_ids_[0] = %v, want 0", got)
	}
}
