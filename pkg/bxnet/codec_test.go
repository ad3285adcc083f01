package bxnet

import (
	"bytes"
	"testing"

	"github.com/dd0wney/xnetgraph/pkg/graph"
)

func buildSampleGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.NewGraph(true, 8, 8)
	nodes, err := g.AddNodes(4)
	if err != nil {
		t.Fatalf("AddNodes: %v", err)
	}

	weightAttr, err := g.DefineAttribute(graph.ScopeNode, "weight", graph.TypeF64, 1)
	if err != nil {
		t.Fatalf("DefineAttribute weight: %v", err)
	}
	for i, n := range nodes {
		if err := weightAttr.SetFloat64(int(n), []float64{float64(i) * 1.5}); err != nil {
			t.Fatalf("SetFloat64: %v", err)
		}
	}

	labelAttr, err := g.DefineAttribute(graph.ScopeNode, "label", graph.TypeCategory, 1)
	if err != nil {
		t.Fatalf("DefineAttribute label: %v", err)
	}
	labels := []string{"alpha", "beta", "alpha", "gamma"}
	for i, n := range nodes {
		if err := labelAttr.SetCategoryLabel(int(n), labels[i]); err != nil {
			t.Fatalf("SetCategoryLabel: %v", err)
		}
	}

	edges, err := g.AddEdges([]graph.EdgePair{
		{From: nodes[0], To: nodes[1]},
		{From: nodes[1], To: nodes[2]},
		{From: nodes[2], To: nodes[3]},
	})
	if err != nil {
		t.Fatalf("AddEdges: %v", err)
	}

	weightEdgeAttr, err := g.DefineAttribute(graph.ScopeEdge, "strength", graph.TypeF32, 1)
	if err != nil {
		t.Fatalf("DefineAttribute strength: %v", err)
	}
	for i, e := range edges {
		if err := weightEdgeAttr.SetFloat64(int(e), []float64{float64(i) + 0.25}); err != nil {
			t.Fatalf("SetFloat64 edge: %v", err)
		}
	}

	if err := g.RemoveNodes([]uint64{nodes[1]}); err != nil {
		t.Fatalf("RemoveNodes: %v", err)
	}
	return g
}

func TestWriteReadRoundTrip(t *testing.T) {
	g := buildSampleGraph(t)

	var buf bytes.Buffer
	if err := Write(&buf, g); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got.NodeCount() != g.NodeCount() {
		t.Errorf("NodeCount = %d, want %d", got.NodeCount(), g.NodeCount())
	}
	if got.EdgeCount() != g.EdgeCount() {
		t.Errorf("EdgeCount = %d, want %d", got.EdgeCount(), g.EdgeCount())
	}
	if got.NodeCapacity() != g.NodeCapacity() {
		t.Errorf("NodeCapacity = %d, want %d", got.NodeCapacity(), g.NodeCapacity())
	}

	for i := uint64(0); i < g.NodeCapacity(); i++ {
		if got.IsNodeActive(i) != g.IsNodeActive(i) {
			t.Errorf("node %d active = %v, want %v", i, got.IsNodeActive(i), g.IsNodeActive(i))
		}
	}
	for i := uint64(0); i < g.EdgeCapacity(); i++ {
		if got.IsEdgeActive(i) != g.IsEdgeActive(i) {
			t.Fatalf("edge %d active = %v, want %v", i, got.IsEdgeActive(i), g.IsEdgeActive(i))
		}
		if !g.IsEdgeActive(i) {
			continue
		}
		wantFrom, wantTo, _ := g.EdgeEndpoints(i)
		gotFrom, gotTo, _ := got.EdgeEndpoints(i)
		if wantFrom != gotFrom || wantTo != gotTo {
			t.Errorf("edge %d endpoints = (%d,%d), want (%d,%d)", i, gotFrom, gotTo, wantFrom, wantTo)
		}
	}

	wantAttr, _ := g.GetAttribute(graph.ScopeNode, "weight")
	gotAttr, ok := got.GetAttribute(graph.ScopeNode, "weight")
	if !ok {
		t.Fatalf("weight attribute missing after round trip")
	}
	for i := uint64(0); i < g.NodeCapacity(); i++ {
		if !g.IsNodeActive(i) {
			continue
		}
		wantVals, err := wantAttr.GetFloat64(int(i))
		if err != nil {
			t.Fatalf("GetFloat64: %v", err)
		}
		gotVals, err := gotAttr.GetFloat64(int(i))
		if err != nil {
			t.Fatalf("GetFloat64 round trip: %v", err)
		}
		if len(wantVals) != len(gotVals) || wantVals[0] != gotVals[0] {
			t.Errorf("node %d weight = %v, want %v", i, gotVals, wantVals)
		}
	}

	wantLabel, _ := g.GetAttribute(graph.ScopeNode, "label")
	gotLabel, ok := got.GetAttribute(graph.ScopeNode, "label")
	if !ok {
		t.Fatalf("label attribute missing after round trip")
	}
	for i := uint64(0); i < g.NodeCapacity(); i++ {
		if !g.IsNodeActive(i) {
			continue
		}
		wantL, _, err := wantLabel.GetCategoryLabel(int(i))
		if err != nil {
			t.Fatalf("GetCategoryLabel: %v", err)
		}
		gotL, _, err := gotLabel.GetCategoryLabel(int(i))
		if err != nil {
			t.Fatalf("GetCategoryLabel round trip: %v", err)
		}
		if wantL != gotL {
			t.Errorf("node %d label = %q, want %q", i, gotL, wantL)
		}
	}
}

func TestReadRejectsBadMagic(t *testing.T) {
	g := graph.NewGraph(false, 2, 1)
	var buf bytes.Buffer
	if err := Write(&buf, g); err != nil {
		t.Fatalf("Write: %v", err)
	}
	corrupt := buf.Bytes()
	corrupt[0] ^= 0xFF
	if _, err := Read(bytes.NewReader(corrupt)); err == nil {
		t.Fatal("expected error reading corrupted header magic")
	}
}

func TestReadRejectsCRCMismatch(t *testing.T) {
	g := buildSampleGraph(t)
	var buf bytes.Buffer
	if err := Write(&buf, g); err != nil {
		t.Fatalf("Write: %v", err)
	}
	corrupt := buf.Bytes()
	corrupt[len(corrupt)/2] ^= 0xFF
	if _, err := Read(bytes.NewReader(corrupt)); err == nil {
		t.Fatal("expected error on CRC mismatch")
	}
}

func TestWriteRejectsMultiCategoryValues(t *testing.T) {
	g := graph.NewGraph(false, 2, 0)
	if _, err := g.AddNodes(1); err != nil {
		t.Fatalf("AddNodes: %v", err)
	}
	if _, err := g.DefineAttribute(graph.ScopeNode, "tags", graph.TypeMultiCategory, 1); err != nil {
		t.Fatalf("DefineAttribute: %v", err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, g); err == nil {
		t.Fatal("expected Write to reject multi_category values")
	}
}
