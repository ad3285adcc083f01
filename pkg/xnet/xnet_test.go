package xnet

import (
	"bytes"
	"testing"

	"github.com/dd0wney/xnetgraph/pkg/graph"
)

func buildSampleGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.NewGraph(true, 4, 4)
	nodes, err := g.AddNodes(4)
	if err != nil {
		t.Fatalf("AddNodes() error = %v", err)
	}
	weight, err := g.DefineAttribute(graph.ScopeNode, "weight", graph.TypeF32, 1)
	if err != nil {
		t.Fatalf("DefineAttribute(weight) error = %v", err)
	}
	for i, n := range nodes {
		if err := weight.SetFloat64(int(n), []float64{float64(i) + 0.5}); err != nil {
			t.Fatalf("SetFloat64() error = %v", err)
		}
	}
	label, err := g.DefineAttribute(graph.ScopeNode, "label", graph.TypeCategory, 1)
	if err != nil {
		t.Fatalf("DefineAttribute(label) error = %v", err)
	}
	labels := []string{"alpha", "beta", "alpha", "gamma"}
	for i, n := range nodes {
		if err := label.SetCategoryLabel(int(n), labels[i]); err != nil {
			t.Fatalf("SetCategoryLabel() error = %v", err)
		}
	}
	edges, err := g.AddEdges([]graph.EdgePair{
		{From: nodes[0], To: nodes[1]},
		{From: nodes[1], To: nodes[2]},
		{From: nodes[2], To: nodes[3]},
	})
	if err != nil {
		t.Fatalf("AddEdges() error = %v", err)
	}
	strength, err := g.DefineAttribute(graph.ScopeEdge, "strength", graph.TypeI32, 1)
	if err != nil {
		t.Fatalf("DefineAttribute(strength) error = %v", err)
	}
	for i, e := range edges {
		if err := strength.SetFloat64(int(e), []float64{float64(i * 10)}); err != nil {
			t.Fatalf("SetFloat64() error = %v", err)
		}
	}
	if err := g.RemoveNodes([]uint64{nodes[1]}); err != nil {
		t.Fatalf("RemoveNodes() error = %v", err)
	}
	return g
}

func TestWriteReadRoundTrip(t *testing.T) {
	g := buildSampleGraph(t)

	var buf bytes.Buffer
	if err := Write(&buf, g, WriteOptions{}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v\ninput:\n%s", err, buf.String())
	}

	if got.NodeCount() != g.NodeCount() {
		t.Errorf("NodeCount() = %d, want %d", got.NodeCount(), g.NodeCount())
	}
	if got.EdgeCount() != g.EdgeCount() {
		t.Errorf("EdgeCount() = %d, want %d", got.EdgeCount(), g.EdgeCount())
	}

	weightAttr, ok := got.GetAttribute(graph.ScopeNode, "weight")
	if !ok {
		t.Fatal("weight attribute missing after round trip")
	}
	labelAttr, ok := got.GetAttribute(graph.ScopeNode, "label")
	if !ok {
		t.Fatal("label attribute missing after round trip")
	}
	origAttr, ok := got.GetAttribute(graph.ScopeNode, originalIDsAttr)
	if !ok {
		t.Fatal("_original_ids_ attribute missing after round trip")
	}

	wantWeights := []float64{0.5, 2.5, 3.5}
	wantLabels := []string{"alpha", "alpha", "gamma"}
	wantOrig := []string{"0", "2", "3"}
	if got.NodeCount() != len(wantWeights) {
		t.Fatalf("expected %d surviving nodes, got %d", len(wantWeights), got.NodeCount())
	}
	for i := 0; i < got.NodeCount(); i++ {
		w, err := weightAttr.GetFloat64(i)
		if err != nil {
			t.Fatalf("GetFloat64() error = %v", err)
		}
		if w[0] != wantWeights[i] {
			t.Errorf("weight[%d] = %v, want %v", i, w[0], wantWeights[i])
		}
		lab, _, err := labelAttr.GetCategoryLabel(i)
		if err != nil {
			t.Fatalf("GetCategoryLabel() error = %v", err)
		}
		if lab != wantLabels[i] {
			t.Errorf("label[%d] = %q, want %q", i, lab, wantLabels[i])
		}
		orig, err := origAttr.GetString(i)
		if err != nil {
			t.Fatalf("GetString() error = %v", err)
		}
		if orig[0] == nil || *orig[0] != wantOrig[i] {
			t.Errorf("_original_ids_[%d] = %v, want %q", i, orig[0], wantOrig[i])
		}
	}

	strengthAttr, ok := got.GetAttribute(graph.ScopeEdge, "strength")
	if !ok {
		t.Fatal("strength attribute missing after round trip")
	}
	wantStrengths := []float64{0, 10, 20}
	for i := 0; i < got.EdgeCount(); i++ {
		s, err := strengthAttr.GetFloat64(i)
		if err != nil {
			t.Fatalf("GetFloat64() error = %v", err)
		}
		if s[0] != wantStrengths[i] {
			t.Errorf("strength[%d] = %v, want %v", i, s[0], wantStrengths[i])
		}
	}
}

func TestReadRejectsMissingBanner(t *testing.T) {
	_, err := Read(bytes.NewBufferString("not a valid header\n"))
	if err == nil {
		t.Fatal("expected error for missing banner")
	}
}

func TestReadLegacyVertexLabelsAndWeightedToken(t *testing.T) {
	in := "#vertices 2\n" +
		"\"n0\"\n" +
		"\"n1\"\n" +
		"#edges undirected weighted\n" +
		"0 1\n"
	g, err := Read(bytes.NewBufferString(in))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if g.NodeCount() != 2 {
		t.Errorf("NodeCount() = %d, want 2", g.NodeCount())
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
	if g.Directed() {
		t.Error("Directed() = true, want false")
	}
}

func TestEscapeRoundTrip(t *testing.T) {
	cases := []string{"plain", "has space", "has\ttab\nand\\backslash\"quote", string([]byte{0x01, 0x1f, 0x7f})}
	for _, c := range cases {
		tok := writeToken(c)
		got, err := unescapeString(tok)
		if err != nil {
			t.Fatalf("unescapeString(%q) error = %v", tok, err)
		}
		if got != c {
			t.Errorf("round trip = %q, want %q", got, c)
		}
	}
}
