package bxnet

import (
	"bytes"
	"testing"
)

func TestSXNetRoundTrip(t *testing.T) {
	g := buildSampleGraph(t)

	var buf bytes.Buffer
	if err := WriteSXNet(&buf, g); err != nil {
		t.Fatalf("WriteSXNet: %v", err)
	}

	if !IsSnappyFramed(buf.Bytes()) {
		t.Fatal("IsSnappyFramed: expected snappy stream identifier at start of output")
	}
	if IsBGZF(buf.Bytes()) {
		t.Fatal("IsSnappyFramed output must not also look like BGZF")
	}

	got, err := ReadSXNet(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadSXNet: %v", err)
	}
	if got.NodeCount() != g.NodeCount() || got.EdgeCount() != g.EdgeCount() {
		t.Fatalf("round trip mismatch: got nodes=%d edges=%d, want nodes=%d edges=%d",
			got.NodeCount(), got.EdgeCount(), g.NodeCount(), g.EdgeCount())
	}
}
