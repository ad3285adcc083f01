package graph

import "testing"

func TestListNeighbors_AddAndOrder(t *testing.T) {
	l := NewListNeighbors()
	l.Add(10, 100)
	l.Add(20, 101)
	l.Add(30, 102)

	snap := l.Snapshot()
	want := []NeighborEdge{{10, 100}, {20, 101}, {30, 102}}
	if len(snap) != len(want) {
		t.Fatalf("Snapshot() len = %d, want %d", len(snap), len(want))
	}
	for i := range want {
		if snap[i] != want[i] {
			t.Errorf("Snapshot()[%d] = %+v, want %+v", i, snap[i], want[i])
		}
	}
}

func TestListNeighbors_RemoveEdges(t *testing.T) {
	l := NewListNeighbors()
	l.Add(1, 1)
	l.Add(2, 2)
	l.Add(3, 3)
	l.RemoveEdges(map[uint64]struct{}{2: {}})
	if l.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", l.Count())
	}
	for _, ne := range l.Snapshot() {
		if ne.Edge == 2 {
			t.Fatal("edge 2 should have been removed")
		}
	}
}

func TestListNeighbors_PromoteToMap(t *testing.T) {
	l := NewListNeighbors()
	for i := uint64(0); i <= HeavyHitterThreshold; i++ {
		l.Add(i, i)
	}
	if !l.ShouldPromote() {
		t.Fatal("expected ShouldPromote() to be true past the threshold")
	}
	m := l.ToMap()
	if m.Count() != l.Count() {
		t.Fatalf("ToMap() count = %d, want %d", m.Count(), l.Count())
	}
}

func TestMapNeighbors_MultiplicityDecrement(t *testing.T) {
	m := NewMapNeighbors()
	m.Add(5, 1)
	m.Add(5, 2) // parallel edge to the same neighbour
	if m.multiplicity[5] != 2 {
		t.Fatalf("multiplicity = %d, want 2", m.multiplicity[5])
	}
	m.RemoveEdges(map[uint64]struct{}{1: {}})
	if m.multiplicity[5] != 1 {
		t.Fatalf("multiplicity after one removal = %d, want 1", m.multiplicity[5])
	}
	m.RemoveEdges(map[uint64]struct{}{2: {}})
	if _, present := m.multiplicity[5]; present {
		t.Fatal("expected neighbour key to be erased once multiplicity reaches 0")
	}
}
