package graph

// HeavyHitterThreshold is the neighbour count above which a node's
// container is promoted from list form to map form (§4.2: "the choice
// is implementation-tunable"). Grounded on the teacher's adjacency
// promotion heuristic in pkg/storage/node_operations.go, which switches
// representations past a fixed fan-out constant.
const HeavyHitterThreshold = 64

// NeighborContainer is the per-node incidence-set abstraction of §4.2.
// Two concrete representations exist; callers are agnostic to which one
// backs a given container.
type NeighborContainer interface {
	// Add appends an (edge, neighbour) pair.
	Add(neighbor, edge uint64)
	// RemoveEdges deletes every edge id present in the set.
	RemoveEdges(set map[uint64]struct{})
	// Count reports the number of (neighbour, edge) pairs currently held.
	Count() int
	// Snapshot returns a stable, non-restartable, ordered view: list form
	// preserves insertion order, map form is unordered but stable across
	// calls until the next mutation (§5 ordering guarantees).
	Snapshot() []NeighborEdge
}

// NeighborEdge is one (neighbour-node, edge) pair produced by iteration.
type NeighborEdge struct {
	Neighbor uint64
	Edge     uint64
}

// ListNeighbors is the default list-form container: two parallel,
// append-only dynamic arrays, stream-compacted on bulk removal.
type ListNeighbors struct {
	nodes []uint64
	edges []uint64
}

// NewListNeighbors returns an empty list-form container.
func NewListNeighbors() *ListNeighbors { return &ListNeighbors{} }

func (l *ListNeighbors) Add(neighbor, edge uint64) {
	l.nodes = append(l.nodes, neighbor)
	l.edges = append(l.edges, edge)
}

func (l *ListNeighbors) RemoveEdges(set map[uint64]struct{}) {
	if len(set) == 0 {
		return
	}
	w := 0
	for r := range l.edges {
		if _, dead := set[l.edges[r]]; dead {
			continue
		}
		l.nodes[w] = l.nodes[r]
		l.edges[w] = l.edges[r]
		w++
	}
	l.nodes = l.nodes[:w]
	l.edges = l.edges[:w]
}

func (l *ListNeighbors) Count() int { return len(l.edges) }

func (l *ListNeighbors) Snapshot() []NeighborEdge {
	out := make([]NeighborEdge, len(l.edges))
	for i := range l.edges {
		out[i] = NeighborEdge{Neighbor: l.nodes[i], Edge: l.edges[i]}
	}
	return out
}

// ShouldPromote reports whether this container has grown past the
// heavy-hitter threshold and should be converted to map form.
func (l *ListNeighbors) ShouldPromote() bool {
	return len(l.edges) > HeavyHitterThreshold
}

// ToMap converts a list-form container into an equivalent map-form one.
func (l *ListNeighbors) ToMap() *MapNeighbors {
	m := NewMapNeighbors()
	for i := range l.edges {
		m.Add(l.nodes[i], l.edges[i])
	}
	return m
}

// MapNeighbors is the map-form container used for heavy-hitter nodes:
// edge_id -> neighbour_node, plus neighbour_node -> multiplicity.
type MapNeighbors struct {
	edgeToNode   map[uint64]uint64
	multiplicity map[uint64]uint32
}

// NewMapNeighbors returns an empty map-form container.
func NewMapNeighbors() *MapNeighbors {
	return &MapNeighbors{
		edgeToNode:   make(map[uint64]uint64),
		multiplicity: make(map[uint64]uint32),
	}
}

func (m *MapNeighbors) Add(neighbor, edge uint64) {
	m.edgeToNode[edge] = neighbor
	m.multiplicity[neighbor]++
}

func (m *MapNeighbors) RemoveEdges(set map[uint64]struct{}) {
	for edge := range set {
		neighbor, ok := m.edgeToNode[edge]
		if !ok {
			continue
		}
		delete(m.edgeToNode, edge)
		if m.multiplicity[neighbor] <= 1 {
			delete(m.multiplicity, neighbor)
		} else {
			m.multiplicity[neighbor]--
		}
	}
}

func (m *MapNeighbors) Count() int { return len(m.edgeToNode) }

func (m *MapNeighbors) Snapshot() []NeighborEdge {
	out := make([]NeighborEdge, 0, len(m.edgeToNode))
	for edge, neighbor := range m.edgeToNode {
		out = append(out, NeighborEdge{Neighbor: neighbor, Edge: edge})
	}
	return out
}
