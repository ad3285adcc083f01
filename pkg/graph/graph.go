package graph

// Graph owns nodes, edges, neighbour containers, and the three attribute
// scopes, enforcing the invariants of §3/§4.5. Grounded on the teacher's
// top-level Storage struct (pkg/storage/storage.go), which plays the
// same "owns everything, no locks, single-threaded" role; generalized
// here with free-list-backed index managers and the typed attribute
// store of §4.3 in place of the teacher's page-oriented row store.
type Graph struct {
	directed bool

	nodeIdx *IndexManager
	edgeIdx *IndexManager

	nodeActive []bool
	edgeActive []bool

	edgeFrom []uint64
	edgeTo   []uint64

	nodeOut []NeighborContainer
	nodeIn  []NeighborContainer

	nodeAttrs  map[string]*Attribute
	edgeAttrs  map[string]*Attribute
	graphAttrs map[string]*Attribute

	nodeDerived map[string][]*DerivedBuffer
	edgeDerived map[string][]*DerivedBuffer

	nodeTopologyVersion uint64
	edgeTopologyVersion uint64

	nodeCount int
	edgeCount int
}

// NewGraph allocates a graph with the given initial node/edge capacity.
func NewGraph(directed bool, nodeCap, edgeCap uint64) *Graph {
	g := &Graph{
		directed:   directed,
		nodeIdx:    NewIndexManager(nodeCap),
		edgeIdx:    NewIndexManager(edgeCap),
		nodeActive: make([]bool, nodeCap),
		edgeActive: make([]bool, edgeCap),
		edgeFrom:   make([]uint64, edgeCap),
		edgeTo:     make([]uint64, edgeCap),
		nodeOut:    make([]NeighborContainer, nodeCap),
		nodeIn:     make([]NeighborContainer, nodeCap),
		nodeAttrs:  make(map[string]*Attribute),
		edgeAttrs:  make(map[string]*Attribute),
		graphAttrs: make(map[string]*Attribute),
		nodeDerived: make(map[string][]*DerivedBuffer),
		edgeDerived: make(map[string][]*DerivedBuffer),
	}
	for i := range g.nodeOut {
		g.nodeOut[i] = NewListNeighbors()
		g.nodeIn[i] = NewListNeighbors()
	}
	return g
}

func (g *Graph) Directed() bool       { return g.directed }
func (g *Graph) NodeCount() int       { return g.nodeCount }
func (g *Graph) EdgeCount() int       { return g.edgeCount }
func (g *Graph) NodeCapacity() uint64 { return g.nodeIdx.Capacity() }
func (g *Graph) EdgeCapacity() uint64 { return g.edgeIdx.Capacity() }

func (g *Graph) NodeTopologyVersion() uint64 { return g.nodeTopologyVersion }
func (g *Graph) EdgeTopologyVersion() uint64 { return g.edgeTopologyVersion }

func (g *Graph) IsNodeActive(i uint64) bool {
	return i < uint64(len(g.nodeActive)) && g.nodeActive[i]
}

func (g *Graph) IsEdgeActive(i uint64) bool {
	return i < uint64(len(g.edgeActive)) && g.edgeActive[i]
}

func (g *Graph) EdgeEndpoints(e uint64) (from, to uint64, ok bool) {
	if !g.IsEdgeActive(e) {
		return InvalidIndex, InvalidIndex, false
	}
	return g.edgeFrom[e], g.edgeTo[e], true
}

func (g *Graph) OutNeighbors(n uint64) []NeighborEdge {
	if !g.IsNodeActive(n) {
		return nil
	}
	return g.nodeOut[n].Snapshot()
}

func (g *Graph) InNeighbors(n uint64) []NeighborEdge {
	if !g.IsNodeActive(n) {
		return nil
	}
	return g.nodeIn[n].Snapshot()
}

// growNodeCapacity grows every node-indexed array to at least n,
// keeping attribute and topology arrays size-aligned (§4.5 Growth).
func (g *Graph) growNodeCapacity(n uint64) {
	cur := g.nodeIdx.Capacity()
	if n <= cur {
		return
	}
	target := grow(n, cur)
	g.nodeIdx.Resize(target)

	newActive := make([]bool, target)
	copy(newActive, g.nodeActive)
	g.nodeActive = newActive

	newOut := make([]NeighborContainer, target)
	newIn := make([]NeighborContainer, target)
	copy(newOut, g.nodeOut)
	copy(newIn, g.nodeIn)
	for i := len(g.nodeOut); i < int(target); i++ {
		newOut[i] = NewListNeighbors()
		newIn[i] = NewListNeighbors()
	}
	g.nodeOut = newOut
	g.nodeIn = newIn

	for _, attr := range g.nodeAttrs {
		attr.EnsureCapacity(int(target))
	}
}

func (g *Graph) growEdgeCapacity(n uint64) {
	cur := g.edgeIdx.Capacity()
	if n <= cur {
		return
	}
	target := grow(n, cur)
	g.edgeIdx.Resize(target)

	newActive := make([]bool, target)
	copy(newActive, g.edgeActive)
	g.edgeActive = newActive

	newFrom := make([]uint64, target)
	newTo := make([]uint64, target)
	copy(newFrom, g.edgeFrom)
	copy(newTo, g.edgeTo)
	g.edgeFrom = newFrom
	g.edgeTo = newTo

	for _, attr := range g.edgeAttrs {
		attr.EnsureCapacity(int(target))
	}
}

func (g *Graph) bumpAttrVersions(scope Scope) {
	var attrs map[string]*Attribute
	switch scope {
	case ScopeNode:
		attrs = g.nodeAttrs
	case ScopeEdge:
		attrs = g.edgeAttrs
	}
	for _, a := range attrs {
		a.BumpVersion()
	}
}
