package graph

// RestoreTopology installs a node/edge active bitmap and edge endpoint
// list decoded from a container format directly, without routing
// through AddNodes/AddEdges (which would clear attribute rows and
// reassign indices ascending from nextIndex). Attribute values are
// expected to already be populated by the caller at the indices they
// will occupy. Index managers are rebuilt per the §4.7.2 read-validation
// contract: inactive slots below the highest active one return to the
// free list in ascending order, next_index becomes one past the highest
// active slot.
func (g *Graph) RestoreTopology(nodeActive, edgeActive []bool, edgeFrom, edgeTo []uint64) error {
	if uint64(len(nodeActive)) != g.NodeCapacity() {
		return InvalidArgumentError("RestoreTopology", "node active bitmap length does not match capacity")
	}
	if uint64(len(edgeActive)) != g.EdgeCapacity() || len(edgeFrom) != len(edgeActive) || len(edgeTo) != len(edgeActive) {
		return InvalidArgumentError("RestoreTopology", "edge active bitmap or endpoint arrays do not match capacity")
	}

	for i, active := range edgeActive {
		if !active {
			continue
		}
		from, to := edgeFrom[i], edgeTo[i]
		if from >= uint64(len(nodeActive)) || !nodeActive[from] {
			return InvalidArgumentError("RestoreTopology", "edge references inactive or out-of-range source node")
		}
		if to >= uint64(len(nodeActive)) || !nodeActive[to] {
			return InvalidArgumentError("RestoreTopology", "edge references inactive or out-of-range target node")
		}
	}

	copy(g.nodeActive, nodeActive)
	copy(g.edgeActive, edgeActive)
	copy(g.edgeFrom, edgeFrom)
	copy(g.edgeTo, edgeTo)

	g.nodeCount = 0
	for _, a := range g.nodeActive {
		if a {
			g.nodeCount++
		}
	}
	g.edgeCount = 0
	for i := range g.nodeOut {
		g.nodeOut[i] = NewListNeighbors()
		g.nodeIn[i] = NewListNeighbors()
	}
	for i, active := range g.edgeActive {
		if !active {
			continue
		}
		g.edgeCount++
		e := uint64(i)
		from, to := g.edgeFrom[e], g.edgeTo[e]
		g.nodeOut[from] = appendNeighbor(g.nodeOut[from], to, e)
		g.nodeIn[to] = appendNeighbor(g.nodeIn[to], from, e)
		if !g.directed {
			g.nodeOut[to] = appendNeighbor(g.nodeOut[to], from, e)
			g.nodeIn[from] = appendNeighbor(g.nodeIn[from], to, e)
		}
	}
	for i := range g.nodeOut {
		g.nodeOut[i] = promoteContainer(g.nodeOut[i])
		g.nodeIn[i] = promoteContainer(g.nodeIn[i])
	}

	g.nodeIdx.RebuildFromActive(g.nodeActive)
	g.edgeIdx.RebuildFromActive(g.edgeActive)
	g.nodeTopologyVersion++
	g.edgeTopologyVersion++
	g.bumpAttrVersions(ScopeNode)
	g.bumpAttrVersions(ScopeEdge)
	return nil
}

func appendNeighbor(c NeighborContainer, neighbor, edge uint64) NeighborContainer {
	c.Add(neighbor, edge)
	return c
}

func promoteContainer(c NeighborContainer) NeighborContainer {
	lc, ok := c.(*ListNeighbors)
	if !ok || !lc.ShouldPromote() {
		return c
	}
	m := NewMapNeighbors()
	for _, ne := range lc.Snapshot() {
		m.Add(ne.Neighbor, ne.Edge)
	}
	return m
}
