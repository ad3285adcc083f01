package graph

// AddNodes allocates k fresh node indices, activates their slots,
// zero-fills every node attribute row, and bumps the node topology
// version and every node attribute's version (§4.5). Fails atomically:
// if capacity is exhausted partway through, indices already allocated
// in this call are rolled back (§7 policy).
func (g *Graph) AddNodes(k int) ([]uint64, error) {
	if k <= 0 {
		return nil, InvalidArgumentError("AddNodes", "k must be positive")
	}
	g.growNodeCapacity(uint64(g.nodeCount) + uint64(k))

	out := make([]uint64, 0, k)
	for len(out) < k {
		idx, ok := g.nodeIdx.Acquire()
		if !ok {
			for _, rollback := range out {
				g.nodeIdx.Release(rollback)
				g.nodeActive[rollback] = false
			}
			return nil, InvalidArgumentError("AddNodes", "capacity exhausted")
		}
		g.nodeActive[idx] = true
		g.nodeOut[idx] = NewListNeighbors()
		g.nodeIn[idx] = NewListNeighbors()
		for _, attr := range g.nodeAttrs {
			attr.ClearSlot(int(idx))
		}
		out = append(out, idx)
	}

	g.nodeCount += k
	g.nodeTopologyVersion++
	g.bumpAttrVersions(ScopeNode)
	return out, nil
}

// RemoveNodes deactivates every live index given, detaching all incident
// edges first, clearing attribute rows, and returning indices to the
// free list.
func (g *Graph) RemoveNodes(indices []uint64) error {
	for _, idx := range indices {
		if !g.IsNodeActive(idx) {
			return NotFoundError("RemoveNodes", "node", idx)
		}
	}

	edgesTouched := false
	for _, idx := range indices {
		if !g.IsNodeActive(idx) {
			continue // already removed by an earlier dup in this batch
		}
		if g.nodeOut[idx].Count() > 0 || g.nodeIn[idx].Count() > 0 {
			edgesTouched = true
		}
		g.detachAllIncident(idx)
		g.nodeActive[idx] = false
		for _, attr := range g.nodeAttrs {
			attr.ClearSlot(int(idx))
		}
		g.nodeIdx.Release(idx)
		g.nodeCount--
	}

	g.nodeTopologyVersion++
	g.bumpAttrVersions(ScopeNode)
	if edgesTouched {
		g.edgeTopologyVersion++
		g.bumpAttrVersions(ScopeEdge)
	}
	return nil
}

// detachAllIncident removes every edge touching node idx, both
// outbound and inbound, from the graph.
func (g *Graph) detachAllIncident(idx uint64) {
	var incident []uint64
	for _, ne := range g.nodeOut[idx].Snapshot() {
		incident = append(incident, ne.Edge)
	}
	for _, ne := range g.nodeIn[idx].Snapshot() {
		incident = append(incident, ne.Edge)
	}
	seen := make(map[uint64]struct{}, len(incident))
	unique := incident[:0]
	for _, e := range incident {
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		unique = append(unique, e)
	}
	for _, e := range unique {
		g.detachEdge(e)
		g.edgeActive[e] = false
		for _, attr := range g.edgeAttrs {
			attr.ClearSlot(int(e))
		}
		g.edgeIdx.Release(e)
		g.edgeCount--
	}
}
