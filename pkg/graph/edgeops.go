package graph

// EdgePair is one (from, to) request to AddEdges.
type EdgePair struct {
	From, To uint64
}

// AddEdges inserts a batch of edges, failing atomically if any endpoint
// is invalid or inactive (§4.5, §7). Indices correspond 1-to-1 with the
// input order (§5 ordering guarantees). Insertion is symmetric per the
// directedness rule of §3 invariant 2: undirected edges are added to
// both endpoints' out and in containers.
func (g *Graph) AddEdges(pairs []EdgePair) ([]uint64, error) {
	if len(pairs) == 0 {
		return nil, InvalidArgumentError("AddEdges", "pairs must be non-empty")
	}
	for _, p := range pairs {
		if !g.IsNodeActive(p.From) || !g.IsNodeActive(p.To) {
			return nil, InvalidArgumentError("AddEdges", "endpoint not active")
		}
	}

	g.growEdgeCapacity(uint64(g.edgeCount) + uint64(len(pairs)))

	out := make([]uint64, 0, len(pairs))
	rollback := func() {
		for _, e := range out {
			from, to := g.edgeFrom[e], g.edgeTo[e]
			g.detachEndpoints(e, from, to)
			g.edgeActive[e] = false
			g.edgeIdx.Release(e)
		}
	}

	for _, p := range pairs {
		idx, ok := g.edgeIdx.Acquire()
		if !ok {
			rollback()
			return nil, InvalidArgumentError("AddEdges", "capacity exhausted")
		}
		g.edgeActive[idx] = true
		g.edgeFrom[idx] = p.From
		g.edgeTo[idx] = p.To
		for _, attr := range g.edgeAttrs {
			attr.ClearSlot(int(idx))
		}

		g.nodeOut[p.From].Add(p.To, idx)
		g.nodeIn[p.To].Add(p.From, idx)
		if !g.directed {
			g.nodeIn[p.From].Add(p.To, idx)
			g.nodeOut[p.To].Add(p.From, idx)
		}
		g.promoteIfHeavy(p.From)
		g.promoteIfHeavy(p.To)

		out = append(out, idx)
	}

	g.edgeCount += len(pairs)
	g.edgeTopologyVersion++
	g.bumpAttrVersions(ScopeEdge)
	return out, nil
}

// promoteIfHeavy converts node n's containers from list to map form once
// their degree crosses HeavyHitterThreshold (§4.2).
func (g *Graph) promoteIfHeavy(n uint64) {
	if lo, ok := g.nodeOut[n].(*ListNeighbors); ok && lo.ShouldPromote() {
		g.nodeOut[n] = lo.ToMap()
	}
	if li, ok := g.nodeIn[n].(*ListNeighbors); ok && li.ShouldPromote() {
		g.nodeIn[n] = li.ToMap()
	}
}

// detachEndpoints removes edge e from the containers of a known
// (from, to) pair, undoing exactly the insertion AddEdges performed.
func (g *Graph) detachEndpoints(e, from, to uint64) {
	set := map[uint64]struct{}{e: {}}
	if g.IsNodeActive(from) {
		g.nodeOut[from].RemoveEdges(set)
		if !g.directed {
			g.nodeIn[from].RemoveEdges(set)
		}
	}
	if g.IsNodeActive(to) {
		g.nodeIn[to].RemoveEdges(set)
		if !g.directed {
			g.nodeOut[to].RemoveEdges(set)
		}
	}
}

// detachEdge symmetrically removes e from both endpoints' out/in
// containers (and both again if undirected), per §4.5 "Detaching an
// edge".
func (g *Graph) detachEdge(e uint64) {
	from, to := g.edgeFrom[e], g.edgeTo[e]
	g.detachEndpoints(e, from, to)
}

// RemoveEdges detaches and deactivates every listed edge, returning
// their indices to the free list.
func (g *Graph) RemoveEdges(indices []uint64) error {
	for _, e := range indices {
		if !g.IsEdgeActive(e) {
			return NotFoundError("RemoveEdges", "edge", e)
		}
	}
	for _, e := range indices {
		if !g.IsEdgeActive(e) {
			continue
		}
		g.detachEdge(e)
		g.edgeActive[e] = false
		for _, attr := range g.edgeAttrs {
			attr.ClearSlot(int(e))
		}
		g.edgeIdx.Release(e)
		g.edgeCount--
	}
	g.edgeTopologyVersion++
	g.bumpAttrVersions(ScopeEdge)
	return nil
}
