package graph

// Compact returns an equivalent graph renumbered to 0..count-1 with no
// holes, indices assigned in ascending order of original index (§4.5,
// GLOSSARY "Compaction"). If nodeOriginalIDAttr/edgeOriginalIDAttr are
// non-empty, a u64 attribute of that name is created in the new graph
// holding each slot's original index.
func (g *Graph) Compact(nodeOriginalIDAttr, edgeOriginalIDAttr string) (*Graph, error) {
	oldNodes := g.activeIndices(g.nodeActive)
	oldEdges := g.activeIndices(g.edgeActive)

	out := NewGraph(g.directed, uint64(len(oldNodes)), uint64(len(oldEdges)))

	oldToNew := make(map[uint64]uint64, len(oldNodes))
	if len(oldNodes) > 0 {
		newIDs, err := out.AddNodes(len(oldNodes))
		if err != nil {
			return nil, err
		}
		for i, oldIdx := range oldNodes {
			oldToNew[oldIdx] = newIDs[i]
		}
	}

	for name, attr := range g.nodeAttrs {
		newAttr, err := out.DefineAttribute(ScopeNode, name, attr.BaseType(), attr.Dimension())
		if err != nil {
			return nil, err
		}
		if attr.BaseType() == TypeCategory {
			newAttr.SetDictionary(attr.Dictionary().Clone(), false)
		}
		for i, oldIdx := range oldNodes {
			copyAttrRow(attr, int(oldIdx), newAttr, i)
		}
	}

	if nodeOriginalIDAttr != "" {
		idAttr, err := out.DefineAttribute(ScopeNode, nodeOriginalIDAttr, TypeU64, 1)
		if err != nil {
			return nil, err
		}
		for i, oldIdx := range oldNodes {
			_ = idAttr.SetFloat64(i, []float64{float64(oldIdx)})
		}
	}

	pairs := make([]EdgePair, 0, len(oldEdges))
	for _, e := range oldEdges {
		from, to, _ := g.EdgeEndpoints(e)
		pairs = append(pairs, EdgePair{From: oldToNew[from], To: oldToNew[to]})
	}
	var newEdgeIDs []uint64
	if len(pairs) > 0 {
		var err error
		newEdgeIDs, err = out.AddEdges(pairs)
		if err != nil {
			return nil, err
		}
	}

	for name, attr := range g.edgeAttrs {
		newAttr, err := out.DefineAttribute(ScopeEdge, name, attr.BaseType(), attr.Dimension())
		if err != nil {
			return nil, err
		}
		if attr.BaseType() == TypeCategory {
			newAttr.SetDictionary(attr.Dictionary().Clone(), false)
		}
		for i, oldIdx := range oldEdges {
			copyAttrRow(attr, int(oldIdx), newAttr, int(newEdgeIDs[i]))
		}
	}

	if edgeOriginalIDAttr != "" {
		idAttr, err := out.DefineAttribute(ScopeEdge, edgeOriginalIDAttr, TypeU64, 1)
		if err != nil {
			return nil, err
		}
		for i, oldIdx := range oldEdges {
			_ = idAttr.SetFloat64(int(newEdgeIDs[i]), []float64{float64(oldIdx)})
		}
	}

	for name, attr := range g.graphAttrs {
		newAttr, err := out.DefineAttribute(ScopeGraph, name, attr.BaseType(), attr.Dimension())
		if err != nil {
			return nil, err
		}
		copyAttrRow(attr, 0, newAttr, 0)
	}

	return out, nil
}

func (g *Graph) activeIndices(active []bool) []uint64 {
	out := make([]uint64, 0)
	for i, a := range active {
		if a {
			out = append(out, uint64(i))
		}
	}
	return out
}

// copyAttrRow copies row srcIdx of src into row dstIdx of dst. Both
// attributes must share base type and dimension (true by construction
// in Compact, which defines dst from src's shape).
func copyAttrRow(src *Attribute, srcIdx int, dst *Attribute, dstIdx int) {
	switch src.BaseType() {
	case TypeBool:
		if v, err := src.GetBool(srcIdx); err == nil {
			_ = dst.SetBool(dstIdx, v)
		}
	case TypeString:
		if v, err := src.GetString(srcIdx); err == nil {
			_ = dst.SetString(dstIdx, v)
		}
	case TypeCategory:
		code, err := src.GetCategoryCode(srcIdx)
		if err != nil {
			return
		}
		_ = dst.SetCategoryCode(dstIdx, code)
	case TypeMultiCategory:
		ids, weights := src.MultiCategory().Get(srcIdx)
		_ = dst.MultiCategory().SetEntry(dstIdx, append([]int32(nil), ids...), append([]float64(nil), weights...))
	case TypeOpaqueData, TypeHostShadow:
		// not copied: opaque pointer attributes have no stable serialization (§3 Non-goals).
	default:
		if v, err := src.GetFloat64(srcIdx); err == nil {
			_ = dst.SetFloat64(dstIdx, v)
		}
	}
}
