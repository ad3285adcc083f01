package graph

func (g *Graph) scopeAttrs(scope Scope) map[string]*Attribute {
	switch scope {
	case ScopeNode:
		return g.nodeAttrs
	case ScopeEdge:
		return g.edgeAttrs
	default:
		return g.graphAttrs
	}
}

func (g *Graph) scopeCapacity(scope Scope) int {
	switch scope {
	case ScopeNode:
		return int(g.nodeIdx.Capacity())
	case ScopeEdge:
		return int(g.edgeIdx.Capacity())
	default:
		return 1
	}
}

func (g *Graph) scopeDerived(scope Scope) map[string][]*DerivedBuffer {
	switch scope {
	case ScopeNode:
		return g.nodeDerived
	case ScopeEdge:
		return g.edgeDerived
	default:
		return nil
	}
}

// DefineAttribute defines a new attribute in the given scope, sized to
// the scope's current capacity (§4.5 Attribute CRUD).
func (g *Graph) DefineAttribute(scope Scope, name string, baseType BaseType, dimension int) (*Attribute, error) {
	attrs := g.scopeAttrs(scope)
	if _, exists := attrs[name]; exists {
		return nil, InvalidArgumentError("DefineAttribute", "attribute already defined: "+name)
	}
	attr, err := NewAttribute(name, scope, baseType, dimension, g.scopeCapacity(scope))
	if err != nil {
		return nil, err
	}
	attrs[name] = attr
	return attr, nil
}

// RemoveAttribute removes an attribute and its paired derived-cache
// entries atomically (§3 Lifecycles).
func (g *Graph) RemoveAttribute(scope Scope, name string) error {
	attrs := g.scopeAttrs(scope)
	if _, ok := attrs[name]; !ok {
		return NotFoundError("RemoveAttribute", "attribute", 0)
	}
	delete(attrs, name)
	if derived := g.scopeDerived(scope); derived != nil {
		delete(derived, name)
	}
	return nil
}

// GetAttribute looks up an attribute by scope and name.
func (g *Graph) GetAttribute(scope Scope, name string) (*Attribute, bool) {
	attr, ok := g.scopeAttrs(scope)[name]
	return attr, ok
}

// AttributeNames lists every attribute name defined in scope.
func (g *Graph) AttributeNames(scope Scope) []string {
	attrs := g.scopeAttrs(scope)
	out := make([]string, 0, len(attrs))
	for name := range attrs {
		out = append(out, name)
	}
	return out
}

// GetBuffer returns the raw attribute for interop (§6): the caller must
// invoke BumpVersion after mutating through it.
func (g *Graph) GetBuffer(scope Scope, name string) (*Attribute, error) {
	attr, ok := g.GetAttribute(scope, name)
	if !ok {
		return nil, NotFoundError("GetBuffer", "attribute", 0)
	}
	return attr, nil
}

// derivedBuffersFor returns (creating if absent) the derived-buffer
// slot list for the named attribute in scope.
func (g *Graph) derivedBuffersFor(scope Scope, name string) []*DerivedBuffer {
	derived := g.scopeDerived(scope)
	if derived == nil {
		return nil
	}
	return derived[name]
}

// RegisterDerived attaches a derived buffer to be kept in sync with the
// named attribute's activation/value changes.
func (g *Graph) RegisterDerived(scope Scope, name string, buf *DerivedBuffer) {
	derived := g.scopeDerived(scope)
	if derived == nil {
		return
	}
	derived[name] = append(derived[name], buf)
}

// RepackNodePacked lazily repacks (if dirty or stale) and returns the
// node-scope packed derived buffer for attribute name.
func (g *Graph) RepackNodePacked(name string, buf *DerivedBuffer) error {
	attr, ok := g.GetAttribute(ScopeNode, name)
	if !ok {
		return NotFoundError("RepackNodePacked", "attribute", 0)
	}
	if !buf.NeedsRepack(attr.Version()) {
		return nil
	}
	return buf.RepackPacked(attr, g.nodeActive)
}

// RepackEdgePacked is the edge-scope analogue of RepackNodePacked.
func (g *Graph) RepackEdgePacked(name string, buf *DerivedBuffer) error {
	attr, ok := g.GetAttribute(ScopeEdge, name)
	if !ok {
		return NotFoundError("RepackEdgePacked", "attribute", 0)
	}
	if !buf.NeedsRepack(attr.Version()) {
		return nil
	}
	return buf.RepackPacked(attr, g.edgeActive)
}

// RepackNodeColorEncoded repacks a node-scope color-encoded buffer from
// source, or from the slot index when source == IndexSourceToken.
func (g *Graph) RepackNodeColorEncoded(source string, buf *DerivedBuffer) error {
	if source == IndexSourceToken {
		if !buf.dirty {
			return nil
		}
		return buf.RepackColorEncoded(nil, g.nodeActive, true)
	}
	attr, ok := g.GetAttribute(ScopeNode, source)
	if !ok {
		return NotFoundError("RepackNodeColorEncoded", "attribute", 0)
	}
	if attr.BaseType() != TypeI32 && attr.BaseType() != TypeU32 {
		return WrongTypeError("RepackNodeColorEncoded", source)
	}
	if !buf.NeedsRepack(attr.Version()) {
		return nil
	}
	return buf.RepackColorEncoded(attr, g.nodeActive, false)
}
