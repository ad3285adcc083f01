package query

import "github.com/dd0wney/xnetgraph/pkg/graph"

// Selector is the query output: an append-only list of node or edge
// indices (§4.6). On any parse or bind error the selector is left
// empty (§4.6 Errors).
type Selector struct {
	Scope   graph.Scope
	Indices []uint64
}

func (s *Selector) add(i uint64) { s.Indices = append(s.Indices, i) }

// Count reports the number of selected indices.
func (s *Selector) Count() int { return len(s.Indices) }
