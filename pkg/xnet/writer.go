package xnet

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/dd0wney/xnetgraph/pkg/graph"
	"github.com/dd0wney/xnetgraph/pkg/metrics"
	"github.com/dd0wney/xnetgraph/pkg/pools"
)

// FilterList narrows (Allow) or excludes (Ignore) attribute names for
// one scope of a Write call (§4.7.1 writer guarantees). A nil or empty
// Allow means "no narrowing"; Ignore always applies.
type FilterList struct {
	Allow  map[string]bool
	Ignore map[string]bool
}

func (f FilterList) permits(name string) bool {
	if len(f.Allow) > 0 && !f.Allow[name] {
		return false
	}
	if f.Ignore[name] {
		return false
	}
	return true
}

// WriteOptions configures an XNET Write call.
type WriteOptions struct {
	Node  FilterList
	Edge  FilterList
	Graph FilterList
}

// Write serializes g as an XNET text container to w, per the writer
// guarantees of §4.7.1: header, #vertices, graph attributes, #edges,
// compacted edge list, vertex attribute blocks (including a synthesised
// _original_ids_ string attribute), then edge attribute blocks.
// Opaque, host-shadow, and multi-category attributes are skipped, as are
// attributes with no XNET type code (bool, f64, and vector strings).
func Write(w io.Writer, g *graph.Graph, opts WriteOptions) error {
	start := time.Now()
	reg := metrics.DefaultRegistry()
	var cw countingWriter
	mw := io.MultiWriter(w, &cw)
	err := writeTo(mw, g, opts)
	status := "ok"
	if err != nil {
		status = "error"
	}
	reg.FileWritesTotal.WithLabelValues("xnet", status).Inc()
	reg.FileBytesTotal.WithLabelValues("xnet", "write").Add(float64(cw.n))
	reg.FileOpDuration.WithLabelValues("xnet", "write").Observe(time.Since(start).Seconds())
	return err
}

type countingWriter struct{ n int64 }

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}

func writeTo(w io.Writer, g *graph.Graph, opts WriteOptions) error {
	bw := bufio.NewWriter(w)

	nodeOrder := activeIndices(g.NodeCapacity(), g.IsNodeActive)
	defer pools.PutUint64s(nodeOrder)
	nodeRemap := make(map[uint64]uint64, len(nodeOrder))
	for newIdx, oldIdx := range nodeOrder {
		nodeRemap[oldIdx] = uint64(newIdx)
	}

	edgeOrder := activeIndices(g.EdgeCapacity(), g.IsEdgeActive)
	defer pools.PutUint64s(edgeOrder)
	type compactEdge struct{ from, to uint64 }
	compactEdges := make([]compactEdge, 0, len(edgeOrder))
	for _, e := range edgeOrder {
		from, to, _ := g.EdgeEndpoints(e)
		compactEdges = append(compactEdges, compactEdge{nodeRemap[from], nodeRemap[to]})
	}

	fmt.Fprintln(bw, headerLine)
	fmt.Fprintf(bw, "#vertices %d\n", len(nodeOrder))

	if err := writeAttrBlocks(bw, g, graph.ScopeGraph, opts.Graph, []uint64{0}, "#g"); err != nil {
		return err
	}

	direction := "undirected"
	if g.Directed() {
		direction = "directed"
	}
	fmt.Fprintf(bw, "#edges %s\n", direction)
	for _, e := range compactEdges {
		fmt.Fprintf(bw, "%d %d\n", e.from, e.to)
	}

	if err := writeAttrBlocks(bw, g, graph.ScopeNode, opts.Node, nodeOrder, "#v"); err != nil {
		return err
	}

	if len(nodeOrder) > 0 {
		fmt.Fprintf(bw, "#v \"%s\" s\n", originalIDsAttr)
		for _, oldIdx := range nodeOrder {
			fmt.Fprintln(bw, writeToken(fmt.Sprintf("%d", oldIdx)))
		}
	}

	if err := writeAttrBlocks(bw, g, graph.ScopeEdge, opts.Edge, edgeOrder, "#e"); err != nil {
		return err
	}

	return bw.Flush()
}

// activeIndices collects every active index below capacity, drawing its
// backing array from the shared uint64 pool (pkg/pools) since this scratch
// list lives only for the duration of one Write call.
func activeIndices(capacity uint64, isActive func(uint64) bool) []uint64 {
	out := pools.GetUint64s(int(capacity))
	for i := uint64(0); i < capacity; i++ {
		if isActive(i) {
			out = append(out, i)
		}
	}
	return out
}

func writeAttrBlocks(w *bufio.Writer, g *graph.Graph, scope graph.Scope, filter FilterList, rows []uint64, directive string) error {
	names := g.AttributeNames(scope)
	sort.Strings(names)
	for _, name := range names {
		if !filter.permits(name) {
			continue
		}
		attr, _ := g.GetAttribute(scope, name)
		if !attr.BaseType().Serializable() || attr.BaseType() == graph.TypeMultiCategory {
			continue
		}
		code, ok := typeCode(attr.BaseType(), attr.Dimension())
		if !ok {
			continue
		}
		if attr.BaseType() == graph.TypeCategory {
			writeDictBlock(w, dictDirective(directive), name, attr.Dictionary())
		}
		fmt.Fprintf(w, "%s %s %s\n", directive, writeToken(name), code)
		for _, row := range rows {
			if err := writeAttrValue(w, attr, int(row)); err != nil {
				return err
			}
		}
	}
	return nil
}

func dictDirective(directive string) string {
	switch directive {
	case "#v":
		return "#vdict"
	case "#e":
		return "#edict"
	default:
		return "#gdict"
	}
}

func writeDictBlock(w *bufio.Writer, directive, name string, dict *graph.Dictionary) {
	labels := dict.Labels()
	fmt.Fprintf(w, "%s %s %d\n", directive, writeToken(name), len(labels))
	for id, label := range labels {
		fmt.Fprintf(w, "%d %s\n", id, writeToken(label))
	}
}

func writeAttrValue(w *bufio.Writer, attr *graph.Attribute, row int) error {
	switch attr.BaseType() {
	case graph.TypeString:
		vals, err := attr.GetString(row)
		if err != nil {
			return err
		}
		if vals[0] == nil {
			fmt.Fprintln(w, `""`)
		} else {
			fmt.Fprintln(w, writeToken(*vals[0]))
		}
	case graph.TypeCategory:
		label, _, err := attr.GetCategoryLabel(row)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, writeToken(label))
	case graph.TypeBool:
		vals, err := attr.GetBool(row)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, boolRowString(vals))
	default:
		vals, err := attr.GetFloat64(row)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, numericRowString(attr.BaseType(), vals))
	}
	return nil
}

func boolRowString(vals []bool) string {
	s := ""
	for i, v := range vals {
		if i > 0 {
			s += " "
		}
		if v {
			s += "1"
		} else {
			s += "0"
		}
	}
	return s
}

func numericRowString(bt graph.BaseType, vals []float64) string {
	s := ""
	for i, v := range vals {
		if i > 0 {
			s += " "
		}
		switch bt {
		case graph.TypeF32, graph.TypeF64:
			s += fmt.Sprintf("%g", v)
		default:
			s += fmt.Sprintf("%d", int64(v))
		}
	}
	return s
}
