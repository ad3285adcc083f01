package bxnet

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"sort"

	"github.com/dd0wney/xnetgraph/pkg/ferrors"
	"github.com/dd0wney/xnetgraph/pkg/graph"
	"github.com/dd0wney/xnetgraph/pkg/pools"
)

func sortedAttrNames(g *graph.Graph, scope graph.Scope) []string {
	names := g.AttributeNames(scope)
	sort.Strings(names)
	return names
}

func floatBitsF32(v float64) uint32 { return math.Float32bits(float32(v)) }
func floatBitsF64(v float64) uint64 { return math.Float64bits(v) }

var wireTypeOf = map[graph.BaseType]uint8{
	graph.TypeString:        0,
	graph.TypeBool:          1,
	graph.TypeF32:           2,
	graph.TypeF64:           3,
	graph.TypeI32:           4,
	graph.TypeU32:           5,
	graph.TypeI64:           6,
	graph.TypeU64:           7,
	graph.TypeCategory:      8,
	graph.TypeMultiCategory: 9,
}

var wireTypeToBase = func() map[uint8]graph.BaseType {
	m := make(map[uint8]graph.BaseType, len(wireTypeOf))
	for k, v := range wireTypeOf {
		m[v] = k
	}
	return m
}()

// Write serializes g as an uncompressed BXNet container to w (§4.7.2).
func Write(w io.Writer, g *graph.Graph) error {
	var body bytes.Buffer

	header := Header{
		VersionMajor: versionMajor,
		VersionMinor: versionMinor,
		VersionPatch: versionPatch,
		Codec:        codecBinary,
		NodeCount:    uint64(g.NodeCount()),
		EdgeCount:    uint64(g.EdgeCount()),
		NodeCapacity: g.NodeCapacity(),
		EdgeCapacity: g.EdgeCapacity(),
	}
	if g.Directed() {
		header.Flags |= flagDirected
	}
	if err := writeHeader(&body, header); err != nil {
		return err
	}

	locators := make([]locator, 0, len(chunkOrder))
	writeAndTrack := func(id ChunkID, framed []byte) {
		locators = append(locators, locator{ChunkID: id, Offset: uint64(body.Len()), Length: uint64(len(framed))})
		body.Write(framed)
		pools.PutBytes(framed)
	}

	writeAndTrack(ChunkMeta, buildMetaChunk(g, header))
	writeAndTrack(ChunkNode, buildNodeChunk(g))
	writeAndTrack(ChunkEdge, buildEdgeChunk(g))

	nodeAttrChunk, err := buildAttrDefChunk(ChunkNodeAttr, sortedAttrNames(g, graph.ScopeNode), g, graph.ScopeNode)
	if err != nil {
		return err
	}
	writeAndTrack(ChunkNodeAttr, nodeAttrChunk)

	edgeAttrChunk, err := buildAttrDefChunk(ChunkEdgeAttr, sortedAttrNames(g, graph.ScopeEdge), g, graph.ScopeEdge)
	if err != nil {
		return err
	}
	writeAndTrack(ChunkEdgeAttr, edgeAttrChunk)

	netAttrChunk, err := buildAttrDefChunk(ChunkNetAttr, sortedAttrNames(g, graph.ScopeGraph), g, graph.ScopeGraph)
	if err != nil {
		return err
	}
	writeAndTrack(ChunkNetAttr, netAttrChunk)

	nodeValChunk, err := buildAttrValueChunk(ChunkNodeValues, sortedAttrNames(g, graph.ScopeNode), g, graph.ScopeNode)
	if err != nil {
		return err
	}
	writeAndTrack(ChunkNodeValues, nodeValChunk)

	edgeValChunk, err := buildAttrValueChunk(ChunkEdgeValues, sortedAttrNames(g, graph.ScopeEdge), g, graph.ScopeEdge)
	if err != nil {
		return err
	}
	writeAndTrack(ChunkEdgeValues, edgeValChunk)

	netValChunk, err := buildAttrValueChunk(ChunkNetValues, sortedAttrNames(g, graph.ScopeGraph), g, graph.ScopeGraph)
	if err != nil {
		return err
	}
	writeAndTrack(ChunkNetValues, netValChunk)

	crc := updateCRC(newCRC(), body.Bytes())
	f := footer{
		locators:      locators,
		nodeCount:     header.NodeCount,
		edgeCount:     header.EdgeCount,
		nodeAttrCount: uint32(len(sortedAttrNames(g, graph.ScopeNode))),
		edgeAttrCount: uint32(len(sortedAttrNames(g, graph.ScopeEdge))),
		netAttrCount:  uint32(len(sortedAttrNames(g, graph.ScopeGraph))),
		crc32:         crc,
	}

	if _, err := w.Write(body.Bytes()); err != nil {
		return ferrors.IOError("Write", err)
	}
	return writeFooter(w, f)
}

func buildMetaChunk(g *graph.Graph, h Header) []byte {
	cw := newChunkWriter(ChunkMeta)
	block := make([]byte, 64)
	if h.Directed() {
		block[0] = 1
	}
	binary.LittleEndian.PutUint64(block[8:16], h.NodeCount)
	binary.LittleEndian.PutUint64(block[16:24], h.EdgeCount)
	binary.LittleEndian.PutUint64(block[24:32], h.NodeCapacity)
	binary.LittleEndian.PutUint64(block[32:40], h.EdgeCapacity)
	binary.LittleEndian.PutUint32(block[40:44], uint32(len(sortedAttrNames(g, graph.ScopeNode))))
	binary.LittleEndian.PutUint32(block[44:48], uint32(len(sortedAttrNames(g, graph.ScopeEdge))))
	binary.LittleEndian.PutUint32(block[48:52], uint32(len(sortedAttrNames(g, graph.ScopeGraph))))
	cw.WriteBlock(block)
	return cw.finish()
}

func buildNodeChunk(g *graph.Graph) []byte {
	cw := newChunkWriter(ChunkNode)
	flags := make([]byte, g.NodeCapacity())
	for i := range flags {
		if g.IsNodeActive(uint64(i)) {
			flags[i] = 1
		}
	}
	cw.WriteBlock(flags)
	return cw.finish()
}

func buildEdgeChunk(g *graph.Graph) []byte {
	cw := newChunkWriter(ChunkEdge)
	flags := make([]byte, g.EdgeCapacity())
	pairs := make([]byte, g.EdgeCapacity()*16)
	for i := uint64(0); i < g.EdgeCapacity(); i++ {
		if !g.IsEdgeActive(i) {
			continue
		}
		flags[i] = 1
		from, to, _ := g.EdgeEndpoints(i)
		binary.LittleEndian.PutUint64(pairs[i*16:i*16+8], from)
		binary.LittleEndian.PutUint64(pairs[i*16+8:i*16+16], to)
	}
	cw.WriteBlock(flags)
	cw.WriteBlock(pairs)
	return cw.finish()
}

func buildAttrDefChunk(id ChunkID, names []string, g *graph.Graph, scope graph.Scope) ([]byte, error) {
	cw := newChunkWriter(id)
	countBlock := make([]byte, 8)
	binary.LittleEndian.PutUint32(countBlock[0:4], uint32(len(names)))
	cw.WriteBlock(countBlock)

	for _, name := range names {
		attr, _ := g.GetAttribute(scope, name)
		if !attr.BaseType().Serializable() {
			return nil, ferrors.NotSupported("Write", "opaque/host-shadow attribute: "+name)
		}
		wireType, ok := wireTypeOf[attr.BaseType()]
		if !ok {
			return nil, ferrors.NotSupported("Write", "unrepresentable attribute type: "+name)
		}
		cw.WriteBlock([]byte(name))

		desc := make([]byte, 24)
		desc[0] = wireType
		binary.LittleEndian.PutUint32(desc[4:8], uint32(attr.Dimension()))
		binary.LittleEndian.PutUint32(desc[8:12], attr.BaseType().ElementSize())
		binary.LittleEndian.PutUint64(desc[16:24], uint64(attr.Capacity()))
		cw.WriteBlock(desc)

		cw.WriteBlock(encodeDictionary(attr))
	}
	return cw.finish(), nil
}

// encodeDictionary serializes a category attribute's label<->id table
// as a count-prefixed sequence of length-prefixed label strings, in
// ascending id order. Non-categorical attributes encode as empty.
func encodeDictionary(attr *graph.Attribute) []byte {
	if attr.BaseType() != graph.TypeCategory {
		return nil
	}
	labels := attr.Dictionary().Labels()
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(len(labels)))
	for _, label := range labels {
		binary.Write(&buf, binary.LittleEndian, uint32(len(label)))
		buf.WriteString(label)
	}
	return buf.Bytes()
}

func buildAttrValueChunk(id ChunkID, names []string, g *graph.Graph, scope graph.Scope) ([]byte, error) {
	cw := newChunkWriter(id)
	countBlock := make([]byte, 8)
	binary.LittleEndian.PutUint32(countBlock[0:4], uint32(len(names)))
	cw.WriteBlock(countBlock)

	for _, name := range names {
		attr, _ := g.GetAttribute(scope, name)
		cw.WriteBlock([]byte(name))
		valBlock, err := encodeAttrValues(attr)
		if err != nil {
			return nil, err
		}
		cw.WriteBlock(valBlock)
	}
	return cw.finish(), nil
}

func encodeAttrValues(attr *graph.Attribute) ([]byte, error) {
	var buf bytes.Buffer
	dim := attr.Dimension()
	switch attr.BaseType() {
	case graph.TypeString:
		for i := 0; i < attr.Capacity(); i++ {
			vals, _ := attr.GetString(i)
			for _, s := range vals {
				if s == nil {
					binary.Write(&buf, binary.LittleEndian, uint32(0xFFFFFFFF))
					continue
				}
				binary.Write(&buf, binary.LittleEndian, uint32(len(*s)))
				buf.WriteString(*s)
			}
		}
	case graph.TypeBool:
		for i := 0; i < attr.Capacity(); i++ {
			vals, _ := attr.GetBool(i)
			for _, v := range vals {
				if v {
					buf.WriteByte(1)
				} else {
					buf.WriteByte(0)
				}
			}
		}
	case graph.TypeCategory:
		for i := 0; i < attr.Capacity(); i++ {
			code, _ := attr.GetCategoryCode(i)
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], uint32(code))
			buf.Write(b[:])
		}
	case graph.TypeMultiCategory:
		return nil, ferrors.NotSupported("Write", "multi_category values are not serializable")
	default:
		width := int(attr.BaseType().ElementSize())
		row := make([]byte, dim*width)
		for i := 0; i < attr.Capacity(); i++ {
			vals, err := attr.GetFloat64(i)
			if err != nil {
				return nil, err
			}
			for d, v := range vals {
				switch attr.BaseType() {
				case graph.TypeF32:
					binary.LittleEndian.PutUint32(row[d*4:], floatBitsF32(v))
				case graph.TypeF64:
					binary.LittleEndian.PutUint64(row[d*8:], floatBitsF64(v))
				case graph.TypeI32, graph.TypeU32:
					binary.LittleEndian.PutUint32(row[d*4:], uint32(int64(v)))
				case graph.TypeI64, graph.TypeU64:
					binary.LittleEndian.PutUint64(row[d*8:], uint64(int64(v)))
				}
			}
			buf.Write(row)
		}
	}
	return buf.Bytes(), nil
}
