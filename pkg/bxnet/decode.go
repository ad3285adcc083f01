package bxnet

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/dd0wney/xnetgraph/pkg/ferrors"
	"github.com/dd0wney/xnetgraph/pkg/graph"
)

// Read deserializes an uncompressed BXNet container from r (§4.7.2
// Read validation). On any structural mismatch the partial graph is
// discarded and an error returned.
func Read(r io.Reader) (*graph.Graph, error) {
	all, err := io.ReadAll(r)
	if err != nil {
		return nil, ferrors.IOError("Read", err)
	}
	if len(all) < footerSize {
		return nil, ferrors.CorruptFormat("Read", "file too small for footer")
	}
	body := all[:len(all)-footerSize]
	footerBytes := all[len(all)-footerSize:]

	f, err := readFooter(bytes.NewReader(footerBytes))
	if err != nil {
		return nil, err
	}
	if updateCRC(newCRC(), body) != f.crc32 {
		return nil, ferrors.CorruptFormat("Read", "CRC32 mismatch")
	}

	br := bytes.NewReader(body)
	header, err := readHeader(br)
	if err != nil {
		return nil, err
	}

	g := graph.NewGraph(header.Directed(), header.NodeCapacity, header.EdgeCapacity)

	var nodeActive, edgeActive []bool
	var edgeFrom, edgeTo []uint64

	for _, id := range chunkOrder {
		ck, err := readChunk(br)
		if err != nil {
			return nil, err
		}
		if ck.id != id {
			return nil, ferrors.CorruptFormat("Read", "chunk out of order")
		}
		switch id {
		case ChunkMeta:
			if _, err := ck.ReadBlock(); err != nil {
				return nil, err
			}
		case ChunkNode:
			block, err := ck.ReadBlock()
			if err != nil {
				return nil, err
			}
			nodeActive = make([]bool, len(block))
			for i, b := range block {
				nodeActive[i] = b != 0
			}
		case ChunkEdge:
			flags, err := ck.ReadBlock()
			if err != nil {
				return nil, err
			}
			pairs, err := ck.ReadBlock()
			if err != nil {
				return nil, err
			}
			if len(pairs) != len(flags)*16 {
				return nil, ferrors.CorruptFormat("Read", "edge pair block size mismatch")
			}
			edgeActive = make([]bool, len(flags))
			edgeFrom = make([]uint64, len(flags))
			edgeTo = make([]uint64, len(flags))
			for i := range flags {
				edgeActive[i] = flags[i] != 0
				edgeFrom[i] = binary.LittleEndian.Uint64(pairs[i*16 : i*16+8])
				edgeTo[i] = binary.LittleEndian.Uint64(pairs[i*16+8 : i*16+16])
			}
		case ChunkNodeAttr:
			if err := readAttrDefChunk(ck, g, graph.ScopeNode); err != nil {
				return nil, err
			}
		case ChunkEdgeAttr:
			if err := readAttrDefChunk(ck, g, graph.ScopeEdge); err != nil {
				return nil, err
			}
		case ChunkNetAttr:
			if err := readAttrDefChunk(ck, g, graph.ScopeGraph); err != nil {
				return nil, err
			}
		case ChunkNodeValues:
			if err := readAttrValueChunk(ck, g, graph.ScopeNode); err != nil {
				return nil, err
			}
		case ChunkEdgeValues:
			if err := readAttrValueChunk(ck, g, graph.ScopeEdge); err != nil {
				return nil, err
			}
		case ChunkNetValues:
			if err := readAttrValueChunk(ck, g, graph.ScopeGraph); err != nil {
				return nil, err
			}
		}
	}

	if err := g.RestoreTopology(nodeActive, edgeActive, edgeFrom, edgeTo); err != nil {
		return nil, err
	}
	return g, nil
}

func readAttrDefChunk(ck *chunkReader, g *graph.Graph, scope graph.Scope) error {
	countBlock, err := ck.ReadBlock()
	if err != nil {
		return err
	}
	count := binary.LittleEndian.Uint32(countBlock[0:4])

	for i := uint32(0); i < count; i++ {
		nameBlock, err := ck.ReadBlock()
		if err != nil {
			return err
		}
		descBlock, err := ck.ReadBlock()
		if err != nil {
			return err
		}
		if len(descBlock) != 24 {
			return ferrors.CorruptFormat("Read", "malformed attribute descriptor")
		}
		dictBlock, err := ck.ReadBlock()
		if err != nil {
			return err
		}

		wireType := descBlock[0]
		flags := binary.LittleEndian.Uint16(descBlock[2:4])
		if flags != 0 {
			return ferrors.NotSupported("Read", "non-zero v1 attribute flags")
		}
		dimension := int(binary.LittleEndian.Uint32(descBlock[4:8]))
		baseType, ok := wireTypeToBase[wireType]
		if !ok {
			return ferrors.CorruptFormat("Read", "unknown attribute wire type")
		}

		attr, err := g.DefineAttribute(scope, string(nameBlock), baseType, dimension)
		if err != nil {
			return err
		}
		if baseType == graph.TypeCategory {
			dict, err := decodeDictionary(dictBlock)
			if err != nil {
				return err
			}
			if err := attr.SetDictionary(dict, false); err != nil {
				return err
			}
		}
	}
	return nil
}

func decodeDictionary(data []byte) (*graph.Dictionary, error) {
	dict := graph.NewDictionary()
	if len(data) == 0 {
		return dict, nil
	}
	if len(data) < 4 {
		return nil, ferrors.CorruptFormat("Read", "truncated dictionary block")
	}
	count := binary.LittleEndian.Uint32(data[0:4])
	pos := 4
	for i := uint32(0); i < count; i++ {
		if pos+4 > len(data) {
			return nil, ferrors.CorruptFormat("Read", "truncated dictionary label length")
		}
		n := binary.LittleEndian.Uint32(data[pos : pos+4])
		pos += 4
		if pos+int(n) > len(data) {
			return nil, ferrors.CorruptFormat("Read", "truncated dictionary label")
		}
		dict.Intern(string(data[pos : pos+int(n)]))
		pos += int(n)
	}
	return dict, nil
}

func readAttrValueChunk(ck *chunkReader, g *graph.Graph, scope graph.Scope) error {
	countBlock, err := ck.ReadBlock()
	if err != nil {
		return err
	}
	count := binary.LittleEndian.Uint32(countBlock[0:4])

	for i := uint32(0); i < count; i++ {
		nameBlock, err := ck.ReadBlock()
		if err != nil {
			return err
		}
		valBlock, err := ck.ReadBlock()
		if err != nil {
			return err
		}
		attr, ok := g.GetAttribute(scope, string(nameBlock))
		if !ok {
			return ferrors.CorruptFormat("Read", "value block for undefined attribute: "+string(nameBlock))
		}
		if err := decodeAttrValues(attr, valBlock); err != nil {
			return err
		}
	}
	return nil
}

func decodeAttrValues(attr *graph.Attribute, data []byte) error {
	dim := attr.Dimension()
	switch attr.BaseType() {
	case graph.TypeString:
		pos := 0
		for i := 0; i < attr.Capacity(); i++ {
			vals := make([]*string, dim)
			for d := 0; d < dim; d++ {
				if pos+4 > len(data) {
					return ferrors.CorruptFormat("Read", "truncated string value block")
				}
				n := binary.LittleEndian.Uint32(data[pos : pos+4])
				pos += 4
				if n == 0xFFFFFFFF {
					continue
				}
				if pos+int(n) > len(data) {
					return ferrors.CorruptFormat("Read", "truncated string payload")
				}
				s := string(data[pos : pos+int(n)])
				vals[d] = &s
				pos += int(n)
			}
			if err := attr.SetString(i, vals); err != nil {
				return err
			}
		}
	case graph.TypeBool:
		for i := 0; i < attr.Capacity(); i++ {
			vals := make([]bool, dim)
			for d := 0; d < dim; d++ {
				idx := i*dim + d
				if idx >= len(data) {
					return ferrors.CorruptFormat("Read", "truncated bool value block")
				}
				vals[d] = data[idx] != 0
			}
			if err := attr.SetBool(i, vals); err != nil {
				return err
			}
		}
	case graph.TypeCategory:
		for i := 0; i < attr.Capacity(); i++ {
			off := i * 4
			if off+4 > len(data) {
				return ferrors.CorruptFormat("Read", "truncated category value block")
			}
			code := int32(binary.LittleEndian.Uint32(data[off : off+4]))
			if err := attr.SetCategoryCode(i, code); err != nil {
				return err
			}
		}
	case graph.TypeMultiCategory:
		return nil // not serialized (Write rejects multi_category attributes)
	default:
		width := int(attr.BaseType().ElementSize())
		row := dim * width
		for i := 0; i < attr.Capacity(); i++ {
			off := i * row
			if off+row > len(data) {
				return ferrors.CorruptFormat("Read", "truncated numeric value block")
			}
			vals := make([]float64, dim)
			for d := 0; d < dim; d++ {
				elem := data[off+d*width : off+(d+1)*width]
				switch attr.BaseType() {
				case graph.TypeF32:
					vals[d] = float64(bitsToFloat32(binary.LittleEndian.Uint32(elem)))
				case graph.TypeF64:
					vals[d] = bitsToFloat64(binary.LittleEndian.Uint64(elem))
				case graph.TypeI32:
					vals[d] = float64(int32(binary.LittleEndian.Uint32(elem)))
				case graph.TypeU32:
					vals[d] = float64(binary.LittleEndian.Uint32(elem))
				case graph.TypeI64:
					vals[d] = float64(int64(binary.LittleEndian.Uint64(elem)))
				case graph.TypeU64:
					vals[d] = float64(binary.LittleEndian.Uint64(elem))
				}
			}
			if err := attr.SetFloat64(i, vals); err != nil {
				return err
			}
		}
	}
	return nil
}

func bitsToFloat32(b uint32) float32 { return math.Float32frombits(b) }
func bitsToFloat64(b uint64) float64 { return math.Float64frombits(b) }
