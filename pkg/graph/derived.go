package graph

import (
	"encoding/binary"
	"math"
)

// DerivedKind distinguishes the two derived-buffer flavours of §4.4.
type DerivedKind uint8

const (
	DerivedPacked DerivedKind = iota
	DerivedColorEncoded
)

// ColorEncoding selects the color-encoded buffer's element width (§4.4).
type ColorEncoding uint8

const (
	ColorU8x4 ColorEncoding = iota
	ColorU32x4
)

// IndexSourceToken is the reserved source name meaning "encode the slot
// index itself" for color-encoded buffers (§6 reserved names).
const IndexSourceToken = "$index"

// DerivedBuffer is a cached projection of a primary attribute: either a
// packed dense copy of active slots, or a color-encoded byte buffer
// (§4.4). Grounded on the teacher's versioned read-cache pattern in
// pkg/storage/cache.go (version/source_version/dirty triple gating a
// lazy rebuild), generalized here to two buffer flavours.
type DerivedBuffer struct {
	kind     DerivedKind
	encoding ColorEncoding

	data       []byte
	count      int
	stride     int
	validStart int
	validEnd   int

	version       uint64
	sourceVersion uint64
	dirty         bool

	denseOrder []int // optional caller-supplied permutation
}

// NewPackedBuffer returns an empty, dirty packed-value derived buffer.
func NewPackedBuffer() *DerivedBuffer {
	return &DerivedBuffer{kind: DerivedPacked, dirty: true}
}

// NewColorEncodedBuffer returns an empty, dirty color-encoded derived
// buffer using the given element width.
func NewColorEncodedBuffer(encoding ColorEncoding) *DerivedBuffer {
	return &DerivedBuffer{kind: DerivedColorEncoded, encoding: encoding, dirty: true}
}

// MarkDirty forces the next access to repack, regardless of source
// version (§4.4: activation change, value change, dense-order
// replacement, or an explicit mark-dirty call all trigger this).
func (d *DerivedBuffer) MarkDirty() { d.dirty = true }

// SetDenseOrder installs a caller-supplied permutation used when
// repacking; inactive indices are filtered out at repack time. Installing
// a new order marks the buffer dirty.
func (d *DerivedBuffer) SetDenseOrder(order []int) {
	d.denseOrder = order
	d.dirty = true
}

func (d *DerivedBuffer) NeedsRepack(currentSourceVersion uint64) bool {
	return d.dirty || d.sourceVersion != currentSourceVersion
}

func (d *DerivedBuffer) Data() []byte  { return d.data }
func (d *DerivedBuffer) Count() int    { return d.count }
func (d *DerivedBuffer) Stride() int   { return d.stride }
func (d *DerivedBuffer) Version() uint64 { return d.version }
func (d *DerivedBuffer) ValidRange() (int, int) { return d.validStart, d.validEnd }

// RepackPacked rebuilds a packed-value buffer as a contiguous copy of
// attr's active rows, in natural order unless a dense order is
// installed. Idempotent: repacking twice without an intervening change
// produces byte-identical output (§4.4).
func (d *DerivedBuffer) RepackPacked(attr *Attribute, active []bool) error {
	if attr.Dimension() < 1 {
		return InvalidArgumentError("RepackPacked", "attribute has no dimension")
	}
	elemSize := int(attr.BaseType().ElementSize())
	if elemSize == 0 {
		return NotSupportedError("RepackPacked", "attribute type has no fixed-width packed representation")
	}
	stride := elemSize * attr.Dimension()
	order := d.order(attr.Capacity(), active)

	buf := make([]byte, 0, len(order)*stride)
	validStart, validEnd := -1, -1
	for pos, idx := range order {
		if validStart == -1 {
			validStart = pos
		}
		validEnd = pos + 1
		row := packRow(attr, idx)
		buf = append(buf, row...)
	}

	d.data = buf
	d.count = len(order)
	d.stride = stride
	if validStart == -1 {
		validStart, validEnd = 0, 0
	}
	d.validStart, d.validEnd = validStart, validEnd
	d.sourceVersion = attr.Version()
	d.dirty = false
	d.version++
	return nil
}

// order returns the index sequence to visit: the installed dense order
// (filtered to active indices) or natural ascending order over active
// indices.
func (d *DerivedBuffer) order(capacity int, active []bool) []int {
	if d.denseOrder != nil {
		out := make([]int, 0, len(d.denseOrder))
		for _, idx := range d.denseOrder {
			if idx >= 0 && idx < len(active) && active[idx] {
				out = append(out, idx)
			}
		}
		return out
	}
	out := make([]int, 0, capacity)
	for i := 0; i < capacity && i < len(active); i++ {
		if active[i] {
			out = append(out, i)
		}
	}
	return out
}

func packRow(attr *Attribute, idx int) []byte {
	dim := attr.Dimension()
	switch attr.BaseType() {
	case TypeBool:
		v, _ := attr.GetBool(idx)
		out := make([]byte, dim)
		for d, b := range v {
			if b {
				out[d] = 1
			}
		}
		return out
	case TypeF32:
		v, _ := attr.GetFloat64(idx)
		out := make([]byte, dim*4)
		for d, f := range v {
			binary.LittleEndian.PutUint32(out[d*4:], float32bits(float32(f)))
		}
		return out
	case TypeF64:
		v, _ := attr.GetFloat64(idx)
		out := make([]byte, dim*8)
		for d, f := range v {
			binary.LittleEndian.PutUint64(out[d*8:], float64bits(f))
		}
		return out
	case TypeCategory:
		code, _ := attr.GetCategoryCode(idx)
		out := make([]byte, 4)
		binary.LittleEndian.PutUint32(out, uint32(code))
		return out
	case TypeI32, TypeU32:
		v, _ := attr.GetFloat64(idx)
		out := make([]byte, dim*4)
		for d, f := range v {
			binary.LittleEndian.PutUint32(out[d*4:], uint32(int64(f)))
		}
		return out
	case TypeI64, TypeU64:
		v, _ := attr.GetFloat64(idx)
		out := make([]byte, dim*8)
		for d, f := range v {
			binary.LittleEndian.PutUint64(out[d*8:], uint64(int64(f)))
		}
		return out
	default:
		return nil
	}
}

// RepackColorEncoded rebuilds a color-encoded buffer from an i32/u32
// scalar attribute, or from the slot index itself when source is
// IndexSourceToken (§4.4, §6).
func (d *DerivedBuffer) RepackColorEncoded(attr *Attribute, active []bool, useIndex bool) error {
	elemWidth := 4
	if d.encoding == ColorU32x4 {
		elemWidth = 16
	}

	order := d.order(len(active), active)
	buf := make([]byte, 0, len(order)*elemWidth)
	validStart, validEnd := -1, -1
	var sourceVersion uint64
	for pos, idx := range order {
		if validStart == -1 {
			validStart = pos
		}
		validEnd = pos + 1
		var v uint32
		if useIndex {
			v = uint32(idx)
		} else {
			f, err := attr.GetFloat64(idx)
			if err != nil {
				return err
			}
			v = uint32(int64(f[0]))
		}
		buf = append(buf, encodeColor(v, d.encoding)...)
	}
	if !useIndex && attr != nil {
		sourceVersion = attr.Version()
	}

	d.data = buf
	d.count = len(order)
	d.stride = elemWidth
	if validStart == -1 {
		validStart, validEnd = 0, 0
	}
	d.validStart, d.validEnd = validStart, validEnd
	d.sourceVersion = sourceVersion
	d.dirty = false
	d.version++
	return nil
}

func encodeColor(v uint32, enc ColorEncoding) []byte {
	if enc == ColorU8x4 {
		return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
	}
	out := make([]byte, 16)
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}

func float32bits(f float32) uint32 { return math.Float32bits(f) }

func float64bits(f float64) uint64 { return math.Float64bits(f) }
