package graph

import (
	"sort"
	"strconv"
	"strings"
)

// Scope identifies which backing array an attribute is sized against.
type Scope uint8

const (
	ScopeNode Scope = iota
	ScopeEdge
	ScopeGraph
)

func (s Scope) String() string {
	switch s {
	case ScopeNode:
		return "node"
	case ScopeEdge:
		return "edge"
	case ScopeGraph:
		return "graph"
	default:
		return "unknown"
	}
}

// BaseType enumerates the attribute value kinds of §3.
type BaseType uint8

const (
	TypeString BaseType = iota
	TypeBool
	TypeF32
	TypeF64
	TypeI32
	TypeU32
	TypeI64
	TypeU64
	TypeCategory
	TypeMultiCategory
	TypeOpaqueData
	TypeHostShadow
)

// Serializable reports whether values of this type are written to disk;
// opaque_data and host_shadow never are (§3).
func (t BaseType) Serializable() bool {
	return t != TypeOpaqueData && t != TypeHostShadow
}

// ElementSize returns the on-disk storage_width in bytes for fixed-width
// numeric types, or 0 for types with variable-length encoding (§4.7.2).
func (t BaseType) ElementSize() uint32 {
	switch t {
	case TypeBool:
		return 1
	case TypeF32, TypeI32, TypeU32:
		return 4
	case TypeF64, TypeI64, TypeU64:
		return 8
	case TypeCategory:
		return 4
	default:
		return 0
	}
}

// maxVersion is the wrap point for attribute version counters (§3):
// saturates at 2^53-1 and wraps back to 1.
const maxVersion uint64 = (1 << 53) - 1

// Attribute is a named, scope-tagged, typed, dimensioned value buffer
// (§3, §4.3). Storage is a tagged sum: exactly one of the typed slices
// below is populated, selected by baseType.
//
// Grounded on the teacher's storage.Value{Type, Data} tagged-byte
// representation (pkg/storage/value.go), generalized from a single
// scalar value into a columnar buffer of capacity*dimension elements,
// per the design note in §9 ("tagged sum ... expose a byte view for
// interop by downcasting per variant").
type Attribute struct {
	name      string
	scope     Scope
	baseType  BaseType
	dimension int
	capacity  int
	version   uint64

	bools []uint8
	f32s  []float32
	f64s  []float64
	i32s  []int32
	u32s  []uint32
	i64s  []int64
	u64s  []uint64
	strs  []*string // capacity*dimension; nil entry = missing

	codes []int32     // category: capacity entries, dimension forced to 1
	dict  *Dictionary // category only

	mc *MultiCategoryColumn // multi_category only

	opaques []any // opaque_data / host_shadow: capacity entries, never serialized
}

// NewAttribute allocates a zero-valued attribute of the given shape.
func NewAttribute(name string, scope Scope, baseType BaseType, dimension, capacity int) (*Attribute, error) {
	if name == "" {
		return nil, InvalidArgumentError("DefineAttribute", "name cannot be empty")
	}
	if dimension < 1 {
		return nil, InvalidArgumentError("DefineAttribute", "dimension must be >= 1")
	}
	if baseType == TypeCategory && dimension != 1 {
		return nil, InvalidArgumentError("DefineAttribute", "category attributes must be scalar")
	}
	a := &Attribute{name: name, scope: scope, baseType: baseType, dimension: dimension}
	switch baseType {
	case TypeCategory:
		a.dict = NewDictionary()
	case TypeMultiCategory:
		a.mc = NewMultiCategoryColumn(0)
	}
	a.EnsureCapacity(capacity)
	return a, nil
}

func (a *Attribute) Name() string       { return a.name }
func (a *Attribute) Scope() Scope       { return a.scope }
func (a *Attribute) BaseType() BaseType { return a.baseType }
func (a *Attribute) Dimension() int     { return a.dimension }
func (a *Attribute) Capacity() int      { return a.capacity }
func (a *Attribute) Version() uint64    { return a.version }

// BumpVersion increments the version counter with the §3 wrap rule.
func (a *Attribute) BumpVersion() {
	if a.version >= maxVersion {
		a.version = 1
		return
	}
	a.version++
}

// EnsureCapacity grows the backing storage to at least n rows; never
// shrinks. New regions are zero-initialised (§4.3).
func (a *Attribute) EnsureCapacity(n int) {
	if n <= a.capacity {
		return
	}
	width := n * a.dimension
	switch a.baseType {
	case TypeBool:
		a.bools = growBytes(a.bools, width)
	case TypeF32:
		a.f32s = growF32(a.f32s, width)
	case TypeF64:
		a.f64s = growF64(a.f64s, width)
	case TypeI32:
		a.i32s = growI32(a.i32s, width)
	case TypeU32:
		a.u32s = growU32(a.u32s, width)
	case TypeI64:
		a.i64s = growI64(a.i64s, width)
	case TypeU64:
		a.u64s = growU64(a.u64s, width)
	case TypeString:
		a.strs = growStrs(a.strs, width)
	case TypeCategory:
		codes := make([]int32, n)
		copy(codes, a.codes)
		for i := a.capacity; i < n; i++ {
			codes[i] = MissingCategoryID
		}
		a.codes = codes
	case TypeMultiCategory:
		a.mc.EnsureCapacity(n)
	case TypeOpaqueData, TypeHostShadow:
		opq := make([]any, n)
		copy(opq, a.opaques)
		a.opaques = opq
	}
	a.capacity = n
}

func growBytes(s []uint8, n int) []uint8 {
	g := make([]uint8, n)
	copy(g, s)
	return g
}
func growF32(s []float32, n int) []float32 {
	g := make([]float32, n)
	copy(g, s)
	return g
}
func growF64(s []float64, n int) []float64 {
	g := make([]float64, n)
	copy(g, s)
	return g
}
func growI32(s []int32, n int) []int32 {
	g := make([]int32, n)
	copy(g, s)
	return g
}
func growU32(s []uint32, n int) []uint32 {
	g := make([]uint32, n)
	copy(g, s)
	return g
}
func growI64(s []int64, n int) []int64 {
	g := make([]int64, n)
	copy(g, s)
	return g
}
func growU64(s []uint64, n int) []uint64 {
	g := make([]uint64, n)
	copy(g, s)
	return g
}
func growStrs(s []*string, n int) []*string {
	g := make([]*string, n)
	copy(g, s)
	return g
}

// ClearSlot frees owned strings, zeroes numeric bytes, and empties the
// CSR entry for multi-category at row i (§4.3).
func (a *Attribute) ClearSlot(i int) {
	if i < 0 || i >= a.capacity {
		return
	}
	switch a.baseType {
	case TypeBool:
		clearRange(a.bools, i*a.dimension, a.dimension)
	case TypeF32:
		for d := 0; d < a.dimension; d++ {
			a.f32s[i*a.dimension+d] = 0
		}
	case TypeF64:
		for d := 0; d < a.dimension; d++ {
			a.f64s[i*a.dimension+d] = 0
		}
	case TypeI32:
		for d := 0; d < a.dimension; d++ {
			a.i32s[i*a.dimension+d] = 0
		}
	case TypeU32:
		for d := 0; d < a.dimension; d++ {
			a.u32s[i*a.dimension+d] = 0
		}
	case TypeI64:
		for d := 0; d < a.dimension; d++ {
			a.i64s[i*a.dimension+d] = 0
		}
	case TypeU64:
		for d := 0; d < a.dimension; d++ {
			a.u64s[i*a.dimension+d] = 0
		}
	case TypeString:
		for d := 0; d < a.dimension; d++ {
			a.strs[i*a.dimension+d] = nil
		}
	case TypeCategory:
		a.codes[i] = MissingCategoryID
	case TypeMultiCategory:
		_ = a.mc.Clear(i)
	case TypeOpaqueData, TypeHostShadow:
		a.opaques[i] = nil
	}
}

func clearRange(s []uint8, start, n int) {
	for i := start; i < start+n; i++ {
		s[i] = 0
	}
}

// --- typed accessors ---------------------------------------------------

func (a *Attribute) checkRow(op string, i int) error {
	if i < 0 || i >= a.capacity {
		return OutOfRangeError(op)
	}
	return nil
}

func (a *Attribute) GetFloat64(i int) ([]float64, error) {
	if err := a.checkRow("GetFloat64", i); err != nil {
		return nil, err
	}
	base := i * a.dimension
	switch a.baseType {
	case TypeF64:
		return append([]float64(nil), a.f64s[base:base+a.dimension]...), nil
	case TypeF32:
		out := make([]float64, a.dimension)
		for d := range out {
			out[d] = float64(a.f32s[base+d])
		}
		return out, nil
	case TypeI32:
		out := make([]float64, a.dimension)
		for d := range out {
			out[d] = float64(a.i32s[base+d])
		}
		return out, nil
	case TypeU32:
		out := make([]float64, a.dimension)
		for d := range out {
			out[d] = float64(a.u32s[base+d])
		}
		return out, nil
	case TypeI64:
		out := make([]float64, a.dimension)
		for d := range out {
			out[d] = float64(a.i64s[base+d])
		}
		return out, nil
	case TypeU64:
		out := make([]float64, a.dimension)
		for d := range out {
			out[d] = float64(a.u64s[base+d])
		}
		return out, nil
	default:
		return nil, WrongTypeError("GetFloat64", a.name)
	}
}

func (a *Attribute) SetFloat64(i int, vals []float64) error {
	if err := a.checkRow("SetFloat64", i); err != nil {
		return err
	}
	if len(vals) != a.dimension {
		return InvalidArgumentError("SetFloat64", "value count must match dimension")
	}
	base := i * a.dimension
	switch a.baseType {
	case TypeF64:
		copy(a.f64s[base:base+a.dimension], vals)
	case TypeF32:
		for d, v := range vals {
			a.f32s[base+d] = float32(v)
		}
	case TypeI32:
		for d, v := range vals {
			a.i32s[base+d] = int32(v)
		}
	case TypeU32:
		for d, v := range vals {
			a.u32s[base+d] = uint32(v)
		}
	case TypeI64:
		for d, v := range vals {
			a.i64s[base+d] = int64(v)
		}
	case TypeU64:
		for d, v := range vals {
			a.u64s[base+d] = uint64(v)
		}
	default:
		return WrongTypeError("SetFloat64", a.name)
	}
	a.BumpVersion()
	return nil
}

func (a *Attribute) GetBool(i int) ([]bool, error) {
	if a.baseType != TypeBool {
		return nil, WrongTypeError("GetBool", a.name)
	}
	if err := a.checkRow("GetBool", i); err != nil {
		return nil, err
	}
	base := i * a.dimension
	out := make([]bool, a.dimension)
	for d := range out {
		out[d] = a.bools[base+d] != 0
	}
	return out, nil
}

func (a *Attribute) SetBool(i int, vals []bool) error {
	if a.baseType != TypeBool {
		return WrongTypeError("SetBool", a.name)
	}
	if err := a.checkRow("SetBool", i); err != nil {
		return err
	}
	if len(vals) != a.dimension {
		return InvalidArgumentError("SetBool", "value count must match dimension")
	}
	base := i * a.dimension
	for d, v := range vals {
		if v {
			a.bools[base+d] = 1
		} else {
			a.bools[base+d] = 0
		}
	}
	a.BumpVersion()
	return nil
}

func (a *Attribute) GetString(i int) ([]*string, error) {
	if a.baseType != TypeString {
		return nil, WrongTypeError("GetString", a.name)
	}
	if err := a.checkRow("GetString", i); err != nil {
		return nil, err
	}
	base := i * a.dimension
	return append([]*string(nil), a.strs[base:base+a.dimension]...), nil
}

func (a *Attribute) SetString(i int, vals []*string) error {
	if a.baseType != TypeString {
		return WrongTypeError("SetString", a.name)
	}
	if err := a.checkRow("SetString", i); err != nil {
		return err
	}
	if len(vals) != a.dimension {
		return InvalidArgumentError("SetString", "value count must match dimension")
	}
	base := i * a.dimension
	copy(a.strs[base:base+a.dimension], vals)
	a.BumpVersion()
	return nil
}

func (a *Attribute) GetCategoryCode(i int) (int32, error) {
	if a.baseType != TypeCategory {
		return MissingCategoryID, WrongTypeError("GetCategoryCode", a.name)
	}
	if err := a.checkRow("GetCategoryCode", i); err != nil {
		return MissingCategoryID, err
	}
	return a.codes[i], nil
}

func (a *Attribute) SetCategoryCode(i int, code int32) error {
	if a.baseType != TypeCategory {
		return WrongTypeError("SetCategoryCode", a.name)
	}
	if err := a.checkRow("SetCategoryCode", i); err != nil {
		return err
	}
	a.codes[i] = code
	a.BumpVersion()
	return nil
}

func (a *Attribute) GetCategoryLabel(i int) (string, bool, error) {
	code, err := a.GetCategoryCode(i)
	if err != nil {
		return "", false, err
	}
	if code == MissingCategoryID {
		return "", false, nil
	}
	label, ok := a.dict.LabelFor(code)
	return label, ok, nil
}

// SetCategoryLabel resolves label through the dictionary, interning a
// new id if it is not already present.
func (a *Attribute) SetCategoryLabel(i int, label string) error {
	if a.baseType != TypeCategory {
		return WrongTypeError("SetCategoryLabel", a.name)
	}
	return a.SetCategoryCode(i, a.dict.Intern(label))
}

// Dictionary returns the attribute's category dictionary, or nil if this
// is not a categorical attribute.
func (a *Attribute) Dictionary() *Dictionary { return a.dict }

// MultiCategory returns the attribute's CSR column, or nil if this is
// not a multi_category attribute.
func (a *Attribute) MultiCategory() *MultiCategoryColumn { return a.mc }

// SetDictionary installs a new dictionary. If remapExisting is true,
// every stored code is rewritten: old id -> old label -> new id;
// labels absent from the new dictionary become MissingCategoryID (§4.3).
func (a *Attribute) SetDictionary(dict *Dictionary, remapExisting bool) error {
	if a.baseType != TypeCategory {
		return WrongTypeError("SetDictionary", a.name)
	}
	if remapExisting {
		old := a.dict
		for i := range a.codes {
			if a.codes[i] == MissingCategoryID {
				continue
			}
			label, ok := old.LabelFor(a.codes[i])
			if !ok {
				a.codes[i] = MissingCategoryID
				continue
			}
			if id, ok := dict.IDFor(label); ok {
				a.codes[i] = id
			} else {
				a.codes[i] = MissingCategoryID
			}
		}
	}
	a.dict = dict
	a.BumpVersion()
	return nil
}

// CategorizeSort is the sort policy for AutoCategorize (§4.3).
type CategorizeSort uint8

const (
	SortNone CategorizeSort = iota
	SortFrequency
	SortAlphabetical
	SortNatural
)

// AutoCategorize converts a string attribute in place into a category
// attribute, per the §4.3 procedure: collect distinct labels, sort per
// policy, assign dense ids, reserve -1 for missing.
func (a *Attribute) AutoCategorize(policy CategorizeSort) error {
	if a.baseType != TypeString {
		return WrongTypeError("AutoCategorize", a.name)
	}
	if a.dimension != 1 {
		return InvalidArgumentError("AutoCategorize", "only scalar string attributes can be categorized")
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	hasMissing := false
	for _, s := range a.strs {
		if s == nil {
			hasMissing = true
			continue
		}
		if _, seen := counts[*s]; !seen {
			order = append(order, *s)
		}
		counts[*s]++
	}

	switch policy {
	case SortFrequency:
		sort.SliceStable(order, func(i, j int) bool {
			if counts[order[i]] != counts[order[j]] {
				return counts[order[i]] > counts[order[j]]
			}
			return order[i] < order[j]
		})
	case SortAlphabetical:
		sort.Strings(order)
	case SortNatural:
		sort.SliceStable(order, func(i, j int) bool { return naturalLess(order[i], order[j]) })
	case SortNone:
		// insertion order, already correct
	}

	dict := NewDictionary()
	for _, label := range order {
		dict.Intern(label)
	}

	codes := make([]int32, a.capacity)
	for i, s := range a.strs {
		if s == nil {
			codes[i] = MissingCategoryID
			continue
		}
		codes[i], _ = dict.IDFor(*s)
	}
	_ = hasMissing

	a.baseType = TypeCategory
	a.strs = nil
	a.codes = codes
	a.dict = dict
	a.BumpVersion()
	return nil
}

// Decategorize converts a category attribute back into strings, in
// place. missingLabel substitutes for MissingCategoryID; if empty,
// DefaultMissingLabel is used.
func (a *Attribute) Decategorize(missingLabel string) error {
	if a.baseType != TypeCategory {
		return WrongTypeError("Decategorize", a.name)
	}
	if missingLabel == "" {
		missingLabel = DefaultMissingLabel
	}
	strs := make([]*string, a.capacity)
	for i, code := range a.codes {
		if code == MissingCategoryID {
			s := missingLabel
			strs[i] = &s
			continue
		}
		label, ok := a.dict.LabelFor(code)
		if !ok {
			label = missingLabel
		}
		s := label
		strs[i] = &s
	}
	a.baseType = TypeString
	a.codes = nil
	a.dict = nil
	a.strs = strs
	a.BumpVersion()
	return nil
}

// naturalLess compares strings by interleaving lexical and numeric
// (digit-run) comparison, per the §4.3/§9 "natural" sort policy.
func naturalLess(a, b string) bool {
	ai, bi := 0, 0
	for ai < len(a) && bi < len(b) {
		ca, cb := a[ai], b[bi]
		if isDigit(ca) && isDigit(cb) {
			as, bs := ai, bi
			for ai < len(a) && isDigit(a[ai]) {
				ai++
			}
			for bi < len(b) && isDigit(b[bi]) {
				bi++
			}
			na, _ := strconv.ParseInt(strings.TrimLeft(a[as:ai], "0")+"0", 10, 64)
			nb, _ := strconv.ParseInt(strings.TrimLeft(b[bs:bi], "0")+"0", 10, 64)
			if na != nb {
				return na < nb
			}
			continue
		}
		if ca != cb {
			return ca < cb
		}
		ai++
		bi++
	}
	return len(a)-ai < len(b)-bi
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
