package graph

// MultiCategoryColumn stores the CSR-like triple backing a multi_category
// attribute (§3): offsets[capacity+1], ids[], and optional weights[].
// offsets[0]=0, offsets[capacity]=len(ids), monotonic non-decreasing.
//
// Grounded on the teacher's CSR adjacency encoding in
// pkg/storage/csr_index.go, reused verbatim in shape for the category
// triple since both are "row -> variable-length run" structures.
type MultiCategoryColumn struct {
	offsets []uint64
	ids     []int32
	weights []float64 // nil when unweighted
	dict    *Dictionary
}

// NewMultiCategoryColumn returns a column with capacity empty rows.
func NewMultiCategoryColumn(capacity int) *MultiCategoryColumn {
	return &MultiCategoryColumn{
		offsets: make([]uint64, capacity+1),
		dict:    NewDictionary(),
	}
}

// EnsureCapacity grows the offsets array, filling the new tail with the
// current total entry count (§4.3 ensure_capacity).
func (c *MultiCategoryColumn) EnsureCapacity(n int) {
	if n+1 <= len(c.offsets) {
		return
	}
	total := uint64(len(c.ids))
	grown := make([]uint64, n+1)
	copy(grown, c.offsets)
	for i := len(c.offsets); i < len(grown); i++ {
		grown[i] = total
	}
	c.offsets = grown
}

// Capacity reports the number of rows.
func (c *MultiCategoryColumn) Capacity() int {
	if len(c.offsets) == 0 {
		return 0
	}
	return len(c.offsets) - 1
}

// Get returns the ids and optional weights for row i.
func (c *MultiCategoryColumn) Get(i int) (ids []int32, weights []float64) {
	start, end := c.offsets[i], c.offsets[i+1]
	ids = c.ids[start:end]
	if c.weights != nil {
		weights = c.weights[start:end]
	}
	return ids, weights
}

// SetEntry rewrites row i, shifting subsequent rows in place to preserve
// CSR contiguity (§4.3 set_multi_category_entry).
func (c *MultiCategoryColumn) SetEntry(i int, ids []int32, weights []float64) error {
	if i < 0 || i+1 >= len(c.offsets) {
		return OutOfRangeError("SetMultiCategoryEntry")
	}
	if weights != nil && len(weights) != len(ids) {
		return InvalidArgumentError("SetMultiCategoryEntry", "weights length must match ids length")
	}
	start, end := c.offsets[i], c.offsets[i+1]
	oldLen := int(end - start)
	newLen := len(ids)
	delta := newLen - oldLen

	if delta != 0 {
		c.ids = spliceInt32(c.ids, int(start), int(end), ids)
		if c.weights != nil {
			if weights == nil {
				weights = make([]float64, newLen)
			}
			c.weights = spliceFloat64(c.weights, int(start), int(end), weights)
		}
		for j := i + 1; j < len(c.offsets); j++ {
			c.offsets[j] = uint64(int64(c.offsets[j]) + int64(delta))
		}
	} else {
		copy(c.ids[start:end], ids)
		if c.weights != nil && weights != nil {
			copy(c.weights[start:end], weights)
		}
	}

	if weights != nil && c.weights == nil {
		c.weights = make([]float64, len(c.ids))
		copy(c.weights[start:start+uint64(newLen)], weights)
	}
	return nil
}

// Clear empties row i.
func (c *MultiCategoryColumn) Clear(i int) error {
	return c.SetEntry(i, nil, nil)
}

func spliceInt32(buf []int32, start, end int, with []int32) []int32 {
	tail := append([]int32(nil), buf[end:]...)
	buf = append(buf[:start], with...)
	return append(buf, tail...)
}

func spliceFloat64(buf []float64, start, end int, with []float64) []float64 {
	tail := append([]float64(nil), buf[end:]...)
	buf = append(buf[:start], with...)
	return append(buf, tail...)
}
