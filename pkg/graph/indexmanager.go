// Package graph implements the core node/edge store, the typed attribute
// subsystem, the derived buffer cache, and the neighbour-storage
// abstraction (§3-§4.5).
package graph

// InvalidIndex is the reserved sentinel meaning "absent/invalid" in both
// the node and edge index spaces (§3).
const InvalidIndex uint64 = ^uint64(0)

// IndexManager issues fresh indices and recycles freed ones under a LIFO
// free-list discipline (§4.1). Index reuse is LIFO because downstream
// tests depend on the most recently freed slot being reissued first.
//
// Grounded on the teacher's nextNodeID/nextEdgeID monotonic counters
// (pkg/storage/node_operations.go in the source repo), generalized here
// with a slice-backed free-list stack; no mutex, since a single
// IndexManager is never shared across goroutines (§5).
type IndexManager struct {
	nextIndex uint64
	capacity  uint64
	freeList  []uint64
}

// NewIndexManager returns an IndexManager with the given initial capacity.
func NewIndexManager(capacity uint64) *IndexManager {
	return &IndexManager{capacity: capacity}
}

// Acquire returns a fresh or recycled index, or (InvalidIndex, false) if
// the manager is at capacity.
func (m *IndexManager) Acquire() (uint64, bool) {
	if n := len(m.freeList); n > 0 {
		idx := m.freeList[n-1]
		m.freeList = m.freeList[:n-1]
		return idx, true
	}
	if m.nextIndex < m.capacity {
		idx := m.nextIndex
		m.nextIndex++
		return idx, true
	}
	return InvalidIndex, false
}

// Release returns i to the free list for future reuse.
func (m *IndexManager) Release(i uint64) {
	m.freeList = append(m.freeList, i)
}

// Resize grows the manager's capacity. newCap must be >= NextIndex(); it
// is a no-op contraction guard, not a validator -- callers (C5) are
// expected to have already computed a sane target via grow().
func (m *IndexManager) Resize(newCap uint64) {
	if newCap < m.nextIndex {
		newCap = m.nextIndex
	}
	m.capacity = newCap
}

// Reset clears the free list and restarts allocation from zero.
func (m *IndexManager) Reset() {
	m.freeList = m.freeList[:0]
	m.nextIndex = 0
}

// Capacity reports the current backing capacity.
func (m *IndexManager) Capacity() uint64 { return m.capacity }

// NextIndex reports the next index that would be minted if the free list
// were empty. Used by the binary codec to rebuild the manager post-load
// (§4.7.2 read validation: next_index = one past the highest active slot).
func (m *IndexManager) NextIndex() uint64 { return m.nextIndex }

// SetNextIndex forcibly sets the allocation cursor, used only when
// rebuilding an IndexManager from a deserialized active-bitmap (§4.7.2).
func (m *IndexManager) SetNextIndex(n uint64) { m.nextIndex = n }

// FreeCount reports the number of indices currently on the free list.
func (m *IndexManager) FreeCount() int { return len(m.freeList) }

// RebuildFromActive reconstructs free-list and next_index state from an
// active-bitmap read off disk (§4.7.2): inactive slots below the highest
// active slot are pushed to the free list in ascending order, and
// next_index is set to one past the highest active slot.
func (m *IndexManager) RebuildFromActive(active []bool) {
	m.freeList = m.freeList[:0]
	highest := -1
	for i, a := range active {
		if a {
			highest = i
		}
	}
	for i := 0; i <= highest; i++ {
		if !active[i] {
			m.freeList = append(m.freeList, uint64(i))
		}
	}
	m.nextIndex = uint64(highest + 1)
}

// grow computes the next backing capacity for a required minimum, using
// geometric growth (§4.5): max(required, 1.5x current), shared across
// attribute and topology arrays so they stay size-aligned.
func grow(required, current uint64) uint64 {
	if required <= current {
		return current
	}
	geometric := current + current/2
	if geometric < 8 {
		geometric = 8
	}
	if geometric < required {
		return required
	}
	return geometric
}
