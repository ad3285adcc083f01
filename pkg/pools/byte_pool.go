package pools

import (
	"sync"
	"sync/atomic"
)

// Buffer size classes for efficient reuse. TinySize/SmallSize line up
// with BXNet's 16-byte chunk header (§4.7.2) and common attribute-name
// blocks; HugeSize covers a 512-byte footer plus its locator table with
// headroom for a full chunk's worth of small attribute descriptors.
const (
	TinySize   = 16    // chunk header
	SmallSize  = 64    // attribute name / small key blocks
	MediumSize = 256   // serialized attribute descriptors
	LargeSize  = 1024  // node/edge attribute value rows
	HugeSize   = 4096  // footer + locator table, batch chunk payloads
	MaxPool    = 65536 // don't pool buffers larger than this
)

// BytePool provides size-class based pooling for byte slices.
// This reduces GC pressure by reusing buffers of appropriate sizes.
type BytePool struct {
	tiny   sync.Pool // <= 16 bytes
	small  sync.Pool // <= 64 bytes
	medium sync.Pool // <= 256 bytes
	large  sync.Pool // <= 1024 bytes
	huge   sync.Pool // <= 4096 bytes

	hits   atomic.Int64
	misses atomic.Int64
}

// PoolStats reports cumulative Get() outcomes for one BytePool, useful
// for sizing the class boundaries against a workload's actual chunk
// sizes.
type PoolStats struct {
	Hits   int64 // served by a size class (including a buffer its New just made)
	Misses int64 // required make([]byte, ...) (oversized request or a too-small pooled buffer)
}

// Stats returns the pool's cumulative hit/miss counters.
func (p *BytePool) Stats() PoolStats {
	return PoolStats{Hits: p.hits.Load(), Misses: p.misses.Load()}
}

// NewBytePool creates a new byte pool with pre-allocated buffers.
func NewBytePool() *BytePool {
	return &BytePool{
		tiny: sync.Pool{
			New: func() any {
				b := make([]byte, 0, TinySize)
				return &b
			},
		},
		small: sync.Pool{
			New: func() any {
				b := make([]byte, 0, SmallSize)
				return &b
			},
		},
		medium: sync.Pool{
			New: func() any {
				b := make([]byte, 0, MediumSize)
				return &b
			},
		},
		large: sync.Pool{
			New: func() any {
				b := make([]byte, 0, LargeSize)
				return &b
			},
		},
		huge: sync.Pool{
			New: func() any {
				b := make([]byte, 0, HugeSize)
				return &b
			},
		},
	}
}

// Get returns a byte slice with at least the requested capacity.
// The returned slice has length 0 and the specified capacity.
func (p *BytePool) Get(size int) []byte {
	var pool *sync.Pool
	switch {
	case size <= TinySize:
		pool = &p.tiny
	case size <= SmallSize:
		pool = &p.small
	case size <= MediumSize:
		pool = &p.medium
	case size <= LargeSize:
		pool = &p.large
	case size <= HugeSize:
		pool = &p.huge
	default:
		// Too large to pool, allocate directly
		p.misses.Add(1)
		return make([]byte, 0, size)
	}

	bp, ok := pool.Get().(*[]byte)
	if !ok || cap(*bp) < size {
		// Pool returned wrong type or too small, allocate new
		p.misses.Add(1)
		return make([]byte, 0, size)
	}
	p.hits.Add(1)
	return (*bp)[:0]
}

// GetSized returns a byte slice with exactly the requested length.
func (p *BytePool) GetSized(size int) []byte {
	b := p.Get(size)
	return b[:size]
}

// Put returns a byte slice to the pool for reuse.
// Slices larger than MaxPool are not pooled.
func (p *BytePool) Put(b []byte) {
	c := cap(b)
	if c > MaxPool {
		return // Don't pool oversized buffers
	}

	// Reset slice to zero length
	b = b[:0]

	var pool *sync.Pool
	switch {
	case c <= TinySize:
		pool = &p.tiny
	case c <= SmallSize:
		pool = &p.small
	case c <= MediumSize:
		pool = &p.medium
	case c <= LargeSize:
		pool = &p.large
	case c <= HugeSize:
		pool = &p.huge
	default:
		return
	}

	pool.Put(&b)
}

// Default global byte pool
var defaultBytePool = NewBytePool()

// GetBytes returns a byte slice from the default pool.
func GetBytes(size int) []byte {
	return defaultBytePool.Get(size)
}

// GetBytesSized returns a byte slice with exact length from the default pool.
func GetBytesSized(size int) []byte {
	return defaultBytePool.GetSized(size)
}

// PutBytes returns a byte slice to the default pool.
func PutBytes(b []byte) {
	defaultBytePool.Put(b)
}

// BytePoolStats reports the default byte pool's cumulative hit/miss
// counters, exposed by cmd/xnetctl's "stat" subcommand alongside
// container metadata.
func BytePoolStats() PoolStats {
	return defaultBytePool.Stats()
}
