package pools

import (
	"sync"
	"sync/atomic"
)

// Uint64Pool pools slices of uint64 for node/edge index collections:
// the XNET writer's active-index scratch lists (§4.7) are its caller,
// sized by graph node/edge capacity rather than a fixed small
// collection, hence the larger top tier than a general-purpose pool
// would need.
type Uint64Pool struct {
	small  sync.Pool // <= 16 elements
	medium sync.Pool // <= 64 elements
	large  sync.Pool // <= 256 elements
	huge   sync.Pool // <= 4096 elements

	hits   atomic.Int64
	misses atomic.Int64
}

// NewUint64Pool creates a new uint64 slice pool.
func NewUint64Pool() *Uint64Pool {
	return &Uint64Pool{
		small: sync.Pool{
			New: func() any {
				s := make([]uint64, 0, 16)
				return &s
			},
		},
		medium: sync.Pool{
			New: func() any {
				s := make([]uint64, 0, 64)
				return &s
			},
		},
		large: sync.Pool{
			New: func() any {
				s := make([]uint64, 0, 256)
				return &s
			},
		},
		huge: sync.Pool{
			New: func() any {
				s := make([]uint64, 0, 4096)
				return &s
			},
		},
	}
}

// Stats returns the pool's cumulative hit/miss counters.
func (p *Uint64Pool) Stats() PoolStats {
	return PoolStats{Hits: p.hits.Load(), Misses: p.misses.Load()}
}

// Get returns a uint64 slice with at least the requested capacity.
func (p *Uint64Pool) Get(size int) []uint64 {
	var pool *sync.Pool
	switch {
	case size <= 16:
		pool = &p.small
	case size <= 64:
		pool = &p.medium
	case size <= 256:
		pool = &p.large
	case size <= 4096:
		pool = &p.huge
	default:
		p.misses.Add(1)
		return make([]uint64, 0, size)
	}

	sp, ok := pool.Get().(*[]uint64)
	if !ok || cap(*sp) < size {
		p.misses.Add(1)
		return make([]uint64, 0, size)
	}
	p.hits.Add(1)
	return (*sp)[:0]
}

// Put returns a uint64 slice to the pool.
func (p *Uint64Pool) Put(s []uint64) {
	c := cap(s)
	if c > 1<<20 {
		return // don't pool very large index lists
	}

	s = s[:0]

	var pool *sync.Pool
	switch {
	case c <= 16:
		pool = &p.small
	case c <= 64:
		pool = &p.medium
	case c <= 256:
		pool = &p.large
	case c <= 4096:
		pool = &p.huge
	default:
		return
	}

	pool.Put(&s)
}

// Default global uint64 pool
var defaultUint64Pool = NewUint64Pool()

// GetUint64s returns a uint64 slice from the default pool.
func GetUint64s(size int) []uint64 {
	return defaultUint64Pool.Get(size)
}

// PutUint64s returns a uint64 slice to the default pool.
func PutUint64s(s []uint64) {
	defaultUint64Pool.Put(s)
}

// Uint64PoolStats reports the default uint64 pool's cumulative
// hit/miss counters.
func Uint64PoolStats() PoolStats {
	return defaultUint64Pool.Stats()
}
