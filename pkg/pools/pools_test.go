package pools

import (
	"sync"
	"testing"
)

func TestBytePool_Get(t *testing.T) {
	pool := NewBytePool()

	tests := []struct {
		name   string
		size   int
		minCap int
		maxCap int
	}{
		{"tiny", 8, 8, TinySize},
		{"tiny_exact", TinySize, TinySize, TinySize},
		{"small", 32, 32, SmallSize},
		{"small_exact", SmallSize, SmallSize, SmallSize},
		{"medium", 128, 128, MediumSize},
		{"medium_exact", MediumSize, MediumSize, MediumSize},
		{"large", 512, 512, LargeSize},
		{"large_exact", LargeSize, LargeSize, LargeSize},
		{"huge", 2048, 2048, HugeSize},
		{"huge_exact", HugeSize, HugeSize, HugeSize},
		{"oversized", 10000, 10000, 10000}, // Allocated directly
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := pool.Get(tt.size)
			if len(b) != 0 {
				t.Errorf("Get(%d) length = %d, want 0", tt.size, len(b))
			}
			if cap(b) < tt.minCap {
				t.Errorf("Get(%d) capacity = %d, want >= %d", tt.size, cap(b), tt.minCap)
			}
		})
	}
}

func TestBytePool_GetSized(t *testing.T) {
	pool := NewBytePool()

	b := pool.GetSized(100)
	if len(b) != 100 {
		t.Errorf("GetSized(100) length = %d, want 100", len(b))
	}
	if cap(b) < 100 {
		t.Errorf("GetSized(100) capacity = %d, want >= 100", cap(b))
	}
}

func TestBytePool_PutAndReuse(t *testing.T) {
	pool := NewBytePool()

	for i := 0; i < 10; i++ {
		b := pool.Get(64)
		b = append(b, "test data"...)
		pool.Put(b)
	}

	b := pool.Get(64)
	if len(b) != 0 {
		t.Errorf("After Put, Get returned slice with length %d, want 0", len(b))
	}
}

func TestBytePool_OversizedNotPooled(t *testing.T) {
	pool := NewBytePool()

	large := make([]byte, MaxPool+1000)
	pool.Put(large) // Should not panic or error
}

func TestDefaultBytePool(t *testing.T) {
	b := GetBytes(100)
	if cap(b) < 100 {
		t.Errorf("GetBytes(100) capacity = %d, want >= 100", cap(b))
	}
	PutBytes(b)

	b2 := GetBytesSized(50)
	if len(b2) != 50 {
		t.Errorf("GetBytesSized(50) length = %d, want 50", len(b2))
	}
	PutBytes(b2)
}

func TestUint64Pool_Get(t *testing.T) {
	pool := NewUint64Pool()

	tests := []struct {
		name   string
		size   int
		minCap int
	}{
		{"small", 8, 8},
		{"small_max", 16, 16},
		{"medium", 32, 32},
		{"medium_max", 64, 64},
		{"large", 128, 128},
		{"large_max", 256, 256},
		{"oversized", 1000, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := pool.Get(tt.size)
			if len(s) != 0 {
				t.Errorf("Get(%d) length = %d, want 0", tt.size, len(s))
			}
			if cap(s) < tt.minCap {
				t.Errorf("Get(%d) capacity = %d, want >= %d", tt.size, cap(s), tt.minCap)
			}
		})
	}
}

func TestUint64Pool_PutAndReuse(t *testing.T) {
	pool := NewUint64Pool()

	for i := 0; i < 10; i++ {
		s := pool.Get(16)
		s = append(s, 1, 2, 3, 4, 5)
		pool.Put(s)
	}

	s := pool.Get(16)
	if len(s) != 0 {
		t.Errorf("After Put, Get returned slice with length %d, want 0", len(s))
	}
}

func TestDefaultUint64Pool(t *testing.T) {
	s := GetUint64s(32)
	if cap(s) < 32 {
		t.Errorf("GetUint64s(32) capacity = %d, want >= 32", cap(s))
	}
	PutUint64s(s)
}

func TestBytePool_Concurrent(t *testing.T) {
	pool := NewBytePool()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b := pool.Get(64)
				b = append(b, "concurrent test data"...)
				pool.Put(b)
			}
		}()
	}

	wg.Wait()
}

func TestUint64Pool_Concurrent(t *testing.T) {
	pool := NewUint64Pool()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s := pool.Get(32)
				s = append(s, 1, 2, 3, 4, 5, 6, 7, 8)
				pool.Put(s)
			}
		}()
	}

	wg.Wait()
}

func TestBytePool_Stats(t *testing.T) {
	pool := NewBytePool()

	buf := pool.Get(32) // hit: served from the small size class
	pool.Put(buf)
	pool.Get(32)       // hit: size class again
	pool.Get(1 << 20) // miss: larger than MaxPool, bypasses pooling

	stats := pool.Stats()
	if stats.Hits != 2 {
		t.Errorf("Hits = %d, want 2", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
}

func TestUint64Pool_Stats(t *testing.T) {
	pool := NewUint64Pool()

	s := pool.Get(32) // hit
	pool.Put(s)
	pool.Get(32)       // hit
	pool.Get(1 << 21) // miss: larger than any tier

	stats := pool.Stats()
	if stats.Hits != 2 {
		t.Errorf("Hits = %d, want 2", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
}

func TestUint64Pool_HugeTier(t *testing.T) {
	pool := NewUint64Pool()
	s := pool.Get(4096)
	if cap(s) < 4096 {
		t.Fatalf("cap = %d, want >= 4096", cap(s))
	}
	pool.Put(s)
	s2 := pool.Get(4000)
	if cap(s2) < 4096 {
		t.Errorf("expected huge-tier reuse, got cap=%d", cap(s2))
	}
}

func BenchmarkBytePool_Get(b *testing.B) {
	pool := NewBytePool()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		buf := pool.Get(128)
		pool.Put(buf)
	}
}

func BenchmarkUint64Pool_Get(b *testing.B) {
	pool := NewUint64Pool()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		s := pool.Get(32)
		pool.Put(s)
	}
}
