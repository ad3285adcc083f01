package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Component field helpers for common component names
func Component(name string) Field {
	return String("component", name)
}

func NodeID(id uint64) Field {
	return Uint64("node_id", id)
}

func EdgeID(id uint64) Field {
	return Uint64("edge_id", id)
}

func Operation(op string) Field {
	return String("operation", op)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}

func Path(p string) Field {
	return String("path", p)
}

// Codec names the container encoding a read/write path took
// ("bxnet", "zxnet", "sxnet") — used where blobstore and the CLI log
// which of §4.7.2's formats a blob was detected or written as.
func Codec(name string) Field {
	return String("codec", name)
}

// ChunkCount records how many BXNet chunks a container wrote or read.
func ChunkCount(n int) Field {
	return Int("chunk_count", n)
}

// Modularity records a Leiden session's modularity score at a phase
// boundary (§4.8).
func Modularity(q float64) Field {
	return Float64("modularity", q)
}

// QueryOffset records the byte offset a query_error (§7) was raised at.
func QueryOffset(offset int) Field {
	return Int("query_offset", offset)
}

// Slow flags a TimedOperation that exceeded its configured threshold.
func Slow(v bool) Field {
	return Bool("slow", v)
}
