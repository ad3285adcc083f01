package bxnet

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/dd0wney/xnetgraph/pkg/ferrors"
	"github.com/dd0wney/xnetgraph/pkg/pools"
)

// chunkWriter buffers a chunk's payload as a sequence of length-prefixed
// blocks (§4.7.2 chunk framing).
type chunkWriter struct {
	id      ChunkID
	payload bytes.Buffer
}

func newChunkWriter(id ChunkID) *chunkWriter { return &chunkWriter{id: id} }

func (c *chunkWriter) WriteBlock(b []byte) {
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(b)))
	c.payload.Write(lenBuf[:])
	c.payload.Write(b)
}

// finish returns the full framed chunk bytes: chunk_id, flags,
// payload_size, payload. The backing array is drawn from the shared
// byte pool (pkg/pools); callers that copy it into a larger buffer
// immediately should return it with pools.PutBytes once done.
func (c *chunkWriter) finish() []byte {
	var head [16]byte
	binary.LittleEndian.PutUint32(head[0:4], uint32(c.id))
	binary.LittleEndian.PutUint32(head[4:8], 0) // flags, always zero in v1.0.0
	binary.LittleEndian.PutUint64(head[8:16], uint64(c.payload.Len()))
	out := pools.GetBytes(16 + c.payload.Len())
	out = append(out, head[:]...)
	out = append(out, c.payload.Bytes()...)
	return out
}

// chunkReader parses one framed chunk's blocks.
type chunkReader struct {
	id      ChunkID
	payload []byte
	pos     int
}

func readChunk(r io.Reader) (*chunkReader, error) {
	var head [16]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, ferrors.IOError("ReadChunk", err)
	}
	id := ChunkID(binary.LittleEndian.Uint32(head[0:4]))
	flags := binary.LittleEndian.Uint32(head[4:8])
	if flags != 0 {
		return nil, ferrors.NotSupported("ReadChunk", "non-zero v1 chunk flags")
	}
	size := binary.LittleEndian.Uint64(head[8:16])
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, ferrors.IOError("ReadChunk", err)
	}
	return &chunkReader{id: id, payload: payload}, nil
}

func (c *chunkReader) ReadBlock() ([]byte, error) {
	if c.pos+8 > len(c.payload) {
		return nil, ferrors.CorruptFormat("ReadBlock", "truncated block length")
	}
	n := binary.LittleEndian.Uint64(c.payload[c.pos : c.pos+8])
	c.pos += 8
	if c.pos+int(n) > len(c.payload) {
		return nil, ferrors.CorruptFormat("ReadBlock", "truncated block payload")
	}
	b := c.payload[c.pos : c.pos+int(n)]
	c.pos += int(n)
	return b, nil
}

func (c *chunkReader) done() bool { return c.pos >= len(c.payload) }
