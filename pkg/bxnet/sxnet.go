package bxnet

import (
	"io"

	"github.com/golang/snappy"

	"github.com/dd0wney/xnetgraph/pkg/ferrors"
	"github.com/dd0wney/xnetgraph/pkg/graph"
)

// WriteSXNet writes g as a snappy-framed BXNet payload: a plain BXNet
// stream passed through a snappy.Writer block compressor. This is not
// one of the three formats §6 requires to round-trip (.xnet/.bxnet/
// .zxnet) — it exists as a lower-latency alternative to ZXNet's BGZF
// wrapping for callers (blobstore uploads, scratch checkpoints) that
// want fast compression without BGZF's virtual-offset seek support.
//
// Grounded on the teacher's pkg/wal/compressed_wal.go, which uses the
// same golang/snappy block API to compress WAL entries before fsync;
// here the same library compresses whole BXNet bodies instead of
// individual log records.
func WriteSXNet(w io.Writer, g *graph.Graph) error {
	sw := snappy.NewBufferedWriter(w)
	if err := Write(sw, g); err != nil {
		sw.Close()
		return err
	}
	if err := sw.Close(); err != nil {
		return ferrors.IOError("WriteSXNet", err)
	}
	return nil
}

// IsSnappyFramed reports whether data begins with the snappy framing
// format's stream identifier chunk, so callers that don't know in
// advance whether a blob is BXNet, ZXNet, or SXNet can dispatch to the
// right reader.
func IsSnappyFramed(data []byte) bool {
	return len(data) >= 10 &&
		data[0] == 0xff &&
		string(data[4:10]) == "sNaPpY"
}

// ReadSXNet decompresses a snappy-framed BXNet payload and parses it.
func ReadSXNet(r io.Reader) (*graph.Graph, error) {
	sr := snappy.NewReader(r)
	return Read(sr)
}
