package bxnet

import (
	"io"

	"github.com/klauspost/compress/bgzf"

	"github.com/dd0wney/xnetgraph/pkg/ferrors"
	"github.com/dd0wney/xnetgraph/pkg/graph"
)

// clampLevel restricts a requested compression level to the 0-9 range
// ZXNet accepts (§4.7.2); callers outside that range are clamped rather
// than rejected.
func clampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > 9 {
		return 9
	}
	return level
}

// WriteZXNet writes g as a BGZF-compressed BXNet payload: a plain BXNet
// stream passed through a bgzf.Writer block compressor. Grounded on
// klauspost/compress/bgzf, the Go-ecosystem equivalent of the htslib
// bgzf.h the original links against (original_source/htslib).
func WriteZXNet(w io.Writer, g *graph.Graph, level int) error {
	bw, err := bgzf.NewWriterLevel(w, clampLevel(level), 1)
	if err != nil {
		return ferrors.IOError("WriteZXNet", err)
	}
	if err := Write(bw, g); err != nil {
		bw.Close()
		return err
	}
	if err := bw.Close(); err != nil {
		return ferrors.IOError("WriteZXNet", err)
	}
	return nil
}

// IsBGZF reports whether data begins with the gzip/BGZF magic bytes, so
// callers that don't know in advance whether a blob is BXNet or ZXNet
// can dispatch to the right reader.
func IsBGZF(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}

// ReadZXNet decompresses a BGZF-wrapped BXNet payload and parses it.
func ReadZXNet(r io.Reader) (*graph.Graph, error) {
	br, err := bgzf.NewReader(r, 0)
	if err != nil {
		return nil, ferrors.IOError("ReadZXNet", err)
	}
	defer br.Close()
	return Read(br)
}
