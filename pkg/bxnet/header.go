// Package bxnet implements the BXNet binary container and its
// BGZF-compressed ZXNet variant (§4.7.2): a 64-byte header, a sequence
// of length-framed chunks, and a 512-byte footer carrying a CRC32 and
// chunk locator table.
//
// Grounded on the teacher's WAL binary framing (pkg/wal/wal.go in the
// source repo: fixed header, length-prefixed entries, CRC-checked
// footer), generalized from a single append-only log into a
// random-access chunked container with a locator table. The BGZF
// transport for ZXNet is grounded on klauspost/compress/bgzf, the
// real Go-ecosystem equivalent of the htslib bgzf.h the original
// C implementation links against (see original_source/htslib).
package bxnet

import (
	"encoding/binary"
	"io"

	"github.com/dd0wney/xnetgraph/pkg/ferrors"
)

const (
	magicHeader = "ZXNETFMT"
	magicFooter = "ZXFOOTER"

	headerSize = 64
	footerSize = 512
	maxLocators = 30

	versionMajor = 1
	versionMinor = 0
	versionPatch = 0

	codecBinary = 0
	codecBGZF   = 1
	codecSnappy = 2

	flagDirected = 1 << 0
)

// ChunkID identifies one of the fixed-order chunks of §4.7.2.
type ChunkID uint32

const (
	ChunkMeta ChunkID = iota
	ChunkNode
	ChunkEdge
	ChunkNodeAttr
	ChunkEdgeAttr
	ChunkNetAttr
	ChunkNodeValues
	ChunkEdgeValues
	ChunkNetValues
)

// chunkOrder is the fixed sequence chunks must appear in.
var chunkOrder = []ChunkID{
	ChunkMeta, ChunkNode, ChunkEdge,
	ChunkNodeAttr, ChunkEdgeAttr, ChunkNetAttr,
	ChunkNodeValues, ChunkEdgeValues, ChunkNetValues,
}

// ChunkOrderLen reports the fixed number of chunks a well-formed BXNet
// container carries, for callers that want to log or report it without
// reaching into the unexported chunk order itself.
func ChunkOrderLen() int { return len(chunkOrder) }

// Header is the fixed 64-byte BXNet/ZXNet header.
type Header struct {
	VersionMajor, VersionMinor, VersionPatch uint16
	Codec                                    uint32
	Flags                                    uint32
	NodeCount, EdgeCount                     uint64
	NodeCapacity, EdgeCapacity                uint64
}

func (h Header) Directed() bool { return h.Flags&flagDirected != 0 }

func writeHeader(w io.Writer, h Header) error {
	buf := make([]byte, headerSize)
	copy(buf[0:8], magicHeader)
	binary.LittleEndian.PutUint16(buf[8:10], h.VersionMajor)
	binary.LittleEndian.PutUint16(buf[10:12], h.VersionMinor)
	binary.LittleEndian.PutUint32(buf[12:16], uint32(h.VersionPatch))
	binary.LittleEndian.PutUint32(buf[16:20], h.Codec)
	binary.LittleEndian.PutUint32(buf[20:24], h.Flags)
	// bytes 24:32 reserved zero
	binary.LittleEndian.PutUint64(buf[32:40], h.NodeCount)
	binary.LittleEndian.PutUint64(buf[40:48], h.EdgeCount)
	binary.LittleEndian.PutUint64(buf[48:56], h.NodeCapacity)
	binary.LittleEndian.PutUint64(buf[56:64], h.EdgeCapacity)
	_, err := w.Write(buf)
	if err != nil {
		return ferrors.IOError("WriteHeader", err)
	}
	return nil
}

func readHeader(r io.Reader) (Header, error) {
	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Header{}, ferrors.IOError("ReadHeader", err)
	}
	if string(buf[0:8]) != magicHeader {
		return Header{}, ferrors.CorruptFormat("ReadHeader", "magic mismatch")
	}
	h := Header{
		VersionMajor: binary.LittleEndian.Uint16(buf[8:10]),
		VersionMinor: binary.LittleEndian.Uint16(buf[10:12]),
		VersionPatch: uint16(binary.LittleEndian.Uint32(buf[12:16])),
		Codec:        binary.LittleEndian.Uint32(buf[16:20]),
		Flags:        binary.LittleEndian.Uint32(buf[20:24]),
		NodeCount:    binary.LittleEndian.Uint64(buf[32:40]),
		EdgeCount:    binary.LittleEndian.Uint64(buf[40:48]),
		NodeCapacity: binary.LittleEndian.Uint64(buf[48:56]),
		EdgeCapacity: binary.LittleEndian.Uint64(buf[56:64]),
	}
	if h.VersionMajor != versionMajor {
		return Header{}, ferrors.CorruptFormat("ReadHeader", "unsupported version")
	}
	if h.Codec != codecBinary && h.Codec != codecBGZF && h.Codec != codecSnappy {
		return Header{}, ferrors.CorruptFormat("ReadHeader", "unknown codec")
	}
	if h.NodeCount > h.NodeCapacity || h.EdgeCount > h.EdgeCapacity {
		return Header{}, ferrors.CorruptFormat("ReadHeader", "counts exceed capacities")
	}
	return h, nil
}
