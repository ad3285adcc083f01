package bxnet

import (
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/dd0wney/xnetgraph/pkg/ferrors"
)

// locator is one 24-byte footer entry pointing at a chunk's byte range.
type locator struct {
	ChunkID ChunkID
	Flags   uint32
	Offset  uint64
	Length  uint64
}

// footer is the fixed 512-byte trailer of §4.7.2: magic, chunk count, up
// to maxLocators locator entries, a duplicated count block, and a CRC32
// of every byte from the header through the last chunk. The count block
// follows the last written locator, so the 512 bytes hold at most 19
// locators next to it; more than that is rejected.
type footer struct {
	locators            []locator
	nodeCount, edgeCount uint64
	nodeAttrCount, edgeAttrCount, netAttrCount uint32
	crc32               uint32
}

func writeFooter(w io.Writer, f footer) error {
	if len(f.locators) > maxLocators {
		return ferrors.NotSupported("WriteFooter", "more chunks than the fixed 30 locator slots")
	}
	countsOff := 16 + len(f.locators)*24
	if countsOff+28 > footerSize-4 {
		return ferrors.NotSupported("WriteFooter", "locators and count block do not fit in the footer")
	}
	buf := make([]byte, footerSize)
	copy(buf[0:8], magicFooter)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(len(f.locators)))

	off := 16
	for _, loc := range f.locators {
		binary.LittleEndian.PutUint32(buf[off:off+4], uint32(loc.ChunkID))
		binary.LittleEndian.PutUint32(buf[off+4:off+8], loc.Flags)
		binary.LittleEndian.PutUint64(buf[off+8:off+16], loc.Offset)
		binary.LittleEndian.PutUint64(buf[off+16:off+24], loc.Length)
		off += 24
	}

	binary.LittleEndian.PutUint64(buf[countsOff:countsOff+8], f.nodeCount)
	binary.LittleEndian.PutUint64(buf[countsOff+8:countsOff+16], f.edgeCount)
	binary.LittleEndian.PutUint32(buf[countsOff+16:countsOff+20], f.nodeAttrCount)
	binary.LittleEndian.PutUint32(buf[countsOff+20:countsOff+24], f.edgeAttrCount)
	binary.LittleEndian.PutUint32(buf[countsOff+24:countsOff+28], f.netAttrCount)

	crcOff := footerSize - 4
	binary.LittleEndian.PutUint32(buf[crcOff:crcOff+4], f.crc32)

	if _, err := w.Write(buf); err != nil {
		return ferrors.IOError("WriteFooter", err)
	}
	return nil
}

func readFooter(r io.Reader) (footer, error) {
	buf := make([]byte, footerSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return footer{}, ferrors.IOError("ReadFooter", err)
	}
	if string(buf[0:8]) != magicFooter {
		return footer{}, ferrors.CorruptFormat("ReadFooter", "magic mismatch")
	}
	count := binary.LittleEndian.Uint64(buf[8:16])
	if count > maxLocators {
		return footer{}, ferrors.CorruptFormat("ReadFooter", "chunk count exceeds locator capacity")
	}
	countsOff := 16 + int(count)*24
	if countsOff+28 > footerSize-4 {
		return footer{}, ferrors.CorruptFormat("ReadFooter", "chunk count exceeds footer space")
	}
	f := footer{}
	off := 16
	for i := uint64(0); i < count; i++ {
		f.locators = append(f.locators, locator{
			ChunkID: ChunkID(binary.LittleEndian.Uint32(buf[off : off+4])),
			Flags:   binary.LittleEndian.Uint32(buf[off+4 : off+8]),
			Offset:  binary.LittleEndian.Uint64(buf[off+8 : off+16]),
			Length:  binary.LittleEndian.Uint64(buf[off+16 : off+24]),
		})
		off += 24
	}
	f.nodeCount = binary.LittleEndian.Uint64(buf[countsOff : countsOff+8])
	f.edgeCount = binary.LittleEndian.Uint64(buf[countsOff+8 : countsOff+16])
	f.nodeAttrCount = binary.LittleEndian.Uint32(buf[countsOff+16 : countsOff+20])
	f.edgeAttrCount = binary.LittleEndian.Uint32(buf[countsOff+20 : countsOff+24])
	f.netAttrCount = binary.LittleEndian.Uint32(buf[countsOff+24 : countsOff+28])
	crcOff := footerSize - 4
	f.crc32 = binary.LittleEndian.Uint32(buf[crcOff : crcOff+4])
	return f, nil
}

func newCRC() uint32                        { return 0 }
func updateCRC(crc uint32, b []byte) uint32 { return crc32.Update(crc, crc32.IEEETable, b) }
