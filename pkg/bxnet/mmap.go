package bxnet

import (
	"io"

	"golang.org/x/exp/mmap"

	"github.com/dd0wney/xnetgraph/pkg/ferrors"
	"github.com/dd0wney/xnetgraph/pkg/graph"
)

// ReadFileMmap parses an uncompressed BXNet container from a
// memory-mapped file. The mapped region is handed to Read through a
// section reader, so Read still copies the whole file into memory with
// io.ReadAll before parsing. This path only covers plain BXNet, not
// ZXNet/SXNet.
//
// Grounded on the teacher's pkg/lsm/sstable_mmap.go, which opens
// on-disk sstables with the same golang.org/x/exp/mmap.Open for
// zero-copy reads; here the mapped region backs the BXNet parser
// instead of an LSM sstable's entry/index blocks.
func ReadFileMmap(path string) (*graph.Graph, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, ferrors.IOError("ReadFileMmap", err)
	}
	defer r.Close()

	sr := io.NewSectionReader(r, 0, int64(r.Len()))
	return Read(sr)
}
