// Package pools provides object pooling for reducing GC pressure.
//
// This package contains pool implementations for commonly allocated
// byte and index slices used by the binary codec (pkg/bxnet) and the
// XNET text writer (pkg/xnet):
//
//   - BytePool: size-class based byte slice pooling, for BXNet framed
//     chunk staging
//   - Uint64Pool: pooling for uint64 slices (the XNET writer's active
//     node/edge index lists)
package pools
