// Package xnet implements the XNET line-oriented text container (§4.7.1):
// a human-readable sibling of the bxnet binary format, sharing its node/
// edge/attribute model but expressed as `#`-prefixed directives and
// value lines.
//
// Grounded on the teacher's binary WAL framing generalized to text the
// same way pkg/bxnet generalizes it to chunks; the directive grammar
// and legacy-mode detection follow original_source's CXNetworkXNet.c
// line-by-line reader rather than any teacher text format, since
// nothing in the pack parses a directive-based text container.
package xnet

import (
	"strconv"

	"github.com/dd0wney/xnetgraph/pkg/ferrors"
	"github.com/dd0wney/xnetgraph/pkg/graph"
)

const headerLine = "#XNET 1.0.0"

const originalIDsAttr = "_original_ids_"

// typeCode renders a base type and dimension as the wire type code of
// §4.7.1 (scalar codes bare, vector codes dimension-suffixed).
func typeCode(bt graph.BaseType, dimension int) (string, bool) {
	var letter string
	switch bt {
	case graph.TypeString:
		if dimension != 1 {
			return "", false
		}
		return "s", true
	case graph.TypeF32:
		letter = "f"
	case graph.TypeI32:
		letter = "i"
	case graph.TypeU32:
		letter = "u"
	case graph.TypeI64:
		letter = "I"
	case graph.TypeU64:
		letter = "U"
	case graph.TypeCategory:
		letter = "c"
	default:
		return "", false
	}
	if dimension == 1 {
		return letter, true
	}
	return letter + strconv.Itoa(dimension), true
}

// parseTypeCode parses a wire type code, including the legacy scalar/
// vector float aliases n, v2, v3.
func parseTypeCode(code string) (graph.BaseType, int, error) {
	switch code {
	case "n":
		return graph.TypeF32, 1, nil
	case "v2":
		return graph.TypeF32, 2, nil
	case "v3":
		return graph.TypeF32, 3, nil
	case "s":
		return graph.TypeString, 1, nil
	}
	if len(code) == 0 {
		return 0, 0, errInvalidTypeCode(code)
	}
	letter := code[0]
	rest := code[1:]
	dim := 1
	if rest != "" {
		n, err := strconv.Atoi(rest)
		if err != nil || n < 1 {
			return 0, 0, errInvalidTypeCode(code)
		}
		dim = n
	}
	switch letter {
	case 'f':
		return graph.TypeF32, dim, nil
	case 'i':
		return graph.TypeI32, dim, nil
	case 'u':
		return graph.TypeU32, dim, nil
	case 'I':
		return graph.TypeI64, dim, nil
	case 'U':
		return graph.TypeU64, dim, nil
	case 'c':
		return graph.TypeCategory, dim, nil
	}
	return 0, 0, errInvalidTypeCode(code)
}

func errInvalidTypeCode(code string) error {
	return ferrors.CorruptFormat("ParseTypeCode", "invalid type code: "+code)
}
