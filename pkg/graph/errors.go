package graph

import "github.com/dd0wney/xnetgraph/pkg/ferrors"

// Thin, package-local wrappers over ferrors so call sites in pkg/graph
// read like the spec's error-kind vocabulary (§7) without repeating the
// builder boilerplate at every call site.

func OutOfRangeError(op string) error {
	return ferrors.New(ferrors.KindOutOfRange, op).Err()
}

func InvalidArgumentError(op, context string) error {
	return ferrors.InvalidArgument(op, context)
}

func NotFoundError(op, entity string, id uint64) error {
	return ferrors.NotFound(op, entity, id)
}

func WrongTypeError(op, field string) error {
	return ferrors.WrongType(op, field)
}

func NotSupportedError(op, context string) error {
	return ferrors.NotSupported(op, context)
}
