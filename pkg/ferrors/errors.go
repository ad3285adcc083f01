// Package ferrors provides the structured error taxonomy shared by every
// component of the graph engine (§7).
package ferrors

import (
	"errors"
	"fmt"
)

// Kind is one of the contractual error kinds of §7. Names are contracts,
// not identifiers: callers match on Kind, never on Error() text.
type Kind uint8

const (
	KindInvalidArgument Kind = iota
	KindOutOfRange
	KindNotFound
	KindWrongType
	KindNotSupported
	KindIOError
	KindCorruptFormat
	KindOutOfMemory
	KindQueryError
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindOutOfRange:
		return "out_of_range"
	case KindNotFound:
		return "not_found"
	case KindWrongType:
		return "wrong_type"
	case KindNotSupported:
		return "not_supported"
	case KindIOError:
		return "io_error"
	case KindCorruptFormat:
		return "corrupt_format"
	case KindOutOfMemory:
		return "out_of_memory"
	case KindQueryError:
		return "query_error"
	default:
		return "unknown"
	}
}

// GraphError is the structured error type produced by every public
// operation. It mirrors the teacher's StorageError (Op/Entity/ID/Field/
// Cause/Context) with Entity generalized to the §7 Kind taxonomy.
type GraphError struct {
	Kind    Kind
	Op      string // operation that failed, e.g. "AddNodes", "DefineAttribute"
	Entity  string // "node", "edge", "attribute", "selector", ...
	Index   uint64 // node/edge index, if applicable
	Field   string // attribute/field name, if applicable
	Offset  int    // byte offset for query_error; 0 by convention for bind errors
	Cause   error
	Context string
}

func (e *GraphError) Error() string {
	base := fmt.Sprintf("%s: %s", e.Kind, e.Op)
	if e.Entity != "" {
		base += " " + e.Entity
	}
	if e.Index != 0 {
		base += fmt.Sprintf(" #%d", e.Index)
	}
	if e.Field != "" {
		base += fmt.Sprintf(" (field %s)", e.Field)
	}
	if e.Context != "" {
		base += fmt.Sprintf(" (%s)", e.Context)
	}
	if e.Cause != nil {
		base += fmt.Sprintf(": %v", e.Cause)
	}
	return base
}

func (e *GraphError) Unwrap() error { return e.Cause }

// Is reports whether target matches this error's kind-sentinel or its cause.
func (e *GraphError) Is(target error) bool {
	if target == nil {
		return false
	}
	if ge, ok := target.(*GraphError); ok {
		return ge.Kind == e.Kind && e.Cause == nil && ge.Cause == nil
	}
	return errors.Is(e.Cause, target)
}

// Builder provides a fluent interface for constructing GraphErrors.
type Builder struct {
	err GraphError
}

// New starts a new error builder for the given kind and operation.
func New(kind Kind, op string) *Builder {
	return &Builder{err: GraphError{Kind: kind, Op: op}}
}

func (b *Builder) Entity(e string) *Builder    { b.err.Entity = e; return b }
func (b *Builder) Node(id uint64) *Builder      { b.err.Entity = "node"; b.err.Index = id; return b }
func (b *Builder) Edge(id uint64) *Builder      { b.err.Entity = "edge"; b.err.Index = id; return b }
func (b *Builder) Field(name string) *Builder   { b.err.Field = name; return b }
func (b *Builder) Offset(off int) *Builder      { b.err.Offset = off; return b }
func (b *Builder) Context(ctx string) *Builder  { b.err.Context = ctx; return b }
func (b *Builder) Cause(err error) *Builder     { b.err.Cause = err; return b }
func (b *Builder) Build() *GraphError           { return &b.err }
func (b *Builder) Err() error                   { return &b.err }

// Convenience constructors for the most common cases.

func NotFound(op, entity string, id uint64) error {
	return New(KindNotFound, op).Node(id).Entity(entity).Err()
}

func OutOfRange(op string, index, capacity uint64) error {
	return New(KindOutOfRange, op).
		Context(fmt.Sprintf("index %d >= capacity %d", index, capacity)).Err()
}

func InvalidArgument(op, context string) error {
	return New(KindInvalidArgument, op).Context(context).Err()
}

func WrongType(op, field string) error {
	return New(KindWrongType, op).Field(field).Err()
}

func NotSupported(op, context string) error {
	return New(KindNotSupported, op).Context(context).Err()
}

func IOError(op string, cause error) error {
	return New(KindIOError, op).Cause(cause).Err()
}

func CorruptFormat(op, context string) error {
	return New(KindCorruptFormat, op).Context(context).Err()
}

func QueryError(op string, offset int, cause error) error {
	return New(KindQueryError, op).Offset(offset).Cause(cause).Err()
}

// KindOf extracts the Kind from err, if it (or something it wraps) is a
// *GraphError. ok is false for foreign errors.
func KindOf(err error) (Kind, bool) {
	var ge *GraphError
	if errors.As(err, &ge) {
		return ge.Kind, true
	}
	return 0, false
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
