package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the ownership lifecycle the error occurred
type Phase string

const (
	PhaseConfig     Phase = "config"     // allocator/pool specification
	PhaseAllocate   Phase = "allocate"   // pool allocation
	PhaseDeallocate Phase = "deallocate" // pool deallocation
	PhaseBind       Phase = "bind"       // pointer construction and reset
	PhaseCast       Phase = "cast"       // As, Mimicry, Upcast
	PhaseDelete     Phase = "delete"     // deleter invocation
	PhaseAccess     Phase = "access"     // dereference of a handle
)

// Kind categorizes the error
type Kind string

const (
	KindNilPointer      Kind = "nil_pointer"
	KindForeignPointer  Kind = "foreign_pointer"
	KindDoubleFree      Kind = "double_free"
	KindTypeMismatch    Kind = "type_mismatch"
	KindIncompatible    Kind = "incompatible"
	KindDanglingFactory Kind = "dangling_factory"
	KindOutOfBounds     Kind = "out_of_bounds"
	KindInvalidInput    Kind = "invalid_input"
	KindNotFound        Kind = "not_found"
	KindClosed          Kind = "closed"
)

// Error is the structured error type used throughout the module
type Error struct {
	Cause        error
	Phase        Phase
	Kind         Kind
	ResourceType string
	FactoryType  string
	Detail       string
	Address      uintptr
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.ResourceType != "" {
		b.WriteString(" '")
		b.WriteString(e.ResourceType)
		b.WriteByte('\'')
	}

	if e.Address != 0 {
		fmt.Fprintf(&b, " at 0x%x", e.Address)
	}

	if e.FactoryType != "" {
		b.WriteString(" (factory '")
		b.WriteString(e.FactoryType)
		b.WriteString("')")
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// ResourceType sets the resource type name
func (b *Builder) ResourceType(t string) *Builder {
	b.err.ResourceType = t
	return b
}

// FactoryType sets the factory type name
func (b *Builder) FactoryType(t string) *Builder {
	b.err.FactoryType = t
	return b
}

// Address sets the offending resource address
func (b *Builder) Address(addr uintptr) *Builder {
	b.err.Address = addr
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, resourceType string) *Error {
	return &Error{
		Phase:        phase,
		Kind:         KindNilPointer,
		ResourceType: resourceType,
		Detail:       "nil pointer",
	}
}

// ForeignPointer creates an error for an address no pool owns
func ForeignPointer(phase Phase, addr uintptr) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindForeignPointer,
		Address: addr,
		Detail:  "address does not belong to any registered pool",
	}
}

// DoubleFree creates an error for a chunk that is already free
func DoubleFree(resourceType string, addr uintptr) *Error {
	return &Error{
		Phase:        PhaseDeallocate,
		Kind:         KindDoubleFree,
		ResourceType: resourceType,
		Address:      addr,
		Detail:       "chunk is not currently acquired",
	}
}

// DanglingFactory creates an error for a deleter whose factory is gone
func DanglingFactory(resourceType, factoryType string, addr uintptr) *Error {
	return &Error{
		Phase:        PhaseDelete,
		Kind:         KindDanglingFactory,
		ResourceType: resourceType,
		FactoryType:  factoryType,
		Address:      addr,
		Detail:       "parent instance has been destroyed before the deallocation could happen",
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, have, want string) *Error {
	return &Error{
		Phase:        phase,
		Kind:         KindTypeMismatch,
		ResourceType: have,
		Detail:       fmt.Sprintf("resource is not %s", want),
	}
}

// Incompatible creates an error for a conversion between unrelated types
func Incompatible(phase Phase, from, to string) *Error {
	return &Error{
		Phase:        phase,
		Kind:         KindIncompatible,
		ResourceType: from,
		Detail:       fmt.Sprintf("not compatible with %s", to),
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Closed creates an error for use of a closed allocator
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s is closed", what),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
