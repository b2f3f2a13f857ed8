package memory

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/leoovs/Xuzumi/errors"
	"github.com/leoovs/Xuzumi/typemeta"
)

// SharedPtr is a strong, reference-counted handle to a resource of type T,
// or to an array of T when built from a slice.
//
// The resource is deleted when the last SharedPtr sharing its control block
// is Reset or moved away from. A nil *SharedPtr behaves like an empty one
// for all read-only methods.
type SharedPtr[T any] struct {
	ptr    *T
	length int
	array  bool
	ref    Referencer
}

// NewShared takes ownership of p with the default deleter. A nil p yields
// an empty handle.
func NewShared[T any](p *T) *SharedPtr[T] {
	s := &SharedPtr[T]{}
	s.bind(p, 0, false, DefaultDelete[T], typemeta.Of[DefaultDeleter[T]]())
	return s
}

// NewSharedWithDeleter takes ownership of p. deleter runs once, when the
// last strong reference is released, and its type is recorded as the
// handle's DeleterTypeInfo.
func NewSharedWithDeleter[T any, D ~func(*T)](p *T, deleter D) *SharedPtr[T] {
	s := &SharedPtr[T]{}
	s.bind(p, 0, false, deleter, typemeta.Of[D]())
	return s
}

// NewSharedSlice takes ownership of the elements of s. The default array
// deleter runs Drop on every element.
func NewSharedSlice[T any](s []T) *SharedPtr[T] {
	return NewSharedSliceWithDeleter(s, DefaultArrayDeleter[T](DefaultDeleteArray[T]))
}

// NewSharedSliceWithDeleter takes ownership of the elements of s.
func NewSharedSliceWithDeleter[T any, D ~func([]T)](s []T, deleter D) *SharedPtr[T] {
	out := &SharedPtr[T]{}
	if s == nil {
		return out
	}
	if deleter == nil {
		deleter = DefaultDeleteArray[T]
	}
	n := len(s)
	out.bind(unsafeSliceData(s), n, true, func(p *T) { deleter(elements(p, n, true)) }, typemeta.Of[D]())
	return out
}

// NewSharedFrom takes ownership of a resource of type U through a handle
// of type T. U must be T or embed T as its first field. The control block
// records U, so As[U] recovers the original handle.
func NewSharedFrom[T, U any](p *U) *SharedPtr[T] {
	out := &SharedPtr[T]{}
	if p == nil {
		return out
	}
	if !compatible[U, T]() {
		return out
	}
	out.ptr = reinterpret[T](p)
	out.ref.Bind(NewReferencingBlock(p, DefaultDelete[U], typemeta.Of[U](), typemeta.Of[DefaultDeleter[U]]()))
	return out
}

// MakeShared allocates a copy of v and shares it.
func MakeShared[T any](v T) *SharedPtr[T] {
	p := new(T)
	*p = v
	return NewShared(p)
}

// MakeSharedSlice allocates n zero elements and shares them as an array.
func MakeSharedSlice[T any](n int) *SharedPtr[T] {
	if !assert(n >= 0, "negative array length", zap.Int("length", n)) {
		return &SharedPtr[T]{}
	}
	return NewSharedSlice(make([]T, n))
}

func (s *SharedPtr[T]) bind(p *T, n int, array bool, deleter func(*T), deleterInfo typemeta.TypeInfo) {
	s.Reset()
	if p == nil {
		return
	}
	s.ptr, s.length, s.array = p, n, array
	s.ref.Bind(NewReferencingBlock(p, deleter, siblingInfo[T](array), deleterInfo))
}

// ResetTo releases the current resource and takes ownership of p with the
// default deleter.
func (s *SharedPtr[T]) ResetTo(p *T) {
	s.bind(p, 0, false, DefaultDelete[T], typemeta.Of[DefaultDeleter[T]]())
}

// ResetWithDeleter releases the current resource and takes ownership of p.
func (s *SharedPtr[T]) ResetWithDeleter(p *T, deleter Deleter[T]) {
	s.bind(p, 0, false, deleter, typemeta.Of[Deleter[T]]())
}

// Reset releases the resource and leaves s empty.
func (s *SharedPtr[T]) Reset() {
	if s == nil {
		return
	}
	s.ptr, s.length, s.array = nil, 0, false
	s.ref.Reset()
}

// Copy returns a new handle sharing ownership with s.
func (s *SharedPtr[T]) Copy() *SharedPtr[T] {
	if s == nil {
		return &SharedPtr[T]{}
	}
	return &SharedPtr[T]{ptr: s.ptr, length: s.length, array: s.array, ref: s.ref.Copy()}
}

// Move returns a handle that took over s's reference and leaves s empty.
func (s *SharedPtr[T]) Move() *SharedPtr[T] {
	if s == nil {
		return &SharedPtr[T]{}
	}
	m := &SharedPtr[T]{ptr: s.ptr, length: s.length, array: s.array, ref: s.ref.Move()}
	s.ptr, s.length, s.array = nil, 0, false
	return m
}

// Assign makes s share other's resource.
func (s *SharedPtr[T]) Assign(other *SharedPtr[T]) {
	if s == other {
		return
	}
	if other == nil {
		s.Reset()
		return
	}
	ref := other.ref.Copy()
	s.ref.Reset()
	s.ptr, s.length, s.array, s.ref = other.ptr, other.length, other.array, ref
}

// MoveAssign takes over other's reference and leaves other empty.
func (s *SharedPtr[T]) MoveAssign(other *SharedPtr[T]) {
	if s == other {
		return
	}
	if other == nil {
		s.Reset()
		return
	}
	s.ref.MoveAssign(&other.ref)
	s.ptr, s.length, s.array = other.ptr, other.length, other.array
	other.ptr, other.length, other.array = nil, 0, false
}

// Swap exchanges the resources of s and other.
func (s *SharedPtr[T]) Swap(other *SharedPtr[T]) {
	*s, *other = *other, *s
}

// Get returns the raw pointer, or nil for an empty handle. For arrays it
// points at the first element.
func (s *SharedPtr[T]) Get() *T {
	if s == nil {
		return nil
	}
	return s.ptr
}

// Deref returns the resource pointer. Dereferencing an empty handle is an
// assertion failure.
func (s *SharedPtr[T]) Deref() *T {
	assert(s.Valid(), "dereferencing an empty SharedPtr",
		zap.Stringer("resource", typemeta.Of[T]()))
	return s.Get()
}

// At returns a pointer to the i-th element. Index zero is valid for single
// resources. Out of range indexes fail an assertion and yield nil.
func (s *SharedPtr[T]) At(i int) *T {
	if !s.Valid() {
		assert(false, "indexing an empty SharedPtr")
		return nil
	}
	if i < 0 || i >= s.Len() {
		err := errors.OutOfBounds(errors.PhaseAccess, i, s.Len())
		assert(false, "index out of range", zap.Error(err))
		return nil
	}
	return elementAt(s.ptr, i)
}

// Slice returns the resource elements. Single resources yield a slice of
// length one.
func (s *SharedPtr[T]) Slice() []T {
	if !s.Valid() {
		return nil
	}
	return elements(s.ptr, s.length, s.array)
}

// Len returns the number of elements the handle addresses.
func (s *SharedPtr[T]) Len() int {
	switch {
	case !s.Valid():
		return 0
	case s.array:
		return s.length
	default:
		return 1
	}
}

func (s *SharedPtr[T]) IsArray() bool { return s != nil && s.array }

// Valid reports whether s points at a resource.
func (s *SharedPtr[T]) Valid() bool { return s != nil && s.ptr != nil }

// UseCount returns the number of strong handles sharing the resource.
func (s *SharedPtr[T]) UseCount() uint32 {
	if s == nil {
		return 0
	}
	return s.ref.UseCount()
}

// Equal reports whether s and other point at the same resource.
func (s *SharedPtr[T]) Equal(other *SharedPtr[T]) bool {
	return s.Get() == other.Get()
}

// ResourceTypeInfo returns the run-time type of the resource as recorded
// by the control block. It is the zero TypeInfo for an empty handle.
func (s *SharedPtr[T]) ResourceTypeInfo() typemeta.TypeInfo {
	if s == nil {
		return typemeta.TypeInfo{}
	}
	return s.ref.ResourceTypeInfo()
}

// DeleterTypeInfo returns the type of the deleter the resource was bound
// with.
func (s *SharedPtr[T]) DeleterTypeInfo() typemeta.TypeInfo {
	if s == nil {
		return typemeta.TypeInfo{}
	}
	return s.ref.DeleterTypeInfo()
}

// Holds reports whether the resource behind s is exactly of type U (or an
// array of U for array handles).
func Holds[U, T any](s *SharedPtr[T]) bool {
	if !s.Valid() {
		return false
	}
	return s.ResourceTypeInfo().Equal(siblingInfo[U](s.array))
}

// As returns a handle of type U sharing s's resource when Holds[U] is true,
// and an empty handle otherwise.
func As[U, T any](s *SharedPtr[T]) *SharedPtr[U] {
	if !Holds[U](s) {
		if s.Valid() {
			castMismatch(s.ResourceTypeInfo(), siblingInfo[U](s.array))
		}
		return &SharedPtr[U]{}
	}
	return AsUnsafe[U](s)
}

// AsUnsafe reinterprets s as a handle of type U without any check. The
// result shares s's resource.
func AsUnsafe[U, T any](s *SharedPtr[T]) *SharedPtr[U] {
	if s == nil {
		return &SharedPtr[U]{}
	}
	return &SharedPtr[U]{
		ptr:    reinterpret[U](s.ptr),
		length: s.length,
		array:  s.array,
		ref:    s.ref.Copy(),
	}
}

// Upcast converts s to a handle of a type T embeds as its first field.
// Unrelated types fail an assertion and yield an empty handle.
func Upcast[U, T any](s *SharedPtr[T]) *SharedPtr[U] {
	if !compatible[T, U]() {
		return &SharedPtr[U]{}
	}
	return AsUnsafe[U](s)
}

// Erase returns a type-erased handle sharing s's resource.
func Erase[T any](s *SharedPtr[T]) *SharedPtr[Opaque] {
	return AsUnsafe[Opaque](s)
}

func castMismatch(have, want typemeta.TypeInfo) {
	Logger().Debug("handle cast failed",
		zap.Error(errors.TypeMismatch(errors.PhaseCast, have.Name, want.Name)))
}

func compatible[From, To any]() bool {
	if typemeta.IsCompatible[From, To]() {
		return true
	}
	err := errors.Incompatible(errors.PhaseBind,
		reflect.TypeFor[From]().String(), reflect.TypeFor[To]().String())
	assert(false, "incompatible handle conversion", zap.Error(err))
	return false
}
