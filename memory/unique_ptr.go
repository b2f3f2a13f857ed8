package memory

import (
	"go.uber.org/zap"

	"github.com/leoovs/Xuzumi/errors"
	"github.com/leoovs/Xuzumi/typemeta"
)

type uniqueBlock interface {
	Delete()
	ResourceTypeInfo() typemeta.TypeInfo
	DeleterTypeInfo() typemeta.TypeInfo
}

type uniqueControlBlock[T any] struct {
	resource     *T
	deleter      func(*T)
	resourceInfo typemeta.TypeInfo
	deleterInfo  typemeta.TypeInfo
}

func (b *uniqueControlBlock[T]) Delete() {
	p := b.resource
	b.resource = nil
	if p != nil {
		b.deleter(p)
	}
}

func (b *uniqueControlBlock[T]) ResourceTypeInfo() typemeta.TypeInfo { return b.resourceInfo }
func (b *uniqueControlBlock[T]) DeleterTypeInfo() typemeta.TypeInfo  { return b.deleterInfo }

// UniquePtr is the sole owner of a resource. It is not copyable; ownership
// moves with Move, MoveAssign, Mimicry or Share.
type UniquePtr[T any] struct {
	ptr    *T
	length int
	array  bool
	block  uniqueBlock
}

func NewUnique[T any](p *T) *UniquePtr[T] {
	u := &UniquePtr[T]{}
	u.bind(p, 0, false, DefaultDelete[T], typemeta.Of[DefaultDeleter[T]]())
	return u
}

func NewUniqueWithDeleter[T any, D ~func(*T)](p *T, deleter D) *UniquePtr[T] {
	u := &UniquePtr[T]{}
	u.bind(p, 0, false, deleter, typemeta.Of[D]())
	return u
}

func NewUniqueSlice[T any](s []T) *UniquePtr[T] {
	return NewUniqueSliceWithDeleter(s, DefaultArrayDeleter[T](DefaultDeleteArray[T]))
}

func NewUniqueSliceWithDeleter[T any, D ~func([]T)](s []T, deleter D) *UniquePtr[T] {
	u := &UniquePtr[T]{}
	if s == nil {
		return u
	}
	if deleter == nil {
		deleter = DefaultDeleteArray[T]
	}
	n := len(s)
	u.bind(unsafeSliceData(s), n, true, func(p *T) { deleter(elements(p, n, true)) }, typemeta.Of[D]())
	return u
}

// NewUniqueFrom owns a resource of type U through a handle of type T, where
// U is T or embeds T as its first field.
func NewUniqueFrom[T, U any](p *U) *UniquePtr[T] {
	u := &UniquePtr[T]{}
	if p == nil || !compatible[U, T]() {
		return u
	}
	u.ptr = reinterpret[T](p)
	u.block = &uniqueControlBlock[U]{
		resource:     p,
		deleter:      DefaultDelete[U],
		resourceInfo: typemeta.Of[U](),
		deleterInfo:  typemeta.Of[DefaultDeleter[U]](),
	}
	return u
}

func MakeUnique[T any](v T) *UniquePtr[T] {
	p := new(T)
	*p = v
	return NewUnique(p)
}

func MakeUniqueSlice[T any](n int) *UniquePtr[T] {
	if !assert(n >= 0, "negative array length", zap.Int("length", n)) {
		return &UniquePtr[T]{}
	}
	return NewUniqueSlice(make([]T, n))
}

func (u *UniquePtr[T]) bind(p *T, n int, array bool, deleter func(*T), deleterInfo typemeta.TypeInfo) {
	u.Reset()
	if p == nil {
		return
	}
	u.ptr, u.length, u.array = p, n, array
	u.block = &uniqueControlBlock[T]{
		resource:     p,
		deleter:      deleter,
		resourceInfo: siblingInfo[T](array),
		deleterInfo:  deleterInfo,
	}
}

// Reset deletes the resource and leaves u empty.
func (u *UniquePtr[T]) Reset() {
	if u == nil {
		return
	}
	block := u.block
	u.ptr, u.length, u.array, u.block = nil, 0, false, nil
	if block != nil {
		block.Delete()
	}
}

// ResetTo deletes the current resource and owns p with the default deleter.
func (u *UniquePtr[T]) ResetTo(p *T) {
	u.bind(p, 0, false, DefaultDelete[T], typemeta.Of[DefaultDeleter[T]]())
}

func (u *UniquePtr[T]) ResetWithDeleter(p *T, deleter Deleter[T]) {
	u.bind(p, 0, false, deleter, typemeta.Of[Deleter[T]]())
}

// Release gives up ownership without deleting and returns the raw pointer.
func (u *UniquePtr[T]) Release() *T {
	if u == nil {
		return nil
	}
	p := u.ptr
	u.ptr, u.length, u.array, u.block = nil, 0, false, nil
	return p
}

func (u *UniquePtr[T]) Move() *UniquePtr[T] {
	if u == nil {
		return &UniquePtr[T]{}
	}
	m := *u
	u.ptr, u.length, u.array, u.block = nil, 0, false, nil
	return &m
}

// MoveAssign deletes u's resource and takes over other's.
func (u *UniquePtr[T]) MoveAssign(other *UniquePtr[T]) {
	if u == other {
		return
	}
	if other == nil {
		u.Reset()
		return
	}
	m := other.Move()
	u.Reset()
	*u = *m
}

func (u *UniquePtr[T]) Swap(other *UniquePtr[T]) {
	*u, *other = *other, *u
}

// Share converts the unique owner into a SharedPtr. The resource keeps its
// deleter and type information; u is left empty.
func (u *UniquePtr[T]) Share() *SharedPtr[T] {
	if !u.Valid() {
		return &SharedPtr[T]{}
	}
	block := u.block
	s := &SharedPtr[T]{ptr: u.ptr, length: u.length, array: u.array}
	u.ptr, u.length, u.array, u.block = nil, 0, false, nil

	s.ref.Bind(NewReferencingBlock(s.ptr, func(*T) { block.Delete() },
		block.ResourceTypeInfo(), block.DeleterTypeInfo()))
	return s
}

func (u *UniquePtr[T]) Get() *T {
	if u == nil {
		return nil
	}
	return u.ptr
}

func (u *UniquePtr[T]) Deref() *T {
	assert(u.Valid(), "dereferencing an empty UniquePtr",
		zap.Stringer("resource", typemeta.Of[T]()))
	return u.Get()
}

func (u *UniquePtr[T]) At(i int) *T {
	if !u.Valid() {
		assert(false, "indexing an empty UniquePtr")
		return nil
	}
	if i < 0 || i >= u.Len() {
		err := errors.OutOfBounds(errors.PhaseAccess, i, u.Len())
		assert(false, "index out of range", zap.Error(err))
		return nil
	}
	return elementAt(u.ptr, i)
}

func (u *UniquePtr[T]) Slice() []T {
	if !u.Valid() {
		return nil
	}
	return elements(u.ptr, u.length, u.array)
}

func (u *UniquePtr[T]) Len() int {
	switch {
	case !u.Valid():
		return 0
	case u.array:
		return u.length
	default:
		return 1
	}
}

func (u *UniquePtr[T]) IsArray() bool { return u != nil && u.array }
func (u *UniquePtr[T]) Valid() bool   { return u != nil && u.ptr != nil }

// Equal reports whether u and other point at the same resource.
func (u *UniquePtr[T]) Equal(other *UniquePtr[T]) bool {
	return u.Get() == other.Get()
}

func (u *UniquePtr[T]) ResourceTypeInfo() typemeta.TypeInfo {
	if u == nil || u.block == nil {
		return typemeta.TypeInfo{}
	}
	return u.block.ResourceTypeInfo()
}

func (u *UniquePtr[T]) DeleterTypeInfo() typemeta.TypeInfo {
	if u == nil || u.block == nil {
		return typemeta.TypeInfo{}
	}
	return u.block.DeleterTypeInfo()
}

// Mimicry moves ownership into a handle of type U without checking the
// resource type. u is left empty.
func Mimicry[U, T any](u *UniquePtr[T]) *UniquePtr[U] {
	if u == nil {
		return &UniquePtr[U]{}
	}
	out := &UniquePtr[U]{
		ptr:    reinterpret[U](u.ptr),
		length: u.length,
		array:  u.array,
		block:  u.block,
	}
	u.ptr, u.length, u.array, u.block = nil, 0, false, nil
	return out
}

// MimicrySafe moves ownership into a handle of type U when the resource is
// exactly of type U. On mismatch it returns an empty handle and u keeps the
// resource.
func MimicrySafe[U, T any](u *UniquePtr[T]) *UniquePtr[U] {
	if !u.Valid() {
		return &UniquePtr[U]{}
	}
	if want := siblingInfo[U](u.array); !u.ResourceTypeInfo().Equal(want) {
		castMismatch(u.ResourceTypeInfo(), want)
		return &UniquePtr[U]{}
	}
	return Mimicry[U](u)
}
