package memory

import "github.com/leoovs/Xuzumi/typemeta"

// WeakPtr observes a shared resource without keeping it alive. Lock
// upgrades it to a SharedPtr while the resource still exists.
type WeakPtr[T any] struct {
	ptr    *T
	length int
	array  bool
	ref    Referencer
}

// NewWeak returns a weak handle to s's resource.
func NewWeak[T any](s *SharedPtr[T]) *WeakPtr[T] {
	w := &WeakPtr[T]{}
	w.AssignShared(s)
	return w
}

// AssignShared makes w observe s's resource.
func (w *WeakPtr[T]) AssignShared(s *SharedPtr[T]) {
	if s == nil {
		w.Reset()
		return
	}
	ref := s.ref.Copy()
	ref.Weakify()
	w.ref.Reset()
	w.ptr, w.length, w.array, w.ref = s.ptr, s.length, s.array, ref
}

// Lock returns a strong handle to the resource, or an empty handle if the
// resource has expired.
func (w *WeakPtr[T]) Lock() *SharedPtr[T] {
	if w.Expired() {
		return &SharedPtr[T]{}
	}
	ref := w.ref.Copy()
	if !ref.Strongify() {
		ref.Reset()
		return &SharedPtr[T]{}
	}
	return &SharedPtr[T]{ptr: w.ptr, length: w.length, array: w.array, ref: ref}
}

// Expired reports whether the resource has been deleted or w is empty.
func (w *WeakPtr[T]) Expired() bool {
	return w == nil || w.ref.Expired()
}

// UseCount returns the number of strong handles to the resource.
func (w *WeakPtr[T]) UseCount() uint32 {
	if w == nil {
		return 0
	}
	return w.ref.UseCount()
}

func (w *WeakPtr[T]) Copy() *WeakPtr[T] {
	if w == nil {
		return &WeakPtr[T]{}
	}
	return &WeakPtr[T]{ptr: w.ptr, length: w.length, array: w.array, ref: w.ref.Copy()}
}

func (w *WeakPtr[T]) Move() *WeakPtr[T] {
	if w == nil {
		return &WeakPtr[T]{}
	}
	m := &WeakPtr[T]{ptr: w.ptr, length: w.length, array: w.array, ref: w.ref.Move()}
	w.ptr, w.length, w.array = nil, 0, false
	return m
}

func (w *WeakPtr[T]) Assign(other *WeakPtr[T]) {
	if w == other {
		return
	}
	if other == nil {
		w.Reset()
		return
	}
	ref := other.ref.Copy()
	w.ref.Reset()
	w.ptr, w.length, w.array, w.ref = other.ptr, other.length, other.array, ref
}

func (w *WeakPtr[T]) MoveAssign(other *WeakPtr[T]) {
	if w == other {
		return
	}
	if other == nil {
		w.Reset()
		return
	}
	w.ref.MoveAssign(&other.ref)
	w.ptr, w.length, w.array = other.ptr, other.length, other.array
	other.ptr, other.length, other.array = nil, 0, false
}

// Reset drops the weak reference. The control block is torn down if it
// was the last reference of any kind.
func (w *WeakPtr[T]) Reset() {
	if w == nil {
		return
	}
	w.ptr, w.length, w.array = nil, 0, false
	w.ref.Reset()
}

func (w *WeakPtr[T]) Swap(other *WeakPtr[T]) {
	*w, *other = *other, *w
}

func (w *WeakPtr[T]) ResourceTypeInfo() typemeta.TypeInfo {
	if w == nil {
		return typemeta.TypeInfo{}
	}
	return w.ref.ResourceTypeInfo()
}
