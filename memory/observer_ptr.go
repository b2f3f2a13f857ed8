package memory

import (
	"go.uber.org/zap"

	"github.com/leoovs/Xuzumi/typemeta"
)

// ObserverPtr is a non-owning pointer. It neither counts references nor
// deletes; it only documents that the holder does not own the resource.
type ObserverPtr[T any] struct {
	watched *T
}

func NewObserver[T any](p *T) ObserverPtr[T] {
	return ObserverPtr[T]{watched: p}
}

// ObserveShared watches the resource of s without taking a reference.
func ObserveShared[T any](s *SharedPtr[T]) ObserverPtr[T] {
	return ObserverPtr[T]{watched: s.Get()}
}

// ObserveUnique watches the resource of u.
func ObserveUnique[T any](u *UniquePtr[T]) ObserverPtr[T] {
	return ObserverPtr[T]{watched: u.Get()}
}

// ConvertObserver watches o's resource through type T, where U is T or
// embeds T as its first field.
func ConvertObserver[T, U any](o ObserverPtr[U]) ObserverPtr[T] {
	if o.watched == nil || !compatible[U, T]() {
		return ObserverPtr[T]{}
	}
	return ObserverPtr[T]{watched: reinterpret[T](o.watched)}
}

func (o ObserverPtr[T]) Get() *T     { return o.watched }
func (o ObserverPtr[T]) Valid() bool { return o.watched != nil }

func (o ObserverPtr[T]) Deref() *T {
	assert(o.Valid(), "dereferencing an empty ObserverPtr",
		zap.Stringer("resource", typemeta.Of[T]()))
	return o.watched
}

func (o ObserverPtr[T]) Equal(other ObserverPtr[T]) bool {
	return o.watched == other.watched
}

// Release stops watching and returns the previously watched pointer.
func (o *ObserverPtr[T]) Release() *T {
	p := o.watched
	o.watched = nil
	return p
}

// Reset watches p instead.
func (o *ObserverPtr[T]) Reset(p *T) {
	o.watched = p
}
