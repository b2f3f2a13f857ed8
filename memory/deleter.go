package memory

import xuzumi "github.com/leoovs/Xuzumi"

// Deleter destroys a single resource.
type Deleter[T any] func(*T)

// ArrayDeleter destroys the elements of an array resource.
type ArrayDeleter[T any] func([]T)

// DefaultDeleter is the deleter handles use when none is supplied. It calls
// Drop on resources implementing xuzumi.Dropper.
type DefaultDeleter[T any] func(*T)

// DefaultArrayDeleter is DefaultDeleter applied to every element.
type DefaultArrayDeleter[T any] func([]T)

// DefaultDelete runs the Dropper hook of p, if any.
func DefaultDelete[T any](p *T) {
	if p == nil {
		return
	}
	if d, ok := any(p).(xuzumi.Dropper); ok {
		d.Drop()
	}
}

// DefaultDeleteArray runs DefaultDelete on every element of s.
func DefaultDeleteArray[T any](s []T) {
	for i := range s {
		DefaultDelete(&s[i])
	}
}

// NoopDelete leaves the resource untouched.
func NoopDelete[T any](*T) {}
