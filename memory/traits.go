package memory

import (
	"unsafe"

	"github.com/leoovs/Xuzumi/typemeta"
)

// Opaque is the element type of type-erased handles. A SharedPtr[Opaque]
// keeps its resource alive without knowing what it is; As recovers the
// concrete handle.
type Opaque struct{}

// siblingInfo maps a nominal element type to the type a control block
// records for it: []T for array resources, T otherwise.
func siblingInfo[T any](array bool) typemeta.TypeInfo {
	if array {
		return typemeta.Of[[]T]()
	}
	return typemeta.Of[T]()
}

func elements[T any](p *T, n int, array bool) []T {
	if p == nil {
		return nil
	}
	if !array {
		n = 1
	}
	return unsafe.Slice(p, n)
}

func elementAt[T any](p *T, i int) *T {
	return (*T)(unsafe.Add(unsafe.Pointer(p), uintptr(i)*unsafe.Sizeof(*p)))
}

func reinterpret[U, T any](p *T) *U {
	return (*U)(unsafe.Pointer(p))
}

// AddressOf returns p as an integer, for diagnostics and address lookups.
func AddressOf[T any](p *T) uintptr {
	return uintptr(unsafe.Pointer(p))
}

func unsafeSliceData[T any](s []T) *T {
	return unsafe.SliceData(s)
}
