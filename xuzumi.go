package xuzumi

import "unsafe"

// Dropper is optionally implemented by resources that need cleanup when
// their owner deletes them. Default deleters and pools call Drop exactly
// once per resource lifetime.
type Dropper interface {
	Drop()
}

// Deallocator returns type-erased resource memory to whoever produced it.
type Deallocator interface {
	Deallocate(resource unsafe.Pointer)
}
