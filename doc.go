// Package xuzumi provides the ownership and pooled-memory core of the
// Xuzumi engine.
//
// The library gives explicit, reference-counted ownership on top of Go
// values: resources are deleted deterministically through deleters, pooled
// resources are recycled through fixed-size chunks, and factories can hand
// out resources that safely outlive them.
//
// # Architecture Overview
//
//	xuzumi/          Root package with the Dropper and Deallocator interfaces
//	├── typemeta/    Stable TypeID and TypeInfo values for Go types
//	├── memory/      SharedPtr, WeakPtr, UniquePtr, ObserverPtr, control blocks
//	├── pool/        Chunk, block and pool allocator with dangle protection
//	├── handle/      Recycled handle IDs and a handle-to-pointer table
//	├── errors/      Structured error types for diagnostics
//	└── cmd/sandbox  Demo CLI and interactive pool inspector
//
// # Quick Start
//
//	alloc := pool.New(pool.Specification{BlockSize: 64})
//	defer alloc.Close()
//
//	e := pool.AllocateShared(alloc, Entity{ID: 7})
//	other := e.Copy()
//	fmt.Println(other.UseCount()) // 2
//
//	e.Reset()
//	other.Reset() // chunk goes back to its block
//
// # Explicit Lifetimes
//
// Go has no destructors. Every handle operation that would otherwise happen
// implicitly is a method: Copy shares ownership, Move transfers it and
// Reset releases it. A handle that is dropped without Reset keeps its
// reference and the resource is never deleted.
//
// # Thread Safety
//
// Reference counts are atomic, so handles to the same resource may be
// copied and reset from different goroutines. A single handle value is
// not safe for concurrent mutation. Pool allocators are not synchronized
// and must be used by one goroutine at a time.
package xuzumi
