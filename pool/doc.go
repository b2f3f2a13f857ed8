// Package pool implements fixed-size chunk pools and the allocator that
// routes typed allocations to them.
//
// # Layout
//
// Each resource type gets an ObjectPool backed by a MemoryPool. A
// MemoryPool grows by MemoryBlocks of Specification.BlockSize chunks; a
// Chunk stores a small header (the resource TypeID and the index of its
// block) next to the resource itself. Blocks are never freed, so a pool's
// footprint only grows.
//
//	alloc := pool.New(pool.Specification{BlockSize: 3})
//	e := pool.AllocateShared(alloc, Entity{ID: 1})
//	e.Reset() // chunk returned, Entity.Drop called
//
// # Chunk Reuse
//
// Freed chunks are pushed on their block's stack and the block moves to
// the front of the pool's replenished queue. The next allocation takes
// the most recently freed chunk.
//
// # Deallocation
//
// PoolAllocator.Deallocate takes an untyped address, finds the block whose
// arena contains it and reads the chunk header to pick the pool. Nil
// pointers and repeated frees are logged as warnings, addresses no pool
// owns as errors; none of them change any state. TryDeallocate returns the
// same diagnostics as *errors.Error values.
//
// # Factory Teardown
//
// Shared pointers from AllocateShared carry deleters guarded by the
// allocator's memory.FactoryExpirationGuard. After Close those deleters
// leak the chunk with a warning instead of calling into the allocator.
//
// # Observability
//
// Observers receive pool, block and chunk events. Collector exports
// per-type statistics to prometheus.
package pool
