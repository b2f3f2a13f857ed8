package pool

import (
	"unsafe"

	"github.com/leoovs/Xuzumi/typemeta"
)

// MemoryBlock is a fixed arena of chunks with a stack of free ones.
// Acquiring pops the stack and disposing pushes back, so the most
// recently freed chunk is reused first.
type MemoryBlock[T any] struct {
	index     int
	info      typemeta.TypeInfo
	arena     []Chunk[T]
	available []*Chunk[T]
}

// NewMemoryBlock allocates size chunks in a single arena.
func NewMemoryBlock[T any](index, size int) *MemoryBlock[T] {
	b := &MemoryBlock[T]{
		index:     index,
		info:      typemeta.Of[T](),
		arena:     make([]Chunk[T], size),
		available: make([]*Chunk[T], 0, size),
	}
	// Pushed in reverse so chunks are handed out in arena order.
	for i := size - 1; i >= 0; i-- {
		b.available = append(b.available, &b.arena[i])
	}
	return b
}

// AcquireChunk takes a free chunk and stamps its header, or returns nil
// when the block is exhausted.
func (b *MemoryBlock[T]) AcquireChunk() *Chunk[T] {
	n := len(b.available)
	if n == 0 {
		return nil
	}
	c := b.available[n-1]
	b.available[n-1] = nil
	b.available = b.available[:n-1]

	c.inUse = true
	c.ResourceTypeID = b.info.ID
	c.ParentBlockIndex = b.index
	return c
}

// DisposeChunk returns c to the free stack. It reports false if c is not
// an acquired chunk of this block.
func (b *MemoryBlock[T]) DisposeChunk(c *Chunk[T]) bool {
	if c == nil || !c.inUse || b.indexOf(unsafe.Pointer(c)) < 0 {
		return false
	}
	c.inUse = false
	b.available = append(b.available, c)
	return true
}

// Chunk resolves the address of a resource stored in this block. It
// returns nil for addresses outside the arena or not pointing at a
// chunk's resource storage.
func (b *MemoryBlock[T]) Chunk(p unsafe.Pointer) *Chunk[T] {
	i := b.indexOf(p)
	if i < 0 {
		return nil
	}
	c := &b.arena[i]
	if unsafe.Pointer(&c.resource) != p {
		return nil
	}
	return c
}

// indexOf returns the arena slot containing p, or -1.
func (b *MemoryBlock[T]) indexOf(p unsafe.Pointer) int {
	if p == nil || len(b.arena) == 0 {
		return -1
	}
	start := uintptr(unsafe.Pointer(&b.arena[0]))
	size := unsafe.Sizeof(b.arena[0])
	addr := uintptr(p)
	if addr < start || addr >= start+size*uintptr(len(b.arena)) {
		return -1
	}
	return int((addr - start) / size)
}

func (b *MemoryBlock[T]) IsExhausted() bool { return len(b.available) == 0 }
func (b *MemoryBlock[T]) Available() int    { return len(b.available) }
func (b *MemoryBlock[T]) Capacity() int     { return len(b.arena) }
func (b *MemoryBlock[T]) Index() int        { return b.index }

// FootprintBytes is the size of the block's arena.
func (b *MemoryBlock[T]) FootprintBytes() uint64 {
	var c Chunk[T]
	return uint64(unsafe.Sizeof(c)) * uint64(len(b.arena))
}

// Occupancy reports, per arena slot, whether the chunk is acquired.
func (b *MemoryBlock[T]) Occupancy() []bool {
	out := make([]bool, len(b.arena))
	for i := range b.arena {
		out[i] = b.arena[i].inUse
	}
	return out
}
