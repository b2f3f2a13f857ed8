package pool

import (
	"unsafe"

	"github.com/gammazero/deque"
	"go.uber.org/zap"

	"github.com/leoovs/Xuzumi/typemeta"
)

// MemoryPool hands out chunks of type T from a growing list of blocks.
//
// Blocks that have free chunks are kept in a replenished queue. A block is
// pushed to the front when it is created and every time a chunk is
// disposed into it, so the block that last had a chunk freed is served
// first. The queue may hold the same block more than once; exhausted
// entries are skipped lazily and the queue is compacted once it holds
// more than two entries per block. Blocks are never released.
type MemoryPool[T any] struct {
	spec        Specification
	info        typemeta.TypeInfo
	blocks      []*MemoryBlock[T]
	replenished deque.Deque[*MemoryBlock[T]]
	stats       counters

	onBlockCreated func(*MemoryBlock[T])
}

// NewMemoryPool creates an empty pool. No block is allocated until the
// first chunk is acquired.
func NewMemoryPool[T any](spec Specification) *MemoryPool[T] {
	if spec.Validate() != nil {
		spec = DefaultSpecification()
	}
	return &MemoryPool[T]{
		spec: spec,
		info: typemeta.Of[T](),
	}
}

// GetActiveBlock returns a block with at least one free chunk, creating
// one if none is replenished.
func (p *MemoryPool[T]) GetActiveBlock() *MemoryBlock[T] {
	for p.replenished.Len() > 0 {
		if b := p.replenished.Front(); !b.IsExhausted() {
			return b
		}
		p.replenished.PopFront()
	}
	return p.grow()
}

func (p *MemoryPool[T]) grow() *MemoryBlock[T] {
	b := NewMemoryBlock[T](len(p.blocks), p.spec.BlockSize)
	p.blocks = append(p.blocks, b)
	p.replenished.PushFront(b)

	p.stats.blocks.Add(1)
	p.stats.capacity.Add(int64(b.Capacity()))
	p.stats.footprint.Add(b.FootprintBytes())

	Logger().Debug("memory block created",
		zap.String("type", p.info.Name),
		zap.Int("block", b.Index()),
		zap.Int("chunks", b.Capacity()),
		zap.Uint64("bytes", b.FootprintBytes()))

	if p.onBlockCreated != nil {
		p.onBlockCreated(b)
	}
	return b
}

// AcquireChunk takes a chunk from the active block.
func (p *MemoryPool[T]) AcquireChunk() *Chunk[T] {
	c := p.GetActiveBlock().AcquireChunk()
	p.stats.inUse.Add(1)
	p.stats.allocations.Add(1)
	return c
}

// DisposeChunk returns c to its parent block. It reports false when c is
// not an acquired chunk of this pool.
func (p *MemoryPool[T]) DisposeChunk(c *Chunk[T]) bool {
	if c == nil {
		return false
	}
	i := c.ParentBlockIndex
	if i < 0 || i >= len(p.blocks) {
		return false
	}
	b := p.blocks[i]
	if !b.DisposeChunk(c) {
		return false
	}
	p.replenished.PushFront(b)
	if p.replenished.Len() > 2*len(p.blocks) {
		p.compact()
	}
	p.stats.inUse.Add(-1)
	p.stats.deallocations.Add(1)
	return true
}

// compact drops exhausted and repeated entries from the replenished queue,
// keeping the first occurrence of every block in order.
func (p *MemoryPool[T]) compact() {
	seen := make(map[*MemoryBlock[T]]struct{}, len(p.blocks))
	for range p.replenished.Len() {
		b := p.replenished.PopFront()
		if _, dup := seen[b]; dup || b.IsExhausted() {
			continue
		}
		seen[b] = struct{}{}
		p.replenished.PushBack(b)
	}
}

// Chunk resolves a resource address to its chunk, or nil if no block of
// this pool stores a resource there.
func (p *MemoryPool[T]) Chunk(ptr unsafe.Pointer) *Chunk[T] {
	for _, b := range p.blocks {
		if c := b.Chunk(ptr); c != nil {
			return c
		}
	}
	return nil
}

func (p *MemoryPool[T]) BlockCount() int { return len(p.blocks) }

// Block returns the i-th block, or nil.
func (p *MemoryPool[T]) Block(i int) *MemoryBlock[T] {
	if i < 0 || i >= len(p.blocks) {
		return nil
	}
	return p.blocks[i]
}

// Stats may be called from any goroutine.
func (p *MemoryPool[T]) Stats() Stats {
	return p.stats.snapshot(p.info, p.spec.BlockSize)
}

// Layout must be called from the goroutine that owns the pool.
func (p *MemoryPool[T]) Layout() []BlockLayout {
	out := make([]BlockLayout, len(p.blocks))
	for i, b := range p.blocks {
		out[i] = BlockLayout{Index: b.Index(), Occupancy: b.Occupancy()}
	}
	return out
}
