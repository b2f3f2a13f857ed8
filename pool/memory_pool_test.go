package pool

import (
	"testing"
	"unsafe"
)

func TestMemoryPool_ReusesMostRecentlyFreedChunk(t *testing.T) {
	p := NewMemoryPool[entity](Specification{BlockSize: 3})

	var chunks []*Chunk[entity]
	for range 4 {
		chunks = append(chunks, p.AcquireChunk())
	}
	if p.BlockCount() != 2 {
		t.Fatalf("BlockCount = %d, want 2", p.BlockCount())
	}
	if chunks[3].ParentBlockIndex != 1 {
		t.Fatalf("fourth chunk in block %d, want 1", chunks[3].ParentBlockIndex)
	}

	if !p.DisposeChunk(chunks[1]) {
		t.Fatal("DisposeChunk failed")
	}
	if c := p.AcquireChunk(); c != chunks[1] {
		t.Fatal("fifth allocation should reuse the chunk freed from the first block")
	}
	if p.BlockCount() != 2 {
		t.Fatalf("BlockCount = %d, want 2", p.BlockCount())
	}
}

func TestMemoryPool_ChurnDoesNotGrow(t *testing.T) {
	p := NewMemoryPool[int](Specification{BlockSize: 4})

	live := make([]*Chunk[int], 0, 8)
	for range 8 {
		live = append(live, p.AcquireChunk())
	}
	for range 1000 {
		for _, c := range live {
			p.DisposeChunk(c)
		}
		live = live[:0]
		for range 8 {
			live = append(live, p.AcquireChunk())
		}
	}

	if p.BlockCount() != 2 {
		t.Fatalf("BlockCount = %d, want 2", p.BlockCount())
	}
	if p.replenished.Len() > 2*p.BlockCount() {
		t.Fatalf("replenished queue holds %d entries for %d blocks", p.replenished.Len(), p.BlockCount())
	}

	s := p.Stats()
	if s.InUse != 8 || s.Capacity != 8 || s.Blocks != 2 {
		t.Fatalf("Stats = %+v", s)
	}
	if s.Allocations-s.Deallocations != 8 {
		t.Fatalf("allocations %d - deallocations %d != 8", s.Allocations, s.Deallocations)
	}
}

func TestMemoryPool_DisposeRejectsForeignChunks(t *testing.T) {
	p := NewMemoryPool[int](Specification{BlockSize: 2})
	c := p.AcquireChunk()

	bogus := &Chunk[int]{ParentBlockIndex: 5, inUse: true}
	if p.DisposeChunk(bogus) {
		t.Fatal("chunk with an unknown block index should be rejected")
	}
	bogus.ParentBlockIndex = 0
	if p.DisposeChunk(bogus) {
		t.Fatal("chunk outside the block arena should be rejected")
	}
	if !p.DisposeChunk(c) || p.DisposeChunk(c) {
		t.Fatal("a chunk is disposed exactly once")
	}
}

func TestMemoryPool_ChunkLookup(t *testing.T) {
	p := NewMemoryPool[int](Specification{BlockSize: 1})
	a := p.AcquireChunk()
	b := p.AcquireChunk()

	if p.Chunk(unsafe.Pointer(b.Resource())) != b || p.Chunk(unsafe.Pointer(a.Resource())) != a {
		t.Fatal("resource addresses should resolve across blocks")
	}
	if p.Block(1) == nil || p.Block(2) != nil {
		t.Fatal("Block should index created blocks only")
	}
	if len(p.Layout()) != 2 {
		t.Fatalf("Layout has %d blocks, want 2", len(p.Layout()))
	}
}

func TestNewMemoryPool_InvalidSpec(t *testing.T) {
	p := NewMemoryPool[int](Specification{BlockSize: 0})
	p.AcquireChunk()
	if p.Stats().Capacity != DefaultBlockSize {
		t.Fatalf("Capacity = %d, want %d", p.Stats().Capacity, DefaultBlockSize)
	}
}
