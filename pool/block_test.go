package pool

import (
	"testing"
	"unsafe"

	"github.com/leoovs/Xuzumi/typemeta"
)

func TestMemoryBlock_AcquireInArenaOrder(t *testing.T) {
	b := NewMemoryBlock[vector](2, 3)

	if b.Capacity() != 3 || b.Available() != 3 || b.IsExhausted() {
		t.Fatal("new block should be fully available")
	}

	var got []*Chunk[vector]
	for range 3 {
		c := b.AcquireChunk()
		if c == nil {
			t.Fatal("AcquireChunk returned nil before exhaustion")
		}
		got = append(got, c)
	}
	for i, c := range got {
		if c != &b.arena[i] {
			t.Fatalf("chunk %d is not arena slot %d", i, i)
		}
		if c.ResourceTypeID != typemeta.IDOf[vector]() || c.ParentBlockIndex != 2 || !c.InUse() {
			t.Fatalf("chunk %d header not stamped: %+v", i, c)
		}
	}

	if !b.IsExhausted() || b.AcquireChunk() != nil {
		t.Fatal("exhausted block should return nil")
	}
}

func TestMemoryBlock_DisposeIsLIFO(t *testing.T) {
	b := NewMemoryBlock[int](0, 3)
	c0 := b.AcquireChunk()
	c1 := b.AcquireChunk()

	if !b.DisposeChunk(c0) || !b.DisposeChunk(c1) {
		t.Fatal("DisposeChunk of acquired chunks should succeed")
	}
	if b.AcquireChunk() != c1 {
		t.Fatal("the most recently disposed chunk should be reused first")
	}
	if b.DisposeChunk(c0) {
		t.Fatal("disposing a free chunk should fail")
	}

	other := NewMemoryBlock[int](1, 1)
	if b.DisposeChunk(other.AcquireChunk()) {
		t.Fatal("disposing another block's chunk should fail")
	}
	if b.DisposeChunk(nil) {
		t.Fatal("disposing nil should fail")
	}
}

func TestMemoryBlock_Chunk(t *testing.T) {
	b := NewMemoryBlock[vector](0, 4)
	c := b.AcquireChunk()

	if b.Chunk(unsafe.Pointer(c.Resource())) != c {
		t.Fatal("resource address should resolve to its chunk")
	}
	if b.Chunk(unsafe.Pointer(c)) != nil {
		t.Fatal("header address is not a resource address")
	}
	if b.Chunk(unsafe.Pointer(&c.Resource().y)) != nil {
		t.Fatal("interior address is not a resource address")
	}
	outside := vector{}
	if b.Chunk(unsafe.Pointer(&outside)) != nil {
		t.Fatal("address outside the arena should not resolve")
	}
	if b.Chunk(nil) != nil {
		t.Fatal("nil should not resolve")
	}
}

func TestMemoryBlock_Footprint(t *testing.T) {
	b := NewMemoryBlock[vector](0, 5)
	want := uint64(unsafe.Sizeof(Chunk[vector]{})) * 5
	if b.FootprintBytes() != want {
		t.Fatalf("FootprintBytes = %d, want %d", b.FootprintBytes(), want)
	}

	b.AcquireChunk()
	occ := b.Occupancy()
	if len(occ) != 5 || !occ[0] || occ[1] {
		t.Fatalf("Occupancy = %v", occ)
	}
}
