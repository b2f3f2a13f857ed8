package memory

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/leoovs/Xuzumi/typemeta"
)

func bindMock(r *Referencer, dropped *atomic.Int32) ControlBlock {
	res := newMock(1, dropped)
	block := NewReferencingBlock(res, DefaultDelete[mockResource],
		typemeta.Of[mockResource](), typemeta.Of[DefaultDeleter[mockResource]]())
	r.Bind(block)
	return block
}

func TestReferencer_WeakifyDeletes(t *testing.T) {
	var dropped atomic.Int32
	var r Referencer
	block := bindMock(&r, &dropped)

	if r.UseCount() != 1 {
		t.Fatalf("UseCount = %d, want 1", r.UseCount())
	}

	r.Weakify()
	if dropped.Load() != 1 {
		t.Fatalf("Drop ran %d times, want 1", dropped.Load())
	}
	if r.UseCount() != 0 {
		t.Fatalf("UseCount = %d, want 0", r.UseCount())
	}
	if r.Mode() != ModeWeak {
		t.Fatalf("Mode = %v, want weak", r.Mode())
	}
	if block.Destroyed() {
		t.Fatal("block destroyed while a weak reference remains")
	}

	r.Reset()
	if !block.Destroyed() {
		t.Fatal("block should be destroyed after the last weak reference")
	}
}

func TestReferencer_Strongify(t *testing.T) {
	var dropped atomic.Int32
	var strong Referencer
	bindMock(&strong, &dropped)

	weak := strong.Copy()
	weak.Weakify()
	if strong.UseCount() != 1 {
		t.Fatalf("UseCount = %d, want 1", strong.UseCount())
	}

	if !weak.Strongify() {
		t.Fatal("Strongify should succeed while the resource is alive")
	}
	if strong.UseCount() != 2 {
		t.Fatalf("UseCount = %d, want 2", strong.UseCount())
	}
	if !weak.Strongify() {
		t.Fatal("Strongify on a strong referencer should report true")
	}

	weak.Weakify()
	strong.Reset()
	if dropped.Load() != 1 {
		t.Fatalf("Drop ran %d times, want 1", dropped.Load())
	}
	if weak.Strongify() {
		t.Fatal("Strongify should fail after the resource died")
	}
	if weak.Mode() != ModeWeak {
		t.Fatal("failed Strongify must leave the referencer weak")
	}
	weak.Reset()

	var empty Referencer
	if empty.Strongify() {
		t.Fatal("Strongify on an unbound referencer should fail")
	}
}

func TestReferencer_CopyMoveAssign(t *testing.T) {
	var dropped atomic.Int32
	var a Referencer
	bindMock(&a, &dropped)

	b := a.Copy()
	if a.UseCount() != 2 {
		t.Fatalf("UseCount = %d, want 2", a.UseCount())
	}

	c := b.Move()
	if b.Bound() {
		t.Fatal("moved-from referencer should be unbound")
	}
	if c.UseCount() != 2 {
		t.Fatalf("UseCount = %d, want 2", c.UseCount())
	}

	// Assigning a referencer to another bound to the same block must not
	// drop the resource on the way.
	a.Assign(&c)
	if dropped.Load() != 0 {
		t.Fatal("Assign over the same block dropped the resource")
	}
	if a.UseCount() != 2 {
		t.Fatalf("UseCount = %d, want 2", a.UseCount())
	}

	a.MoveAssign(&c)
	if c.Bound() {
		t.Fatal("MoveAssign should unbind the source")
	}
	if a.UseCount() != 1 {
		t.Fatalf("UseCount = %d, want 1", a.UseCount())
	}

	a.Reset()
	if dropped.Load() != 1 {
		t.Fatalf("Drop ran %d times, want 1", dropped.Load())
	}
}

func TestReferencer_Swap(t *testing.T) {
	var dropped atomic.Int32
	var a, b Referencer
	blockA := bindMock(&a, &dropped)

	a.Swap(&b)
	if a.Bound() || b.Block() != blockA {
		t.Fatal("Swap did not exchange bindings")
	}
	b.Reset()
}

func TestReferencer_ConcurrentCopyReset(t *testing.T) {
	var dropped atomic.Int32
	var root Referencer
	bindMock(&root, &dropped)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 500 {
				c := root.Copy()
				w := c.Copy()
				w.Weakify()
				c.Reset()
				w.Reset()
			}
		}()
	}
	wg.Wait()

	if root.UseCount() != 1 {
		t.Fatalf("UseCount = %d, want 1", root.UseCount())
	}
	root.Reset()
	if dropped.Load() != 1 {
		t.Fatalf("Drop ran %d times, want 1", dropped.Load())
	}
}

func TestMode_String(t *testing.T) {
	if ModeStrong.String() != "strong" || ModeWeak.String() != "weak" {
		t.Fatal("unexpected mode names")
	}
}
