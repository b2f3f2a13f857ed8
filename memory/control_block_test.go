package memory

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/leoovs/Xuzumi/typemeta"
)

func newCountingBlock(deleted *atomic.Int32) *ReferencingBlock[int] {
	v := 42
	return NewReferencingBlock(&v, func(*int) { deleted.Add(1) },
		typemeta.Of[int](), typemeta.Of[Deleter[int]]())
}

func TestReferencingBlock_Counts(t *testing.T) {
	var deleted atomic.Int32
	b := newCountingBlock(&deleted)

	if b.StrongRefs() != 1 || b.WeakRefs() != 0 {
		t.Fatalf("new block: strong=%d weak=%d, want 1/0", b.StrongRefs(), b.WeakRefs())
	}
	if !b.ResourceIsAlive() {
		t.Fatal("resource should be alive")
	}

	b.IncrementStrongRefs()
	b.IncrementWeakRefs()
	if b.StrongRefs() != 2 || b.WeakRefs() != 1 {
		t.Fatalf("strong=%d weak=%d, want 2/1", b.StrongRefs(), b.WeakRefs())
	}

	b.DecrementStrongRefs()
	if deleted.Load() != 0 {
		t.Fatal("resource deleted with a strong reference left")
	}

	b.DecrementStrongRefs()
	if deleted.Load() != 1 {
		t.Fatalf("deleter ran %d times, want 1", deleted.Load())
	}
	if b.ResourceIsAlive() {
		t.Fatal("resource should be dead")
	}
	if b.HasNoWeakRefs() {
		t.Fatal("weak reference should still be counted")
	}

	// Dead resource: strong operations are no-ops.
	b.IncrementStrongRefs()
	b.DecrementStrongRefs()
	if b.StrongRefs() != 0 || deleted.Load() != 1 {
		t.Fatalf("strong=%d deleted=%d after dead-block ops", b.StrongRefs(), deleted.Load())
	}
	if b.TryIncrementStrongRefs() {
		t.Fatal("TryIncrementStrongRefs should fail on a dead resource")
	}
}

func TestReferencingBlock_TypeInfo(t *testing.T) {
	var deleted atomic.Int32
	b := newCountingBlock(&deleted)

	if !b.ResourceTypeInfo().Equal(typemeta.Of[int]()) {
		t.Errorf("ResourceTypeInfo = %v", b.ResourceTypeInfo())
	}
	if !b.DeleterTypeInfo().Equal(typemeta.Of[Deleter[int]]()) {
		t.Errorf("DeleterTypeInfo = %v", b.DeleterTypeInfo())
	}
}

func TestReferencingBlock_DestroyOnce(t *testing.T) {
	var deleted atomic.Int32
	b := newCountingBlock(&deleted)
	b.DecrementStrongRefs()

	b.Destroy()
	b.Destroy()
	if !b.Destroyed() {
		t.Fatal("block should be destroyed")
	}
}

func TestReferencingBlock_ConcurrentStrongRefs(t *testing.T) {
	var deleted atomic.Int32
	b := newCountingBlock(&deleted)

	const goroutines = 16
	const iterations = 1000

	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range iterations {
				b.IncrementStrongRefs()
				b.DecrementStrongRefs()
			}
		}()
	}
	wg.Wait()

	if b.StrongRefs() != 1 {
		t.Fatalf("strong = %d, want 1", b.StrongRefs())
	}
	b.DecrementStrongRefs()
	if deleted.Load() != 1 {
		t.Fatalf("deleter ran %d times, want 1", deleted.Load())
	}
}

func TestReferencingBlock_LastStrongAndWeakReleaseRace(t *testing.T) {
	const iterations = 20000

	for i := range iterations {
		var deleted atomic.Int32
		var deletedBeforeTeardown atomic.Bool
		v := i

		var block *ReferencingBlock[int]
		s := NewSharedWithDeleter(&v, func(*int) {
			deletedBeforeTeardown.Store(!block.Destroyed())
			deleted.Add(1)
		})
		block = s.ref.Block().(*ReferencingBlock[int])
		w := NewWeak(s)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Reset()
		}()
		go func() {
			defer wg.Done()
			for !w.Expired() {
			}
			w.Reset()
		}()
		wg.Wait()

		if deleted.Load() != 1 {
			t.Fatalf("iteration %d: deleter ran %d times, want 1", i, deleted.Load())
		}
		if !deletedBeforeTeardown.Load() {
			t.Fatalf("iteration %d: block torn down before the deleter ran", i)
		}
		if !block.Destroyed() {
			t.Fatalf("iteration %d: block not destroyed after last release", i)
		}
	}
}
