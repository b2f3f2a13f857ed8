package memory

import (
	"sync/atomic"

	"github.com/leoovs/Xuzumi/typemeta"
)

// ControlBlock is the shared bookkeeping record behind a group of SharedPtr
// and WeakPtr handles. It owns the resource together with its deleter and
// counts the strong and weak references to it.
//
// The resource is deleted when the strong count reaches zero. The block
// itself is torn down by Destroy once the resource is dead and no weak
// references remain.
type ControlBlock interface {
	StrongRefs() uint32
	WeakRefs() uint32

	IncrementStrongRefs()
	// TryIncrementStrongRefs adds a strong reference only while the
	// resource is alive. It reports whether the reference was taken.
	TryIncrementStrongRefs() bool
	DecrementStrongRefs()
	IncrementWeakRefs()
	DecrementWeakRefs()

	ResourceIsAlive() bool
	HasNoWeakRefs() bool

	ResourceTypeInfo() typemeta.TypeInfo
	DeleterTypeInfo() typemeta.TypeInfo

	Destroy()
	Destroyed() bool
}

// ReferencingBlock is the ControlBlock for resources of type T. It starts
// with one strong reference.
type ReferencingBlock[T any] struct {
	resource     atomic.Pointer[T]
	deleter      func(*T)
	resourceInfo typemeta.TypeInfo
	deleterInfo  typemeta.TypeInfo

	strong    atomic.Uint32
	weak      atomic.Uint32
	expired   atomic.Bool
	destroyed atomic.Bool
}

var _ ControlBlock = (*ReferencingBlock[struct{}])(nil)

// NewReferencingBlock takes ownership of resource. The deleter is called
// exactly once, when the last strong reference goes away.
func NewReferencingBlock[T any](resource *T, deleter func(*T), resourceInfo, deleterInfo typemeta.TypeInfo) *ReferencingBlock[T] {
	if deleter == nil {
		deleter = DefaultDelete[T]
	}
	b := &ReferencingBlock[T]{
		deleter:      deleter,
		resourceInfo: resourceInfo,
		deleterInfo:  deleterInfo,
	}
	b.resource.Store(resource)
	b.strong.Store(1)
	return b
}

func (b *ReferencingBlock[T]) StrongRefs() uint32 { return b.strong.Load() }
func (b *ReferencingBlock[T]) WeakRefs() uint32   { return b.weak.Load() }

func (b *ReferencingBlock[T]) IncrementStrongRefs() {
	if !b.ResourceIsAlive() {
		return
	}
	b.strong.Add(1)
}

func (b *ReferencingBlock[T]) TryIncrementStrongRefs() bool {
	for {
		n := b.strong.Load()
		if n == 0 || !b.ResourceIsAlive() {
			return false
		}
		if b.strong.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (b *ReferencingBlock[T]) DecrementStrongRefs() {
	if !b.ResourceIsAlive() {
		return
	}
	if b.strong.Add(^uint32(0)) != 0 {
		return
	}
	// The resource stays alive until the deleter returns, so a concurrent
	// weak release cannot tear the block down underneath it.
	deleter := b.deleter
	if p := b.resource.Swap(nil); p != nil {
		deleter(p)
	}
	b.expired.Store(true)
}

func (b *ReferencingBlock[T]) IncrementWeakRefs() { b.weak.Add(1) }

func (b *ReferencingBlock[T]) DecrementWeakRefs() {
	for {
		n := b.weak.Load()
		if !assert(n > 0, "weak reference count underflow") {
			return
		}
		if b.weak.CompareAndSwap(n, n-1) {
			return
		}
	}
}

func (b *ReferencingBlock[T]) ResourceIsAlive() bool { return !b.expired.Load() }
func (b *ReferencingBlock[T]) HasNoWeakRefs() bool   { return b.weak.Load() == 0 }

func (b *ReferencingBlock[T]) ResourceTypeInfo() typemeta.TypeInfo { return b.resourceInfo }
func (b *ReferencingBlock[T]) DeleterTypeInfo() typemeta.TypeInfo  { return b.deleterInfo }

// Destroy tears the block down. Only the first call has an effect.
func (b *ReferencingBlock[T]) Destroy() {
	b.destroyed.CompareAndSwap(false, true)
}

func (b *ReferencingBlock[T]) Destroyed() bool { return b.destroyed.Load() }
