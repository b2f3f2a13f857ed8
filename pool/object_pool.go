package pool

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/leoovs/Xuzumi/errors"
	"github.com/leoovs/Xuzumi/memory"
	"github.com/leoovs/Xuzumi/typemeta"
)

// objectPool is the type-erased view the allocator keeps of every
// ObjectPool.
type objectPool interface {
	TypeInfo() typemeta.TypeInfo
	resolve(p unsafe.Pointer) (typemeta.TypeID, bool)
	deallocate(p unsafe.Pointer) *errors.Error
	Stats() Stats
	Layout() []BlockLayout
	Close()
}

// ObjectPool stores values of type T in pooled chunks.
type ObjectPool[T any] struct {
	chunks *MemoryPool[T]
	info   typemeta.TypeInfo
	guard  *memory.FactoryExpirationGuard[ObjectPool[T]]
	notify func(Event)
}

// NewObjectPool creates a pool for T.
func NewObjectPool[T any](spec Specification) *ObjectPool[T] {
	return newObjectPool[T](spec, nil)
}

func newObjectPool[T any](spec Specification, notify func(Event)) *ObjectPool[T] {
	p := &ObjectPool[T]{
		chunks: NewMemoryPool[T](spec),
		info:   typemeta.Of[T](),
		notify: notify,
	}
	p.guard = memory.NewFactoryExpirationGuard(p)
	p.chunks.onBlockCreated = func(b *MemoryBlock[T]) {
		p.emit(Event{Kind: EventBlockCreated, Block: b.Index()})
	}
	return p
}

// Allocate stores v in a free chunk and returns its address.
func (p *ObjectPool[T]) Allocate(v T) *T {
	c := p.chunks.AcquireChunk()
	c.resource = v
	p.emit(Event{Kind: EventAllocated, Address: memory.AddressOf(&c.resource), Block: c.ParentBlockIndex})
	return &c.resource
}

// AllocateShared allocates v and wraps it in a SharedPtr whose deleter
// returns the chunk to this pool. If the pool is closed first, the
// deleter logs the leak instead.
func (p *ObjectPool[T]) AllocateShared(v T) *memory.SharedPtr[T] {
	if p.Closed() {
		Logger().Error("could not allocate", zap.Error(errors.Closed(errors.PhaseAllocate, "object pool "+p.info.Name)))
		return &memory.SharedPtr[T]{}
	}
	return memory.NewSharedWithDeleter(p.Allocate(v),
		memory.MakeDangleProtectedMethodDeleter(p.guard, (*ObjectPool[T]).Deallocate))
}

// Deallocate runs the resource's Drop hook, clears the chunk and returns
// it to its block. Nil, foreign and already free pointers are logged and
// ignored.
func (p *ObjectPool[T]) Deallocate(res *T) {
	if err := p.deallocate(unsafe.Pointer(res)); err != nil {
		reportDeallocation(err)
	}
}

// TryDeallocate is Deallocate reporting the rejection instead of logging.
func (p *ObjectPool[T]) TryDeallocate(res *T) error {
	if err := p.deallocate(unsafe.Pointer(res)); err != nil {
		return err
	}
	return nil
}

func (p *ObjectPool[T]) deallocate(ptr unsafe.Pointer) *errors.Error {
	if ptr == nil {
		return errors.NilPointer(errors.PhaseDeallocate, p.info.Name)
	}
	c := p.chunks.Chunk(ptr)
	if c == nil {
		err := errors.ForeignPointer(errors.PhaseDeallocate, uintptr(ptr))
		err.ResourceType = p.info.Name
		return err
	}
	if !c.inUse {
		return errors.DoubleFree(p.info.Name, uintptr(ptr))
	}

	memory.DefaultDelete(&c.resource)
	var zero T
	c.resource = zero
	p.chunks.DisposeChunk(c)

	p.emit(Event{Kind: EventDeallocated, Address: uintptr(ptr), Block: c.ParentBlockIndex})
	return nil
}

func (p *ObjectPool[T]) resolve(ptr unsafe.Pointer) (typemeta.TypeID, bool) {
	c := p.chunks.Chunk(ptr)
	if c == nil {
		return typemeta.InvalidTypeID, false
	}
	return c.ResourceTypeID, true
}

// Close expires the pool's guard. Shared pointers allocated from the pool
// stop returning chunks; their resources are leaked and logged.
func (p *ObjectPool[T]) Close() {
	if p.guard.Expired() {
		return
	}
	p.guard.Close()
	p.emit(Event{Kind: EventClosed})
}

func (p *ObjectPool[T]) Closed() bool { return p.guard.Expired() }

func (p *ObjectPool[T]) TypeInfo() typemeta.TypeInfo { return p.info }

// Memory exposes the underlying chunk pool.
func (p *ObjectPool[T]) Memory() *MemoryPool[T] { return p.chunks }

func (p *ObjectPool[T]) Stats() Stats          { return p.chunks.Stats() }
func (p *ObjectPool[T]) Layout() []BlockLayout { return p.chunks.Layout() }

func (p *ObjectPool[T]) emit(e Event) {
	if p.notify == nil {
		return
	}
	e.Type = p.info.Name
	e.TypeID = p.info.ID
	p.notify(e)
}
