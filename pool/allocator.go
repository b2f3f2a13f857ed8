package pool

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"go.uber.org/zap"

	xuzumi "github.com/leoovs/Xuzumi"
	"github.com/leoovs/Xuzumi/errors"
	"github.com/leoovs/Xuzumi/memory"
	"github.com/leoovs/Xuzumi/typemeta"
)

// PoolAllocator owns one ObjectPool per resource type, creating each pool
// on first allocation of its type. It implements xuzumi.Deallocator.
//
// Allocation and deallocation are not synchronized: an allocator belongs
// to one goroutine at a time. Stats and the prometheus Collector may be
// read from any goroutine.
type PoolAllocator struct {
	spec      Specification
	pools     map[typemeta.TypeID]objectPool
	published atomic.Pointer[[]objectPool]
	guard     *memory.FactoryExpirationGuard[PoolAllocator]
	closed    bool

	observers []Observer
	obsMu     sync.RWMutex
}

var _ xuzumi.Deallocator = (*PoolAllocator)(nil)

// New creates an allocator whose pools follow spec. An invalid spec is
// logged and replaced by DefaultSpecification.
func New(spec Specification, opts ...Option) *PoolAllocator {
	if err := spec.Validate(); err != nil {
		Logger().Error("invalid pool specification, using defaults", zap.Error(err))
		spec = DefaultSpecification()
	}
	a := &PoolAllocator{
		spec:  spec,
		pools: make(map[typemeta.TypeID]objectPool),
	}
	a.guard = memory.NewFactoryExpirationGuard(a)
	a.published.Store(&[]objectPool{})
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Specification returns the block configuration shared by all pools.
func (a *PoolAllocator) Specification() Specification { return a.spec }

// GetPool returns the pool for T, creating it if needed.
func GetPool[T any](a *PoolAllocator) *ObjectPool[T] {
	id := typemeta.IDOf[T]()
	if p, ok := a.pools[id]; ok {
		return p.(*ObjectPool[T])
	}

	p := newObjectPool[T](a.spec, a.notify)
	a.pools[id] = p

	list := append(append([]objectPool(nil), *a.published.Load()...), p)
	a.published.Store(&list)

	Logger().Debug("object pool created",
		zap.String("type", p.info.Name),
		zap.Int("block_size", a.spec.BlockSize))
	p.emit(Event{Kind: EventPoolCreated})
	return p
}

// Allocate stores v in T's pool and returns its address. It returns nil
// once the allocator is closed.
func Allocate[T any](a *PoolAllocator, v T) *T {
	if a.closed {
		Logger().Error("could not allocate",
			zap.Error(errors.Closed(errors.PhaseAllocate, "pool allocator")))
		return nil
	}
	return GetPool[T](a).Allocate(v)
}

// AllocateShared allocates v and wraps it in a SharedPtr whose deleter
// deallocates through a. Shared pointers that outlive a's Close leak
// their chunk with a warning instead of touching the closed allocator.
func AllocateShared[T any](a *PoolAllocator, v T) *memory.SharedPtr[T] {
	p := Allocate(a, v)
	if p == nil {
		return &memory.SharedPtr[T]{}
	}
	return memory.NewSharedWithDeleter(p,
		memory.MakeDangleProtectedMethodDeleter(a.guard, func(alloc *PoolAllocator, res *T) {
			alloc.Deallocate(unsafe.Pointer(res))
		}))
}

// Free returns a resource allocated as T to its pool.
func Free[T any](a *PoolAllocator, res *T) {
	if err := tryFree(a, res); err != nil {
		reportDeallocation(err)
	}
}

func tryFree[T any](a *PoolAllocator, res *T) *errors.Error {
	if res == nil {
		return errors.NilPointer(errors.PhaseDeallocate, typemeta.Of[T]().Name)
	}
	p, ok := a.pools[typemeta.IDOf[T]()]
	if !ok {
		return errors.ForeignPointer(errors.PhaseDeallocate, memory.AddressOf(res))
	}
	return p.deallocate(unsafe.Pointer(res))
}

// Deallocate returns any pooled resource to its pool. The chunk is found
// by address and its header names the pool. Nil, foreign and already free
// pointers are logged and ignored.
func (a *PoolAllocator) Deallocate(res unsafe.Pointer) {
	if err := a.deallocate(res); err != nil {
		reportDeallocation(err)
	}
}

// TryDeallocate is Deallocate reporting the rejection instead of logging.
func (a *PoolAllocator) TryDeallocate(res unsafe.Pointer) error {
	if err := a.deallocate(res); err != nil {
		return err
	}
	return nil
}

func (a *PoolAllocator) deallocate(res unsafe.Pointer) *errors.Error {
	if res == nil {
		return errors.NilPointer(errors.PhaseDeallocate, "")
	}
	for _, p := range a.pools {
		id, ok := p.resolve(res)
		if !ok {
			continue
		}
		owner, ok := a.pools[id]
		if !ok {
			return errors.NotFound(errors.PhaseDeallocate, "pool", p.TypeInfo().Name)
		}
		return owner.deallocate(res)
	}
	return errors.ForeignPointer(errors.PhaseDeallocate, uintptr(res))
}

// Close tears the allocator down as a factory. Outstanding shared
// pointers stay valid but their chunks are never returned; raw pointers
// from Allocate remain usable. Further allocations fail.
func (a *PoolAllocator) Close() {
	if a.closed {
		return
	}
	a.closed = true
	a.guard.Close()

	var outstanding int
	for _, p := range a.pools {
		outstanding += p.Stats().InUse
		p.Close()
	}
	Logger().Info("pool allocator closed",
		zap.Int("pools", len(a.pools)),
		zap.Int("outstanding", outstanding))
}

func (a *PoolAllocator) Closed() bool { return a.closed }

// PoolCount returns the number of pools created so far.
func (a *PoolAllocator) PoolCount() int {
	return len(*a.published.Load())
}

// Stats returns a snapshot of every pool in creation order. It is safe to
// call from any goroutine.
func (a *PoolAllocator) Stats() []Stats {
	pools := *a.published.Load()
	out := make([]Stats, len(pools))
	for i, p := range pools {
		out[i] = p.Stats()
	}
	return out
}

// Layout returns the chunk occupancy of the pool for id. It must be called
// from the goroutine that owns the allocator.
func (a *PoolAllocator) Layout(id typemeta.TypeID) ([]BlockLayout, bool) {
	p, ok := a.pools[id]
	if !ok {
		return nil, false
	}
	return p.Layout(), true
}

// Subscribe adds an observer for pool events.
func (a *PoolAllocator) Subscribe(o Observer) {
	a.obsMu.Lock()
	defer a.obsMu.Unlock()
	a.observers = append(a.observers, o)
}

// Unsubscribe removes an observer.
func (a *PoolAllocator) Unsubscribe(o Observer) {
	a.obsMu.Lock()
	defer a.obsMu.Unlock()
	for i, obs := range a.observers {
		if obs == o {
			a.observers = append(a.observers[:i], a.observers[i+1:]...)
			return
		}
	}
}

func (a *PoolAllocator) notify(e Event) {
	a.obsMu.RLock()
	defer a.obsMu.RUnlock()
	for _, o := range a.observers {
		o.OnPoolEvent(e)
	}
}
