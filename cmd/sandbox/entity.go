package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/leoovs/Xuzumi/handle"
	"github.com/leoovs/Xuzumi/memory"
	"github.com/leoovs/Xuzumi/pool"
)

// Transform is embedded first in Entity so entity handles upcast to it.
type Transform struct {
	Position [2]float64
}

// Entity is the pooled resource the sandbox plays with.
type Entity struct {
	Transform
	Name   string
	Health int

	onDrop func(name string)
}

// Drop runs right before the entity's chunk goes back to its block.
func (e *Entity) Drop() {
	if e.onDrop != nil {
		e.onDrop(e.Name)
	}
}

// EntityFactory spawns entities into pooled chunks and tracks them by
// handle. Shared pointers handed out by Get may outlive the factory.
type EntityFactory struct {
	alloc   *pool.PoolAllocator
	table   *handle.Table[Entity]
	log     *zap.Logger
	spawned int
	dropped int
}

// NewEntityFactory creates a factory with its own allocator.
func NewEntityFactory(spec pool.Specification, log *zap.Logger, opts ...pool.Option) *EntityFactory {
	if log == nil {
		log = zap.NewNop()
	}
	return &EntityFactory{
		alloc: pool.New(spec, opts...),
		table: handle.NewTable[Entity](),
		log:   log,
	}
}

// Spawn allocates a named entity and returns its handle.
func (f *EntityFactory) Spawn(name string) handle.ID {
	if name == "" {
		name = fmt.Sprintf("entity-%d", f.spawned+1)
	}
	e := pool.AllocateShared(f.alloc, Entity{
		Name:   name,
		Health: 100,
		onDrop: f.onDrop,
	})
	defer e.Reset()

	id := f.table.Insert(e)
	if id == handle.InvalidID {
		f.log.Warn("could not spawn entity", zap.String("name", name))
		return id
	}
	f.spawned++
	f.log.Debug("entity spawned", zap.String("name", name), zap.Uint32("id", uint32(id)))
	return id
}

// Get returns a strong reference the caller must Reset.
func (f *EntityFactory) Get(id handle.ID) (*memory.SharedPtr[Entity], bool) {
	return f.table.Get(id)
}

// Watch returns a weak reference to the entity of id.
func (f *EntityFactory) Watch(id handle.ID) (*memory.WeakPtr[Entity], bool) {
	return f.table.Weak(id)
}

// Despawn drops the factory's reference to the entity.
func (f *EntityFactory) Despawn(id handle.ID) bool {
	return f.table.Remove(id)
}

// Move shifts the entity's position.
func (f *EntityFactory) Move(id handle.ID, dx, dy float64) bool {
	o, ok := f.table.Observe(id)
	if !ok {
		return false
	}
	e := o.Get()
	e.Position[0] += dx
	e.Position[1] += dy
	return true
}

// IDs returns the live handles in ascending order.
func (f *EntityFactory) IDs() []handle.ID {
	ids := make([]handle.ID, 0, f.table.Len())
	f.table.Each(func(id handle.ID, _ *Entity) bool {
		ids = append(ids, id)
		return true
	})
	return ids
}

// Lookup returns a copy of the entity's state.
func (f *EntityFactory) Lookup(id handle.ID) (Entity, bool) {
	o, ok := f.table.Observe(id)
	if !ok {
		return Entity{}, false
	}
	return *o.Get(), true
}

func (f *EntityFactory) Allocator() *pool.PoolAllocator { return f.alloc }

// Spawned and Dropped count entities over the factory's lifetime.
func (f *EntityFactory) Spawned() int { return f.spawned }
func (f *EntityFactory) Dropped() int { return f.dropped }

// Closed reports whether Close has run.
func (f *EntityFactory) Closed() bool { return f.alloc.Closed() }

// Close releases every tracked entity and shuts the allocator down.
// References obtained through Get stay readable; releasing them later
// logs a dangling factory warning instead of touching freed pools.
func (f *EntityFactory) Close() error {
	if f.alloc.Closed() {
		return nil
	}
	if err := f.table.Close(); err != nil {
		return fmt.Errorf("close entity table: %w", err)
	}
	f.alloc.Close()
	return nil
}

func (f *EntityFactory) onDrop(name string) {
	f.dropped++
	f.log.Debug("entity dropped", zap.String("name", name))
}
