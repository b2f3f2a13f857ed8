package main

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/leoovs/Xuzumi/handle"
	"github.com/leoovs/Xuzumi/memory"
	"github.com/leoovs/Xuzumi/pool"
)

// runDemo walks an entity factory through spawning, sharing, chunk reuse
// and shutting down while a reference is still held.
func runDemo(w io.Writer, factory *EntityFactory, count int, log *zap.Logger) error {
	if count < 1 {
		return fmt.Errorf("entity count must be positive, got %d", count)
	}

	ids := make([]handle.ID, 0, count)
	for i := 0; i < count; i++ {
		id := factory.Spawn("")
		if id == handle.InvalidID {
			return fmt.Errorf("spawn entity %d failed", i+1)
		}
		ids = append(ids, id)
	}
	fmt.Fprintf(w, "Spawned %d entities\n", len(ids))
	printStats(w, factory.Allocator())

	hero, _ := factory.Get(ids[0])
	defer hero.Reset()
	watcher, _ := factory.Watch(ids[len(ids)-1])
	defer watcher.Reset()

	transform := memory.Upcast[Transform](hero)
	transform.Get().Position = [2]float64{3, 4}
	transform.Reset()
	fmt.Fprintf(w, "Hero %q at %v, use count %d\n", hero.Get().Name, hero.Get().Position, hero.UseCount())

	// Freed chunks are handed out again before any new block is made.
	before := factory.Allocator().Stats()
	for _, id := range ids[1:] {
		factory.Despawn(id)
	}
	fmt.Fprintf(w, "Despawned %d entities, watcher expired: %t\n", len(ids)-1, watcher.Expired())
	for i := 1; i < len(ids); i++ {
		factory.Spawn(fmt.Sprintf("respawn-%d", i))
	}
	after := factory.Allocator().Stats()
	if len(before) > 0 && len(after) > 0 {
		fmt.Fprintf(w, "Blocks before respawn %d, after %d\n", before[0].Blocks, after[0].Blocks)
	}
	printStats(w, factory.Allocator())

	if err := factory.Close(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Factory closed, hero still readable: %q\n", hero.Get().Name)
	log.Info("releasing hero after factory shutdown")
	return nil
}

func printStats(w io.Writer, alloc *pool.PoolAllocator) {
	for _, s := range alloc.Stats() {
		fmt.Fprintf(w, "  %s: blocks=%d in_use=%d/%d allocs=%d frees=%d bytes=%d\n",
			s.Type, s.Blocks, s.InUse, s.Capacity, s.Allocations, s.Deallocations, s.FootprintBytes)
	}
}
