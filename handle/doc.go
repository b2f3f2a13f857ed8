// Package handle provides integer handles for shared resources.
//
// A Generator issues IDs starting at 1 and recycles destroyed ones first,
// oldest first. A Table pairs each ID with a memory.SharedPtr:
//
//	table := handle.NewTable[Entity]()
//
//	e := pool.AllocateShared(alloc, Entity{ID: 1})
//	id := table.Insert(e) // table takes its own reference
//	e.Reset()
//
//	got, ok := table.Get(id) // new strong reference, caller resets it
//	got.Reset()
//
//	table.Remove(id) // last reference: Entity deleted, ID recycled
//
// Observers are notified of inserts and removals. Tables are safe for
// concurrent use; the deleters of removed resources run outside the
// table's lock.
package handle
