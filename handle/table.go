package handle

import (
	"sort"
	"sync"

	"github.com/leoovs/Xuzumi/memory"
	"github.com/leoovs/Xuzumi/typemeta"
)

// Table maps handle IDs to shared resources. Each entry holds one strong
// reference, released when the entry is removed.
type Table[T any] struct {
	ids       *Generator
	entries   map[ID]*memory.SharedPtr[T]
	info      typemeta.TypeInfo
	mu        sync.RWMutex
	closed    bool
	observers []Observer
	obsMu     sync.RWMutex
}

// NewTable creates an empty table.
func NewTable[T any]() *Table[T] {
	return &Table[T]{
		ids:     NewGenerator(),
		entries: make(map[ID]*memory.SharedPtr[T]),
		info:    typemeta.Of[T](),
	}
}

// Insert stores a new strong reference to s's resource and returns its
// ID. Empty handles and closed tables yield InvalidID.
func (t *Table[T]) Insert(s *memory.SharedPtr[T]) ID {
	if !s.Valid() {
		return InvalidID
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return InvalidID
	}
	id := t.ids.Create()
	t.entries[id] = s.Copy()
	t.mu.Unlock()

	t.notify(Event{Type: EventInserted, ID: id, TypeID: t.info.ID})
	return id
}

// Get returns a new strong reference to the resource of id. The caller
// owns it and must Reset it.
func (t *Table[T]) Get(id ID) (*memory.SharedPtr[T], bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s, ok := t.entries[id]
	if !ok {
		return &memory.SharedPtr[T]{}, false
	}
	return s.Copy(), true
}

// Weak returns a weak reference to the resource of id.
func (t *Table[T]) Weak(id ID) (*memory.WeakPtr[T], bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s, ok := t.entries[id]
	if !ok {
		return &memory.WeakPtr[T]{}, false
	}
	return memory.NewWeak(s), true
}

// Observe returns a non-owning pointer to the resource of id. It is only
// valid while the entry stays in the table.
func (t *Table[T]) Observe(id ID) (memory.ObserverPtr[T], bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s, ok := t.entries[id]
	if !ok {
		return memory.ObserverPtr[T]{}, false
	}
	return memory.ObserveShared(s), true
}

// Remove releases the table's reference and retires id.
func (t *Table[T]) Remove(id ID) bool {
	t.mu.Lock()
	s, ok := t.entries[id]
	if !ok {
		t.mu.Unlock()
		return false
	}
	delete(t.entries, id)
	t.ids.Destroy(id)
	t.mu.Unlock()

	// The deleter may run here; it must not call back into the table
	// under the lock.
	s.Reset()

	t.notify(Event{Type: EventRemoved, ID: id, TypeID: t.info.ID})
	return true
}

// Contains reports whether id refers to an entry.
func (t *Table[T]) Contains(id ID) bool {
	return t.ids.Exists(id)
}

// Len returns the number of entries.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Each calls fn for every entry in ID order until fn returns false.
func (t *Table[T]) Each(fn func(ID, *T) bool) {
	for _, id := range t.sortedIDs() {
		o, ok := t.Observe(id)
		if !ok {
			continue
		}
		if !fn(id, o.Get()) {
			return
		}
	}
}

// Clear removes every entry.
func (t *Table[T]) Clear() {
	for _, id := range t.sortedIDs() {
		t.Remove(id)
	}
}

// Close removes every entry and stops accepting inserts.
func (t *Table[T]) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()

	t.Clear()
	return nil
}

// Subscribe adds an observer for lifecycle events.
func (t *Table[T]) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table[T]) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

func (t *Table[T]) sortedIDs() []ID {
	t.mu.RLock()
	ids := make([]ID, 0, len(t.entries))
	for id := range t.entries {
		ids = append(ids, id)
	}
	t.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (t *Table[T]) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnHandleEvent(e)
	}
}
