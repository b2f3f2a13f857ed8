package handle

import (
	"sync"

	"github.com/gammazero/deque"
)

// Generator issues handle IDs. Destroyed IDs are recycled in the order
// they were destroyed before any new ID is minted.
type Generator struct {
	next     ID
	alive    map[ID]struct{}
	recycled deque.Deque[ID]
	mu       sync.Mutex
}

// NewGenerator creates a generator whose first ID is 1.
func NewGenerator() *Generator {
	return &Generator{
		next:  1,
		alive: make(map[ID]struct{}),
	}
}

// Create returns a recycled ID if one is available, a fresh one otherwise.
func (g *Generator) Create() ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.recycled.Len() > 0 {
		id := g.recycled.PopFront()
		g.alive[id] = struct{}{}
		return id
	}

	id := g.next
	g.next++
	g.alive[id] = struct{}{}
	return id
}

// Destroy retires id. Unknown and already destroyed IDs are ignored.
func (g *Generator) Destroy(id ID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.exists(id) {
		return
	}
	delete(g.alive, id)
	g.recycled.PushBack(id)
}

// Exists reports whether id is currently alive.
func (g *Generator) Exists(id ID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.exists(id)
}

func (g *Generator) exists(id ID) bool {
	if id == InvalidID || id >= g.next {
		return false
	}
	_, ok := g.alive[id]
	return ok
}

// Len returns the number of alive IDs.
func (g *Generator) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.alive)
}

// Reset forgets every ID; the next Create returns 1 again.
func (g *Generator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.next = 1
	g.alive = make(map[ID]struct{})
	g.recycled.Clear()
}
