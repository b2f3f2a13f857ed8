package pool

import "github.com/leoovs/Xuzumi/typemeta"

// Chunk is one slot of a memory block: a small header followed by the
// storage of a single resource.
type Chunk[T any] struct {
	// ResourceTypeID is the type the chunk was acquired for.
	ResourceTypeID typemeta.TypeID

	// ParentBlockIndex is the position of the owning block in its pool.
	ParentBlockIndex int

	inUse    bool
	resource T
}

// Resource returns the address of the chunk's resource storage.
func (c *Chunk[T]) Resource() *T { return &c.resource }

// InUse reports whether the chunk is currently acquired.
func (c *Chunk[T]) InUse() bool { return c.inUse }
