package memory

import "github.com/leoovs/Xuzumi/typemeta"

// Mode tells whether a Referencer holds a strong or a weak reference.
type Mode uint8

const (
	ModeStrong Mode = iota
	ModeWeak
)

func (m Mode) String() string {
	switch m {
	case ModeStrong:
		return "strong"
	case ModeWeak:
		return "weak"
	default:
		return "unknown"
	}
}

// Referencer holds one reference to a ControlBlock. SharedPtr and WeakPtr
// are thin typed wrappers around it.
//
// The zero value is unbound. A Referencer is a plain value: Copy takes a
// new reference, Move hands the existing one over, and Reset gives it back.
// Whoever brings the block to a dead resource with no weak references
// destroys it.
type Referencer struct {
	block ControlBlock
	mode  Mode
}

// Bind releases the current reference and takes ownership of the single
// strong reference block starts with.
func (r *Referencer) Bind(block ControlBlock) {
	r.Reset()
	r.block = block
	r.mode = ModeStrong
}

// Copy returns a Referencer of the same mode holding a new reference.
func (r *Referencer) Copy() Referencer {
	c := Referencer{block: r.block, mode: r.mode}
	c.incrementRefs()
	return c
}

// Move returns the reference and leaves r unbound.
func (r *Referencer) Move() Referencer {
	m := *r
	r.block = nil
	return m
}

// Assign makes r share other's block in other's mode.
func (r *Referencer) Assign(other *Referencer) {
	if r == other {
		return
	}
	c := other.Copy()
	r.Reset()
	*r = c
}

// MoveAssign takes over other's reference.
func (r *Referencer) MoveAssign(other *Referencer) {
	if r == other {
		return
	}
	m := other.Move()
	r.Reset()
	*r = m
}

// Reset gives the reference back and unbinds r.
func (r *Referencer) Reset() {
	r.decrementRefs()
	r.block = nil
}

// Swap exchanges the bindings of r and other.
func (r *Referencer) Swap(other *Referencer) {
	*r, *other = *other, *r
}

// Weakify turns a strong reference into a weak one. The resource is
// deleted if r held the last strong reference.
func (r *Referencer) Weakify() {
	if r.block == nil || r.mode == ModeWeak {
		return
	}
	r.mode = ModeWeak
	r.block.IncrementWeakRefs()
	r.block.DecrementStrongRefs()
}

// Strongify turns a weak reference into a strong one. It fails, leaving r
// weak, when the resource is already gone.
func (r *Referencer) Strongify() bool {
	if r.block == nil {
		return false
	}
	if r.mode == ModeStrong {
		return true
	}
	if !r.block.TryIncrementStrongRefs() {
		return false
	}
	r.mode = ModeStrong
	r.block.DecrementWeakRefs()
	return true
}

// UseCount returns the number of strong references to the resource.
func (r *Referencer) UseCount() uint32 {
	if r.block == nil {
		return 0
	}
	return r.block.StrongRefs()
}

// Expired reports whether the resource is gone or r is unbound.
func (r *Referencer) Expired() bool {
	return r.block == nil || !r.block.ResourceIsAlive()
}

func (r *Referencer) Bound() bool         { return r.block != nil }
func (r *Referencer) Block() ControlBlock { return r.block }
func (r *Referencer) Mode() Mode          { return r.mode }

func (r *Referencer) ResourceTypeInfo() typemeta.TypeInfo {
	if r.block == nil {
		return typemeta.TypeInfo{}
	}
	return r.block.ResourceTypeInfo()
}

func (r *Referencer) DeleterTypeInfo() typemeta.TypeInfo {
	if r.block == nil {
		return typemeta.TypeInfo{}
	}
	return r.block.DeleterTypeInfo()
}

func (r *Referencer) incrementRefs() {
	if r.block == nil {
		return
	}
	switch r.mode {
	case ModeStrong:
		r.block.IncrementStrongRefs()
	case ModeWeak:
		r.block.IncrementWeakRefs()
	}
}

func (r *Referencer) decrementRefs() {
	b := r.block
	if b == nil {
		return
	}
	switch r.mode {
	case ModeStrong:
		b.DecrementStrongRefs()
	case ModeWeak:
		b.DecrementWeakRefs()
	}
	if !b.ResourceIsAlive() && b.HasNoWeakRefs() {
		b.Destroy()
	}
}
