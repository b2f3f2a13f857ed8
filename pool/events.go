package pool

import "github.com/leoovs/Xuzumi/typemeta"

// EventType identifies a pool lifecycle notification.
type EventType uint8

const (
	EventPoolCreated EventType = iota
	EventBlockCreated
	EventAllocated
	EventDeallocated
	EventClosed
)

func (e EventType) String() string {
	switch e {
	case EventPoolCreated:
		return "pool_created"
	case EventBlockCreated:
		return "block_created"
	case EventAllocated:
		return "allocated"
	case EventDeallocated:
		return "deallocated"
	case EventClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Event describes a pool lifecycle change. Address is zero for pool and
// block level events.
type Event struct {
	Type    string
	TypeID  typemeta.TypeID
	Address uintptr
	Block   int
	Kind    EventType
}

// Observer receives pool lifecycle events. Observers run synchronously on
// the goroutine that owns the allocator.
type Observer interface {
	OnPoolEvent(Event)
}
