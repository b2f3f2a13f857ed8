package handle

import "github.com/leoovs/Xuzumi/typemeta"

// ID is an opaque reference issued by a Generator.
// ID 0 is reserved and always invalid.
type ID uint32

// InvalidID never refers to a live handle.
const InvalidID ID = 0

// EventType identifies a table lifecycle notification.
type EventType uint8

const (
	EventInserted EventType = iota
	EventRemoved
)

// Event represents a handle lifecycle event.
type Event struct {
	ID     ID
	TypeID typemeta.TypeID
	Type   EventType
}

// Observer receives notifications about table lifecycle events.
type Observer interface {
	OnHandleEvent(Event)
}
