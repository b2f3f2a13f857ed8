package typemeta

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// TypeID identifies a Go type for the life of the process.
type TypeID uint64

// InvalidTypeID is never assigned to a type.
const InvalidTypeID TypeID = 0

// TypeInfo describes a registered type.
type TypeInfo struct {
	Name      string
	ID        TypeID
	Size      uintptr
	Alignment uintptr
}

var (
	registry sync.Map // reflect.Type -> TypeInfo
	lastID   atomic.Uint64
)

// Of returns the TypeInfo of T, registering T on first use.
func Of[T any]() TypeInfo {
	return OfType(reflect.TypeFor[T]())
}

// OfType returns the TypeInfo of t, registering t on first use.
// A nil type yields the zero TypeInfo.
func OfType(t reflect.Type) TypeInfo {
	if t == nil {
		return TypeInfo{}
	}
	if info, ok := registry.Load(t); ok {
		return info.(TypeInfo)
	}

	info := TypeInfo{
		ID:        TypeID(lastID.Add(1)),
		Name:      t.String(),
		Size:      t.Size(),
		Alignment: uintptr(t.Align()),
	}
	// A concurrent registration may win; its ID is the one everybody sees.
	actual, _ := registry.LoadOrStore(t, info)
	return actual.(TypeInfo)
}

// IDOf returns the TypeID of T.
func IDOf[T any]() TypeID {
	return Of[T]().ID
}

// Lookup returns the TypeInfo of t without registering it.
func Lookup(t reflect.Type) (TypeInfo, bool) {
	if t == nil {
		return TypeInfo{}, false
	}
	info, ok := registry.Load(t)
	if !ok {
		return TypeInfo{}, false
	}
	return info.(TypeInfo), true
}

// Valid reports whether ti describes a registered type.
func (ti TypeInfo) Valid() bool {
	return ti.ID != InvalidTypeID
}

// Equal compares type identity only.
func (ti TypeInfo) Equal(other TypeInfo) bool {
	return ti.ID == other.ID
}

func (ti TypeInfo) String() string {
	return fmt.Sprintf("TypeInfo{ ID = %d, Name = '%s', Size = %d, Alignment = %d }",
		ti.ID, ti.Name, ti.Size, ti.Alignment)
}
