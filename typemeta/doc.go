// Package typemeta assigns stable identifiers and layout information to Go
// types at run time.
//
// A TypeID is handed out the first time a type is queried and stays the same
// for the life of the process. TypeInfo bundles the ID with the type's name,
// size and alignment:
//
//	info := typemeta.Of[Entity]()
//	fmt.Println(info) // TypeInfo{ ID = 3, Name = 'game.Entity', Size = 24, Alignment = 8 }
//
// Equality of TypeInfo values compares IDs only. The zero TypeInfo is the
// "no type" value and is returned for empty handles.
//
// # Compatibility
//
// Compatible reports whether a pointer to one type can be reinterpreted as
// a pointer to another without moving the address. That holds for identical
// types and for structs whose first field embeds the target type:
//
//	type Base struct{ Name string }
//	type Derived struct {
//	    Base
//	    Extra int
//	}
//
//	typemeta.IsCompatible[Derived, Base]() // true
//	typemeta.IsCompatible[Base, Derived]() // false
package typemeta
