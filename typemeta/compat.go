package typemeta

import "reflect"

// Compatible reports whether a *from can be used as a *to at the same
// address: the types are identical, or from is a struct whose first field
// is an embedded to (directly or through further first-field embedding).
func Compatible(from, to reflect.Type) bool {
	if from == nil || to == nil {
		return false
	}
	for {
		if from == to {
			return true
		}
		if from.Kind() != reflect.Struct || from.NumField() == 0 {
			return false
		}
		f := from.Field(0)
		if !f.Anonymous || f.Offset != 0 {
			return false
		}
		from = f.Type
	}
}

// IsCompatible is Compatible for static types.
func IsCompatible[From, To any]() bool {
	return Compatible(reflect.TypeFor[From](), reflect.TypeFor[To]())
}
