// Package memory implements explicit ownership handles: SharedPtr and
// WeakPtr over a reference-counted ControlBlock, the move-only UniquePtr
// and the non-owning ObserverPtr.
//
// Go has no destructors, so every handle operation is a method call.
// Copy takes a new reference, Move transfers it, Assign and MoveAssign
// rebind an existing handle and Reset releases it. The resource's deleter
// runs exactly once, when the last strong reference is released:
//
//	e := memory.MakeShared(Entity{ID: 1})
//	w := memory.NewWeak(e)
//	e.Reset()         // Entity.Drop runs here
//	_ = w.Expired()   // true
//	w.Reset()         // control block torn down
//
// Handles record the run-time type of their resource as a typemeta.TypeInfo.
// As and Holds compare it exactly; Upcast follows first-field embedding;
// Erase yields a SharedPtr[Opaque] that keeps the resource alive without
// naming its type.
//
// FactoryExpirationGuard produces deleters that outlive their factory: a
// deleter called after the factory closed logs a warning and leaks the
// resource rather than calling into freed state.
//
// Broken handle invariants (dereferencing an empty handle, out of range
// indexes, incompatible conversions) are reported through the package
// logger at DPanic level. They panic with a development logger and are
// logged otherwise.
package memory
