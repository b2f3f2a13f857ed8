// Package errors provides structured error types for the Xuzumi module.
//
// Errors are categorized by Phase (where in the ownership lifecycle the
// error occurred) and Kind (error category). The Error type carries the
// resource and factory type names, the offending address and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDeallocate, errors.KindForeignPointer).
//		ResourceType("Entity").
//		Address(uintptr(p)).
//		Detail("not a pool chunk").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.DoubleFree("Entity", addr)
//	err := errors.DanglingFactory("Entity", "PoolAllocator", addr)
//
// Most failures in the ownership core are reported through the logger and
// never returned; these errors are what gets logged. All errors implement
// the standard error interface and support errors.Is/As.
package errors
