package memory

import (
	"go.uber.org/zap"

	"github.com/leoovs/Xuzumi/errors"
	"github.com/leoovs/Xuzumi/typemeta"
)

// FactoryExpirationGuard lets a factory hand out deleters that stay safe
// after the factory itself is gone.
//
// The guard holds the only strong reference to the factory, bound with a
// no-op deleter. Deleters made by the guard hold weak references; once the
// guard is closed they log the dangling call and leak the resource instead
// of calling into a dead factory.
type FactoryExpirationGuard[F any] struct {
	factory *SharedPtr[F]
	weak    *WeakPtr[F]
}

// NewFactoryExpirationGuard guards factory. The factory's owner must Close
// the guard when the factory is torn down.
func NewFactoryExpirationGuard[F any](factory *F) *FactoryExpirationGuard[F] {
	strong := NewSharedWithDeleter(factory, NoopDelete[F])
	return &FactoryExpirationGuard[F]{
		factory: strong,
		weak:    NewWeak(strong),
	}
}

// Close marks the factory as expired. Deleters made earlier stop calling
// into it.
func (g *FactoryExpirationGuard[F]) Close() {
	g.factory.Reset()
}

// Expired reports whether Close has been called.
func (g *FactoryExpirationGuard[F]) Expired() bool {
	return g.weak.Expired()
}

// Factory returns the guarded factory, or nil after Close.
func (g *FactoryExpirationGuard[F]) Factory() *F {
	return g.factory.Get()
}

// MakeDangleProtectedDeleter wraps fn into a deleter that runs only while
// the factory is alive. A call after Close logs a warning naming the
// resource type, its address and the factory type, and leaves the resource
// alone.
//
// Each deleter serves a single resource and drops its reference to the
// factory after the first call. The liveness check and the call are not
// atomic: closing the factory from another goroutine while a deleter runs
// is a race the caller must avoid.
func MakeDangleProtectedDeleter[R, F any](g *FactoryExpirationGuard[F], fn func(*R)) Deleter[R] {
	factory := g.weak.Copy()
	return func(res *R) {
		defer factory.Reset()
		if factory.Expired() {
			err := errors.DanglingFactory(typemeta.Of[R]().Name, typemeta.Of[F]().Name, AddressOf(res))
			Logger().Warn("could not free resource", zap.Error(err))
			return
		}
		fn(res)
	}
}

// MakeDangleProtectedMethodDeleter is MakeDangleProtectedDeleter for a
// factory method taking the resource.
func MakeDangleProtectedMethodDeleter[R, F any](g *FactoryExpirationGuard[F], method func(*F, *R)) Deleter[R] {
	factory := g.factory.Get()
	return MakeDangleProtectedDeleter(g, func(res *R) { method(factory, res) })
}
