package pool

// Option configures a PoolAllocator.
type Option func(*PoolAllocator)

// WithObserver subscribes o to the allocator's events from the start.
func WithObserver(o Observer) Option {
	return func(a *PoolAllocator) {
		a.observers = append(a.observers, o)
	}
}
