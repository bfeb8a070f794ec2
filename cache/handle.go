package cache

import "context"

// Handle is the shared, settle-once result of one computation.
// Every caller that hits the same cache entry receives the same Handle.
type Handle[V any] struct {
	done  chan struct{}
	value V
	err   error
}

func newHandle[V any]() *Handle[V] {
	return &Handle[V]{done: make(chan struct{})}
}

// settle records the result and releases all waiters. Called exactly once.
func (h *Handle[V]) settle(v V, err error) {
	h.value = v
	h.err = err
	close(h.done)
}

// Done is closed once the computation has settled.
func (h *Handle[V]) Done() <-chan struct{} {
	return h.done
}

// Settled reports whether the computation has finished.
func (h *Handle[V]) Settled() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the computation settles or ctx is done. Cancelling ctx
// abandons only this caller's wait; the computation keeps running for others.
func (h *Handle[V]) Wait(ctx context.Context) (V, error) {
	select {
	case <-h.done:
		return h.value, h.err
	default:
	}

	select {
	case <-h.done:
		return h.value, h.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}
