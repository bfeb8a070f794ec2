package cache

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/memoize/observe"
)

// Func is a function that can be memoized. It receives the call's arguments
// in order and must treat them as read-only.
type Func[V any] func(ctx context.Context, args []Arg) (V, error)

// Option configures a Memoizer.
type Option func(*options)

type options struct {
	clock  Clock
	keyer  Keyer
	logger observe.Logger
	hooks  Hooks
}

// WithClock sets the clock that schedules expiry. A nil clock makes New fail.
func WithClock(c Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithKeyer sets how argument lists map to keys. Nil keeps DefaultKeyer.
func WithKeyer(k Keyer) Option {
	return func(o *options) {
		if k != nil {
			o.keyer = k
		}
	}
}

// WithLogger sets the logger for cache lifecycle events.
func WithLogger(l observe.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithHooks sets the receiver of call, computation and removal events,
// usually an *observe.Instrumentation.
func WithHooks(h Hooks) Option {
	return func(o *options) {
		if h != nil {
			o.hooks = h
		}
	}
}

// Stats is a point-in-time snapshot of memoizer counters.
type Stats struct {
	Hits        uint64
	Misses      uint64
	Evictions   uint64
	Expirations uint64
	Size        int
}

// Memoizer caches the results of a Func by argument list.
//
// Contract:
//   - Concurrency: all methods are safe for concurrent use.
//   - At most one computation per key is in flight; concurrent callers share it.
//   - Entries leave only by expiry, eviction, Forget or Clear.
type Memoizer[V any] struct {
	fn     Func[V]
	cfg    Config
	clock  Clock
	keyer  Keyer
	logger observe.Logger
	hooks  Hooks

	mu    sync.Mutex
	store *store[V]
	stats Stats
}

// New creates a Memoizer for fn. The configuration is validated and fixed.
func New[V any](fn Func[V], cfg Config, opts ...Option) (*Memoizer[V], error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	m, err := build[V](cfg, opts)
	if err != nil {
		return nil, err
	}
	m.fn = fn
	return m, nil
}

// build creates a Memoizer without a Func; typed wrappers supply a
// computation per call instead.
func build[V any](cfg Config, opts []Option) (*Memoizer[V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{
		clock:  SystemClock{},
		keyer:  NewDefaultKeyer(),
		logger: observe.NopLogger(),
		hooks:  nopHooks{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.clock == nil {
		return nil, ErrNilClock
	}

	cfg = cfg.withDefaults()
	return &Memoizer[V]{
		cfg:    cfg,
		clock:  o.clock,
		keyer:  o.keyer,
		logger: o.logger.With(observe.Field{Key: "memo.name", Value: cfg.Name}),
		hooks:  o.hooks,
		store:  newStore[V](),
	}, nil
}

// Name returns the memoizer's name.
func (m *Memoizer[V]) Name() string {
	return m.cfg.Name
}

// Config returns the configuration the memoizer was built with.
func (m *Memoizer[V]) Config() Config {
	return m.cfg
}

// Call returns the shared Handle for args, starting the computation if no
// entry exists. Lookup and registration happen in one critical section, so
// two racing calls for a missing key start exactly one computation.
//
// The computation runs with a context detached from ctx's cancellation:
// other callers may be sharing it.
func (m *Memoizer[V]) Call(ctx context.Context, args ...Arg) *Handle[V] {
	argv := append([]Arg(nil), args...)
	return m.call(ctx, argv, func(ctx context.Context) (V, error) {
		return m.fn(ctx, argv)
	})
}

// call looks up args and, on a miss, registers a new entry and starts run.
func (m *Memoizer[V]) call(ctx context.Context, args []Arg, run func(context.Context) (V, error)) *Handle[V] {
	key := m.keyer.Key(args)

	m.mu.Lock()
	if e, ok := m.store.get(key); ok {
		m.stats.Hits++
		m.mu.Unlock()
		m.hooks.CallObserved(ctx, m.cfg.Name, true)
		return e.handle
	}

	e := &entry[V]{key: key, handle: newHandle[V]()}
	m.store.put(e)
	m.arm(e)
	victim, evicted := m.evictLocked()
	m.stats.Misses++
	size := m.store.len()
	m.mu.Unlock()

	m.hooks.CallObserved(ctx, m.cfg.Name, false)
	m.logger.Debug(ctx, "memo miss", keyField(key), sizeField(size))
	if evicted {
		m.hooks.EntriesRemoved(ctx, m.cfg.Name, ReasonEvicted, 1)
		m.logger.Debug(ctx, "memo entry evicted", keyField(victim.key), sizeField(size))
	}

	go m.compute(context.WithoutCancel(ctx), e.handle, run)

	return e.handle
}

// Do calls and waits. ctx bounds only this caller's wait.
func (m *Memoizer[V]) Do(ctx context.Context, args ...Arg) (V, error) {
	return m.Call(ctx, args...).Wait(ctx)
}

func (m *Memoizer[V]) compute(ctx context.Context, h *Handle[V], run func(context.Context) (V, error)) {
	ctx, done := m.hooks.ComputeStarted(ctx, m.cfg.Name)
	v, err := invoke(ctx, run)
	done(err)
	h.settle(v, err)
}

// invoke runs run, converting a panic into an error so waiters are released.
func invoke[V any](ctx context.Context, run func(context.Context) (V, error)) (v V, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrComputationPanic, r)
		}
	}()
	return run(ctx)
}

// Size returns the number of cached entries, settled or not.
func (m *Memoizer[V]) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.len()
}

// Clear removes every entry and stops every expiry timer. In-flight
// computations finish, but their results are no longer reachable by key.
func (m *Memoizer[V]) Clear() {
	m.mu.Lock()
	n := m.store.len()
	m.store.each(func(e *entry[V]) { e.stopTimer() })
	m.store.clear()
	m.mu.Unlock()

	ctx := context.Background()
	m.hooks.EntriesRemoved(ctx, m.cfg.Name, ReasonCleared, n)
	m.logger.Debug(ctx, "memo cleared", observe.Field{Key: "memo.removed", Value: n})
}

// Forget removes the entry for args, if any, and stops its timer.
func (m *Memoizer[V]) Forget(args ...Arg) bool {
	key := m.keyer.Key(args)

	m.mu.Lock()
	e, ok := m.store.delete(key)
	if ok {
		e.stopTimer()
	}
	size := m.store.len()
	m.mu.Unlock()

	if ok {
		ctx := context.Background()
		m.hooks.EntriesRemoved(ctx, m.cfg.Name, ReasonForgotten, 1)
		m.logger.Debug(ctx, "memo entry forgotten", keyField(key), sizeField(size))
	}
	return ok
}

// Keys returns the cached keys, oldest inserted first.
func (m *Memoizer[V]) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, m.store.len())
	m.store.each(func(e *entry[V]) { keys = append(keys, e.key) })
	return keys
}

// Stats returns a snapshot of the memoizer's counters.
func (m *Memoizer[V]) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.stats
	s.Size = m.store.len()
	return s
}

// Preload warms the cache for each argument list concurrently and waits for
// all of them. It returns the first computation error and skips argument
// lists not yet started; entries for failed computations stay cached like any
// other result.
func (m *Memoizer[V]) Preload(ctx context.Context, calls ...[]Arg) error {
	g, gctx := errgroup.WithContext(ctx)
	if m.cfg.PreloadConcurrency > 0 {
		g.SetLimit(m.cfg.PreloadConcurrency)
	}
	for _, args := range calls {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, err := m.Do(gctx, args...)
			return err
		})
	}
	return g.Wait()
}

// keyField logs a digest of key: encoded keys carry argument text verbatim.
func keyField(key string) observe.Field {
	return observe.Field{Key: "memo.key", Value: digest(key)}
}

func sizeField(n int) observe.Field {
	return observe.Field{Key: "memo.size", Value: n}
}
