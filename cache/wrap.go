package cache

import "context"

// Scalar is the set of Go types a typed wrapper accepts as arguments.
// float32 arguments are widened to float64 before encoding, see Float.
type Scalar interface {
	~string | ~bool |
		~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// argFor converts a Scalar. ArgOf accepts every Scalar kind, so the error is
// always nil here.
func argFor[T Scalar](v T) Arg {
	a, _ := ArgOf(v)
	return a
}

// controls exposes cache management shared by the typed wrappers.
type controls[V any] struct {
	m *Memoizer[V]
}

// Size returns the number of cached entries.
func (c controls[V]) Size() int { return c.m.Size() }

// Clear removes every entry and stops every expiry timer.
func (c controls[V]) Clear() { c.m.Clear() }

// Stats returns a snapshot of cache counters.
func (c controls[V]) Stats() Stats { return c.m.Stats() }

// Name returns the memoizer's name.
func (c controls[V]) Name() string { return c.m.Name() }

// Func0 is a memoized function of no arguments.
type Func0[V any] struct {
	controls[V]
	fn func(context.Context) (V, error)
}

// Wrap0 memoizes fn. All calls share one entry.
func Wrap0[V any](fn func(context.Context) (V, error), cfg Config, opts ...Option) (*Func0[V], error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	m, err := build[V](cfg, opts)
	if err != nil {
		return nil, err
	}
	return &Func0[V]{controls: controls[V]{m: m}, fn: fn}, nil
}

// Call returns the shared result.
func (f *Func0[V]) Call(ctx context.Context) (V, error) {
	return f.m.call(ctx, nil, f.fn).Wait(ctx)
}

// Func1 is a memoized function of one scalar argument.
type Func1[A Scalar, V any] struct {
	controls[V]
	fn func(context.Context, A) (V, error)
}

// Wrap1 memoizes fn by its argument.
func Wrap1[A Scalar, V any](fn func(context.Context, A) (V, error), cfg Config, opts ...Option) (*Func1[A, V], error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	m, err := build[V](cfg, opts)
	if err != nil {
		return nil, err
	}
	return &Func1[A, V]{controls: controls[V]{m: m}, fn: fn}, nil
}

// Call returns the shared result for a.
func (f *Func1[A, V]) Call(ctx context.Context, a A) (V, error) {
	args := []Arg{argFor(a)}
	return f.m.call(ctx, args, func(ctx context.Context) (V, error) {
		return f.fn(ctx, a)
	}).Wait(ctx)
}

// Forget removes the entry for a.
func (f *Func1[A, V]) Forget(a A) bool {
	return f.m.Forget(argFor(a))
}

// Func2 is a memoized function of two scalar arguments.
type Func2[A, B Scalar, V any] struct {
	controls[V]
	fn func(context.Context, A, B) (V, error)
}

// Wrap2 memoizes fn by its arguments.
func Wrap2[A, B Scalar, V any](fn func(context.Context, A, B) (V, error), cfg Config, opts ...Option) (*Func2[A, B, V], error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	m, err := build[V](cfg, opts)
	if err != nil {
		return nil, err
	}
	return &Func2[A, B, V]{controls: controls[V]{m: m}, fn: fn}, nil
}

// Call returns the shared result for (a, b).
func (f *Func2[A, B, V]) Call(ctx context.Context, a A, b B) (V, error) {
	args := []Arg{argFor(a), argFor(b)}
	return f.m.call(ctx, args, func(ctx context.Context) (V, error) {
		return f.fn(ctx, a, b)
	}).Wait(ctx)
}

// Forget removes the entry for (a, b).
func (f *Func2[A, B, V]) Forget(a A, b B) bool {
	return f.m.Forget(argFor(a), argFor(b))
}

// Func3 is a memoized function of three scalar arguments.
type Func3[A, B, C Scalar, V any] struct {
	controls[V]
	fn func(context.Context, A, B, C) (V, error)
}

// Wrap3 memoizes fn by its arguments.
func Wrap3[A, B, C Scalar, V any](fn func(context.Context, A, B, C) (V, error), cfg Config, opts ...Option) (*Func3[A, B, C, V], error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	m, err := build[V](cfg, opts)
	if err != nil {
		return nil, err
	}
	return &Func3[A, B, C, V]{controls: controls[V]{m: m}, fn: fn}, nil
}

// Call returns the shared result for (a, b, c).
func (f *Func3[A, B, C, V]) Call(ctx context.Context, a A, b B, c C) (V, error) {
	args := []Arg{argFor(a), argFor(b), argFor(c)}
	return f.m.call(ctx, args, func(ctx context.Context) (V, error) {
		return f.fn(ctx, a, b, c)
	}).Wait(ctx)
}

// Forget removes the entry for (a, b, c).
func (f *Func3[A, B, C, V]) Forget(a A, b B, c C) bool {
	return f.m.Forget(argFor(a), argFor(b), argFor(c))
}
