// Package observe provides observability primitives for memoized functions.
//
// It is a pure instrumentation library: no caching, no transport, no I/O
// beyond exporter setup. An Instrumentation built from an Observer is passed
// to the cache package, which reports calls, computations and removals
// through it.
package observe
