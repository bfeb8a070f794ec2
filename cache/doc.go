// Package cache memoizes functions of scalar arguments.
//
// A Memoizer wraps a function and shares one in-flight or completed result per
// distinct argument tuple. Concurrent calls with equal arguments run the
// function once and all wait on the same Handle. Entries expire a fixed TTL
// after insertion and, once more than Size entries are held, the oldest
// inserted entry is evicted. Reads never refresh an entry's position.
//
// Failed results are cached exactly like successful ones until they expire,
// are evicted, or are cleared; the Memoizer never retries on its own.
//
// Arguments are restricted to strings, numbers, booleans and an explicit
// absent marker, see Arg. Keys are derived by a Keyer; DefaultKeyer is
// injective over that domain.
package cache
