package cache

import (
	"context"
	"time"
)

// Timer is a scheduled one-shot task.
type Timer interface {
	// Stop prevents the task from running. It reports false if the task
	// already ran or was stopped.
	Stop() bool
}

// Clock schedules expiry tasks.
// The default implementation uses time.AfterFunc.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemClock is the real-time Clock.
type SystemClock struct{}

func (SystemClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// arm schedules removal of e one TTL from now. Caller holds m.mu.
func (m *Memoizer[V]) arm(e *entry[V]) {
	e.timer = m.clock.AfterFunc(m.cfg.TTL, func() { m.expire(e) })
}

// expire removes e if it is still the entry stored under its key. A timer
// that lost a race with Stop finds a different entry, or none, and does nothing.
func (m *Memoizer[V]) expire(e *entry[V]) {
	m.mu.Lock()
	cur, ok := m.store.get(e.key)
	if !ok || cur != e {
		m.mu.Unlock()
		return
	}
	m.store.delete(e.key)
	m.stats.Expirations++
	size := m.store.len()
	m.mu.Unlock()

	ctx := context.Background()
	m.hooks.EntriesRemoved(ctx, m.cfg.Name, ReasonExpired, 1)
	m.logger.Debug(ctx, "memo entry expired", keyField(e.key), sizeField(size))
}
