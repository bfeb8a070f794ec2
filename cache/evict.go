package cache

// evictLocked removes the oldest inserted entry when the store holds more
// than Size entries. At most one entry is removed per insert; Size is fixed,
// so one insert can only overflow by one. Caller holds m.mu.
func (m *Memoizer[V]) evictLocked() (*entry[V], bool) {
	if m.store.len() <= m.cfg.Size {
		return nil, false
	}
	victim, ok := m.store.oldest()
	if !ok {
		return nil, false
	}
	m.store.delete(victim.key)
	victim.stopTimer()
	m.stats.Evictions++
	return victim, true
}
