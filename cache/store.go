package cache

import "container/list"

// entry is one cached computation. Its identity (pointer) distinguishes it
// from a later entry for the same key.
type entry[V any] struct {
	key    string
	handle *Handle[V]
	timer  Timer
	elem   *list.Element
}

func (e *entry[V]) stopTimer() {
	if e.timer != nil {
		e.timer.Stop()
	}
}

// store maps keys to entries and remembers first-insertion order.
// Lookups never reorder. Callers serialise access.
type store[V any] struct {
	items map[string]*entry[V]
	order *list.List // Front = oldest
}

func newStore[V any]() *store[V] {
	return &store[V]{
		items: make(map[string]*entry[V]),
		order: list.New(),
	}
}

func (s *store[V]) get(key string) (*entry[V], bool) {
	e, ok := s.items[key]
	return e, ok
}

// put inserts e as the newest entry. The key must be absent.
func (s *store[V]) put(e *entry[V]) {
	e.elem = s.order.PushBack(e)
	s.items[e.key] = e
}

// delete removes the entry for key and returns it.
func (s *store[V]) delete(key string) (*entry[V], bool) {
	e, ok := s.items[key]
	if !ok {
		return nil, false
	}
	s.order.Remove(e.elem)
	delete(s.items, key)
	return e, true
}

// oldest returns the earliest inserted surviving entry.
func (s *store[V]) oldest() (*entry[V], bool) {
	front := s.order.Front()
	if front == nil {
		return nil, false
	}
	return front.Value.(*entry[V]), true
}

func (s *store[V]) len() int {
	return len(s.items)
}

// each visits entries oldest first.
func (s *store[V]) each(fn func(*entry[V])) {
	for el := s.order.Front(); el != nil; el = el.Next() {
		fn(el.Value.(*entry[V]))
	}
}

func (s *store[V]) clear() {
	s.items = make(map[string]*entry[V])
	s.order.Init()
}
