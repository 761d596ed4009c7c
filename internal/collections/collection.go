package collections

import (
	"sync"

	"taskdeck/internal/model"
)

type Op int

const (
	OpCreate Op = iota
	OpUpdate
	OpDelete
)

// Collection is a local copy of a server collection keyed by id. It only changes through
// Replace (a full fetch) or Apply (a server echo), never optimistically.
type Collection[T any] struct {
	id func(T) int
	// prepare runs on every record entering the collection.
	prepare func(*T)

	mu    sync.RWMutex
	items []T
}

type (
	Tasks = Collection[model.Task]
	Notes = Collection[model.Note]
)

// NewTasks normalizes tasks on the way in using clock for missing completion times.
func NewTasks(clock Clock) *Tasks {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Collection[model.Task]{
		id:      func(t model.Task) int { return t.ID },
		prepare: func(t *model.Task) { t.Normalize(clock.Now()) },
	}
}

func NewNotes() *Notes {
	return &Collection[model.Note]{
		id: func(n model.Note) int { return n.ID },
	}
}

func (c *Collection[T]) Replace(all []T) {
	items := make([]T, len(all))
	copy(items, all)
	if c.prepare != nil {
		for i := range items {
			c.prepare(&items[i])
		}
	}
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
}

// Apply merges one server echo: create appends (or replaces a duplicate id), update replaces
// the matching record and delete removes it. An update for an unknown id is ignored.
func (c *Collection[T]) Apply(op Op, rec T) {
	if c.prepare != nil && op != OpDelete {
		c.prepare(&rec)
	}
	id := c.id(rec)

	c.mu.Lock()
	defer c.mu.Unlock()

	idx := -1
	for i := range c.items {
		if c.id(c.items[i]) == id {
			idx = i
			break
		}
	}

	switch op {
	case OpCreate:
		if idx >= 0 {
			c.items[idx] = rec
			return
		}
		c.items = append(c.items, rec)
	case OpUpdate:
		if idx >= 0 {
			c.items[idx] = rec
		}
	case OpDelete:
		if idx < 0 {
			return
		}
		next := make([]T, 0, len(c.items)-1)
		next = append(next, c.items[:idx]...)
		next = append(next, c.items[idx+1:]...)
		c.items = next
	}
}

// Remove is Apply(OpDelete) by id.
func (c *Collection[T]) Remove(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.items[:0:0]
	for _, it := range c.items {
		if c.id(it) != id {
			next = append(next, it)
		}
	}
	c.items = next
}

// All returns a copy; callers may not mutate the collection through it.
func (c *Collection[T]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collection[T]) Get(id int) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if c.id(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
