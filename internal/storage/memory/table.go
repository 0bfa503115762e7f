package memory

import (
	"github.com/gofrs/uuid/v5"
)

type source[T any] interface {
	get(id uuid.UUID) (T, bool)
	all() []T
}

// table is committed state. Values are owned by the table; callers get clones.
type table[T any] struct {
	rows  map[uuid.UUID]T
	clone func(T) T
}

func newTable[T any](clone func(T) T) *table[T] {
	return &table[T]{rows: make(map[uuid.UUID]T), clone: clone}
}

func (t *table[T]) get(id uuid.UUID) (T, bool) {
	v, ok := t.rows[id]
	if !ok {
		return v, false
	}
	return t.clone(v), true
}

func (t *table[T]) all() []T {
	out := make([]T, 0, len(t.rows))
	for _, v := range t.rows {
		out = append(out, t.clone(v))
	}
	return out
}

// overlay stages a batch's writes on top of a table. Dropping the overlay is
// the rollback; commit folds it into the base.
type overlay[T any] struct {
	base    *table[T]
	puts    map[uuid.UUID]T
	dels    map[uuid.UUID]struct{}
	touched []uuid.UUID
}

func newOverlay[T any](base *table[T]) *overlay[T] {
	return &overlay[T]{
		base: base,
		puts: make(map[uuid.UUID]T),
		dels: make(map[uuid.UUID]struct{}),
	}
}

func (o *overlay[T]) get(id uuid.UUID) (T, bool) {
	if _, gone := o.dels[id]; gone {
		var zero T
		return zero, false
	}
	if v, ok := o.puts[id]; ok {
		return o.base.clone(v), true
	}
	return o.base.get(id)
}

func (o *overlay[T]) all() []T {
	out := make([]T, 0, len(o.base.rows)+len(o.puts))
	for id, v := range o.base.rows {
		if _, gone := o.dels[id]; gone {
			continue
		}
		if _, staged := o.puts[id]; staged {
			continue
		}
		out = append(out, o.base.clone(v))
	}
	for _, v := range o.puts {
		out = append(out, o.base.clone(v))
	}
	return out
}

func (o *overlay[T]) put(id uuid.UUID, v T) {
	delete(o.dels, id)
	o.puts[id] = o.base.clone(v)
	o.touched = append(o.touched, id)
}

func (o *overlay[T]) del(id uuid.UUID) {
	delete(o.puts, id)
	o.dels[id] = struct{}{}
	o.touched = append(o.touched, id)
}

func (o *overlay[T]) commit() {
	for id := range o.dels {
		delete(o.base.rows, id)
	}
	for id, v := range o.puts {
		o.base.rows[id] = v
	}
}

func (o *overlay[T]) changed() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(o.touched))
	out := make([]uuid.UUID, 0, len(o.touched))
	for _, id := range o.touched {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
