package rhtable

import "iter"

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CURSORS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Cursor is a forward position over occupied slots with write access to the value.
//
// Iteration order is physical slot order. A cursor remembers the table generation it was
// created at; once the table is structurally mutated (new key inserted, key erased, grown,
// cleared or assigned) every use of the cursor panics with ErrStaleCursor. Writing a value
// through a cursor or through Index is not structural.
type Cursor[K comparable, V any] struct {
	t     *Table[K, V]
	index int
	gen   uint64
}

// ConstCursor is the read-only variant of Cursor.
type ConstCursor[K comparable, V any] struct {
	c Cursor[K, V]
}

func (t *Table[K, V]) cursor(i int) Cursor[K, V] {
	return Cursor[K, V]{t: t, index: i, gen: t.gen}
}

// first returns the first occupied index, or capacity when there is none.
func (t *Table[K, V]) first() int {
	i := 0
	for i < len(t.slots) && !t.slots[i].used {
		i++
	}
	return i
}

// Begin returns a cursor at the first occupied slot, or End() for an empty table.
func (t *Table[K, V]) Begin() Cursor[K, V] { return t.cursor(t.first()) }

// End returns the sentinel cursor positioned at capacity.
func (t *Table[K, V]) End() Cursor[K, V] { return t.cursor(len(t.slots)) }

// ConstBegin is Begin for read-only traversal.
func (t *Table[K, V]) ConstBegin() ConstCursor[K, V] { return t.Begin().Const() }

// ConstEnd is End for read-only traversal.
func (t *Table[K, V]) ConstEnd() ConstCursor[K, V] { return t.End().Const() }

// ConstFind is Find returning a read-only cursor.
func (t *Table[K, V]) ConstFind(key K) ConstCursor[K, V] { return t.Find(key).Const() }

// check panics when the cursor is detached or outlived its generation.
func (c *Cursor[K, V]) check() {
	if c.t == nil || c.gen != c.t.gen {
		panic(ErrStaleCursor)
	}
}

// entry returns the slot under the cursor, panicking on stale or end cursors.
func (c *Cursor[K, V]) entry() *slot[K, V] {
	c.check()
	if c.index >= len(c.t.slots) {
		panic(ErrEndCursor)
	}
	return &c.t.slots[c.index]
}

// Valid reports whether the cursor can be dereferenced: not stale and not at End.
func (c Cursor[K, V]) Valid() bool {
	return c.t != nil && c.gen == c.t.gen && c.index < len(c.t.slots)
}

// IsEnd reports whether the cursor sits at the End sentinel.
func (c Cursor[K, V]) IsEnd() bool {
	c.check()
	return c.index == len(c.t.slots)
}

// Equal reports whether both cursors point at the same position of the same table.
// Comparing a stale cursor panics with ErrStaleCursor, like every other use.
func (c Cursor[K, V]) Equal(o Cursor[K, V]) bool {
	c.check()
	o.check()
	return c.t == o.t && c.index == o.index
}

// Key returns the key under the cursor.
func (c Cursor[K, V]) Key() K { return c.entry().key }

// Value returns the value under the cursor.
func (c Cursor[K, V]) Value() V { return c.entry().value }

// SetValue overwrites the value under the cursor in place.
func (c Cursor[K, V]) SetValue(v V) { c.entry().value = v }

// Entry returns the key/value pair under the cursor.
func (c Cursor[K, V]) Entry() Pair[K, V] {
	s := c.entry()
	return Pair[K, V]{Key: s.key, Value: s.value}
}

// Next advances to the following occupied slot or to End.
// Advancing past End panics with ErrEndCursor.
func (c *Cursor[K, V]) Next() {
	c.check()
	n := len(c.t.slots)
	if c.index >= n {
		panic(ErrEndCursor)
	}
	c.index++
	for c.index < n && !c.t.slots[c.index].used {
		c.index++
	}
}

// Const returns a read-only view of the same position.
func (c Cursor[K, V]) Const() ConstCursor[K, V] { return ConstCursor[K, V]{c: c} }

// Valid reports whether the cursor can be dereferenced.
func (c ConstCursor[K, V]) Valid() bool { return c.c.Valid() }

// IsEnd reports whether the cursor sits at the End sentinel.
func (c ConstCursor[K, V]) IsEnd() bool { return c.c.IsEnd() }

// Equal reports whether both cursors point at the same position of the same table.
func (c ConstCursor[K, V]) Equal(o ConstCursor[K, V]) bool { return c.c.Equal(o.c) }

// Key returns the key under the cursor.
func (c ConstCursor[K, V]) Key() K { return c.c.Key() }

// Value returns the value under the cursor.
func (c ConstCursor[K, V]) Value() V { return c.c.Value() }

// Entry returns the key/value pair under the cursor.
func (c ConstCursor[K, V]) Entry() Pair[K, V] { return c.c.Entry() }

// Next advances to the following occupied slot or to End.
func (c *ConstCursor[K, V]) Next() { c.c.Next() }

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// RANGE-OVER-FUNC ITERATION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// All yields every entry in slot order. Structurally mutating the table from inside the
// loop body panics with ErrStaleCursor on the next step; overwriting values via Set on
// keys that already exist is allowed.
func (t *Table[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		gen := t.gen
		for i := 0; i < len(t.slots); i++ {
			if gen != t.gen {
				panic(ErrStaleCursor)
			}
			if s := &t.slots[i]; s.used && !yield(s.key, s.value) {
				return
			}
		}
	}
}

// Keys yields every key in slot order, under the same rules as All.
func (t *Table[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range t.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Values yields every value in slot order, under the same rules as All.
func (t *Table[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range t.All() {
			if !yield(v) {
				return
			}
		}
	}
}
