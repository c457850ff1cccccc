// ════════════════════════════════════════════════════════════════════════════════════════════════
// ⚡ ROBIN HOOD HASH TABLE
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: rhmap
// Component: Growable Generic Hash Map Implementation
//
// Description:
//   Open-addressing hash map using Robin Hood displacement and backward-shift deletion.
//   Entries live inline in a single slot array, each carrying its cached hash and probe
//   sequence length (psl), so no lookup ever recomputes a resident's hash.
//
// Design Principles:
//   - Odd capacities grown as 2c+1, home slot = hash mod capacity
//   - Load factor capped at 0.8; growth happens before the insert that would exceed it
//   - Richer entries (lower psl) yield their slot to poorer ones during insertion
//   - Deletion shifts the following run back one slot instead of leaving tombstones
//   - Single-threaded: no locking, callers synchronise externally
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package rhtable

import (
	"errors"
	"fmt"
	"iter"

	"rhmap/constants"
	"rhmap/hashing"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// TYPE DEFINITIONS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

var (
	// ErrKeyNotFound is returned (wrapped with the key) by At on a miss.
	ErrKeyNotFound = errors.New("rhtable: key not found")

	// ErrStaleCursor is the panic value for a cursor used after a structural mutation.
	ErrStaleCursor = errors.New("rhtable: cursor used after structural mutation")

	// ErrEndCursor is the panic value for dereferencing or advancing the end cursor.
	ErrEndCursor = errors.New("rhtable: end cursor dereferenced")
)

// slot is one cell of the table. The zero slot is the empty marker: used == false and
// psl == 0. Backward-shift deletion relies on empty slots reporting psl 0.
type slot[K comparable, V any] struct {
	key   K
	value V
	hash  uint64 // hasher(key), computed when the entry was placed
	psl   uint32 // distance from hash mod capacity
	used  bool
}

// Pair is a key/value entry as seen by callers.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// Table maps unique keys to values with Robin Hood open addressing.
//
// The zero Table is not ready for use; build one with New, NewWithHasher, FromSeq or
// FromPairs. A Table must not be used from multiple goroutines without external locking.
type Table[K comparable, V any] struct {
	slots  []slot[K, V]
	size   int
	hasher hashing.Hasher[K]
	gen    uint64 // bumped on every structural mutation; cursors compare against it
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CONSTRUCTORS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// New creates an empty table of constants.InitialCapacity slots using a maphash-based
// hasher for K.
func New[K comparable, V any]() *Table[K, V] {
	return NewWithHasher[K, V](nil)
}

// NewWithHasher creates an empty table that hashes keys with h.
// A nil h selects hashing.Comparable.
func NewWithHasher[K comparable, V any](h hashing.Hasher[K]) *Table[K, V] {
	if h == nil {
		h = hashing.Comparable[K]()
	}
	return &Table[K, V]{
		slots:  make([]slot[K, V], constants.InitialCapacity),
		hasher: h,
	}
}

// FromSeq builds a table by inserting every pair produced by seq in order.
// When seq yields a key twice the first value wins, exactly as with Insert.
func FromSeq[K comparable, V any](seq iter.Seq2[K, V], h hashing.Hasher[K]) *Table[K, V] {
	t := NewWithHasher[K, V](h)
	for k, v := range seq {
		t.Insert(k, v)
	}
	return t
}

// FromPairs builds a table from a literal list of pairs.
func FromPairs[K comparable, V any](h hashing.Hasher[K], pairs ...Pair[K, V]) *Table[K, V] {
	t := NewWithHasher[K, V](h)
	for _, p := range pairs {
		t.Insert(p.Key, p.Value)
	}
	return t
}

// Clone returns a deep copy: a new slot array holding value copies of every entry,
// with the same capacity and the same hasher.
func (t *Table[K, V]) Clone() *Table[K, V] {
	c := &Table[K, V]{
		slots:  make([]slot[K, V], len(t.slots)),
		size:   t.size,
		hasher: t.hasher,
	}
	copy(c.slots, t.slots)
	return c
}

// Assign replaces t's contents with a copy of src. The copy is built before t's old
// storage is released, so assigning a table to itself is harmless.
// All cursors into t are invalidated.
func (t *Table[K, V]) Assign(src *Table[K, V]) {
	if t == src {
		return
	}
	slots := make([]slot[K, V], len(src.slots))
	copy(slots, src.slots)
	t.slots, t.size, t.hasher = slots, src.size, src.hasher
	t.gen++
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// ACCESSORS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Size returns the number of entries.
func (t *Table[K, V]) Size() int { return t.size }

// Empty reports whether the table holds no entries.
func (t *Table[K, V]) Empty() bool { return t.size == 0 }

// Capacity returns the slot count.
func (t *Table[K, V]) Capacity() int { return len(t.slots) }

// HashFunction returns the hasher the table was built with.
func (t *Table[K, V]) HashFunction() hashing.Hasher[K] { return t.hasher }

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CORE OPERATIONS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// find returns the slot holding key, or the empty slot that ends its probe run.
//
// PROBE:
//
//	Start at hash mod capacity and walk forward, wrapping at the end, until the slot is
//	empty or holds an entry whose cached hash and key both match. The load factor cap
//	guarantees an empty slot exists, so the walk always terminates.
//
//go:registerparams
func (t *Table[K, V]) find(key K) int {
	h := t.hasher(key)
	n := len(t.slots)
	i := int(h % uint64(n))
	for {
		s := &t.slots[i]
		if !s.used || (s.hash == h && s.key == key) {
			return i
		}
		if i++; i == n {
			i = 0
		}
	}
}

// Find returns a cursor at key, or End() when key is absent.
func (t *Table[K, V]) Find(key K) Cursor[K, V] {
	return t.cursor(t.lookup(key))
}

// Get returns the value stored under key and whether it was present.
func (t *Table[K, V]) Get(key K) (V, bool) {
	i := t.find(key)
	return t.slots[i].value, t.slots[i].used
}

// Contains reports whether key is present.
func (t *Table[K, V]) Contains(key K) bool {
	return t.slots[t.find(key)].used
}

// At returns the value stored under key. A missing key yields an error wrapping
// ErrKeyNotFound; the table is never modified.
func (t *Table[K, V]) At(key K) (V, error) {
	i := t.find(key)
	if !t.slots[i].used {
		var zero V
		return zero, fmt.Errorf("%w: %v", ErrKeyNotFound, key)
	}
	return t.slots[i].value, nil
}

// Insert adds key → value unless key is already present.
//
// RETURN VALUES:
//   - cursor:   the slot now holding key (the existing one on a duplicate)
//   - inserted: false when key was already present; the stored value is left untouched
//
// The table grows first when one more entry would exceed the load factor, even if key
// turns out to be a duplicate.
func (t *Table[K, V]) Insert(key K, value V) (Cursor[K, V], bool) {
	if float64(t.size+1) > float64(len(t.slots))*constants.LoadFactor {
		t.grow()
	}
	at, inserted := t.place(slot[K, V]{key: key, value: value, hash: t.hasher(key), used: true})
	if inserted {
		t.gen++
	}
	return t.cursor(at), inserted
}

// place runs the Robin Hood insertion walk for e and reports where e's key ended up.
//
// ROBIN HOOD ALGORITHM:
//
//	The candidate starts at its home slot with psl 0. At every occupied slot, if the
//	candidate has travelled farther than the resident (strictly larger psl) they swap:
//	the candidate settles and the evicted resident continues the walk with its own psl.
//	Each step advances one slot and increments the carried entry's psl. The walk ends at
//	the first empty slot, which receives whatever entry is being carried.
//
// DUPLICATES:
//
//	An equal key can only sit before the first swap point, so the duplicate check runs
//	only while the caller's own entry is being carried. A duplicate returns before any
//	slot has been modified.
//
//go:registerparams
func (t *Table[K, V]) place(e slot[K, V]) (int, bool) {
	n := len(t.slots)
	i := int(e.hash % uint64(n))
	at := -1 // slot where the caller's key settled; -1 while still carrying it

	for t.slots[i].used {
		s := &t.slots[i]
		if at < 0 && s.hash == e.hash && s.key == e.key {
			return i, false
		}
		if e.psl > s.psl {
			e, *s = *s, e
			if at < 0 {
				at = i
			}
		}
		e.psl++
		if i++; i == n {
			i = 0
		}
	}

	t.slots[i] = e
	if at < 0 {
		at = i
	}
	t.size++
	return at, true
}

// Erase removes key if present; a missing key is a no-op.
func (t *Table[K, V]) Erase(key K) {
	t.Remove(key)
}

// Remove removes key and reports whether it was present.
func (t *Table[K, V]) Remove(key K) bool {
	i := t.find(key)
	if !t.slots[i].used {
		return false
	}
	t.eraseAt(i)
	return true
}

// eraseAt empties slot i and closes the gap with a backward shift.
//
// BACKWARD SHIFT:
//
//	While the slot after the gap holds an entry away from its home (psl > 0), move it
//	into the gap, decrement its psl and advance the gap. The shift stops at an empty slot
//	or at an entry already home, which leaves every run exactly as if the erased entry
//	had never been inserted.
//
//go:registerparams
func (t *Table[K, V]) eraseAt(i int) {
	n := len(t.slots)
	t.slots[i] = slot[K, V]{}
	for {
		j := i + 1
		if j == n {
			j = 0
		}
		if t.slots[j].psl == 0 { // empty slots always carry psl 0
			break
		}
		t.slots[i] = t.slots[j]
		t.slots[i].psl--
		t.slots[j] = slot[K, V]{}
		i = j
	}
	t.size--
	t.gen++
}

// grow rebuilds the table at capacity 2c+1.
//
// Every entry goes back through place with its hash recomputed by the hasher, so psl
// values are derived fresh for the new capacity. The new array is assembled off to the
// side and swapped in only once complete; callers never observe a half-built table.
func (t *Table[K, V]) grow() {
	next := Table[K, V]{
		slots:  make([]slot[K, V], 2*len(t.slots)+1),
		hasher: t.hasher,
	}
	for i := range t.slots {
		if s := &t.slots[i]; s.used {
			next.place(slot[K, V]{key: s.key, value: s.value, hash: t.hasher(s.key), used: true})
		}
	}
	t.slots, t.size = next.slots, next.size
	t.gen++
}

// Index returns a pointer to the value stored under key, inserting the zero V first when
// key is absent. The pointer stays valid until the next structural mutation.
func (t *Table[K, V]) Index(key K) *V {
	i := t.find(key)
	if !t.slots[i].used {
		var zero V
		c, _ := t.Insert(key, zero)
		i = c.index
	}
	return &t.slots[i].value
}

// Set stores value under key, inserting or overwriting.
func (t *Table[K, V]) Set(key K, value V) {
	*t.Index(key) = value
}

// Clear drops all storage and starts over at constants.InitialCapacity.
func (t *Table[K, V]) Clear() {
	t.slots = make([]slot[K, V], constants.InitialCapacity)
	t.size = 0
	t.gen++
}

// lookup is find mapped to the cursor convention: a miss becomes the end index.
func (t *Table[K, V]) lookup(key K) int {
	if i := t.find(key); t.slots[i].used {
		return i
	}
	return len(t.slots)
}
