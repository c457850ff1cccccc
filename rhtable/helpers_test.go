package rhtable

import (
	"errors"
	"testing"

	"rhmap/constants"
	"rhmap/hashing"
)

// -----------------------------------------------------------------------------
// ░░ Shared Test Helpers ░░
// -----------------------------------------------------------------------------

// identityTable places key k at home slot k mod capacity.
func identityTable() *Table[int, int] {
	return NewWithHasher[int, int](hashing.Identity[int])
}

// checkInvariants verifies the structural invariants of tb:
//   - load factor: size <= capacity*LoadFactor
//   - every occupied slot caches hasher(key) and its psl equals its distance from home
//   - no slot between an entry's home and the entry is empty
//   - every slot at distance j before an entry has psl >= j (Robin Hood ordering)
//   - psl never exceeds size; empty slots carry psl 0
//   - keys are unique and the occupied count equals size
func checkInvariants[K comparable, V any](t *testing.T, tb *Table[K, V]) {
	t.Helper()
	n := len(tb.slots)
	if n == 0 {
		t.Fatal("capacity must be > 0")
	}
	if float64(tb.size) > float64(n)*constants.LoadFactor {
		t.Fatalf("load factor exceeded: size=%d capacity=%d", tb.size, n)
	}

	used := 0
	seen := make(map[K]int, tb.size)
	for i := range tb.slots {
		s := &tb.slots[i]
		if !s.used {
			if s.psl != 0 {
				t.Fatalf("empty slot %d has psl %d", i, s.psl)
			}
			continue
		}
		used++
		if prev, dup := seen[s.key]; dup {
			t.Fatalf("key %v stored at slots %d and %d", s.key, prev, i)
		}
		seen[s.key] = i

		if s.hash != tb.hasher(s.key) {
			t.Fatalf("slot %d caches hash %#x, hasher gives %#x", i, s.hash, tb.hasher(s.key))
		}
		home := int(s.hash % uint64(n))
		dist := (i - home + n) % n
		if int(s.psl) != dist {
			t.Fatalf("slot %d (key %v): psl %d, actual distance %d", i, s.key, s.psl, dist)
		}
		if int(s.psl) > tb.size {
			t.Fatalf("slot %d psl %d exceeds size %d", i, s.psl, tb.size)
		}
		for j := 0; j < dist; j++ {
			p := &tb.slots[(home+j)%n]
			if !p.used {
				t.Fatalf("empty slot %d inside probe run of key %v (home %d, at %d)", (home+j)%n, s.key, home, i)
			}
			if int(p.psl) < j {
				t.Fatalf("slot %d has psl %d < %d; key %v at %d should have displaced it",
					(home+j)%n, p.psl, j, s.key, i)
			}
		}
	}
	if used != tb.size {
		t.Fatalf("occupied slots %d != size %d", used, tb.size)
	}
}

// collect drains a full Begin→End traversal into a map, failing on duplicates.
func collect[K comparable, V any](t *testing.T, tb *Table[K, V]) map[K]V {
	t.Helper()
	out := make(map[K]V, tb.Size())
	for c := tb.Begin(); !c.IsEnd(); c.Next() {
		if _, dup := out[c.Key()]; dup {
			t.Fatalf("traversal yielded key %v twice", c.Key())
		}
		out[c.Key()] = c.Value()
	}
	return out
}

// expectPanic runs fn and requires it to panic with want.
func expectPanic(t *testing.T, want error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected panic %v, got none", want)
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, want) {
			t.Fatalf("panic = %v, want %v", r, want)
		}
	}()
	fn()
}

// slotKey returns the key stored at slot i, failing when the slot is empty.
func slotKey(t *testing.T, tb *Table[int, int], i int) (int, uint32) {
	t.Helper()
	s := &tb.slots[i]
	if !s.used {
		t.Fatalf("slot %d is empty", i)
	}
	return s.key, s.psl
}
