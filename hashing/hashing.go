// ════════════════════════════════════════════════════════════════════════════════════════════════
// 🔑 HASHER CAPABILITIES
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: rhmap
// Component: Pluggable Key → uint64 Hash Functions
//
// Description:
//   A Hasher is the only thing a table knows about its keys beyond ==. Every hasher here is a
//   pure, deterministic, total function; the table caches its output per slot and reduces it
//   modulo capacity to find the home slot.
//
// Catalogue:
//   - Comparable: runtime maphash over any comparable type (process-seeded, the default)
//   - Int:        Murmur3 fmix64 avalanche for integer keys
//   - Identity:   raw integer value, for deterministic placement in tests and tooling
//   - String:     xxh64 over string bytes
//   - Keccak:     legacy Keccak-256 truncated to 64 bits, for hex address keys
//   - Keyed:      keyed BLAKE2b, for keys chosen by an untrusted party
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package hashing

import (
	"errors"
	"hash/maphash"

	"rhmap/utils"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// TYPE DEFINITIONS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Hasher maps a key to an unsigned 64-bit hash.
// It must return the same value for equal keys for the lifetime of the table using it.
type Hasher[K any] func(K) uint64

// Integer is the set of key types accepted by Int and Identity.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// ErrKeyTooLong is returned by Keyed when the MAC key exceeds BLAKE2b's 64-byte limit.
var ErrKeyTooLong = errors.New("hashing: keyed hasher key exceeds 64 bytes")

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// GENERIC HASHERS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Comparable returns a hasher for any comparable key type backed by the runtime's maphash.
// Each call draws a fresh seed, so two hashers from separate calls disagree; a table and its
// clones share one hasher value and therefore one seed.
func Comparable[K comparable]() Hasher[K] {
	seed := maphash.MakeSeed()
	return func(k K) uint64 {
		return maphash.Comparable(seed, k)
	}
}

// Int spreads integer keys with a Murmur3 finaliser.
// Sequential keys land on unrelated home slots.
//
//go:nosplit
//go:inline
func Int[K Integer](k K) uint64 {
	return utils.Mix64(uint64(k))
}

// Identity returns the key itself. Key k lands on home slot k mod capacity,
// which makes collisions and wraparound easy to arrange.
//
//go:nosplit
//go:inline
func Identity[K Integer](k K) uint64 {
	return uint64(k)
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// STRING HASHERS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// String hashes string keys with xxh64.
//
//go:nosplit
//go:inline
func String[K ~string](k K) uint64 {
	return xxhash.Sum64String(string(k))
}

// Keccak hashes string keys with legacy Keccak-256 and keeps the leading 8 bytes.
// Meant for hex address keys whose fingerprints must match on-chain tooling.
// Each call uses its own sponge, so the hasher is safe for concurrent use.
func Keccak[K ~string](k K) uint64 {
	h := sha3.NewLegacyKeccak256()
	h.Write(utils.S2b(string(k)))
	var sum [32]byte
	return utils.LoadBE64(h.Sum(sum[:0]))
}

// Keyed returns a BLAKE2b-64 MAC hasher under key. Without the key an adversary cannot
// predict home slots, so a flood of colliding keys cannot degrade probing to O(capacity).
// The key is copied; an empty key is allowed and yields plain BLAKE2b-64.
func Keyed[K ~string](key []byte) (Hasher[K], error) {
	if len(key) > blake2b.Size {
		return nil, ErrKeyTooLong
	}
	mac := append([]byte(nil), key...)
	// Probe once so New can never fail inside the hasher.
	if _, err := blake2b.New(8, mac); err != nil {
		return nil, err
	}
	return func(k K) uint64 {
		// New only fails on a bad size or key length, both checked above.
		h, _ := blake2b.New(8, mac)
		h.Write(utils.S2b(string(k)))
		var sum [8]byte
		return utils.LoadBE64(h.Sum(sum[:0]))
	}, nil
}
