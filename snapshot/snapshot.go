// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: snapshot.go — Table snapshots: shared errors & content digest
//
// Purpose:
//   - Serialises rhtable.Table contents to JSON (json.go) and SQLite (store.go).
//   - Computes an order-independent digest so a reloaded table can be verified
//     even though its slot layout (and so its iteration order) differs.
//
// Notes:
//   - Keys and values are encoded with sonnet; K and V must be JSON-encodable.
//   - Capacity is recorded for diagnostics only; reloading re-inserts every entry
//     and lets the table grow naturally.
//
// ⚠️ Tables are not locked while being saved; callers must not mutate them
//    concurrently (the table panics on the next iteration step if they do).
// ─────────────────────────────────────────────────────────────────────────────

package snapshot

import (
	"errors"
	"fmt"

	"rhmap/rhtable"
	"rhmap/utils"

	"github.com/sugawarayuuta/sonnet"
	"golang.org/x/crypto/blake2b"
)

var (
	// ErrNotFound is returned when a named snapshot does not exist in the store.
	ErrNotFound = errors.New("snapshot: not found")

	// ErrVersion is returned for documents or rows written by another format version.
	ErrVersion = errors.New("snapshot: unsupported format version")

	// ErrCorrupt is returned when stored entries contradict each other
	// (duplicate keys, size mismatch).
	ErrCorrupt = errors.New("snapshot: corrupt snapshot")

	// ErrDigestMismatch is returned when reloaded contents hash differently from
	// what was saved.
	ErrDigestMismatch = errors.New("snapshot: digest mismatch")
)

// entryDigest is BLAKE2b-256(key || 0x00 || value) truncated to 64 bits.
// JSON never contains a raw NUL, so the separator keeps (k, v) splits unambiguous.
func entryDigest(key, value []byte) uint64 {
	h, _ := blake2b.New256(nil)
	h.Write(key)
	h.Write([]byte{0})
	h.Write(value)
	var sum [blake2b.Size256]byte
	return utils.LoadBE64(h.Sum(sum[:0]))
}

// encodeEntry renders one key and value the way every snapshot form stores them.
func encodeEntry[K comparable, V any](k K, v V) (kb, vb []byte, err error) {
	if kb, err = sonnet.Marshal(k); err != nil {
		return nil, nil, fmt.Errorf("snapshot: encode key %v: %w", k, err)
	}
	if vb, err = sonnet.Marshal(v); err != nil {
		return nil, nil, fmt.Errorf("snapshot: encode value of key %v: %w", k, err)
	}
	return kb, vb, nil
}

// Digest returns the wrapping sum of every entry's digest. Equal contents give equal
// digests regardless of capacity, hasher or slot order.
func Digest[K comparable, V any](t *rhtable.Table[K, V]) (uint64, error) {
	var sum uint64
	for k, v := range t.All() {
		kb, vb, err := encodeEntry(k, v)
		if err != nil {
			return 0, err
		}
		sum += entryDigest(kb, vb)
	}
	return sum, nil
}
