package snapshot

import (
	"fmt"

	"rhmap/constants"
	"rhmap/hashing"
	"rhmap/rhtable"

	"github.com/sugawarayuuta/sonnet"
)

// document is the JSON form of a table:
//
//	{"version":1,"capacity":25,"size":2,"entries":[{"k":1,"v":"a"},{"k":7,"v":"b"}]}
type document[K comparable, V any] struct {
	Version  int           `json:"version"`
	Capacity int           `json:"capacity"`
	Size     int           `json:"size"`
	Entries  []entry[K, V] `json:"entries"`
}

type entry[K comparable, V any] struct {
	K K `json:"k"`
	V V `json:"v"`
}

// EncodeJSON renders t as a versioned JSON document, entries in slot order.
func EncodeJSON[K comparable, V any](t *rhtable.Table[K, V]) ([]byte, error) {
	doc := document[K, V]{
		Version:  constants.SnapshotFormatVersion,
		Capacity: t.Capacity(),
		Size:     t.Size(),
		Entries:  make([]entry[K, V], 0, t.Size()),
	}
	for k, v := range t.All() {
		doc.Entries = append(doc.Entries, entry[K, V]{K: k, V: v})
	}
	data, err := sonnet.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode document: %w", err)
	}
	return data, nil
}

// DecodeJSON rebuilds a table from EncodeJSON output, hashing keys with h
// (nil selects hashing.Comparable).
func DecodeJSON[K comparable, V any](data []byte, h hashing.Hasher[K]) (*rhtable.Table[K, V], error) {
	var doc document[K, V]
	if err := sonnet.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("snapshot: decode document: %w", err)
	}
	if doc.Version != constants.SnapshotFormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrVersion, doc.Version)
	}

	t := rhtable.NewWithHasher[K, V](h)
	for _, e := range doc.Entries {
		if _, ok := t.Insert(e.K, e.V); !ok {
			return nil, fmt.Errorf("%w: duplicate key %v", ErrCorrupt, e.K)
		}
	}
	if t.Size() != doc.Size {
		return nil, fmt.Errorf("%w: header size %d, %d entries", ErrCorrupt, doc.Size, t.Size())
	}
	return t, nil
}
