package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rhmap/constants"
	"rhmap/debug"
	"rhmap/hashing"
	"rhmap/rhtable"
	"rhmap/utils"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sugawarayuuta/sonnet"
)

// schema is applied on every Open; statements are idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	name     TEXT PRIMARY KEY,
	version  INTEGER NOT NULL,
	size     INTEGER NOT NULL,
	capacity INTEGER NOT NULL,
	digest   INTEGER NOT NULL,
	saved_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS entries (
	snapshot TEXT NOT NULL,
	key      BLOB NOT NULL,
	value    BLOB NOT NULL,
	PRIMARY KEY (snapshot, key)
);`

// Store keeps named table snapshots in a SQLite database.
type Store struct {
	db *sql.DB
}

// Info describes a saved snapshot without loading its entries.
type Info struct {
	Name     string
	Version  int
	Size     int
	Capacity int
	Digest   uint64
	SavedAt  time.Time
}

// Open opens (creating if needed) the SQLite database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open %s: %w", path, err)
	}
	// One connection: SQLite serialises writers anyway, and ":memory:" databases
	// exist per connection.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("snapshot: ping %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("snapshot: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes t under name, replacing any previous snapshot of that name in a single
// transaction.
func Save[K comparable, V any](ctx context.Context, s *Store, name string, t *rhtable.Table[K, V]) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("snapshot: begin save %s: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE snapshot = ?`, name); err != nil {
		return fmt.Errorf("snapshot: clear %s: %w", name, err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO entries (snapshot, key, value) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("snapshot: prepare insert: %w", err)
	}
	defer stmt.Close()

	var digest uint64
	for k, v := range t.All() {
		kb, vb, err := encodeEntry(k, v)
		if err != nil {
			return err
		}
		digest += entryDigest(kb, vb)
		if _, err := stmt.ExecContext(ctx, name, kb, vb); err != nil {
			return fmt.Errorf("snapshot: insert entry of %s: %w", name, err)
		}
	}

	// SQLite integers are signed; the digest round-trips through int64 bit for bit.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (name, version, size, capacity, digest, saved_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			version = excluded.version,
			size = excluded.size,
			capacity = excluded.capacity,
			digest = excluded.digest,
			saved_at = excluded.saved_at`,
		name, constants.SnapshotFormatVersion, t.Size(), t.Capacity(), int64(digest), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("snapshot: write header of %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("snapshot: commit %s: %w", name, err)
	}

	debug.DropMessage("SNAPSHOT", "saved "+name+": "+utils.Itoa(t.Size())+" entries, "+utils.Itoa(t.Capacity())+" slots")
	return nil
}

// Stat returns the header of the named snapshot.
func (s *Store) Stat(ctx context.Context, name string) (Info, error) {
	info := Info{Name: name}
	var digest, savedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT version, size, capacity, digest, saved_at FROM snapshots WHERE name = ?`, name,
	).Scan(&info.Version, &info.Size, &info.Capacity, &digest, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Info{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return Info{}, fmt.Errorf("snapshot: stat %s: %w", name, err)
	}
	info.Digest = uint64(digest)
	info.SavedAt = time.Unix(savedAt, 0)
	return info, nil
}

// Load rebuilds the named snapshot into a fresh table hashed with h (nil selects
// hashing.Comparable) and verifies its size and digest against the saved header.
func Load[K comparable, V any](ctx context.Context, s *Store, name string, h hashing.Hasher[K]) (*rhtable.Table[K, V], error) {
	info, err := s.Stat(ctx, name)
	if err != nil {
		return nil, err
	}
	if info.Version != constants.SnapshotFormatVersion {
		return nil, fmt.Errorf("%w: %s has version %d", ErrVersion, name, info.Version)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM entries WHERE snapshot = ?`, name)
	if err != nil {
		return nil, fmt.Errorf("snapshot: query entries of %s: %w", name, err)
	}
	defer rows.Close()

	t := rhtable.NewWithHasher[K, V](h)
	var digest uint64
	for rows.Next() {
		var kb, vb []byte
		if err := rows.Scan(&kb, &vb); err != nil {
			return nil, fmt.Errorf("snapshot: scan entry of %s: %w", name, err)
		}
		var k K
		var v V
		if err := sonnet.Unmarshal(kb, &k); err != nil {
			return nil, fmt.Errorf("snapshot: decode key %q in %s: %w", utils.B2s(kb), name, err)
		}
		if err := sonnet.Unmarshal(vb, &v); err != nil {
			return nil, fmt.Errorf("snapshot: decode value of %v in %s: %w", k, name, err)
		}
		if _, ok := t.Insert(k, v); !ok {
			return nil, fmt.Errorf("%w: %s repeats key %v", ErrCorrupt, name, k)
		}
		digest += entryDigest(kb, vb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("snapshot: iterate entries of %s: %w", name, err)
	}

	if t.Size() != info.Size {
		return nil, fmt.Errorf("%w: %s header size %d, %d entries", ErrCorrupt, name, info.Size, t.Size())
	}
	if digest != info.Digest {
		return nil, fmt.Errorf("%w: %s", ErrDigestMismatch, name)
	}

	debug.DropMessage("SNAPSHOT", "loaded "+name+": "+utils.Itoa(t.Size())+" entries")
	return t, nil
}

// Names lists saved snapshots in name order.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM snapshots ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("snapshot: list: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("snapshot: scan name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Drop deletes the named snapshot and its entries.
func (s *Store) Drop(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("snapshot: begin drop %s: %w", name, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("snapshot: drop %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("snapshot: drop %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE snapshot = ?`, name); err != nil {
		return fmt.Errorf("snapshot: drop entries of %s: %w", name, err)
	}
	return tx.Commit()
}
