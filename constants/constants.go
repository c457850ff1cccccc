// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: constants.go — Global table tunables & store defaults
//
// Purpose:
//   - Defines the growth policy shared by every rhtable.Table.
//   - Holds the snapshot store defaults and the rhmap command workload sizes.
//
// Notes:
//   - Values are compile-time constants; there is no flag or env layer.
//   - Changing LoadFactor or InitialCapacity changes observable capacities.
//
// ⚠️ No runtime logic here. All values must be compile-time resolvable
// ─────────────────────────────────────────────────────────────────────────────

package constants

// ───────────────────────────── Table Geometry ──────────────────────────────

const (
	// LoadFactor is the maximum ratio of occupied slots to capacity.
	// An insert that would push size above capacity*LoadFactor grows the table first.
	// 0.8 keeps Robin Hood probe lengths short while wasting at most 20% of slots.
	LoadFactor = 0.8

	// InitialCapacity is the slot count of a freshly built or cleared table.
	// Growth is 2c+1, so capacities run 12 → 25 → 51 → 103 → ...
	InitialCapacity = 12
)

// ──────────────────────────── Snapshot Store ────────────────────────────────

const (
	// SnapshotDBPath is the SQLite file the rhmap command writes its snapshots to.
	SnapshotDBPath = "rhmap_snapshots.db"

	// SnapshotFormatVersion tags every JSON document and store row.
	// Decoders refuse any other version.
	SnapshotFormatVersion = 1
)

// ─────────────────────────── Command Workload ───────────────────────────────

const (
	// DemoKeyCount is the number of keys loaded per hasher in the comparison phase.
	// 1<<16 forces a dozen growth steps from the initial capacity.
	DemoKeyCount = 1 << 16

	// DemoSnapshotName is the store row the command saves and reloads.
	DemoSnapshotName = "demo"
)
