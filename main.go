// ════════════════════════════════════════════════════════════════════════════════════════════════
// rhmap - Main Entry Point
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Robin Hood Hash Table
// Component: Demonstration & Self-Check Command
//
// Description:
//   Drives the table through a fixed scenario, compares the shipped hashers under load, and
//   round-trips a populated table through the SQLite snapshot store.
//
// Architecture:
//   - Phase 1: Fixed insert/erase scenario with slot-by-slot verification
//   - Phase 2: Hasher comparison at DemoKeyCount keys (probe-length statistics)
//   - Phase 3: Snapshot save → reload → digest comparison
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"context"
	"crypto/rand"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"rhmap/constants"
	"rhmap/debug"
	"rhmap/hashing"
	"rhmap/rhtable"
	"rhmap/snapshot"
	"rhmap/utils"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// MAIN ORCHESTRATION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// PHASE 1: Fixed scenario
	debug.DropMessage("PHASE", "1 scenario")
	if err := runScenario(); err != nil {
		panic(err.Error())
	}

	// PHASE 2: Hasher comparison
	debug.DropMessage("PHASE", "2 hashers @ "+utils.Itoa(constants.DemoKeyCount)+" keys")
	addresses := runHasherComparison()

	// PHASE 3: Snapshot round trip
	debug.DropMessage("PHASE", "3 snapshot → "+constants.SnapshotDBPath)
	if err := runSnapshot(ctx, constants.SnapshotDBPath, addresses); err != nil {
		debug.DropError("SNAPSHOT_ERROR", err)
		os.Exit(1)
	}

	utils.PrintInfo("rhmap: all phases passed\n")
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// PHASE 1 - SCENARIO
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// runScenario inserts 1..10 with value k*10, erases 5, re-inserts 5 with value 99 and
// checks the visible contents after every step.
func runScenario() error {
	t := rhtable.New[int, int]()
	for k := 1; k <= 10; k++ {
		if _, ok := t.Insert(k, k*10); !ok {
			return errors.New("scenario: key " + utils.Itoa(k) + " reported as duplicate")
		}
	}
	if t.Size() != 10 {
		return errors.New("scenario: size " + utils.Itoa(t.Size()) + " after 10 inserts")
	}
	if v, err := t.At(5); err != nil {
		return err
	} else if v != 50 {
		return errors.New("scenario: At(5) = " + utils.Itoa(v) + ", want 50")
	}
	debug.DropMessage("SCENARIO", "10 keys, capacity "+utils.Itoa(t.Capacity()))

	t.Erase(5)
	if !t.Find(5).IsEnd() || t.Size() != 9 {
		return errors.New("scenario: key 5 survived erase")
	}
	if _, err := t.At(5); !errors.Is(err, rhtable.ErrKeyNotFound) {
		return errors.New("scenario: At(5) after erase did not report a missing key")
	}
	for k := 1; k <= 10; k++ {
		if k == 5 {
			continue
		}
		if v, ok := t.Get(k); !ok || v != k*10 {
			return errors.New("scenario: key " + utils.Itoa(k) + " lost after erase")
		}
	}

	if _, ok := t.Insert(5, 99); !ok {
		return errors.New("scenario: re-insert of 5 reported as duplicate")
	}
	if v, err := t.At(5); err != nil {
		return err
	} else if v != 99 {
		return errors.New("scenario: At(5) = " + utils.Itoa(v) + " after re-insert, want 99")
	}
	if _, ok := t.Insert(5, 0); ok {
		return errors.New("scenario: second insert of 5 succeeded")
	}

	seen := 0
	for c := t.Begin(); !c.IsEnd(); c.Next() {
		seen++
	}
	if seen != t.Size() || t.Size() != 10 {
		return errors.New("scenario: traversal saw " + utils.Itoa(seen) + " of " + utils.Itoa(t.Size()))
	}
	debug.DropMessage("SCENARIO", "erase 5, re-insert 5 → "+utils.Itoa(t.Size())+" keys, capacity "+utils.Itoa(t.Capacity()))
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// PHASE 2 - HASHER COMPARISON
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// runHasherComparison loads the demo workload through each hasher and returns the
// address-keyed table for the snapshot phase.
func runHasherComparison() *rhtable.Table[string, uint64] {
	ints := make([]int, constants.DemoKeyCount)
	addrs := make([]string, constants.DemoKeyCount)
	for i := range ints {
		ints[i] = i * 64
		addrs[i] = "0x" + strconv.FormatUint(utils.Mix64(uint64(i)), 16)
	}

	fill("comparable", ints, hashing.Comparable[int]())
	fill("mix64", ints, hashing.Int[int])
	fill("identity", ints, hashing.Identity[int])
	fill("xxhash", addrs, hashing.String[string])
	snap := fill("keccak", addrs, hashing.Keccak[string])

	var key [32]byte
	if _, err := rand.Read(key[:]); err != nil {
		panic("hashers: read blake2b key: " + err.Error())
	}
	keyed, err := hashing.Keyed[string](key[:])
	if err != nil {
		panic("hashers: " + err.Error())
	}
	fill("blake2b", addrs, keyed)

	return snap
}

// fill inserts keys (value = position) and logs the resulting probe statistics.
func fill[K comparable](name string, keys []K, h hashing.Hasher[K]) *rhtable.Table[K, uint64] {
	t := rhtable.NewWithHasher[K, uint64](h)
	for i, k := range keys {
		t.Insert(k, uint64(i))
	}
	if t.Size() != len(keys) {
		panic("hashers: " + name + " holds " + utils.Itoa(t.Size()) + " of " + utils.Itoa(len(keys)))
	}

	st := t.Stats()
	debug.DropMessage("HASHER", name+
		": cap "+utils.Itoa(st.Capacity)+
		", load "+utils.Ftoa2(st.Load)+
		", psl max "+utils.Itoa(st.MaxPSL)+
		", psl mean "+utils.Ftoa2(st.MeanPSL))
	return t
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// PHASE 3 - SNAPSHOT ROUND TRIP
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// runSnapshot saves t to the store at path, reloads it under a different hasher and
// compares digests.
func runSnapshot(ctx context.Context, path string, t *rhtable.Table[string, uint64]) error {
	store, err := snapshot.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := snapshot.Save(ctx, store, constants.DemoSnapshotName, t); err != nil {
		return err
	}
	loaded, err := snapshot.Load[string, uint64](ctx, store, constants.DemoSnapshotName, hashing.String[string])
	if err != nil {
		return err
	}

	want, err := snapshot.Digest(t)
	if err != nil {
		return err
	}
	got, err := snapshot.Digest(loaded)
	if err != nil {
		return err
	}
	if want != got {
		return snapshot.ErrDigestMismatch
	}
	debug.DropMessage("SNAPSHOT", "digest 0x"+strconv.FormatUint(got, 16)+
		" matches across hashers (cap "+utils.Itoa(t.Capacity())+" → "+utils.Itoa(loaded.Capacity())+")")

	names, err := store.Names(ctx)
	if err != nil {
		return err
	}
	debug.DropMessage("SNAPSHOT", utils.Itoa(len(names))+" snapshot(s) in store")
	return nil
}
