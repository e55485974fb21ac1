// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arnaudgouriou/pantheon/fault"
	"github.com/arnaudgouriou/pantheon/storage"
)

// the canonical write-then-read scenario across two segments
func TestRoundTrip(t *testing.T) {
	store, _ := setup(t)
	defer teardown(store)

	trx, err := store.Begin()
	assert.Nil(t, err, "begin failed")
	assert.Nil(t, trx.Put(segmentHandle(t, store, "worldstate"), []byte("0xabc"), []byte("0x01")), "put failed")
	assert.Nil(t, trx.Commit(), "commit failed")

	value, found := readBack(t, store, "worldstate", "0xabc")
	assert.True(t, found, "committed key not found")
	assert.Equal(t, "0x01", value, "wrong value read back")

	// segments are separate keyspaces
	_, found = readBack(t, store, "blockchain", "0xabc")
	assert.False(t, found, "key leaked into another segment")
}

func TestGetAbsentKeyIsNotAnError(t *testing.T) {
	store, _ := setup(t)
	defer teardown(store)

	value, found, err := segmentHandle(t, store, "blockchain").Get([]byte("missing"))
	assert.Nil(t, err, "absence must not be an error")
	assert.False(t, found, "phantom key found")
	assert.Nil(t, value, "phantom value returned")
}

func TestRollbackLeavesStateUntouched(t *testing.T) {
	store, monitor := setup(t)
	defer teardown(store)

	commitPut(t, store, "worldstate", "k1", "before")

	worldstate := segmentHandle(t, store, "worldstate")

	trx, err := store.Begin()
	assert.Nil(t, err, "begin failed")
	assert.Nil(t, trx.Put(worldstate, []byte("k1"), []byte("changed")), "put failed")
	assert.Nil(t, trx.Put(worldstate, []byte("k2"), []byte("new")), "put failed")
	assert.Nil(t, trx.Remove(worldstate, []byte("k1")), "remove failed")
	assert.Nil(t, trx.Rollback(), "rollback failed")

	value, found := readBack(t, store, "worldstate", "k1")
	assert.True(t, found, "pre-transaction key lost")
	assert.Equal(t, "before", value, "pre-transaction value changed")

	_, found = readBack(t, store, "worldstate", "k2")
	assert.False(t, found, "rolled back write became visible")

	assert.Equal(t, uint64(1),
		monitor.CounterValue(storage.MetricCategory, "rollback_count", "testing"),
		"rollback not counted exactly once")
}

func TestStagedWritesAreInvisibleUntilCommit(t *testing.T) {
	store, _ := setup(t)
	defer teardown(store)

	commitPut(t, store, "worldstate", "k", "old")

	trx, err := store.Begin()
	assert.Nil(t, err, "begin failed")
	assert.Nil(t, trx.Put(segmentHandle(t, store, "worldstate"), []byte("k"), []byte("new")), "put failed")

	value, found := readBack(t, store, "worldstate", "k")
	assert.True(t, found, "key lost while staged")
	assert.Equal(t, "old", value, "staged write visible before commit")

	assert.Nil(t, trx.Commit(), "commit failed")

	value, found = readBack(t, store, "worldstate", "k")
	assert.True(t, found, "key lost after commit")
	assert.Equal(t, "new", value, "committed write not visible")
}

func TestAtomicCommitAppliesAllStagedOperations(t *testing.T) {
	store, _ := setup(t)
	defer teardown(store)

	commitPut(t, store, "worldstate", "doomed", "x")

	worldstate := segmentHandle(t, store, "worldstate")
	blockchain := segmentHandle(t, store, "blockchain")

	trx, err := store.Begin()
	assert.Nil(t, err, "begin failed")
	assert.Nil(t, trx.Put(worldstate, []byte("k1"), []byte("v1")), "put failed")
	assert.Nil(t, trx.Put(blockchain, []byte("k2"), []byte("v2")), "put failed")
	assert.Nil(t, trx.Remove(worldstate, []byte("doomed")), "remove failed")
	assert.Nil(t, trx.Commit(), "commit failed")

	value, found := readBack(t, store, "worldstate", "k1")
	assert.True(t, found && value == "v1", "first staged write missing")

	value, found = readBack(t, store, "blockchain", "k2")
	assert.True(t, found && value == "v2", "second staged write missing")

	_, found = readBack(t, store, "worldstate", "doomed")
	assert.False(t, found, "staged tombstone not applied")
}

func TestConcurrentCloseTearsDownOnce(t *testing.T) {
	store, _ := setup(t)
	defer removeDatabase()

	const closers = 8

	var wg sync.WaitGroup
	wg.Add(closers)
	for i := 0; i < closers; i += 1 {
		go func() {
			defer wg.Done()
			store.Close() // must not panic or error for redundant calls
		}()
	}
	wg.Wait()

	_, err := store.Begin()
	assert.Equal(t, fault.ErrStorageClosed, err, "store still usable after close")
}

func TestClosedStoreRejectsEveryOperation(t *testing.T) {
	store, _ := setup(t)
	defer removeDatabase()

	worldstate := segmentHandle(t, store, "worldstate")
	cursor := worldstate.NewFetchCursor()

	store.Close()

	_, _, err := worldstate.Get([]byte("k"))
	assert.Equal(t, fault.ErrStorageClosed, err, "get allowed on closed store")

	_, err = worldstate.Has([]byte("k"))
	assert.Equal(t, fault.ErrStorageClosed, err, "has allowed on closed store")

	_, err = store.Begin()
	assert.Equal(t, fault.ErrStorageClosed, err, "begin allowed on closed store")

	_, err = worldstate.RemoveUnless(func([]byte) bool { return true })
	assert.Equal(t, fault.ErrStorageClosed, err, "sweep allowed on closed store")

	err = worldstate.Clear()
	assert.Equal(t, fault.ErrStorageClosed, err, "clear allowed on closed store")

	_, err = cursor.Fetch(1)
	assert.Equal(t, fault.ErrStorageClosed, err, "cursor allowed on closed store")

	_, err = store.Handle("worldstate")
	assert.Equal(t, fault.ErrStorageClosed, err, "handle lookup allowed on closed store")
}

func TestUnregisteredSegmentFailsLoudly(t *testing.T) {
	store, _ := setup(t)
	defer teardown(store)

	_, err := store.Handle("receipts")
	assert.Equal(t, fault.ErrSegmentNotFound, err, "unknown segment must not fall back to default")
}

func TestDefaultSegmentAlwaysExists(t *testing.T) {
	store, _ := setup(t)
	defer teardown(store)

	h, err := store.Handle(storage.DefaultSegmentName)
	assert.Nil(t, err, "default segment missing")
	assert.Equal(t, []byte("default"), h.Identifier(), "wrong default identifier")

	commitPut(t, store, "default", "k", "v")
	_, found := readBack(t, store, "worldstate", "k")
	assert.False(t, found, "default segment shares a keyspace")
}

func TestSegmentCatalogIsValidated(t *testing.T) {
	setupLogger()
	removeDatabase()
	defer removeDatabase()

	options := storage.Options{DatabaseDirectory: databaseDirectory}

	_, err := storage.Open(options, []storage.Segment{
		{Name: "a", Identifier: []byte("x")},
		{Name: "a", Identifier: []byte("y")},
	}, nil)
	assert.Equal(t, fault.ErrDuplicateSegment, err, "duplicate name accepted")

	_, err = storage.Open(options, []storage.Segment{
		{Name: "a", Identifier: []byte("x")},
		{Name: "b", Identifier: []byte("x")},
	}, nil)
	assert.Equal(t, fault.ErrDuplicateSegment, err, "duplicate identifier accepted")

	_, err = storage.Open(options, []storage.Segment{
		{Name: "default", Identifier: []byte("z")},
	}, nil)
	assert.Equal(t, fault.ErrDuplicateSegment, err, "default redeclaration accepted")

	_, err = storage.Open(options, []storage.Segment{
		{Name: "", Identifier: []byte("x")},
	}, nil)
	assert.Equal(t, fault.ErrInvalidSegment, err, "empty name accepted")

	_, err = storage.Open(storage.Options{}, nil, nil)
	assert.Equal(t, fault.ErrRequiredDatabaseDirectory, err, "missing directory accepted")
}

func TestDataSurvivesReopen(t *testing.T) {
	store, _ := setup(t)

	commitPut(t, store, "blockchain", "height", "42")
	store.Close()

	store, _ = reopen(t)
	defer teardown(store)

	value, found := readBack(t, store, "blockchain", "height")
	assert.True(t, found, "key lost across restart")
	assert.Equal(t, "42", value, "value changed across restart")
}

func TestReadOnlyStore(t *testing.T) {
	store, _ := setup(t)
	commitPut(t, store, "blockchain", "height", "42")
	store.Close()

	readOnly, err := storage.Open(storage.Options{
		DatabaseDirectory: databaseDirectory,
		Label:             "testing",
		ReadOnly:          true,
	}, testSegments, nil)
	assert.Nil(t, err, "read-only open failed")
	defer teardown(readOnly)

	value, found := readBack(t, readOnly, "blockchain", "height")
	assert.True(t, found && value == "42", "read failed on read-only store")

	_, err = readOnly.Begin()
	assert.Equal(t, fault.ErrReadOnly, err, "transaction allowed on read-only store")

	blockchain := segmentHandle(t, readOnly, "blockchain")

	_, err = blockchain.RemoveUnless(func([]byte) bool { return true })
	assert.Equal(t, fault.ErrReadOnly, err, "sweep allowed on read-only store")

	err = blockchain.Clear()
	assert.Equal(t, fault.ErrReadOnly, err, "clear allowed on read-only store")
}

func TestOperationTimersObserveReads(t *testing.T) {
	store, monitor := setup(t)
	defer teardown(store)

	commitPut(t, store, "worldstate", "k", "v")
	readBack(t, store, "worldstate", "k")
	readBack(t, store, "worldstate", "absent")

	assert.Equal(t, uint64(2),
		monitor.TimerCount(storage.MetricCategory, "read_latency_seconds", "testing"),
		"reads not timed")
	assert.Equal(t, uint64(1),
		monitor.TimerCount(storage.MetricCategory, "commit_latency_seconds", "testing"),
		"commit not timed")
}

func TestBlockCacheGauge(t *testing.T) {
	store, monitor := setup(t)

	commitPut(t, store, "worldstate", "k", "v")

	// open store: the gauge reads a real statistic (possibly zero)
	monitor.LongGaugeValue(storage.MetricCategory, "block_cache_memory_bytes")

	store.Close()
	removeDatabase()

	// closed store: the gauge degrades to zero instead of failing
	assert.Equal(t, int64(0),
		monitor.LongGaugeValue(storage.MetricCategory, "block_cache_memory_bytes"),
		"gauge must degrade to zero after close")
}
