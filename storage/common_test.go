// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/logger"

	"github.com/arnaudgouriou/pantheon/metrics"
	"github.com/arnaudgouriou/pantheon/storage"
)

// common test setup routines

const testingDirName = "testing"

var databaseDirectory = filepath.Join(testingDirName, "storage.leveldb")

// the catalog used by every test
var testSegments = []storage.Segment{
	{Name: "blockchain", Identifier: []byte("blockchain")},
	{Name: "worldstate", Identifier: []byte("worldstate")},
	{Name: "permissioning", Identifier: []byte("permissioning")},
}

// remove any database files left by a previous run
func removeDatabase() {
	os.RemoveAll(databaseDirectory)
}

func setupLogger() {
	_ = os.Mkdir(testingDirName, 0700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// ignore the error: a previous test may have initialised logging
	_ = logger.Initialise(logging)
}

// open a fresh store for testing
func setup(t *testing.T) (*storage.Store, *metrics.InMemory) {
	setupLogger()
	removeDatabase()
	return reopen(t)
}

// open the store again over the existing database files
func reopen(t *testing.T) (*storage.Store, *metrics.InMemory) {
	monitor := metrics.NewInMemory()
	store, err := storage.Open(storage.Options{
		DatabaseDirectory: databaseDirectory,
		Label:             "testing",
	}, testSegments, monitor)
	if err != nil {
		t.Fatalf("storage open error: %s", err)
	}
	return store, monitor
}

// post test cleanup
func teardown(store *storage.Store) {
	store.Close()
	removeDatabase()
}

// resolve a segment handle or fail the test
func segmentHandle(t *testing.T, store *storage.Store, name string) *storage.Handle {
	h, err := store.Handle(name)
	if err != nil {
		t.Fatalf("segment %q handle error: %s", name, err)
	}
	return h
}

// commit a single write through a transaction
func commitPut(t *testing.T, store *storage.Store, segment string, key string, value string) {
	trx, err := store.Begin()
	assert.Nil(t, err, "begin failed")
	assert.Nil(t, trx.Put(segmentHandle(t, store, segment), []byte(key), []byte(value)), "put failed")
	assert.Nil(t, trx.Commit(), "commit failed")
}

// read a key as a string, failing the test on a storage fault
func readBack(t *testing.T, store *storage.Store, segment string, key string) (string, bool) {
	value, found, err := segmentHandle(t, store, segment).Get([]byte(key))
	assert.Nil(t, err, "get failed")
	return string(value), found
}
