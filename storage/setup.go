// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/bitmark-inc/logger"

	"github.com/arnaudgouriou/pantheon/fault"
	"github.com/arnaudgouriou/pantheon/metrics"
)

// Options - engine configuration consumed by Open
//
// zero values select the engine defaults; sizes are in bytes
type Options struct {
	DatabaseDirectory  string // location of the database files, required
	Label              string // database label on exported metrics
	MaxOpenFiles       int    // file handle cache capacity
	BlockCacheCapacity int    // memory for cached data blocks
	BlockSize          int    // block-based table block size
	WriteBuffer        int    // memtable size before a flush
	ReadOnly           bool   // reject transactions, sweeps and clears
}

const defaultLabel = "pantheon"

// store lifecycle flag values
const (
	storageOpen int32 = iota
	storageClosed
)

// Store - one open storage engine
//
// exactly one live instance per database directory; the underlying
// engine serialises its own file access, so all operations are safe to
// call from concurrent goroutines
type Store struct {
	sync.RWMutex // keeps native calls and teardown apart

	closed   int32 // atomic lifecycle flag
	db       *leveldb.DB
	handles  map[string]*Handle // immutable once Open returns
	metric   *instrumentation
	readOnly bool
	log      *logger.L
}

// Open - open the store against the declared segments
//
// the default segment is added implicitly; redeclaring it, duplicating
// a name or an identifier, or an empty declaration all fail. Native
// open failures (lock contention, corruption, missing directory) are
// wrapped in a StorageError.
//
// a nil monitor selects an in-process metrics sink
func Open(options Options, segments []Segment, monitor metrics.System) (*Store, error) {

	if options.DatabaseDirectory == "" {
		return nil, fault.ErrRequiredDatabaseDirectory
	}
	if monitor == nil {
		monitor = metrics.NewInMemory()
	}
	label := options.Label
	if label == "" {
		label = defaultLabel
	}

	log := logger.New("storage")

	db, err := leveldb.OpenFile(options.DatabaseDirectory, &ldb_opt.Options{
		ErrorIfMissing:         options.ReadOnly,
		ReadOnly:               options.ReadOnly,
		OpenFilesCacheCapacity: options.MaxOpenFiles,
		BlockCacheCapacity:     options.BlockCacheCapacity,
		BlockSize:              options.BlockSize,
		WriteBuffer:            options.WriteBuffer,
	})
	if err != nil {
		log.Errorf("open %q failed: %s", options.DatabaseDirectory, err)
		return nil, fault.NewStorageError(err)
	}

	store := &Store{
		closed:   storageOpen,
		db:       db,
		readOnly: options.ReadOnly,
		log:      log,
	}

	handles, err := resolveSegments(store, segments)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	store.handles = handles
	store.metric = newInstrumentation(monitor, label, store, log)

	log.Infof("opened database: %q  segments: %d  read-only: %t",
		options.DatabaseDirectory, len(handles), options.ReadOnly)
	return store, nil
}

func (s *Store) isClosed() bool {
	return atomic.LoadInt32(&s.closed) != storageOpen
}

// Handle - look up the resolved handle for a segment name
//
// an unregistered name is a caller error; there is no fallback to the
// default segment
func (s *Store) Handle(name string) (*Handle, error) {
	if s.isClosed() {
		return nil, fault.ErrStorageClosed
	}
	h, ok := s.handles[name]
	if !ok {
		return nil, fault.ErrSegmentNotFound
	}
	return h, nil
}

// Segments - sorted names of all registered segments
func (s *Store) Segments() []string {
	names := make([]string, 0, len(s.handles))
	for name := range s.handles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close - release the engine and every segment handle
//
// idempotent: the atomic flag transition guarantees exactly one caller
// performs the teardown even when several goroutines race; redundant
// calls return immediately without error. The write lock waits out any
// native call still in flight so nothing executes against half-closed
// resources.
func (s *Store) Close() {
	if !atomic.CompareAndSwapInt32(&s.closed, storageOpen, storageClosed) {
		return
	}

	s.Lock()
	defer s.Unlock()

	if err := s.db.Close(); err != nil {
		s.log.Errorf("close failed: %s", err)
	}
	s.log.Info("database closed")
}
