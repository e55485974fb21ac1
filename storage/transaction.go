// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"sync/atomic"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/arnaudgouriou/pantheon/fault"
)

// Transaction - a unit of work staging writes and deletes against one
// or more segments of the same store
//
// terminates exactly once, in Commit or Rollback; any call after the
// terminal one fails with ErrTransactionCompleted. A transaction is
// used by the goroutine that created it and is not shared.
type Transaction interface {
	Put(handle *Handle, key []byte, value []byte) error
	Remove(handle *Handle, key []byte) error
	Commit() error
	Rollback() error
}

// Backend - the native staging operations a transaction composes
//
// one backend per transaction instance; Release frees its native
// resources and is called exactly once, on either terminal path
type Backend interface {
	Put(key []byte, value []byte)
	Remove(key []byte)
	Commit() error
	Rollback() error
	Release()
}

// transaction states
const (
	txOpen int32 = iota
	txCommitted
	txRolledBack
)

// shared state machine composing a backend
//
// the guard, not the backend, enforces "terminal state reached exactly
// once" so every backend gets the same bookkeeping
type guardedTransaction struct {
	state   int32
	backend Backend
	metric  *instrumentation
}

// Put - stage a write of value under key in the handle's segment
func (t *guardedTransaction) Put(handle *Handle, key []byte, value []byte) error {
	if atomic.LoadInt32(&t.state) != txOpen {
		return fault.ErrTransactionCompleted
	}

	stop := t.metric.writeTime.Start()
	defer stop()

	t.backend.Put(handle.prefixKey(key), value)
	return nil
}

// Remove - stage a tombstone for key in the handle's segment
func (t *guardedTransaction) Remove(handle *Handle, key []byte) error {
	if atomic.LoadInt32(&t.state) != txOpen {
		return fault.ErrTransactionCompleted
	}

	stop := t.metric.removeTime.Start()
	defer stop()

	t.backend.Remove(handle.prefixKey(key))
	return nil
}

// Commit - atomically apply every staged operation
//
// either all staged operations become visible or none do; the backend
// is released whether or not the native apply succeeds
func (t *guardedTransaction) Commit() error {
	if !atomic.CompareAndSwapInt32(&t.state, txOpen, txCommitted) {
		return fault.ErrTransactionCompleted
	}
	defer t.backend.Release()

	stop := t.metric.commitTime.Start()
	defer stop()

	return fault.NewStorageError(t.backend.Commit())
}

// Rollback - discard every staged operation
//
// the rollback counter and the backend release happen even when the
// native discard fails
func (t *guardedTransaction) Rollback() error {
	if !atomic.CompareAndSwapInt32(&t.state, txOpen, txRolledBack) {
		return fault.ErrTransactionCompleted
	}
	defer t.backend.Release()

	t.metric.rollbacks.Inc()

	return fault.NewStorageError(t.backend.Rollback())
}

// leveldb staging: a batch applied by a single Write call
//
// the batch is invisible to every reader until Write, which applies it
// atomically; conflicting transactions both commit and the later Write
// wins (last-committer-wins, there is no conflict abort)
type batchBackend struct {
	store        *Store
	batch        *leveldb.Batch
	writeOptions *ldb_opt.WriteOptions
}

func (b *batchBackend) Put(key []byte, value []byte) {
	b.batch.Put(key, value)
}

func (b *batchBackend) Remove(key []byte) {
	b.batch.Delete(key)
}

func (b *batchBackend) Commit() error {
	s := b.store
	s.RLock()
	defer s.RUnlock()

	if s.isClosed() {
		return fault.ErrStorageClosed
	}
	return s.db.Write(b.batch, b.writeOptions)
}

func (b *batchBackend) Rollback() error {
	b.batch.Reset()
	return nil
}

func (b *batchBackend) Release() {
	b.batch = nil
	b.writeOptions = nil
}

// Begin - start a new transaction with fresh write options
//
// fails once the store is closed or when it was opened read-only
func (s *Store) Begin() (Transaction, error) {
	s.RLock()
	defer s.RUnlock()

	if s.isClosed() {
		return nil, fault.ErrStorageClosed
	}
	if s.readOnly {
		return nil, fault.ErrReadOnly
	}

	return &guardedTransaction{
		state: txOpen,
		backend: &batchBackend{
			store:        s,
			batch:        new(leveldb.Batch),
			writeOptions: &ldb_opt.WriteOptions{Sync: false},
		},
		metric: s.metric,
	}, nil
}
