// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/arnaudgouriou/pantheon/fault"
)

// RemoveUnless - prune every key the predicate does not vouch for
//
// iterates the segment in ascending key order and deletes each key
// where inUse(key) is false, returning how many were removed. Deletes
// are immediate, not batched: a concurrent reader may observe a
// partially completed sweep. Pruning throughput is traded for
// isolation here; callers needing a point-in-time view must keep
// writers away while the sweep runs.
//
// the key slice passed to the predicate is only valid during the call
func (h *Handle) RemoveUnless(inUse func(key []byte) bool) (uint64, error) {
	s := h.store
	s.RLock()
	defer s.RUnlock()

	if s.isClosed() {
		return 0, fault.ErrStorageClosed
	}
	if s.readOnly {
		return 0, fault.ErrReadOnly
	}

	removed := uint64(0)

	iter := s.db.NewIterator(h.keyRange(), nil)
	defer iter.Release()

	for iter.Next() {
		key := iter.Key()
		if inUse(key[len(h.prefix):]) {
			continue
		}
		if err := s.db.Delete(key, nil); err != nil {
			return removed, fault.NewStorageError(err)
		}
		removed += 1
	}
	if err := iter.Error(); err != nil {
		return removed, fault.NewStorageError(err)
	}
	return removed, nil
}

// Clear - erase every key of the segment
//
// all deletions are staged into one batch and applied by a single
// write, so readers see the segment either full or empty, never half
// cleared; a no-op on an empty segment
func (h *Handle) Clear() error {
	s := h.store
	s.RLock()
	defer s.RUnlock()

	if s.isClosed() {
		return fault.ErrStorageClosed
	}
	if s.readOnly {
		return fault.ErrReadOnly
	}

	batch := new(leveldb.Batch)

	iter := s.db.NewIterator(h.keyRange(), nil)
	for iter.Next() {
		batch.Delete(iter.Key())
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return fault.NewStorageError(err)
	}

	if batch.Len() == 0 {
		return nil
	}
	return fault.NewStorageError(s.db.Write(batch, nil))
}
