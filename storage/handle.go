// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/arnaudgouriou/pantheon/fault"
)

// Element - a binary key/value item
type Element struct {
	Key   []byte
	Value []byte
}

// Get - point lookup of one key
//
// absence is not an error: found is false and the error is nil when
// the key does not exist
func (h *Handle) Get(key []byte) ([]byte, bool, error) {
	s := h.store
	s.RLock()
	defer s.RUnlock()

	if s.isClosed() {
		return nil, false, fault.ErrStorageClosed
	}

	stop := s.metric.readTime.Start()
	defer stop()

	value, err := s.db.Get(h.prefixKey(key), nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fault.NewStorageError(err)
	}
	return value, true, nil
}

// Has - check whether a key exists
func (h *Handle) Has(key []byte) (bool, error) {
	s := h.store
	s.RLock()
	defer s.RUnlock()

	if s.isClosed() {
		return false, fault.ErrStorageClosed
	}

	stop := s.metric.readTime.Start()
	defer stop()

	found, err := s.db.Has(h.prefixKey(key), nil)
	if err != nil {
		return false, fault.NewStorageError(err)
	}
	return found, nil
}

// LastElement - the highest key of the segment and its value
func (h *Handle) LastElement() (Element, bool, error) {
	s := h.store
	s.RLock()
	defer s.RUnlock()

	if s.isClosed() {
		return Element{}, false, fault.ErrStorageClosed
	}

	iter := s.db.NewIterator(h.keyRange(), nil)
	defer iter.Release()

	if !iter.Last() {
		if err := iter.Error(); err != nil {
			return Element{}, false, fault.NewStorageError(err)
		}
		return Element{}, false, nil
	}

	// the iterator owns the returned slices, copy before release
	key := iter.Key()
	value := iter.Value()

	element := Element{
		Key:   make([]byte, len(key)-len(h.prefix)),
		Value: make([]byte, len(value)),
	}
	copy(element.Key, key[len(h.prefix):])
	copy(element.Value, value)

	if err := iter.Error(); err != nil {
		return Element{}, false, fault.NewStorageError(err)
	}
	return element, true, nil
}
