// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"math/big"

	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/arnaudgouriou/pantheon/fault"
)

// FetchCursor - paged ascending iteration over one segment
//
// not isolated from concurrent committed writes; each Fetch sees the
// state of the segment at the time of the call
type FetchCursor struct {
	handle   *Handle
	maxRange ldb_util.Range
}

// NewFetchCursor - initialise a cursor at the start of the segment
func (h *Handle) NewFetchCursor() *FetchCursor {
	keyRange := h.keyRange()
	return &FetchCursor{
		handle:   h,
		maxRange: *keyRange,
	}
}

// Seek - move the cursor to a specific key position
func (cursor *FetchCursor) Seek(key []byte) *FetchCursor {
	cursor.maxRange.Start = cursor.handle.prefixKey(key)
	return cursor
}

// to increment the key
var one = big.NewInt(1)

// Fetch - return up to count elements and advance the cursor past them
func (cursor *FetchCursor) Fetch(count int) ([]Element, error) {
	if cursor == nil {
		return nil, fault.ErrInvalidCursor
	}
	if count <= 0 {
		return nil, fault.ErrInvalidCursorCount
	}

	s := cursor.handle.store
	s.RLock()
	defer s.RUnlock()

	if s.isClosed() {
		return nil, fault.ErrStorageClosed
	}

	prefixLength := len(cursor.handle.prefix)

	iter := s.db.NewIterator(&cursor.maxRange, nil)

	results := make([]Element, 0, count)
	n := 0
iterating:
	for iter.Next() {

		// the iterator owns the returned slices, copy before Next
		key := iter.Key()
		value := iter.Value()

		element := Element{
			Key:   make([]byte, len(key)-prefixLength),
			Value: make([]byte, len(value)),
		}
		copy(element.Key, key[prefixLength:])
		copy(element.Value, value)

		results = append(results, element)
		n += 1
		if n >= count {
			break iterating
		}
	}
	iter.Release()
	err := iter.Error()

	// restart the next fetch just above the last key returned
	if n > 0 {
		lastKey := results[n-1].Key
		b := big.Int{}
		next := b.SetBytes(lastKey).Add(&b, one).Bytes()
		start := make([]byte, 0, prefixLength+len(next))
		start = append(start, cursor.handle.prefix...)
		cursor.maxRange.Start = append(start, next...)
	}
	return results, fault.NewStorageError(err)
}

// Map - run a function over every remaining element of the cursor
//
// stops at the first error the function returns
func (cursor *FetchCursor) Map(f func(key []byte, value []byte) error) error {
	if cursor == nil {
		return fault.ErrInvalidCursor
	}

	s := cursor.handle.store
	s.RLock()
	defer s.RUnlock()

	if s.isClosed() {
		return fault.ErrStorageClosed
	}

	prefixLength := len(cursor.handle.prefix)

	iter := s.db.NewIterator(&cursor.maxRange, nil)

	var err error
iterating:
	for iter.Next() {

		// the iterator owns the returned slices, copy before Next
		key := iter.Key()
		value := iter.Value()

		dataKey := make([]byte, len(key)-prefixLength)
		dataValue := make([]byte, len(value))
		copy(dataKey, key[prefixLength:])
		copy(dataValue, value)

		err = f(dataKey, dataValue)
		if err != nil {
			break iterating
		}
	}
	iter.Release()
	if err == nil {
		err = fault.NewStorageError(iter.Error())
	}
	return err
}
