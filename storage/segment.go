// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"

	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/arnaudgouriou/pantheon/fault"
)

// DefaultSegmentName - the implicit segment every store carries
//
// its identifier is the UTF-8 encoding of the name itself
const DefaultSegmentName = "default"

// Segment - declaration of one logical keyspace
//
// the identifier determines the on-disk keyspace; it is fixed when the
// catalog is built and must stay stable across restarts or previously
// written data becomes unreachable
type Segment struct {
	Name       string
	Identifier []byte
}

// DefaultSegment - declaration of the implicit segment
func DefaultSegment() Segment {
	return Segment{
		Name:       DefaultSegmentName,
		Identifier: []byte(DefaultSegmentName),
	}
}

// Handle - resolved reference to one segment of an open store
//
// only valid while the owning store is open
type Handle struct {
	segment Segment
	prefix  []byte
	store   *Store
}

// Name - the segment name this handle was resolved for
func (h *Handle) Name() string {
	return h.segment.Name
}

// Identifier - copy of the segment's raw identifier
func (h *Handle) Identifier() []byte {
	identifier := make([]byte, len(h.segment.Identifier))
	copy(identifier, h.segment.Identifier)
	return identifier
}

// key prefix: uvarint identifier length ++ identifier
//
// the length prefix prevents an identifier that is a prefix of another
// from producing overlapping keyspaces
func segmentPrefix(identifier []byte) []byte {
	prefix := make([]byte, binary.MaxVarintLen64+len(identifier))
	n := binary.PutUvarint(prefix, uint64(len(identifier)))
	n += copy(prefix[n:], identifier)
	return prefix[:n]
}

// prepend the segment prefix onto a key
func (h *Handle) prefixKey(key []byte) []byte {
	prefixedKey := make([]byte, 0, len(h.prefix)+len(key))
	prefixedKey = append(prefixedKey, h.prefix...)
	return append(prefixedKey, key...)
}

// iteration range covering the whole segment
func (h *Handle) keyRange() *ldb_util.Range {
	return ldb_util.BytesPrefix(h.prefix)
}

// build the immutable name -> handle catalog
//
// the catalog is never mutated after open; a name that fails to
// resolve later is a caller error, not a fallback to the default
// segment
func resolveSegments(store *Store, segments []Segment) (map[string]*Handle, error) {

	all := make([]Segment, 0, len(segments)+1)
	all = append(all, DefaultSegment())
	all = append(all, segments...)

	handles := make(map[string]*Handle, len(all))
	identifiers := make(map[string]struct{}, len(all))

	for _, segment := range all {
		if segment.Name == "" || len(segment.Identifier) == 0 {
			return nil, fault.ErrInvalidSegment
		}
		if _, ok := handles[segment.Name]; ok {
			return nil, fault.ErrDuplicateSegment
		}
		if _, ok := identifiers[string(segment.Identifier)]; ok {
			return nil, fault.ErrDuplicateSegment
		}
		identifiers[string(segment.Identifier)] = struct{}{}
		handles[segment.Name] = &Handle{
			segment: segment,
			prefix:  segmentPrefix(segment.Identifier),
			store:   store,
		}
	}
	return handles, nil
}
