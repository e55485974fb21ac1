// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// maintain the on-disk data store
//
//
// maintain separate segments of key->value data over a single embedded
// LevelDB engine
//
// Each segment is an independently addressable keyspace declared as a
// name plus a raw byte identifier. Identifiers are resolved exactly
// once while the store is opened; the resulting handles stay valid
// until the store is closed. An implicit segment named "default" with
// the identifier "default" always exists.
//
// On disk a segment's keys share a common prefix:
//
//   uvarint(len(identifier)) ++ identifier ++ key
//
// The length prefix keeps keyspaces disjoint even when one identifier
// is a prefix of another, and keeps a whole segment contiguous so that
// sweeps, clears and cursors are single range scans.
//
// Typical segments of a node:
//
//   blockchain    - block headers, bodies and receipts
//   worldstate    - state trie nodes
//   permissioning - node allow list entries
//
// Mutations go through transactions: writes and deletes staged on a
// Transaction become visible atomically when it commits and never when
// it rolls back. The two maintenance operations, RemoveUnless and
// Clear, bypass transactions deliberately; see their comments.
//
// Logging must be initialised before Open is called.
package storage
