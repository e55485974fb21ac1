// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// node permissioning gated on sync progress
//
// A freshly started node must not enforce its allow list before it has
// caught up with the chain: until then it only knows a stale view of
// the permissioning data. The provider watches the sync status stream
// and latches a "reached sync" flag; before the latch only outgoing
// connections to the configured boot nodes are permitted, afterwards
// decisions come from the allow list kept in the permissioning segment
// of the storage engine.
//
// This package is a client of the storage engine; the engine never
// depends on it.
package permission
