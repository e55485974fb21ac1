// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package permission

import (
	"sync/atomic"

	"github.com/bitmark-inc/logger"

	"github.com/arnaudgouriou/pantheon/metrics"
	"github.com/arnaudgouriou/pantheon/storage"
)

// MetricCategory - prefix of every metric this package exports
const MetricCategory = metrics.Category("permissioning")

// NodeID - opaque identity of a peer as carried on the wire
type NodeID []byte

// SyncStatus - one observation of the node's sync progress
type SyncStatus struct {
	StartingBlock uint64
	CurrentBlock  uint64
	HighestBlock  uint64
}

// InSync - the node has caught up with its best peer
func (s SyncStatus) InSync() bool {
	return s.CurrentBlock >= s.HighestBlock
}

// sync latch values
const (
	syncPending int32 = iota
	syncReached
)

// Provider - answers connection permissioning checks
//
// safe for concurrent use: the latch is a single atomic flag and the
// boot node set is immutable after construction
type Provider struct {
	reached   int32 // atomic latch, never cleared
	bootNodes map[string]struct{}
	allowList *storage.Handle // nil permits everything once synced

	checkCount       metrics.Counter
	permittedCount   metrics.Counter
	unpermittedCount metrics.Counter

	log *logger.L
}

// NewProvider - create a provider over a boot node set and an
// optional allow list segment
//
// callers feed sync observations into SyncStatusChanged; the exported
// gauge reflects whether sync has been reached
func NewProvider(bootNodes []NodeID, allowList *storage.Handle, monitor metrics.System, log *logger.L) *Provider {

	p := &Provider{
		reached:   syncPending,
		bootNodes: make(map[string]struct{}, len(bootNodes)),
		allowList: allowList,
		checkCount: monitor.NewCounter(MetricCategory,
			"sync_status_node_check_count",
			"Number of times the sync status permissioning provider has been checked"),
		permittedCount: monitor.NewCounter(MetricCategory,
			"sync_status_node_check_count_permitted",
			"Number of times the sync status permissioning provider has been checked and returned permitted"),
		unpermittedCount: monitor.NewCounter(MetricCategory,
			"sync_status_node_check_count_unpermitted",
			"Number of times the sync status permissioning provider has been checked and returned unpermitted"),
		log: log,
	}

	for _, node := range bootNodes {
		p.bootNodes[string(node)] = struct{}{}
	}

	monitor.NewIntGauge(MetricCategory,
		"sync_status_node_sync_reached",
		"Whether the sync status permissioning provider has realised sync yet",
		func() int {
			if p.ReachedSync() {
				return 1
			}
			return 0
		})

	return p
}

// SyncStatusChanged - feed one sync observation into the latch
//
// falling out of sync later never clears the latch: the local
// permissioning data is already trustworthy
func (p *Provider) SyncStatusChanged(status SyncStatus) {
	if p.ReachedSync() {
		return
	}
	if status.InSync() {
		if atomic.CompareAndSwapInt32(&p.reached, syncPending, syncReached) {
			p.log.Infof("sync reached at block: %d", status.CurrentBlock)
		}
	}
}

// ReachedSync - whether the latch has been set
func (p *Provider) ReachedSync() bool {
	return atomic.LoadInt32(&p.reached) == syncReached
}

// IsPermitted - decide a connection from source to destination
//
// before sync is reached only outgoing connections to a boot node are
// permitted; afterwards the allow list in the permissioning segment
// decides, and a missing allow list permits everything
func (p *Provider) IsPermitted(source NodeID, destination NodeID) (bool, error) {

	if !p.ReachedSync() {
		p.checkCount.Inc()
		if _, ok := p.bootNodes[string(destination)]; ok {
			p.permittedCount.Inc()
			return true, nil
		}
		p.unpermittedCount.Inc()
		return false, nil
	}

	if p.allowList == nil {
		return true, nil
	}

	p.checkCount.Inc()
	permitted, err := p.allowList.Has(destination)
	if err != nil {
		p.unpermittedCount.Inc()
		return false, err
	}
	if permitted {
		p.permittedCount.Inc()
	} else {
		p.unpermittedCount.Inc()
	}
	return permitted, nil
}

// Allow - persist a node on the allow list
func (p *Provider) Allow(trx storage.Transaction, node NodeID) error {
	if p.allowList == nil {
		return nil
	}
	return trx.Put(p.allowList, node, []byte{1})
}

// Deny - remove a node from the allow list
func (p *Provider) Deny(trx storage.Transaction, node NodeID) error {
	if p.allowList == nil {
		return nil
	}
	return trx.Remove(p.allowList, node)
}
