// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/bitmark-inc/logger"

	"github.com/arnaudgouriou/pantheon/metrics"
)

// MetricCategory - prefix of every metric this package exports
const MetricCategory = metrics.Category("kvstore")

// timers and counters wrapping the engine operations
//
// purely observational: a timing scope neither suppresses nor alters
// the error of the operation it wraps
type instrumentation struct {
	readTime   metrics.Timer
	writeTime  metrics.Timer
	removeTime metrics.Timer
	commitTime metrics.Timer
	rollbacks  metrics.Counter
}

func newInstrumentation(monitor metrics.System, label string, store *Store, log *logger.L) *instrumentation {

	i := &instrumentation{
		readTime: monitor.NewLabelledTimer(MetricCategory,
			"read_latency_seconds", "latency of point reads", "database").Labels(label),
		writeTime: monitor.NewLabelledTimer(MetricCategory,
			"write_latency_seconds", "latency of staged writes", "database").Labels(label),
		removeTime: monitor.NewLabelledTimer(MetricCategory,
			"remove_latency_seconds", "latency of staged removes", "database").Labels(label),
		commitTime: monitor.NewLabelledTimer(MetricCategory,
			"commit_latency_seconds", "latency of transaction commits", "database").Labels(label),
		rollbacks: monitor.NewLabelledCounter(MetricCategory,
			"rollback_count", "number of transactions rolled back", "database").Labels(label),
	}

	// engine-internal gauge; a failed statistics read is logged and
	// reported as zero, never propagated
	monitor.NewLongGauge(MetricCategory,
		"block_cache_memory_bytes",
		"estimated memory used by the engine block cache in bytes",
		func() int64 {
			if store.isClosed() {
				return 0
			}
			var stats leveldb.DBStats
			if err := store.db.Stats(&stats); err != nil {
				log.Warnf("block cache statistic unavailable: %s", err)
				return 0
			}
			return int64(stats.BlockCacheSize)
		})

	return i
}
