// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/arnaudgouriou/pantheon/counter"
)

// InMemory - process-local System implementation
//
// used by tests and by processes running without an exporter; counters
// and timer samples are lock-free atomic counters, the map of metric
// names is guarded by a mutex on creation only
type InMemory struct {
	sync.Mutex
	counters    map[string]*counter.Counter
	timerCounts map[string]*counter.Counter
	timerTotals map[string]*counter.Counter // nanoseconds
	longGauges  map[string]func() int64
	intGauges   map[string]func() int
}

// NewInMemory - create an empty in-process monitoring backend
func NewInMemory() *InMemory {
	return &InMemory{
		counters:    make(map[string]*counter.Counter),
		timerCounts: make(map[string]*counter.Counter),
		timerTotals: make(map[string]*counter.Counter),
		longGauges:  make(map[string]func() int64),
		intGauges:   make(map[string]func() int),
	}
}

// one key per metric member: name plus resolved label values
func metricKey(category Category, name string, labelValues []string) string {
	if len(labelValues) == 0 {
		return fullName(category, name)
	}
	return fullName(category, name) + "{" + strings.Join(labelValues, ",") + "}"
}

func fetch(m map[string]*counter.Counter, key string) *counter.Counter {
	c, ok := m[key]
	if !ok {
		c = new(counter.Counter)
		m[key] = c
	}
	return c
}

type inMemoryCounter struct {
	value *counter.Counter
}

func (c inMemoryCounter) Inc() {
	c.value.Increment()
}

func (c inMemoryCounter) Add(n uint64) {
	c.value.Add(n)
}

type inMemoryLabelledCounter struct {
	system   *InMemory
	category Category
	name     string
}

func (c inMemoryLabelledCounter) Labels(values ...string) Counter {
	c.system.Lock()
	defer c.system.Unlock()
	return inMemoryCounter{value: fetch(c.system.counters, metricKey(c.category, c.name, values))}
}

type inMemoryTimer struct {
	count *counter.Counter
	total *counter.Counter
}

func (t inMemoryTimer) Start() func() {
	begin := time.Now()
	return func() {
		t.count.Increment()
		t.total.Add(uint64(time.Since(begin)))
	}
}

type inMemoryLabelledTimer struct {
	system   *InMemory
	category Category
	name     string
}

func (t inMemoryLabelledTimer) Labels(values ...string) Timer {
	t.system.Lock()
	defer t.system.Unlock()
	key := metricKey(t.category, t.name, values)
	return inMemoryTimer{
		count: fetch(t.system.timerCounts, key),
		total: fetch(t.system.timerTotals, key),
	}
}

func (m *InMemory) NewCounter(category Category, name string, help string) Counter {
	m.Lock()
	defer m.Unlock()
	return inMemoryCounter{value: fetch(m.counters, metricKey(category, name, nil))}
}

func (m *InMemory) NewLabelledCounter(category Category, name string, help string, labelNames ...string) LabelledCounter {
	return inMemoryLabelledCounter{system: m, category: category, name: name}
}

func (m *InMemory) NewLabelledTimer(category Category, name string, help string, labelNames ...string) LabelledTimer {
	return inMemoryLabelledTimer{system: m, category: category, name: name}
}

func (m *InMemory) NewLongGauge(category Category, name string, help string, supplier func() int64) {
	m.Lock()
	defer m.Unlock()
	m.longGauges[metricKey(category, name, nil)] = supplier
}

func (m *InMemory) NewIntGauge(category Category, name string, help string, supplier func() int) {
	m.Lock()
	defer m.Unlock()
	m.intGauges[metricKey(category, name, nil)] = supplier
}

// CounterValue - current count, zero for a metric never created
func (m *InMemory) CounterValue(category Category, name string, labelValues ...string) uint64 {
	m.Lock()
	defer m.Unlock()
	c, ok := m.counters[metricKey(category, name, labelValues)]
	if !ok {
		return 0
	}
	return c.Uint64()
}

// TimerCount - number of samples observed by a timer
func (m *InMemory) TimerCount(category Category, name string, labelValues ...string) uint64 {
	m.Lock()
	defer m.Unlock()
	c, ok := m.timerCounts[metricKey(category, name, labelValues)]
	if !ok {
		return 0
	}
	return c.Uint64()
}

// TimerTotal - accumulated time observed by a timer
func (m *InMemory) TimerTotal(category Category, name string, labelValues ...string) time.Duration {
	m.Lock()
	defer m.Unlock()
	c, ok := m.timerTotals[metricKey(category, name, labelValues)]
	if !ok {
		return 0
	}
	return time.Duration(c.Uint64())
}

// LongGaugeValue - sample a gauge, zero for a gauge never registered
func (m *InMemory) LongGaugeValue(category Category, name string) int64 {
	m.Lock()
	supplier, ok := m.longGauges[metricKey(category, name, nil)]
	m.Unlock()
	if !ok {
		return 0
	}
	return supplier()
}

// IntGaugeValue - sample a gauge, zero for a gauge never registered
func (m *InMemory) IntGaugeValue(category Category, name string) int {
	m.Lock()
	supplier, ok := m.intGauges[metricKey(category, name, nil)]
	m.Unlock()
	if !ok {
		return 0
	}
	return supplier()
}
