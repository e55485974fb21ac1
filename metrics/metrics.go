// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// instrumentation contract between subsystems and the monitoring backend
//
// Subsystems create counters, timers and gauges through the System
// interface and drive the returned handles; aggregation and export are
// entirely the backend's concern. Instrumentation is best-effort and
// must never affect the correctness of the instrumented code.
package metrics

// Category - groups related metrics, becomes the name prefix
type Category string

// Counter - monotonically increasing event count
type Counter interface {
	Inc()
	Add(n uint64)
}

// LabelledCounter - a counter family; Labels resolves one member
type LabelledCounter interface {
	Labels(values ...string) Counter
}

// Timer - latency recorder
//
// Start returns a stop function observing the elapsed time when called;
// deferring the stop function records the sample on every exit path of
// the timed operation, including error returns
type Timer interface {
	Start() func()
}

// LabelledTimer - a timer family; Labels resolves one member
type LabelledTimer interface {
	Labels(values ...string) Timer
}

// System - the monitoring backend boundary
//
// gauges are callback driven: the supplier is invoked whenever the
// backend samples the gauge and must be safe to call at any time
type System interface {
	NewCounter(category Category, name string, help string) Counter
	NewLabelledCounter(category Category, name string, help string, labelNames ...string) LabelledCounter
	NewLabelledTimer(category Category, name string, help string, labelNames ...string) LabelledTimer
	NewLongGauge(category Category, name string, help string, supplier func() int64)
	NewIntGauge(category Category, name string, help string, supplier func() int)
}

// joins category and name into the exported metric name
func fullName(category Category, name string) string {
	return string(category) + "_" + name
}
