// Package observability keeps in-process timing and error counts for the
// inspector server and exposes them over HTTP.
package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds the counters of one server process.
type Metrics struct {
	resolveDuration *HistogramVec
	resolveErrors   *CounterVec
	rpcDuration     *HistogramVec
	nodesServed     *Counter
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics() *Metrics {
	return &Metrics{
		resolveDuration: NewHistogramVec(),
		resolveErrors:   NewCounterVec(),
		rpcDuration:     NewHistogramVec(),
		nodesServed:     &Counter{},
	}
}

// ResolveDuration is labelled by lookup kind: uuid, path or root.
func (m *Metrics) ResolveDuration() *HistogramVec { return m.resolveDuration }

// ResolveErrors is labelled by error class, e.g. not_found or ambiguous.
func (m *Metrics) ResolveErrors() *CounterVec { return m.resolveErrors }

// RPCDuration is labelled by full gRPC method name.
func (m *Metrics) RPCDuration() *HistogramVec { return m.rpcDuration }

// NodesServed counts nodes returned by successful lookups.
func (m *Metrics) NodesServed() *Counter { return m.nodesServed }

// Snapshot returns a snapshot of all metrics for reporting.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	return &MetricsSnapshot{
		ResolveDuration: m.resolveDuration.Snapshot(),
		ResolveErrors:   m.resolveErrors.Snapshot(),
		RPCDuration:     m.rpcDuration.Snapshot(),
		NodesServed:     m.nodesServed.Get(),
	}
}

// MetricsSnapshot holds a point-in-time snapshot of all metrics.
type MetricsSnapshot struct {
	ResolveDuration map[string]HistogramSnapshot `json:"resolve_duration"`
	ResolveErrors   map[string]int64             `json:"resolve_errors"`
	RPCDuration     map[string]HistogramSnapshot `json:"rpc_duration"`
	NodesServed     int64                        `json:"nodes_served"`
}

// Histogram tracks the distribution of duration measurements.
// Thread-safe for concurrent observations.
type Histogram struct {
	mu     sync.Mutex
	values []time.Duration
}

// Observe records a duration measurement.
func (h *Histogram) Observe(d time.Duration) {
	h.mu.Lock()
	h.values = append(h.values, d)
	h.mu.Unlock()
}

// Snapshot returns the count, mean, percentiles and maximum.
func (h *Histogram) Snapshot() HistogramSnapshot {
	h.mu.Lock()
	sorted := make([]time.Duration, len(h.values))
	copy(sorted, h.values)
	h.mu.Unlock()

	if len(sorted) == 0 {
		return HistogramSnapshot{}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, v := range sorted {
		sum += v
	}

	return HistogramSnapshot{
		Count: len(sorted),
		Mean:  sum / time.Duration(len(sorted)),
		P50:   percentile(sorted, 0.50),
		P95:   percentile(sorted, 0.95),
		P99:   percentile(sorted, 0.99),
		Max:   sorted[len(sorted)-1],
	}
}

// HistogramSnapshot holds calculated statistics for a histogram.
type HistogramSnapshot struct {
	Count int           `json:"count"`
	Mean  time.Duration `json:"mean"`
	P50   time.Duration `json:"p50"`
	P95   time.Duration `json:"p95"`
	P99   time.Duration `json:"p99"`
	Max   time.Duration `json:"max"`
}

// percentile interpolates linearly between the two nearest ranks.
func percentile(sorted []time.Duration, p float64) time.Duration {
	rank := p * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	weight := rank - float64(lower)
	return time.Duration(float64(sorted[lower])*(1-weight) + float64(sorted[upper])*weight)
}

// HistogramVec is a collection of histograms with labels.
type HistogramVec struct {
	mu         sync.RWMutex
	histograms map[string]*Histogram
}

// NewHistogramVec creates a new histogram vector.
func NewHistogramVec() *HistogramVec {
	return &HistogramVec{histograms: make(map[string]*Histogram)}
}

// WithLabels returns the histogram for label, creating it on first use.
func (hv *HistogramVec) WithLabels(label string) *Histogram {
	hv.mu.RLock()
	h, ok := hv.histograms[label]
	hv.mu.RUnlock()
	if ok {
		return h
	}

	hv.mu.Lock()
	defer hv.mu.Unlock()
	if h, ok := hv.histograms[label]; ok {
		return h
	}
	h = &Histogram{}
	hv.histograms[label] = h
	return h
}

// Snapshot returns snapshots of all histograms.
func (hv *HistogramVec) Snapshot() map[string]HistogramSnapshot {
	hv.mu.RLock()
	defer hv.mu.RUnlock()

	out := make(map[string]HistogramSnapshot, len(hv.histograms))
	for label, h := range hv.histograms {
		out[label] = h.Snapshot()
	}
	return out
}

// Counter is a monotonically increasing counter.
type Counter struct {
	value atomic.Int64
}

// Inc increments the counter by 1.
func (c *Counter) Inc() { c.value.Add(1) }

// Add adds delta to the counter.
func (c *Counter) Add(delta int64) { c.value.Add(delta) }

// Get returns the current value.
func (c *Counter) Get() int64 { return c.value.Load() }

// CounterVec is a collection of counters with labels.
type CounterVec struct {
	mu       sync.RWMutex
	counters map[string]*Counter
}

// NewCounterVec creates a new counter vector.
func NewCounterVec() *CounterVec {
	return &CounterVec{counters: make(map[string]*Counter)}
}

// WithLabels returns the counter for label, creating it on first use.
func (cv *CounterVec) WithLabels(label string) *Counter {
	cv.mu.RLock()
	c, ok := cv.counters[label]
	cv.mu.RUnlock()
	if ok {
		return c
	}

	cv.mu.Lock()
	defer cv.mu.Unlock()
	if c, ok := cv.counters[label]; ok {
		return c
	}
	c = &Counter{}
	cv.counters[label] = c
	return c
}

// Snapshot returns the current values of all counters.
func (cv *CounterVec) Snapshot() map[string]int64 {
	cv.mu.RLock()
	defer cv.mu.RUnlock()

	out := make(map[string]int64, len(cv.counters))
	for label, c := range cv.counters {
		out[label] = c.Get()
	}
	return out
}

// ServeHTTP writes the snapshot as JSON when asked for (?format=json or an
// application/json Accept header) and as plain text otherwise.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snapshot := m.Snapshot()

	if r.URL.Query().Get("format") == "json" || r.Header.Get("Accept") == "application/json" {
		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.Encode(snapshot)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "# wfviz inspector metrics\n\n")
	fmt.Fprintf(w, "Nodes served: %d\n\n", snapshot.NodesServed)
	writeHistograms(w, "Resolve duration by lookup", snapshot.ResolveDuration)
	writeHistograms(w, "RPC duration by method", snapshot.RPCDuration)

	if len(snapshot.ResolveErrors) > 0 {
		fmt.Fprintf(w, "Resolve errors:\n")
		for _, label := range sortedKeys(snapshot.ResolveErrors) {
			fmt.Fprintf(w, "  %s: %d\n", label, snapshot.ResolveErrors[label])
		}
	}
}

func writeHistograms(w io.Writer, title string, hists map[string]HistogramSnapshot) {
	if len(hists) == 0 {
		fmt.Fprintf(w, "%s: no data\n\n", title)
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, label := range sortedKeys(hists) {
		h := hists[label]
		fmt.Fprintf(w, "  %s: Count: %d, Mean: %v, P50: %v, P95: %v, P99: %v, Max: %v\n",
			label, h.Count, h.Mean, h.P50, h.P95, h.P99, h.Max)
	}
	fmt.Fprintf(w, "\n")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
