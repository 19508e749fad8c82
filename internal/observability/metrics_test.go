package observability

import (
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogramSnapshot(t *testing.T) {
	var h Histogram
	assert.Equal(t, HistogramSnapshot{}, h.Snapshot())

	for i := 1; i <= 5; i++ {
		h.Observe(time.Duration(i) * time.Millisecond)
	}
	s := h.Snapshot()
	assert.Equal(t, 5, s.Count)
	assert.Equal(t, 3*time.Millisecond, s.Mean)
	assert.Equal(t, 3*time.Millisecond, s.P50)
	assert.Equal(t, 5*time.Millisecond, s.Max)
	assert.InDelta(t, float64(4800*time.Microsecond), float64(s.P95), float64(time.Microsecond))
}

func TestVecsConcurrent(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.ResolveErrors().WithLabels("not_found").Inc()
			m.ResolveDuration().WithLabels("uuid").Observe(time.Millisecond)
		}()
	}
	wg.Wait()

	s := m.Snapshot()
	assert.Equal(t, int64(50), s.ResolveErrors["not_found"])
	assert.Equal(t, 50, s.ResolveDuration["uuid"].Count)
}

func TestServeHTTP(t *testing.T) {
	m := NewMetrics()
	m.NodesServed().Add(9)
	m.RPCDuration().WithLabels("/wfviz.v1.Inspector/Locate").Observe(2 * time.Millisecond)
	m.ResolveErrors().WithLabels("ambiguous").Inc()

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, "Nodes served: 9")
	assert.Contains(t, body, "/wfviz.v1.Inspector/Locate: Count: 1")
	assert.Contains(t, body, "ambiguous: 1")
	assert.Contains(t, body, "Resolve duration by lookup: no data")

	rec = httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics?format=json", nil))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var snap MetricsSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, int64(9), snap.NodesServed)
	assert.Equal(t, int64(1), snap.ResolveErrors["ambiguous"])
}
