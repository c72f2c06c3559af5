package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveExchange("read")
	m.ObserveTimeout()
	m.ObserveChecksumMismatch()
	m.ObserveTruncatedBlock()
	m.ObserveShortFrame()
	m.SetParameter("hall", "0x0001", 1)
	m.ObservePollError("hall")
}

func TestCounters(t *testing.T) {
	m := New(NewRegistry())

	m.ObserveExchange("read")
	m.ObserveExchange("read")
	m.ObserveExchange("read-write")
	m.ObserveChecksumMismatch()
	m.SetParameter("hall", "0x0002", 3)

	if got := testutil.ToFloat64(m.Exchanges.WithLabelValues("read")); got != 2 {
		t.Errorf("read exchanges = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ChecksumMismatches); got != 1 {
		t.Errorf("checksum mismatches = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ParameterValue.WithLabelValues("hall", "0x0002")); got != 3 {
		t.Errorf("parameter gauge = %v, want 3", got)
	}
}

func TestHandler(t *testing.T) {
	reg := NewRegistry()
	m := New(reg)
	m.ObserveTimeout()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "blauberg_response_timeouts_total 1") {
		t.Error("timeout counter missing from exposition")
	}
}
