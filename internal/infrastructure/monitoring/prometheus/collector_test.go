package prometheus

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brankow/citation-extraction/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "citex"}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func TestNewMetricsCollector_RequiresNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{}, nil)
	assert.Error(t, err)
}

func TestRegisterCounter_AndScrape(t *testing.T) {
	c := newTestCollector(t)

	counter := c.RegisterCounter("citations_total", "Citations added", "kind")
	counter.WithLabelValues("article").Inc()
	counter.WithLabelValues("article").Add(2)
	counter.WithLabelValues("standard").Inc()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	assert.Contains(t, body, `citex_citations_total{kind="article"} 3`)
	assert.Contains(t, body, `citex_citations_total{kind="standard"} 1`)
}

func TestRegisterHistogram_ObservesDuration(t *testing.T) {
	c := newTestCollector(t)

	hist := c.RegisterHistogram("llm_request_duration_seconds", "LLM duration", nil, "operation")
	hist.WithLabelValues("npl").Observe(0.42)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `citex_llm_request_duration_seconds_count{operation="npl"} 1`)
}

func TestRegister_DuplicateNameReturnsExisting(t *testing.T) {
	c := newTestCollector(t)

	first := c.RegisterCounter("documents_total", "Documents", "status")
	second := c.RegisterCounter("documents_total", "Documents", "status")

	first.WithLabelValues("ok").Inc()
	second.WithLabelValues("ok").Inc()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `citex_documents_total{status="ok"} 2`)
}

func TestRegister_ConflictFallsBackToNoop(t *testing.T) {
	c := newTestCollector(t)

	c.RegisterCounter("mixed_metric", "as counter")
	gauge := c.RegisterGauge("mixed_metric", "as gauge")

	// The second registration must not panic and must be inert.
	gauge.WithLabelValues().Set(7)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.False(t, strings.Contains(rec.Body.String(), "mixed_metric 7"))
}

func TestNewAppMetrics_RegistersEverything(t *testing.T) {
	c := newTestCollector(t)
	m := NewAppMetrics(c)

	m.DocumentsTotal.WithLabelValues("ok").Inc()
	m.SplitPartsTotal.WithLabelValues().Add(5)
	m.LLMRequestsTotal.WithLabelValues("npl", "ok").Inc()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `citex_documents_total{status="ok"} 1`)
	assert.Contains(t, body, "citex_split_parts_total 5")
	assert.Contains(t, body, `citex_llm_requests_total{operation="npl",status="ok"} 1`)
}

func TestTimer_NilHistogramIsSafe(t *testing.T) {
	timer := NewTimer(nil)
	timer.ObserveDuration()
}
