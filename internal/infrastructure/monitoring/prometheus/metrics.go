package prometheus

// AppMetrics holds every metric the extraction pipeline emits.
type AppMetrics struct {
	// Document pipeline
	DocumentsTotal     CounterVec // status: ok | parse_error | failed
	DocumentDuration   HistogramVec
	ParagraphsTotal    CounterVec // gate: year | nplcit | genbank | doi | standards | skipped
	SplitPartsTotal    CounterVec
	OversizedParts     CounterVec
	CitationsTotal     CounterVec // kind: article | online | standard
	CorrectionsTotal   CounterVec // heuristic name
	FilteredRefsTotal  CounterVec // filter condition name
	UnparseableDates   CounterVec

	// LLM layer
	LLMRequestsTotal   CounterVec // operation, status
	LLMRetriesTotal    CounterVec // operation
	LLMRequestDuration HistogramVec
	LLMCacheHitsTotal  CounterVec
	LLMCacheMissTotal  CounterVec

	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
}

var (
	defaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	defaultLLMDurationBuckets  = []float64{.5, 1, 2, 5, 10, 30, 60, 120}
	defaultDocDurationBuckets  = []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800, 3600}
)

// NewNopAppMetrics returns an AppMetrics whose metrics discard every write.
// Used in tests and wherever metrics are optional.
func NewNopAppMetrics() *AppMetrics {
	return &AppMetrics{
		DocumentsTotal:     noopCounterVec{},
		DocumentDuration:   noopHistogramVec{},
		ParagraphsTotal:    noopCounterVec{},
		SplitPartsTotal:    noopCounterVec{},
		OversizedParts:     noopCounterVec{},
		CitationsTotal:     noopCounterVec{},
		CorrectionsTotal:   noopCounterVec{},
		FilteredRefsTotal:  noopCounterVec{},
		UnparseableDates:   noopCounterVec{},
		LLMRequestsTotal:   noopCounterVec{},
		LLMRetriesTotal:    noopCounterVec{},
		LLMRequestDuration: noopHistogramVec{},
		LLMCacheHitsTotal:  noopCounterVec{},
		LLMCacheMissTotal:  noopCounterVec{},

		HTTPRequestsTotal:   noopCounterVec{},
		HTTPRequestDuration: noopHistogramVec{},
	}
}

// NewAppMetrics registers all pipeline metrics against the collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.DocumentsTotal = collector.RegisterCounter("documents_total", "Documents processed", "status")
	m.DocumentDuration = collector.RegisterHistogram("document_duration_seconds", "Per-document processing duration", defaultDocDurationBuckets)
	m.ParagraphsTotal = collector.RegisterCounter("paragraphs_total", "Paragraphs examined", "gate")
	m.SplitPartsTotal = collector.RegisterCounter("split_parts_total", "Chunks produced by the splitter")
	m.OversizedParts = collector.RegisterCounter("oversized_parts_total", "Chunks still over the split threshold")
	m.CitationsTotal = collector.RegisterCounter("citations_total", "Citations added to the catalog", "kind")
	m.CorrectionsTotal = collector.RegisterCounter("corrections_total", "Reference corrections applied", "heuristic")
	m.FilteredRefsTotal = collector.RegisterCounter("filtered_references_total", "References dropped by skip filters", "condition")
	m.UnparseableDates = collector.RegisterCounter("unparseable_dates_total", "Publication dates resolved to the sentinel")

	m.LLMRequestsTotal = collector.RegisterCounter("llm_requests_total", "LLM chat-completion requests", "operation", "status")
	m.LLMRetriesTotal = collector.RegisterCounter("llm_retries_total", "LLM request retries", "operation")
	m.LLMRequestDuration = collector.RegisterHistogram("llm_request_duration_seconds", "LLM request duration", defaultLLMDurationBuckets, "operation")
	m.LLMCacheHitsTotal = collector.RegisterCounter("llm_cache_hits_total", "LLM response cache hits")
	m.LLMCacheMissTotal = collector.RegisterCounter("llm_cache_misses_total", "LLM response cache misses")

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", defaultHTTPDurationBuckets, "method", "path")

	return m
}
