package http

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/brankow/citation-extraction/internal/infrastructure/monitoring/logging"
	"github.com/brankow/citation-extraction/internal/pipeline"
	apperrors "github.com/brankow/citation-extraction/pkg/errors"
)

// DocumentProcessor runs the extraction pipeline over one document.
// Satisfied by pipeline.Processor.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, r io.Reader) (*pipeline.Result, error)
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(c *gin.Context, log logging.Logger, err error) {
	code := apperrors.GetCode(err)
	status := code.HTTPStatus()
	log.Error("request failed",
		logging.String(requestIDKey, c.GetString(requestIDKey)),
		logging.Int("status", status),
		logging.Err(err))
	c.AbortWithStatusJSON(status, errorBody{Code: code.String(), Message: err.Error()})
}

// ExtractHandler serves the document extraction endpoint.
type ExtractHandler struct {
	proc         DocumentProcessor
	log          logging.Logger
	maxBodyBytes int64
}

// NewExtractHandler wires the extraction endpoint.
func NewExtractHandler(proc DocumentProcessor, maxBodyBytes int64, log logging.Logger) *ExtractHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ExtractHandler{proc: proc, log: log, maxBodyBytes: maxBodyBytes}
}

// Process handles POST /process: the request body is one patent XML document,
// the response body is the citation catalog XML.  An unparseable document is
// a 400, an extraction failure a 5xx.
func (h *ExtractHandler) Process(c *gin.Context) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)

	res, err := h.proc.ProcessDocument(c.Request.Context(), body)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	articles, accessions, standards := res.Catalog.Counts()
	h.log.Info("document processed",
		logging.String(requestIDKey, c.GetString(requestIDKey)),
		logging.String("run_id", res.RunID),
		logging.Int("citations", res.Catalog.Len()),
		logging.Duration("duration", res.Duration))

	c.Header("X-Run-Id", res.RunID)
	c.Header("X-Citations-Article", strconv.Itoa(articles))
	c.Header("X-Citations-Online", strconv.Itoa(accessions))
	c.Header("X-Citations-Standard", strconv.Itoa(standards))
	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Status(http.StatusOK)
	if err := res.Catalog.WriteXML(c.Writer); err != nil {
		// The status line is gone; all that is left is to log.
		h.log.Error("catalog write failed", logging.String("run_id", res.RunID), logging.Err(err))
	}
}

// HealthChecker reports the health of one dependency.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

type checkerFunc struct {
	name  string
	check func(ctx context.Context) error
}

func (c checkerFunc) Name() string                    { return c.name }
func (c checkerFunc) Check(ctx context.Context) error { return c.check(ctx) }

// NewChecker adapts a plain function into a HealthChecker.
func NewChecker(name string, check func(ctx context.Context) error) HealthChecker {
	return checkerFunc{name: name, check: check}
}

// readinessTimeout bounds one round of dependency checks.
const readinessTimeout = 5 * time.Second

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	version  string
	startAt  time.Time
	checkers []HealthChecker
}

// NewHealthHandler wires the probes over the given dependency checkers.
func NewHealthHandler(version string, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{version: version, startAt: time.Now(), checkers: checkers}
}

type componentCheck struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Liveness handles GET /healthz.  It confirms only that the process is up.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "alive",
		"version": h.version,
		"uptime":  time.Since(h.startAt).Truncate(time.Second).String(),
	})
}

// Readiness handles GET /readyz.  Every dependency is checked concurrently;
// any failure yields a 503.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if len(h.checkers) == 0 {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	components := make(map[string]componentCheck, len(h.checkers))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, checker := range h.checkers {
		wg.Add(1)
		go func(hc HealthChecker) {
			defer wg.Done()
			start := time.Now()
			err := hc.Check(ctx)
			cc := componentCheck{
				Status:  "healthy",
				Latency: time.Since(start).Truncate(time.Microsecond).String(),
			}
			if err != nil {
				cc.Status = "unhealthy"
				cc.Error = err.Error()
			}
			mu.Lock()
			components[hc.Name()] = cc
			mu.Unlock()
		}(checker)
	}
	wg.Wait()

	status, code := "ready", http.StatusOK
	for _, cc := range components {
		if cc.Status != "healthy" {
			status, code = "not_ready", http.StatusServiceUnavailable
			break
		}
	}
	c.JSON(code, gin.H{"status": status, "components": components})
}
