package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/brankow/citation-extraction/internal/infrastructure/database/postgres"
	"github.com/brankow/citation-extraction/internal/infrastructure/monitoring/logging"
	"github.com/brankow/citation-extraction/internal/infrastructure/monitoring/prometheus"
	apperrors "github.com/brankow/citation-extraction/pkg/errors"
)

// outputDirName is the sibling directory catalog files are written into.
const outputDirName = "Output"

// writeSettleDelay gives a file dropped into a watched directory time to
// finish writing before it is opened.
const writeSettleDelay = 500 * time.Millisecond

// RunStore records completed runs.  Satisfied by postgres.Store; a nil store
// disables recording.
type RunStore interface {
	SaveRun(ctx context.Context, run postgres.RunRecord) error
}

// Runner processes files and folders through a Processor and writes catalog
// output next to the inputs.
type Runner struct {
	proc    *Processor
	log     logging.Logger
	metrics *prometheus.AppMetrics
	store   RunStore
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger sets the runner logger.
func WithRunnerLogger(log logging.Logger) RunnerOption {
	return func(r *Runner) { r.log = log }
}

// WithRunnerMetrics sets the runner metrics.
func WithRunnerMetrics(m *prometheus.AppMetrics) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// WithRunStore enables run-history recording.
func WithRunStore(store RunStore) RunnerOption {
	return func(r *Runner) { r.store = store }
}

// NewRunner wraps a Processor with file and folder handling.
func NewRunner(proc *Processor, opts ...RunnerOption) *Runner {
	r := &Runner{
		proc:    proc,
		log:     logging.NewNopLogger(),
		metrics: prometheus.NewNopAppMetrics(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FileReport summarizes one processed file.
type FileReport struct {
	File       string
	OutputPath string
	Result     *Result
}

// ProcessFile runs the pipeline over one XML file.  When citations were found
// the catalog is written to Output/<base>_citations<ext> next to the input;
// an empty catalog produces no output file, matching the OutputPath field
// being empty.
func (r *Runner) ProcessFile(ctx context.Context, path string) (*FileReport, error) {
	start := time.Now()
	log := r.log.With(logging.String("file", filepath.Base(path)))

	f, err := os.Open(path)
	if err != nil {
		r.metrics.DocumentsTotal.WithLabelValues("failed").Inc()
		return nil, apperrors.Wrap(err, apperrors.ErrCodeNotFound, "open input file").WithDetail(path)
	}
	defer f.Close()

	res, err := r.proc.ProcessDocument(ctx, f)
	if err != nil {
		status := "failed"
		if apperrors.IsCode(err, apperrors.ErrCodeDocumentParse) || apperrors.IsCode(err, apperrors.ErrCodeDocumentEmpty) {
			status = "parse_error"
		}
		r.metrics.DocumentsTotal.WithLabelValues(status).Inc()
		r.recordRun(ctx, path, res, status, time.Since(start))
		return nil, err
	}

	report := &FileReport{File: path, Result: res}
	if res.Catalog.Len() > 0 {
		outPath, err := r.writeCatalog(path, res)
		if err != nil {
			r.metrics.DocumentsTotal.WithLabelValues("failed").Inc()
			r.recordRun(ctx, path, res, "failed", time.Since(start))
			return nil, err
		}
		report.OutputPath = outPath
	} else {
		log.Info("no citations found, no output file generated")
	}

	r.metrics.DocumentsTotal.WithLabelValues("ok").Inc()
	r.metrics.DocumentDuration.WithLabelValues().Observe(time.Since(start).Seconds())
	r.recordRun(ctx, path, res, "ok", time.Since(start))
	return report, nil
}

// writeCatalog writes the catalog XML under the Output directory next to the
// input file.
func (r *Runner) writeCatalog(inputPath string, res *Result) (string, error) {
	outDir := filepath.Join(filepath.Dir(inputPath), outputDirName)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeOutputWrite, "create output directory").WithDetail(outDir)
	}

	base := filepath.Base(inputPath)
	ext := filepath.Ext(base)
	outPath := filepath.Join(outDir, strings.TrimSuffix(base, ext)+"_citations"+ext)

	f, err := os.Create(outPath)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeOutputWrite, "create output file").WithDetail(outPath)
	}
	defer f.Close()

	if err := res.Catalog.WriteXML(f); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeCatalogEncode, "write citation catalog").WithDetail(outPath)
	}
	r.log.Info("citation catalog written", logging.String("path", outPath))
	return outPath, nil
}

func (r *Runner) recordRun(ctx context.Context, path string, res *Result, status string, dur time.Duration) {
	if r.store == nil {
		return
	}
	run := postgres.RunRecord{
		File:      filepath.Base(path),
		Status:    status,
		Duration:  dur,
		CreatedAt: time.Now().UTC(),
	}
	if res != nil {
		run.ID = res.RunID
		run.Paragraphs = res.Paragraphs
		run.Articles, run.Accessions, run.Standards = res.Catalog.Counts()
	}
	if err := r.store.SaveRun(ctx, run); err != nil {
		r.log.Warn("run record not saved", logging.String("file", run.File), logging.Err(err))
	}
}

// BatchReport summarizes a folder run.
type BatchReport struct {
	Files    []FileReport
	Failed   int
	Duration time.Duration
}

// RunBatch processes every XML file in dir sequentially.  A failing file is
// logged and counted but does not stop the batch.
func (r *Runner) RunBatch(ctx context.Context, dir string) (*BatchReport, error) {
	files, err := listXMLFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeBatchNoFiles, "no XML files in folder").WithDetail(dir)
	}

	start := time.Now()
	report := &BatchReport{}
	for i, path := range files {
		r.log.Info("processing file",
			logging.Int("index", i+1),
			logging.Int("total", len(files)),
			logging.String("file", filepath.Base(path)))

		fileReport, err := r.ProcessFile(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			r.log.Error("file processing failed", logging.String("file", path), logging.Err(err))
			report.Failed++
			continue
		}
		report.Files = append(report.Files, *fileReport)
	}
	report.Duration = time.Since(start)

	r.log.Info("batch complete",
		logging.Int("processed", len(report.Files)),
		logging.Int("failed", report.Failed),
		logging.Duration("duration", report.Duration))
	return report, nil
}

// Watch processes XML files as they are dropped into dir.  It blocks until
// ctx is canceled.
func (r *Runner) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeWatcherFailure, "create directory watcher")
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeWatcherFailure, "watch directory").WithDetail(dir)
	}
	r.log.Info("watching for XML files", logging.String("dir", dir))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return apperrors.New(apperrors.ErrCodeWatcherFailure, "watcher event channel closed")
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !isXMLFile(event.Name) {
				continue
			}
			time.Sleep(writeSettleDelay)
			if _, err := r.ProcessFile(ctx, event.Name); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				r.log.Error("watched file processing failed",
					logging.String("file", event.Name), logging.Err(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return apperrors.New(apperrors.ErrCodeWatcherFailure, "watcher error channel closed")
			}
			r.log.Error("watcher error", logging.Err(err))
		}
	}
}

func listXMLFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeNotFound, "read folder").WithDetail(dir)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !isXMLFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

func isXMLFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".xml")
}
