package cli

import (
	"context"

	"github.com/brankow/citation-extraction/internal/config"
	"github.com/brankow/citation-extraction/internal/domain/citation"
	"github.com/brankow/citation-extraction/internal/infrastructure/database/postgres"
	"github.com/brankow/citation-extraction/internal/infrastructure/database/redis"
	"github.com/brankow/citation-extraction/internal/infrastructure/monitoring/logging"
	"github.com/brankow/citation-extraction/internal/infrastructure/monitoring/prometheus"
	"github.com/brankow/citation-extraction/internal/llm"
	"github.com/brankow/citation-extraction/internal/pipeline"
	"github.com/brankow/citation-extraction/internal/textproc/dateextract"
	"github.com/brankow/citation-extraction/internal/textproc/redact"
	"github.com/brankow/citation-extraction/internal/textproc/splitter"
)

// metricNamespace prefixes every prometheus metric the binaries emit.
const metricNamespace = "citex"

// app bundles the wired collaborators shared by the extraction subcommands.
type app struct {
	cfg       *config.Config
	log       logging.Logger
	collector prometheus.MetricsCollector
	metrics   *prometheus.AppMetrics
	cache     *redis.ResponseCache
	store     *postgres.Store
	llm       *llm.Client
	proc      *pipeline.Processor
	runner    *pipeline.Runner
}

// newApp loads configuration and wires logger, metrics, optional cache and
// run store, the LLM client, and the pipeline.  It probes the LLM endpoint
// and fails fast when it is unreachable, so no document is half-processed
// against a dead model.
func newApp(ctx context.Context, opts *RootOptions) (*app, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigPath != "" {
		cfg, err = config.Load(opts.ConfigPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	log, err := logging.NewLogger(logging.LogConfig{
		Level:            cfg.Log.Level,
		Format:           cfg.Log.Format,
		OutputPaths:      cfg.Log.OutputPaths,
		ErrorOutputPaths: cfg.Log.ErrorOutputPaths,
	})
	if err != nil {
		return nil, err
	}
	logging.SetDefault(log)

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            metricNamespace,
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, log)
	if err != nil {
		return nil, err
	}
	metrics := prometheus.NewAppMetrics(collector)

	a := &app{cfg: cfg, log: log, collector: collector, metrics: metrics}

	llmOpts := []llm.Option{llm.WithMetrics(metrics)}
	if cfg.Redis.Addr != "" {
		a.cache, err = redis.New(cfg.Redis, log)
		if err != nil {
			return nil, err
		}
		llmOpts = append(llmOpts, llm.WithCache(a.cache))
	}
	a.llm = llm.NewClient(cfg.LLM, log, llmOpts...)

	if err := a.llm.Ping(ctx); err != nil {
		a.Close()
		return nil, err
	}
	log.Info("LLM endpoint reachable",
		logging.String("url", cfg.LLM.URL),
		logging.String("model", cfg.LLM.Model))

	dates := dateextract.New(dateextract.Config{
		MinYear: cfg.DateExtract.MinYear,
		MaxYear: cfg.DateExtract.MaxYear,
	})
	a.proc = pipeline.NewProcessor(
		splitter.New(splitter.Config{
			Threshold: cfg.Splitter.Threshold,
			MaxDepth:  cfg.Splitter.MaxDepth,
		}),
		redact.New(redact.Config{MaxTokenLength: cfg.Redact.MaxTokenLength}),
		citation.NewCorrector(dates, log),
		a.llm,
		pipeline.WithLogger(log),
		pipeline.WithMetrics(metrics),
	)

	runnerOpts := []pipeline.RunnerOption{
		pipeline.WithRunnerLogger(log),
		pipeline.WithRunnerMetrics(metrics),
	}
	if cfg.Postgres.DSN != "" {
		a.store, err = postgres.New(ctx, cfg.Postgres, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		runnerOpts = append(runnerOpts, pipeline.WithRunStore(a.store))
	}
	a.runner = pipeline.NewRunner(a.proc, runnerOpts...)

	return a, nil
}

// Close releases the optional cache and store connections.
func (a *app) Close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("cache close failed", logging.Err(err))
		}
	}
	if a.store != nil {
		a.store.Close()
	}
}
