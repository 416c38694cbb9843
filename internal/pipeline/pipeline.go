// Package pipeline orchestrates citation extraction over patent XML
// documents: paragraph gating, splitting, redaction, LLM extraction,
// correction, filtering, and catalog aggregation.
package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/brankow/citation-extraction/internal/domain/citation"
	"github.com/brankow/citation-extraction/internal/infrastructure/monitoring/logging"
	"github.com/brankow/citation-extraction/internal/infrastructure/monitoring/prometheus"
	"github.com/brankow/citation-extraction/internal/textproc/redact"
	"github.com/brankow/citation-extraction/internal/textproc/splitter"
)

// Extractor is the LLM surface the pipeline depends on.  Satisfied by
// llm.Client.
type Extractor interface {
	ExtractReferences(ctx context.Context, text string) ([]citation.Reference, error)
	ExtractStandards(ctx context.Context, text string, g3ppCandidates, ieeeCandidates []string) ([]citation.Standard, error)
	ExtractAccessions(ctx context.Context, text string) ([]citation.Accession, error)
}

// defaultConcurrency bounds parallel LLM calls within one paragraph.
const defaultConcurrency = 4

// Processor runs the extraction pipeline over one document at a time.
type Processor struct {
	splitter    *splitter.Splitter
	redactor    *redact.Redactor
	corrector   *citation.Corrector
	llm         Extractor
	log         logging.Logger
	metrics     *prometheus.AppMetrics
	concurrency int
}

// ProcessorOption customizes a Processor.
type ProcessorOption func(*Processor)

// WithLogger sets the pipeline logger.
func WithLogger(log logging.Logger) ProcessorOption {
	return func(p *Processor) { p.log = log }
}

// WithMetrics sets the pipeline metrics.
func WithMetrics(m *prometheus.AppMetrics) ProcessorOption {
	return func(p *Processor) { p.metrics = m }
}

// WithConcurrency bounds parallel LLM calls per paragraph.
func WithConcurrency(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// NewProcessor wires the pipeline from its collaborators.
func NewProcessor(split *splitter.Splitter, red *redact.Redactor, corr *citation.Corrector, llm Extractor, opts ...ProcessorOption) *Processor {
	p := &Processor{
		splitter:    split,
		redactor:    red,
		corrector:   corr,
		llm:         llm,
		log:         logging.NewNopLogger(),
		metrics:     prometheus.NewNopAppMetrics(),
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is the outcome of processing one document.
type Result struct {
	RunID      string
	Catalog    *citation.Catalog
	Paragraphs int
	Gated      int
	Duration   time.Duration
}

// ProcessDocument extracts all citations from one patent XML document.
// Paragraphs are processed in order so catalog identifiers are deterministic;
// the LLM calls for one paragraph's chunks run concurrently.
func (p *Processor) ProcessDocument(ctx context.Context, r io.Reader) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := p.log.With(logging.String("run_id", runID))

	paragraphs, err := parseParagraphs(r)
	if err != nil {
		return nil, err
	}

	catalog := citation.NewCatalog()
	gated := 0
	for _, para := range paragraphs {
		if p.processParagraph(ctx, log, catalog, para) {
			gated++
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	res := &Result{
		RunID:      runID,
		Catalog:    catalog,
		Paragraphs: len(paragraphs),
		Gated:      gated,
		Duration:   time.Since(start),
	}
	articles, accessions, standards := catalog.Counts()
	log.Info("document processed",
		logging.Int("paragraphs", res.Paragraphs),
		logging.Int("gated", res.Gated),
		logging.Int("articles", articles),
		logging.Int("accessions", accessions),
		logging.Int("standards", standards),
		logging.Duration("duration", res.Duration))
	return res, nil
}

// processParagraph applies the gates and runs each triggered extraction path.
// It reports whether any gate fired.
func (p *Processor) processParagraph(ctx context.Context, log logging.Logger, catalog *citation.Catalog, para Paragraph) bool {
	hasYear := citation.ContainsYear(para.Text)
	hasNplcit := para.NplcitCount > 0
	hasGenBank := citation.ContainsGenBank(para.Text)
	hasDOI := citation.ContainsDOI(para.Text)
	g3pp := citation.Find3GPPReferences(para.Text)
	ieee := citation.FindIEEEReferences(para.Text)
	hasStandards := len(g3pp) > 0 || len(ieee) > 0

	for gate, hit := range map[string]bool{
		"year":      hasYear,
		"nplcit":    hasNplcit,
		"genbank":   hasGenBank,
		"doi":       hasDOI,
		"standards": hasStandards,
	} {
		if hit {
			p.metrics.ParagraphsTotal.WithLabelValues(gate).Inc()
		}
	}
	if !hasYear && !hasNplcit && !hasGenBank && !hasDOI && !hasStandards {
		p.metrics.ParagraphsTotal.WithLabelValues("skipped").Inc()
		return false
	}

	plog := log.With(logging.String("paragraph", para.Num))
	chunks := p.split(plog, para.Text)

	if hasYear || hasDOI {
		p.extractReferences(ctx, plog, catalog, para.Num, chunks)
	}
	if hasGenBank {
		p.extractAccessions(ctx, plog, catalog, para.Num, chunks)
	}
	if hasStandards {
		p.extractStandards(ctx, plog, catalog, para.Num, chunks)
	}
	return true
}

func (p *Processor) split(log logging.Logger, text string) []string {
	chunks := p.splitter.Split(text)
	p.metrics.SplitPartsTotal.WithLabelValues().Add(float64(len(chunks)))
	for _, i := range p.splitter.Oversized(chunks) {
		p.metrics.OversizedParts.WithLabelValues().Inc()
		log.Warn("chunk remains over the split threshold",
			logging.Int("chunk", i),
			logging.Int("length", len(chunks[i])))
	}
	return chunks
}

func (p *Processor) extractReferences(ctx context.Context, log logging.Logger, catalog *citation.Catalog, num string, chunks []string) {
	results := make([][]citation.Reference, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			refs, err := p.llm.ExtractReferences(gctx, chunk)
			if err != nil {
				log.Error("reference extraction failed", logging.Int("chunk", i), logging.Err(err))
				return nil
			}
			results[i] = refs
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers never return errors

	for _, refs := range results {
		for _, ref := range refs {
			corrected, fired := p.corrector.Correct(ref)
			for _, name := range fired {
				p.metrics.CorrectionsTotal.WithLabelValues(name).Inc()
			}
			if !citation.IsCanonicalDate(corrected.PublicationDate) && corrected.PublicationDate != "" {
				p.metrics.UnparseableDates.WithLabelValues().Inc()
			}
			if reason, skip := citation.ShouldSkipReference(corrected); skip {
				p.metrics.FilteredRefsTotal.WithLabelValues(reason).Inc()
				log.Debug("reference filtered",
					logging.String("reason", reason),
					logging.String("title", corrected.Title))
				continue
			}
			if _, ok := catalog.AddReference(corrected, num); ok {
				p.metrics.CitationsTotal.WithLabelValues("article").Inc()
			}
		}
	}
}

func (p *Processor) extractAccessions(ctx context.Context, log logging.Logger, catalog *citation.Catalog, num string, chunks []string) {
	results := make([][]citation.Accession, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			// Sequence listings and formulas crowd out the identifiers the
			// model is supposed to find.
			accs, err := p.llm.ExtractAccessions(gctx, p.redactor.Apply(chunk))
			if err != nil {
				log.Error("accession extraction failed", logging.Int("chunk", i), logging.Err(err))
				return nil
			}
			results[i] = accs
			return nil
		})
	}
	g.Wait() //nolint:errcheck

	for _, accs := range results {
		for _, acc := range accs {
			if reason, skip := citation.ShouldSkipAccession(acc); skip {
				p.metrics.FilteredRefsTotal.WithLabelValues(reason).Inc()
				log.Debug("accession filtered",
					logging.String("reason", reason),
					logging.String("type", acc.Type),
					logging.String("id", acc.ID))
				continue
			}
			catalog.AddAccession(acc, num)
			p.metrics.CitationsTotal.WithLabelValues("online").Inc()
		}
	}
}

func (p *Processor) extractStandards(ctx context.Context, log logging.Logger, catalog *citation.Catalog, num string, chunks []string) {
	results := make([][]citation.Standard, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			g3pp := citation.Find3GPPReferences(chunk)
			ieee := citation.FindIEEEReferences(chunk)
			if len(g3pp) == 0 && len(ieee) == 0 {
				return nil
			}
			stds, err := p.llm.ExtractStandards(gctx, chunk, g3pp, ieee)
			if err != nil {
				log.Error("standards extraction failed", logging.Int("chunk", i), logging.Err(err))
				return nil
			}
			results[i] = stds
			return nil
		})
	}
	g.Wait() //nolint:errcheck

	for _, stds := range results {
		for _, std := range stds {
			catalog.AddStandard(std, num)
			p.metrics.CitationsTotal.WithLabelValues("standard").Inc()
		}
	}
}
