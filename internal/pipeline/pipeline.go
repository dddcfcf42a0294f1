package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/docket/internal/cache"
	derrors "github.com/ppiankov/docket/internal/errors"
	"github.com/ppiankov/docket/internal/extract"
	"github.com/ppiankov/docket/internal/llm"
	"github.com/ppiankov/docket/internal/model"
	"github.com/ppiankov/docket/internal/reconcile"
	"github.com/ppiankov/docket/internal/transcript"
	"github.com/ppiankov/docket/internal/worker"
)

// Document names one court document: a local file or an http(s) URL
type Document struct {
	Source reconcile.Source
	Ref    string
}

// Pipeline runs the side-effecting steps around the deterministic core:
// reading and fetching documents, calling the oracles, caching their
// results and throttling them.
type Pipeline struct {
	fetcher      *Fetcher
	extractor    llm.DocumentExtractor
	assessor     llm.EligibilityAssessor
	providerName string
	cache        cache.Cache // nil when caching is disabled
	limiter      *worker.Limiter
	pool         *worker.Pool
	logger       *zap.Logger
	config       *model.Config

	providerSet bool
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithProvider replaces the oracle provider built from the config.
// A nil provider disables both oracles.
func WithProvider(provider llm.Provider) Option {
	return func(p *Pipeline) {
		p.providerSet = true
		p.extractor, p.assessor, p.providerName = nil, nil, ""
		if provider != nil {
			p.extractor = provider
			p.assessor = provider
			p.providerName = provider.Name()
		}
	}
}

// WithCache replaces the extraction cache built from the config
func WithCache(c cache.Cache) Option {
	return func(p *Pipeline) {
		p.cache = c
	}
}

// New creates a pipeline from cfg
func New(cfg *model.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}

	docs := cfg.Documents
	p := &Pipeline{
		fetcher: NewFetcher(
			time.Duration(docs.FetchTimeout)*time.Second,
			docs.UserAgent,
			docs.MaxBytes,
			docs.RespectRobots,
			cfg.LLM.HTTPProxy,
			cfg.LLM.HTTPSProxy,
		),
		limiter: worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
		pool:    worker.NewPool(cfg.Concurrency.ExtractionWorkers),
		logger:  zap.NewNop(),
		config:  cfg,
	}
	for name, limit := range cfg.RateLimiting.Providers {
		p.limiter.SetRate(name, limit.RequestsPerSecond, limit.BurstSize)
	}
	if cfg.Cache.Enabled {
		p.cache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	for _, opt := range opts {
		opt(p)
	}

	if !p.providerSet {
		provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			return nil, fmt.Errorf("create oracle provider: %w", err)
		}
		if provider != nil {
			p.extractor, p.assessor, p.providerName = provider, provider, provider.Name()
		}
	}

	return p, nil
}

// ExtractDocuments produces one source record per document. Documents are
// processed on the worker pool. A document that cannot be read, fetched or
// extracted yields a record carrying only an error, never a hard failure.
func (p *Pipeline) ExtractDocuments(ctx context.Context, docs []Document) (map[reconcile.Source]model.SourceRecord, error) {
	if err := p.validate(docs); err != nil {
		return nil, err
	}

	jobs := make([]worker.Job[model.SourceRecord], len(docs))
	for i, doc := range docs {
		doc := doc
		jobs[i] = func(ctx context.Context) (model.SourceRecord, error) {
			return p.extractOne(ctx, doc)
		}
	}

	results := worker.Run(ctx, p.pool, jobs)

	records := make(map[reconcile.Source]model.SourceRecord, len(docs))
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			return nil, r.Err
		}
		if r.Value.Error != "" {
			failed++
		}
		records[docs[r.Index].Source] = r.Value
	}

	p.logger.Info("pipeline: documents extracted",
		zap.Int("documents", len(docs)),
		zap.Int("failed", failed),
	)
	return records, nil
}

// ReconcileDocuments extracts every document and merges the records into
// the canonical case record
func (p *Pipeline) ReconcileDocuments(ctx context.Context, docs []Document) (*model.CaseRecord, error) {
	records, err := p.ExtractDocuments(ctx, docs)
	if err != nil {
		return nil, err
	}
	return reconcile.Merge(records)
}

// SessionAnswers returns the typed answers of a session. Sessions closed
// by the recorder already carry them; older or still open sessions are
// analyzed from their turn log.
func SessionAnswers(sess *model.Session) model.Answers {
	if sess == nil {
		return model.Answers{}
	}
	if sess.State == model.SessionClosed && len(sess.Questions) > 0 {
		return sess.Questions
	}
	return transcript.Analyze(sess.Turns)
}

// CheckEligibility asks the eligibility oracle for a determination on the
// merged case record and the typed intake answers
func (p *Pipeline) CheckEligibility(ctx context.Context, caseRecord *model.CaseRecord, answers model.Answers) (*model.Determination, error) {
	if caseRecord == nil {
		return nil, derrors.Input(derrors.CodeMissingCase, "a case record is required for an eligibility check")
	}
	if p.assessor == nil {
		return nil, oracleDisabled("eligibility")
	}

	if err := p.limiter.Wait(ctx, p.providerName); err != nil {
		return nil, err
	}

	start := time.Now()
	det, err := p.assessor.AssessEligibility(ctx, llm.AssessRequest{Case: caseRecord, Answers: answers})
	if err != nil {
		if derrors.CategoryOf(err) != "" {
			return nil, err
		}
		return nil, derrors.Wrap(
			fmt.Errorf("eligibility oracle: %w", err),
			derrors.CategoryOracleFailure,
			derrors.CodeOracleRequest,
			"check llm.provider, llm.model and the API key",
		)
	}

	p.logger.Info("pipeline: eligibility assessed",
		zap.String("provider", p.providerName),
		zap.Bool("eligible", det.Eligible),
		zap.Int("confidence", det.Confidence),
		zap.Duration("took", time.Since(start)),
	)
	return det, nil
}

func (p *Pipeline) validate(docs []Document) error {
	if len(docs) == 0 {
		return derrors.Input(derrors.CodeNoDocuments, "at least one document required")
	}

	seen := make(map[reconcile.Source]bool, len(docs))
	needsOracle := false
	for _, doc := range docs {
		if _, ok := reconcile.ParseSource(string(doc.Source)); !ok {
			return derrors.Input(derrors.CodeUnknownSource, "unknown document source %q", doc.Source)
		}
		if seen[doc.Source] {
			return derrors.Input(derrors.CodeDuplicateSource, "more than one %s document given", doc.Source)
		}
		seen[doc.Source] = true

		if IsRemote(doc.Ref) || !isRecordFile(doc.Ref) {
			needsOracle = true
		}
	}

	if needsOracle && p.extractor == nil {
		return oracleDisabled("document extraction")
	}
	return nil
}

func (p *Pipeline) extractOne(ctx context.Context, doc Document) (model.SourceRecord, error) {
	if !IsRemote(doc.Ref) && isRecordFile(doc.Ref) {
		return p.loadRecord(doc), nil
	}

	name, text, err := p.documentText(ctx, doc)
	if err != nil {
		if ctx.Err() != nil {
			return model.SourceRecord{}, ctx.Err()
		}
		return p.failed(doc, name, err), nil
	}

	rec, err := p.extract(ctx, doc.Source, name, text)
	if err != nil {
		if ctx.Err() != nil {
			return model.SourceRecord{}, ctx.Err()
		}
		return p.failed(doc, name, err), nil
	}
	return *rec, nil
}

// documentText returns the display name and the oracle-ready text of doc
func (p *Pipeline) documentText(ctx context.Context, doc Document) (string, string, error) {
	maxChars := p.config.Documents.MaxChars

	if !IsRemote(doc.Ref) {
		name := filepath.Base(doc.Ref)
		text, err := extract.LoadDocumentText(doc.Ref, maxChars)
		return name, text, err
	}

	res, err := p.fetcher.Fetch(ctx, doc.Ref)
	if err != nil {
		return documentName(doc.Ref), "", err
	}
	p.logger.Debug("pipeline: document fetched",
		zap.String("source", string(doc.Source)),
		zap.String("url", res.FinalURL),
		zap.Int("bytes", len(res.Body)),
	)

	text, err := extract.DocumentText(res.Body, extract.IsHTML(res.Filename, res.ContentType), maxChars)
	return res.Filename, text, err
}

func (p *Pipeline) extract(ctx context.Context, source reconcile.Source, name, text string) (*model.SourceRecord, error) {
	key := cache.Key("extract", p.providerName, p.config.LLM.Model, string(source), text)
	if p.cache != nil {
		var cached model.SourceRecord
		if cache.GetJSON(p.cache, key, &cached) {
			p.logger.Debug("pipeline: extraction cache hit",
				zap.String("source", string(source)),
				zap.String("document", name),
			)
			return &cached, nil
		}
	}

	if err := p.limiter.Wait(ctx, p.providerName); err != nil {
		return nil, err
	}

	start := time.Now()
	rec, err := p.extractor.ExtractFields(ctx, llm.ExtractRequest{
		Source:   string(source),
		Filename: name,
		Text:     text,
	})
	if err != nil {
		return nil, err
	}
	rec.Error = ""

	p.logger.Debug("pipeline: document extracted",
		zap.String("source", string(source)),
		zap.String("document", name),
		zap.Duration("took", time.Since(start)),
	)

	if p.cache != nil {
		if err := cache.SetJSON(p.cache, key, rec, 0); err != nil {
			p.logger.Warn("pipeline: cache write failed", zap.Error(err))
		}
	}
	return rec, nil
}

// loadRecord reads a source record that was extracted earlier and saved as JSON
func (p *Pipeline) loadRecord(doc Document) model.SourceRecord {
	name := filepath.Base(doc.Ref)
	data, err := os.ReadFile(doc.Ref)
	if err != nil {
		return p.failed(doc, name, err)
	}

	rec, err := llm.DecodeSourceRecord(string(data))
	if err != nil {
		return p.failed(doc, name, fmt.Errorf("decode record: %w", err))
	}
	return *rec
}

func (p *Pipeline) failed(doc Document, name string, err error) model.SourceRecord {
	p.logger.Warn("pipeline: document extraction failed",
		zap.String("source", string(doc.Source)),
		zap.String("document", name),
		zap.Error(err),
	)
	return model.SourceRecord{Error: fmt.Sprintf("Failed to parse %s: %v", name, err)}
}

func isRecordFile(ref string) bool {
	return strings.EqualFold(filepath.Ext(ref), ".json")
}

func oracleDisabled(which string) error {
	return derrors.Wrap(
		fmt.Errorf("%s oracle is disabled", which),
		derrors.CategoryOracleFailure,
		derrors.CodeOracleDisabled,
		"set llm.provider (openai or ollama) in the config",
	)
}
