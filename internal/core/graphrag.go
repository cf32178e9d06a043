// Package core wires extraction, community detection and question answering
// over a single knowledge graph.
package core

import (
	"context"
	"fmt"

	"github.com/agenthands/graphrag/internal/config"
	"github.com/agenthands/graphrag/internal/core/community"
	"github.com/agenthands/graphrag/internal/core/extraction"
	"github.com/agenthands/graphrag/internal/core/model"
	"github.com/agenthands/graphrag/internal/core/relevance"
	"github.com/agenthands/graphrag/internal/core/retrieval"
	"github.com/agenthands/graphrag/internal/core/schema"
	"github.com/agenthands/graphrag/internal/core/summary"
	"github.com/agenthands/graphrag/internal/driver"
	"github.com/agenthands/graphrag/internal/llm"
	"github.com/agenthands/graphrag/internal/logger"
	"github.com/agenthands/graphrag/internal/metrics"
	"github.com/agenthands/graphrag/internal/store"
)

type GraphRAG struct {
	Driver     driver.GraphDriver
	Store      *store.Store
	Schemas    schema.Source
	Extractor  *extraction.Extractor
	Detector   *community.Detector
	Summarizer *summary.Summarizer
	Resolver   *relevance.Resolver
	Retrieval  *retrieval.Orchestrator

	DefaultStrategy model.Strategy
}

// New builds every service from cfg. m may be nil.
func New(cfg *config.Config, d driver.GraphDriver, client llm.Client, schemas schema.Source, m *metrics.Metrics) *GraphRAG {
	st := store.New(d, cfg.Retrieval.SearchLimit)

	ex := extraction.NewExtractor(client, schemas, cfg.Prompts.Extraction)
	ex.ChunkSize = cfg.Extraction.ChunkSize
	ex.Overlap = cfg.Extraction.ChunkOverlap
	ex.Concurrency = cfg.Extraction.Concurrency
	ex.Temperature = cfg.Extraction.Temperature
	ex.MaxTokens = cfg.Extraction.MaxTokens
	ex.Metrics = m

	defaultStrategy, err := model.ParseStrategy(cfg.Retrieval.DefaultStrategy)
	if err != nil {
		logger.Warn("invalid default strategy, using community_first", "strategy", cfg.Retrieval.DefaultStrategy)
		defaultStrategy = model.StrategyCommunityFirst
	}

	return &GraphRAG{
		Driver:    d,
		Store:     st,
		Schemas:   schemas,
		Extractor: ex,
		Detector: &community.Detector{
			Store:         st,
			Algorithm:     cfg.Community.Algorithm,
			MaxIterations: cfg.Community.MaxIterations,
			Resolution:    cfg.Community.Resolution,
			MinSize:       cfg.Community.MinSize,
			Metrics:       m,
		},
		Summarizer: summary.NewSummarizer(client, st, cfg.Prompts.CommunitySummary, cfg.Community.SummaryLevel),
		Resolver: &relevance.Resolver{
			LLM:          client,
			Prompt:       cfg.Prompts.Relevance,
			Threshold:    cfg.Retrieval.RelevanceThreshold,
			KeywordLimit: cfg.Retrieval.KeywordLimit,
			Metrics:      m,
		},
		Retrieval: &retrieval.Orchestrator{
			LLM:         client,
			Communities: st,
			Search:      st,
			Prompts: retrieval.Prompts{
				Community: cfg.Prompts.CommunityAnswer,
				Global:    cfg.Prompts.GlobalAnswer,
				Synthesis: cfg.Prompts.Synthesis,
			},
			TopCommunities: cfg.Retrieval.TopCommunities,
			KeywordLimit:   cfg.Retrieval.KeywordLimit,
			Metrics:        m,
		},
		DefaultStrategy: defaultStrategy,
	}
}

func (g *GraphRAG) BuildIndices(ctx context.Context) error {
	return g.Driver.BuildIndices(ctx)
}

// Schema returns the active schema, picking up changes to its file first.
func (g *GraphRAG) Schema() (*schema.Schema, error) {
	g.reloadSchema()
	if g.Schemas == nil {
		return nil, model.ErrSchemaUnavailable
	}
	s := g.Schemas.Current()
	if s == nil {
		return nil, model.ErrSchemaUnavailable
	}
	return s, nil
}

func (g *GraphRAG) Extract(ctx context.Context, text string) (*model.ExtractionResult, error) {
	g.reloadSchema()
	return g.Extractor.Extract(ctx, text)
}

func (g *GraphRAG) ValidateExtraction(result *model.ExtractionResult) []string {
	return g.Extractor.Validate(result)
}

type IngestResult struct {
	Extraction *model.ExtractionResult `json:"extraction"`
	Import     store.ImportStats       `json:"import"`
	Imported   bool                    `json:"imported"`
}

// Ingest extracts text and imports the result. A failed extraction is
// returned without touching the graph.
func (g *GraphRAG) Ingest(ctx context.Context, text string) (*IngestResult, error) {
	result, err := g.Extract(ctx, text)
	if err != nil {
		return &IngestResult{Extraction: result}, err
	}
	out := &IngestResult{Extraction: result}
	if !result.Success {
		return out, nil
	}

	stats, err := g.Store.ImportExtraction(ctx, result)
	if err != nil {
		return out, fmt.Errorf("import extraction %s: %w", result.ID, err)
	}
	out.Import = stats
	out.Imported = true
	return out, nil
}

func (g *GraphRAG) DetectCommunities(ctx context.Context, algorithm string) (*model.DetectionResult, error) {
	return g.Detector.Detect(ctx, algorithm)
}

func (g *GraphRAG) SummarizeCommunities(ctx context.Context, level string) (model.SummaryReport, error) {
	return g.Summarizer.SummarizeAll(ctx, level)
}

func (g *GraphRAG) SummarizeCommunity(ctx context.Context, communityID int, level string) (model.CommunitySummary, error) {
	return g.Summarizer.Summarize(ctx, communityID, level)
}

func (g *GraphRAG) ListCommunities(ctx context.Context) ([]model.CommunitySummary, error) {
	return g.Store.ListCommunitySummaries(ctx)
}

func (g *GraphRAG) Stats(ctx context.Context) (model.GraphStats, error) {
	return g.Store.Stats(ctx)
}

func (g *GraphRAG) SearchEntities(ctx context.Context, entityType, namePattern string, limit int) ([]model.Entity, error) {
	return g.Store.SearchEntities(ctx, entityType, namePattern, limit)
}

func (g *GraphRAG) EntityRelationships(ctx context.Context, name string) ([]model.EntityRelationship, error) {
	return g.Store.EntityRelationships(ctx, name)
}

// Ask ranks the stored communities against question and answers it starting
// from strategy. Only an unknown strategy is an error.
func (g *GraphRAG) Ask(ctx context.Context, question, strategy string) (*model.QAResult, error) {
	requested := g.DefaultStrategy
	if strategy != "" {
		s, err := model.ParseStrategy(strategy)
		if err != nil {
			return nil, err
		}
		requested = s
	}

	catalog, err := g.Store.ListCommunitySummaries(ctx)
	if err != nil {
		logger.Warn("community catalog unavailable", "err", err)
		catalog = nil
	}
	ranked := g.Resolver.Rank(ctx, question, catalog)
	answer := g.Retrieval.Answer(ctx, question, requested, ranked)

	return &model.QAResult{
		Question:            question,
		Answer:              answer.Response,
		StrategyRequested:   requested,
		StrategyUsed:        answer.Strategy,
		RelevantCommunities: ranked,
		Sources:             answer.Sources,
		Confidence:          answer.Confidence,
	}, nil
}

type reloader interface {
	ReloadIfChanged() (bool, error)
}

func (g *GraphRAG) reloadSchema() {
	r, ok := g.Schemas.(reloader)
	if !ok {
		return
	}
	if _, err := r.ReloadIfChanged(); err != nil {
		logger.Warn("schema reload failed, keeping the loaded schema", "err", err)
	}
}
