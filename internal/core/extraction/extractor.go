// Package extraction turns raw text into deduplicated entities and relations
// conforming to the active schema.
package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/graphrag/internal/core/common"
	"github.com/agenthands/graphrag/internal/core/dedupe"
	"github.com/agenthands/graphrag/internal/core/model"
	"github.com/agenthands/graphrag/internal/core/schema"
	"github.com/agenthands/graphrag/internal/core/segment"
	"github.com/agenthands/graphrag/internal/llm"
	"github.com/agenthands/graphrag/internal/logger"
)

const (
	DefaultChunkSize   = 2000
	DefaultOverlap     = 200
	DefaultConcurrency = 4
)

type Recorder interface {
	ObserveChunk(ok bool)
	ObserveExtraction(elapsed time.Duration, entities, relations int)
}

type Extractor struct {
	LLM         llm.Client
	Schema      schema.Source
	Prompt      string
	ChunkSize   int
	Overlap     int
	Concurrency int
	Temperature float64
	MaxTokens   int
	Metrics     Recorder
}

func NewExtractor(client llm.Client, source schema.Source, prompt string) *Extractor {
	return &Extractor{
		LLM:         client,
		Schema:      source,
		Prompt:      prompt,
		ChunkSize:   DefaultChunkSize,
		Overlap:     DefaultOverlap,
		Concurrency: DefaultConcurrency,
	}
}

// reply is the structure the model is asked to return for each chunk.
type reply struct {
	Entities  []replyEntity   `json:"entities" jsonschema:"description=Entities found in the text"`
	Relations []replyRelation `json:"relations" jsonschema:"description=Relations between the entities"`
}

type replyEntity struct {
	Type       string         `json:"type" jsonschema:"description=One of the schema entity types"`
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties,omitempty"`
	Confidence *float64       `json:"confidence,omitempty" jsonschema:"minimum=0,maximum=1"`
}

type replyRelation struct {
	Type       string         `json:"type" jsonschema:"description=One of the schema relation types"`
	Source     string         `json:"source" jsonschema:"description=Name of the source entity"`
	Target     string         `json:"target" jsonschema:"description=Name of the target entity"`
	Properties map[string]any `json:"properties,omitempty"`
	Confidence *float64       `json:"confidence,omitempty" jsonschema:"minimum=0,maximum=1"`
}

var replySchema = func() string {
	r := &jsonschema.Reflector{DoNotReference: true, ExpandedStruct: true}
	data, err := json.MarshalIndent(r.Reflect(&reply{}), "", "  ")
	if err != nil {
		panic(err)
	}
	return string(data)
}()

// ReplySchema returns the JSON schema embedded in extraction prompts.
func ReplySchema() string {
	return replySchema
}

type chunkResult struct {
	entities  []*model.ExtractedEntity
	relations []*model.ExtractedRelation
	err       error
}

// Extract segments text, extracts every chunk and merges the results. The
// returned error is non-nil only when no schema is loaded; chunk failures are
// reported through the result.
func (e *Extractor) Extract(ctx context.Context, text string) (*model.ExtractionResult, error) {
	start := time.Now()
	result := &model.ExtractionResult{
		ID:          uuid.NewString(),
		Entities:    []*model.ExtractedEntity{},
		Relations:   []*model.ExtractedRelation{},
		SourceText:  text,
		ExtractedAt: start,
	}

	var active *schema.Schema
	if e.Schema != nil {
		active = e.Schema.Current()
	}
	if active == nil {
		result.Err = model.ErrSchemaUnavailable
		return result, model.ErrSchemaUnavailable
	}

	chunks, err := segment.Split(text, e.chunkSize(), e.Overlap)
	if err != nil {
		result.Err = err
		return result, nil
	}
	catalog := active.PromptText()

	results := make([]chunkResult, len(chunks))
	g := new(errgroup.Group)
	g.SetLimit(e.concurrency())
	for i, chunk := range chunks {
		g.Go(func() error {
			results[i] = e.extractChunk(ctx, chunk, catalog)
			return nil
		})
	}
	_ = g.Wait()

	var raw chunkResult
	var lastErr error
	for i, r := range results {
		if r.err != nil {
			logger.Warn("chunk extraction failed", "chunk", i, "err", r.err)
			lastErr = r.err
			e.observeChunk(false)
			continue
		}
		result.Metadata.SuccessChunks++
		e.observeChunk(true)
		raw.entities = append(raw.entities, r.entities...)
		raw.relations = append(raw.relations, r.relations...)
	}

	result.Metadata.ChunksCount = len(chunks)
	result.Metadata.EntitiesBeforeMerge = len(raw.entities)
	result.Metadata.RelationsBeforeMerge = len(raw.relations)
	result.Entities = dedupe.MergeEntities(raw.entities)
	result.Relations = dedupe.MergeRelations(raw.relations)
	result.Metadata.ProcessingTime = time.Since(start)

	if result.Metadata.SuccessChunks == 0 {
		result.Err = model.NewError(model.CodeAllChunksFailed,
			fmt.Sprintf("all %d chunks failed extraction", len(chunks)), lastErr)
		logger.Error("extraction failed", "id", result.ID, "chunks", len(chunks), "err", lastErr)
		return result, nil
	}

	result.Success = true
	if e.Metrics != nil {
		e.Metrics.ObserveExtraction(result.Metadata.ProcessingTime, len(result.Entities), len(result.Relations))
	}
	logger.Info("extraction finished",
		"id", result.ID,
		"chunks", len(chunks),
		"failed_chunks", len(chunks)-result.Metadata.SuccessChunks,
		"entities", len(result.Entities),
		"relations", len(result.Relations),
		"elapsed", result.Metadata.ProcessingTime)
	return result, nil
}

func (e *Extractor) extractChunk(ctx context.Context, chunk model.Chunk, catalog string) chunkResult {
	prompt := fmt.Sprintf(e.Prompt, catalog, replySchema, chunk.Text)

	var opts []llm.GenerateOption
	if e.Temperature > 0 {
		opts = append(opts, llm.WithTemperature(e.Temperature))
	}
	if e.MaxTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(e.MaxTokens))
	}

	response, err := e.LLM.Generate(ctx, prompt, opts...)
	if err != nil {
		return chunkResult{err: model.NewError(model.CodeChunkExtractionFailure,
			fmt.Sprintf("chunk %d", chunk.Index), model.NewError(model.CodeExternalServiceFailure, "generation failed", err))}
	}

	parsed, err := common.ParseJSONWith[reply](response, common.StrictLadder)
	if err != nil {
		logger.Debug("unparseable chunk response", "chunk", chunk.Index, "response", response)
		return chunkResult{err: model.NewError(model.CodeChunkExtractionFailure, fmt.Sprintf("chunk %d", chunk.Index), err)}
	}

	prov := model.Provenance{ChunkIndex: chunk.Index, Start: chunk.Start, End: chunk.End, SourceText: chunk.Text}
	out := chunkResult{}
	for _, re := range parsed.Entities {
		if re.Name == "" || re.Type == "" {
			continue
		}
		out.entities = append(out.entities, &model.ExtractedEntity{
			Type:       re.Type,
			Name:       re.Name,
			Properties: re.Properties,
			Confidence: confidence(re.Confidence),
			Provenance: prov,
		})
	}
	for _, rr := range parsed.Relations {
		if rr.Type == "" || rr.Source == "" || rr.Target == "" {
			continue
		}
		out.relations = append(out.relations, &model.ExtractedRelation{
			Type:       rr.Type,
			SourceName: rr.Source,
			TargetName: rr.Target,
			Properties: rr.Properties,
			Confidence: confidence(rr.Confidence),
			Provenance: prov,
		})
	}
	return out
}

// Validate checks every entity and relation of result against the active
// schema and returns one message per problem.
func (e *Extractor) Validate(result *model.ExtractionResult) []string {
	var active *schema.Schema
	if e.Schema != nil {
		active = e.Schema.Current()
	}
	if active == nil {
		return []string{"schema not loaded, cannot validate"}
	}

	var problems []string
	for _, ent := range result.Entities {
		data := map[string]any{"name": ent.Name}
		for k, v := range ent.Properties {
			data[k] = v
		}
		for _, p := range active.ValidateEntity(ent.Type, data) {
			problems = append(problems, fmt.Sprintf("entity %s: %s", ent.Name, p))
		}
	}
	for _, rel := range result.Relations {
		for _, p := range active.ValidateRelation(rel.Type, rel.Properties) {
			problems = append(problems, fmt.Sprintf("relation %s: %s", rel.Type, p))
		}
	}
	return problems
}

// Stats counts the entities and relations of result by type.
func Stats(result *model.ExtractionResult) model.ExtractionStats {
	stats := model.ExtractionStats{
		TotalEntities:  len(result.Entities),
		TotalRelations: len(result.Relations),
		EntityTypes:    make(map[string]int),
		RelationTypes:  make(map[string]int),
		Success:        result.Success,
	}
	for _, ent := range result.Entities {
		stats.EntityTypes[ent.Type]++
	}
	for _, rel := range result.Relations {
		stats.RelationTypes[rel.Type]++
	}
	return stats
}

func confidence(c *float64) float64 {
	if c == nil {
		return 1
	}
	return max(0, min(*c, 1))
}

func (e *Extractor) chunkSize() int {
	if e.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return e.ChunkSize
}

func (e *Extractor) concurrency() int {
	if e.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return e.Concurrency
}

func (e *Extractor) observeChunk(ok bool) {
	if e.Metrics != nil {
		e.Metrics.ObserveChunk(ok)
	}
}
