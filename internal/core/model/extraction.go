package model

import "time"

// Chunk is a slice of the source text. Start and End are rune offsets.
type Chunk struct {
	Index int    `json:"index"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Provenance records which chunk an extracted item came from.
type Provenance struct {
	ChunkIndex int    `json:"chunk_index"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	SourceText string `json:"-"`
}

type ExtractedEntity struct {
	Type       string         `json:"type"`
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties"`
	Confidence float64        `json:"confidence"`
	Provenance Provenance     `json:"provenance"`
}

type ExtractedRelation struct {
	Type       string         `json:"type"`
	SourceName string         `json:"source"`
	TargetName string         `json:"target"`
	Properties map[string]any `json:"properties"`
	Confidence float64        `json:"confidence"`
	Provenance Provenance     `json:"provenance"`
}

// ExtractionMetadata aggregates per-run counters.
type ExtractionMetadata struct {
	ChunksCount          int           `json:"chunks_count"`
	SuccessChunks        int           `json:"success_chunks"`
	ProcessingTime       time.Duration `json:"processing_time"`
	EntitiesBeforeMerge  int           `json:"entities_before_merge"`
	RelationsBeforeMerge int           `json:"relations_before_merge"`
}

// ExtractionResult is produced once per Extract call and not modified afterwards.
type ExtractionResult struct {
	ID          string               `json:"id"`
	Entities    []*ExtractedEntity   `json:"entities"`
	Relations   []*ExtractedRelation `json:"relations"`
	SourceText  string               `json:"-"`
	ExtractedAt time.Time            `json:"extracted_at"`
	Success     bool                 `json:"success"`
	Err         error                `json:"-"`
	Metadata    ExtractionMetadata   `json:"metadata"`
}

// ErrorMessage returns the aggregate error text, or "" on success.
func (r *ExtractionResult) ErrorMessage() string {
	if r == nil || r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// ExtractionStats summarizes a result by type.
type ExtractionStats struct {
	TotalEntities  int            `json:"total_entities"`
	TotalRelations int            `json:"total_relations"`
	EntityTypes    map[string]int `json:"entity_types"`
	RelationTypes  map[string]int `json:"relation_types"`
	Success        bool           `json:"success"`
}
