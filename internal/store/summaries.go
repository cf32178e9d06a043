package store

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/graphrag/internal/core/model"
	"github.com/agenthands/graphrag/internal/driver"
)

func (s *Store) SaveCommunitySummary(ctx context.Context, cs model.CommunitySummary) error {
	_, err := s.Driver.ExecuteQuery(ctx, driver.SaveCommunitySummaryQuery, map[string]any{
		"community_id":  int64(cs.CommunityID),
		"title":         cs.Title,
		"description":   cs.Description,
		"key_entities":  nonNil(cs.KeyEntities),
		"key_relations": nonNil(cs.KeyRelations),
		"topics":        nonNil(cs.Topics),
		"level":         cs.Level,
		"generated_by":  cs.GeneratedBy,
		"node_count":    int64(cs.NodeCount),
		"edge_count":    int64(cs.EdgeCount),
		"updated_at":    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("save summary of community %d: %w", cs.CommunityID, err)
	}
	return nil
}

// CommunitySummary returns model.ErrCommunityNotFound when no summary is stored.
func (s *Store) CommunitySummary(ctx context.Context, communityID int) (model.CommunitySummary, error) {
	res, err := s.Driver.ExecuteQuery(ctx, driver.GetCommunitySummaryQuery, map[string]any{
		"community_id": int64(communityID),
	})
	if err != nil {
		return model.CommunitySummary{}, fmt.Errorf("summary of community %d: %w", communityID, err)
	}
	if len(res.Records) == 0 {
		return model.CommunitySummary{}, fmt.Errorf("summary of community %d: %w", communityID, model.ErrCommunityNotFound)
	}
	return summaryFromRecord(res.Records[0]), nil
}

func (s *Store) ListCommunitySummaries(ctx context.Context) ([]model.CommunitySummary, error) {
	res, err := s.Driver.ExecuteQuery(ctx, driver.ListCommunitySummariesQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("list community summaries: %w", err)
	}
	out := make([]model.CommunitySummary, 0, len(res.Records))
	for _, rec := range res.Records {
		out = append(out, summaryFromRecord(rec))
	}
	return out, nil
}

// DeleteCommunitySummaries drops every stored summary, e.g. before re-detection.
func (s *Store) DeleteCommunitySummaries(ctx context.Context) error {
	if _, err := s.Driver.ExecuteQuery(ctx, driver.DeleteCommunitySummariesQuery, nil); err != nil {
		return fmt.Errorf("delete community summaries: %w", err)
	}
	return nil
}

func summaryFromRecord(rec *neo4j.Record) model.CommunitySummary {
	return model.CommunitySummary{
		CommunityID:  getInt(rec, "community_id"),
		Title:        getString(rec, "title"),
		Description:  getString(rec, "description"),
		KeyEntities:  getStrings(rec, "key_entities"),
		KeyRelations: getStrings(rec, "key_relations"),
		Topics:       getStrings(rec, "topics"),
		Level:        getString(rec, "level"),
		GeneratedBy:  getString(rec, "generated_by"),
		NodeCount:    getInt(rec, "node_count"),
		EdgeCount:    getInt(rec, "edge_count"),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
