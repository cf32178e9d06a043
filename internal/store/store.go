// Package store maps the knowledge graph model onto the graph database.
package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/agenthands/graphrag/internal/core/model"
	"github.com/agenthands/graphrag/internal/driver"
	"github.com/agenthands/graphrag/internal/logger"
)

const (
	defaultSearchLimit = 5
	// DefaultEntityLimit applies when an entity search passes no limit.
	DefaultEntityLimit = 100
)

type Store struct {
	Driver driver.GraphDriver
	// SearchLimit caps matches per keyword.
	SearchLimit int
}

func New(d driver.GraphDriver, searchLimit int) *Store {
	if searchLimit <= 0 {
		searchLimit = defaultSearchLimit
	}
	return &Store{Driver: d, SearchLimit: searchLimit}
}

type ImportStats struct {
	Entities  int `json:"entities"`
	Relations int `json:"relations"`
	Failed    int `json:"failed"`
}

// ImportExtraction merges the entities, then the relations, of a successful
// result into the graph. Single item failures are counted, not returned.
func (s *Store) ImportExtraction(ctx context.Context, result *model.ExtractionResult) (ImportStats, error) {
	var stats ImportStats
	if result == nil || !result.Success {
		return stats, fmt.Errorf("refusing to import a failed extraction")
	}
	now := time.Now().UTC()

	for _, e := range result.Entities {
		params := map[string]any{
			"name":          e.Name,
			"type":          e.Type,
			"confidence":    e.Confidence,
			"properties":    flatten(e.Properties),
			"extraction_id": result.ID,
			"created_at":    now,
		}
		if _, err := s.Driver.ExecuteQuery(ctx, driver.MergeEntityQuery(e.Type), params); err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			logger.Warn("entity import failed", "name", e.Name, "type", e.Type, "err", err)
			stats.Failed++
			continue
		}
		stats.Entities++
	}

	for _, r := range result.Relations {
		params := map[string]any{
			"source":        r.SourceName,
			"target":        r.TargetName,
			"confidence":    r.Confidence,
			"properties":    flatten(r.Properties),
			"extraction_id": result.ID,
			"created_at":    now,
		}
		res, err := s.Driver.ExecuteQuery(ctx, driver.MergeRelationQuery(r.Type), params)
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			logger.Warn("relation import failed", "type", r.Type, "source", r.SourceName, "target", r.TargetName, "err", err)
			stats.Failed++
			continue
		}
		if len(res.Records) > 0 && getInt(res.Records[0], "merged") == 0 {
			logger.Debug("relation endpoints not found", "type", r.Type, "source", r.SourceName, "target", r.TargetName)
			stats.Failed++
			continue
		}
		stats.Relations++
	}

	logger.Info("extraction imported", "id", result.ID, "entities", stats.Entities,
		"relations", stats.Relations, "failed", stats.Failed)
	return stats, nil
}

// SearchByKeyword finds entities whose name contains keyword, case-insensitively.
func (s *Store) SearchByKeyword(ctx context.Context, keyword string) ([]model.KeywordMatch, error) {
	res, err := s.Driver.ExecuteQuery(ctx, driver.KeywordSearchQuery, map[string]any{
		"keyword": keyword,
		"limit":   int64(s.SearchLimit),
	})
	if err != nil {
		return nil, fmt.Errorf("keyword search %q: %w", keyword, err)
	}

	matches := make([]model.KeywordMatch, 0, len(res.Records))
	for _, rec := range res.Records {
		m := model.KeywordMatch{
			EntityName:   getString(rec, "entity"),
			EntityLabels: getStrings(rec, "labels"),
		}
		raw, _ := rec.Get("neighbors")
		list, _ := raw.([]any)
		for _, item := range list {
			nb, ok := item.(map[string]any)
			if !ok {
				continue
			}
			name, _ := nb["name"].(string)
			rel, _ := nb["relation"].(string)
			if name == "" {
				continue
			}
			m.Neighbors = append(m.Neighbors, model.Neighbor{Name: name, Relation: rel})
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// SearchEntities lists entities of entityType whose name contains
// namePattern. Empty filters match everything. limit <= 0 means DefaultEntityLimit.
func (s *Store) SearchEntities(ctx context.Context, entityType, namePattern string, limit int) ([]model.Entity, error) {
	if limit <= 0 {
		limit = DefaultEntityLimit
	}
	params := map[string]any{"limit": int64(limit)}
	if namePattern != "" {
		params["name_pattern"] = namePattern
	}
	res, err := s.Driver.ExecuteQuery(ctx, driver.EntitySearchQuery(entityType, namePattern != ""), params)
	if err != nil {
		return nil, fmt.Errorf("entity search: %w", err)
	}

	entities := make([]model.Entity, 0, len(res.Records))
	for _, rec := range res.Records {
		entities = append(entities, model.Entity{
			Name:       getString(rec, "name"),
			Labels:     getStrings(rec, "labels"),
			Properties: getMap(rec, "properties"),
		})
	}
	return entities, nil
}

// EntityRelationships returns every relationship between the named entity
// and another entity, in either direction.
func (s *Store) EntityRelationships(ctx context.Context, name string) ([]model.EntityRelationship, error) {
	res, err := s.Driver.ExecuteQuery(ctx, driver.EntityRelationshipsQuery, map[string]any{"name": name})
	if err != nil {
		return nil, fmt.Errorf("relationships of %q: %w", name, err)
	}

	rels := make([]model.EntityRelationship, 0, len(res.Records))
	for _, rec := range res.Records {
		rels = append(rels, model.EntityRelationship{
			Source:     getString(rec, "source"),
			Target:     getString(rec, "target"),
			Type:       getString(rec, "type"),
			Properties: getMap(rec, "properties"),
		})
	}
	return rels, nil
}

// Stats counts entities by label and relationships by type.
func (s *Store) Stats(ctx context.Context) (model.GraphStats, error) {
	stats := model.GraphStats{
		NodeTypes:         map[string]int{},
		RelationshipTypes: map[string]int{},
	}

	res, err := s.Driver.ExecuteQuery(ctx, driver.NodeLabelStatsQuery, nil)
	if err != nil {
		return stats, fmt.Errorf("node stats: %w", err)
	}
	for _, rec := range res.Records {
		n := getInt(rec, "count")
		stats.NodeTypes[getString(rec, "label")] = n
		stats.TotalNodes += n
	}

	res, err = s.Driver.ExecuteQuery(ctx, driver.RelationshipStatsQuery, nil)
	if err != nil {
		return stats, fmt.Errorf("relationship stats: %w", err)
	}
	for _, rec := range res.Records {
		n := getInt(rec, "count")
		stats.RelationshipTypes[getString(rec, "type")] = n
		stats.TotalRelationships += n
	}
	return stats, nil
}

// LoadGraph reads every entity and directed relationship for partitioning.
func (s *Store) LoadGraph(ctx context.Context) (*model.Graph, error) {
	res, err := s.Driver.ExecuteQuery(ctx, driver.AllEntityNamesQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("load nodes: %w", err)
	}
	g := &model.Graph{Nodes: make([]string, 0, len(res.Records))}
	seen := make(map[string]struct{}, len(res.Records))
	for _, rec := range res.Records {
		name := getString(rec, "name")
		if _, dup := seen[name]; dup || name == "" {
			continue
		}
		seen[name] = struct{}{}
		g.Nodes = append(g.Nodes, name)
	}
	sort.Strings(g.Nodes)

	res, err = s.Driver.ExecuteQuery(ctx, driver.AllEdgesQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("load edges: %w", err)
	}
	for _, rec := range res.Records {
		g.Edges = append(g.Edges, model.GraphEdge{
			Source:       getString(rec, "source"),
			Target:       getString(rec, "target"),
			RelationType: getString(rec, "type"),
			Weight:       getFloat(rec, "weight", 1.0),
		})
	}
	return g, nil
}

// SaveAssignments replaces every entity's community_id.
func (s *Store) SaveAssignments(ctx context.Context, assignments map[string]int) error {
	if _, err := s.Driver.ExecuteQuery(ctx, driver.ClearCommunitiesQuery, nil); err != nil {
		return fmt.Errorf("clear communities: %w", err)
	}

	names := make([]string, 0, len(assignments))
	for name := range assignments {
		names = append(names, name)
	}
	sort.Strings(names)

	batch := make([]any, 0, len(names))
	for _, name := range names {
		batch = append(batch, map[string]any{"name": name, "community_id": int64(assignments[name])})
	}
	if _, err := s.Driver.ExecuteQuery(ctx, driver.SetCommunitiesQuery, map[string]any{"assignments": batch}); err != nil {
		return fmt.Errorf("write communities: %w", err)
	}
	return nil
}

func (s *Store) CommunityIDs(ctx context.Context) ([]int, error) {
	res, err := s.Driver.ExecuteQuery(ctx, driver.CommunityIDsQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("community ids: %w", err)
	}
	ids := make([]int, 0, len(res.Records))
	for _, rec := range res.Records {
		ids = append(ids, getInt(rec, "community_id"))
	}
	return ids, nil
}

// CommunitySubgraph returns the members of a community and the edges among them.
func (s *Store) CommunitySubgraph(ctx context.Context, communityID int) (*model.Subgraph, error) {
	params := map[string]any{"community_id": int64(communityID)}

	res, err := s.Driver.ExecuteQuery(ctx, driver.CommunityNodesQuery, params)
	if err != nil {
		return nil, fmt.Errorf("community %d nodes: %w", communityID, err)
	}
	if len(res.Records) == 0 {
		return nil, fmt.Errorf("community %d: %w", communityID, model.ErrCommunityNotFound)
	}
	sg := &model.Subgraph{CommunityID: communityID}
	for _, rec := range res.Records {
		sg.Nodes = append(sg.Nodes, model.SubgraphNode{
			Name: getString(rec, "name"),
			Type: getString(rec, "type"),
		})
	}

	res, err = s.Driver.ExecuteQuery(ctx, driver.CommunityEdgesQuery, params)
	if err != nil {
		return nil, fmt.Errorf("community %d edges: %w", communityID, err)
	}
	for _, rec := range res.Records {
		sg.Edges = append(sg.Edges, model.SubgraphEdge{
			Source:       getString(rec, "source"),
			Target:       getString(rec, "target"),
			RelationType: getString(rec, "type"),
		})
	}
	return sg, nil
}
