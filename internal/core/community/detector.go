package community

import (
	"context"
	"fmt"
	"time"

	"github.com/agenthands/graphrag/internal/core/model"
	"github.com/agenthands/graphrag/internal/logger"
)

// GraphStore is the part of the graph store community detection needs.
type GraphStore interface {
	LoadGraph(ctx context.Context) (*model.Graph, error)
	SaveAssignments(ctx context.Context, assignments map[string]int) error
	DeleteCommunitySummaries(ctx context.Context) error
}

// Recorder receives detection results.
type Recorder interface {
	ObserveCommunities(count int, modularity float64)
}

// Detector partitions the stored graph and writes community ids back to it.
type Detector struct {
	Store         GraphStore
	Algorithm     string
	MaxIterations int
	Resolution    float64
	// MinSize is the smallest community written back to the store.
	MinSize int
	Metrics Recorder
}

// Detect runs algorithm (or the detector default when empty) over the whole
// graph. Previous summaries are dropped since their ids no longer apply.
func (d *Detector) Detect(ctx context.Context, algorithm string) (*model.DetectionResult, error) {
	if algorithm == "" {
		algorithm = d.Algorithm
	}
	if algorithm == "" {
		algorithm = AlgorithmLabelPropagation
	}
	p, err := NewPartitioner(algorithm, d.MaxIterations, d.Resolution)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	g, err := d.Store.LoadGraph(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}
	if len(g.Nodes) == 0 {
		return nil, model.ErrEmptyGraph
	}

	assignments, err := p.Partition(g)
	if err != nil {
		return nil, fmt.Errorf("%s partition failed: %w", algorithm, err)
	}

	stats := ComputeStats(g, assignments)
	result := &model.DetectionResult{
		Algorithm:      algorithm,
		NodeCount:      len(g.Nodes),
		EdgeCount:      len(g.Edges),
		CommunityCount: len(stats),
		Modularity:     Modularity(g, assignments, d.Resolution),
		Communities:    stats,
		Assignments:    assignments,
	}

	if err := d.Store.DeleteCommunitySummaries(ctx); err != nil {
		return nil, fmt.Errorf("failed to clear summaries: %w", err)
	}
	if err := d.Store.SaveAssignments(ctx, d.kept(stats)); err != nil {
		return nil, fmt.Errorf("failed to save assignments: %w", err)
	}

	if d.Metrics != nil {
		d.Metrics.ObserveCommunities(result.CommunityCount, result.Modularity)
	}
	logger.Info("community detection finished",
		"algorithm", algorithm,
		"nodes", result.NodeCount,
		"communities", result.CommunityCount,
		"modularity", result.Modularity,
		"elapsed", time.Since(start))
	return result, nil
}

func (d *Detector) kept(stats []model.CommunityStats) map[string]int {
	out := make(map[string]int)
	for _, cs := range stats {
		if cs.Size < d.MinSize {
			continue
		}
		for _, n := range cs.Nodes {
			out[n] = cs.CommunityID
		}
	}
	return out
}
