package community

import (
	"sort"

	"github.com/agenthands/graphrag/internal/core/model"
)

// ComputeStats describes every community in assignments, ordered by id.
// Each edge is counted once per community it touches.
func ComputeStats(g *model.Graph, assignments map[string]int) []model.CommunityStats {
	byID := make(map[int]*model.CommunityStats)
	for node, id := range assignments {
		cs, ok := byID[id]
		if !ok {
			cs = &model.CommunityStats{CommunityID: id}
			byID[id] = cs
		}
		cs.Nodes = append(cs.Nodes, node)
	}

	for _, e := range g.Edges {
		if e.Source == e.Target {
			continue
		}
		a, okA := assignments[e.Source]
		b, okB := assignments[e.Target]
		if !okA || !okB {
			continue
		}
		if a == b {
			byID[a].InternalEdges++
			continue
		}
		byID[a].ExternalEdges++
		byID[b].ExternalEdges++
	}

	out := make([]model.CommunityStats, 0, len(byID))
	for _, cs := range byID {
		sort.Strings(cs.Nodes)
		cs.Size = len(cs.Nodes)
		cs.Density = density(cs.Size, cs.InternalEdges)
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CommunityID < out[j].CommunityID })
	return out
}

func density(size, internal int) float64 {
	if size <= 1 {
		return 0
	}
	possible := float64(size*(size-1)) / 2
	return float64(internal) / possible
}
