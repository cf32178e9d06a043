package community

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/agenthands/graphrag/internal/core/model"
)

// Louvain maximizes modularity with gonum's multi-level Louvain implementation.
type Louvain struct {
	Resolution float64
}

func (l *Louvain) Partition(g *model.Graph) (map[string]int, error) {
	if len(g.Nodes) == 0 {
		return map[string]int{}, nil
	}
	wg, names := toGonum(g)
	if wg.Edges().Len() == 0 {
		return singletons(g.Nodes), nil
	}

	reduced := community.Modularize(wg, resolution(l.Resolution), nil)
	groupOf := make(map[string]int, len(names))
	for i, members := range reduced.Communities() {
		for _, n := range members {
			groupOf[names[n.ID()]] = i
		}
	}
	return renumber(groupOf), nil
}

// Modularity scores a partition of g (Newman-Girvan Q with resolution).
// A graph without edges scores 0.
func Modularity(g *model.Graph, assignments map[string]int, res float64) float64 {
	wg, names := toGonum(g)
	if wg.Edges().Len() == 0 {
		return 0
	}
	ids := make(map[string]int64, len(names))
	for id, name := range names {
		ids[name] = id
	}

	byCommunity := make(map[int][]graph.Node)
	for name, c := range assignments {
		if id, ok := ids[name]; ok {
			byCommunity[c] = append(byCommunity[c], simple.Node(id))
		}
	}
	parts := make([][]graph.Node, 0, len(byCommunity))
	for _, nodes := range byCommunity {
		parts = append(parts, nodes)
	}
	return community.Q(wg, parts, resolution(res))
}

func toGonum(g *model.Graph) (*simple.WeightedUndirectedGraph, map[int64]string) {
	adj := adjacency(g)
	wg := simple.NewWeightedUndirectedGraph(0, 0)
	ids := make(map[string]int64, len(g.Nodes))
	names := make(map[int64]string, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, dup := ids[n]; dup {
			continue
		}
		id := int64(len(ids))
		ids[n] = id
		names[id] = n
		wg.AddNode(simple.Node(id))
	}
	for u, neighbors := range adj {
		for v, w := range neighbors {
			if ids[u] < ids[v] {
				wg.SetWeightedEdge(wg.NewWeightedEdge(simple.Node(ids[u]), simple.Node(ids[v]), w))
			}
		}
	}
	return wg, names
}

func singletons(nodes []string) map[string]int {
	groupOf := make(map[string]string, len(nodes))
	for _, n := range nodes {
		groupOf[n] = n
	}
	return renumber(groupOf)
}

func resolution(r float64) float64 {
	if r <= 0 {
		return 1
	}
	return r
}
