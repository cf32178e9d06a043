// Package community partitions the knowledge graph into densely connected
// groups of entities and describes each group.
package community

import (
	"fmt"
	"sort"

	"github.com/agenthands/graphrag/internal/core/model"
)

const (
	AlgorithmLouvain          = "louvain"
	AlgorithmLabelPropagation = "label_propagation"
	AlgorithmComponents       = "components"
)

// Partitioner assigns every node of g to a community id. Ids are dense,
// starting at 0, with larger communities first.
type Partitioner interface {
	Partition(g *model.Graph) (map[string]int, error)
}

// NewPartitioner returns the partitioner registered under algorithm. An empty
// name selects label propagation.
func NewPartitioner(algorithm string, maxIterations int, resolution float64) (Partitioner, error) {
	switch algorithm {
	case AlgorithmLouvain:
		return &Louvain{Resolution: resolution}, nil
	case AlgorithmLabelPropagation, "":
		return &LabelPropagation{MaxIterations: maxIterations}, nil
	case AlgorithmComponents:
		return &Components{}, nil
	}
	return nil, fmt.Errorf("unknown community algorithm %q", algorithm)
}

// adjacency builds the undirected weighted neighbor map of g. Self loops and
// edges to unknown nodes are dropped; parallel edges add up.
func adjacency(g *model.Graph) map[string]map[string]float64 {
	adj := make(map[string]map[string]float64, len(g.Nodes))
	for _, n := range g.Nodes {
		adj[n] = make(map[string]float64)
	}
	for _, e := range g.Edges {
		if e.Source == e.Target {
			continue
		}
		if _, ok := adj[e.Source]; !ok {
			continue
		}
		if _, ok := adj[e.Target]; !ok {
			continue
		}
		w := e.Weight
		if w <= 0 {
			w = 1
		}
		adj[e.Source][e.Target] += w
		adj[e.Target][e.Source] += w
	}
	return adj
}

// renumber maps arbitrary group keys to dense ids: larger groups first,
// ties broken by the smallest member name.
func renumber[K comparable](groupOf map[string]K) map[string]int {
	members := make(map[K][]string)
	for node, key := range groupOf {
		members[key] = append(members[key], node)
	}
	groups := make([][]string, 0, len(members))
	for _, m := range members {
		sort.Strings(m)
		groups = append(groups, m)
	}
	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i]) != len(groups[j]) {
			return len(groups[i]) > len(groups[j])
		}
		return groups[i][0] < groups[j][0]
	})

	out := make(map[string]int, len(groupOf))
	for id, m := range groups {
		for _, node := range m {
			out[node] = id
		}
	}
	return out
}
