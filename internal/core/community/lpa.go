package community

import (
	"sort"

	"github.com/agenthands/graphrag/internal/core/model"
)

// LabelPropagation spreads labels along weighted edges until no node changes.
// Nodes are visited in name order and ties go to the lexicographically
// largest label, so the result is deterministic.
type LabelPropagation struct {
	MaxIterations int
}

func (d *LabelPropagation) Partition(g *model.Graph) (map[string]int, error) {
	if len(g.Nodes) == 0 {
		return map[string]int{}, nil
	}
	maxIter := d.MaxIterations
	if maxIter <= 0 {
		maxIter = 20
	}

	adj := adjacency(g)
	order := make([]string, 0, len(adj))
	labels := make(map[string]string, len(adj))
	for n := range adj {
		order = append(order, n)
		labels[n] = n
	}
	sort.Strings(order)

	for iter := 0; iter < maxIter; iter++ {
		changed := 0
		for _, u := range order {
			neighbors := adj[u]
			if len(neighbors) == 0 {
				continue
			}

			weights := make(map[string]float64)
			best := 0.0
			for v, w := range neighbors {
				weights[labels[v]] += w
				if weights[labels[v]] > best {
					best = weights[labels[v]]
				}
			}

			var candidates []string
			for label, w := range weights {
				if w == best {
					candidates = append(candidates, label)
				}
			}
			sort.Strings(candidates)
			bestLabel := candidates[len(candidates)-1]

			if labels[u] != bestLabel {
				labels[u] = bestLabel
				changed++
			}
		}
		if changed == 0 {
			break
		}
	}

	return renumber(labels), nil
}
