package community

import (
	"sort"

	"github.com/agenthands/graphrag/internal/core/model"
)

// Components puts each connected component in its own community.
type Components struct{}

func (c *Components) Partition(g *model.Graph) (map[string]int, error) {
	adj := adjacency(g)
	order := make([]string, 0, len(adj))
	for n := range adj {
		order = append(order, n)
	}
	sort.Strings(order)

	root := make(map[string]string, len(adj))
	for _, n := range order {
		if _, seen := root[n]; seen {
			continue
		}
		c.dfs(n, n, adj, root)
	}
	return renumber(root), nil
}

func (c *Components) dfs(u, r string, adj map[string]map[string]float64, root map[string]string) {
	root[u] = r
	for v := range adj[u] {
		if _, seen := root[v]; !seen {
			c.dfs(v, r, adj, root)
		}
	}
}
