package model

// Graph is the undirected, weighted view of the stored knowledge graph that
// community detection runs on. Nodes are keyed by entity name.
type Graph struct {
	Nodes []string
	Edges []GraphEdge
}

// GraphStats counts stored nodes and relationships by label and type.
type GraphStats struct {
	TotalNodes         int            `json:"total_nodes"`
	TotalRelationships int            `json:"total_relationships"`
	NodeTypes          map[string]int `json:"node_types"`
	RelationshipTypes  map[string]int `json:"relationship_types"`
}

// SubgraphNode is a member of a community subgraph.
type SubgraphNode struct {
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Subgraph holds the nodes of one community and the edges between them.
type Subgraph struct {
	CommunityID int            `json:"community_id"`
	Nodes       []SubgraphNode `json:"nodes"`
	Edges       []SubgraphEdge `json:"edges"`
}
