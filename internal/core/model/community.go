package model

// CommunityRef is one entry of a relevance ranking.
type CommunityRef struct {
	CommunityID    int     `json:"community_id"`
	RelevanceScore float64 `json:"relevance_score"`
	Reason         string  `json:"reason"`
}

const (
	SummaryLevelBrief         = "brief"
	SummaryLevelDetailed      = "detailed"
	SummaryLevelComprehensive = "comprehensive"
)

// CommunitySummary is the stored description of a community.
type CommunitySummary struct {
	CommunityID  int      `json:"community_id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	KeyEntities  []string `json:"key_entities"`
	KeyRelations []string `json:"key_relations"`
	Topics       []string `json:"topics"`
	Level        string   `json:"level,omitempty"`
	GeneratedBy  string   `json:"generated_by,omitempty"`
	NodeCount    int      `json:"node_count"`
	EdgeCount    int      `json:"edge_count"`
}

// CommunityContext is assembled per question and never persisted.
type CommunityContext struct {
	CommunityID int
	Summary     CommunitySummary
	Subgraph    *Subgraph
	Relevance   float64
}

type CommunityStats struct {
	CommunityID   int      `json:"community_id"`
	Size          int      `json:"size"`
	Nodes         []string `json:"nodes"`
	InternalEdges int      `json:"internal_edges"`
	ExternalEdges int      `json:"external_edges"`
	Density       float64  `json:"density"`
}

type DetectionResult struct {
	Algorithm      string           `json:"algorithm"`
	NodeCount      int              `json:"node_count"`
	EdgeCount      int              `json:"edge_count"`
	CommunityCount int              `json:"community_count"`
	Modularity     float64          `json:"modularity"`
	Communities    []CommunityStats `json:"communities"`
	Assignments    map[string]int   `json:"-"`
}

type SummaryReport struct {
	Total     int   `json:"total"`
	Succeeded []int `json:"succeeded"`
	Failed    []int `json:"failed"`
}
