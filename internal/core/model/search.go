package model

import "fmt"

// Strategy selects how a question is answered.
type Strategy string

const (
	StrategyCommunityFirst Strategy = "community_first"
	StrategyGlobalFirst    Strategy = "global_first"
	StrategyHybrid         Strategy = "hybrid"
	// StrategyFallback is never requested; it marks the terminal apology answer.
	StrategyFallback Strategy = "fallback"
)

// ParseStrategy accepts the three requestable strategies. Empty means community_first.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "":
		return StrategyCommunityFirst, nil
	case StrategyCommunityFirst, StrategyGlobalFirst, StrategyHybrid:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("unknown strategy %q", s)
}

type Neighbor struct {
	Name     string `json:"name"`
	Relation string `json:"relation"`
}

// KeywordMatch is one entity found by keyword search, with its direct neighbors.
type KeywordMatch struct {
	EntityName   string     `json:"entity"`
	EntityLabels []string   `json:"labels"`
	Neighbors    []Neighbor `json:"neighbors"`
}

// AnswerResult is the outcome of one traversal of the strategy machine.
type AnswerResult struct {
	Response   string   `json:"response"`
	Sources    []string `json:"sources"`
	Confidence float64  `json:"confidence"`
	Strategy   Strategy `json:"strategy_used"`
}

// QAResult is the answer envelope returned to callers.
type QAResult struct {
	Question            string         `json:"question"`
	Answer              string         `json:"answer"`
	StrategyRequested   Strategy       `json:"strategy_requested"`
	StrategyUsed        Strategy       `json:"strategy_used"`
	RelevantCommunities []CommunityRef `json:"relevant_communities"`
	Sources             []string       `json:"sources"`
	Confidence          float64        `json:"confidence"`
}

// Entity is a stored graph node as returned by entity search.
type Entity struct {
	Name       string         `json:"name"`
	Labels     []string       `json:"labels"`
	Properties map[string]any `json:"properties"`
}

// EntityRelationship is one relationship touching an entity, in stored direction.
type EntityRelationship struct {
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
}
