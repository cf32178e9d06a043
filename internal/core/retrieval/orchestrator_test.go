package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/graphrag/internal/config"
	"github.com/agenthands/graphrag/internal/core/model"
	"github.com/agenthands/graphrag/internal/testutil"
)

type mockCommunities struct {
	summaries   map[int]model.CommunitySummary
	subgraphErr error
	fetched     []int
}

func (m *mockCommunities) CommunitySummary(ctx context.Context, id int) (model.CommunitySummary, error) {
	m.fetched = append(m.fetched, id)
	cs, ok := m.summaries[id]
	if !ok {
		return model.CommunitySummary{}, model.ErrCommunityNotFound
	}
	return cs, nil
}

func (m *mockCommunities) CommunitySubgraph(ctx context.Context, id int) (*model.Subgraph, error) {
	if m.subgraphErr != nil {
		return nil, m.subgraphErr
	}
	return &model.Subgraph{CommunityID: id, Nodes: []model.SubgraphNode{{Name: "Alice"}}}, nil
}

type mockSearcher struct {
	matches  map[string][]model.KeywordMatch
	err      error
	keywords []string
}

func (m *mockSearcher) SearchByKeyword(ctx context.Context, keyword string) ([]model.KeywordMatch, error) {
	m.keywords = append(m.keywords, keyword)
	if m.err != nil {
		return nil, m.err
	}
	return m.matches[keyword], nil
}

type mockRecorder struct {
	answers      [][2]string
	degradations [][2]string
}

func (m *mockRecorder) ObserveAnswer(requested, used string) {
	m.answers = append(m.answers, [2]string{requested, used})
}

func (m *mockRecorder) ObserveDegradation(from, to string) {
	m.degradations = append(m.degradations, [2]string{from, to})
}

// scripted answers each prompt kind, failing the kinds listed in fail.
func scripted(fail ...string) *testutil.MockLLMClient {
	failing := make(map[string]bool)
	for _, f := range fail {
		failing[f] = true
	}
	return &testutil.MockLLMClient{Handler: func(prompt string) (string, error) {
		kind := "global"
		switch {
		case strings.Contains(prompt, "Answer from community search:"):
			kind = "synthesis"
		case strings.Contains(prompt, "Relevant communities:"):
			kind = "community"
		}
		if failing[kind] {
			return "", errors.New(kind + " unavailable")
		}
		return kind + " answer", nil
	}}
}

func newOrchestrator(client *testutil.MockLLMClient, communities *mockCommunities, searcher *mockSearcher, rec *mockRecorder) *Orchestrator {
	p := config.DefaultPrompts()
	o := &Orchestrator{
		LLM:         client,
		Communities: communities,
		Search:      searcher,
		Prompts: Prompts{
			Community: p.CommunityAnswer,
			Global:    p.GlobalAnswer,
			Synthesis: p.Synthesis,
		},
		KeywordLimit: 5,
	}
	if rec != nil {
		o.Metrics = rec
	}
	return o
}

func catalog() *mockCommunities {
	return &mockCommunities{summaries: map[int]model.CommunitySummary{
		1: {CommunityID: 1, Description: "Acme engineers", KeyEntities: []string{"Alice"}},
		2: {CommunityID: 2, Description: "Paris food"},
		3: {CommunityID: 3, Description: "Football"},
		4: {CommunityID: 4, Description: "Music"},
	}}
}

func ranked(ids ...int) []model.CommunityRef {
	refs := make([]model.CommunityRef, len(ids))
	for i, id := range ids {
		refs[i] = model.CommunityRef{CommunityID: id, RelevanceScore: 0.9 - float64(i)*0.1}
	}
	return refs
}

func searcher() *mockSearcher {
	return &mockSearcher{matches: map[string][]model.KeywordMatch{
		"Alice": {{EntityName: "Alice", EntityLabels: []string{"Entity", "Person"},
			Neighbors: []model.Neighbor{{Name: "Acme", Relation: "WORKS_FOR"}}}},
	}}
}

func TestCommunityFirst(t *testing.T) {
	client := scripted()
	communities := catalog()
	rec := &mockRecorder{}

	got := newOrchestrator(client, communities, searcher(), rec).
		Answer(context.Background(), "Where does Alice work?", model.StrategyCommunityFirst, ranked(2, 1, 3, 4))

	assert.Equal(t, model.AnswerResult{
		Response:   "community answer",
		Sources:    []string{"community 2", "community 1", "community 3"},
		Confidence: CommunityConfidence,
		Strategy:   model.StrategyCommunityFirst,
	}, got)
	assert.Equal(t, []int{2, 1, 3}, communities.fetched)
	assert.Equal(t, [][2]string{{"community_first", "community_first"}}, rec.answers)

	require.Len(t, client.Prompts, 1)
	assert.Contains(t, client.Prompts[0], "Community 1 (relevance: 0.80):\nSummary: Acme engineers\nKey entities: Alice")
	assert.Contains(t, client.Prompts[0], "Nodes: 1, relations: 0")
}

func TestCommunityFirstSkipsMissingSummaries(t *testing.T) {
	communities := catalog()
	communities.subgraphErr = errors.New("timeout")

	got := newOrchestrator(scripted(), communities, searcher(), nil).
		Answer(context.Background(), "q", model.StrategyCommunityFirst, ranked(9, 1))

	assert.Equal(t, []string{"community 1"}, got.Sources)
	assert.Equal(t, model.StrategyCommunityFirst, got.Strategy)
}

func TestCommunityFirstWithoutContextsDegrades(t *testing.T) {
	got := newOrchestrator(scripted(), catalog(), searcher(), nil).
		Answer(context.Background(), "q", model.StrategyCommunityFirst, ranked(8, 9))
	assert.Equal(t, model.StrategyGlobalFirst, got.Strategy)
}

func TestEmptyRankingBehavesLikeGlobalFirst(t *testing.T) {
	question := "Where does Alice work?"

	s1 := searcher()
	viaCommunity := newOrchestrator(scripted(), catalog(), s1, nil).
		Answer(context.Background(), question, model.StrategyCommunityFirst, nil)
	s2 := searcher()
	direct := newOrchestrator(scripted(), catalog(), s2, nil).
		Answer(context.Background(), question, model.StrategyGlobalFirst, nil)

	assert.Equal(t, direct, viaCommunity)
	assert.Equal(t, model.AnswerResult{
		Response:   "global answer",
		Sources:    []string{GlobalSource},
		Confidence: GlobalConfidence,
		Strategy:   model.StrategyGlobalFirst,
	}, direct)
	assert.Equal(t, s2.keywords, s1.keywords)
}

func TestCommunityLLMFailureDegradesToGlobal(t *testing.T) {
	rec := &mockRecorder{}
	got := newOrchestrator(scripted("community"), catalog(), searcher(), rec).
		Answer(context.Background(), "q", model.StrategyCommunityFirst, ranked(1))

	assert.Equal(t, model.StrategyGlobalFirst, got.Strategy)
	assert.Equal(t, GlobalConfidence, got.Confidence)
	assert.Equal(t, [][2]string{{"community_first", "global_first"}}, rec.degradations)
	assert.Equal(t, [][2]string{{"community_first", "global_first"}}, rec.answers)
}

func TestGlobalFirstPrompt(t *testing.T) {
	client := scripted()
	s := searcher()
	newOrchestrator(client, catalog(), s, nil).
		Answer(context.Background(), "Where does Alice work?", model.StrategyGlobalFirst, nil)

	assert.Equal(t, []string{"Alice", "work"}, s.keywords)
	require.Len(t, client.Prompts, 1)
	assert.Contains(t, client.Prompts[0], "Entity: Alice (labels: Entity, Person)\nRelations: Acme-WORKS_FOR")
}

func TestGlobalSearchErrorsCountAsEmpty(t *testing.T) {
	client := scripted()
	got := newOrchestrator(client, catalog(), &mockSearcher{err: errors.New("db down")}, nil).
		Answer(context.Background(), "Alice", model.StrategyGlobalFirst, nil)

	assert.Equal(t, model.StrategyGlobalFirst, got.Strategy)
	assert.Contains(t, client.Prompts[0], "No matching entities.")
}

func TestTerminalFallback(t *testing.T) {
	rec := &mockRecorder{}
	got := newOrchestrator(scripted("community", "global"), catalog(), searcher(), rec).
		Answer(context.Background(), "q", model.StrategyCommunityFirst, ranked(1))

	assert.Equal(t, FallbackConfidence, got.Confidence)
	assert.NotNil(t, got.Sources)
	assert.Empty(t, got.Sources)
	assert.NotEmpty(t, got.Response)
	assert.Equal(t, model.StrategyFallback, got.Strategy)
	assert.Equal(t, [][2]string{
		{"community_first", "global_first"},
		{"global_first", "fallback"},
	}, rec.degradations)
}

func TestHybrid(t *testing.T) {
	client := scripted()
	got := newOrchestrator(client, catalog(), searcher(), nil).
		Answer(context.Background(), "q", model.StrategyHybrid, ranked(2, 1))

	assert.Equal(t, model.AnswerResult{
		Response:   "synthesis answer",
		Sources:    []string{"community 1", "community 2", GlobalSource},
		Confidence: HybridConfidence,
		Strategy:   model.StrategyHybrid,
	}, got)
	require.Len(t, client.Prompts, 3)
	assert.Contains(t, client.Prompts[2], "community answer")
	assert.Contains(t, client.Prompts[2], "global answer")
}

func TestHybridWithoutCommunities(t *testing.T) {
	client := scripted()
	got := newOrchestrator(client, catalog(), searcher(), nil).
		Answer(context.Background(), "q", model.StrategyHybrid, nil)

	assert.Equal(t, []string{GlobalSource}, got.Sources)
	assert.Equal(t, model.StrategyHybrid, got.Strategy)
	require.Len(t, client.Prompts, 2)
	assert.Contains(t, client.Prompts[1], "No community information.")
}

func TestHybridSynthesisFailure(t *testing.T) {
	cases := []struct {
		name   string
		fail   []string
		ranked []model.CommunityRef
		want   model.Strategy
	}{
		{"community wins on confidence", []string{"synthesis"}, ranked(1), model.StrategyCommunityFirst},
		{"global when no communities", []string{"synthesis"}, nil, model.StrategyGlobalFirst},
		// The community leg degrades to global, tying with the global leg.
		{"tie goes to the community leg", []string{"synthesis", "community"}, ranked(1), model.StrategyGlobalFirst},
		{"everything fails", []string{"synthesis", "community", "global"}, ranked(1), model.StrategyFallback},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := newOrchestrator(scripted(tc.fail...), catalog(), searcher(), nil).
				Answer(context.Background(), "q", model.StrategyHybrid, tc.ranked)
			assert.Equal(t, tc.want, got.Strategy)
		})
	}
}

func TestUnionSortsAndDedupes(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, union([]string{"b", "a", "b"}))
}
