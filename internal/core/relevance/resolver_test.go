package relevance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/graphrag/internal/config"
	"github.com/agenthands/graphrag/internal/core/model"
	"github.com/agenthands/graphrag/internal/testutil"
)

type mockRecorder struct{ paths []string }

func (m *mockRecorder) ObserveRanking(path string) { m.paths = append(m.paths, path) }

var catalog = []model.CommunitySummary{
	{CommunityID: 1, Title: "Tech", Description: "Software engineers at Acme", Topics: []string{"software", "Acme"}},
	{CommunityID: 2, Title: "Food", Description: "Restaurants in Paris", Topics: []string{"cuisine"}},
	{CommunityID: 3, Title: "Sports", Description: "Football clubs", Topics: []string{"football"}},
}

func newResolver(client *testutil.MockLLMClient, rec *mockRecorder) *Resolver {
	return &Resolver{
		LLM:          client,
		Prompt:       config.DefaultPrompts().Relevance,
		Threshold:    DefaultThreshold,
		KeywordLimit: 5,
		Metrics:      rec,
	}
}

func TestRankLLM(t *testing.T) {
	client := &testutil.MockLLMClient{Response: `Here you go:
[
  {"community_id": 2, "relevance_score": 0.6, "reason": "partial"},
  {"community_id": 1, "relevance_score": 1.4, "reason": "direct"},
  {"community_id": 3, "relevance_score": 0.3, "reason": "weak"},
  {"community_id": 99, "relevance_score": 0.9, "reason": "hallucinated"}
]`}
	rec := &mockRecorder{}

	refs := newResolver(client, rec).Rank(context.Background(), "Who works at Acme?", catalog)

	assert.Equal(t, []model.CommunityRef{
		{CommunityID: 1, RelevanceScore: 1, Reason: "direct"},
		{CommunityID: 2, RelevanceScore: 0.6, Reason: "partial"},
	}, refs)
	assert.Equal(t, []string{PathLLM}, rec.paths)

	require.Len(t, client.Prompts, 1)
	assert.Contains(t, client.Prompts[0], "Who works at Acme?")
	assert.Contains(t, client.Prompts[0], "Community 2:\nTitle: Food")
}

func TestRankLLMKeepsOrderOfTies(t *testing.T) {
	client := &testutil.MockLLMClient{Response: `[
		{"community_id": 3, "relevance_score": 0.5},
		{"community_id": 1, "relevance_score": 0.5}
	]`}
	refs := newResolver(client, nil).Rank(context.Background(), "q", catalog)
	require.Len(t, refs, 2)
	assert.Equal(t, 3, refs[0].CommunityID)
	assert.Equal(t, 1, refs[1].CommunityID)
}

func TestRankFallsBackOnMalformedResponse(t *testing.T) {
	client := &testutil.MockLLMClient{Response: "I think community one is relevant."}
	rec := &mockRecorder{}

	refs := newResolver(client, rec).Rank(context.Background(), "Which software teams work at Acme?", catalog)

	require.Len(t, refs, 1)
	assert.Equal(t, 1, refs[0].CommunityID)
	assert.Equal(t, keywordReason, refs[0].Reason)
	assert.Equal(t, []string{PathKeyword}, rec.paths)
}

func TestRankFallsBackOnLLMError(t *testing.T) {
	client := &testutil.MockLLMClient{Err: errors.New("connection refused")}
	refs := newResolver(client, nil).Rank(context.Background(), "football", catalog)
	require.Len(t, refs, 1)
	assert.Equal(t, 3, refs[0].CommunityID)
	assert.InDelta(t, 0.8, refs[0].RelevanceScore, 1e-9)
}

func TestRankEmptyCatalogSkipsLLM(t *testing.T) {
	client := &testutil.MockLLMClient{Response: "[]"}
	rec := &mockRecorder{}

	refs := newResolver(client, rec).Rank(context.Background(), "anything", nil)

	assert.NotNil(t, refs)
	assert.Empty(t, refs)
	assert.Zero(t, client.Calls())
	assert.Equal(t, []string{PathEmpty}, rec.paths)
}

func TestKeywordRank(t *testing.T) {
	cases := []struct {
		name     string
		question string
		want     []model.CommunityRef
	}{
		{
			name:     "description and topic",
			question: "Acme software",
			// Acme: description 0.3 + topic 0.5, software: 0.3 + 0.5, capped.
			want: []model.CommunityRef{{CommunityID: 1, RelevanceScore: 1, Reason: keywordReason}},
		},
		{
			name:     "description only, case insensitive",
			question: "PARIS restaurants?",
			want:     []model.CommunityRef{{CommunityID: 2, RelevanceScore: 0.6, Reason: keywordReason}},
		},
		{
			name:     "stop words only",
			question: "what is the",
			want:     []model.CommunityRef{},
		},
		{
			name:     "ordering",
			question: "football clubs Paris",
			want: []model.CommunityRef{
				{CommunityID: 3, RelevanceScore: 1, Reason: keywordReason},
				{CommunityID: 2, RelevanceScore: 0.3, Reason: keywordReason},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := KeywordRank(tc.question, catalog, 5)
			require.Len(t, got, len(tc.want))
			for i := range tc.want {
				assert.Equal(t, tc.want[i].CommunityID, got[i].CommunityID)
				assert.InDelta(t, tc.want[i].RelevanceScore, got[i].RelevanceScore, 1e-9)
			}
		})
	}
}

func TestKeywordRankMonotonic(t *testing.T) {
	refs := KeywordRank("engineers Acme football restaurants Paris", catalog, 0)
	for i := 1; i < len(refs); i++ {
		assert.GreaterOrEqual(t, refs[i-1].RelevanceScore, refs[i].RelevanceScore)
	}
}
