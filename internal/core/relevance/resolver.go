// Package relevance ranks community summaries against a question.
package relevance

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/agenthands/graphrag/internal/core/common"
	"github.com/agenthands/graphrag/internal/core/model"
	"github.com/agenthands/graphrag/internal/llm"
	"github.com/agenthands/graphrag/internal/logger"
)

const (
	PathLLM     = "llm"
	PathKeyword = "keyword"
	PathEmpty   = "empty"

	DefaultThreshold = 0.3

	descriptionHit = 0.3
	topicHit       = 0.5

	keywordReason = "keyword match"
)

// Recorder counts which ranking path produced the result.
type Recorder interface {
	ObserveRanking(path string)
}

// Resolver ranks communities with the LLM and falls back to keyword scoring
// when the call fails or its reply does not parse.
type Resolver struct {
	LLM          llm.Client
	Prompt       string
	Threshold    float64
	KeywordLimit int
	Metrics      Recorder
}

type rating struct {
	CommunityID    int     `json:"community_id"`
	RelevanceScore float64 `json:"relevance_score"`
	Reason         string  `json:"reason"`
}

// Rank orders catalog communities by relevance to question, highest first.
// It never fails; an empty result means no community context is available.
func (r *Resolver) Rank(ctx context.Context, question string, catalog []model.CommunitySummary) []model.CommunityRef {
	if len(catalog) == 0 {
		r.observe(PathEmpty)
		return []model.CommunityRef{}
	}

	if r.LLM != nil {
		refs, err := r.rankWithLLM(ctx, question, catalog)
		if err == nil {
			r.observe(PathLLM)
			return refs
		}
		logger.Warn("relevance ranking falling back to keywords", "err", err)
	}

	r.observe(PathKeyword)
	return KeywordRank(question, catalog, r.KeywordLimit)
}

func (r *Resolver) rankWithLLM(ctx context.Context, question string, catalog []model.CommunitySummary) ([]model.CommunityRef, error) {
	prompt := fmt.Sprintf(r.Prompt, question, FormatCatalog(catalog))
	response, err := r.LLM.Generate(ctx, prompt)
	if err != nil {
		return nil, model.NewError(model.CodeExternalServiceFailure, "relevance ranking failed", err)
	}

	ratings, err := common.ParseJSON[[]rating](response)
	if err != nil {
		return nil, err
	}

	known := make(map[int]struct{}, len(catalog))
	for _, cs := range catalog {
		known[cs.CommunityID] = struct{}{}
	}

	threshold := r.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	refs := make([]model.CommunityRef, 0, len(ratings))
	for _, rt := range ratings {
		if _, ok := known[rt.CommunityID]; !ok {
			continue
		}
		if rt.RelevanceScore <= threshold {
			continue
		}
		refs = append(refs, model.CommunityRef{
			CommunityID:    rt.CommunityID,
			RelevanceScore: min(rt.RelevanceScore, 1),
			Reason:         rt.Reason,
		})
	}
	sortRefs(refs)
	return refs, nil
}

// KeywordRank scores each community by question keywords found in its
// description (+0.3 each) or matching a topic (+0.5 each), capped at 1.
func KeywordRank(question string, catalog []model.CommunitySummary, limit int) []model.CommunityRef {
	keywords := common.ExtractKeywords(question, limit)
	refs := []model.CommunityRef{}
	for _, cs := range catalog {
		description := strings.ToLower(cs.Description)
		score := 0.0
		for _, kw := range keywords {
			if strings.Contains(description, strings.ToLower(kw)) {
				score += descriptionHit
			}
			if slices.Contains(cs.Topics, kw) {
				score += topicHit
			}
		}
		if score > 0 {
			refs = append(refs, model.CommunityRef{
				CommunityID:    cs.CommunityID,
				RelevanceScore: min(score, 1),
				Reason:         keywordReason,
			})
		}
	}
	sortRefs(refs)
	return refs
}

// FormatCatalog renders summaries compactly for the ranking prompt.
func FormatCatalog(catalog []model.CommunitySummary) string {
	var sb strings.Builder
	for _, cs := range catalog {
		title := cs.Title
		if title == "" {
			title = "unknown"
		}
		description := cs.Description
		if description == "" {
			description = "no description"
		}
		fmt.Fprintf(&sb, "\nCommunity %d:\nTitle: %s\nDescription: %s\nTopics: %s\n",
			cs.CommunityID, title, description, strings.Join(cs.Topics, ", "))
	}
	return sb.String()
}

func sortRefs(refs []model.CommunityRef) {
	slices.SortStableFunc(refs, func(a, b model.CommunityRef) int {
		switch {
		case a.RelevanceScore > b.RelevanceScore:
			return -1
		case a.RelevanceScore < b.RelevanceScore:
			return 1
		}
		return 0
	})
}

func (r *Resolver) observe(path string) {
	if r.Metrics != nil {
		r.Metrics.ObserveRanking(path)
	}
}
