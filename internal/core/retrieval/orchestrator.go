// Package retrieval answers questions from community summaries, keyword
// search over the whole graph, or a synthesis of both.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agenthands/graphrag/internal/core/common"
	"github.com/agenthands/graphrag/internal/core/model"
	"github.com/agenthands/graphrag/internal/llm"
	"github.com/agenthands/graphrag/internal/logger"
)

const (
	CommunityConfidence = 0.8
	HybridConfidence    = 0.7
	GlobalConfidence    = 0.6
	FallbackConfidence  = 0.1

	GlobalSource     = "global graph search"
	FallbackResponse = "Sorry, no relevant information could be found to answer your question."

	DefaultTopCommunities = 3
	maxNeighbors          = 5
)

// CommunitySource supplies stored community summaries and subgraphs.
type CommunitySource interface {
	CommunitySummary(ctx context.Context, communityID int) (model.CommunitySummary, error)
	CommunitySubgraph(ctx context.Context, communityID int) (*model.Subgraph, error)
}

// GraphSearcher finds entities whose name contains a keyword.
type GraphSearcher interface {
	SearchByKeyword(ctx context.Context, keyword string) ([]model.KeywordMatch, error)
}

type Recorder interface {
	ObserveAnswer(requested, used string)
	ObserveDegradation(from, to string)
}

type Prompts struct {
	// question, community contexts
	Community string
	// question, search results
	Global string
	// question, community answer, global answer
	Synthesis string
}

// Orchestrator runs the strategy machine. It holds no per-question state.
type Orchestrator struct {
	LLM            llm.Client
	Communities    CommunitySource
	Search         GraphSearcher
	Prompts        Prompts
	TopCommunities int
	KeywordLimit   int
	Metrics        Recorder
}

// step is what a state yields: a terminal answer, or the state to degrade to.
type step struct {
	answer  *model.AnswerResult
	degrade model.Strategy
	reason  error
}

func done(a model.AnswerResult) step { return step{answer: &a} }

func degrade(to model.Strategy, reason error) step { return step{degrade: to, reason: reason} }

type query struct {
	question string
	ranked   []model.CommunityRef
}

// Answer answers question starting from strategy. Every failure degrades to
// a cheaper strategy; the last one always answers, so Answer cannot fail.
func (o *Orchestrator) Answer(ctx context.Context, question string, strategy model.Strategy, ranked []model.CommunityRef) model.AnswerResult {
	result := o.run(ctx, query{question: question, ranked: ranked}, strategy)
	if o.Metrics != nil {
		o.Metrics.ObserveAnswer(string(strategy), string(result.Strategy))
	}
	return result
}

func (o *Orchestrator) run(ctx context.Context, q query, current model.Strategy) model.AnswerResult {
	for {
		var s step
		switch current {
		case model.StrategyCommunityFirst:
			s = o.communityFirst(ctx, q)
		case model.StrategyGlobalFirst:
			s = o.globalFirst(ctx, q)
		case model.StrategyHybrid:
			s = o.hybrid(ctx, q)
		default:
			s = done(fallback())
		}
		if s.answer != nil {
			return *s.answer
		}

		logger.Warn("answer strategy degraded", "from", current, "to", s.degrade, "reason", s.reason)
		if o.Metrics != nil {
			o.Metrics.ObserveDegradation(string(current), string(s.degrade))
		}
		current = s.degrade
	}
}

func (o *Orchestrator) communityFirst(ctx context.Context, q query) step {
	if len(q.ranked) == 0 {
		return degrade(model.StrategyGlobalFirst, fmt.Errorf("no relevant communities"))
	}

	top := o.TopCommunities
	if top <= 0 {
		top = DefaultTopCommunities
	}
	refs := q.ranked[:min(top, len(q.ranked))]

	contexts := make([]model.CommunityContext, 0, len(refs))
	for _, ref := range refs {
		summary, err := o.Communities.CommunitySummary(ctx, ref.CommunityID)
		if err != nil {
			logger.Warn("skipping community without summary", "community", ref.CommunityID, "err", err)
			continue
		}
		cc := model.CommunityContext{CommunityID: ref.CommunityID, Summary: summary, Relevance: ref.RelevanceScore}
		if sub, err := o.Communities.CommunitySubgraph(ctx, ref.CommunityID); err == nil {
			cc.Subgraph = sub
		}
		contexts = append(contexts, cc)
	}
	if len(contexts) == 0 {
		return degrade(model.StrategyGlobalFirst, fmt.Errorf("no community context available"))
	}

	prompt := fmt.Sprintf(o.Prompts.Community, q.question, FormatContexts(contexts))
	response, err := o.LLM.Generate(ctx, prompt)
	if err != nil {
		return degrade(model.StrategyGlobalFirst, model.NewError(model.CodeExternalServiceFailure, "community answer failed", err))
	}

	sources := make([]string, 0, len(contexts))
	for _, cc := range contexts {
		sources = append(sources, fmt.Sprintf("community %d", cc.CommunityID))
	}
	return done(model.AnswerResult{
		Response:   response,
		Sources:    sources,
		Confidence: CommunityConfidence,
		Strategy:   model.StrategyCommunityFirst,
	})
}

func (o *Orchestrator) globalFirst(ctx context.Context, q query) step {
	var matches []model.KeywordMatch
	for _, kw := range common.ExtractKeywords(q.question, o.KeywordLimit) {
		found, err := o.Search.SearchByKeyword(ctx, kw)
		if err != nil {
			logger.Warn("keyword search failed", "keyword", kw, "err", err)
			continue
		}
		matches = append(matches, found...)
	}

	prompt := fmt.Sprintf(o.Prompts.Global, q.question, FormatMatches(matches))
	response, err := o.LLM.Generate(ctx, prompt)
	if err != nil {
		return degrade(model.StrategyFallback, model.NewError(model.CodeExternalServiceFailure, "global answer failed", err))
	}
	return done(model.AnswerResult{
		Response:   response,
		Sources:    []string{GlobalSource},
		Confidence: GlobalConfidence,
		Strategy:   model.StrategyGlobalFirst,
	})
}

func (o *Orchestrator) hybrid(ctx context.Context, q query) step {
	var community *model.AnswerResult
	if len(q.ranked) > 0 {
		r := o.run(ctx, q, model.StrategyCommunityFirst)
		community = &r
	}
	global := o.run(ctx, q, model.StrategyGlobalFirst)

	communityText := "No community information."
	if community != nil {
		communityText = community.Response
	}
	prompt := fmt.Sprintf(o.Prompts.Synthesis, q.question, communityText, global.Response)
	response, err := o.LLM.Generate(ctx, prompt)
	if err != nil {
		logger.Warn("hybrid synthesis failed, returning best partial answer", "err", err)
		if community != nil && community.Confidence >= global.Confidence {
			return done(*community)
		}
		return done(global)
	}

	var sources []string
	if community != nil {
		sources = append(sources, community.Sources...)
	}
	sources = append(sources, global.Sources...)
	return done(model.AnswerResult{
		Response:   response,
		Sources:    union(sources),
		Confidence: HybridConfidence,
		Strategy:   model.StrategyHybrid,
	})
}

func fallback() model.AnswerResult {
	return model.AnswerResult{
		Response:   FallbackResponse,
		Sources:    []string{},
		Confidence: FallbackConfidence,
		Strategy:   model.StrategyFallback,
	}
}

// FormatContexts renders community contexts for the community answer prompt.
func FormatContexts(contexts []model.CommunityContext) string {
	var sb strings.Builder
	for _, cc := range contexts {
		description := cc.Summary.Description
		if description == "" {
			description = "no description"
		}
		fmt.Fprintf(&sb, "\nCommunity %d (relevance: %.2f):\nSummary: %s\nKey entities: %s\nKey relations: %s\n",
			cc.CommunityID, cc.Relevance, description,
			strings.Join(cc.Summary.KeyEntities, ", "),
			strings.Join(cc.Summary.KeyRelations, ", "))
		if cc.Subgraph != nil {
			fmt.Fprintf(&sb, "Nodes: %d, relations: %d\n", len(cc.Subgraph.Nodes), len(cc.Subgraph.Edges))
		}
	}
	return sb.String()
}

// FormatMatches renders keyword search results for the global answer prompt.
func FormatMatches(matches []model.KeywordMatch) string {
	if len(matches) == 0 {
		return "No matching entities."
	}
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		block := fmt.Sprintf("Entity: %s (labels: %s)", m.EntityName, strings.Join(m.EntityLabels, ", "))
		var rels []string
		for _, n := range m.Neighbors {
			if n.Name == "" {
				continue
			}
			rels = append(rels, n.Name+"-"+n.Relation)
			if len(rels) == maxNeighbors {
				break
			}
		}
		if len(rels) > 0 {
			block += "\nRelations: " + strings.Join(rels, ", ")
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n")
}

func union(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
