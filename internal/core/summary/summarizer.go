// Package summary describes detected communities with the LLM and stores the
// result as community summaries.
package summary

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
	GeneratedByLLM   = "llm"
	GeneratedByBasic = "basic"

	// Per type, how many examples go into the prompt.
	entitiesPerType  = 5
	relationsPerType = 3
	maxTopics        = 10
)

var levelInstructions = map[string]string{
	model.SummaryLevelBrief: "Describe the main content and theme of the community in one or two sentences.",
	model.SummaryLevelDetailed: "Cover the main theme and domain, the key entities and their roles, " +
		"the main relation patterns and the role of the community in the whole graph.",
	model.SummaryLevelComprehensive: "Give a full analysis: core theme and business domain, entity hierarchy " +
		"and importance, relation network patterns, the strategic value of the community " +
		"and possible applications.",
}

// Store is the community catalog the summarizer reads from and writes to.
type Store interface {
	CommunityIDs(ctx context.Context) ([]int, error)
	CommunitySubgraph(ctx context.Context, communityID int) (*model.Subgraph, error)
	SaveCommunitySummary(ctx context.Context, cs model.CommunitySummary) error
}

type Summarizer struct {
	LLM    llm.Client
	Store  Store
	Prompt string
	Level  string
}

func NewSummarizer(client llm.Client, store Store, prompt, level string) *Summarizer {
	return &Summarizer{LLM: client, Store: store, Prompt: prompt, Level: level}
}

type payload struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	KeyEntities  []string `json:"key_entities"`
	KeyRelations []string `json:"key_relations"`
	Topics       []string `json:"topics"`
	MainTopics   []string `json:"main_topics"`
}

// Summarize builds and saves the summary of one community. An LLM failure
// falls back to a statistical summary; only store errors are returned.
func (s *Summarizer) Summarize(ctx context.Context, communityID int, level string) (model.CommunitySummary, error) {
	level = s.level(level)

	sub, err := s.Store.CommunitySubgraph(ctx, communityID)
	if err != nil {
		return model.CommunitySummary{}, fmt.Errorf("failed to load community %d: %w", communityID, err)
	}
	g := group(sub)

	cs, err := s.generate(ctx, g, level)
	if err != nil {
		logger.Warn("community summary falling back to basic", "community", communityID, "err", err)
		cs = basic(g)
	}
	cs.CommunityID = communityID
	cs.Level = level
	cs.NodeCount = len(sub.Nodes)
	cs.EdgeCount = len(sub.Edges)

	if err := s.Store.SaveCommunitySummary(ctx, cs); err != nil {
		return model.CommunitySummary{}, fmt.Errorf("failed to save summary of community %d: %w", communityID, err)
	}
	return cs, nil
}

// SummarizeAll summarizes every stored community, continuing past failures.
func (s *Summarizer) SummarizeAll(ctx context.Context, level string) (model.SummaryReport, error) {
	ids, err := s.Store.CommunityIDs(ctx)
	if err != nil {
		return model.SummaryReport{}, fmt.Errorf("failed to list communities: %w", err)
	}

	report := model.SummaryReport{Total: len(ids), Succeeded: []int{}, Failed: []int{}}
	for _, id := range ids {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		if _, err := s.Summarize(ctx, id, level); err != nil {
			logger.Error("community summary failed", "community", id, "err", err)
			report.Failed = append(report.Failed, id)
			continue
		}
		report.Succeeded = append(report.Succeeded, id)
	}
	logger.Info("community summaries generated", "total", report.Total, "failed", len(report.Failed))
	return report, nil
}

func (s *Summarizer) level(level string) string {
	if _, ok := levelInstructions[level]; ok {
		return level
	}
	if _, ok := levelInstructions[s.Level]; ok {
		return s.Level
	}
	return model.SummaryLevelDetailed
}

func (s *Summarizer) generate(ctx context.Context, g grouped, level string) (model.CommunitySummary, error) {
	if s.LLM == nil {
		return model.CommunitySummary{}, fmt.Errorf("no llm configured")
	}
	prompt := fmt.Sprintf(s.Prompt, levelInstructions[level], g.entityLines(), g.relationLines())
	response, err := s.LLM.Generate(ctx, prompt)
	if err != nil {
		return model.CommunitySummary{}, model.NewError(model.CodeExternalServiceFailure, "summary generation failed", err)
	}

	p, err := common.ParseJSON[payload](response)
	if err != nil || p.Description == "" {
		// Plain text answers become the description.
		text := strings.TrimSpace(response)
		return model.CommunitySummary{
			Title:        fmt.Sprintf("Community %d", g.id),
			Description:  text,
			KeyEntities:  g.entityTypes(),
			KeyRelations: g.relationTypes(),
			Topics:       common.ExtractKeywords(text, maxTopics),
			GeneratedBy:  GeneratedByLLM,
		}, nil
	}

	cs := model.CommunitySummary{
		Title:        p.Title,
		Description:  p.Description,
		KeyEntities:  p.KeyEntities,
		KeyRelations: p.KeyRelations,
		Topics:       p.Topics,
		GeneratedBy:  GeneratedByLLM,
	}
	if cs.Title == "" {
		cs.Title = fmt.Sprintf("Community %d", g.id)
	}
	if len(cs.Topics) == 0 {
		cs.Topics = p.MainTopics
	}
	if len(cs.KeyEntities) == 0 {
		cs.KeyEntities = g.entityTypes()
	}
	if len(cs.KeyRelations) == 0 {
		cs.KeyRelations = g.relationTypes()
	}
	return cs, nil
}

func basic(g grouped) model.CommunitySummary {
	entityTypes := g.entityTypes()
	relationTypes := g.relationTypes()
	description := fmt.Sprintf("This community contains %d nodes and %d relationships. ", g.nodes, g.edges) +
		fmt.Sprintf("Main entity types: %s. ", strings.Join(entityTypes, ", ")) +
		fmt.Sprintf("Main relation types: %s.", strings.Join(relationTypes, ", "))

	return model.CommunitySummary{
		Title:        fmt.Sprintf("Community %d (basic summary)", g.id),
		Description:  description,
		KeyEntities:  entityTypes,
		KeyRelations: relationTypes,
		Topics:       append(append([]string{}, entityTypes...), relationTypes...),
		GeneratedBy:  GeneratedByBasic,
	}
}

// grouped is a community subgraph bucketed by entity and relation type.
type grouped struct {
	id        int
	nodes     int
	edges     int
	entities  map[string][]string
	relations map[string][]string
}

func group(sub *model.Subgraph) grouped {
	g := grouped{
		id:        sub.CommunityID,
		nodes:     len(sub.Nodes),
		edges:     len(sub.Edges),
		entities:  make(map[string][]string),
		relations: make(map[string][]string),
	}
	for _, n := range sub.Nodes {
		t := n.Type
		if t == "" {
			t = "Entity"
		}
		g.entities[t] = append(g.entities[t], n.Name)
	}
	for _, e := range sub.Edges {
		g.relations[e.RelationType] = append(g.relations[e.RelationType], e.Source+"-"+e.Target)
	}
	return g
}

func (g grouped) entityTypes() []string   { return sortedKeys(g.entities) }
func (g grouped) relationTypes() []string { return sortedKeys(g.relations) }

func (g grouped) entityLines() string {
	return lines(g.entities, entitiesPerType)
}

func (g grouped) relationLines() string {
	return lines(g.relations, relationsPerType)
}

func lines(buckets map[string][]string, limit int) string {
	var sb strings.Builder
	for _, key := range sortedKeys(buckets) {
		examples := buckets[key]
		if len(examples) > limit {
			examples = examples[:limit]
		}
		fmt.Fprintf(&sb, "- %s: %s\n", key, strings.Join(examples, ", "))
	}
	if sb.Len() == 0 {
		return "(none)\n"
	}
	return sb.String()
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
