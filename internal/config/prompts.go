package config

// Prompts are fmt templates. Each must keep the verbs of its default.
type Prompts struct {
	// schema catalog, JSON schema of the reply, chunk text
	Extraction string `toml:"extraction"`
	// question, community catalog
	Relevance string `toml:"relevance"`
	// question, community contexts
	CommunityAnswer string `toml:"community_answer"`
	// question, keyword search results
	GlobalAnswer string `toml:"global_answer"`
	// question, community answer, global answer
	Synthesis string `toml:"synthesis"`
	// detail instruction, entity list, relation list
	CommunitySummary string `toml:"community_summary"`
}

func DefaultPrompts() Prompts {
	return Prompts{
		Extraction:       defaultExtractionPrompt,
		Relevance:        defaultRelevancePrompt,
		CommunityAnswer:  defaultCommunityAnswerPrompt,
		GlobalAnswer:     defaultGlobalAnswerPrompt,
		Synthesis:        defaultSynthesisPrompt,
		CommunitySummary: defaultCommunitySummaryPrompt,
	}
}

func (p *Prompts) fillDefaults() {
	d := DefaultPrompts()
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&p.Extraction, d.Extraction)
	fill(&p.Relevance, d.Relevance)
	fill(&p.CommunityAnswer, d.CommunityAnswer)
	fill(&p.GlobalAnswer, d.GlobalAnswer)
	fill(&p.Synthesis, d.Synthesis)
	fill(&p.CommunitySummary, d.CommunitySummary)
}

const defaultExtractionPrompt = `You are an information extraction system building a knowledge graph.
Extract every entity and relation from the text below that fits the schema.

<SCHEMA>
%s
</SCHEMA>

Reply with a single JSON object inside a ` + "```json" + ` block matching this JSON schema:
%s

Rules:
- Only use the entity and relation types defined in the schema.
- "source" and "target" of a relation are entity names.
- "confidence" is a number between 0 and 1.

<TEXT>
%s
</TEXT>
`

const defaultRelevancePrompt = `Question: %s

These are the communities of a knowledge graph:
%s

Rate how relevant each community is to the question, most relevant first.
Reply with a JSON array only, for example:
[
  {"community_id": 1, "relevance_score": 0.9, "reason": "directly related"},
  {"community_id": 2, "relevance_score": 0.6, "reason": "partially related"}
]
`

const defaultCommunityAnswerPrompt = `Answer the question using the community information below.

Question: %s

Relevant communities:
%s

Give an accurate, detailed answer. Focus on the most relevant communities.
`

const defaultGlobalAnswerPrompt = `Answer the question using the knowledge graph information below.

Question: %s

Related information:
%s

Give an accurate, detailed answer based on the information. Say so if it is insufficient.
`

const defaultSynthesisPrompt = `Question: %s

Answer from community search:
%s

Answer from global graph search:
%s

Combine both answers into the most accurate and complete answer.
`

const defaultCommunitySummaryPrompt = `Summarize the following knowledge graph community. %s

Entities:
%s

Relations:
%s

Reply with a JSON object:
{"title": "...", "description": "...", "key_entities": ["..."], "key_relations": ["..."], "topics": ["..."]}
`
