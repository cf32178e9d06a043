package driver

import (
	"fmt"
	"strings"
	"unicode"
)

var IndexQueries = []string{
	"CREATE INDEX entity_name IF NOT EXISTS FOR (n:Entity) ON (n.name)",
	"CREATE INDEX entity_community IF NOT EXISTS FOR (n:Entity) ON (n.community_id)",
	"CREATE CONSTRAINT community_summary_id IF NOT EXISTS FOR (s:CommunitySummary) REQUIRE s.community_id IS UNIQUE",
}

const (
	mergeEntityTemplate = `
		MERGE (n:Entity:%s {name: $name})
		ON CREATE SET n.created_at = $created_at
		SET n += $properties,
			n.entity_type = $type,
			n.confidence = $confidence,
			n.extraction_id = $extraction_id,
			n.updated_at = $created_at
		RETURN n.name AS name
	`

	mergeRelationTemplate = `
		MATCH (s:Entity) WHERE toLower(s.name) = toLower($source)
		MATCH (t:Entity) WHERE toLower(t.name) = toLower($target)
		MERGE (s)-[r:%s]->(t)
		ON CREATE SET r.created_at = $created_at
		SET r += $properties,
			r.confidence = $confidence,
			r.extraction_id = $extraction_id
		RETURN count(r) AS merged
	`

	KeywordSearchQuery = `
		MATCH (n:Entity)
		WHERE toLower(n.name) CONTAINS toLower($keyword)
		OPTIONAL MATCH (n)-[r]-(m:Entity)
		WITH n, collect(CASE WHEN m IS NULL THEN null ELSE {name: m.name, relation: type(r)} END) AS neighbors
		RETURN n.name AS entity,
			[l IN labels(n) WHERE l <> 'Entity'] AS labels,
			neighbors
		LIMIT $limit
	`

	entitySearchTemplate = `
		MATCH (n:Entity%s)
		%s
		RETURN n.name AS name,
			[l IN labels(n) WHERE l <> 'Entity'] AS labels,
			properties(n) AS properties
		ORDER BY name
		LIMIT $limit
	`

	EntityRelationshipsQuery = `
		MATCH (n:Entity {name: $name})-[r]-(m:Entity)
		RETURN startNode(r).name AS source, endNode(r).name AS target,
			type(r) AS type, properties(r) AS properties
		ORDER BY type, source, target
	`

	AllEntityNamesQuery = `
		MATCH (n:Entity)
		RETURN n.name AS name
	`

	AllEdgesQuery = `
		MATCH (a:Entity)-[r]->(b:Entity)
		RETURN a.name AS source, b.name AS target, type(r) AS type,
			coalesce(r.weight, 1.0) AS weight
	`

	ClearCommunitiesQuery = `
		MATCH (n:Entity) WHERE n.community_id IS NOT NULL
		REMOVE n.community_id
	`

	SetCommunitiesQuery = `
		UNWIND $assignments AS a
		MATCH (n:Entity {name: a.name})
		SET n.community_id = a.community_id
	`

	CommunityIDsQuery = `
		MATCH (n:Entity) WHERE n.community_id IS NOT NULL
		RETURN DISTINCT n.community_id AS community_id
		ORDER BY community_id
	`

	CommunityNodesQuery = `
		MATCH (n:Entity {community_id: $community_id})
		RETURN n.name AS name, n.entity_type AS type
		ORDER BY name
	`

	CommunityEdgesQuery = `
		MATCH (a:Entity {community_id: $community_id})-[r]->(b:Entity {community_id: $community_id})
		RETURN a.name AS source, b.name AS target, type(r) AS type
	`

	SaveCommunitySummaryQuery = `
		MERGE (s:CommunitySummary {community_id: $community_id})
		SET s.title = $title,
			s.description = $description,
			s.key_entities = $key_entities,
			s.key_relations = $key_relations,
			s.topics = $topics,
			s.level = $level,
			s.generated_by = $generated_by,
			s.node_count = $node_count,
			s.edge_count = $edge_count,
			s.updated_at = $updated_at
	`

	communitySummaryReturn = `
		RETURN s.community_id AS community_id, s.title AS title,
			s.description AS description, s.key_entities AS key_entities,
			s.key_relations AS key_relations, s.topics AS topics,
			s.level AS level, s.generated_by AS generated_by,
			s.node_count AS node_count, s.edge_count AS edge_count
	`

	GetCommunitySummaryQuery = `
		MATCH (s:CommunitySummary {community_id: $community_id})
	` + communitySummaryReturn

	ListCommunitySummariesQuery = `
		MATCH (s:CommunitySummary)
	` + communitySummaryReturn + `
		ORDER BY community_id
	`

	DeleteCommunitySummariesQuery = `
		MATCH (s:CommunitySummary)
		DETACH DELETE s
	`

	NodeLabelStatsQuery = `
		MATCH (n:Entity)
		UNWIND labels(n) AS label
		WITH label WHERE label <> 'Entity'
		RETURN label, count(*) AS count
	`

	RelationshipStatsQuery = `
		MATCH (:Entity)-[r]->(:Entity)
		RETURN type(r) AS type, count(r) AS count
	`
)

// MergeEntityQuery merges an entity under the label derived from its type.
func MergeEntityQuery(entityType string) string {
	return fmt.Sprintf(mergeEntityTemplate, Identifier(entityType))
}

// MergeRelationQuery merges a relationship of the given type between two entities.
func MergeRelationQuery(relationType string) string {
	return fmt.Sprintf(mergeRelationTemplate, Identifier(relationType))
}

// EntitySearchQuery lists entities, optionally restricted to one type label
// and to names containing $name_pattern, case-insensitively.
func EntitySearchQuery(entityType string, byName bool) string {
	label := ""
	if entityType != "" {
		label = ":" + Identifier(entityType)
	}
	where := ""
	if byName {
		where = "WHERE toLower(n.name) CONTAINS toLower($name_pattern)"
	}
	return fmt.Sprintf(entitySearchTemplate, label, where)
}

// Identifier turns a free-form type name into a backtick-quoted Cypher label
// or relationship type made of letters, digits and underscores.
func Identifier(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-':
			b.WriteRune('_')
		}
	}
	s := b.String()
	if s == "" {
		s = "Unknown"
	}
	return "`" + s + "`"
}
