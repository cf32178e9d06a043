package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentifier(t *testing.T) {
	tests := map[string]string{
		"Person":       "`Person`",
		"WORKS_FOR":    "`WORKS_FOR`",
		"works for":    "`works_for`",
		"x`) DETACH":   "`x_DETACH`",
		"":             "`Unknown`",
		"  ":           "`Unknown`",
		"人物":           "`人物`",
		"co-author-of": "`co_author_of`",
	}
	for in, want := range tests {
		assert.Equal(t, want, Identifier(in), in)
	}
}

func TestMergeQueries(t *testing.T) {
	q := MergeEntityQuery("Person")
	assert.Contains(t, q, "MERGE (n:Entity:`Person` {name: $name})")

	q = MergeRelationQuery("WORKS FOR")
	assert.Contains(t, q, "MERGE (s)-[r:`WORKS_FOR`]->(t)")
}

func TestEntitySearchQuery(t *testing.T) {
	q := EntitySearchQuery("", false)
	assert.Contains(t, q, "MATCH (n:Entity)")
	assert.NotContains(t, q, "WHERE")

	q = EntitySearchQuery("Person`) DETACH DELETE n //", true)
	assert.Contains(t, q, "MATCH (n:Entity:`Person_DETACH_DELETE_n_`)")
	assert.Contains(t, q, "CONTAINS toLower($name_pattern)")
	assert.Contains(t, q, "LIMIT $limit")
}
