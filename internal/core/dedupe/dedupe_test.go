package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/graphrag/internal/core/model"
)

func entity(typ, name string, conf float64, props map[string]any) *model.ExtractedEntity {
	return &model.ExtractedEntity{Type: typ, Name: name, Confidence: conf, Properties: props}
}

func TestMergeEntitiesHigherFirstKeepsLaterConfidence(t *testing.T) {
	a := entity("Person", "Alice", 0.9, map[string]any{"title": "PM"})
	b := entity("Person", "Alice", 0.5, map[string]any{"title": "Manager"})

	got := MergeEntities([]*model.ExtractedEntity{a, b})
	require.Len(t, got, 1)
	assert.Equal(t, map[string]any{"title": "PM"}, got[0].Properties)
	assert.Equal(t, 0.5, got[0].Confidence)
	assert.Same(t, b, got[0])
}

func TestMergeEntitiesHigherLaterWins(t *testing.T) {
	a := entity("Person", "Alice", 0.5, map[string]any{"title": "Manager", "age": 30})
	b := entity("Person", "alice", 0.9, map[string]any{"title": "PM"})

	got := MergeEntities([]*model.ExtractedEntity{a, b})
	require.Len(t, got, 1)
	assert.Same(t, a, got[0])
	assert.Equal(t, 0.9, got[0].Confidence)
	assert.Equal(t, map[string]any{"title": "PM", "age": 30}, got[0].Properties)
}

func TestMergeEntitiesEqualConfidenceReplaces(t *testing.T) {
	a := entity("Org", "Acme", 0.7, map[string]any{"city": "Berlin"})
	b := entity("Org", "ACME", 0.7, map[string]any{"city": "Paris", "size": "large"})

	got := MergeEntities([]*model.ExtractedEntity{a, b})
	require.Len(t, got, 1)
	assert.Same(t, b, got[0])
	assert.Equal(t, "Berlin", got[0].Properties["city"])
	assert.Equal(t, "large", got[0].Properties["size"])
}

func TestMergeEntitiesKeyUnion(t *testing.T) {
	cases := []struct{ first, second float64 }{{0.9, 0.1}, {0.1, 0.9}, {0.5, 0.5}}
	for _, c := range cases {
		a := entity("T", "n", c.first, map[string]any{"x": 1, "shared": "a"})
		b := entity("T", "N", c.second, map[string]any{"y": 2, "shared": "b"})
		got := MergeEntities([]*model.ExtractedEntity{a, b})
		require.Len(t, got, 1)
		assert.ElementsMatch(t, []string{"x", "y", "shared"}, keys(got[0].Properties))
	}
}

func TestMergeEntitiesNilProperties(t *testing.T) {
	a := entity("T", "n", 0.9, nil)
	b := entity("T", "n", 0.3, map[string]any{"k": "v"})
	got := MergeEntities([]*model.ExtractedEntity{b, a})
	require.Len(t, got, 1)
	assert.Equal(t, "v", got[0].Properties["k"])
}

func TestMergeEntitiesDistinctTypesStaySeparate(t *testing.T) {
	got := MergeEntities([]*model.ExtractedEntity{
		entity("Person", "Jordan", 1, nil),
		entity("Place", "Jordan", 1, nil),
		entity("Person", "jordan", 1, nil),
	})
	require.Len(t, got, 2)
	assert.Equal(t, "Person", got[0].Type)
	assert.Equal(t, "Place", got[1].Type)
}

func TestMergeRelations(t *testing.T) {
	r1 := &model.ExtractedRelation{Type: "WORKS_FOR", SourceName: "Alice", TargetName: "Acme", Confidence: 0.6,
		Properties: map[string]any{"since": "2020"}}
	r2 := &model.ExtractedRelation{Type: "WORKS_FOR", SourceName: "alice", TargetName: "ACME", Confidence: 0.8,
		Properties: map[string]any{"role": "PM"}}
	r3 := &model.ExtractedRelation{Type: "WORKS_FOR", SourceName: "Acme", TargetName: "Alice", Confidence: 0.8}

	got := MergeRelations([]*model.ExtractedRelation{r1, r2, r3})
	require.Len(t, got, 2)
	assert.Same(t, r1, got[0])
	assert.Equal(t, 0.8, got[0].Confidence)
	assert.ElementsMatch(t, []string{"since", "role"}, keys(got[0].Properties))
	assert.Same(t, r3, got[1])
}

func TestMergeEmpty(t *testing.T) {
	assert.Empty(t, MergeEntities(nil))
	assert.Empty(t, MergeRelations(nil))
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
