// Package dedupe folds raw per-chunk extractions into one item per identity key.
package dedupe

import (
	"maps"

	"github.com/agenthands/graphrag/internal/core/model"
)

// MergeEntities collapses entities sharing (type, lowercase name).
//
// On a collision with a strictly more confident newcomer the stored entity
// absorbs the newcomer's properties and confidence. Otherwise the newcomer
// absorbs the stored properties (stored values win) and replaces the stored
// entity, keeping its own confidence. The property key set is always the
// union of both. Output preserves first-seen key order.
func MergeEntities(entities []*model.ExtractedEntity) []*model.ExtractedEntity {
	return fold(entities,
		func(e *model.ExtractedEntity) model.EntityKey { return e.Key() },
		func(e *model.ExtractedEntity) *record {
			return &record{confidence: &e.Confidence, properties: &e.Properties}
		})
}

// MergeRelations collapses relations sharing (type, lowercase source, lowercase target)
// with the same rule as MergeEntities.
func MergeRelations(relations []*model.ExtractedRelation) []*model.ExtractedRelation {
	return fold(relations,
		func(r *model.ExtractedRelation) model.RelationKey { return r.Key() },
		func(r *model.ExtractedRelation) *record {
			return &record{confidence: &r.Confidence, properties: &r.Properties}
		})
}

type record struct {
	confidence *float64
	properties *map[string]any
}

func fold[T any, K comparable](items []T, key func(T) K, view func(T) *record) []T {
	merged := make(map[K]T, len(items))
	order := make([]K, 0, len(items))

	for _, item := range items {
		k := key(item)
		stored, seen := merged[k]
		if !seen {
			merged[k] = item
			order = append(order, k)
			continue
		}

		s, n := view(stored), view(item)
		if *n.confidence > *s.confidence {
			absorb(s.properties, *n.properties)
			*s.confidence = *n.confidence
			continue
		}
		absorb(n.properties, *s.properties)
		merged[k] = item
	}

	out := make([]T, 0, len(order))
	for _, k := range order {
		out = append(out, merged[k])
	}
	return out
}

// absorb copies src into *dst, src winning on conflicts.
func absorb(dst *map[string]any, src map[string]any) {
	if *dst == nil {
		*dst = make(map[string]any, len(src))
	}
	maps.Copy(*dst, src)
}
