package model

import "strings"

// EntityKey identifies an entity for deduplication: type plus lowercased name.
type EntityKey struct {
	Type string
	Name string
}

// RelationKey identifies a relation: type plus lowercased endpoint names.
type RelationKey struct {
	Type   string
	Source string
	Target string
}

func (e *ExtractedEntity) Key() EntityKey {
	return EntityKey{Type: e.Type, Name: strings.ToLower(e.Name)}
}

func (r *ExtractedRelation) Key() RelationKey {
	return RelationKey{
		Type:   r.Type,
		Source: strings.ToLower(r.SourceName),
		Target: strings.ToLower(r.TargetName),
	}
}
