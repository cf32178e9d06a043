// Package schema loads the catalog of entity and relation types that
// extraction is conditioned on.
package schema

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/agenthands/graphrag/internal/core/model"
)

type Property struct {
	Type        string `yaml:"type" json:"type"`
	Required    bool   `yaml:"required" json:"required"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

type EntityType struct {
	Name        string              `yaml:"-" json:"name"`
	Description string              `yaml:"description" json:"description"`
	Properties  map[string]Property `yaml:"properties" json:"properties"`
}

type RelationType struct {
	Name        string              `yaml:"-" json:"name"`
	Description string              `yaml:"description" json:"description"`
	Source      string              `yaml:"source" json:"source"`
	Target      string              `yaml:"target" json:"target"`
	Properties  map[string]Property `yaml:"properties" json:"properties"`
}

type Schema struct {
	Version     string                   `yaml:"version" json:"version"`
	Description string                   `yaml:"description" json:"description"`
	Entities    map[string]*EntityType   `yaml:"entities" json:"entities"`
	Relations   map[string]*RelationType `yaml:"relations" json:"relations"`
	LoadedAt    time.Time                `yaml:"-" json:"loaded_at"`
	Path        string                   `yaml:"-" json:"path,omitempty"`
}

var propertyTypes = map[string]struct{}{
	"string": {}, "integer": {}, "float": {}, "boolean": {}, "date": {}, "datetime": {},
}

// LoadFile reads and validates a YAML schema file.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading schema %s: %w", path, err)
	}
	s.Path = path
	return s, nil
}

// Parse decodes and validates a YAML schema document.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, model.NewError(model.CodeInvalidSchema, "yaml decode failed", err)
	}
	if err := s.validate(); err != nil {
		return nil, model.NewError(model.CodeInvalidSchema, "validation failed", err)
	}
	for name, e := range s.Entities {
		e.Name = name
	}
	for name, r := range s.Relations {
		r.Name = name
	}
	s.LoadedAt = time.Now()
	return &s, nil
}

func (s *Schema) validate() error {
	if strings.TrimSpace(s.Version) == "" {
		return fmt.Errorf("missing required field: version")
	}
	if strings.TrimSpace(s.Description) == "" {
		return fmt.Errorf("missing required field: description")
	}
	if s.Entities == nil {
		return fmt.Errorf("missing required field: entities")
	}
	if s.Relations == nil {
		return fmt.Errorf("missing required field: relations")
	}

	for name, e := range s.Entities {
		if e == nil || strings.TrimSpace(e.Description) == "" {
			return fmt.Errorf("entity %s: missing description", name)
		}
		if err := validateProperties(e.Properties); err != nil {
			return fmt.Errorf("entity %s: %w", name, err)
		}
	}
	for name, r := range s.Relations {
		if r == nil || strings.TrimSpace(r.Description) == "" {
			return fmt.Errorf("relation %s: missing description", name)
		}
		if r.Source == "" || r.Target == "" {
			return fmt.Errorf("relation %s: missing source or target", name)
		}
		if err := validateProperties(r.Properties); err != nil {
			return fmt.Errorf("relation %s: %w", name, err)
		}
		if _, ok := s.Entities[r.Source]; !ok {
			return fmt.Errorf("relation %s: source entity %s is not defined", name, r.Source)
		}
		if _, ok := s.Entities[r.Target]; !ok {
			return fmt.Errorf("relation %s: target entity %s is not defined", name, r.Target)
		}
	}
	return nil
}

func validateProperties(props map[string]Property) error {
	for name, p := range props {
		if p.Type == "" {
			return fmt.Errorf("property %s: missing type", name)
		}
		if _, ok := propertyTypes[p.Type]; !ok {
			return fmt.Errorf("property %s: unknown type %q", name, p.Type)
		}
	}
	return nil
}

// EntityNames returns the entity type names in sorted order.
func (s *Schema) EntityNames() []string {
	names := make([]string, 0, len(s.Entities))
	for name := range s.Entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RelationNames returns the relation type names in sorted order.
func (s *Schema) RelationNames() []string {
	names := make([]string, 0, len(s.Relations))
	for name := range s.Relations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PromptText renders the catalog for inclusion in an extraction prompt.
func (s *Schema) PromptText() string {
	var b strings.Builder
	b.WriteString("Entity types:\n")
	for _, name := range s.EntityNames() {
		e := s.Entities[name]
		fmt.Fprintf(&b, "- %s: %s\n", name, e.Description)
		if props := renderProperties(e.Properties); props != "" {
			fmt.Fprintf(&b, "  properties: %s\n", props)
		}
	}
	b.WriteString("\nRelation types:\n")
	for _, name := range s.RelationNames() {
		r := s.Relations[name]
		fmt.Fprintf(&b, "- %s: %s -> %s\n", name, r.Source, r.Target)
		fmt.Fprintf(&b, "  description: %s\n", r.Description)
		if props := renderProperties(r.Properties); props != "" {
			fmt.Fprintf(&b, "  properties: %s\n", props)
		}
	}
	return b.String()
}

func renderProperties(props map[string]Property) string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		req := "optional"
		if props[name].Required {
			req = "required"
		}
		parts = append(parts, fmt.Sprintf("%s(%s, %s)", name, props[name].Type, req))
	}
	return strings.Join(parts, ", ")
}

// ValidateEntity checks data (name merged with properties) against an entity type.
func (s *Schema) ValidateEntity(typeName string, data map[string]any) []string {
	e, ok := s.Entities[typeName]
	if !ok {
		return []string{fmt.Sprintf("unknown entity type: %s", typeName)}
	}
	var errs []string
	for _, name := range sortedRequired(e.Properties) {
		if v, ok := data[name]; !ok || v == nil {
			errs = append(errs, fmt.Sprintf("missing required property: %s", name))
		}
	}
	return append(errs, typeErrors(e.Properties, data, "property")...)
}

// ValidateRelation checks relation properties against a relation type.
func (s *Schema) ValidateRelation(typeName string, data map[string]any) []string {
	r, ok := s.Relations[typeName]
	if !ok {
		return []string{fmt.Sprintf("unknown relation type: %s", typeName)}
	}
	return typeErrors(r.Properties, data, "relation property")
}

func sortedRequired(props map[string]Property) []string {
	var names []string
	for name, p := range props {
		if p.Required {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func typeErrors(props map[string]Property, data map[string]any, what string) []string {
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []string
	for _, name := range names {
		p, ok := props[name]
		if !ok {
			continue
		}
		if !matchesType(data[name], p.Type) {
			errs = append(errs, fmt.Sprintf("%s %s has wrong type, expected %s", what, name, p.Type))
		}
	}
	return errs
}

// matchesType treats nil as valid. Numbers arrive from JSON as float64, so an
// integral float64 is accepted as an integer.
func matchesType(v any, typ string) bool {
	if v == nil {
		return true
	}
	switch typ {
	case "integer":
		switch n := v.(type) {
		case int, int32, int64:
			return true
		case float64:
			return n == math.Trunc(n)
		}
		return false
	case "float":
		switch v.(type) {
		case int, int32, int64, float32, float64:
			return true
		}
		return false
	case "boolean":
		_, ok := v.(bool)
		return ok
	default:
		_, ok := v.(string)
		return ok
	}
}
