package store

import (
	"encoding/json"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

func getString(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func getInt(rec *neo4j.Record, key string) int {
	v, _ := rec.Get(key)
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

func getFloat(rec *neo4j.Record, key string, def float64) float64 {
	v, _ := rec.Get(key)
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	}
	return def
}

func getMap(rec *neo4j.Record, key string) map[string]any {
	v, _ := rec.Get(key)
	m, _ := v.(map[string]any)
	return m
}

func getStrings(rec *neo4j.Record, key string) []string {
	v, _ := rec.Get(key)
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// reserved properties are owned by the merge queries.
var reserved = map[string]struct{}{
	"name": {}, "entity_type": {}, "confidence": {}, "extraction_id": {},
	"created_at": {}, "updated_at": {}, "community_id": {},
}

// flatten converts extracted properties into values neo4j can store:
// primitives and homogeneous lists pass through, anything else becomes JSON.
func flatten(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		if _, skip := reserved[k]; skip || v == nil {
			continue
		}
		switch val := v.(type) {
		case string, bool, int, int64, float64:
			out[k] = val
		case []any:
			out[k] = flattenList(val)
		default:
			out[k] = jsonString(val)
		}
	}
	return out
}

func flattenList(list []any) any {
	strs := make([]string, 0, len(list))
	nums := make([]float64, 0, len(list))
	for _, item := range list {
		switch v := item.(type) {
		case string:
			strs = append(strs, v)
		case float64:
			nums = append(nums, v)
		default:
			return jsonString(list)
		}
	}
	switch {
	case len(strs) == len(list):
		return strs
	case len(nums) == len(list):
		return nums
	}
	return jsonString(list)
}

func jsonString(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
