package common

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/agenthands/graphrag/internal/core/model"
)

// Attempt is one rung of the parse ladder. It turns a raw model response into
// a candidate JSON document, or reports that it has nothing to offer.
type Attempt struct {
	Name    string
	Extract func(response string) (string, bool)
}

// Ladder is the ordered sequence of attempts tried by ParseJSON.
var Ladder = []Attempt{
	{Name: "fenced", Extract: FencedBlock},
	{Name: "raw", Extract: RawBody},
	{Name: "enclosed", Extract: EnclosedJSON},
	{Name: "repaired", Extract: Repaired},
}

// StrictLadder accepts only a fenced block or the raw body. Truncated or
// chatty replies fail instead of being repaired.
var StrictLadder = []Attempt{
	{Name: "fenced", Extract: FencedBlock},
	{Name: "raw", Extract: RawBody},
}

// ParseJSON unmarshals the first candidate of Ladder that decodes into T.
// It returns an error wrapping model.ErrMalformedResponse when every rung fails.
func ParseJSON[T any](response string) (T, error) {
	return ParseJSONWith[T](response, Ladder)
}

// ParseJSONWith is ParseJSON over an explicit ladder.
func ParseJSONWith[T any](response string, ladder []Attempt) (T, error) {
	var zero T
	var lastErr error
	for _, attempt := range ladder {
		candidate, ok := attempt.Extract(response)
		if !ok {
			continue
		}
		var result T
		if err := json.Unmarshal([]byte(candidate), &result); err != nil {
			lastErr = fmt.Errorf("%s: %w", attempt.Name, err)
			continue
		}
		return result, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no JSON found in response")
	}
	return zero, fmt.Errorf("%w: %v", model.ErrMalformedResponse, lastErr)
}

// FencedBlock returns the body of the first ``` fenced block, preferring one
// tagged json.
func FencedBlock(response string) (string, bool) {
	if body, ok := fenced(response, "```json"); ok {
		return body, true
	}
	return fenced(response, "```")
}

func fenced(response, open string) (string, bool) {
	start := strings.Index(response, open)
	if start == -1 {
		return "", false
	}
	rest := response[start+len(open):]
	// skip the language tag of an untagged-open match, e.g. ```JSON
	if nl := strings.IndexByte(rest, '\n'); nl != -1 && open == "```" && !strings.ContainsAny(rest[:nl], "{[") {
		rest = rest[nl+1:]
	}
	end := strings.Index(rest, "```")
	if end == -1 {
		return "", false
	}
	body := strings.TrimSpace(rest[:end])
	if body == "" {
		return "", false
	}
	return body, true
}

// RawBody returns the whole response, trimmed.
func RawBody(response string) (string, bool) {
	body := strings.TrimSpace(response)
	return body, body != ""
}

// EnclosedJSON cuts the response down to the span between the first opening
// brace or bracket and the last matching closer.
func EnclosedJSON(response string) (string, bool) {
	start := strings.IndexAny(response, "{[")
	if start == -1 {
		return "", false
	}
	closer := byte('}')
	if response[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(response, closer)
	if end <= start {
		return "", false
	}
	return response[start : end+1], true
}

// Repaired runs jsonrepair over the most specific candidate available.
func Repaired(response string) (string, bool) {
	candidate, ok := FencedBlock(response)
	if !ok {
		candidate, ok = EnclosedJSON(response)
	}
	if !ok {
		return "", false
	}
	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return "", false
	}
	return repaired, true
}
