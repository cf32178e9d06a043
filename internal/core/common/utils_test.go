package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/graphrag/internal/core/model"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestFencedBlock(t *testing.T) {
	body, ok := FencedBlock("Here you go:\n```json\n{\"name\": \"a\"}\n```\nbye")
	require.True(t, ok)
	assert.Equal(t, `{"name": "a"}`, body)

	body, ok = FencedBlock("```\n[1, 2]\n```")
	require.True(t, ok)
	assert.Equal(t, `[1, 2]`, body)

	_, ok = FencedBlock("no fence here")
	assert.False(t, ok)

	_, ok = FencedBlock("```json\n{\"unterminated\": 1}")
	assert.False(t, ok)
}

func TestRawBody(t *testing.T) {
	body, ok := RawBody("  {\"a\":1}\n")
	require.True(t, ok)
	assert.Equal(t, `{"a":1}`, body)

	_, ok = RawBody("   ")
	assert.False(t, ok)
}

func TestEnclosedJSON(t *testing.T) {
	body, ok := EnclosedJSON(`Sure! {"name": "x"} Hope it helps.`)
	require.True(t, ok)
	assert.Equal(t, `{"name": "x"}`, body)

	body, ok = EnclosedJSON(`Result: [{"a":1},{"a":2}] done`)
	require.True(t, ok)
	assert.Equal(t, `[{"a":1},{"a":2}]`, body)

	_, ok = EnclosedJSON("nothing")
	assert.False(t, ok)
}

func TestRepaired(t *testing.T) {
	body, ok := Repaired(`{"name": "x", "count": 2,}`)
	require.True(t, ok)
	assert.JSONEq(t, `{"name": "x", "count": 2}`, body)
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     payload
	}{
		{"fenced", "```json\n{\"name\": \"alice\", \"count\": 1}\n```", payload{"alice", 1}},
		{"raw", `{"name": "bob", "count": 2}`, payload{"bob", 2}},
		{"enclosed", `The answer is {"name": "carol", "count": 3} as requested.`, payload{"carol", 3}},
		{"repaired", `{"name": "dave", "count": 4,}`, payload{"dave", 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJSON[payload](tt.response)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseJSONArray(t *testing.T) {
	got, err := ParseJSON[[]payload]("```json\n[{\"name\":\"a\"},{\"name\":\"b\"}]\n```")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestParseJSONMalformed(t *testing.T) {
	_, err := ParseJSON[payload]("I could not find anything.")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrMalformedResponse)
}

func TestParseJSONWithStrictLadder(t *testing.T) {
	got, err := ParseJSONWith[payload]("```json\n{\"name\": \"alice\", \"count\": 1}\n```", StrictLadder)
	require.NoError(t, err)
	assert.Equal(t, payload{"alice", 1}, got)

	got, err = ParseJSONWith[payload](`{"name": "bob", "count": 2}`, StrictLadder)
	require.NoError(t, err)
	assert.Equal(t, payload{"bob", 2}, got)

	for _, response := range []string{
		`The answer is {"name": "carol", "count": 3} as requested.`,
		"```json\n{\"name\": \"dave\", \"count\": 4,}\n```",
		`{"name": "erin", "count": 5, "tags": ["a", "b"`,
	} {
		_, err := ParseJSONWith[payload](response, StrictLadder)
		assert.ErrorIs(t, err, model.ErrMalformedResponse, response)
	}
}
