// Package testutil holds hand-written fakes shared by package tests.
package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/graphrag/internal/llm"
)

// MockLLMClient answers from Handler when set, otherwise pops ErrQueue and
// ResponseQueue before falling back to Err and Response. Safe for concurrent use.
type MockLLMClient struct {
	mu            sync.Mutex
	Response      string
	ResponseQueue []string
	Err           error
	ErrQueue      []error
	Handler       func(prompt string) (string, error)
	Prompts       []string
}

func (m *MockLLMClient) Generate(ctx context.Context, prompt string, opts ...llm.GenerateOption) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prompts = append(m.Prompts, prompt)

	if m.Handler != nil {
		return m.Handler(prompt)
	}
	if len(m.ErrQueue) > 0 {
		err := m.ErrQueue[0]
		m.ErrQueue = m.ErrQueue[1:]
		if err != nil {
			return "", err
		}
	}
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.ResponseQueue) > 0 {
		resp := m.ResponseQueue[0]
		m.ResponseQueue = m.ResponseQueue[1:]
		return resp, nil
	}
	return m.Response, nil
}

func (m *MockLLMClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}

// MockDriver returns Results keyed by exact query text, falling back to
// DefaultResult. Errors keyed the same way take precedence.
type MockDriver struct {
	mu            sync.Mutex
	Results       map[string]neo4j.EagerResult
	Errors        map[string]error
	DefaultResult neo4j.EagerResult
	Err           error
	Queries       []string
	Params        []map[string]any
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queries = append(m.Queries, query)
	m.Params = append(m.Params, params)

	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	if err, ok := m.Errors[query]; ok {
		return neo4j.EagerResult{}, err
	}
	if res, ok := m.Results[query]; ok {
		return res, nil
	}
	return m.DefaultResult, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error {
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	return nil
}

// Executed returns the params of every call whose query contains fragment.
func (m *MockDriver) Executed(fragment string) []map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []map[string]any
	for i, q := range m.Queries {
		if strings.Contains(q, fragment) {
			out = append(out, m.Params[i])
		}
	}
	return out
}

// Record builds a neo4j record from alternating key, value pairs.
func Record(kv ...any) *neo4j.Record {
	rec := &neo4j.Record{}
	for i := 0; i+1 < len(kv); i += 2 {
		rec.Keys = append(rec.Keys, kv[i].(string))
		rec.Values = append(rec.Values, kv[i+1])
	}
	return rec
}

func Result(records ...*neo4j.Record) neo4j.EagerResult {
	var keys []string
	if len(records) > 0 {
		keys = records[0].Keys
	}
	return neo4j.EagerResult{Keys: keys, Records: records}
}
