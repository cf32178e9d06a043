package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/graphrag/internal/logger/console"
)

type recorder struct {
	lines []string
}

func (r *recorder) Debug(message string, keyvals ...any) { r.lines = append(r.lines, "debug:"+message) }
func (r *recorder) Info(message string, keyvals ...any)  { r.lines = append(r.lines, "info:"+message) }
func (r *recorder) Warn(message string, keyvals ...any)  { r.lines = append(r.lines, "warn:"+message) }
func (r *recorder) Error(message string, keyvals ...any) { r.lines = append(r.lines, "error:"+message) }

func TestNoopBeforeInit(t *testing.T) {
	singleton = nil
	assert.NotPanics(t, func() {
		Info("hello")
		Warn("hello", "k", 1)
	})
}

func TestDispatchToAllInstances(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	Init(a, b)
	defer func() { singleton = nil }()

	Debug("d")
	Info("i")
	Warn("w")
	Error("e")

	want := []string{"debug:d", "info:i", "warn:w", "error:e"}
	assert.Equal(t, want, a.lines)
	assert.Equal(t, want, b.lines)
}

func TestConsoleLevel(t *testing.T) {
	var buf bytes.Buffer
	c := console.New(console.Params{Output: &buf})
	c.Debug("hidden")
	c.Info("shown", "chunks", 3)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "chunks=3")
}
