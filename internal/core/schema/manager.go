package schema

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/agenthands/graphrag/internal/logger"
)

// Source supplies the active schema, or nil when none is loaded.
type Source interface {
	Current() *Schema
}

// Static is a Source that always returns the same schema.
type Static struct {
	Schema *Schema
}

func (s Static) Current() *Schema {
	return s.Schema
}

// Manager caches a schema file and reloads it when the file changes.
type Manager struct {
	Path string

	mu     sync.RWMutex
	schema *Schema
	mtime  time.Time
}

func NewManager(path string) *Manager {
	return &Manager{Path: path}
}

// Load reads the schema file unless a cached copy with the same mtime exists.
func (m *Manager) Load(force bool) (*Schema, error) {
	info, err := os.Stat(m.Path)
	if err != nil {
		return nil, fmt.Errorf("schema file: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !force && m.schema != nil && m.mtime.Equal(info.ModTime()) {
		return m.schema, nil
	}

	s, err := LoadFile(m.Path)
	if err != nil {
		return nil, err
	}
	m.schema = s
	m.mtime = info.ModTime()
	logger.Info("schema loaded", "path", m.Path, "version", s.Version,
		"entities", len(s.Entities), "relations", len(s.Relations))
	return s, nil
}

func (m *Manager) Current() *Schema {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.schema
}

// ReloadIfChanged reloads the file when its mtime differs from the cached one.
// The previous schema stays active when the reload fails.
func (m *Manager) ReloadIfChanged() (bool, error) {
	info, err := os.Stat(m.Path)
	if err != nil {
		return false, fmt.Errorf("schema file: %w", err)
	}
	m.mu.RLock()
	unchanged := m.schema != nil && m.mtime.Equal(info.ModTime())
	m.mu.RUnlock()
	if unchanged {
		return false, nil
	}
	if _, err := m.Load(true); err != nil {
		logger.Error("schema reload failed", "path", m.Path, "err", err)
		return false, err
	}
	return true, nil
}
