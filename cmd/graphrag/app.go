package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/agenthands/graphrag/internal/config"
	"github.com/agenthands/graphrag/internal/core"
	"github.com/agenthands/graphrag/internal/core/schema"
	"github.com/agenthands/graphrag/internal/driver"
	"github.com/agenthands/graphrag/internal/llm"
	"github.com/agenthands/graphrag/internal/logger"
	"github.com/agenthands/graphrag/internal/logger/console"
	"github.com/agenthands/graphrag/internal/metrics"
)

// app holds everything a command needs. close releases it.
type app struct {
	cfg     *config.Config
	rag     *core.GraphRAG
	metrics *metrics.Metrics
	closers []func(context.Context) error
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		path = ""
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if debug {
		cfg.Log.Debug = true
	}
	logger.Init(console.New(console.Params{Debug: cfg.Log.Debug, Prefix: "graphrag"}))
	if path == "" {
		logger.Warn("config file not found, using defaults", "path", configPath)
	}
	return cfg, nil
}

// newApp connects to neo4j and the LLM provider and loads the schema.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	m := metrics.New()
	a := &app{cfg: cfg, metrics: m}

	d, err := driver.NewNeo4jDriver(ctx, cfg.Neo4j)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, d.Close)

	client, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("failed to initialize llm client: %w", err)
	}
	if c, ok := client.(io.Closer); ok {
		a.closers = append(a.closers, func(context.Context) error { return c.Close() })
	}
	client = llm.WithRecorder(client, strings.ToLower(cfg.LLM.Provider), m)

	schemas := schema.NewManager(cfg.Extraction.SchemaPath)
	if _, err := schemas.Load(false); err != nil {
		// Extraction reports the missing schema; answering still works.
		logger.Warn("schema not loaded", "path", cfg.Extraction.SchemaPath, "err", err)
	}

	a.rag = core.New(cfg, d, client, schemas, m)
	return a, nil
}

func (a *app) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.Warn("close failed", "err", err)
		}
	}
}
