package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider    string  `toml:"provider"`
	Model       string  `toml:"model"`
	APIKey      string  `toml:"api_key"`
	BaseURL     string  `toml:"base_url"`
	Temperature float64 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
}

type Neo4jConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

type ExtractionConfig struct {
	SchemaPath   string  `toml:"schema_path"`
	ChunkSize    int     `toml:"chunk_size"`
	ChunkOverlap int     `toml:"chunk_overlap"`
	Concurrency  int     `toml:"concurrency"`
	Temperature  float64 `toml:"temperature"`
	MaxTokens    int     `toml:"max_tokens"`
}

type RetrievalConfig struct {
	RelevanceThreshold float64 `toml:"relevance_threshold"`
	TopCommunities     int     `toml:"top_communities"`
	KeywordLimit       int     `toml:"keyword_limit"`
	SearchLimit        int     `toml:"search_limit"`
	DefaultStrategy    string  `toml:"default_strategy"`
}

type CommunityConfig struct {
	Algorithm     string  `toml:"algorithm"`
	MaxIterations int     `toml:"max_iterations"`
	Resolution    float64 `toml:"resolution"`
	MinSize       int     `toml:"min_size"`
	SummaryLevel  string  `toml:"summary_level"`
}

type ServerConfig struct {
	Port int `toml:"port"`
}

type LogConfig struct {
	Debug bool `toml:"debug"`
}

type Config struct {
	LLM        LLMConfig        `toml:"llm"`
	Neo4j      Neo4jConfig      `toml:"neo4j"`
	Extraction ExtractionConfig `toml:"extraction"`
	Retrieval  RetrievalConfig  `toml:"retrieval"`
	Community  CommunityConfig  `toml:"community"`
	Prompts    Prompts          `toml:"prompts"`
	Server     ServerConfig     `toml:"server"`
	Log        LogConfig        `toml:"log"`
}

var providers = map[string]struct{}{"openai": {}, "claude": {}, "gemini": {}, "ollama": {}}

// Default returns the configuration used when no file overrides a value.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "ollama",
			Model:       "qwen3:4b",
			BaseURL:     "http://localhost:11434",
			Temperature: 0.7,
			MaxTokens:   2000,
		},
		Neo4j: Neo4jConfig{
			URI:  "bolt://localhost:7687",
			User: "neo4j",
		},
		Extraction: ExtractionConfig{
			SchemaPath:   "config/schema.yaml",
			ChunkSize:    2000,
			ChunkOverlap: 200,
			Concurrency:  4,
			Temperature:  0.1,
			MaxTokens:    1000,
		},
		Retrieval: RetrievalConfig{
			RelevanceThreshold: 0.3,
			TopCommunities:     3,
			KeywordLimit:       5,
			SearchLimit:        5,
			DefaultStrategy:    "community_first",
		},
		Community: CommunityConfig{
			Algorithm:     "label_propagation",
			MaxIterations: 20,
			Resolution:    1.0,
			MinSize:       2,
			SummaryLevel:  "detailed",
		},
		Prompts: DefaultPrompts(),
		Server:  ServerConfig{Port: 8080},
	}
}

// Load reads the TOML file at path over the defaults and applies environment
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.Prompts.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envOverrides are read with the GRAPHRAG_ prefix, e.g. GRAPHRAG_LLM_MODEL.
type envOverrides struct {
	LLMProvider   string `envconfig:"LLM_PROVIDER"`
	LLMModel      string `envconfig:"LLM_MODEL"`
	LLMAPIKey     string `envconfig:"LLM_API_KEY"`
	LLMBaseURL    string `envconfig:"LLM_BASE_URL"`
	Neo4jURI      string `envconfig:"NEO4J_URI"`
	Neo4jUser     string `envconfig:"NEO4J_USER"`
	Neo4jPassword string `envconfig:"NEO4J_PASSWORD"`
	SchemaPath    string `envconfig:"SCHEMA_PATH"`
	Port          int    `envconfig:"PORT"`
	Debug         *bool  `envconfig:"DEBUG"`
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process("GRAPHRAG", &env); err != nil {
		return fmt.Errorf("failed to process environment: %w", err)
	}
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.LLM.Provider, env.LLMProvider)
	set(&c.LLM.Model, env.LLMModel)
	set(&c.LLM.APIKey, env.LLMAPIKey)
	set(&c.LLM.BaseURL, env.LLMBaseURL)
	set(&c.Neo4j.URI, env.Neo4jURI)
	set(&c.Neo4j.User, env.Neo4jUser)
	set(&c.Neo4j.Password, env.Neo4jPassword)
	set(&c.Extraction.SchemaPath, env.SchemaPath)
	if env.Port != 0 {
		c.Server.Port = env.Port
	}
	if env.Debug != nil {
		c.Log.Debug = *env.Debug
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Extraction.ChunkSize <= 0 {
		return fmt.Errorf("extraction.chunk_size must be positive, got %d", c.Extraction.ChunkSize)
	}
	if c.Extraction.ChunkOverlap < 0 || c.Extraction.ChunkOverlap >= c.Extraction.ChunkSize {
		return fmt.Errorf("extraction.chunk_overlap must be in [0, chunk_size), got %d", c.Extraction.ChunkOverlap)
	}
	if c.Extraction.Concurrency <= 0 {
		return fmt.Errorf("extraction.concurrency must be positive, got %d", c.Extraction.Concurrency)
	}
	if _, ok := providers[strings.ToLower(c.LLM.Provider)]; !ok {
		return fmt.Errorf("unsupported llm provider: %s", c.LLM.Provider)
	}
	if c.Retrieval.RelevanceThreshold <= 0 || c.Retrieval.RelevanceThreshold > 1 {
		return fmt.Errorf("retrieval.relevance_threshold must be in (0, 1], got %v", c.Retrieval.RelevanceThreshold)
	}
	return nil
}
