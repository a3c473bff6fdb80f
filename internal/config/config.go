package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LLMConfig points at one OpenAI-compatible capability (chat or embedding).
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	Key     string `yaml:"key"`
	Model   string `yaml:"model"`
}

type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DocumentConfig struct {
	Path string `yaml:"path"`
}

type RAGConfig struct {
	ChunkSize         int     `yaml:"chunk_size"`
	ChunkOverlap      int     `yaml:"chunk_overlap"`
	TopK              int     `yaml:"top_k"`
	HistoryWindow     int     `yaml:"history_window"`
	ContextCharBudget int     `yaml:"context_char_budget"`
	MaxTokens         int     `yaml:"max_tokens"`
	Temperature       float64 `yaml:"temperature"`
}

type IndexConfig struct {
	Persist    bool   `yaml:"persist"`
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
}

type Config struct {
	Server    ServerConfig   `yaml:"server"`
	Document  DocumentConfig `yaml:"document"`
	RAG       RAGConfig      `yaml:"rag"`
	LLM       LLMConfig      `yaml:"llm"`
	Embedding LLMConfig      `yaml:"embedding"`
	Index     IndexConfig    `yaml:"index"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	if cfg.Document.Path == "" {
		return nil, fmt.Errorf("document path is required (document.path or PDF_PATH)")
	}
	return &cfg, nil
}

// applyEnvOverrides lets environment variables win over the file for the
// values that change between deployments.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.Key = v
		if cfg.Embedding.Key == "" {
			cfg.Embedding.Key = v
		}
	}
	if v := os.Getenv("PDF_PATH"); v != "" {
		cfg.Document.Path = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
		if cfg.Embedding.BaseURL == "" {
			cfg.Embedding.BaseURL = v
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 1000
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = 100
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 4
	}
	if cfg.RAG.HistoryWindow == 0 {
		cfg.RAG.HistoryWindow = 4
	}
	if cfg.RAG.ContextCharBudget == 0 {
		cfg.RAG.ContextCharBudget = 48000
	}
	if cfg.RAG.MaxTokens == 0 {
		cfg.RAG.MaxTokens = 500
	}
	if cfg.RAG.Temperature == 0 {
		cfg.RAG.Temperature = 0.2
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-3.5-turbo"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Index.Collection == "" {
		cfg.Index.Collection = "pdf_chunks"
	}
	if cfg.Index.Path == "" {
		cfg.Index.Path = "./chromemdb"
	}
}
