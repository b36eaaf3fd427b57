package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"

	DefaultConfigPath = "./configs/config.yaml"
)

// LLMConfig configures one model endpoint, either for embeddings or for chat.
type LLMConfig struct {
	Provider    string  `yaml:"provider"`
	BaseURL     string  `yaml:"base_url"`
	Key         string  `yaml:"key"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	BatchSize   int     `yaml:"batch_size"`
	RateLimit   float64 `yaml:"rate_limit"` // requests per second, 0 disables
	TimeoutSecs int     `yaml:"timeout_secs"`
}

type RAGConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	TopK         int `yaml:"top_k"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	RAG      RAGConfig `yaml:"rag"`
	EmbedLLM LLMConfig `yaml:"embed_llm"`
	ChatLLM  LLMConfig `yaml:"chat_llm"`
	Log      LogConfig `yaml:"log"`
}

// Default returns the settings the application starts with when no file is given.
func Default() *Config {
	return &Config{
		RAG: RAGConfig{
			ChunkSize:    1000,
			ChunkOverlap: 200,
			TopK:         4,
		},
		EmbedLLM: LLMConfig{
			Provider:    ProviderOpenAI,
			Model:       "text-embedding-3-small",
			BatchSize:   64,
			TimeoutSecs: 60,
		},
		ChatLLM: LLMConfig{
			Provider:    ProviderOpenAI,
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
			TimeoutSecs: 120,
		},
		Log: LogConfig{Level: "info"},
	}
}

// LoadConfig reads path on top of the defaults. A missing file yields the defaults.
// Environment variables are merged last.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("error reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("error parsing config file: %w", err)
			}
		}
	}
	mergeWithEnv(cfg)
	return cfg, nil
}

func mergeWithEnv(cfg *Config) {
	for _, llm := range []*LLMConfig{&cfg.EmbedLLM, &cfg.ChatLLM} {
		switch llm.Provider {
		case ProviderOpenAI:
			if key := os.Getenv("OPENAI_API_KEY"); key != "" && llm.Key == "" {
				llm.Key = key
			}
		case ProviderGemini:
			if key := os.Getenv("GEMINI_API_KEY"); key != "" && llm.Key == "" {
				llm.Key = key
			}
		case ProviderOllama:
			if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
				llm.BaseURL = baseURL
			}
		}
	}
	if model := os.Getenv("SCHOLAR_CHAT_EMBEDDING_MODEL"); model != "" {
		cfg.EmbedLLM.Model = model
	}
	if model := os.Getenv("SCHOLAR_CHAT_LLM_MODEL"); model != "" {
		cfg.ChatLLM.Model = model
	}
	if v, err := strconv.Atoi(os.Getenv("SCHOLAR_CHAT_TOP_K")); err == nil {
		cfg.RAG.TopK = v
	}
	if level := os.Getenv("SCHOLAR_CHAT_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
}
