package config

import (
	"errors"
	"fmt"
	"net/url"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	if c.RAG.ChunkSize < 1 {
		errs = append(errs, ValidationError{
			Field:   "rag.chunk_size",
			Message: "chunk_size must be positive",
		})
	}
	if c.RAG.ChunkOverlap < 0 || c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		errs = append(errs, ValidationError{
			Field:   "rag.chunk_overlap",
			Message: "chunk_overlap must be non-negative and less than chunk_size",
		})
	}
	if c.RAG.TopK < 1 {
		errs = append(errs, ValidationError{
			Field:   "rag.top_k",
			Message: "top_k must be at least 1",
		})
	}

	errs = append(errs, c.EmbedLLM.validate("embed_llm")...)
	errs = append(errs, c.ChatLLM.validate("chat_llm")...)

	if c.ChatLLM.Temperature < 0 || c.ChatLLM.Temperature > 2 {
		errs = append(errs, ValidationError{
			Field:   "chat_llm.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}
	if c.EmbedLLM.BatchSize < 1 {
		errs = append(errs, ValidationError{
			Field:   "embed_llm.batch_size",
			Message: "batch_size must be positive",
		})
	}

	return errs
}

func (l LLMConfig) validate(prefix string) []ValidationError {
	var errs []ValidationError
	switch l.Provider {
	case ProviderOpenAI, ProviderOllama, ProviderGemini:
	default:
		errs = append(errs, ValidationError{
			Field:   prefix + ".provider",
			Message: fmt.Sprintf("unknown provider %q", l.Provider),
		})
	}
	if l.Model == "" {
		errs = append(errs, ValidationError{
			Field:   prefix + ".model",
			Message: "model is required",
		})
	}
	if l.BaseURL != "" {
		if u, err := url.Parse(l.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   prefix + ".base_url",
				Message: "invalid base URL",
			})
		}
	}
	if l.RateLimit < 0 {
		errs = append(errs, ValidationError{
			Field:   prefix + ".rate_limit",
			Message: "rate_limit must not be negative",
		})
	}
	return errs
}

// Err folds the validation errors into a single error, nil when the config is valid.
func (c *Config) Err() error {
	var errs []error
	for _, v := range c.Validate() {
		errs = append(errs, v)
	}
	return errors.Join(errs...)
}
