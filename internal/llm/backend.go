// Package llm abstracts the model backends used by the changelog pipeline.
// A backend receives an ordered list of role/content messages plus a JSON
// schema describing the expected output, and decodes the model response into
// a caller-supplied value. Transport, quota and schema failures all surface
// as errors; there is no retry.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

type Message struct {
	Role    Role
	Content string
}

// ErrSchemaValidation indicates the backend returned a value that does not
// satisfy the declared output schema.
var ErrSchemaValidation = errors.New("llm response does not match schema")

// Backend is an opaque synchronous call into a model service.
type Backend interface {
	Generate(ctx context.Context, msgs []Message, schema Schema, out any) error
}

// Config selects and parameterizes a backend implementation.
type Config struct {
	Provider    string // "openai" or "ollama"
	Model       string
	APIKey      string // openai
	BaseURL     string // openai, optional override
	OllamaURL   string
	CallTimeout time.Duration
}

// New builds the backend named by cfg.Provider.
func New(cfg Config) (Backend, error) {
	switch cfg.Provider {
	case "openai", "":
		return NewOpenAIBackend(cfg)
	case "ollama":
		return NewOllamaBackend(cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

func withTimeout(ctx context.Context, to time.Duration) (context.Context, context.CancelFunc) {
	if to <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, to)
}

func annotateTimeout(err error, to time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("llm call timed out after %s: %w", to, err)
	}
	return err
}
