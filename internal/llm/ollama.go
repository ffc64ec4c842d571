package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// OllamaBackend runs the pipeline against a local Ollama server. Ollama has
// no schema-constrained output, so the call runs in JSON mode and the
// response is validated against the schema after the fact.
type OllamaBackend struct {
	llm *ollama.LLM
	to  time.Duration
}

func NewOllamaBackend(cfg Config) (*OllamaBackend, error) {
	if cfg.Model == "" {
		return nil, errors.New("ollama model name is required")
	}

	opts := []ollama.Option{
		ollama.WithModel(cfg.Model),
		ollama.WithServerURL(cfg.OllamaURL),
		ollama.WithKeepAlive("5m"),
	}

	client, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}

	return &OllamaBackend{llm: client, to: cfg.CallTimeout}, nil
}

func (b *OllamaBackend) Generate(ctx context.Context, msgs []Message, schema Schema, out any) error {
	ctx, cancel := withTimeout(ctx, b.to)
	defer cancel()

	messages := make([]llms.MessageContent, 0, len(msgs))
	for _, m := range msgs {
		role := llms.ChatMessageTypeHuman
		if m.Role == RoleSystem {
			role = llms.ChatMessageTypeSystem
		}
		messages = append(messages, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextContent{Text: m.Content}},
		})
	}

	resp, err := b.llm.GenerateContent(ctx, messages, llms.WithJSONMode())
	if err != nil {
		return fmt.Errorf("ollama generate: %w", annotateTimeout(err, b.to))
	}
	if len(resp.Choices) == 0 {
		return errors.New("ollama: empty response")
	}
	return decodeInto(resp.Choices[0].Content, schema, out)
}
