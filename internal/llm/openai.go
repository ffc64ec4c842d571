package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4.1"

// OpenAIBackend calls the OpenAI chat completions API with a strict
// json_schema response format, so the model output is constrained to the
// declared schema before it is decoded.
type OpenAIBackend struct {
	client openai.Client
	model  string
	to     time.Duration
}

func NewOpenAIBackend(cfg Config) (*OpenAIBackend, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIBackend{client: openai.NewClient(opts...), model: model, to: cfg.CallTimeout}, nil
}

func (b *OpenAIBackend) Generate(ctx context.Context, msgs []Message, schema Schema, out any) error {
	ctx, cancel := withTimeout(ctx, b.to)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(b.model),
		Messages: toOpenAIMessages(msgs),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        schema.Name,
					Description: openai.String(schema.Description),
					Schema:      schema.Definition(),
					Strict:      openai.Bool(true),
				},
			},
		},
	}

	resp, err := b.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return fmt.Errorf("openai chat completion: %w", annotateTimeout(err, b.to))
	}
	if len(resp.Choices) == 0 {
		return errors.New("openai: empty choices in response")
	}
	return decodeInto(resp.Choices[0].Message.Content, schema, out)
}

func toOpenAIMessages(msgs []Message) []openai.ChatCompletionMessageParamUnion {
	converted := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			converted = append(converted, openai.SystemMessage(m.Content))
		default:
			converted = append(converted, openai.UserMessage(m.Content))
		}
	}
	return converted
}
