package mcp

import (
	"log"

	"github.com/mark3labs/mcp-go/server"

	"github.com/roivaz/changelog-agent/internal/config"
	"github.com/roivaz/changelog-agent/internal/llm"
	"github.com/roivaz/changelog-agent/internal/logging"
	"github.com/roivaz/changelog-agent/internal/mcp/tools"
	"github.com/roivaz/changelog-agent/internal/prompt"
)

type Config struct {
	ToolAdapters map[string]ToolAdapter
	Options      []server.StreamableHTTPOption
}

func DefaultConfig() Config {
	backend, err := llm.New(llm.Config{
		Provider:    config.LLMProvider(),
		Model:       config.LLMModel(),
		APIKey:      config.OpenAIAPIKey(),
		BaseURL:     config.OpenAIBaseURL(),
		OllamaURL:   config.OllamaURL(),
		CallTimeout: config.LLMTimeout(),
	})
	if err != nil {
		log.Fatalf("failed to init llm backend: %v", err)
	}

	baseLogger := logging.ForLevel(config.LogLevel())
	service := tools.NewGenerateService(tools.GenerateServiceConfig{
		Backend:       backend,
		Prompts:       prompt.FromConfig(config.PromptsFile()),
		MaxDiffTokens: config.MaxDiffTokens(),
		DefaultRepo:   config.RepoPath(),
		Logger:        baseLogger.WithName("mcp"),
	})

	return Config{
		ToolAdapters: map[string]ToolAdapter{
			"generate_changelog": &tools.GenerateChangelogHandler{Service: service},
		},
		Options: []server.StreamableHTTPOption{
			server.WithEndpointPath("/mcp/jsonrpc"),
			server.WithStateLess(true),
		},
	}
}
