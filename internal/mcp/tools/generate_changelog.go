package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/changelog-agent/internal/changelog"
	"github.com/roivaz/changelog-agent/internal/gitrepo"
	"github.com/roivaz/changelog-agent/internal/llm"
	"github.com/roivaz/changelog-agent/internal/prompt"
)

// GenerateRequest carries the arguments of one generate_changelog call.
type GenerateRequest struct {
	RepoPath string
	FromRef  string
	ToRef    string
	Auto     bool
	Template string
}

type GenerateService interface {
	Generate(ctx context.Context, req GenerateRequest) (changelog.Document, error)
}

type GenerateChangelogHandler struct {
	Service GenerateService
}

type GenerateServiceConfig struct {
	Backend       llm.Backend
	Prompts       *prompt.Store
	MaxDiffTokens int
	DefaultRepo   string
	Logger        logr.Logger
}

type pipelineGenerateService struct {
	cfg GenerateServiceConfig
}

func NewGenerateService(cfg GenerateServiceConfig) GenerateService {
	return &pipelineGenerateService{cfg: cfg}
}

func (s *pipelineGenerateService) Generate(ctx context.Context, req GenerateRequest) (changelog.Document, error) {
	repoPath := req.RepoPath
	if repoPath == "" {
		repoPath = s.cfg.DefaultRepo
	}
	repo := gitrepo.New(repoPath)
	if !repo.IsRepo(ctx) {
		return changelog.Document{}, fmt.Errorf("%s is not a git repository", repoPath)
	}

	fromRef := req.FromRef
	if req.Auto {
		tag, err := repo.LatestTag(ctx)
		if err != nil {
			return changelog.Document{}, err
		}
		if tag == "" {
			return changelog.Document{}, fmt.Errorf("no tags found in %s", repoPath)
		}
		fromRef = tag
	}
	if fromRef == "" {
		return changelog.Document{}, fmt.Errorf("from_ref is required unless auto is set")
	}

	records, err := repo.CommitsBetween(ctx, fromRef, req.ToRef)
	if err != nil {
		return changelog.Document{}, err
	}

	commits := make([]changelog.Commit, 0, len(records))
	for _, rec := range records {
		commits = append(commits, changelog.Commit{Hash: rec.Hash, Message: rec.Message, Diff: rec.Diff})
	}

	pipeline, err := changelog.New(changelog.Config{
		Backend:       s.cfg.Backend,
		Prompts:       s.cfg.Prompts,
		MaxDiffTokens: s.cfg.MaxDiffTokens,
		Logger:        s.cfg.Logger,
	})
	if err != nil {
		return changelog.Document{}, err
	}
	return pipeline.Run(ctx, commits, req.Template)
}

func (h *GenerateChangelogHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	generateReq := GenerateRequest{
		RepoPath: stringArgument(args, "repo_path"),
		FromRef:  stringArgument(args, "from_ref"),
		ToRef:    stringArgument(args, "to_ref"),
		Template: stringArgument(args, "template"),
	}
	if auto, ok := args["auto"].(bool); ok {
		generateReq.Auto = auto
	}

	doc, err := h.Service.Generate(ctx, generateReq)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultJSON(payload)
}

func stringArgument(args map[string]any, key string) string {
	value, _ := args[key].(string)
	return value
}
