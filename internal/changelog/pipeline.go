package changelog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-logr/logr"

	"github.com/roivaz/changelog-agent/internal/llm"
	"github.com/roivaz/changelog-agent/internal/logging"
	"github.com/roivaz/changelog-agent/internal/prompt"
)

const (
	enrichTemplate     = "enrich_commit"
	synthesizeTemplate = "generate_changelog"
)

// Config wires a Pipeline. Backend is required; Prompts defaults to the
// embedded templates. Progress, when set, is invoked after each completed
// enrichment with the number done and the total.
type Config struct {
	Backend       llm.Backend
	Prompts       *prompt.Store
	MaxDiffTokens int
	Progress      func(done, total int)
	Logger        logr.Logger
}

// Pipeline orchestrates the two-stage enrich-then-synthesize flow. It holds
// no state across runs; every Run invocation is independent.
type Pipeline struct {
	backend       llm.Backend
	prompts       *prompt.Store
	maxDiffTokens int
	progress      func(done, total int)
	log           logging.Logger
}

func New(cfg Config) (*Pipeline, error) {
	if cfg.Backend == nil {
		return nil, errors.New("pipeline requires an llm backend")
	}
	prompts := cfg.Prompts
	if prompts == nil {
		prompts = prompt.Default()
	}
	if err := prompts.Load(); err != nil {
		return nil, err
	}
	return &Pipeline{
		backend:       cfg.Backend,
		prompts:       prompts,
		maxDiffTokens: cfg.MaxDiffTokens,
		progress:      cfg.Progress,
		log:           logging.New(cfg.Logger).WithName("pipeline"),
	}, nil
}

// Enrich classifies a single commit. The commit diff is clipped to the
// configured token budget before prompting. Any backend or validation
// failure propagates unchanged; there is no retry.
func (p *Pipeline) Enrich(ctx context.Context, commit Commit) (EnrichedCommit, error) {
	diff := clipToTokens(commit.Diff, p.maxDiffTokens)
	if diff != commit.Diff {
		p.log.Debug("clipped oversized diff", "commit", commit.Hash, "budget_tokens", p.maxDiffTokens)
	}

	rendered, err := p.prompts.Render(enrichTemplate, map[string]string{
		"commit_message": commit.Message,
		"diff":           diff,
	})
	if err != nil {
		return EnrichedCommit{}, err
	}

	var enrichment Enrichment
	if err := p.backend.Generate(ctx, messagesFrom(rendered), EnrichmentSchema(), &enrichment); err != nil {
		return EnrichedCommit{}, fmt.Errorf("enrich commit %s: %w", commit.Hash, err)
	}
	if err := enrichment.Validate(); err != nil {
		return EnrichedCommit{}, fmt.Errorf("enrich commit %s: %w", commit.Hash, err)
	}

	return Merge(commit, enrichment), nil
}

// Synthesize combines the enriched commits, in the order given, into one
// changelog document. An empty slice is valid input: the synthesis call is
// still made and the model decides how to summarize "no changes".
func (p *Pipeline) Synthesize(ctx context.Context, enriched []EnrichedCommit, template string) (Document, error) {
	if template == "" {
		template = DefaultTemplate
	}

	rendered, err := p.prompts.Render(synthesizeTemplate, map[string]string{
		"commits":  formatCommits(enriched),
		"template": template,
	})
	if err != nil {
		return Document{}, err
	}

	var doc Document
	if err := p.backend.Generate(ctx, messagesFrom(rendered), DocumentSchema(), &doc); err != nil {
		return Document{}, fmt.Errorf("synthesize changelog: %w", err)
	}
	return doc, nil
}

// Run enriches every commit strictly sequentially and in input order, then
// synthesizes once over the accumulated results. The first enrichment
// failure aborts the run before any synthesis call.
func (p *Pipeline) Run(ctx context.Context, commits []Commit, template string) (Document, error) {
	enriched := make([]EnrichedCommit, 0, len(commits))
	for i, commit := range commits {
		p.log.Info("enriching commit", "index", i+1, "total", len(commits), "commit", commit.Hash)
		ec, err := p.Enrich(ctx, commit)
		if err != nil {
			return Document{}, err
		}
		enriched = append(enriched, ec)
		if p.progress != nil {
			p.progress(i+1, len(commits))
		}
	}

	p.log.Info("synthesizing changelog", "commits", len(enriched))
	return p.Synthesize(ctx, enriched, template)
}

// formatCommits renders each enriched commit as a fixed three-line block,
// preserving the caller's order.
func formatCommits(enriched []EnrichedCommit) string {
	blocks := make([]string, 0, len(enriched))
	for _, ec := range enriched {
		blocks = append(blocks, fmt.Sprintf(
			"\nCommit Message: %s\n\nDescription: %s\n\nCategory: %s",
			ec.Message, ec.Description, ec.Category,
		))
	}
	return strings.Join(blocks, "\n")
}

func messagesFrom(rendered prompt.Rendered) []llm.Message {
	var msgs []llm.Message
	if rendered.System != nil {
		msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: *rendered.System})
	}
	if rendered.User != nil {
		msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: *rendered.User})
	}
	return msgs
}
