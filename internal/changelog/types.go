// Package changelog implements the enrich-then-synthesize pipeline that turns
// raw git commits into a changelog document via two kinds of LLM calls: one
// per commit to classify and describe it, and one final call to synthesize
// the document.
package changelog

import (
	"fmt"

	"github.com/roivaz/changelog-agent/internal/llm"
)

// Category classifies a commit. The set is closed; any other value coming
// back from the model is a validation failure, not a new category.
type Category string

const (
	CategoryFeature       Category = "feature"
	CategoryBugFix        Category = "bug_fix"
	CategoryRefactor      Category = "refactor"
	CategoryDocumentation Category = "documentation"
	CategoryTest          Category = "test"
	CategoryChore         Category = "chore"
	CategoryStyle         Category = "style"
	CategorySecurity      Category = "security"
	CategoryPerformance   Category = "performance"
)

// Categories lists every valid category in a stable order.
var Categories = []Category{
	CategoryFeature,
	CategoryBugFix,
	CategoryRefactor,
	CategoryDocumentation,
	CategoryTest,
	CategoryChore,
	CategoryStyle,
	CategorySecurity,
	CategoryPerformance,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Commit is one unit of change to be classified. It is produced by a commit
// source (local git or GitHub) and consumed read-only by the pipeline.
type Commit struct {
	Hash    string `json:"hash"`
	Message string `json:"message"`
	Diff    string `json:"diff"`
}

// Enrichment is the model's classification of a single commit.
type Enrichment struct {
	Category    Category `json:"category"`
	Description string   `json:"description"`
}

// Validate rejects categories outside the closed set.
func (e Enrichment) Validate() error {
	if !e.Category.Valid() {
		return fmt.Errorf("%w (enrichment): unknown category %q", llm.ErrSchemaValidation, e.Category)
	}
	return nil
}

// EnrichedCommit carries every field of the source commit plus its
// enrichment. It is only ever constructed by Merge, so no partial states
// exist.
type EnrichedCommit struct {
	Hash        string   `json:"hash"`
	Message     string   `json:"message"`
	Diff        string   `json:"diff"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
}

// Merge composes a commit and its enrichment into one record.
func Merge(c Commit, e Enrichment) EnrichedCommit {
	return EnrichedCommit{
		Hash:        c.Hash,
		Message:     c.Message,
		Diff:        c.Diff,
		Category:    e.Category,
		Description: e.Description,
	}
}

// Document is the terminal artifact of a pipeline run. Description and
// summary are free-form text; the pipeline does not parse them.
type Document struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Summary     string `json:"summary"`
}

// EnrichmentSchema declares the output shape of the per-commit call.
func EnrichmentSchema() llm.Schema {
	enum := make([]string, len(Categories))
	for i, c := range Categories {
		enum[i] = string(c)
	}
	return llm.Schema{
		Name:        "commit_enrichment",
		Description: "Category and description for a single git commit",
		Properties: map[string]any{
			"category":    map[string]any{"type": "string", "enum": enum},
			"description": map[string]any{"type": "string"},
		},
		Required: []string{"category", "description"},
	}
}

// DocumentSchema declares the output shape of the synthesis call.
func DocumentSchema() llm.Schema {
	return llm.Schema{
		Name:        "changelog_document",
		Description: "Changelog with title, description and summary",
		Properties: map[string]any{
			"title":       map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
			"summary":     map[string]any{"type": "string"},
		},
		Required: []string{"title", "description", "summary"},
	}
}
