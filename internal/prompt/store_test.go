package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrompts = `
enrich_commit:
  system: "You are a {role}."
  user: "Analyze this commit: {commit_message}\n\nDiff:\n{diff}"
generate_changelog:
  user: "Create changelog from: {commits}"
system_only:
  system: "System message with {param}."
empty_template: {}
with_metadata:
  system: "Raw {param} system."
  user: "Raw {param} user."
  metadata:
    description: Test prompt
`

func writePrompts(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prompts.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRenderSubstitutesAllPlaceholders(t *testing.T) {
	store := NewStoreFromBytes([]byte(testPrompts))

	rendered, err := store.Render("enrich_commit", map[string]string{
		"role":           "software engineer",
		"commit_message": "Add dark mode",
		"diff":           "+DarkTheme",
		"unused":         "ignored", // superset values are allowed
	})
	require.NoError(t, err)

	require.NotNil(t, rendered.System)
	require.NotNil(t, rendered.User)
	assert.Equal(t, "You are a software engineer.", *rendered.System)
	assert.Contains(t, *rendered.User, "Add dark mode")
	assert.Contains(t, *rendered.User, "+DarkTheme")
	assert.NotContains(t, *rendered.System, "{")
	assert.NotContains(t, *rendered.User, "{")
}

func TestRenderMissingValueFails(t *testing.T) {
	store := NewStoreFromBytes([]byte(testPrompts))

	_, err := store.Render("enrich_commit", map[string]string{
		"role":           "engineer",
		"commit_message": "msg",
		// diff missing
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingValue)
	assert.Contains(t, err.Error(), "diff")
}

func TestRenderUnknownTemplateFails(t *testing.T) {
	store := NewStoreFromBytes([]byte(testPrompts))

	_, err := store.Render("does_not_exist", map[string]string{})
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestRenderOmitsAbsentFragments(t *testing.T) {
	store := NewStoreFromBytes([]byte(testPrompts))

	rendered, err := store.Render("generate_changelog", map[string]string{"commits": "c1"})
	require.NoError(t, err)
	assert.Nil(t, rendered.System)
	require.NotNil(t, rendered.User)
	assert.Equal(t, "Create changelog from: c1", *rendered.User)

	rendered, err = store.Render("system_only", map[string]string{"param": "test"})
	require.NoError(t, err)
	require.NotNil(t, rendered.System)
	assert.Nil(t, rendered.User)
}

func TestRenderEmptyTemplate(t *testing.T) {
	store := NewStoreFromBytes([]byte(testPrompts))

	rendered, err := store.Render("empty_template", nil)
	require.NoError(t, err)
	assert.Nil(t, rendered.System)
	assert.Nil(t, rendered.User)
}

func TestRenderValuesAreNotReExpanded(t *testing.T) {
	store := NewStoreFromBytes([]byte(testPrompts))

	rendered, err := store.Render("system_only", map[string]string{
		"param": "literal {braces} stay",
	})
	require.NoError(t, err)
	assert.Equal(t, "System message with literal {braces} stay.", *rendered.System)
}

func TestLoadSourceMissing(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.yml"))

	_, err := store.Render("anything", nil)
	assert.ErrorIs(t, err, ErrSourceMissing)
}

func TestLoadSourceMalformed(t *testing.T) {
	cases := map[string]string{
		"invalid yaml":     "invalid: yaml: content: [",
		"non-mapping":      "- just\n- a\n- list\n",
		"non-string field": "tmpl:\n  system: 42\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			store := NewStore(writePrompts(t, content))
			_, err := store.Render("tmpl", nil)
			assert.ErrorIs(t, err, ErrSourceMalformed)
		})
	}
}

func TestTemplatesLoadedOnce(t *testing.T) {
	path := writePrompts(t, testPrompts)
	store := NewStore(path)

	_, err := store.Render("system_only", map[string]string{"param": "a"})
	require.NoError(t, err)

	// Deleting the backing file must not affect an already-loaded store.
	require.NoError(t, os.Remove(path))
	rendered, err := store.Render("system_only", map[string]string{"param": "b"})
	require.NoError(t, err)
	assert.Equal(t, "System message with b.", *rendered.System)

	// A fresh store sees the deletion.
	_, err = NewStore(path).Render("system_only", map[string]string{"param": "c"})
	assert.ErrorIs(t, err, ErrSourceMissing)
}

func TestStructurePreservesMetadata(t *testing.T) {
	store := NewStoreFromBytes([]byte(testPrompts))

	structure, err := store.Structure("with_metadata")
	require.NoError(t, err)
	assert.Contains(t, structure, "metadata")
	assert.Equal(t, "Raw {param} system.", structure["system"]) // placeholders intact

	_, err = store.Structure("nope")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestNames(t *testing.T) {
	store := NewStoreFromBytes([]byte(testPrompts))

	names, err := store.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"empty_template", "enrich_commit", "generate_changelog", "system_only", "with_metadata",
	}, names)
}

func TestDefaultStoreRendersShippedTemplates(t *testing.T) {
	store := Default()

	enrich, err := store.Render("enrich_commit", map[string]string{
		"commit_message": "Fix login bug",
		"diff":           "-broken\n+fixed",
	})
	require.NoError(t, err)
	require.NotNil(t, enrich.System)
	require.NotNil(t, enrich.User)
	assert.Contains(t, *enrich.User, "Fix login bug")

	synth, err := store.Render("generate_changelog", map[string]string{
		"commits":  "Commit Message: Fix login bug",
		"template": "### Fixed",
	})
	require.NoError(t, err)
	require.NotNil(t, synth.User)
	assert.Contains(t, *synth.User, "### Fixed")
	assert.False(t, strings.Contains(*synth.User, "{commits}"))
}
