package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = Schema{
	Name:       "test_result",
	Properties: map[string]any{"title": map[string]any{"type": "string"}},
	Required:   []string{"title"},
}

type testResult struct {
	Title string `json:"title"`
}

func TestDecodeIntoValidResponse(t *testing.T) {
	var out testResult
	require.NoError(t, decodeInto(`{"title":"v1.0.0"}`, testSchema, &out))
	assert.Equal(t, "v1.0.0", out.Title)
}

func TestDecodeIntoStripsCodeFences(t *testing.T) {
	raw := "```json\n{\"title\":\"v1.0.0\"}\n```"
	var out testResult
	require.NoError(t, decodeInto(raw, testSchema, &out))
	assert.Equal(t, "v1.0.0", out.Title)
}

func TestDecodeIntoRejectsInvalidJSON(t *testing.T) {
	var out testResult
	err := decodeInto(`not json at all {`, testSchema, &out)
	assert.ErrorIs(t, err, ErrSchemaValidation)
}

func TestDecodeIntoRejectsMissingRequiredField(t *testing.T) {
	var out testResult
	err := decodeInto(`{"other":"x"}`, testSchema, &out)
	require.ErrorIs(t, err, ErrSchemaValidation)
	assert.Contains(t, err.Error(), "title")
}

func TestDecodeIntoRejectsNullRequiredField(t *testing.T) {
	var out testResult
	err := decodeInto(`{"title":null}`, testSchema, &out)
	assert.ErrorIs(t, err, ErrSchemaValidation)
}

func TestSchemaDefinitionIsStrict(t *testing.T) {
	def := testSchema.Definition()
	assert.Equal(t, "object", def["type"])
	assert.Equal(t, false, def["additionalProperties"])
	assert.Equal(t, []string{"title"}, def["required"])
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(Config{Provider: "carrier-pigeon"})
	assert.Error(t, err)
}
