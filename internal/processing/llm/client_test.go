package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSONPlainObject(t *testing.T) {
	var out struct {
		Text  string `json:"text"`
		Emoji string `json:"emoji"`
	}
	err := decodeJSON(`{"text": "- short summary", "emoji": "📚"}`, &out)
	require.NoError(t, err)
	assert.Equal(t, "- short summary", out.Text)
	assert.Equal(t, "📚", out.Emoji)
}

func TestDecodeJSONStripsFencesAndProse(t *testing.T) {
	content := "Here is the result:\n```json\n{\"result\": [\"one\", \"two\"]}\n```\nHope that helps!"
	var out struct {
		Result []string `json:"result"`
	}
	err := decodeJSON(content, &out)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, out.Result)
}

func TestDecodeJSONArray(t *testing.T) {
	var out []int
	err := decodeJSON("```\n[1, 2, 3]\n```", &out)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, out)
}

func TestDecodeJSONNoJSON(t *testing.T) {
	var out map[string]any
	err := decodeJSON("sorry, I cannot help with that", &out)
	assert.Error(t, err)
}

func TestSplitBatchesKeepsOrderAndCoverage(t *testing.T) {
	long := strings.Repeat("a", charsPerBatch)
	docs := []string{long, "b", "c", long, "d"}

	batches := splitBatches(docs)
	require.Greater(t, len(batches), 1)

	var flat []string
	for _, b := range batches {
		flat = append(flat, b...)
	}
	assert.Equal(t, docs, flat)
}

func TestSplitBatchesEmpty(t *testing.T) {
	assert.Empty(t, splitBatches(nil))
}

func TestQuoteListEscapes(t *testing.T) {
	out := quoteList([]string{`plain`, `with "quotes"`})
	assert.Contains(t, out, `"plain"`)
	assert.Contains(t, out, `\"quotes\"`)
}
