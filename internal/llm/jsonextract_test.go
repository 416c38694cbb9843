package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/brankow/citation-extraction/pkg/errors"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"plain object",
			`{"references": []}`,
			`{"references": []}`,
		},
		{
			"markdown fence",
			"```json\n{\"references\": []}\n```",
			`{"references": []}`,
		},
		{
			"think tags",
			"<think></think>{\"references\": []}",
			`{"references": []}`,
		},
		{
			"leading prose",
			`Here is the JSON you asked for: {"references": []}`,
			`{"references": []}`,
		},
		{
			"trailing prose discarded",
			`{"references": []} I hope that helps!`,
			`{"references": []}`,
		},
		{
			"trailing comma repaired",
			`{"references": [{"title": "A",}],}`,
			`{"references": [{"title": "A"}]}`,
		},
		{
			"non-breaking spaces",
			"{\"title\":\u00a0\"A\"}",
			`{"title": "A"}`,
		},
		{
			"brace inside string value",
			`{"title": "formula {x}"}`,
			`{"title": "formula {x}"}`,
		},
		{
			"double-escaped newlines between tokens",
			`{\n"references": []\n}`,
			"{\n\"references\": []\n}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, json.Valid([]byte(got)), "result must be valid JSON: %s", got)
		})
	}
}

func TestExtractJSON_ThinkBlockBeforeObject(t *testing.T) {
	// The tags go; the enclosed text stays but the brace scan skips past it.
	got, err := ExtractJSON("<think>\nreasoning...\n</think>\n{\"accessions\": []}")
	require.NoError(t, err)
	assert.Equal(t, `{"accessions": []}`, got)
}

func TestExtractJSON_NoObject(t *testing.T) {
	_, err := ExtractJSON("I could not find any references in the text.")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeLLMMalformedJSON))
}

func TestExtractJSON_UnbalancedBraces(t *testing.T) {
	_, err := ExtractJSON(`{"references": [{"title": "A"}`)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeLLMMalformedJSON))
}

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"author": ["unknown"]}`, `{"author": []}`},
		{`{"author": ["Unknown"]}`, `{"author": []}`},
		{`{"publisher": "unknown"}`, `{"publisher": ""}`},
		{`{"publisher": "Unknown"}`, `{"publisher": ""}`},
		{`{"title": "An unknown protein"}`, `{"title": "An unknown protein"}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanResponse(tt.in), "input %s", tt.in)
	}
}
