package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDefinitionTerm(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"define serendipity", "serendipity"},
		{"What is Mercury?", "Mercury"},
		{"what's the capital of France", "the capital of France"},
		{"definition of the word ephemeral.", "ephemeral"},
		{"what does ubiquitous mean?", "ubiquitous"},
		{"tell me about Ada Lovelace!", "Ada Lovelace"},
		{"who was Alan Turing", "Alan Turing"},
		{`what is "black hole"`, "black hole"},
		{"explain 'entropy' please", "entropy"},
		{"quantum tunnelling", "quantum tunnelling"},
		{"I keep hearing about the halting problem", "the halting problem"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ExtractDefinitionTerm(tt.input)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractDefinitionTerm_Limits(t *testing.T) {
	_, ok := ExtractDefinitionTerm("   ")
	assert.False(t, ok)

	_, ok = ExtractDefinitionTerm(`what is "?"`)
	assert.False(t, ok)

	got, ok := ExtractDefinitionTerm("define " + strings.Repeat("a", 150))
	assert.True(t, ok)
	assert.Len(t, got, MaxTermLength)
}

func TestIsDefinitionQuery(t *testing.T) {
	assert.True(t, IsDefinitionQuery("What's a quasar"))
	assert.True(t, IsDefinitionQuery("tell me about rome"))
	assert.False(t, IsDefinitionQuery("write me a poem"))
	assert.False(t, IsDefinitionQuery("undefined behaviour"))
}

func TestSelectionParsing(t *testing.T) {
	assert.True(t, IsCancel(" Never Mind "))
	assert.True(t, IsCancel("nevermind"))
	assert.False(t, IsCancel("cancel it"))

	n, ok := ParseNumber(" 2 ")
	assert.True(t, ok)
	assert.Equal(t, 2, n)
	_, ok = ParseNumber("2nd")
	assert.False(t, ok)

	n, ok = ParseOrdinal("the Second one")
	assert.True(t, ok)
	assert.Equal(t, 2, n)
	_, ok = ParseOrdinal("sixth")
	assert.False(t, ok)
}
