package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandEntityContext(t *testing.T) {
	e := newTestExpander()

	exps := e.Expand("what can claude do", TypeCapability)

	require.NotEmpty(t, exps)
	assert.Equal(t, "what can claude do", exps[0], "original query is always first")

	joined := strings.Join(exps, "\n")
	assert.Contains(t, joined, "Anthropic", "organization context injected for detected entity")
	assert.Contains(t, joined, "reasoning", "capability queries append key feature terms")
}

func TestExpandByType(t *testing.T) {
	e := newTestExpander()

	tests := []struct {
		name     string
		query    string
		qtype    Type
		fragment string
		reason   string
	}{
		{
			name:     "performance gains benchmark vocabulary",
			query:    "how fast is gemini",
			qtype:    TypePerformance,
			fragment: "mmlu",
			reason:   "benchmark names expand performance queries",
		},
		{
			name:     "specification suffix",
			query:    "claude context window",
			qtype:    TypeSpecification,
			fragment: "requirements specifications",
			reason:   "specification queries gain a requirements variant",
		},
		{
			name:     "licensing appends category",
			query:    "llama commercial terms",
			qtype:    TypeLicensing,
			fragment: "open-weight language model",
			reason:   "licensing queries append the entity category",
		},
		{
			name:     "comparison appends related terms",
			query:    "gpt-5 versus others",
			qtype:    TypeComparison,
			fragment: "chatgpt",
			reason:   "comparison queries append related entity terms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exps := e.Expand(tt.query, tt.qtype)
			joined := strings.ToLower(strings.Join(exps, "\n"))
			assert.Contains(t, joined, tt.fragment, tt.reason)
		})
	}
}

func TestExpandInvariants(t *testing.T) {
	e := newTestExpander()

	for _, q := range []string{"hello world", "claude vs gpt-5 vs gemini on accuracy", ""} {
		exps := e.Expand(q, TypeComparison)
		assert.LessOrEqual(t, len(exps), MaxSubQueries)

		seen := map[string]bool{}
		for _, x := range exps {
			key := strings.ToLower(x)
			assert.False(t, seen[key], "duplicate expansion %q", x)
			seen[key] = true
		}
	}
}

func TestExpandNoMatchesReturnsOriginal(t *testing.T) {
	e := newTestExpander()

	exps := e.Expand("random unrelated text", TypeGeneral)
	assert.Equal(t, []string{"random unrelated text"}, exps,
		"expansion never fails; with nothing to add it returns the query unchanged")
}
