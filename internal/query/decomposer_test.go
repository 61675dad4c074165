package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExpander() *Expander {
	return NewExpander(NewUnderstanding(nil))
}

func TestDecomposeComparison(t *testing.T) {
	e := newTestExpander()

	subs := e.Decompose("Compare GPT-5 and Claude on reasoning")

	require.NotEmpty(t, subs)
	assert.Equal(t, "Compare GPT-5 and Claude on reasoning", subs[0], "original query is always first")

	joined := strings.ToLower(strings.Join(subs, "\n"))
	var gptAlone, claudeAlone bool
	for _, s := range subs[1:] {
		lower := strings.ToLower(s)
		if strings.Contains(lower, "gpt-5") && !strings.Contains(lower, "claude") {
			gptAlone = true
		}
		if strings.Contains(lower, "claude") && !strings.Contains(lower, "gpt-5") {
			claudeAlone = true
		}
	}
	assert.True(t, gptAlone, "expected a sub-query referencing gpt-5 individually, got: %s", joined)
	assert.True(t, claudeAlone, "expected a sub-query referencing claude individually, got: %s", joined)
}

func TestDecomposeAspects(t *testing.T) {
	e := newTestExpander()

	subs := e.Decompose("claude cost and performance overview")

	joined := strings.ToLower(strings.Join(subs, "\n"))
	assert.Contains(t, joined, "claude performance")
	assert.Contains(t, joined, "claude cost")
}

func TestDecomposeConjunctions(t *testing.T) {
	e := newTestExpander()

	subs := e.Decompose("claude context limits and output formats")

	require.GreaterOrEqual(t, len(subs), 2)
	// The clause after "and" loses the subject; it must be re-anchored.
	var anchored bool
	for _, s := range subs[1:] {
		if strings.Contains(strings.ToLower(s), "claude") && strings.Contains(s, "output formats") {
			anchored = true
		}
	}
	assert.True(t, anchored, "conjunction clause should be anchored on the main subject: %v", subs)
}

func TestDecomposeInvariants(t *testing.T) {
	e := newTestExpander()

	queries := []string{
		"",
		"claude",
		"Compare GPT-5 and Claude on reasoning",
		"performance and cost and safety and accuracy and speed of llama",
		"what is a context window",
	}

	for _, q := range queries {
		subs := e.Decompose(q)

		assert.LessOrEqual(t, len(subs), MaxSubQueries, "query %q", q)

		if strings.TrimSpace(q) != "" {
			require.NotEmpty(t, subs, "query %q", q)
			assert.Equal(t, q, subs[0], "original always included first")
		}

		seen := map[string]bool{}
		for _, s := range subs {
			key := strings.ToLower(s)
			assert.False(t, seen[key], "duplicate sub-query %q for %q", s, q)
			seen[key] = true
		}
	}
}

func TestDecomposeSimpleQueryUnchanged(t *testing.T) {
	e := newTestExpander()

	subs := e.Decompose("what is a context window")
	assert.Equal(t, []string{"what is a context window"}, subs,
		"no comparison, single aspect, no conjunction: nothing to split")
}
