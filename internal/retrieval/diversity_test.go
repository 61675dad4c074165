package retrieval

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiversifyOutputLength(t *testing.T) {
	tests := []struct {
		name       string
		candidates int
		topK       int
		want       int
		reason     string
	}{
		{"more candidates than k", 20, 5, 5, "output is capped at top-k"},
		{"fewer candidates than k", 3, 5, 3, "short pools pass through whole"},
		{"exactly k", 5, 5, 5, "boundary case keeps everything"},
		{"zero k", 10, 0, 0, "non-positive k yields nothing"},
		{"empty pool", 0, 5, 0, "empty input yields empty output"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidates := make([]Candidate, tt.candidates)
			for i := range candidates {
				candidates[i] = Candidate{
					ChunkID:    fmt.Sprintf("c%d", i),
					DocID:      fmt.Sprintf("doc%d", i),
					Content:    fmt.Sprintf("Topic%d content body", i),
					FinalScore: 1.0 - float64(i)*0.01,
				}
			}

			out := Diversify(candidates, tt.topK)
			require.Len(t, out, tt.want, tt.reason)

			seen := make(map[string]bool)
			for _, c := range out {
				assert.False(t, seen[c.ChunkID], "candidate %s selected twice", c.ChunkID)
				seen[c.ChunkID] = true
			}
		})
	}
}

func TestDiversifyCapsPerSource(t *testing.T) {
	// Six candidates from two documents; with top-k 4 each document may
	// contribute at most two, so the third chunk of the stronger
	// document yields its slot to the weaker document.
	candidates := []Candidate{
		{ChunkID: "a1", DocID: "docA", Content: "Alpha one", FinalScore: 0.95},
		{ChunkID: "a2", DocID: "docA", Content: "Bravo two", FinalScore: 0.90},
		{ChunkID: "a3", DocID: "docA", Content: "Charlie three", FinalScore: 0.85},
		{ChunkID: "b1", DocID: "docB", Content: "Delta four", FinalScore: 0.80},
		{ChunkID: "b2", DocID: "docB", Content: "Echo five", FinalScore: 0.75},
		{ChunkID: "b3", DocID: "docB", Content: "Foxtrot six", FinalScore: 0.70},
	}

	out := Diversify(candidates, 4)
	require.Len(t, out, 4)

	ids := []string{out[0].ChunkID, out[1].ChunkID, out[2].ChunkID, out[3].ChunkID}
	assert.Equal(t, []string{"a1", "a2", "b1", "b2"}, ids,
		"a3 is skipped for the source cap and docB backstops the remaining slots")
}

func TestDiversifyBackfillsWhenCapsStarve(t *testing.T) {
	// Everything shares one source and one topic. The greedy pass can
	// seat only two under the caps; backfill must still deliver top-k,
	// in score order.
	candidates := make([]Candidate, 6)
	for i := range candidates {
		candidates[i] = Candidate{
			ChunkID:    fmt.Sprintf("c%d", i),
			DocID:      "only-doc",
			Content:    "Shared Topic paragraph",
			FinalScore: 1.0 - float64(i)*0.1,
		}
	}

	out := Diversify(candidates, 4)
	require.Len(t, out, 4, "caps never shrink the output below min(k, len)")
	for i, c := range out {
		assert.Equal(t, fmt.Sprintf("c%d", i), c.ChunkID, "backfill preserves score order")
	}
}

func TestExtractTopic(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{"The GPT-5 Model handles long documents", "the gpt-5 model"},
		{"all lowercase text here", "all"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, extractTopic(tt.content))
	}
}
