package retrieval

import (
	"regexp"
	"strings"
)

// topicPattern extracts the first capitalized word sequence from
// content as a coarse pseudo-topic. Any stable, deterministic extractor
// would do here; the goal is capped repetition, not real clustering.
var topicPattern = regexp.MustCompile(`\b[A-Z][a-zA-Z0-9-]*(?:\s+[A-Z][a-zA-Z0-9-]*)*`)

// Diversify greedily keeps the highest-scoring candidates while
// capping how many share the same source document or the same coarse
// topic at topK/2. If fewer than topK survive the caps, the remaining
// highest-scoring candidates backfill regardless of source or topic,
// preserving score order.
//
// Guarantees: output length is min(topK, len(candidates)); no
// candidate appears twice; every output candidate came from the input.
func Diversify(candidates []Candidate, topK int) []Candidate {
	if topK <= 0 {
		return []Candidate{}
	}
	if len(candidates) <= topK {
		out := make([]Candidate, len(candidates))
		copy(out, candidates)
		return out
	}

	maxShared := topK / 2
	if maxShared < 1 {
		maxShared = 1
	}

	sourceCounts := make(map[string]int)
	topicCounts := make(map[string]int)
	picked := make(map[string]bool, topK)
	out := make([]Candidate, 0, topK)

	// Greedy pass under the caps. Candidates arrive sorted by score.
	for _, c := range candidates {
		if len(out) == topK {
			return out
		}
		source := c.DocID
		topic := extractTopic(c.Content)
		if sourceCounts[source] >= maxShared || topicCounts[topic] >= maxShared {
			continue
		}
		sourceCounts[source]++
		topicCounts[topic]++
		picked[c.ChunkID] = true
		out = append(out, c)
	}

	// Backfill pass: ignore the caps, keep score order.
	for _, c := range candidates {
		if len(out) == topK {
			break
		}
		if picked[c.ChunkID] {
			continue
		}
		picked[c.ChunkID] = true
		out = append(out, c)
	}

	return out
}

// extractTopic returns the pseudo-topic for content: the first
// capitalized word sequence, else the first word, lowercased.
func extractTopic(content string) string {
	if m := topicPattern.FindString(content); m != "" {
		return strings.ToLower(m)
	}
	fields := strings.Fields(content)
	if len(fields) > 0 {
		return strings.ToLower(fields[0])
	}
	return ""
}
