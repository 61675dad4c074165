package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/corpusgap/corpusgap/internal/store"
)

// Chunking defaults, tuned for prose rather than code.
const (
	DefaultChunkSize    = 1200 // characters per chunk
	DefaultChunkOverlap = 200  // characters carried into the next chunk
	minChunkRemainder   = 100  // tail shorter than this merges into the previous chunk
)

// Chunker splits document content into overlapping windows. Breaks
// prefer paragraph boundaries, then sentence ends, then whitespace, so
// chunks stay readable.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a chunker. Non-positive size or overlap fall back
// to the defaults; overlap is clamped below size.
func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultChunkOverlap
	}
	if overlap >= size {
		overlap = size / 4
	}
	return &Chunker{size: size, overlap: overlap}
}

// Chunk splits a document into store.Chunks. Chunk IDs are content
// addressed so re-ingesting unchanged content is idempotent.
func (c *Chunker) Chunk(doc *store.Document) []*store.Chunk {
	content := strings.TrimSpace(doc.Content)
	if content == "" {
		return nil
	}

	runes := []rune(content)
	var chunks []*store.Chunk
	start := 0
	position := 0

	for start < len(runes) {
		end := start + c.size
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = c.breakPoint(runes, start, end)
			// Merge a tiny tail into this chunk instead of emitting a
			// fragment.
			if len(runes)-end < minChunkRemainder {
				end = len(runes)
			}
		}

		text := strings.TrimSpace(string(runes[start:end]))
		if text != "" {
			chunks = append(chunks, &store.Chunk{
				ID:       chunkID(doc.ID, text),
				DocID:    doc.ID,
				Title:    doc.Title,
				Content:  text,
				Position: position,
			})
			position++
		}

		if end >= len(runes) {
			break
		}
		next := end - c.overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks
}

// breakPoint finds a natural break at or before end: paragraph break,
// then sentence end, then whitespace. Falls back to the hard cut.
func (c *Chunker) breakPoint(runes []rune, start, end int) int {
	// Do not search back past half the window.
	floor := start + c.size/2

	for i := end; i > floor; i-- {
		if i < len(runes) && runes[i] == '\n' && i > 0 && runes[i-1] == '\n' {
			return i
		}
	}
	for i := end; i > floor; i-- {
		r := runes[i-1]
		if r == '.' || r == '!' || r == '?' {
			return i
		}
	}
	for i := end; i > floor; i-- {
		if runes[i-1] == ' ' || runes[i-1] == '\n' || runes[i-1] == '\t' {
			return i
		}
	}
	return end
}

// chunkID derives a stable content-addressed chunk ID.
func chunkID(docID, content string) string {
	hash := sha256.Sum256([]byte(docID + "\x00" + content))
	return hex.EncodeToString(hash[:])[:24]
}
