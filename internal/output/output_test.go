package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriter_Status_PrintsIconAndMessage(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Status("📚", "Corpus: 12 documents, 48 chunks")

	output := buf.String()
	assert.Contains(t, output, "📚")
	assert.Contains(t, output, "Corpus: 12 documents, 48 chunks")
}

func TestWriter_Status_EmptyIconIndents(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Status("", "success rate: 67%")

	// Iconless lines align under iconed ones.
	assert.Equal(t, "   success rate: 67%\n", buf.String())
}

func TestWriter_Success_PrintsCheckmark(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Success("Indexed 48 chunks from 12 documents")

	output := buf.String()
	assert.Contains(t, output, "✅")
	assert.Contains(t, output, "Indexed 48 chunks from 12 documents")
}

func TestWriter_Warning_PrintsWarningIcon(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Warning("keyword search degraded, using vector scores only")

	output := buf.String()
	assert.Contains(t, output, "⚠️")
	assert.Contains(t, output, "keyword search degraded")
}

func TestWriter_Error_PrintsErrorIcon(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Error("no index found")

	output := buf.String()
	assert.Contains(t, output, "❌")
	assert.Contains(t, output, "no index found")
}

func TestWriter_Code_IndentsSnippet(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Code("The API is billed per million tokens.\nVolume discounts apply.")

	output := buf.String()
	assert.Contains(t, output, "  The API is billed per million tokens.\n")
	assert.Contains(t, output, "  Volume discounts apply.\n")
	assert.True(t, strings.HasPrefix(output, "\n"), "snippet block opens with a blank line")
	assert.True(t, strings.HasSuffix(output, "\n\n"), "snippet block closes with a blank line")
}

func TestWriter_Progress_PrintsBarAndPercent(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Progress(24, 48, "embedding chunks")

	output := buf.String()
	assert.Contains(t, output, "50%")
	assert.Contains(t, output, "embedding chunks")
	assert.Contains(t, output, "\r", "bar redraws in place")
	assert.NotContains(t, output, "\n", "line stays open before completion")
}

func TestWriter_Progress_CompletionEndsLine(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Progress(48, 48, "embedding chunks")

	assert.Contains(t, buf.String(), "100%")
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestWriter_Progress_ZeroTotal_NoOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Progress(0, 0, "embedding chunks")

	assert.Empty(t, buf.String())
}

func TestWriter_Statusf_FormatsMessage(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Statusf("📄", "Loaded %d documents from %s", 12, "./docs")

	output := buf.String()
	assert.Contains(t, output, "📄")
	assert.Contains(t, output, "Loaded 12 documents from ./docs")
}

func TestProgressBar_Render(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		total    int
		width    int
		wantFull int
	}{
		{"empty", 0, 48, 10, 0},
		{"half", 24, 48, 10, 5},
		{"full", 48, 48, 10, 10},
		{"quarter wide", 12, 48, 20, 5},
		{"overshoot clamps", 60, 48, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := renderProgressBar(tt.current, tt.total, tt.width)

			assert.Equal(t, tt.wantFull, strings.Count(bar, "█"))
			assert.Equal(t, tt.width, len([]rune(bar)))
		})
	}
}

func TestWriter_Newline_PrintsEmptyLine(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Newline()

	assert.Equal(t, "\n", buf.String())
}
