package evaluate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpusgap/corpusgap/internal/errors"
)

func writeQuestions(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadQuestionsList(t *testing.T) {
	path := writeQuestions(t, `
- question: "What does the API cost?"
  role: customer
- question: "How do I deploy?"
  role: developer
`)

	questions, err := LoadQuestions(path)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "What does the API cost?", questions[0].Question)
	assert.Equal(t, "customer", questions[0].Role)
}

func TestLoadQuestionsMapForm(t *testing.T) {
	path := writeQuestions(t, `
questions:
  - question: "What does the API cost?"
    role: customer
`)

	questions, err := LoadQuestions(path)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "customer", questions[0].Role)
}

func TestLoadQuestionsSkipsBlankEntries(t *testing.T) {
	path := writeQuestions(t, `
- question: "  Real question  "
- question: "   "
  role: support
`)

	questions, err := LoadQuestions(path)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "Real question", questions[0].Question)
}

func TestLoadQuestionsMissingRole(t *testing.T) {
	path := writeQuestions(t, `
- question: "Anything?"
`)

	questions, err := LoadQuestions(path)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Empty(t, questions[0].Role)
}

func TestLoadQuestionsMissingFile(t *testing.T) {
	_, err := LoadQuestions(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFileNotFound, errors.GetCode(err))
}

func TestLoadQuestionsInvalidYAML(t *testing.T) {
	path := writeQuestions(t, "question: [unclosed")

	_, err := LoadQuestions(path)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeQuestionsInvalid, errors.GetCode(err))
}

func TestLoadQuestionsEmptySet(t *testing.T) {
	path := writeQuestions(t, "questions: []")

	_, err := LoadQuestions(path)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeQuestionsInvalid, errors.GetCode(err))
}
