// Package evaluate runs a question set through the retrieval pipeline
// and scores how well the corpus answers each question.
package evaluate

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/corpusgap/corpusgap/internal/errors"
)

// Question is one evaluation query with the audience role that asks it.
type Question struct {
	Question string `yaml:"question"`
	Role     string `yaml:"role,omitempty"`
}

// questionFile accepts both a bare list and a {questions: [...]} map.
type questionFile struct {
	Questions []Question `yaml:"questions"`
}

// LoadQuestions reads a YAML question set from path. Questions with
// empty text are dropped; an entirely empty set is an error.
func LoadQuestions(path string) ([]Question, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound,
			fmt.Sprintf("question file not found: %s", path), err)
	}
	if err != nil {
		return nil, errors.IOError(fmt.Sprintf("failed to read %s", path), err)
	}

	questions, err := parseQuestions(data)
	if err != nil {
		return nil, errors.New(errors.ErrCodeQuestionsInvalid,
			fmt.Sprintf("invalid question file %s", path), err).
			WithSuggestion("expected a YAML list of {question, role} entries")
	}
	if len(questions) == 0 {
		return nil, errors.New(errors.ErrCodeQuestionsInvalid,
			fmt.Sprintf("no questions in %s", path), nil)
	}

	return questions, nil
}

func parseQuestions(data []byte) ([]Question, error) {
	var list []Question
	listErr := yaml.Unmarshal(data, &list)
	if listErr != nil {
		var file questionFile
		if mapErr := yaml.Unmarshal(data, &file); mapErr != nil {
			return nil, listErr
		}
		list = file.Questions
	} else if len(list) == 0 {
		// A map payload parses into an empty list; retry as a map.
		var file questionFile
		if mapErr := yaml.Unmarshal(data, &file); mapErr == nil {
			list = file.Questions
		}
	}

	questions := make([]Question, 0, len(list))
	for _, q := range list {
		q.Question = strings.TrimSpace(q.Question)
		q.Role = strings.TrimSpace(q.Role)
		if q.Question == "" {
			continue
		}
		questions = append(questions, q)
	}
	return questions, nil
}
