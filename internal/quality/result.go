package quality

// RetrievedDoc is one retrieved document reference carried on a
// result for reporting.
type RetrievedDoc struct {
	Title      string  `json:"title" yaml:"title"`
	Similarity float64 `json:"similarity" yaml:"similarity"`
}

// Result records retrieval quality for one evaluated question.
type Result struct {
	// Question is the evaluated query text.
	Question string `json:"question" yaml:"question"`

	// Role labels the question's persona or source group. Blank means
	// ungrouped; gap analysis folds those under a general bucket.
	Role string `json:"role,omitempty" yaml:"role,omitempty"`

	// Similarity is the averaged retrieval similarity in [0,1].
	Similarity float64 `json:"similarity" yaml:"similarity"`

	// Score is the 0-10 quality score derived from Similarity.
	Score float64 `json:"score" yaml:"score"`

	// Status is the quality band for Score.
	Status Status `json:"status" yaml:"status"`

	// Documents are the retrieved documents behind the score.
	Documents []RetrievedDoc `json:"documents,omitempty" yaml:"documents,omitempty"`
}

// NewResult builds a scored result from an averaged similarity,
// banding it under these thresholds.
func (t Thresholds) NewResult(question, role string, similarity float64, docs []RetrievedDoc) Result {
	score := FromSimilarity(similarity)
	return Result{
		Question:   question,
		Role:       role,
		Similarity: similarity,
		Score:      score,
		Status:     t.StatusOf(score),
		Documents:  docs,
	}
}

// NewResult builds a scored result under the default thresholds.
func NewResult(question, role string, similarity float64, docs []RetrievedDoc) Result {
	return DefaultThresholds().NewResult(question, role, similarity, docs)
}

// Normalized returns a copy carrying a computed quality score and
// status when they are absent, so downstream analysis can rely on
// both being populated.
func (r Result) Normalized() Result {
	if r.Score == 0 && r.Similarity > 0 {
		r.Score = FromSimilarity(r.Similarity)
	}
	if r.Status == "" {
		r.Status = StatusOf(r.Score)
	}
	return r
}
