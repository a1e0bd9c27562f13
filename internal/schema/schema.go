// Package schema defines the structured records produced by extraction and
// the shapes of the merged artifacts.
package schema

// Kind selects which extraction schema a run uses.
type Kind string

const (
	KindKnowledge Kind = "knowledge"
	KindQuiz      Kind = "quiz"
)

// IsValidKind reports whether s names a supported schema.
func IsValidKind(s string) bool {
	switch Kind(s) {
	case KindKnowledge, KindQuiz:
		return true
	}
	return false
}

// Definition is a term with its definition.
type Definition struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// Comparison relates two subjects by a difference or similarity.
type Comparison struct {
	SubjectA               string `json:"subject_a"`
	SubjectB               string `json:"subject_b"`
	DifferenceOrSimilarity string `json:"difference_or_similarity"`
}

// TimelineEntry is a dated event. Date is an opaque string; sorting is
// lexicographic, not calendar-aware.
type TimelineEntry struct {
	Date  string `json:"date"`
	Event string `json:"event"`
}

// Concept is a named idea with its explanation.
type Concept struct {
	Name        string `json:"name"`
	Explanation string `json:"explanation"`
}

// Knowledge is the category-keyed result of the knowledge schema. It serves
// both as one chunk's partial result and as the merged artifact. Category
// slices are always present — empty, never null.
type Knowledge struct {
	Definitions []Definition    `json:"definitions"`
	Comparisons []Comparison    `json:"comparisons"`
	Timelines   []TimelineEntry `json:"timelines"`
	Concepts    []Concept       `json:"concepts"`
}

// EmptyKnowledge returns a category-complete result with zero records.
func EmptyKnowledge() Knowledge {
	return Knowledge{
		Definitions: []Definition{},
		Comparisons: []Comparison{},
		Timelines:   []TimelineEntry{},
		Concepts:    []Concept{},
	}
}

// FillNil replaces nil category slices (e.g. after decoding a response that
// omitted a category) with empty ones.
func (k *Knowledge) FillNil() {
	if k.Definitions == nil {
		k.Definitions = []Definition{}
	}
	if k.Comparisons == nil {
		k.Comparisons = []Comparison{}
	}
	if k.Timelines == nil {
		k.Timelines = []TimelineEntry{}
	}
	if k.Concepts == nil {
		k.Concepts = []Concept{}
	}
}

// Count returns the total number of records across all categories.
func (k Knowledge) Count() int {
	return len(k.Definitions) + len(k.Comparisons) + len(k.Timelines) + len(k.Concepts)
}

// QuizItem is one generated question/answer pair with its supporting snippet.
type QuizItem struct {
	Question       string `json:"question"`
	Answer         string `json:"answer"`
	Type           string `json:"type"`
	ContextSnippet string `json:"context_snippet"`
}

// Question style labels accepted by the quiz schema.
const (
	QuestionMCQ        = "MCQ"
	QuestionTrueFalse  = "True/False"
	QuestionLongAnswer = "Long Answer"
)

// DefaultQuestionType is used when the caller does not pick a style.
const DefaultQuestionType = QuestionLongAnswer

// IsValidQuestionType reports whether s is one of the fixed question styles.
func IsValidQuestionType(s string) bool {
	switch s {
	case QuestionMCQ, QuestionTrueFalse, QuestionLongAnswer:
		return true
	}
	return false
}
