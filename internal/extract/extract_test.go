package extract_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docdistill/internal/extract"
	"github.com/dgallion1/docdistill/internal/schema"
)

// stubProvider returns a canned completion (or error) and records the
// prompts it was called with.
type stubProvider struct {
	text   string
	err    error
	system string
	user   string
}

func (s *stubProvider) Complete(_ context.Context, system, user string) (string, error) {
	s.system = system
	s.user = user
	return s.text, s.err
}

func (s *stubProvider) Model() string { return "stub" }
func (s *stubProvider) Close()        {}

func TestKnowledgeExtractor_DecodesAllCategories(t *testing.T) {
	p := &stubProvider{text: `{
		"definitions": [{"term": "entropy", "definition": "disorder"}],
		"comparisons": [{"subject_a": "a", "subject_b": "b", "difference_or_similarity": "d"}],
		"timelines": [{"date": "1905", "event": "relativity"}],
		"concepts": [{"name": "energy", "explanation": "capacity to do work"}]
	}`}
	e := extract.NewKnowledgeExtractor(p)

	k, err := e.Extract(context.Background(), "physics", 1, 3, "chunk text")
	require.NoError(t, err)
	assert.Equal(t, 4, k.Count())
	assert.Contains(t, p.user, "chunk text")
	assert.Contains(t, p.user, `"physics"`)
}

func TestKnowledgeExtractor_MissingCategoriesBecomeEmpty(t *testing.T) {
	p := &stubProvider{text: `{"definitions": [{"term": "x", "definition": "y"}]}`}
	e := extract.NewKnowledgeExtractor(p)

	k, err := e.Extract(context.Background(), "doc", 1, 1, "text")
	require.NoError(t, err)
	assert.Len(t, k.Definitions, 1)
	assert.NotNil(t, k.Comparisons)
	assert.NotNil(t, k.Timelines)
	assert.NotNil(t, k.Concepts)
}

func TestKnowledgeExtractor_StripsCodeFence(t *testing.T) {
	p := &stubProvider{text: "```json\n{\"definitions\":[],\"comparisons\":[],\"timelines\":[],\"concepts\":[]}\n```"}
	e := extract.NewKnowledgeExtractor(p)

	k, err := e.Extract(context.Background(), "doc", 1, 1, "text")
	require.NoError(t, err)
	assert.Zero(t, k.Count())
}

func TestKnowledgeExtractor_MalformedResponse(t *testing.T) {
	p := &stubProvider{text: `not json at all`}
	e := extract.NewKnowledgeExtractor(p)

	_, err := e.Extract(context.Background(), "doc", 1, 1, "text")
	assert.Error(t, err)
}

func TestKnowledgeExtractor_ProviderError(t *testing.T) {
	p := &stubProvider{err: errors.New("service down")}
	e := extract.NewKnowledgeExtractor(p)

	_, err := e.Extract(context.Background(), "doc", 1, 1, "text")
	assert.ErrorContains(t, err, "service down")
}

func TestQuizGenerator_PlainList(t *testing.T) {
	p := &stubProvider{text: `[
		{"question": "Q1?", "answer": "A1", "type": "MCQ", "context_snippet": "s1"},
		{"question": "Q2?", "answer": "A2", "type": "MCQ", "context_snippet": "s2"}
	]`}
	g := extract.NewQuizGenerator(p, schema.QuestionMCQ, 200)

	items, err := g.Generate(context.Background(), "chunk")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Q1?", items[0].Question)
	assert.Contains(t, p.system, `"MCQ"`)
}

func TestQuizGenerator_UnwrapsWrappedList(t *testing.T) {
	p := &stubProvider{text: `{"questions": [{"question": "Q?", "answer": "A", "type": "True/False"}]}`}
	g := extract.NewQuizGenerator(p, schema.QuestionTrueFalse, 200)

	items, err := g.Generate(context.Background(), "chunk")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, schema.QuestionTrueFalse, items[0].Type)
}

func TestQuizGenerator_CoercesSingleObject(t *testing.T) {
	p := &stubProvider{text: `{"question": "Q?", "answer": "A"}`}
	g := extract.NewQuizGenerator(p, schema.QuestionLongAnswer, 200)

	items, err := g.Generate(context.Background(), "chunk")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, schema.QuestionLongAnswer, items[0].Type)
}

func TestQuizGenerator_DropsInvalidRecords(t *testing.T) {
	p := &stubProvider{text: `[
		{"question": "Q?", "answer": "A", "type": "MCQ"},
		{"question": "", "answer": "no question"},
		{"question": "no answer", "answer": "  "}
	]`}
	g := extract.NewQuizGenerator(p, schema.QuestionMCQ, 200)

	items, err := g.Generate(context.Background(), "chunk")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestQuizGenerator_DefaultsBadConfig(t *testing.T) {
	p := &stubProvider{text: `[]`}
	g := extract.NewQuizGenerator(p, "Essay", 0)

	_, err := g.Generate(context.Background(), "chunk")
	require.NoError(t, err)
	assert.Contains(t, p.system, schema.QuestionLongAnswer)
	assert.Contains(t, p.system, "200")
}
