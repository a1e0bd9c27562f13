package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docdistill/internal/schema"
)

func TestRunOnce_Knowledge(t *testing.T) {
	result, err := RunOnce(context.Background(), RunOnceRequest{
		Filename: "notes.txt",
		Data:     []byte("Page one.\n\nPage two.\n\nPage three.\n\nPage four."),
		Schema:   schema.KindKnowledge,
		Window:   3,
		Overlap:  1,
		Parallel: 2,
		Provider: &fakeProvider{response: knowledgeResponse},
	})
	require.NoError(t, err)

	assert.Equal(t, "notes", result.Title)
	assert.Equal(t, 2, result.TotalChunks)
	assert.Zero(t, result.FailedChunks)
	require.NotNil(t, result.Knowledge)
	assert.Len(t, result.Knowledge.Definitions, 1)

	var buf bytes.Buffer
	require.NoError(t, result.WriteJSON(&buf))
	var decoded schema.Knowledge
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "Entropy", decoded.Definitions[0].Term)
}

func TestRunOnce_Quiz(t *testing.T) {
	response := `[{"question": "Q?", "answer": "A.", "type": "MCQ", "context_snippet": "ctx"}]`
	result, err := RunOnce(context.Background(), RunOnceRequest{
		Filename:     "notes.txt",
		Data:         []byte("one two three four five six"),
		Schema:       schema.KindQuiz,
		QuestionType: schema.QuestionMCQ,
		CharLimit:    200,
		Window:       4,
		Overlap:      1,
		Parallel:     2,
		Provider:     &fakeProvider{response: response},
	})
	require.NoError(t, err)

	assert.Nil(t, result.Knowledge)
	require.Len(t, result.Quiz, 1)
	assert.Equal(t, "Q?", result.Quiz[0].Question)
}

func TestRunOnce_TitleOverride(t *testing.T) {
	result, err := RunOnce(context.Background(), RunOnceRequest{
		Filename: "notes.txt",
		Data:     []byte("Some content."),
		Title:    "Custom Title",
		Schema:   schema.KindKnowledge,
		Window:   3,
		Overlap:  1,
		Provider: &fakeProvider{response: knowledgeResponse},
	})
	require.NoError(t, err)
	assert.Equal(t, "Custom Title", result.Title)
}

func TestRunOnce_EmptyDocument(t *testing.T) {
	_, err := RunOnce(context.Background(), RunOnceRequest{
		Filename: "empty.txt",
		Data:     []byte("  \n\n "),
		Schema:   schema.KindKnowledge,
		Window:   3,
		Overlap:  1,
		Provider: &fakeProvider{response: knowledgeResponse},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no extractable content")
}

func TestRunOnce_InvalidWindow(t *testing.T) {
	_, err := RunOnce(context.Background(), RunOnceRequest{
		Filename: "notes.txt",
		Data:     []byte("Some content."),
		Schema:   schema.KindKnowledge,
		Window:   0,
		Overlap:  0,
		Provider: &fakeProvider{response: knowledgeResponse},
	})
	require.Error(t, err)
}

func TestRunOnce_DegradesOnChunkFailure(t *testing.T) {
	result, err := RunOnce(context.Background(), RunOnceRequest{
		Filename: "notes.txt",
		Data:     []byte("Only page."),
		Schema:   schema.KindKnowledge,
		Window:   3,
		Overlap:  1,
		Provider: &fakeProvider{err: errors.New("provider down")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.FailedChunks)
	require.NotNil(t, result.Knowledge)
	assert.Zero(t, result.Knowledge.Count())
}
