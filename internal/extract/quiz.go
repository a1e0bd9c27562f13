package extract

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgallion1/docdistill/internal/schema"
)

// QuizGenerator turns one chunk of document text into quiz items of a fixed
// question style.
type QuizGenerator struct {
	provider     Provider
	questionType string
	charLimit    int
}

func NewQuizGenerator(p Provider, questionType string, charLimit int) *QuizGenerator {
	if !schema.IsValidQuestionType(questionType) {
		questionType = schema.DefaultQuestionType
	}
	if charLimit <= 0 {
		charLimit = 200
	}
	return &QuizGenerator{provider: p, questionType: questionType, charLimit: charLimit}
}

// Generate sends one chunk and decodes the flat record list, normalizing
// wrapped and single-object response shapes. Records that fail validation
// are dropped.
func (g *QuizGenerator) Generate(ctx context.Context, chunkText string) ([]schema.QuizItem, error) {
	text, err := g.provider.Complete(ctx, BuildQuizSystemPrompt(g.questionType, g.charLimit), BuildQuizPrompt(chunkText))
	if err != nil {
		return nil, err
	}
	text = StripCodeBlock(text)

	resp, err := Classify([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("normalize quiz response: %w", err)
	}

	items := make([]schema.QuizItem, 0, len(resp.Items))
	for _, raw := range resp.Items {
		var item schema.QuizItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("parse quiz item: %w (raw: %s)", err, truncate(string(raw), 200))
		}
		if ValidateQuizItem(&item, g.questionType) {
			items = append(items, item)
		}
	}
	return items, nil
}
