package extract

import (
	"strings"

	"github.com/dgallion1/docdistill/internal/schema"
)

// ValidateQuizItem checks and normalizes one decoded quiz record. Fields are
// trimmed in place; a missing type is filled from the requested style.
// Returns false for records with no question or no answer.
func ValidateQuizItem(item *schema.QuizItem, questionType string) bool {
	if item == nil {
		return false
	}
	item.Question = strings.TrimSpace(item.Question)
	item.Answer = strings.TrimSpace(item.Answer)
	item.Type = strings.TrimSpace(item.Type)
	item.ContextSnippet = strings.TrimSpace(item.ContextSnippet)

	if item.Question == "" || item.Answer == "" {
		return false
	}
	if item.Type == "" || !schema.IsValidQuestionType(item.Type) {
		item.Type = questionType
	}
	return true
}
