package extract

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgallion1/docdistill/internal/schema"
)

// KnowledgeExtractor turns one chunk of document text into a partial
// knowledge result via the configured provider.
type KnowledgeExtractor struct {
	provider Provider
}

func NewKnowledgeExtractor(p Provider) *KnowledgeExtractor {
	return &KnowledgeExtractor{provider: p}
}

// Extract sends one chunk and decodes the category-keyed response. A
// response that does not conform to the knowledge schema is an error; the
// caller decides how to recover.
func (e *KnowledgeExtractor) Extract(ctx context.Context, docTitle string, start, end int, chunkText string) (schema.Knowledge, error) {
	text, err := e.provider.Complete(ctx, KnowledgePrompt, BuildKnowledgePrompt(docTitle, start, end, chunkText))
	if err != nil {
		return schema.Knowledge{}, err
	}
	text = StripCodeBlock(text)

	var k schema.Knowledge
	if err := json.Unmarshal([]byte(text), &k); err != nil {
		return schema.Knowledge{}, fmt.Errorf("parse knowledge json: %w (raw: %s)", err, truncate(text, 200))
	}
	k.FillNil()
	return k, nil
}
