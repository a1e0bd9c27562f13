package extract

import (
	"fmt"
	"strings"
)

// KnowledgePrompt asks for the category-keyed knowledge schema. The model
// must return all four categories even when empty.
const KnowledgePrompt = `You are an expert knowledge extractor. Analyze the provided text from a document and extract structured information into JSON.

Extract the following categories:
1. "definitions": a list of objects with "term" and "definition".
2. "comparisons": a list of objects with "subject_a", "subject_b", and "difference_or_similarity".
3. "timelines": a list of objects with "date" and "event".
4. "concepts": a list of objects with "name" and "explanation".

Rules:
- Output strictly valid JSON with exactly those four top-level keys.
- If a category has no data, return an empty list for it.
- Be concise and accurate.
- Do not make up information.

Respond with ONLY the JSON object, no other text.`

// BuildKnowledgePrompt creates the user prompt for one chunk, with document
// title and page range for context.
func BuildKnowledgePrompt(docTitle string, start, end int, chunkText string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Document: %q (segments %d-%d)\n", docTitle, start, end))
	sb.WriteString("---\n")
	sb.WriteString("Analyze this text and extract knowledge:\n\n")
	sb.WriteString(chunkText)
	return sb.String()
}

// BuildQuizSystemPrompt creates the system prompt for quiz generation with
// the requested question style and approximate answer length.
func BuildQuizSystemPrompt(questionType string, charLimit int) string {
	return fmt.Sprintf(`You are an expert educational content generator. Analyze the provided text and generate the maximum number of %[1]s questions.

Focus on definitions, comparisons, timelines, causes and effects, processes, relationships, and important concepts.

Constraints:
1. The "type" field must be %[1]q.
2. Keep answers to roughly %[2]d characters.
3. Include a short "context_snippet" from the text that supports the answer.
4. Return ONLY a valid JSON list of objects.

Output schema:
[
  {
    "question": "The question text",
    "answer": "The answer text",
    "type": %[1]q,
    "context_snippet": "Relevant text from source"
  }
]`, questionType, charLimit)
}

// BuildQuizPrompt creates the user prompt for one chunk.
func BuildQuizPrompt(chunkText string) string {
	return "Generate questions from this text:\n\n" + chunkText
}
