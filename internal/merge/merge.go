// Package merge canonicalizes ordered partial extraction results into a
// single deduplicated artifact. Dedup is purely syntactic: records collide
// only when their canonical keys match exactly after whitespace trimming.
// Matching is case-sensitive.
package merge

import (
	"sort"
	"strings"

	"github.com/dgallion1/docdistill/internal/schema"
)

// Comparison keys join all fields; timeline keys join date and event.
// The separators just need to be unlikely inside field text.
const (
	fieldSep    = "\x1f"
	timelineSep = "||"
)

// Knowledge merges partial knowledge results in chunk order. Within each
// category the first-seen record wins on key collision; later duplicates are
// dropped without merging field values. Definitions and concepts come back
// sorted by their primary field, timelines by the raw date string, and
// comparisons in first-seen order. The input is never mutated.
func Knowledge(parts []schema.Knowledge) schema.Knowledge {
	out := schema.EmptyKnowledge()

	seenDef := make(map[string]struct{})
	seenComp := make(map[string]struct{})
	seenTime := make(map[string]struct{})
	seenCon := make(map[string]struct{})

	for _, part := range parts {
		for _, d := range part.Definitions {
			key := strings.TrimSpace(d.Term)
			if key == "" {
				continue
			}
			if _, ok := seenDef[key]; ok {
				continue
			}
			seenDef[key] = struct{}{}
			out.Definitions = append(out.Definitions, d)
		}
		for _, c := range part.Comparisons {
			key := strings.TrimSpace(c.SubjectA) + fieldSep +
				strings.TrimSpace(c.SubjectB) + fieldSep +
				strings.TrimSpace(c.DifferenceOrSimilarity)
			if _, ok := seenComp[key]; ok {
				continue
			}
			seenComp[key] = struct{}{}
			out.Comparisons = append(out.Comparisons, c)
		}
		for _, e := range part.Timelines {
			date := strings.TrimSpace(e.Date)
			event := strings.TrimSpace(e.Event)
			if date == "" && event == "" {
				continue
			}
			key := date + timelineSep + event
			if _, ok := seenTime[key]; ok {
				continue
			}
			seenTime[key] = struct{}{}
			out.Timelines = append(out.Timelines, e)
		}
		for _, c := range part.Concepts {
			key := strings.TrimSpace(c.Name)
			if key == "" {
				continue
			}
			if _, ok := seenCon[key]; ok {
				continue
			}
			seenCon[key] = struct{}{}
			out.Concepts = append(out.Concepts, c)
		}
	}

	sort.SliceStable(out.Definitions, func(i, j int) bool {
		return out.Definitions[i].Term < out.Definitions[j].Term
	})
	// Lexicographic on the raw date string: "2 BCE" sorts after "2020".
	sort.SliceStable(out.Timelines, func(i, j int) bool {
		return out.Timelines[i].Date < out.Timelines[j].Date
	})
	sort.SliceStable(out.Concepts, func(i, j int) bool {
		return out.Concepts[i].Name < out.Concepts[j].Name
	})

	return out
}

// Quiz merges partial quiz results in chunk order, keyed by the trimmed
// question text. The first occurrence of a question wins; items with empty
// questions are dropped. Output keeps first-seen order.
func Quiz(parts [][]schema.QuizItem) []schema.QuizItem {
	out := []schema.QuizItem{}
	seen := make(map[string]struct{})

	for _, part := range parts {
		for _, item := range part {
			key := strings.TrimSpace(item.Question)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}
