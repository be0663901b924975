package generator

import (
	"fmt"
	"strings"

	"ai-course-concepts/internal/core/concepts"
)

const fallbackConceptCap = 6

// fallbackConcepts builds a deterministic concept map straight from chunk
// previews when AI generation yields nothing. The first line of each chunk
// becomes the concept name; output depends only on the input order.
func fallbackConcepts(chunks []string) []concepts.Concept {
	out := make([]concepts.Concept, 0, fallbackConceptCap)
	seen := map[string]bool{}
	for _, chunk := range chunks {
		if len(out) >= fallbackConceptCap {
			break
		}
		name := fallbackName(chunk)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, concepts.Concept{
			ID:      fmt.Sprintf("fallback-%d", len(out)),
			Name:    name,
			Summary: truncate(chunk, 280),
			LearningObjectives: []string{
				fmt.Sprintf("Review the material covering %s", name),
			},
			RelatedTopics:      []string{},
			SuggestedReading:   []string{},
			QuizOutline:        []string{},
			RecommendedMinutes: 20,
		})
	}
	return out
}

func fallbackName(chunk string) string {
	line := chunk
	if idx := strings.IndexAny(chunk, "\n."); idx > 0 {
		line = chunk[:idx]
	}
	line = strings.TrimSpace(line)
	words := strings.Fields(line)
	if len(words) == 0 {
		return ""
	}
	if len(words) > 6 {
		words = words[:6]
	}
	return strings.Join(words, " ")
}

func truncate(s string, limit int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit])
}
