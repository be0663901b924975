package enrich

import (
	"strings"

	"ai-course-concepts/internal/core/concepts"
)

const (
	maxInsightsPerConcept = 3
	maxInsightLength      = 300
)

// ExtractInsights selects passages relevant to a concept: the lowercased
// concept name, or any of its lowercased related topics, must appear as a
// substring of the passage content. Passage order is preserved, duplicate
// excerpt text is skipped, and each excerpt is truncated to 300 characters.
func ExtractInsights(concept concepts.Concept, results []concepts.RAGPassage) []string {
	name := strings.ToLower(concept.Name)
	topics := make([]string, 0, len(concept.RelatedTopics))
	for _, t := range concept.RelatedTopics {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			topics = append(topics, t)
		}
	}

	insights := make([]string, 0, maxInsightsPerConcept)
	seen := map[string]bool{}
	for _, r := range results {
		if len(insights) >= maxInsightsPerConcept {
			break
		}
		content := strings.ToLower(r.Content)
		if !matchesConcept(content, name, topics) {
			continue
		}
		excerpt := truncateRunes(strings.TrimSpace(r.Content), maxInsightLength)
		if excerpt == "" || seen[excerpt] {
			continue
		}
		seen[excerpt] = true
		insights = append(insights, excerpt)
	}
	return insights
}

func matchesConcept(loweredContent, loweredName string, loweredTopics []string) bool {
	if loweredName != "" && strings.Contains(loweredContent, loweredName) {
		return true
	}
	for _, t := range loweredTopics {
		if strings.Contains(loweredContent, t) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
