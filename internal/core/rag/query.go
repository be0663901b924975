package rag

import (
	"fmt"
	"strings"

	"ai-course-concepts/internal/core/concepts"
)

// BuildQuery composes the retrieval query for a depth level, an optional book
// title and optional focus topics. Deterministic: the same inputs always
// produce the same query.
func BuildQuery(depth concepts.DepthLevel, bookTitle string, focusTopics []string) string {
	var b strings.Builder

	if bookTitle != "" {
		b.WriteString(fmt.Sprintf("deep analysis of the key concepts of the book %q", bookTitle))
	} else {
		b.WriteString("deep analysis of key concepts")
	}

	if len(focusTopics) > 0 {
		b.WriteString(", with focus on: ")
		b.WriteString(strings.Join(focusTopics, ", "))
	}

	switch depth {
	case concepts.DepthComprehensive:
		b.WriteString(". Include detailed analysis, historical context, connections between concepts and practical implications.")
	case concepts.DepthDetailed:
		b.WriteString(". Include detailed explanations of the main concepts.")
	}

	return b.String()
}

// MaxResultsForDepth returns how many passages to fetch for a depth level.
func MaxResultsForDepth(depth concepts.DepthLevel) int {
	if depth == concepts.DepthDetailed {
		return 5
	}
	return 8
}

// SourceFilterForBook derives the source path-prefix filter for a book scope.
// An empty book id applies no filter.
func SourceFilterForBook(bookID string) string {
	if bookID == "" {
		return ""
	}
	return fmt.Sprintf("books/%s/", bookID)
}
