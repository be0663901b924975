package rag

import (
	"context"

	"ai-course-concepts/internal/core/concepts"
)

// SearchRequest scopes one retrieval call.
type SearchRequest struct {
	CourseID            string
	BookID              string
	Query               string
	MaxResults          int
	SimilarityThreshold float32
	// SourceFilter is a path prefix restricting passages to one book's
	// materials; empty means no restriction.
	SourceFilter string
}

// SearchResult is the raw outcome of a retrieval call.
type SearchResult struct {
	Results        []concepts.RAGPassage
	Sources        []string
	KeyInsights    []string
	ProcessingTime float64
}

// Backend is the retrieval contract. Implementations may block for a
// non-trivial duration; callers bound them with BoundedBackend.
type Backend interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResult, error)
}
