package concepts

import (
	"strings"
	"time"
)

// DepthLevel controls how much on-demand analysis is layered on top of the
// stored concept map.
type DepthLevel string

const (
	DepthBasic         DepthLevel = "basic"
	DepthDetailed      DepthLevel = "detailed"
	DepthComprehensive DepthLevel = "comprehensive"
)

// Valid reports whether the depth level is one of the known values.
func (d DepthLevel) Valid() bool {
	switch d {
	case DepthBasic, DepthDetailed, DepthComprehensive:
		return true
	}
	return false
}

// Chapter locates a concept within the structure of its book.
type Chapter struct {
	Title string `json:"title"`
	Index int    `json:"index"`
}

// Concept is a single learnable unit inside a concept map.
type Concept struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Summary            string   `json:"summary"`
	Chapter            *Chapter `json:"chapter,omitempty"`
	RelatedTopics      []string `json:"related_topics"`
	LearningObjectives []string `json:"learning_objectives"`
	SuggestedReading   []string `json:"suggested_reading"`
	RecommendedMinutes int      `json:"recommended_minutes"`
	QuizOutline        []string `json:"quiz_outline"`

	// Enrichment fields, set only on the hybrid path and never persisted.
	RAGInsights     []string `json:"rag_insights,omitempty"`
	EnhancedSummary string   `json:"enhanced_summary,omitempty"`
	Source          string   `json:"source,omitempty"`
}

// ConceptMapDocument is the container for concepts scoped to a course or a
// course+book pair. A course-level document may aggregate per-book documents
// under Books.
type ConceptMapDocument struct {
	CourseID       string                         `json:"course_id"`
	BookID         string                         `json:"book_id,omitempty"`
	BookTitle      string                         `json:"book_title,omitempty"`
	GeneratedAt    time.Time                      `json:"generated_at"`
	SourceCount    int                            `json:"source_count"`
	IsFallback     bool                           `json:"is_fallback"`
	IsBookSpecific bool                           `json:"is_book_specific"`
	Concepts       []Concept                      `json:"concepts"`
	Books          map[string]*ConceptMapDocument `json:"books,omitempty"`
	QuizAttempts   int                            `json:"quiz_attempts,omitempty"`
	QuizAvgScore   float64                        `json:"quiz_avg_score,omitempty"`
}

// BookDocument returns the nested per-book document for bookID, or nil.
func (d *ConceptMapDocument) BookDocument(bookID string) *ConceptMapDocument {
	if d == nil || bookID == "" {
		return nil
	}
	if d.BookID == bookID {
		return d
	}
	return d.Books[bookID]
}

// HasConcept reports whether a concept with the given name exists,
// case-insensitively.
func (d *ConceptMapDocument) HasConcept(name string) bool {
	if d == nil {
		return false
	}
	for i := range d.Concepts {
		if strings.EqualFold(d.Concepts[i].Name, name) {
			return true
		}
	}
	return false
}

// HybridRequest is the input contract of the hybrid orchestrator.
type HybridRequest struct {
	CourseID           string     `json:"course_id" validate:"required"`
	BookID             string     `json:"book_id"`
	DepthLevel         DepthLevel `json:"depth_level"`
	IncludeRAGAnalysis bool       `json:"include_rag_analysis"`
	FocusTopics        []string   `json:"focus_topics"`
}

// RAGPassage is one ranked passage returned by the RAG backend.
type RAGPassage struct {
	Content string  `json:"content"`
	Source  string  `json:"source,omitempty"`
	Page    int32   `json:"page,omitempty"`
	Score   float32 `json:"score,omitempty"`
}

// RAGAnalysis carries the outcome of the RAG phase. When the backend times
// out or fails, Error is set and Results is empty; the request still succeeds.
type RAGAnalysis struct {
	Query          string       `json:"query"`
	Results        []RAGPassage `json:"results"`
	KeyInsights    []string     `json:"key_insights"`
	Sources        []string     `json:"sources"`
	SourcesCount   int          `json:"sources_count"`
	ProcessingTime float64      `json:"processing_time"`
	Error          string       `json:"error,omitempty"`
}

// HybridResponse is the merged output of stored concepts and on-demand
// analysis. RAGAnalysis and EnhancedConcepts are nil when the RAG phase did
// not run.
type HybridResponse struct {
	Success          bool                `json:"success"`
	CourseID         string              `json:"course_id"`
	BookID           string              `json:"book_id,omitempty"`
	DepthLevel       DepthLevel          `json:"depth_level"`
	BaseConcepts     *ConceptMapDocument `json:"base_concepts"`
	RAGAnalysis      *RAGAnalysis        `json:"rag_analysis"`
	EnhancedConcepts []Concept           `json:"enhanced_concepts"`
}
