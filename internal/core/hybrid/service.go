package hybrid

import (
	"context"

	"ai-course-concepts/config"
	"ai-course-concepts/internal/core/concepts"
	"ai-course-concepts/internal/core/conceptstore"
	"ai-course-concepts/internal/core/enrich"
	"ai-course-concepts/internal/core/rag"
	"ai-course-concepts/pkg/logger"
)

// maxProcessedResults caps how many passages feed enrichment, regardless of
// how many the backend returned.
const maxProcessedResults = 5

// bookTitlePlaceholder is used when a book scope is requested but the stored
// document carries no title.
const bookTitlePlaceholder = "the course textbook"

// Analyzer is the bounded retrieval contract consumed by the orchestrator.
// It never fails: degraded outcomes carry an Error string in the analysis.
type Analyzer interface {
	Analyze(ctx context.Context, req rag.SearchRequest) *concepts.RAGAnalysis
}

// Service merges persisted concept maps with on-demand retrieval analysis.
// It holds no per-request state; requests are independently idempotent
// against an unchanged store and backend.
type Service struct {
	store    conceptstore.Store
	analyzer Analyzer
	enricher *enrich.Enricher
}

func NewService(store conceptstore.Store, analyzer Analyzer, enricher *enrich.Enricher) *Service {
	if enricher == nil {
		enricher = enrich.NewEnricher(nil)
	}
	return &Service{store: store, analyzer: analyzer, enricher: enricher}
}

// Process loads the base concept map, optionally runs the bounded RAG phase
// and enrichment, and composes the response. Store failures propagate
// (conceptstore.ErrNotFound included); retrieval failures degrade the
// response instead of failing it.
func (s *Service) Process(ctx context.Context, req concepts.HybridRequest) (*concepts.HybridResponse, error) {
	depth := req.DepthLevel
	if depth == "" {
		depth = concepts.DepthBasic
	}

	base, err := s.loadBase(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := &concepts.HybridResponse{
		Success:      true,
		CourseID:     req.CourseID,
		BookID:       req.BookID,
		DepthLevel:   depth,
		BaseConcepts: base,
	}

	// basic is the fast path: never retrieve, whatever the flag says.
	if !req.IncludeRAGAnalysis || depth == concepts.DepthBasic {
		return resp, nil
	}

	analysis := s.analyzer.Analyze(ctx, rag.SearchRequest{
		CourseID:            req.CourseID,
		BookID:              req.BookID,
		Query:               rag.BuildQuery(depth, s.resolveBookTitle(req.BookID, base), req.FocusTopics),
		MaxResults:          rag.MaxResultsForDepth(depth),
		SimilarityThreshold: config.Cfg.RAG.SimilarityThreshold,
		SourceFilter:        rag.SourceFilterForBook(req.BookID),
	})
	if len(analysis.Results) > maxProcessedResults {
		analysis.Results = analysis.Results[:maxProcessedResults]
	}
	resp.RAGAnalysis = analysis

	logger.WithFields(map[string]interface{}{
		"course_id":       req.CourseID,
		"book_id":         req.BookID,
		"depth":           depth,
		"results":         len(analysis.Results),
		"key_insights":    len(analysis.KeyInsights),
		"processing_time": analysis.ProcessingTime,
		"rag_error":       analysis.Error,
	}).Info("hybrid: rag phase done")

	// A degraded analysis carries no passages, so enrichment reduces to plain
	// copies of the base concepts; the list is still populated whenever the
	// phase ran.
	resp.EnhancedConcepts = s.enricher.Enrich(base.Concepts, analysis.Results, req.FocusTopics)

	return resp, nil
}

func (s *Service) loadBase(ctx context.Context, req concepts.HybridRequest) (*concepts.ConceptMapDocument, error) {
	if req.BookID != "" {
		return s.store.LoadBook(ctx, req.CourseID, req.BookID)
	}
	return s.store.Load(ctx, req.CourseID)
}

// resolveBookTitle looks the title up in the base document when a book scope
// was requested; without a book scope no title enters the query.
func (s *Service) resolveBookTitle(bookID string, base *concepts.ConceptMapDocument) string {
	if bookID == "" {
		return ""
	}
	if doc := base.BookDocument(bookID); doc != nil && doc.BookTitle != "" {
		return doc.BookTitle
	}
	if base.BookTitle != "" {
		return base.BookTitle
	}
	return bookTitlePlaceholder
}
