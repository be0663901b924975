package hybrid

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-course-concepts/internal/core/concepts"
	"ai-course-concepts/internal/core/conceptstore"
	"ai-course-concepts/internal/core/enrich"
	"ai-course-concepts/internal/core/rag"
)

type fakeStore struct {
	docs map[string]*concepts.ConceptMapDocument
	err  error
}

func storeKey(courseID, bookID string) string {
	return courseID + "|" + bookID
}

func (f *fakeStore) Load(ctx context.Context, courseID string) (*concepts.ConceptMapDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	if doc, ok := f.docs[storeKey(courseID, "")]; ok {
		return doc, nil
	}
	return nil, conceptstore.ErrNotFound
}

func (f *fakeStore) LoadBook(ctx context.Context, courseID, bookID string) (*concepts.ConceptMapDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	if doc, ok := f.docs[storeKey(courseID, bookID)]; ok {
		return doc, nil
	}
	if coursedoc, ok := f.docs[storeKey(courseID, "")]; ok {
		if nested := coursedoc.BookDocument(bookID); nested != nil {
			return nested, nil
		}
	}
	return nil, conceptstore.ErrNotFound
}

func (f *fakeStore) Save(ctx context.Context, courseID string, doc *concepts.ConceptMapDocument) error {
	f.docs[storeKey(courseID, doc.BookID)] = doc
	return nil
}

type fakeAnalyzer struct {
	analysis *concepts.RAGAnalysis
	calls    int
	lastReq  rag.SearchRequest
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, req rag.SearchRequest) *concepts.RAGAnalysis {
	f.calls++
	f.lastReq = req
	if f.analysis != nil {
		return f.analysis
	}
	return &concepts.RAGAnalysis{
		Query:       req.Query,
		Results:     []concepts.RAGPassage{},
		KeyInsights: []string{},
		Sources:     []string{},
	}
}

func courseDoc() *concepts.ConceptMapDocument {
	return &concepts.ConceptMapDocument{
		CourseID:    "geo-101",
		GeneratedAt: time.Now(),
		Concepts: []concepts.Concept{
			{ID: "c1", Name: "Territorio", Summary: "Lo spazio organizzato dalle comunita."},
			{ID: "c2", Name: "Scala", Summary: "Rapporto tra carta e realta."},
		},
	}
}

func newTestService(store *fakeStore, analyzer *fakeAnalyzer) *Service {
	return NewService(store, analyzer, enrich.NewEnricher(enrich.NewRegexMiner()))
}

func TestProcess_BasicNeverCallsAnalyzer(t *testing.T) {
	store := &fakeStore{docs: map[string]*concepts.ConceptMapDocument{storeKey("geo-101", ""): courseDoc()}}
	analyzer := &fakeAnalyzer{}
	svc := newTestService(store, analyzer)

	resp, err := svc.Process(context.Background(), concepts.HybridRequest{
		CourseID:           "geo-101",
		DepthLevel:         concepts.DepthBasic,
		IncludeRAGAnalysis: true,
	})

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 0, analyzer.calls, "basic depth must not trigger retrieval")
	assert.Nil(t, resp.RAGAnalysis)
	assert.Nil(t, resp.EnhancedConcepts)
	assert.Len(t, resp.BaseConcepts.Concepts, 2)
}

func TestProcess_EmptyDepthDefaultsToBasic(t *testing.T) {
	store := &fakeStore{docs: map[string]*concepts.ConceptMapDocument{storeKey("geo-101", ""): courseDoc()}}
	analyzer := &fakeAnalyzer{}
	svc := newTestService(store, analyzer)

	resp, err := svc.Process(context.Background(), concepts.HybridRequest{
		CourseID:           "geo-101",
		IncludeRAGAnalysis: true,
	})

	require.NoError(t, err)
	assert.Equal(t, concepts.DepthBasic, resp.DepthLevel)
	assert.Equal(t, 0, analyzer.calls)
}

func TestProcess_FlagOffSkipsAnalyzer(t *testing.T) {
	store := &fakeStore{docs: map[string]*concepts.ConceptMapDocument{storeKey("geo-101", ""): courseDoc()}}
	analyzer := &fakeAnalyzer{}
	svc := newTestService(store, analyzer)

	resp, err := svc.Process(context.Background(), concepts.HybridRequest{
		CourseID:   "geo-101",
		DepthLevel: concepts.DepthComprehensive,
	})

	require.NoError(t, err)
	assert.Equal(t, 0, analyzer.calls)
	assert.Nil(t, resp.RAGAnalysis)
}

func TestProcess_NotFoundBeforeAnalyzer(t *testing.T) {
	store := &fakeStore{docs: map[string]*concepts.ConceptMapDocument{}}
	analyzer := &fakeAnalyzer{}
	svc := newTestService(store, analyzer)

	_, err := svc.Process(context.Background(), concepts.HybridRequest{
		CourseID:           "missing",
		DepthLevel:         concepts.DepthComprehensive,
		IncludeRAGAnalysis: true,
	})

	require.ErrorIs(t, err, conceptstore.ErrNotFound)
	assert.Equal(t, 0, analyzer.calls, "store miss must short-circuit before retrieval")
}

func TestProcess_DetailedEndToEnd(t *testing.T) {
	store := &fakeStore{docs: map[string]*concepts.ConceptMapDocument{storeKey("geo-101", ""): courseDoc()}}
	analyzer := &fakeAnalyzer{
		analysis: &concepts.RAGAnalysis{
			Query: "q",
			Results: []concepts.RAGPassage{
				{Content: "Il territorio alpino presenta morfologie glaciali.", Source: "books/bk-1/cap1.pdf"},
				{Content: "La scala 1:25000 e usata nelle carte topografiche.", Source: "books/bk-1/cap2.pdf"},
			},
			KeyInsights: []string{"Il territorio alpino presenta morfologie glaciali."},
			Sources:     []string{"books/bk-1/cap1.pdf", "books/bk-1/cap2.pdf"},
		},
	}
	svc := newTestService(store, analyzer)

	resp, err := svc.Process(context.Background(), concepts.HybridRequest{
		CourseID:           "geo-101",
		DepthLevel:         concepts.DepthDetailed,
		IncludeRAGAnalysis: true,
		FocusTopics:        []string{"alpi"},
	})

	require.NoError(t, err)
	require.NotNil(t, resp.RAGAnalysis)
	assert.Equal(t, 1, analyzer.calls)
	assert.Equal(t, 5, analyzer.lastReq.MaxResults, "detailed depth fetches 5 passages")
	assert.Contains(t, analyzer.lastReq.Query, "with focus on: alpi")

	require.NotNil(t, resp.EnhancedConcepts)
	require.GreaterOrEqual(t, len(resp.EnhancedConcepts), 2)
	territorio := resp.EnhancedConcepts[0]
	assert.Equal(t, "Territorio", territorio.Name)
	assert.NotEmpty(t, territorio.RAGInsights)
	assert.NotEmpty(t, territorio.EnhancedSummary)
	scala := resp.EnhancedConcepts[1]
	assert.Equal(t, "Scala", scala.Name)
	assert.NotEmpty(t, scala.RAGInsights)
}

func TestProcess_TruncatesResultsToFive(t *testing.T) {
	results := make([]concepts.RAGPassage, 8)
	for i := range results {
		results[i] = concepts.RAGPassage{Content: "passage"}
	}
	store := &fakeStore{docs: map[string]*concepts.ConceptMapDocument{storeKey("geo-101", ""): courseDoc()}}
	analyzer := &fakeAnalyzer{analysis: &concepts.RAGAnalysis{Results: results, KeyInsights: []string{}, Sources: []string{}}}
	svc := newTestService(store, analyzer)

	resp, err := svc.Process(context.Background(), concepts.HybridRequest{
		CourseID:           "geo-101",
		DepthLevel:         concepts.DepthComprehensive,
		IncludeRAGAnalysis: true,
	})

	require.NoError(t, err)
	assert.Len(t, resp.RAGAnalysis.Results, 5)
}

func TestProcess_DegradedAnalysisKeepsBaseCopies(t *testing.T) {
	store := &fakeStore{docs: map[string]*concepts.ConceptMapDocument{storeKey("geo-101", ""): courseDoc()}}
	analyzer := &fakeAnalyzer{
		analysis: &concepts.RAGAnalysis{
			Results:     []concepts.RAGPassage{},
			KeyInsights: []string{},
			Sources:     []string{},
			Error:       rag.TimeoutErrorMessage,
		},
	}
	svc := newTestService(store, analyzer)

	resp, err := svc.Process(context.Background(), concepts.HybridRequest{
		CourseID:           "geo-101",
		DepthLevel:         concepts.DepthComprehensive,
		IncludeRAGAnalysis: true,
	})

	require.NoError(t, err, "a degraded RAG phase must not fail the request")
	assert.True(t, resp.Success)
	require.NotNil(t, resp.RAGAnalysis)
	assert.Equal(t, rag.TimeoutErrorMessage, resp.RAGAnalysis.Error)
	assert.Empty(t, resp.RAGAnalysis.Results)
	assert.Len(t, resp.BaseConcepts.Concepts, 2, "base concepts survive a failed retrieval")

	// Enrichment still runs over the empty result set: plain base copies,
	// no insights, no mined concepts.
	require.Len(t, resp.EnhancedConcepts, 2)
	for _, c := range resp.EnhancedConcepts {
		assert.Empty(t, c.RAGInsights)
		assert.Empty(t, c.EnhancedSummary)
	}
}

func TestProcess_BookScopeUsesBookDocumentAndFilter(t *testing.T) {
	course := courseDoc()
	course.Books = map[string]*concepts.ConceptMapDocument{
		"bk-1": {
			CourseID:       "geo-101",
			BookID:         "bk-1",
			BookTitle:      "Geografia Generale",
			IsBookSpecific: true,
			Concepts:       []concepts.Concept{{ID: "b1", Name: "Cartografia"}},
		},
	}
	store := &fakeStore{docs: map[string]*concepts.ConceptMapDocument{storeKey("geo-101", ""): course}}
	analyzer := &fakeAnalyzer{}
	svc := newTestService(store, analyzer)

	resp, err := svc.Process(context.Background(), concepts.HybridRequest{
		CourseID:           "geo-101",
		BookID:             "bk-1",
		DepthLevel:         concepts.DepthDetailed,
		IncludeRAGAnalysis: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "bk-1", resp.BookID)
	assert.Len(t, resp.BaseConcepts.Concepts, 1)
	assert.Equal(t, "books/bk-1/", analyzer.lastReq.SourceFilter)
	assert.Contains(t, analyzer.lastReq.Query, `"Geografia Generale"`)
}

func TestProcess_Idempotent(t *testing.T) {
	store := &fakeStore{docs: map[string]*concepts.ConceptMapDocument{storeKey("geo-101", ""): courseDoc()}}
	analyzer := &fakeAnalyzer{
		analysis: &concepts.RAGAnalysis{
			Results:     []concepts.RAGPassage{{Content: "Il territorio e la sua scala."}},
			KeyInsights: []string{},
			Sources:     []string{},
		},
	}
	svc := newTestService(store, analyzer)

	req := concepts.HybridRequest{
		CourseID:           "geo-101",
		DepthLevel:         concepts.DepthDetailed,
		IncludeRAGAnalysis: true,
	}
	first, err := svc.Process(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Process(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.BaseConcepts, second.BaseConcepts)
	assert.Equal(t, first.EnhancedConcepts, second.EnhancedConcepts)
}
