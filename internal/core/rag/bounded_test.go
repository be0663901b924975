package rag

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-course-concepts/internal/core/concepts"
)

type stubBackend struct {
	result *SearchResult
	err    error
	delay  time.Duration
	calls  int
}

func (s *stubBackend) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	s.calls++
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
		}
	}
	return s.result, s.err
}

func TestBoundedAnalyze_Success(t *testing.T) {
	backend := &stubBackend{
		result: &SearchResult{
			Results: []concepts.RAGPassage{{Content: "soil erosion shapes valleys", Source: "books/bk-1/ch2.pdf"}},
			Sources: []string{"books/bk-1/ch2.pdf"},
		},
	}
	bounded := NewBoundedBackend(backend, time.Second)

	analysis := bounded.Analyze(context.Background(), SearchRequest{CourseID: "geo-101", Query: "q"})

	if analysis.Error != "" {
		t.Fatalf("unexpected error: %q", analysis.Error)
	}
	if len(analysis.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(analysis.Results))
	}
	if analysis.SourcesCount != 1 {
		t.Fatalf("expected sources_count 1, got %d", analysis.SourcesCount)
	}
	if analysis.ProcessingTime <= 0 {
		t.Fatalf("processing time must be set, got %v", analysis.ProcessingTime)
	}
}

func TestBoundedAnalyze_Timeout(t *testing.T) {
	backend := &stubBackend{delay: 500 * time.Millisecond, result: &SearchResult{}}
	bounded := NewBoundedBackend(backend, 30*time.Millisecond)

	start := time.Now()
	analysis := bounded.Analyze(context.Background(), SearchRequest{CourseID: "geo-101", Query: "q"})
	elapsed := time.Since(start)

	if analysis.Error != TimeoutErrorMessage {
		t.Fatalf("expected %q, got %q", TimeoutErrorMessage, analysis.Error)
	}
	if len(analysis.Results) != 0 {
		t.Fatalf("timed-out analysis must carry no results, got %d", len(analysis.Results))
	}
	if analysis.Results == nil || analysis.Sources == nil || analysis.KeyInsights == nil {
		t.Fatalf("degraded analysis must keep empty slices, not nil")
	}
	if elapsed > 200*time.Millisecond {
		t.Fatalf("Analyze waited %v past its budget", elapsed)
	}
	if backend.calls != 1 {
		t.Fatalf("timed-out search must not be retried, got %d calls", backend.calls)
	}
}

func TestBoundedAnalyze_BackendError(t *testing.T) {
	backend := &stubBackend{err: errors.New("collection not loaded")}
	bounded := NewBoundedBackend(backend, time.Second)

	analysis := bounded.Analyze(context.Background(), SearchRequest{CourseID: "geo-101", Query: "q"})

	if analysis.Error != "collection not loaded" {
		t.Fatalf("backend error must surface in analysis, got %q", analysis.Error)
	}
	if len(analysis.Results) != 0 {
		t.Fatalf("failed analysis must carry no results")
	}
}

func TestBoundedAnalyze_CallerCancellation(t *testing.T) {
	backend := &stubBackend{delay: time.Second, result: &SearchResult{}}
	bounded := NewBoundedBackend(backend, 5*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	analysis := bounded.Analyze(ctx, SearchRequest{CourseID: "geo-101", Query: "q"})

	if analysis.Error != context.Canceled.Error() {
		t.Fatalf("expected caller cancellation, got %q", analysis.Error)
	}
}
