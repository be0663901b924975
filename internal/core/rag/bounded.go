package rag

import (
	"context"
	"time"

	"ai-course-concepts/config"
	"ai-course-concepts/internal/core/concepts"
	"ai-course-concepts/pkg/logger"
)

// TimeoutErrorMessage is the sentinel error string set on the analysis when
// the backend exceeds its time budget.
const TimeoutErrorMessage = "RAG timeout"

// BoundedBackend wraps a Backend with a hard timeout. It never returns a Go
// error: timeouts and backend failures degrade to an analysis payload with an
// Error string and empty results, so a failed retrieval can never fail the
// request that asked for it.
type BoundedBackend struct {
	backend Backend
	timeout time.Duration
}

func NewBoundedBackend(backend Backend, timeout time.Duration) *BoundedBackend {
	if timeout <= 0 {
		timeout = time.Duration(config.Cfg.RAG.TimeoutSeconds) * time.Second
	}
	return &BoundedBackend{backend: backend, timeout: timeout}
}

type searchOutcome struct {
	result *SearchResult
	err    error
}

// Analyze runs the search under the configured deadline and folds the outcome
// into a RAGAnalysis. The caller's context cancels the wait early; the
// backend goroutine is abandoned on expiry, never retried.
func (b *BoundedBackend) Analyze(ctx context.Context, req SearchRequest) *concepts.RAGAnalysis {
	analysis := &concepts.RAGAnalysis{
		Query:       req.Query,
		Results:     []concepts.RAGPassage{},
		KeyInsights: []string{},
		Sources:     []string{},
	}

	searchCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	done := make(chan searchOutcome, 1)
	start := time.Now()
	go func() {
		res, err := b.backend.Search(searchCtx, req)
		done <- searchOutcome{result: res, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			logger.Error(out.err, "%v: search failed for course %s", config.ModuleRAG, req.CourseID)
			analysis.Error = out.err.Error()
			return analysis
		}
		analysis.Results = out.result.Results
		analysis.KeyInsights = out.result.KeyInsights
		analysis.Sources = out.result.Sources
		analysis.SourcesCount = len(out.result.Sources)
		analysis.ProcessingTime = out.result.ProcessingTime
		if analysis.ProcessingTime == 0 {
			analysis.ProcessingTime = time.Since(start).Seconds()
		}
		return analysis
	case <-searchCtx.Done():
		if ctx.Err() != nil {
			// Caller gave up; report the cancellation rather than a timeout.
			analysis.Error = ctx.Err().Error()
			return analysis
		}
		logger.Warn("%v: search timed out after %s for course %s", config.ModuleRAG, b.timeout, req.CourseID)
		analysis.Error = TimeoutErrorMessage
		return analysis
	}
}
