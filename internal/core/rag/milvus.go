package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-course-concepts/config"
	"ai-course-concepts/internal/core/concepts"
	"ai-course-concepts/internal/core/ingest"
	"ai-course-concepts/pkg/logger"

	milvusclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	milvusentity "github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// MilvusBackend retrieves ranked passages from the material_chunks collection,
// embedding the query with OpenAI first.
type MilvusBackend struct{}

func NewMilvusBackend() *MilvusBackend {
	return &MilvusBackend{}
}

func (m *MilvusBackend) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	start := time.Now()

	vec, err := embedQuery(ctx, req.Query)
	if err != nil {
		return nil, err
	}

	cli, err := milvusclient.NewClient(ctx, milvusclient.Config{Address: config.Cfg.Milvus.Address})
	if err != nil {
		return nil, err
	}
	defer cli.Close()

	collection := config.Cfg.Milvus.Collection
	exists, err := cli.HasCollection(ctx, collection)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("collection %q not found", collection)
	}
	if err := cli.LoadCollection(ctx, collection, false); err != nil {
		return nil, err
	}

	metricType := milvusentity.MetricType(config.Cfg.Milvus.IndexHNSWConfig.MetricType)
	ef := config.Cfg.RAG.SearchEf
	if ef <= 0 {
		ef = 64
	}
	searchParam, err := milvusentity.NewIndexHNSWSearchParam(ef)
	if err != nil {
		return nil, err
	}

	topK := req.MaxResults
	if topK <= 0 {
		topK = 8
	}

	expr := buildExpr(req)
	outputFields := []string{"doc_id", "chunk_index", "page_index", "content", "source"}
	vectors := []milvusentity.Vector{milvusentity.FloatVector(vec)}

	results, err := cli.Search(
		ctx,
		collection,
		nil, // partitions
		expr,
		outputFields,
		vectors,
		"embedding",
		metricType,
		topK,
		searchParam,
	)
	if err != nil {
		logger.Error(err, "%v: milvus search failed", config.ModuleRAG)
		return nil, err
	}
	elapsed := time.Since(start)
	logger.Info("%v: milvus search done in %dms", config.ModuleRAG, elapsed.Milliseconds())

	passages, sources := collectPassages(results, req.SimilarityThreshold)

	return &SearchResult{
		Results:        passages,
		Sources:        sources,
		KeyInsights:    keyInsights(passages),
		ProcessingTime: time.Since(start).Seconds(),
	}, nil
}

func embedQuery(ctx context.Context, query string) ([]float32, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query")
	}
	vecs, err := ingest.EmbedOpenAI(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return vecs[0], nil
}

// buildExpr scopes the search to a course and, when requested, to one book's
// source path prefix.
func buildExpr(req SearchRequest) string {
	var parts []string
	if req.CourseID != "" {
		parts = append(parts, fmt.Sprintf("course_id == %q", req.CourseID))
	}
	if req.SourceFilter != "" {
		parts = append(parts, fmt.Sprintf("source like %q", req.SourceFilter+"%"))
	}
	return strings.Join(parts, " and ")
}

func collectPassages(results []milvusclient.SearchResult, threshold float32) ([]concepts.RAGPassage, []string) {
	passages := make([]concepts.RAGPassage, 0, 8)
	seenSources := map[string]bool{}
	sources := make([]string, 0, 4)

	for _, it := range results {
		for i := 0; i < it.ResultCount; i++ {
			score := float32(it.Scores[i])
			if threshold > 0 && score < threshold {
				continue
			}
			p := concepts.RAGPassage{Score: score}
			for _, field := range it.Fields {
				switch col := field.(type) {
				case *milvusentity.ColumnInt32:
					if col.Name() == "page_index" {
						p.Page = col.Data()[i]
					}
				case *milvusentity.ColumnVarChar:
					switch col.Name() {
					case "content":
						p.Content = col.Data()[i]
					case "source":
						p.Source = col.Data()[i]
					}
				}
			}
			passages = append(passages, p)
			if p.Source != "" && !seenSources[p.Source] {
				seenSources[p.Source] = true
				sources = append(sources, p.Source)
			}
		}
	}
	return passages, sources
}

// keyInsights picks the leading sentence of each top passage as a cheap
// summary, capped at five.
func keyInsights(passages []concepts.RAGPassage) []string {
	insights := make([]string, 0, 5)
	for _, p := range passages {
		if len(insights) >= 5 {
			break
		}
		s := firstSentence(p.Content)
		if s == "" {
			continue
		}
		insights = append(insights, s)
	}
	return insights
}

func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if idx := strings.IndexAny(s, ".!?"); idx > 0 {
		s = s[:idx+1]
	}
	const maxLen = 200
	runes := []rune(s)
	if len(runes) > maxLen {
		s = string(runes[:maxLen])
	}
	return s
}
