package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-course-concepts/config"
	"ai-course-concepts/internal/core/concepts"
	"ai-course-concepts/internal/core/conceptstore"
	"ai-course-concepts/internal/database"
	"ai-course-concepts/internal/database/model"
	"ai-course-concepts/pkg/logger"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Generator produces a concept-map document for a course or a course+book
// pair. Implementations may yield zero concepts; callers fall back to the
// deterministic generator in that case.
type Generator interface {
	Generate(ctx context.Context, courseID, bookID string, force bool) (*concepts.ConceptMapDocument, error)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}
type chatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}
type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

// generatedConcept is the JSON shape the model is asked to emit.
type generatedConcept struct {
	Name               string   `json:"name"`
	Summary            string   `json:"summary"`
	ChapterTitle       string   `json:"chapter_title"`
	RelatedTopics      []string `json:"related_topics"`
	LearningObjectives []string `json:"learning_objectives"`
	SuggestedReading   []string `json:"suggested_reading"`
	RecommendedMinutes int      `json:"recommended_minutes"`
	QuizOutline        []string `json:"quiz_outline"`
}

// OpenAIGenerator builds concept maps from ingested material chunks via the
// chat completions API, persisting the result through the store.
type OpenAIGenerator struct {
	store conceptstore.Store
}

func NewOpenAIGenerator(store conceptstore.Store) *OpenAIGenerator {
	return &OpenAIGenerator{store: store}
}

// Generate returns the stored document unless force is set, regenerating and
// persisting otherwise. Zero AI concepts trigger the deterministic fallback,
// so a course with ingested materials always ends up with a usable map.
func (g *OpenAIGenerator) Generate(ctx context.Context, courseID, bookID string, force bool) (*concepts.ConceptMapDocument, error) {
	if !force {
		if doc, err := g.loadExisting(ctx, courseID, bookID); err == nil {
			return doc, nil
		} else if !errors.Is(err, conceptstore.ErrNotFound) {
			return nil, err
		}
	}

	chunks, sourceCount, err := materialChunks(ctx, courseID, bookID)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no ingested materials for course %s", courseID)
	}

	generated, err := g.generateConcepts(ctx, courseID, chunks)
	if err != nil {
		logger.Error(err, "%v: ai generation failed for course %s", config.ModuleGenerator, courseID)
		generated = nil
	}

	doc := &concepts.ConceptMapDocument{
		CourseID:       courseID,
		BookID:         bookID,
		GeneratedAt:    time.Now(),
		SourceCount:    sourceCount,
		IsBookSpecific: bookID != "",
	}
	if len(generated) == 0 {
		doc.Concepts = fallbackConcepts(chunks)
		doc.IsFallback = true
	} else {
		doc.Concepts = generated
	}

	if err := g.store.Save(ctx, courseID, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (g *OpenAIGenerator) loadExisting(ctx context.Context, courseID, bookID string) (*concepts.ConceptMapDocument, error) {
	if bookID != "" {
		return g.store.LoadBook(ctx, courseID, bookID)
	}
	return g.store.Load(ctx, courseID)
}

// materialChunks collects chunk previews for the course scope, capped by
// config, along with the number of distinct source documents.
func materialChunks(ctx context.Context, courseID, bookID string) ([]string, int, error) {
	var docs []model.Document
	var err error
	if bookID != "" {
		docs, err = database.ListEntities[model.Document](ctx, "course_id = ? AND book_id = ?", courseID, bookID)
	} else {
		docs, err = database.ListEntities[model.Document](ctx, "course_id = ?", courseID)
	}
	if err != nil {
		return nil, 0, err
	}
	if len(docs) == 0 {
		return nil, 0, nil
	}

	ids := make([]int64, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	rows, err := database.ListEntities[model.Chunk](ctx, "document_id IN ?", ids)
	if err != nil {
		return nil, 0, err
	}

	limit := config.Cfg.Generator.MaxSourceChunks
	if limit <= 0 {
		limit = 40
	}
	previews := make([]string, 0, limit)
	for _, row := range rows {
		if len(previews) >= limit {
			break
		}
		preview := row.Content
		if row.ContentPreview != nil && *row.ContentPreview != "" {
			preview = *row.ContentPreview
		}
		preview = strings.TrimSpace(preview)
		if preview != "" {
			previews = append(previews, preview)
		}
	}
	return previews, len(docs), nil
}

func (g *OpenAIGenerator) generateConcepts(ctx context.Context, courseID string, chunks []string) ([]concepts.Concept, error) {
	maxConcepts := config.Cfg.Generator.MaxConcepts
	if maxConcepts <= 0 {
		maxConcepts = 10
	}

	sysMsg, userMsg := buildPrompt(courseID, chunks, maxConcepts)
	raw, err := callLLM(ctx, sysMsg, userMsg)
	if err != nil {
		return nil, err
	}

	var parsed []generatedConcept
	if err := json.Unmarshal([]byte(extractJSONArray(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("parse generated concepts: %w", err)
	}

	out := make([]concepts.Concept, 0, len(parsed))
	for i, p := range parsed {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		c := concepts.Concept{
			ID:                 fmt.Sprintf("%s-concept-%d", courseID, i),
			Name:               p.Name,
			Summary:            p.Summary,
			RelatedTopics:      p.RelatedTopics,
			LearningObjectives: p.LearningObjectives,
			SuggestedReading:   p.SuggestedReading,
			RecommendedMinutes: p.RecommendedMinutes,
			QuizOutline:        p.QuizOutline,
		}
		if c.RecommendedMinutes <= 0 {
			c.RecommendedMinutes = 30
		}
		if p.ChapterTitle != "" {
			c.Chapter = &concepts.Chapter{Title: p.ChapterTitle, Index: i + 1}
		}
		out = append(out, c)
	}
	return out, nil
}

func buildPrompt(courseID string, chunks []string, maxConcepts int) (systemMsg, userMsg string) {
	var b strings.Builder
	b.WriteString("You are a curriculum designer. Build a concept map from excerpts of course materials. ")
	b.WriteString(fmt.Sprintf("Reply with a JSON array of at most %d objects, each with fields: ", maxConcepts))
	b.WriteString(`"name", "summary", "chapter_title", "related_topics", "learning_objectives", "suggested_reading", "recommended_minutes", "quiz_outline". `)
	b.WriteString("Only use information present in the excerpts.\n\nExcerpts:\n")
	for i, ch := range chunks {
		b.WriteString(fmt.Sprintf("[%d] %s\n\n", i+1, ch))
	}
	systemMsg = b.String()
	userMsg = fmt.Sprintf("Course: %s. Produce the concept map JSON array now.", courseID)
	return
}

func callLLM(ctx context.Context, promptSystem, promptUser string) (string, error) {
	client := openai.NewClient(option.WithAPIKey(config.Cfg.OpenAI.Key))
	req := chatRequest{
		Model:       config.Cfg.OpenAI.Model,
		Temperature: 0.2,
		MaxTokens:   2048,
		Messages: []chatMessage{
			{Role: "system", Content: promptSystem},
			{Role: "user", Content: promptUser},
		},
	}
	var out chatResponse
	if err := client.Post(ctx, "/chat/completions", req, &out); err != nil {
		logger.Error(err, "%v: call llm failed", config.ModuleGenerator)
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// extractJSONArray tolerates models that wrap the array in prose or fences.
func extractJSONArray(s string) string {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
