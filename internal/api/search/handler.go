package search

import (
	"strconv"
	"strings"

	"ai-course-concepts/config"
	"ai-course-concepts/internal/core/rag"
	"ai-course-concepts/pkg/apperror"
	"ai-course-concepts/pkg/apperror/status"

	"github.com/gofiber/fiber/v3"
)

type Handler struct {
	backend rag.Backend
}

func NewHandler(backend rag.Backend) *Handler {
	return &Handler{backend: backend}
}

// HandleSearch exposes raw passage retrieval, mainly for inspecting what the
// hybrid path would see for a query.
func (h *Handler) HandleSearch(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return apperror.BadRequest(config.ModuleRAG, c, status.MissingParams, "q is required")
	}
	courseID := strings.TrimSpace(c.Query("course_id"))
	if courseID == "" {
		return apperror.BadRequest(config.ModuleRAG, c, status.MissingParams, "course_id is required")
	}
	bookID := strings.TrimSpace(c.Query("book_id"))

	topK := 8
	if v, err := strconv.Atoi(c.Query("top_k")); err == nil && v > 0 && v <= 64 {
		topK = v
	}
	threshold := config.Cfg.RAG.SimilarityThreshold
	if v, err := strconv.ParseFloat(c.Query("threshold"), 32); err == nil && v >= 0 && v <= 1 {
		threshold = float32(v)
	}

	result, err := h.backend.Search(c.Context(), rag.SearchRequest{
		CourseID:            courseID,
		BookID:              bookID,
		Query:               q,
		MaxResults:          topK,
		SimilarityThreshold: threshold,
		SourceFilter:        rag.SourceFilterForBook(bookID),
	})
	if err != nil {
		return apperror.InternalError(config.ModuleRAG, c, err)
	}

	return apperror.Success(config.ModuleRAG, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "search ok",
		TrackingID: trackingID,
		Data:       result,
	})
}
