package concepts

import (
	"ai-course-concepts/config"
	conceptscore "ai-course-concepts/internal/core/concepts"
	"ai-course-concepts/internal/core/conceptstore"
	"ai-course-concepts/internal/core/generator"
	"ai-course-concepts/pkg/apperror"
	"ai-course-concepts/pkg/apperror/status"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type Handler struct {
	store conceptstore.Store
	gen   generator.Generator
}

func NewHandler(store conceptstore.Store, gen generator.Generator) *Handler {
	return &Handler{store: store, gen: gen}
}

// HandleGetCourse returns the stored course-level concept map.
func (h *Handler) HandleGetCourse(c fiber.Ctx) error {
	trackingID := trackingID(c)
	courseID := strings.TrimSpace(c.Params("courseID"))
	if courseID == "" {
		return apperror.BadRequest(config.ModuleConcepts, c, status.MissingParams, "courseID is required")
	}

	doc, err := h.store.Load(c.Context(), courseID)
	if err != nil {
		if errors.Is(err, conceptstore.ErrNotFound) {
			return apperror.NotFound(config.ModuleConcepts, c, status.ConceptsNotFound, "no concept map for course")
		}
		return apperror.InternalError(config.ModuleConcepts, c, err)
	}

	return apperror.Success(config.ModuleConcepts, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "concepts ok",
		TrackingID: trackingID,
		Data:       doc,
	})
}

// HandleGetBook returns the stored book-scoped concept map.
func (h *Handler) HandleGetBook(c fiber.Ctx) error {
	trackingID := trackingID(c)
	courseID := strings.TrimSpace(c.Params("courseID"))
	bookID := strings.TrimSpace(c.Params("bookID"))
	if courseID == "" || bookID == "" {
		return apperror.BadRequest(config.ModuleConcepts, c, status.MissingParams, "courseID and bookID are required")
	}

	doc, err := h.store.LoadBook(c.Context(), courseID, bookID)
	if err != nil {
		if errors.Is(err, conceptstore.ErrNotFound) {
			return apperror.NotFound(config.ModuleConcepts, c, status.ConceptsNotFound, "no concept map for book")
		}
		return apperror.InternalError(config.ModuleConcepts, c, err)
	}

	return apperror.Success(config.ModuleConcepts, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "concepts ok",
		TrackingID: trackingID,
		Data:       doc,
	})
}

// HandleGenerate (re)generates the concept map for a course, optionally
// scoped to one book. force=true supersedes the stored document wholesale.
func (h *Handler) HandleGenerate(c fiber.Ctx) error {
	trackingID := trackingID(c)
	courseID := strings.TrimSpace(c.Params("courseID"))
	if courseID == "" {
		return apperror.BadRequest(config.ModuleGenerator, c, status.MissingParams, "courseID is required")
	}
	bookID := strings.TrimSpace(c.Query("book_id"))
	force := c.Query("force") == "1" || c.Query("force") == "true"

	doc, err := h.gen.Generate(c.Context(), courseID, bookID, force)
	if err != nil {
		return apperror.InternalError(config.ModuleGenerator, c, status.New(status.GenerationFailed, err))
	}

	return apperror.Success(config.ModuleGenerator, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "concept map generated",
		TrackingID: trackingID,
		Data:       doc,
	})
}

type quizMetricsRequest struct {
	BookID string  `json:"book_id"`
	Score  float64 `json:"score"`
}

// HandleQuizMetrics records one quiz attempt into the stored document. This
// is the only mutation path besides regeneration; hybrid enrichment is never
// written back.
func (h *Handler) HandleQuizMetrics(c fiber.Ctx) error {
	trackingID := trackingID(c)
	courseID := strings.TrimSpace(c.Params("courseID"))
	if courseID == "" {
		return apperror.BadRequest(config.ModuleConcepts, c, status.MissingParams, "courseID is required")
	}
	var req quizMetricsRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return apperror.BadRequest(config.ModuleConcepts, c, status.InvalidRequestBody, err.Error())
	}

	var (
		doc *conceptscore.ConceptMapDocument
		err error
	)
	if req.BookID != "" {
		doc, err = h.store.LoadBook(c.Context(), courseID, req.BookID)
	} else {
		doc, err = h.store.Load(c.Context(), courseID)
	}
	if err != nil {
		if errors.Is(err, conceptstore.ErrNotFound) {
			return apperror.NotFound(config.ModuleConcepts, c, status.ConceptsNotFound, "no concept map for course")
		}
		return apperror.InternalError(config.ModuleConcepts, c, err)
	}

	// Running average over attempts; last-writer-wins on the row.
	total := doc.QuizAvgScore*float64(doc.QuizAttempts) + req.Score
	doc.QuizAttempts++
	doc.QuizAvgScore = total / float64(doc.QuizAttempts)

	if err := h.store.Save(c.Context(), courseID, doc); err != nil {
		return apperror.InternalError(config.ModuleConcepts, c, err)
	}

	return apperror.Success(config.ModuleConcepts, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "quiz metrics recorded",
		TrackingID: trackingID,
		Data:       doc,
	})
}

func trackingID(c fiber.Ctx) string {
	if id := c.Get("X-Request-ID"); id != "" {
		return id
	}
	return uuid.NewString()
}
