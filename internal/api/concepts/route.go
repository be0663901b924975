package concepts

import (
	"ai-course-concepts/internal/core/conceptstore"
	"ai-course-concepts/internal/core/generator"

	"github.com/gofiber/fiber/v3"
)

// RegisterRoutes registers concept-map routes on the provided router.
func RegisterRoutes(r fiber.Router, store conceptstore.Store, gen generator.Generator) {
	h := NewHandler(store, gen)
	grp := r.Group("/concepts")

	grp.Get("/:courseID", h.HandleGetCourse)
	grp.Get("/:courseID/books/:bookID", h.HandleGetBook)
	grp.Post("/:courseID/generate", h.HandleGenerate)
	grp.Post("/:courseID/quiz-metrics", h.HandleQuizMetrics)
}
