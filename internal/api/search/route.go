package search

import (
	"ai-course-concepts/internal/core/rag"

	"github.com/gofiber/fiber/v3"
)

func RegisterRoutes(r fiber.Router, backend rag.Backend) {
	h := NewHandler(backend)
	grp := r.Group("/search")

	grp.Get("/", h.HandleSearch)
}
