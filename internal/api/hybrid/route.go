package hybrid

import (
	hybridcore "ai-course-concepts/internal/core/hybrid"

	"github.com/gofiber/fiber/v3"
)

// RegisterRoutes registers the hybrid concept route on the provided router.
func RegisterRoutes(r fiber.Router, svc *hybridcore.Service) {
	h := NewHandler(svc)
	grp := r.Group("/concepts")

	grp.Post("/hybrid", h.HandleHybrid)
}
