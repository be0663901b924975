package hybrid

import (
	"ai-course-concepts/config"
	"ai-course-concepts/internal/core/concepts"
	"ai-course-concepts/internal/core/conceptstore"
	hybridcore "ai-course-concepts/internal/core/hybrid"
	"ai-course-concepts/pkg/apperror"
	"ai-course-concepts/pkg/apperror/status"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type Handler struct {
	svc *hybridcore.Service
}

func NewHandler(svc *hybridcore.Service) *Handler {
	return &Handler{svc: svc}
}

// HandleHybrid serves the hybrid concept contract: stored concepts plus
// optional bounded retrieval analysis. A retrieval failure degrades the
// payload; only missing base concepts or infrastructure failures fail the
// request.
func (h *Handler) HandleHybrid(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")
	if trackingID == "" {
		trackingID = uuid.NewString()
	}

	var req concepts.HybridRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return apperror.BadRequest(config.ModuleHybrid, c, status.InvalidRequestBody, err.Error())
	}
	req.CourseID = strings.TrimSpace(req.CourseID)
	if req.CourseID == "" {
		return apperror.BadRequest(config.ModuleHybrid, c, status.MissingParams, "course_id is required")
	}
	if req.DepthLevel != "" && !req.DepthLevel.Valid() {
		return apperror.BadRequest(config.ModuleHybrid, c, status.InvalidDepthLevel, "depth_level must be basic, detailed or comprehensive")
	}

	resp, err := h.svc.Process(c.Context(), req)
	if err != nil {
		if errors.Is(err, conceptstore.ErrNotFound) {
			return apperror.NotFound(config.ModuleHybrid, c, status.ConceptsNotFound, "no concept map for the requested course or book")
		}
		return apperror.InternalError(config.ModuleHybrid, c, err)
	}

	c.Set("X-Request-ID", trackingID)
	return c.Status(fiber.StatusOK).JSON(resp)
}
