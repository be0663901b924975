package ingest

import (
	"ai-course-concepts/config"
	"ai-course-concepts/internal/services/ingest"
	"ai-course-concepts/pkg/apperror"
	"ai-course-concepts/pkg/apperror/status"
	"strconv"

	"github.com/gofiber/fiber/v3"
)

type ingestResponse struct {
	DocID int64 `json:"doc_id"`
}

// HandleIngest kicks off ingestion of an uploaded material document.
func HandleIngest(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	docIDStr := c.Params("docID")
	if docIDStr == "" {
		return apperror.BadRequest(config.ModuleIngest, c, status.MissingParams, "docID is required")
	}
	docID, err := strconv.ParseInt(docIDStr, 10, 64)
	if err != nil {
		return apperror.BadRequest(config.ModuleIngest, c, status.MissingParams, "invalid docID")
	}

	q := c.Query("force")
	force := q == "1" || q == "true" || q == "yes"

	// Fire and forget
	go ingest.RunIngestion(docID, force)

	return apperror.Success(config.ModuleIngest, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "ingest started",
		TrackingID: trackingID,
		Data:       ingestResponse{DocID: docID},
	})
}
