package apperror

import (
	"ai-course-concepts/config"
	"ai-course-concepts/pkg/apperror/status"
	"ai-course-concepts/pkg/logger"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"
)

// WriteError logs a structured warning and returns a standardized JSON error
func WriteError(module config.Module, c fiber.Ctx, httpStatus int, code string, message string) error {
	logger.WithFields(map[string]interface{}{
		"module":        module,
		"status_code":   httpStatus,
		"error_code":    code,
		"error_message": message,
		"http_method":   c.Method(),
		"path":          c.Path(),
		"url":           c.OriginalURL(),
		"ip":            c.IP(),
	}).Warnf("http error")

	return c.Status(httpStatus).JSON(ErrorResponse{
		Error:     message,
		ErrorCode: code,
	})
}

// Shorthands for common error responses
func BadRequest(module config.Module, c fiber.Ctx, code status.ErrorCode, message string) error {
	errorCode := fmt.Sprintf("CC-%d", code)
	return WriteError(module, c, fiber.StatusBadRequest, errorCode, message)
}

// NotFound returns a standardized 404 JSON error
func NotFound(module config.Module, c fiber.Ctx, code status.ErrorCode, message string) error {
	errorCode := fmt.Sprintf("CC-%d", code)
	return WriteError(module, c, fiber.StatusNotFound, errorCode, message)
}

// InternalError writes a structured warning and returns a standardized JSON error
func InternalError(module config.Module, c fiber.Ctx, err error) error {
	code := status.Internal
	var coded status.CodedError
	if errors.As(err, &coded) {
		code = coded.ErrorCode()
	}
	errorCode := fmt.Sprintf("CC-%d", code)
	return WriteError(module, c, fiber.StatusInternalServerError, errorCode, err.Error())
}

// Success writes a standardized JSON success response
func Success(module config.Module, c fiber.Ctx, response FiberSuccessMessage) error {
	return c.Status(fiber.StatusOK).JSON(response)
}
