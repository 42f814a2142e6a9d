package middleware

import (
	"errors"
	"net/http"

	"pdf-quiz/internal/domain"
	"pdf-quiz/internal/logger"
	"pdf-quiz/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Status    int                    `json:"status"`
	RequestID string                 `json:"requestId,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// ValidationErrorResponse represents validation error response
type ValidationErrorResponse struct {
	Code      string                  `json:"code"`
	Message   string                  `json:"message"`
	Status    int                     `json:"status"`
	RequestID string                  `json:"requestId,omitempty"`
	Errors    []validation.FieldError `json:"errors"`
}

// ErrorHandler is the centralized fiber error handler. It is installed through
// fiber.Config so that errors returned from any handler end up here.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		log := logger.Get().With(zap.String("request_id", RequestID(c)))

		var validationErrs validation.Errors
		if errors.As(err, &validationErrs) {
			log.Warn("Validation errors occurred",
				zap.String("path", c.Path()),
				zap.Int("error_count", len(validationErrs)),
			)
			return c.Status(http.StatusBadRequest).JSON(ValidationErrorResponse{
				Code:      string(domain.CodeValidation),
				Message:   "Request validation failed",
				Status:    http.StatusBadRequest,
				RequestID: RequestID(c),
				Errors:    validationErrs,
			})
		}

		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			statusCode := StatusFor(domainErr.Code)

			fields := []zap.Field{
				zap.String("code", string(domainErr.Code)),
				zap.String("message", domainErr.Message),
				zap.Int("status", statusCode),
				zap.Error(domainErr.Cause),
			}
			if statusCode >= http.StatusInternalServerError {
				log.Error("Domain error occurred", fields...)
			} else {
				log.Info("Request rejected", fields...)
			}

			response := ErrorResponse{
				Code:      string(domainErr.Code),
				Message:   domainErr.Message,
				Status:    statusCode,
				RequestID: RequestID(c),
			}
			if len(domainErr.Context) > 0 {
				response.Details = domainErr.Context
			}
			return c.Status(statusCode).JSON(response)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			log.Warn("Fiber error occurred",
				zap.Int("code", fiberErr.Code),
				zap.String("message", fiberErr.Message),
			)
			return c.Status(fiberErr.Code).JSON(ErrorResponse{
				Code:      "HTTP_ERROR",
				Message:   fiberErr.Message,
				Status:    fiberErr.Code,
				RequestID: RequestID(c),
			})
		}

		log.Error("Unknown error occurred",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Code:      string(domain.CodeInternal),
			Message:   "Internal server error",
			Status:    http.StatusInternalServerError,
			RequestID: RequestID(c),
		})
	}
}

// StatusFor maps domain error codes to HTTP status codes
func StatusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeNotFound, domain.CodeSessionNotFound:
		return http.StatusNotFound
	case domain.CodeInvalidInput, domain.CodeValidation, domain.CodeNoFile:
		return http.StatusBadRequest
	case domain.CodeNoDocument, domain.CodeNoQuiz:
		return http.StatusConflict
	case domain.CodeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case domain.CodeUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	case domain.CodeUploadFailed, domain.CodeGenerationFailed, domain.CodeHistoryUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
