// Package handler implements the HTTP handlers for the backend API.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/homeops/backend/internal/domain/plan"
	"github.com/homeops/backend/internal/domain/shared"
	"github.com/homeops/backend/internal/interfaces/http/dto"
	"github.com/homeops/backend/internal/interfaces/http/middleware"
)

// IdempotencyKeyHeader carries the optional client-chosen key that guards
// clone and import against replays
const IdempotencyKeyHeader = "Idempotency-Key"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// getUserID extracts the authenticated user ID from JWT claims
func getUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr := middleware.GetJWTUserID(c)
	if userIDStr == "" {
		return uuid.Nil, errors.New("user ID not found in context")
	}
	return uuid.Parse(userIDStr)
}

// actorID returns the authenticated user ID for audit fields, nil when the
// request carries no usable identity
func actorID(c *gin.Context) *uuid.UUID {
	id, err := getUserID(c)
	if err != nil {
		return nil
	}
	return &id
}

// getIdempotencyKey returns the optional Idempotency-Key header value
func getIdempotencyKey(c *gin.Context) string {
	return c.GetHeader(IdempotencyKeyHeader)
}

// parseIDParam parses the :id path parameter as a UUID
func (h *BaseHandler) parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// BindingError sends the response for a failed request binding
func (h *BaseHandler) BindingError(c *gin.Context, err error) {
	middleware.HandleBindingError(c, err)
}

// HandleDomainError converts domain errors to HTTP responses. Tree
// validation failures return the full violation list in one 422 response.
func (h *BaseHandler) HandleDomainError(c *gin.Context, err error) {
	requestID := getRequestID(c)

	var verr *plan.ValidationError
	if errors.As(err, &verr) {
		details := make([]dto.ViolationDetail, 0, len(verr.Violations))
		for _, v := range verr.Violations {
			details = append(details, dto.ViolationDetail{
				Path:    v.Path,
				Code:    v.Code,
				Message: v.Message,
			})
		}
		c.JSON(http.StatusUnprocessableEntity, dto.NewValidationErrorResponse(
			"Location tree validation failed",
			requestID,
			details,
		))
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		message := domainErr.Message
		if code == dto.ErrCodeInternal {
			// Internal invariant breaks never leak their detail
			message = "Internal server error"
		}
		c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, requestID))
		return
	}

	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInternal, "Internal server error", requestID))
}
