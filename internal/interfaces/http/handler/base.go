package handler

import (
	"errors"
	"net/http"

	"github.com/coachpoint/backend/internal/domain/shared"
	"github.com/coachpoint/backend/internal/infrastructure/logger"
	"github.com/coachpoint/backend/internal/interfaces/http/dto"
	"github.com/coachpoint/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common response helpers shared by all handlers
type BaseHandler struct {
	logger *zap.Logger
}

// NewBaseHandler creates a new base handler
func NewBaseHandler(logger *zap.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// getRequestID extracts the request ID from gin context
func getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}

// getTenantID extracts the authenticated staff member's tenant from context.
// Returns uuid.Nil when the route ran without JWT auth.
func getTenantID(c *gin.Context) uuid.UUID {
	id, err := uuid.Parse(middleware.GetJWTTenantID(c))
	if err != nil {
		return uuid.Nil
	}
	return id
}

// getUserID extracts the authenticated staff member's id from context
func getUserID(c *gin.Context) uuid.UUID {
	id, err := uuid.Parse(middleware.GetJWTUserID(c))
	if err != nil {
		return uuid.Nil
	}
	return id
}

// Success sends a 200 response with data
func (h *BaseHandler) Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a 200 response with data and pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data interface{}, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 response with data
func (h *BaseHandler) Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the status derived from the code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	normalized := dto.NormalizeErrorCode(code)
	c.JSON(dto.GetHTTPStatus(normalized), dto.NewErrorResponseWithRequestID(normalized, message, getRequestID(c)))
}

// BadRequest sends a 400 error response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 error response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 error response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeUnauthorized, message)
}

// Forbidden sends a 403 error response
func (h *BaseHandler) Forbidden(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeForbidden, message)
}

// InternalError sends a 500 error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeInternal, message)
}

// ValidationError sends a 400 response describing binding failures per field
func (h *BaseHandler) ValidationError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]dto.ValidationDetail, 0, len(validationErrs))
		for _, fe := range validationErrs {
			details = append(details, dto.ValidationDetail{
				Field:   fe.Field(),
				Message: validationMessage(fe),
			})
		}
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Validation failed", getRequestID(c), details))
		return
	}

	h.Error(c, dto.ErrCodeInvalidJSON, "Request body could not be parsed")
}

// HandleError maps an application error to the right HTTP response. Domain
// errors carry their own code; anything else is a 500 and gets logged.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.Error(c, domainErr.Code, domainErr.Message)
		return
	}

	if errors.Is(err, shared.ErrNotFound) {
		h.NotFound(c, "Resource not found")
		return
	}

	logger.WithLogger(c.Request.Context(), h.logger).Error("Unhandled error in request",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	h.InternalError(c, "An internal error occurred")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return "Value is too short or too small"
	case "max":
		return "Value is too long or too large"
	case "uuid":
		return "Must be a valid UUID"
	case "oneof":
		return "Value must be one of the allowed options"
	default:
		return "Invalid value"
	}
}
