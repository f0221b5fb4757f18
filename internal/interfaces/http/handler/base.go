package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domain "github.com/revo/commerce-sync/internal/domain/sync"
	"github.com/revo/commerce-sync/internal/infrastructure/dispatch"
	"github.com/revo/commerce-sync/internal/interfaces/http/dto"
	"github.com/revo/commerce-sync/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// getTenantID extracts the tenant id placed by the tenant middleware
func getTenantID(c *gin.Context) string {
	return middleware.GetTenantID(c)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleSyncError maps control-plane errors to HTTP responses. Validation
// sentinels become 400s, state sentinels 422s, and everything else is treated
// as a worker-boundary failure: the message is already normalized and bounded,
// so it is safe to pass through.
func (h *BaseHandler) HandleSyncError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, domain.ErrStoreIDRequired),
		errors.Is(err, domain.ErrSkuListEmpty),
		errors.Is(err, domain.ErrOrderIDRequired),
		errors.Is(err, domain.ErrJobIDRequired),
		errors.Is(err, domain.ErrRunIDRequired),
		errors.Is(err, domain.ErrRunNoItems):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, err.Error())
	case errors.Is(err, domain.ErrActionUnknown):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrJobNotDead),
		errors.Is(err, domain.ErrRunNoFailedItems),
		errors.Is(err, domain.ErrRunItemTerminal):
		h.Error(c, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState, err.Error())
	case errors.Is(err, dispatch.ErrMissingTenant):
		h.Unauthorized(c, "Tenant identification required")
	default:
		h.Error(c, http.StatusBadGateway, dto.ErrCodeSyncFailed, err.Error())
	}
}
