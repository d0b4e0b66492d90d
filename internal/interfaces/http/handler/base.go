package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sellerdesk/sellerdesk/internal/domain/order"
	"github.com/sellerdesk/sellerdesk/internal/interfaces/http/dto"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response, deriving the status from the code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(code, message))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeNotFound, message)
}

// HandleError maps domain errors onto the response envelope
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrPackagingNotFound):
		h.Error(c, dto.ErrCodeNotFound, err.Error())
	case errors.Is(err, order.ErrRefreshInFlight):
		h.Error(c, dto.ErrCodeRefreshBusy, "A refresh is already in progress")
	case errors.Is(err, order.ErrMutationRejected):
		h.Error(c, dto.ErrCodeMutationBlocked, "Mutations are not allowed while a refresh is in progress")
	case errors.Is(err, order.ErrPackagingInUse):
		h.Error(c, dto.ErrCodeStillInUse, err.Error())
	case errors.Is(err, order.ErrAPIKeyMissing):
		h.Error(c, dto.ErrCodePrecondition, "No API key is configured")
	case errors.Is(err, order.ErrAuthFailed):
		h.Error(c, dto.ErrCodeUpstreamAuth, "The marketplace rejected the API key")
	case errors.Is(err, order.ErrTransport),
		errors.Is(err, order.ErrMalformedResponse):
		h.Error(c, dto.ErrCodeUpstream, err.Error())
	default:
		h.Error(c, dto.ErrCodeInternal, err.Error())
	}
}
