package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sellerdesk/sellerdesk/internal/application/orders"
	"github.com/sellerdesk/sellerdesk/internal/domain/order"
)

// PackagingHandler exposes packaging type management
type PackagingHandler struct {
	BaseHandler
	manager *orders.Manager
}

// NewPackagingHandler creates a packaging handler
func NewPackagingHandler(manager *orders.Manager) *PackagingHandler {
	return &PackagingHandler{manager: manager}
}

// List returns all packaging types with their reference counts
func (h *PackagingHandler) List(c *gin.Context) {
	packagings, err := h.manager.Packagings()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]PackagingResponse, len(packagings))
	for i, p := range packagings {
		inUse, err := h.manager.OrdersWithPackaging(p.ID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		out[i] = PackagingResponse{
			ID:         p.ID,
			Name:       p.Name,
			Stock:      p.Stock,
			RestockURL: p.RestockURL,
			InUse:      inUse,
		}
	}
	h.Success(c, out)
}

// Create adds a new packaging type
func (h *PackagingHandler) Create(c *gin.Context) {
	var req PackagingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	created, err := h.manager.UpdatePackaging(order.Packaging{
		ID:         -1,
		Name:       req.Name,
		Stock:      req.Stock,
		RestockURL: req.RestockURL,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, PackagingResponse{
		ID:         created.ID,
		Name:       created.Name,
		Stock:      created.Stock,
		RestockURL: created.RestockURL,
	})
}

// Update modifies an existing packaging type
func (h *PackagingHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.BadRequest(c, "Invalid packaging ID")
		return
	}

	var req PackagingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.manager.UpdatePackaging(order.Packaging{
		ID:         id,
		Name:       req.Name,
		Stock:      req.Stock,
		RestockURL: req.RestockURL,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, PackagingResponse{
		ID:         updated.ID,
		Name:       updated.Name,
		Stock:      updated.Stock,
		RestockURL: updated.RestockURL,
	})
}

// Delete removes a packaging type unless an order still references it
func (h *PackagingHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.BadRequest(c, "Invalid packaging ID")
		return
	}

	if err := h.manager.RemovePackaging(id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
