package handler

import (
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/sellerdesk/sellerdesk/internal/application/orders"
	"github.com/sellerdesk/sellerdesk/internal/domain/currency"
)

// OrderHandler exposes the order cache and its mutations
type OrderHandler struct {
	BaseHandler
	manager    *orders.Manager
	sellerBase string
	rates      currency.Rates
	target     string
}

// NewOrderHandler creates an order handler. rates may be nil when the
// exchange-rate fetch failed at startup; the export endpoint then
// serves unconverted totals only.
func NewOrderHandler(manager *orders.Manager, sellerBase string, rates currency.Rates, target string) *OrderHandler {
	return &OrderHandler{
		manager:    manager,
		sellerBase: sellerBase,
		rates:      rates,
		target:     target,
	}
}

// List returns all cached orders in the order the remote reported them
func (h *OrderHandler) List(c *gin.Context) {
	all := h.manager.Orders()
	summaries := make([]OrderSummaryResponse, len(all))
	for i, o := range all {
		summaries[i] = toOrderSummary(o)
	}
	h.Success(c, summaries)
}

// Get returns one order with full detail
func (h *OrderHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	o, ok := h.manager.Order(id)
	if !ok {
		h.NotFound(c, "Order not found")
		return
	}
	h.Success(c, toOrderDetail(o, h.sellerBase))
}

// Refresh runs one reconciliation cycle against the remote
func (h *OrderHandler) Refresh(c *gin.Context) {
	if err := h.manager.Refresh(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"orders": len(h.manager.OrderIDs())})
}

// Ship marks an order fulfilled on the remote
func (h *OrderHandler) Ship(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req ShipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	shipped, err := h.manager.MarkShipped(c.Request.Context(), id, req.TrackingCode, req.TrackingURL)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderDetail(shipped, h.sellerBase))
}

// SetPackaging assigns a packaging type to an order
func (h *OrderHandler) SetPackaging(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req PackagingAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.manager.SetPackaging(c.Request.Context(), id, *req.PackagingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderDetail(updated, h.sellerBase))
}

// SetNote replaces the seller note on an order
func (h *OrderHandler) SetNote(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.manager.SetNote(c.Request.Context(), id, req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderDetail(updated, h.sellerBase))
}

// Export streams the cached orders as CSV
func (h *OrderHandler) Export(c *gin.Context) {
	exporter := orders.NewExporter()
	if sep := c.Query("separator"); sep != "" {
		r, _ := utf8.DecodeRuneInString(sep)
		if r == utf8.RuneError {
			h.BadRequest(c, "Invalid separator")
			return
		}
		exporter.Separator = r
	}
	if c.Query("convert") == "true" {
		if h.rates == nil {
			h.BadRequest(c, "No exchange rates available")
			return
		}
		exporter.Rates = h.rates
		exporter.Target = h.target
		exporter.Columns = append(exporter.Columns, orders.ColumnConvertedTotal)
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="orders.csv"`)
	if err := exporter.WriteCSV(c.Writer, h.manager.Orders()); err != nil {
		// Headers are gone; all we can do is abort the stream
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}
