package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"puntoventa/internal/core/apperror"
	"puntoventa/internal/domain/sales"
	"puntoventa/internal/infrastructure/http/v1/dto"
)

// SaleHandler serves the sales endpoints.
type SaleHandler struct {
	*BaseHandler
	svc *sales.Service
}

// NewSaleHandler creates a sale handler.
func NewSaleHandler(svc *sales.Service) *SaleHandler {
	return &SaleHandler{BaseHandler: NewBaseHandler(), svc: svc}
}

// Checkout completes a sale: validates the cart, decrements stock and
// persists the invoice atomically.
// POST /api/v1/sales
func (h *SaleHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	sale, err := h.svc.Checkout(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

// Cancel voids a sale and restores its stock.
// POST /api/v1/sales/:id/cancel
func (h *SaleHandler) Cancel(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.CancelSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sale, err := h.svc.Cancel(c.Request.Context(), saleID, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, sale)
}

// Get returns a sale by ID.
// GET /api/v1/sales/:id
func (h *SaleHandler) Get(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	sale, err := h.svc.Get(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, sale)
}

// GetByInvoice looks a sale up by its invoice number.
// GET /api/v1/sales/invoice/:number
func (h *SaleHandler) GetByInvoice(c *gin.Context) {
	sale, err := h.svc.GetByInvoice(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, sale)
}

// List returns sales with optional filters.
// GET /api/v1/sales?status=&invoice=&cedula=&seller=&from=&to=
func (h *SaleHandler) List(c *gin.Context) {
	limit, offset := h.Pagination(c)
	filter := sales.Filter{
		Status:        sales.Status(c.Query("status")),
		InvoiceNumber: c.Query("invoice"),
		ClientCedula:  c.Query("cedula"),
		SellerID:      c.Query("seller"),
		From:          h.ParseTimeQuery(c, "from"),
		To:            h.ParseTimeQuery(c, "to"),
		Limit:         limit,
		Offset:        offset,
	}

	items, total, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse[*sales.Sale]{Items: items, Total: total, Limit: limit, Offset: offset})
}

// Summary aggregates completed sales over a period. Defaults to the
// current day when no range is given.
// GET /api/v1/sales/summary?from=&to=
func (h *SaleHandler) Summary(c *gin.Context) {
	from := h.ParseTimeQuery(c, "from")
	to := h.ParseTimeQuery(c, "to")
	if from.IsZero() && to.IsZero() {
		now := time.Now()
		from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		to = from.AddDate(0, 0, 1)
	}
	if from.IsZero() || to.IsZero() || !to.After(from) {
		h.Error(c, apperror.NewValidation("invalid summary period"))
		return
	}

	summary, err := h.svc.Summarize(c.Request.Context(), from, to)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}
