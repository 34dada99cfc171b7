package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"puntoventa/internal/domain/returns"
	"puntoventa/internal/infrastructure/http/v1/dto"
)

// ReturnHandler serves the returns endpoints.
type ReturnHandler struct {
	*BaseHandler
	svc *returns.Service
}

// NewReturnHandler creates a return handler.
func NewReturnHandler(svc *returns.Service) *ReturnHandler {
	return &ReturnHandler{BaseHandler: NewBaseHandler(), svc: svc}
}

// Create processes a return against a completed sale: restores stock
// and records the refund atomically.
// POST /api/v1/returns
func (h *ReturnHandler) Create(c *gin.Context) {
	var req dto.CreateReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	ret, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, ret)
}

// Get returns a return by ID.
// GET /api/v1/returns/:id
func (h *ReturnHandler) Get(c *gin.Context) {
	returnID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	ret, err := h.svc.Get(c.Request.Context(), returnID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, ret)
}

// List returns returns with optional filters.
// GET /api/v1/returns?number=&status=&from=&to=
func (h *ReturnHandler) List(c *gin.Context) {
	limit, offset := h.Pagination(c)
	filter := returns.Filter{
		ReturnNumber: c.Query("number"),
		Status:       returns.Status(c.Query("status")),
		From:         h.ParseTimeQuery(c, "from"),
		To:           h.ParseTimeQuery(c, "to"),
		Limit:        limit,
		Offset:       offset,
	}

	items, total, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse[*returns.Return]{Items: items, Total: total, Limit: limit, Offset: offset})
}

// ListBySale returns all returns recorded against one sale.
// GET /api/v1/sales/:id/returns
func (h *ReturnHandler) ListBySale(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	items, err := h.svc.ListBySale(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, items)
}
