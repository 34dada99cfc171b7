package handlers

import (
	"github.com/gin-gonic/gin"

	"puntoventa/internal/domain/catalogs/client"
	"puntoventa/internal/infrastructure/http/v1/dto"
)

// ClientHandler serves the customer registry endpoints.
type ClientHandler struct {
	*BaseHandler
	svc *client.Service
}

// NewClientHandler creates a client handler.
func NewClientHandler(svc *client.Service) *ClientHandler {
	return &ClientHandler{BaseHandler: NewBaseHandler(), svc: svc}
}

// Create registers a new customer.
// POST /api/v1/clients
func (h *ClientHandler) Create(c *gin.Context) {
	var req dto.CreateClientRequest
	if !h.BindJSON(c, &req) {
		return
	}

	created, err := h.svc.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, created.ID.String())
}

// Update edits a customer's contact details.
// PUT /api/v1/clients/:id
func (h *ClientHandler) Update(c *gin.Context) {
	clientID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateClientRequest
	if !h.BindJSON(c, &req) {
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), clientID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, updated)
}

// Get returns a customer by ID.
// GET /api/v1/clients/:id
func (h *ClientHandler) Get(c *gin.Context) {
	clientID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	found, err := h.svc.Get(c.Request.Context(), clientID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, found)
}

// GetByCedula looks a customer up by identity document.
// GET /api/v1/clients/cedula/:cedula
func (h *ClientHandler) GetByCedula(c *gin.Context) {
	found, err := h.svc.GetByCedula(c.Request.Context(), c.Param("cedula"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, found)
}

// List returns customers with optional filters.
// GET /api/v1/clients?q=&active=
func (h *ClientHandler) List(c *gin.Context) {
	limit, offset := h.Pagination(c)
	filter := client.Filter{
		Query:  c.Query("q"),
		Limit:  limit,
		Offset: offset,
	}
	if v := c.Query("active"); v != "" {
		active := v == "true"
		filter.Active = &active
	}

	items, total, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse[*client.Client]{Items: items, Total: total, Limit: limit, Offset: offset})
}

// Delete deactivates a customer.
// DELETE /api/v1/clients/:id
func (h *ClientHandler) Delete(c *gin.Context) {
	clientID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), clientID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
