package handlers

import (
	"github.com/gin-gonic/gin"

	"puntoventa/internal/domain/config"
	"puntoventa/internal/infrastructure/http/v1/dto"
)

// ConfigHandler serves the business configuration endpoints.
type ConfigHandler struct {
	*BaseHandler
	svc *config.Service
}

// NewConfigHandler creates a config handler.
func NewConfigHandler(svc *config.Service) *ConfigHandler {
	return &ConfigHandler{BaseHandler: NewBaseHandler(), svc: svc}
}

// Get returns the current business configuration; defaults apply when
// nothing has been saved yet.
// GET /api/v1/config
func (h *ConfigHandler) Get(c *gin.Context) {
	cfg, err := h.svc.Get(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, cfg)
}

// Update replaces the business configuration. Admin only.
// PUT /api/v1/config
func (h *ConfigHandler) Update(c *gin.Context) {
	var req dto.UpdateConfigRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cfg, err := h.svc.Update(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, cfg)
}
