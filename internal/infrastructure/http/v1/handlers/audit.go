package handlers

import (
	"github.com/gin-gonic/gin"

	"puntoventa/internal/domain/audit"
	"puntoventa/internal/infrastructure/http/v1/dto"
)

// AuditHandler serves the audit trail endpoints. Admin only.
type AuditHandler struct {
	*BaseHandler
	recorder *audit.Recorder
}

// NewAuditHandler creates an audit handler.
func NewAuditHandler(recorder *audit.Recorder) *AuditHandler {
	return &AuditHandler{BaseHandler: NewBaseHandler(), recorder: recorder}
}

// List returns audit entries with optional filters.
// GET /api/v1/audit?entity=&entityId=&action=&actor=&from=&to=
func (h *AuditHandler) List(c *gin.Context) {
	limit, offset := h.Pagination(c)
	filter := audit.Filter{
		Entity:   c.Query("entity"),
		EntityID: c.Query("entityId"),
		Action:   c.Query("action"),
		ActorID:  c.Query("actor"),
		From:     h.ParseTimeQuery(c, "from"),
		To:       h.ParseTimeQuery(c, "to"),
		Limit:    limit,
		Offset:   offset,
	}

	items, total, err := h.recorder.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse[*audit.Entry]{Items: items, Total: total, Limit: limit, Offset: offset})
}
