package handlers

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"medreg/internal/infrastructure/storage/postgres"
)

// AuditHandler exposes the audit trail of a registration.
type AuditHandler struct {
	*BaseHandler
	audit *postgres.AuditService
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(base *BaseHandler, audit *postgres.AuditService) *AuditHandler {
	return &AuditHandler{
		BaseHandler: base,
		audit:       audit,
	}
}

type auditEntryResponse struct {
	ID        string          `json:"id"`
	Action    string          `json:"action"`
	UserID    string          `json:"userId,omitempty"`
	Username  string          `json:"username,omitempty"`
	Changes   json.RawMessage `json:"changes,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// RegistrationHistory handles GET /registrations/:id/history
func (h *AuditHandler) RegistrationHistory(c *gin.Context) {
	ctx := c.Request.Context()

	regID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	limit := h.ParseIntQuery(c, "limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	entries, err := h.audit.GetEntityHistory(ctx, "registration", regID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	out := make([]auditEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = auditEntryResponse{
			ID:        e.ID.String(),
			Action:    string(e.Action),
			UserID:    e.UserID,
			Username:  e.Username,
			Changes:   e.Changes,
			CreatedAt: e.CreatedAt,
		}
	}
	h.OK(c, out)
}
