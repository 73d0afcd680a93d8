package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"medreg/internal/domain/polyclinic"
	"medreg/internal/infrastructure/http/v1/dto"
)

// PolyclinicHandler handles outpatient clinic catalog endpoints.
type PolyclinicHandler struct {
	*BaseHandler
	service *polyclinic.Service
}

// NewPolyclinicHandler creates a new polyclinic handler.
func NewPolyclinicHandler(base *BaseHandler, service *polyclinic.Service) *PolyclinicHandler {
	return &PolyclinicHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /polyclinics
func (h *PolyclinicHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreatePolyclinicRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := polyclinic.NewPolyclinic(req.Code, req.Name)
	p.Location = req.Location
	p.Description = req.Description

	if err := h.service.Create(ctx, p); err != nil {
		h.Error(c, err)
		return
	}

	h.CreatedData(c, dto.FromPolyclinic(p))
}

// Get handles GET /polyclinics/:id
func (h *PolyclinicHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	clinicID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetByID(ctx, clinicID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPolyclinic(p))
}

// Update handles PUT /polyclinics/:id
func (h *PolyclinicHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	clinicID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePolyclinicRequest
	if !h.BindJSON(c, &req) {
		return
	}

	existing, err := h.service.GetByID(ctx, clinicID)
	if err != nil {
		h.Error(c, err)
		return
	}

	existing.Name = req.Name
	existing.Location = req.Location
	existing.Description = req.Description
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	existing.UpdatedAt = time.Now()

	if err := h.service.Update(ctx, existing); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPolyclinic(existing))
}

// List handles GET /polyclinics
func (h *PolyclinicHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	activeOnly := c.Query("active") == "true"

	clinics, err := h.service.List(ctx, activeOnly)
	if err != nil {
		h.Error(c, err)
		return
	}

	out := make([]dto.PolyclinicResponse, len(clinics))
	for i := range clinics {
		out[i] = dto.FromPolyclinic(&clinics[i])
	}
	h.OK(c, out)
}
