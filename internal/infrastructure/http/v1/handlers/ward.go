package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"medreg/internal/domain/bed"
	"medreg/internal/domain/ward"
	"medreg/internal/infrastructure/http/v1/dto"
)

// WardHandler handles ward and bed inventory endpoints.
type WardHandler struct {
	*BaseHandler
	service *ward.Service
}

// NewWardHandler creates a new ward handler.
func NewWardHandler(base *BaseHandler, service *ward.Service) *WardHandler {
	return &WardHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /wards
func (h *WardHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateWardRequest
	if !h.BindJSON(c, &req) {
		return
	}

	w := ward.NewWard(req.Code, req.Name, ward.Class(req.Class))
	w.Location = req.Location
	w.Description = req.Description
	w.DailyRate = req.DailyRate

	if err := h.service.Create(ctx, w); err != nil {
		h.Error(c, err)
		return
	}

	h.CreatedData(c, dto.FromWard(w))
}

// Get handles GET /wards/:id
func (h *WardHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	wardID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	w, err := h.service.GetByID(ctx, wardID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromWard(w))
}

// Update handles PUT /wards/:id
func (h *WardHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	wardID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateWardRequest
	if !h.BindJSON(c, &req) {
		return
	}

	existing, err := h.service.GetByID(ctx, wardID)
	if err != nil {
		h.Error(c, err)
		return
	}

	existing.Name = req.Name
	existing.Class = ward.Class(req.Class)
	existing.Location = req.Location
	existing.Description = req.Description
	existing.DailyRate = req.DailyRate
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	existing.UpdatedAt = time.Now()

	if err := h.service.Update(ctx, existing); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromWard(existing))
}

// List handles GET /wards
func (h *WardHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	wards, err := h.service.List(ctx, c.Query("active") == "true")
	if err != nil {
		h.Error(c, err)
		return
	}

	out := make([]dto.WardResponse, len(wards))
	for i := range wards {
		out[i] = dto.FromWard(&wards[i])
	}
	h.OK(c, out)
}

// AddBed handles POST /wards/:id/beds
func (h *WardHandler) AddBed(c *gin.Context) {
	ctx := c.Request.Context()

	wardID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateBedRequest
	if !h.BindJSON(c, &req) {
		return
	}

	b, err := h.service.AddBed(ctx, wardID, req.Number, req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.CreatedData(c, dto.FromBed(b))
}

// Beds handles GET /wards/:id/beds
func (h *WardHandler) Beds(c *gin.Context) {
	ctx := c.Request.Context()

	wardID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	beds, err := h.service.Beds(ctx, wardID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromBeds(beds))
}

// AvailableBeds handles GET /beds/available
func (h *WardHandler) AvailableBeds(c *gin.Context) {
	ctx := c.Request.Context()

	beds, err := h.service.AvailableBeds(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromBeds(beds))
}

// SetBedStatus handles PATCH /beds/:id/status
func (h *WardHandler) SetBedStatus(c *gin.Context) {
	ctx := c.Request.Context()

	bedID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.SetBedStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	b, err := h.service.SetBedStatus(ctx, bedID, bed.Status(req.Status))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromBed(b))
}

// RemoveBed handles DELETE /beds/:id
func (h *WardHandler) RemoveBed(c *gin.Context) {
	ctx := c.Request.Context()

	bedID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.RemoveBed(ctx, bedID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
