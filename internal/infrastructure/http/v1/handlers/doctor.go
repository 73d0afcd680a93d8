package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"medreg/internal/core/apperror"
	"medreg/internal/core/id"
	"medreg/internal/domain/doctor"
	"medreg/internal/infrastructure/http/v1/dto"
)

// DoctorHandler handles doctor catalog endpoints.
type DoctorHandler struct {
	*BaseHandler
	service *doctor.Service
}

// NewDoctorHandler creates a new doctor handler.
func NewDoctorHandler(base *BaseHandler, service *doctor.Service) *DoctorHandler {
	return &DoctorHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /doctors
func (h *DoctorHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateDoctorRequest
	if !h.BindJSON(c, &req) {
		return
	}

	d := doctor.NewDoctor(req.LicenseNumber, req.Name, req.Specialization)
	d.Phone = req.Phone
	d.Email = req.Email
	clinicID, ok := h.parseClinicID(c, req.PolyclinicID)
	if !ok {
		return
	}
	d.PolyclinicID = clinicID

	if err := h.service.Create(ctx, d); err != nil {
		h.Error(c, err)
		return
	}

	h.CreatedData(c, dto.FromDoctor(d))
}

// Get handles GET /doctors/:id
func (h *DoctorHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	doctorID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	d, err := h.service.GetByID(ctx, doctorID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromDoctor(d))
}

// Update handles PUT /doctors/:id
func (h *DoctorHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	doctorID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateDoctorRequest
	if !h.BindJSON(c, &req) {
		return
	}

	existing, err := h.service.GetByID(ctx, doctorID)
	if err != nil {
		h.Error(c, err)
		return
	}

	existing.Name = req.Name
	existing.Specialization = req.Specialization
	existing.Phone = req.Phone
	existing.Email = req.Email
	clinicID, ok := h.parseClinicID(c, req.PolyclinicID)
	if !ok {
		return
	}
	existing.PolyclinicID = clinicID
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	existing.UpdatedAt = time.Now()

	if err := h.service.Update(ctx, existing); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromDoctor(existing))
}

// List handles GET /doctors
func (h *DoctorHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		doctors []doctor.Doctor
		err     error
	)
	if clinicParam := c.Query("polyclinicId"); clinicParam != "" {
		clinicID, parseErr := id.Parse(clinicParam)
		if parseErr != nil {
			h.Error(c, apperror.NewValidation("invalid polyclinic ID").WithDetail("value", clinicParam))
			return
		}
		doctors, err = h.service.ListByPolyclinic(ctx, clinicID)
	} else {
		doctors, err = h.service.List(ctx, c.Query("active") == "true")
	}
	if err != nil {
		h.Error(c, err)
		return
	}

	out := make([]dto.DoctorResponse, len(doctors))
	for i := range doctors {
		out[i] = dto.FromDoctor(&doctors[i])
	}
	h.OK(c, out)
}

func (h *DoctorHandler) parseClinicID(c *gin.Context, raw *string) (*id.ID, bool) {
	if raw == nil || *raw == "" {
		return nil, true
	}
	clinicID, err := id.Parse(*raw)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid polyclinic ID").WithDetail("value", *raw))
		return nil, false
	}
	return &clinicID, true
}
