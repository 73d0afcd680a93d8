package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"medreg/internal/core/apperror"
	"medreg/internal/domain/patient"
	"medreg/internal/infrastructure/http/v1/dto"
)

// PatientHandler handles patient registry endpoints.
type PatientHandler struct {
	*BaseHandler
	service *patient.Service
}

// NewPatientHandler creates a new patient handler.
func NewPatientHandler(base *BaseHandler, service *patient.Service) *PatientHandler {
	return &PatientHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /patients
func (h *PatientHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreatePatientRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := req.ToPatient()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid birth date").WithDetail("field", "birthDate"))
		return
	}

	if err := h.service.Create(ctx, p); err != nil {
		h.Error(c, err)
		return
	}

	h.CreatedData(c, dto.FromPatient(p))
}

// Get handles GET /patients/:id
func (h *PatientHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	patientID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetByID(ctx, patientID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPatient(p))
}

// GetByMRN handles GET /patients/mrn/:mrn
func (h *PatientHandler) GetByMRN(c *gin.Context) {
	ctx := c.Request.Context()

	p, err := h.service.GetByMedicalRecordNumber(ctx, c.Param("mrn"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPatient(p))
}

// Update handles PUT /patients/:id
func (h *PatientHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	patientID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePatientRequest
	if !h.BindJSON(c, &req) {
		return
	}

	existing, err := h.service.GetByID(ctx, patientID)
	if err != nil {
		h.Error(c, err)
		return
	}

	birthDate, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid birth date").WithDetail("field", "birthDate"))
		return
	}

	existing.NIK = req.NIK
	existing.Name = req.Name
	existing.BirthDate = birthDate
	existing.BirthPlace = req.BirthPlace
	existing.Gender = patient.Gender(req.Gender)
	existing.Address = req.Address
	existing.Phone = req.Phone
	if req.BloodType != "" {
		existing.BloodType = patient.BloodType(req.BloodType)
	}
	existing.EmergencyContactName = req.EmergencyContactName
	existing.EmergencyContactPhone = req.EmergencyContactPhone
	existing.UpdatedAt = time.Now()

	if err := h.service.Update(ctx, existing); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPatient(existing))
}

// Search handles GET /patients
func (h *PatientHandler) Search(c *gin.Context) {
	ctx := c.Request.Context()

	var page dto.PaginationRequest
	if !h.BindQuery(c, &page) {
		return
	}
	page.Defaults()

	patients, total, err := h.service.Search(ctx, patient.SearchFilter{
		Query:  c.Query("q"),
		Limit:  page.PageSize,
		Offset: page.Offset(),
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      dto.FromPatients(patients),
		TotalCount: total,
		Limit:      page.PageSize,
		Offset:     page.Offset(),
	})
}
