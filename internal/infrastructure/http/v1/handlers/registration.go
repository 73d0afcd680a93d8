package handlers

import (
	"github.com/gin-gonic/gin"

	"medreg/internal/domain/registration"
	"medreg/internal/infrastructure/http/v1/dto"
)

// RegistrationHandler handles the front-desk registration workflows.
type RegistrationHandler struct {
	*BaseHandler
	service *registration.Service
}

// NewRegistrationHandler creates a new registration handler.
func NewRegistrationHandler(base *BaseHandler, service *registration.Service) *RegistrationHandler {
	return &RegistrationHandler{
		BaseHandler: base,
		service:     service,
	}
}

// RegisterOutpatient handles POST /registrations/outpatient
func (h *RegistrationHandler) RegisterOutpatient(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RegisterOutpatientRequest
	if !h.BindJSON(c, &req) {
		return
	}

	domainReq, err := req.ToRequest()
	if err != nil {
		h.Error(c, err)
		return
	}

	reg, err := h.service.RegisterOutpatient(ctx, domainReq)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.CreatedData(c, dto.FromRegistration(reg))
}

// RegisterInpatient handles POST /registrations/inpatient
func (h *RegistrationHandler) RegisterInpatient(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RegisterInpatientRequest
	if !h.BindJSON(c, &req) {
		return
	}

	domainReq, err := req.ToRequest()
	if err != nil {
		h.Error(c, err)
		return
	}

	reg, err := h.service.RegisterInpatient(ctx, domainReq)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.CreatedData(c, dto.FromRegistration(reg))
}

// Discharge handles POST /registrations/:id/discharge
func (h *RegistrationHandler) Discharge(c *gin.Context) {
	ctx := c.Request.Context()

	regID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.DischargeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	reg, err := h.service.Discharge(ctx, regID, req.Diagnosis)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromRegistration(reg))
}

// Cancel handles POST /registrations/:id/cancel
func (h *RegistrationHandler) Cancel(c *gin.Context) {
	ctx := c.Request.Context()

	regID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.CancelRequest
	if !h.BindJSON(c, &req) {
		return
	}

	reg, err := h.service.Cancel(ctx, regID, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromRegistration(reg))
}

// Start handles POST /registrations/:id/start
func (h *RegistrationHandler) Start(c *gin.Context) {
	ctx := c.Request.Context()

	regID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	reg, err := h.service.Start(ctx, regID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromRegistration(reg))
}

// Complete handles POST /registrations/:id/complete
func (h *RegistrationHandler) Complete(c *gin.Context) {
	ctx := c.Request.Context()

	regID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.CompleteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	reg, err := h.service.Complete(ctx, regID, req.Diagnosis)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromRegistration(reg))
}

// Get handles GET /registrations/:id
func (h *RegistrationHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	regID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	reg, err := h.service.GetByID(ctx, regID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromRegistration(reg))
}

// GetByNumber handles GET /registrations/number/:number
func (h *RegistrationHandler) GetByNumber(c *gin.Context) {
	ctx := c.Request.Context()

	reg, err := h.service.GetByNumber(ctx, c.Param("number"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromRegistration(reg))
}

// List handles GET /registrations
func (h *RegistrationHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ListRegistrationsRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter, err := req.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	regs, total, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      dto.FromRegistrations(regs),
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// ActiveByPatient handles GET /patients/:id/registrations/active
func (h *RegistrationHandler) ActiveByPatient(c *gin.Context) {
	ctx := c.Request.Context()

	patientID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	regs, err := h.service.ActiveByPatient(ctx, patientID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromRegistrations(regs))
}
