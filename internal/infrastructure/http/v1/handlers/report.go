package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"medreg/internal/core/apperror"
	"medreg/internal/domain/report"
)

// ReportHandler handles the reporting endpoints.
type ReportHandler struct {
	*BaseHandler
	service *report.Service
}

// NewReportHandler creates a new report handler.
func NewReportHandler(base *BaseHandler, service *report.Service) *ReportHandler {
	return &ReportHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Daily handles GET /reports/daily
func (h *ReportHandler) Daily(c *gin.Context) {
	ctx := c.Request.Context()

	day, ok := h.parseDay(c, "date", time.Now())
	if !ok {
		return
	}

	summary, err := h.service.Daily(ctx, day)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, summary)
}

// Queues handles GET /reports/queues
func (h *ReportHandler) Queues(c *gin.Context) {
	ctx := c.Request.Context()

	day, ok := h.parseDay(c, "date", time.Now())
	if !ok {
		return
	}

	queues, err := h.service.Queues(ctx, day)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, queues)
}

// Occupancy handles GET /reports/occupancy
func (h *ReportHandler) Occupancy(c *gin.Context) {
	ctx := c.Request.Context()

	occupancy, err := h.service.Occupancy(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, occupancy)
}

// Revenue handles GET /reports/revenue
func (h *ReportHandler) Revenue(c *gin.Context) {
	ctx := c.Request.Context()

	now := time.Now()
	from, ok := h.parseDay(c, "from", now.AddDate(0, 0, -30))
	if !ok {
		return
	}
	to, ok := h.parseDay(c, "to", now)
	if !ok {
		return
	}

	revenue, err := h.service.Revenue(ctx, from, to)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, revenue)
}

// Dashboard handles GET /reports/dashboard
func (h *ReportHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	dashboard, err := h.service.Dashboard(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dashboard)
}

func (h *ReportHandler) parseDay(c *gin.Context, param string, fallback time.Time) (time.Time, bool) {
	raw := c.Query(param)
	if raw == "" {
		return fallback, true
	}
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid date, expected YYYY-MM-DD").WithDetail("param", param))
		return time.Time{}, false
	}
	return day, true
}
