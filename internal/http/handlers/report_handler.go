package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/watersafe-backend/internal/geo"
	"github.com/ignatzorin/watersafe-backend/internal/http/handlers/common"
	"github.com/ignatzorin/watersafe-backend/internal/http/middleware"
	"github.com/ignatzorin/watersafe-backend/internal/models"
	"github.com/ignatzorin/watersafe-backend/internal/pkg/apperror"
	"github.com/ignatzorin/watersafe-backend/internal/service"
	"github.com/ignatzorin/watersafe-backend/internal/validation"
)

// ReportHandler обслуживает обращения: приём, публичный просмотр и модерацию.
type ReportHandler struct {
	reports *service.ReportService
	queries *service.QueryService
}

// NewReportHandler создаёт хэндлер.
func NewReportHandler(reports *service.ReportService, queries *service.QueryService) *ReportHandler {
	return &ReportHandler{reports: reports, queries: queries}
}

// present скрывает email заявителя от всех, кроме сотрудников.
func present(c *gin.Context, r *models.Report) models.Report {
	if common.IsOperator(c) {
		return *r
	}
	return r.Redacted()
}

func presentList(c *gin.Context, reports []models.Report) []models.Report {
	if common.IsOperator(c) {
		return reports
	}
	out := make([]models.Report, len(reports))
	for i := range reports {
		out[i] = reports[i].Redacted()
	}
	return out
}

func parseFilter(c *gin.Context) (models.ReportFilter, error) {
	return validation.ParseReportFilter(c.Query("search"), c.Query("status"), c.Query("priority"))
}

// List обрабатывает GET /reports.
func (h *ReportHandler) List(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		common.Fail(c, err)
		return
	}

	reports, err := h.queries.Filter(c.Request.Context(), filter)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, presentList(c, reports))
}

// Get обрабатывает GET /reports/:id.
func (h *ReportHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id", apperror.ErrReportNotFound)
	if err != nil {
		common.Fail(c, err)
		return
	}

	report, err := h.reports.Get(c.Request.Context(), id)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, present(c, report))
}

// GetByCode обрабатывает GET /reports/code/:code.
func (h *ReportHandler) GetByCode(c *gin.Context) {
	report, err := h.reports.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, present(c, report))
}

// Create обрабатывает POST /reports.
func (h *ReportHandler) Create(c *gin.Context) {
	var req validation.CreateReportRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	res, err := h.reports.Create(c.Request.Context(), req)
	if err != nil {
		common.Fail(c, err)
		return
	}

	if res.Coordinates == geo.Invalid {
		c.Header(middleware.CoordinatesStatusHeader, res.Coordinates.String())
	}
	c.JSON(http.StatusCreated, present(c, res.Report))
}

// Update обрабатывает PATCH /reports/:id.
func (h *ReportHandler) Update(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id", apperror.ErrReportNotFound)
	if err != nil {
		common.Fail(c, err)
		return
	}

	var req validation.UpdateReportRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}
	upd, err := validation.ValidateUpdateReport(req)
	if err != nil {
		common.Fail(c, err)
		return
	}

	report, err := h.reports.Update(c.Request.Context(), id, upd)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, present(c, report))
}

// Delete обрабатывает DELETE /reports/:id.
func (h *ReportHandler) Delete(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id", apperror.ErrReportNotFound)
	if err != nil {
		common.Fail(c, err)
		return
	}

	if err := h.reports.Delete(c.Request.Context(), id); err != nil {
		common.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats обрабатывает GET /reports/stats.
func (h *ReportHandler) Stats(c *gin.Context) {
	stats, err := h.queries.Stats(c.Request.Context())
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Map обрабатывает GET /reports/map; фильтры те же, что у списка.
func (h *ReportHandler) Map(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		common.Fail(c, err)
		return
	}

	points, err := h.queries.MapPoints(c.Request.Context(), filter)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}
