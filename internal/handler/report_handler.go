package handler

import (
	"net/http"
	"time"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportService
	userRepo      repository.UserRepository
}

func NewReportHandler(reportService service.ReportService, userRepo repository.UserRepository) *ReportHandler {
	return &ReportHandler{reportService: reportService, userRepo: userRepo}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(h.userRepo, model.RoleAdmin, model.RoleFleetManager)

	reports := router.Group("/reports")
	{
		reports.GET("/income", staff, h.GetIncomeReport)
		reports.GET("/maintenance-costs", staff, h.GetMaintenanceCostReport)
		reports.GET("/utilization", staff, h.GetFleetUtilization)
		reports.GET("/summary", staff, h.GetSummary)
	}
}

// parseDateRange reads start_date/end_date query params, defaulting to the
// trailing 30 days when absent.
func parseDateRange(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now()
	start := now.AddDate(0, 0, -30)
	end := now

	if raw := c.Query("start_date"); raw != "" {
		parsed, err := parseQueryDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error("Invalid start_date: expected YYYY-MM-DD or RFC3339"))
			return start, end, false
		}
		start = parsed
	}
	if raw := c.Query("end_date"); raw != "" {
		parsed, err := parseQueryDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error("Invalid end_date: expected YYYY-MM-DD or RFC3339"))
			return start, end, false
		}
		// A bare date means "through the end of that day"
		if len(raw) == 10 {
			parsed = parsed.Add(24*time.Hour - time.Nanosecond)
		}
		end = parsed
	}

	if !end.After(start) {
		c.JSON(http.StatusBadRequest, response.Error("end_date must be after start_date"))
		return start, end, false
	}

	return start, end, true
}

func parseQueryDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// GetIncomeReport returns rental income aggregated per period
// @Summary      Income report
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        group_by    query  string  false  "Grouping: day, week, month, quarter, year (default: month)"
// @Param        start_date  query  string  false  "Range start (default: 30 days ago)"
// @Param        end_date    query  string  false  "Range end (default: now)"
// @Success      200  {object}  response.Response
// @Router       /api/v1/reports/income [get]
func (h *ReportHandler) GetIncomeReport(c *gin.Context) {
	start, end, ok := parseDateRange(c)
	if !ok {
		return
	}

	points, err := h.reportService.GetIncomeReport(c.Request.Context(), service.ReportFilter{
		GroupBy:   c.Query("group_by"),
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OK(points))
}

// GetMaintenanceCostReport returns maintenance spend per period, type, and vehicle
// @Summary      Maintenance cost report
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        group_by    query  string  false  "Grouping: day, week, month, quarter, year (default: month)"
// @Param        start_date  query  string  false  "Range start (default: 30 days ago)"
// @Param        end_date    query  string  false  "Range end (default: now)"
// @Success      200  {object}  response.Response
// @Router       /api/v1/reports/maintenance-costs [get]
func (h *ReportHandler) GetMaintenanceCostReport(c *gin.Context) {
	start, end, ok := parseDateRange(c)
	if !ok {
		return
	}

	byPeriod, byType, byVehicle, err := h.reportService.GetMaintenanceCostReport(c.Request.Context(), service.ReportFilter{
		GroupBy:   c.Query("group_by"),
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OK(gin.H{
		"by_period":  byPeriod,
		"by_type":    byType,
		"by_vehicle": byVehicle,
	}))
}

// GetFleetUtilization returns per-vehicle utilization over a range
// @Summary      Fleet utilization report
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        start_date  query  string  false  "Range start (default: 30 days ago)"
// @Param        end_date    query  string  false  "Range end (default: now)"
// @Success      200  {object}  response.Response
// @Router       /api/v1/reports/utilization [get]
func (h *ReportHandler) GetFleetUtilization(c *gin.Context) {
	start, end, ok := parseDateRange(c)
	if !ok {
		return
	}

	report, err := h.reportService.GetFleetUtilization(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OK(report))
}

// GetSummary returns the executive summary: income, spend, net, fleet counts
// @Summary      Executive summary report
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        start_date  query  string  false  "Range start (default: 30 days ago)"
// @Param        end_date    query  string  false  "Range end (default: now)"
// @Success      200  {object}  response.Response
// @Router       /api/v1/reports/summary [get]
func (h *ReportHandler) GetSummary(c *gin.Context) {
	start, end, ok := parseDateRange(c)
	if !ok {
		return
	}

	report, err := h.reportService.GetSummary(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OK(report))
}
