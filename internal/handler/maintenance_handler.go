package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type MaintenanceHandler struct {
	maintenanceService service.MaintenanceService
	userRepo           repository.UserRepository
}

func NewMaintenanceHandler(maintenanceService service.MaintenanceService, userRepo repository.UserRepository) *MaintenanceHandler {
	return &MaintenanceHandler{maintenanceService: maintenanceService, userRepo: userRepo}
}

func (h *MaintenanceHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyRole := middleware.RequireRole(h.userRepo, model.RoleAdmin, model.RoleFleetManager, model.RoleCustomer)
	staff := middleware.RequireRole(h.userRepo, model.RoleAdmin, model.RoleFleetManager)

	maintenance := router.Group("/maintenance")
	{
		maintenance.GET("", anyRole, h.ListMaintenance)
		maintenance.GET("/:id", anyRole, h.GetMaintenance)
		maintenance.POST("", staff, h.CreateMaintenance)
		maintenance.PUT("/:id", staff, h.UpdateMaintenance)
		maintenance.POST("/:id/start", staff, h.StartMaintenance)
		maintenance.POST("/:id/complete", staff, h.CompleteMaintenance)
		maintenance.POST("/:id/cancel", staff, h.CancelMaintenance)
		maintenance.DELETE("/:id", staff, h.DeleteMaintenance)
	}
}

// ListMaintenance returns paginated maintenance records with optional filters
// @Summary      List maintenance records
// @Tags         maintenance
// @Security     BearerAuth
// @Produce      json
// @Param        page        query     int     false  "Page number (default: 1)"
// @Param        limit       query     int     false  "Items per page (default: 20)"
// @Param        vehicle_id  query     string  false  "Filter by vehicle"
// @Param        status      query     string  false  "Filter by status: scheduled, in_progress, completed, cancelled, overdue"
// @Param        type        query     string  false  "Filter by type: preventive, corrective, predictive, scheduled"
// @Param        priority    query     string  false  "Filter by priority: low, medium, high, critical"
// @Param        search      query     string  false  "Search by maintenance number or description"
// @Success      200  {object}  response.Response
// @Router       /api/v1/maintenance [get]
func (h *MaintenanceHandler) ListMaintenance(c *gin.Context) {
	p := pagination.Parse(c)

	filter := service.MaintenanceFilter{
		VehicleID: c.Query("vehicle_id"),
		Status:    c.Query("status"),
		Type:      c.Query("type"),
		Priority:  c.Query("priority"),
		Search:    c.Query("search"),
		Page:      p.Page,
		Limit:     p.Limit,
	}

	records, total, err := h.maintenanceService.ListMaintenance(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OK(pagination.NewList(records, total, p)))
}

// GetMaintenance returns a single maintenance record
// @Summary      Get maintenance record
// @Tags         maintenance
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Maintenance ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/v1/maintenance/{id} [get]
func (h *MaintenanceHandler) GetMaintenance(c *gin.Context) {
	record, err := h.maintenanceService.GetMaintenance(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OK(record))
}

// CreateMaintenance schedules a maintenance job for a vehicle
// @Summary      Create maintenance record
// @Tags         maintenance
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateMaintenanceRequest  true  "Maintenance payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/v1/maintenance [post]
func (h *MaintenanceHandler) CreateMaintenance(c *gin.Context) {
	var req service.CreateMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	record, err := h.maintenanceService.CreateMaintenance(c.Request.Context(), req, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.OK(record))
}

// UpdateMaintenance updates editable fields of a non-terminal record
// @Summary      Update maintenance record
// @Tags         maintenance
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                            true  "Maintenance ID"
// @Param        payload  body  service.UpdateMaintenanceRequest  true  "Update payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/v1/maintenance/{id} [put]
func (h *MaintenanceHandler) UpdateMaintenance(c *gin.Context) {
	var req service.UpdateMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	record, err := h.maintenanceService.UpdateMaintenance(c.Request.Context(), c.Param("id"), req, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OK(record))
}

// StartMaintenance moves a scheduled or overdue job into the workshop
// @Summary      Start maintenance
// @Tags         maintenance
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Maintenance ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/v1/maintenance/{id}/start [post]
func (h *MaintenanceHandler) StartMaintenance(c *gin.Context) {
	record, err := h.maintenanceService.StartMaintenance(c.Request.Context(), c.Param("id"), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OK(record))
}

// CompleteMaintenance closes an in-progress job and releases the vehicle
// @Summary      Complete maintenance
// @Tags         maintenance
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                              true  "Maintenance ID"
// @Param        payload  body  service.CompleteMaintenanceRequest  true  "Completion details"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/v1/maintenance/{id}/complete [post]
func (h *MaintenanceHandler) CompleteMaintenance(c *gin.Context) {
	var req service.CompleteMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	record, err := h.maintenanceService.CompleteMaintenance(c.Request.Context(), c.Param("id"), req, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OK(record))
}

// CancelMaintenance cancels a non-terminal job
// @Summary      Cancel maintenance
// @Tags         maintenance
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Maintenance ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/v1/maintenance/{id}/cancel [post]
func (h *MaintenanceHandler) CancelMaintenance(c *gin.Context) {
	record, err := h.maintenanceService.CancelMaintenance(c.Request.Context(), c.Param("id"), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OK(record))
}

// DeleteMaintenance removes a record; completed records are kept for history
// @Summary      Delete maintenance record
// @Tags         maintenance
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Maintenance ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/v1/maintenance/{id} [delete]
func (h *MaintenanceHandler) DeleteMaintenance(c *gin.Context) {
	if err := h.maintenanceService.DeleteMaintenance(c.Request.Context(), c.Param("id"), actorID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OKWithMessage("Maintenance record deleted", nil))
}
