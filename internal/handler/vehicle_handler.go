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

type VehicleHandler struct {
	vehicleService service.VehicleService
	userRepo       repository.UserRepository
}

func NewVehicleHandler(vehicleService service.VehicleService, userRepo repository.UserRepository) *VehicleHandler {
	return &VehicleHandler{vehicleService: vehicleService, userRepo: userRepo}
}

func (h *VehicleHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyRole := middleware.RequireRole(h.userRepo, model.RoleAdmin, model.RoleFleetManager, model.RoleCustomer)
	staff := middleware.RequireRole(h.userRepo, model.RoleAdmin, model.RoleFleetManager)

	vehicles := router.Group("/vehicles")
	{
		vehicles.GET("", anyRole, h.ListVehicles)
		vehicles.GET("/:id", anyRole, h.GetVehicle)
		vehicles.POST("", staff, h.CreateVehicle)
		vehicles.PUT("/:id", staff, h.UpdateVehicle)
		vehicles.DELETE("/:id", staff, h.DeleteVehicle)
	}
}

// ListVehicles returns paginated vehicles with optional filters
// @Summary      List vehicles
// @Tags         vehicles
// @Security     BearerAuth
// @Produce      json
// @Param        page          query     int     false  "Page number (default: 1)"
// @Param        limit         query     int     false  "Items per page (default: 20)"
// @Param        status        query     string  false  "Filter by status: available, rented, maintenance, inactive"
// @Param        type          query     string  false  "Filter by type: sedan, suv, van, pickup, hatchback"
// @Param        fuel_type     query     string  false  "Filter by fuel type"
// @Param        transmission  query     string  false  "Filter by transmission"
// @Param        search        query     string  false  "Search by plate, make, model"
// @Success      200  {object}  response.Response
// @Router       /api/v1/vehicles [get]
func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	p := pagination.Parse(c)

	filter := service.VehicleFilter{
		Status:       c.Query("status"),
		Type:         c.Query("type"),
		FuelType:     c.Query("fuel_type"),
		Transmission: c.Query("transmission"),
		Search:       c.Query("search"),
		Page:         p.Page,
		Limit:        p.Limit,
	}

	vehicles, total, err := h.vehicleService.ListVehicles(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OK(pagination.NewList(vehicles, total, p)))
}

// GetVehicle returns a single vehicle by id
// @Summary      Get vehicle
// @Tags         vehicles
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Vehicle ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/v1/vehicles/{id} [get]
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	vehicle, err := h.vehicleService.GetVehicle(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OK(vehicle))
}

// CreateVehicle registers a new vehicle in the fleet
// @Summary      Create vehicle
// @Tags         vehicles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateVehicleRequest  true  "Vehicle payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/v1/vehicles [post]
func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	var req service.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	vehicle, err := h.vehicleService.CreateVehicle(c.Request.Context(), req, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.OK(vehicle))
}

// UpdateVehicle updates vehicle details (status is managed by the lifecycle, not here)
// @Summary      Update vehicle
// @Tags         vehicles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                        true  "Vehicle ID"
// @Param        payload  body  service.UpdateVehicleRequest  true  "Update payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/v1/vehicles/{id} [put]
func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	var req service.UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	vehicle, err := h.vehicleService.UpdateVehicle(c.Request.Context(), c.Param("id"), req, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OK(vehicle))
}

// DeleteVehicle soft-deletes a vehicle without open rentals or maintenance
// @Summary      Delete vehicle
// @Tags         vehicles
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Vehicle ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/v1/vehicles/{id} [delete]
func (h *VehicleHandler) DeleteVehicle(c *gin.Context) {
	if err := h.vehicleService.DeleteVehicle(c.Request.Context(), c.Param("id"), actorID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OKWithMessage("Vehicle deleted", nil))
}
