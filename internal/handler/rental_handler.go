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

type RentalHandler struct {
	rentalService service.RentalService
	userRepo      repository.UserRepository
}

func NewRentalHandler(rentalService service.RentalService, userRepo repository.UserRepository) *RentalHandler {
	return &RentalHandler{rentalService: rentalService, userRepo: userRepo}
}

func (h *RentalHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyRole := middleware.RequireRole(h.userRepo, model.RoleAdmin, model.RoleFleetManager, model.RoleCustomer)
	staff := middleware.RequireRole(h.userRepo, model.RoleAdmin, model.RoleFleetManager)

	rentals := router.Group("/rentals")
	{
		rentals.GET("", anyRole, h.ListRentals)
		rentals.GET("/:id", anyRole, h.GetRental)
		rentals.POST("", staff, h.CreateRental)
		rentals.PUT("/:id", staff, h.UpdateRental)
		rentals.POST("/:id/confirm", staff, h.ConfirmRental)
		rentals.POST("/:id/start", staff, h.StartRental)
		rentals.POST("/:id/complete", staff, h.CompleteRental)
		rentals.POST("/:id/cancel", staff, h.CancelRental)
	}
}

// ListRentals returns paginated rentals with optional filters
// @Summary      List rentals
// @Tags         rentals
// @Security     BearerAuth
// @Produce      json
// @Param        page            query     int     false  "Page number (default: 1)"
// @Param        limit           query     int     false  "Items per page (default: 20)"
// @Param        status          query     string  false  "Filter by status: reserved, confirmed, active, completed, cancelled"
// @Param        payment_status  query     string  false  "Filter by payment status"
// @Param        customer_id     query     string  false  "Filter by customer"
// @Param        vehicle_id      query     string  false  "Filter by vehicle"
// @Param        search          query     string  false  "Search by rental number"
// @Success      200  {object}  response.Response
// @Router       /api/v1/rentals [get]
func (h *RentalHandler) ListRentals(c *gin.Context) {
	p := pagination.Parse(c)

	filter := service.RentalFilter{
		Status:        c.Query("status"),
		PaymentStatus: c.Query("payment_status"),
		CustomerID:    c.Query("customer_id"),
		VehicleID:     c.Query("vehicle_id"),
		Search:        c.Query("search"),
		Page:          p.Page,
		Limit:         p.Limit,
	}

	rentals, total, err := h.rentalService.ListRentals(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OK(pagination.NewList(rentals, total, p)))
}

// GetRental returns a single rental with customer and vehicle detail
// @Summary      Get rental
// @Tags         rentals
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Rental ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/v1/rentals/{id} [get]
func (h *RentalHandler) GetRental(c *gin.Context) {
	rental, err := h.rentalService.GetRental(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OK(rental))
}

// CreateRental books a vehicle for a customer over a date range
// @Summary      Create rental
// @Tags         rentals
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateRentalRequest  true  "Rental payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response  "Vehicle unavailable or dates overlap an existing rental"
// @Router       /api/v1/rentals [post]
func (h *RentalHandler) CreateRental(c *gin.Context) {
	var req service.CreateRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	rental, err := h.rentalService.CreateRental(c.Request.Context(), req, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.OK(rental))
}

// UpdateRental updates editable fields of a non-terminal rental
// @Summary      Update rental
// @Tags         rentals
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                       true  "Rental ID"
// @Param        payload  body  service.UpdateRentalRequest  true  "Update payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/v1/rentals/{id} [put]
func (h *RentalHandler) UpdateRental(c *gin.Context) {
	var req service.UpdateRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	rental, err := h.rentalService.UpdateRental(c.Request.Context(), c.Param("id"), req, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OK(rental))
}

// ConfirmRental moves a reserved rental to confirmed
// @Summary      Confirm rental
// @Tags         rentals
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Rental ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/v1/rentals/{id}/confirm [post]
func (h *RentalHandler) ConfirmRental(c *gin.Context) {
	rental, err := h.rentalService.ConfirmRental(c.Request.Context(), c.Param("id"), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OK(rental))
}

// StartRental hands the vehicle over and activates the rental
// @Summary      Start rental
// @Tags         rentals
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                      true  "Rental ID"
// @Param        payload  body  service.StartRentalRequest  true  "Pickup details"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/v1/rentals/{id}/start [post]
func (h *RentalHandler) StartRental(c *gin.Context) {
	var req service.StartRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	rental, err := h.rentalService.StartRental(c.Request.Context(), c.Param("id"), req, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OK(rental))
}

// CompleteRental closes the rental on vehicle return; late returns incur a fee
// @Summary      Complete rental
// @Tags         rentals
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                         true  "Rental ID"
// @Param        payload  body  service.CompleteRentalRequest  true  "Return details"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/v1/rentals/{id}/complete [post]
func (h *RentalHandler) CompleteRental(c *gin.Context) {
	var req service.CompleteRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	rental, err := h.rentalService.CompleteRental(c.Request.Context(), c.Param("id"), req, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OK(rental))
}

// CancelRental cancels a non-terminal rental and frees the vehicle when possible
// @Summary      Cancel rental
// @Tags         rentals
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                       true  "Rental ID"
// @Param        payload  body  service.CancelRentalRequest  true  "Cancellation reason"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/v1/rentals/{id}/cancel [post]
func (h *RentalHandler) CancelRental(c *gin.Context) {
	var req service.CancelRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	rental, err := h.rentalService.CancelRental(c.Request.Context(), c.Param("id"), req, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OK(rental))
}
