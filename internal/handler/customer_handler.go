package handler

import (
	"net/http"
	"strconv"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	customerService service.CustomerService
	userRepo        repository.UserRepository
}

func NewCustomerHandler(customerService service.CustomerService, userRepo repository.UserRepository) *CustomerHandler {
	return &CustomerHandler{customerService: customerService, userRepo: userRepo}
}

func (h *CustomerHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyRole := middleware.RequireRole(h.userRepo, model.RoleAdmin, model.RoleFleetManager, model.RoleCustomer)
	staff := middleware.RequireRole(h.userRepo, model.RoleAdmin, model.RoleFleetManager)

	customers := router.Group("/customers")
	{
		customers.GET("", anyRole, h.ListCustomers)
		customers.GET("/:id", anyRole, h.GetCustomer)
		customers.POST("", staff, h.CreateCustomer)
		customers.PUT("/:id", staff, h.UpdateCustomer)
		customers.DELETE("/:id", staff, h.DeleteCustomer)
	}
}

// ListCustomers returns paginated customers with optional search
// @Summary      List customers
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        page       query     int     false  "Page number (default: 1)"
// @Param        limit      query     int     false  "Items per page (default: 20)"
// @Param        is_active  query     bool    false  "Filter by active flag"
// @Param        search     query     string  false  "Search by name, email, document, license"
// @Success      200  {object}  response.Response
// @Router       /api/v1/customers [get]
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	p := pagination.Parse(c)

	filter := service.CustomerFilter{
		Search: c.Query("search"),
		Page:   p.Page,
		Limit:  p.Limit,
	}
	if raw := c.Query("is_active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filter.IsActive = &active
		}
	}

	customers, total, err := h.customerService.ListCustomers(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OK(pagination.NewList(customers, total, p)))
}

// GetCustomer returns a single customer by id
// @Summary      Get customer
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Customer ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/v1/customers/{id} [get]
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	customer, err := h.customerService.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OK(customer))
}

// CreateCustomer registers a new customer
// @Summary      Create customer
// @Tags         customers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateCustomerRequest  true  "Customer payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/v1/customers [post]
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req service.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), req, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.OK(customer))
}

// UpdateCustomer updates customer details
// @Summary      Update customer
// @Tags         customers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                         true  "Customer ID"
// @Param        payload  body  service.UpdateCustomerRequest  true  "Update payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/v1/customers/{id} [put]
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	var req service.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), c.Param("id"), req, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OK(customer))
}

// DeleteCustomer soft-deletes a customer without active rentals
// @Summary      Delete customer
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Customer ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/v1/customers/{id} [delete]
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	if err := h.customerService.DeleteCustomer(c.Request.Context(), c.Param("id"), actorID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OKWithMessage("Customer deleted", nil))
}
