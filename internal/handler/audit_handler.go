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

type AuditHandler struct {
	auditService service.AuditService
	userRepo     repository.UserRepository
}

func NewAuditHandler(auditService service.AuditService, userRepo repository.UserRepository) *AuditHandler {
	return &AuditHandler{auditService: auditService, userRepo: userRepo}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := middleware.RequireRole(h.userRepo, model.RoleAdmin)

	router.GET("/audit-logs", admin, h.ListAuditLogs)
}

// ListAuditLogs returns paginated audit entries, newest first
// @Summary      List audit logs
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        page   query  int  false  "Page number (default: 1)"
// @Param        limit  query  int  false  "Items per page (default: 20)"
// @Success      200  {object}  response.Response
// @Router       /api/v1/audit-logs [get]
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	p := pagination.Parse(c)

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OK(pagination.NewList(logs, total, p)))
}
