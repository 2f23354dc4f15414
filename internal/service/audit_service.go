package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
)

type AuditLogResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

// AuditService exposes the read side of the audit trail. Writes happen
// inside the domain services through AuditRepository.Log.
type AuditService interface {
	GetAuditLogs(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
}

func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

func (s *auditService) GetAuditLogs(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	logs, total, err := s.auditRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, toAuditLogResponse(l))
	}
	return res, total, nil
}

func toAuditLogResponse(l model.AuditLog) AuditLogResponse {
	// Entries written by the cron sweep have no acting user.
	username := "System"
	userID := ""
	if l.User != nil {
		username = l.User.Username
	}
	if l.UserID != nil {
		userID = l.UserID.String()
	}
	return AuditLogResponse{
		ID:         l.ID.String(),
		UserID:     userID,
		Username:   username,
		Action:     l.Action,
		EntityID:   l.EntityID,
		EntityName: l.EntityName,
		Details:    l.Details,
		CreatedAt:  l.CreatedAt.Format(time.RFC3339),
	}
}
