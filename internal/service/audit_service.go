package service

import (
	"context"

	"approvalflow/internal/repository"
	"approvalflow/pkg/pagination"
)

type AuditLogResponse struct {
	ID         string `json:"id"`
	ActorEmail string `json:"actor_email"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

type AuditService interface {
	GetAuditLogs(ctx context.Context, actor string, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	logs repository.AuditRepository
	auth *Authorizer
}

// NewAuditService creates a new AuditService instance
func NewAuditService(logs repository.AuditRepository, auth *Authorizer) AuditService {
	return &auditService{logs: logs, auth: auth}
}

// GetAuditLogs lists committed mutations, newest first. Admins only.
func (s *auditService) GetAuditLogs(ctx context.Context, actor string, page, limit int) ([]AuditLogResponse, int64, error) {
	if err := s.auth.RequireAdmin(ctx, actor); err != nil {
		return nil, 0, err
	}
	p := pagination.Normalize(page, limit)
	logs, total, err := s.logs.List(ctx, p.Page, p.Limit)
	if err != nil {
		return nil, 0, classify(err)
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		actorEmail := l.ActorEmail
		if actorEmail == "" {
			actorEmail = "system"
		}
		res = append(res, AuditLogResponse{
			ID:         l.ID.String(),
			ActorEmail: actorEmail,
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Details:    l.Details,
			CreatedAt:  l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return res, total, nil
}
