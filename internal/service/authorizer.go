package service

import (
	"context"

	"approvalflow/internal/apperror"
	"approvalflow/internal/model"
	"approvalflow/internal/repository"
)

// Authorizer decides who may run administrative operations: roster rows
// with the Admin role, plus the bootstrap addresses from configuration.
type Authorizer struct {
	approvers repository.ApproverRepository
	bootstrap map[string]bool
}

func NewAuthorizer(approvers repository.ApproverRepository, adminEmails []string) *Authorizer {
	bootstrap := make(map[string]bool, len(adminEmails))
	for _, email := range adminEmails {
		if email = model.NormalizeEmail(email); email != "" {
			bootstrap[email] = true
		}
	}
	return &Authorizer{approvers: approvers, bootstrap: bootstrap}
}

// IsAdmin reads the roster directly; a cached role could outlive a demotion.
func (a *Authorizer) IsAdmin(ctx context.Context, email string) (bool, error) {
	email = model.NormalizeEmail(email)
	if email == "" {
		return false, nil
	}
	if a.bootstrap[email] {
		return true, nil
	}
	approver, err := a.approvers.FindByEmail(ctx, email)
	if apperror.Is(err, apperror.KindNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return approver.IsAdmin(), nil
}

// RequireAdmin returns an AuthorizationError unless email is an admin.
func (a *Authorizer) RequireAdmin(ctx context.Context, email string) error {
	ok, err := a.IsAdmin(ctx, email)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.Authorization("administrator access required")
	}
	return nil
}
