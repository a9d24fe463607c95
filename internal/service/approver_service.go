package service

import (
	"context"
	"strings"

	"approvalflow/internal/apperror"
	"approvalflow/internal/audit"
	"approvalflow/internal/concurrency"
	"approvalflow/internal/model"
	"approvalflow/internal/repository"
	"approvalflow/internal/routing"
)

// Management actions.
const (
	ManageAdd    = "add"
	ManageUpdate = "update"
	ManageDelete = "delete"
)

type ApproverInput struct {
	Email         string `json:"email" yaml:"email" validate:"required,email"`
	Name          string `json:"name" yaml:"name" validate:"required"`
	Level         int    `json:"level" yaml:"level" validate:"min=1"`
	Role          string `json:"role" yaml:"role" validate:"omitempty,oneof=Admin Approver"`
	Department    string `json:"department" yaml:"department" validate:"required"`
	SubDepartment string `json:"sub_department" yaml:"sub_department"`
	Division      string `json:"division" yaml:"division" validate:"required"`
}

func (in ApproverInput) toModel() model.Approver {
	role := in.Role
	if role == "" {
		role = model.RoleApprover
	}
	return model.Approver{
		Email:         model.NormalizeEmail(in.Email),
		Name:          strings.TrimSpace(in.Name),
		Level:         in.Level,
		Role:          role,
		Department:    strings.TrimSpace(in.Department),
		SubDepartment: strings.TrimSpace(in.SubDepartment),
		Division:      strings.TrimSpace(in.Division),
	}
}

type ApproverService interface {
	ListApprovers(ctx context.Context) ([]model.Approver, error)
	ManageApprover(ctx context.Context, actor, action string, in ApproverInput) Result
	ImportRoster(ctx context.Context, actor string, rows []ApproverInput) Result
}

type approverService struct {
	approvers repository.ApproverRepository
	tx        repository.TransactionManager
	resolver  *routing.Resolver
	guard     concurrency.Guard
	auth      *Authorizer
	trail     *audit.Trail
}

func NewApproverService(
	approvers repository.ApproverRepository,
	tx repository.TransactionManager,
	resolver *routing.Resolver,
	guard concurrency.Guard,
	auth *Authorizer,
	trail *audit.Trail,
) ApproverService {
	return &approverService{
		approvers: approvers,
		tx:        tx,
		resolver:  resolver,
		guard:     guard,
		auth:      auth,
		trail:     trail,
	}
}

// ListApprovers returns the cached roster.
func (s *approverService) ListApprovers(ctx context.Context) ([]model.Approver, error) {
	roster, err := s.resolver.Roster(ctx)
	return roster, classify(err)
}

func (s *approverService) ManageApprover(ctx context.Context, actor, action string, in ApproverInput) Result {
	const op = "manageApprover"
	actor = model.NormalizeEmail(actor)
	action = strings.ToLower(strings.TrimSpace(action))
	entry := audit.Entry{Actor: actor, Op: op, EntityID: model.NormalizeEmail(in.Email), EntityName: strings.TrimSpace(in.Name)}

	message, err := s.manage(ctx, actor, action, in, &entry)
	s.trail.Record(entry.WithErr(err))
	if err != nil {
		return observed(op, failed(err))
	}
	return observed(op, succeeded(message, ""))
}

func (s *approverService) manage(ctx context.Context, actor, action string, in ApproverInput, entry *audit.Entry) (string, error) {
	var (
		message string
		write   func(ctx context.Context, row model.Approver) error
	)
	switch action {
	case ManageAdd:
		entry.Action, message = model.ActionCreateApprover, "Approver added"
		write = s.add
	case ManageUpdate:
		entry.Action, message = model.ActionUpdateApprover, "Approver updated"
		write = s.update
	case ManageDelete:
		entry.Action, message = model.ActionDeleteApprover, "Approver deleted"
		write = func(ctx context.Context, row model.Approver) error {
			return s.approvers.Delete(ctx, row.Email)
		}
	default:
		entry.Action = "MANAGE_APPROVER"
		return "", apperror.Validation("action must be one of add, update or delete")
	}

	if action == ManageDelete {
		if !validEmail(in.Email) {
			return "", apperror.Validation("email must be a valid email address")
		}
	} else if err := validateStruct(in); err != nil {
		return "", err
	}
	row := in.toModel()
	entry.Details = map[string]interface{}{
		"department":     row.Department,
		"sub_department": row.SubDepartment,
		"level":          row.Level,
	}

	return message, locked(ctx, s.guard, func(ctx context.Context) error {
		if err := s.auth.RequireAdmin(ctx, actor); err != nil {
			return err
		}
		return s.writeRoster(ctx, *entry, func(txCtx context.Context) error {
			return write(txCtx, row)
		})
	})
}

func (s *approverService) add(ctx context.Context, row model.Approver) error {
	if _, err := s.approvers.FindByEmail(ctx, row.Email); err == nil {
		return apperror.Validation("approver %s already exists", row.Email)
	} else if !apperror.Is(err, apperror.KindNotFound) {
		return err
	}
	roster, err := s.approvers.List(ctx)
	if err != nil {
		return err
	}
	row.Position = nextPosition(roster)
	return s.approvers.Create(ctx, &row)
}

// update keeps the row's roster position.
func (s *approverService) update(ctx context.Context, row model.Approver) error {
	existing, err := s.approvers.FindByEmail(ctx, row.Email)
	if err != nil {
		return err
	}
	row.Position = existing.Position
	return s.approvers.Update(ctx, &row)
}

// ImportRoster upserts rows in file order; the file order becomes the
// roster order. Rows not in the file are left untouched.
func (s *approverService) ImportRoster(ctx context.Context, actor string, rows []ApproverInput) Result {
	const op = "importRoster"
	actor = model.NormalizeEmail(actor)
	entry := audit.Entry{Actor: actor, Op: op, Action: model.ActionImportRoster, EntityID: "roster"}

	err := s.importRoster(ctx, actor, rows, &entry)
	s.trail.Record(entry.WithErr(err))
	if err != nil {
		return observed(op, failed(err))
	}
	return observed(op, succeeded("Roster imported", ""))
}

func (s *approverService) importRoster(ctx context.Context, actor string, rows []ApproverInput, entry *audit.Entry) error {
	if len(rows) == 0 {
		return apperror.Validation("roster is empty")
	}
	seen := make(map[string]bool, len(rows))
	approvers := make([]model.Approver, 0, len(rows))
	for i, in := range rows {
		if err := validateStruct(in); err != nil {
			return apperror.Validation("row %d: %s", i+1, apperror.Message(err))
		}
		row := in.toModel()
		if seen[row.Email] {
			return apperror.Validation("row %d: duplicate email %s", i+1, row.Email)
		}
		seen[row.Email] = true
		row.Position = int64(i + 1)
		approvers = append(approvers, row)
	}
	entry.Details = map[string]interface{}{"rows": len(approvers)}

	return locked(ctx, s.guard, func(ctx context.Context) error {
		if err := s.auth.RequireAdmin(ctx, actor); err != nil {
			return err
		}
		return s.writeRoster(ctx, *entry, func(txCtx context.Context) error {
			for i := range approvers {
				row := approvers[i]
				_, err := s.approvers.FindByEmail(txCtx, row.Email)
				switch {
				case err == nil:
					err = s.approvers.Update(txCtx, &row)
				case apperror.Is(err, apperror.KindNotFound):
					err = s.approvers.Create(txCtx, &row)
				}
				if err != nil {
					return err
				}
			}
			return nil
		})
	})
}

// writeRoster runs write and the audit row in one transaction, then evicts
// every roster-derived cache key. Must be called with the lock held.
func (s *approverService) writeRoster(ctx context.Context, entry audit.Entry, write func(txCtx context.Context) error) error {
	before, err := s.approvers.List(ctx)
	if err != nil {
		return classify(err)
	}
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := write(txCtx); err != nil {
			return err
		}
		return s.trail.Persist(txCtx, entry)
	})
	if err != nil {
		return classify(err)
	}
	s.resolver.InvalidateRoster(ctx, before)
	return nil
}

func nextPosition(roster []model.Approver) int64 {
	var highest int64
	for _, row := range roster {
		if row.Position > highest {
			highest = row.Position
		}
	}
	return highest + 1
}
