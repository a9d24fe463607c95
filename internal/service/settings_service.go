package service

import (
	"context"
	"strings"

	"approvalflow/internal/apperror"
	"approvalflow/internal/audit"
	"approvalflow/internal/cache"
	"approvalflow/internal/clock"
	"approvalflow/internal/concurrency"
	"approvalflow/internal/model"
	"approvalflow/internal/repository"
)

// WorkflowSettings are the runtime-editable workflow parameters.
type WorkflowSettings struct {
	ITReviewForms     []string `json:"it_review_forms"`
	OperationsMailbox string   `json:"operations_mailbox"`
}

// SettingsInput is a partial update; nil fields are left unchanged.
type SettingsInput struct {
	ITReviewForms     *[]string `json:"it_review_forms"`
	OperationsMailbox *string   `json:"operations_mailbox" validate:"omitempty,email"`
}

// FormPolicy answers the per-form questions the workflow asks.
type FormPolicy interface {
	ITReviewRequired(ctx context.Context, formNumber string) (bool, error)
	OperationsMailbox(ctx context.Context) (string, error)
}

type SettingsService interface {
	FormPolicy
	Current(ctx context.Context) (WorkflowSettings, error)
	UpdateSettings(ctx context.Context, actor string, in SettingsInput) Result
}

type settingsService struct {
	settings repository.SettingRepository
	tx       repository.TransactionManager
	cache    *cache.Cache
	guard    concurrency.Guard
	auth     *Authorizer
	trail    *audit.Trail
	clock    clock.Clock
	defaults WorkflowSettings
}

// NewSettingsService builds the settings service. defaults apply to keys
// that were never stored.
func NewSettingsService(
	settings repository.SettingRepository,
	tx repository.TransactionManager,
	c *cache.Cache,
	guard concurrency.Guard,
	auth *Authorizer,
	trail *audit.Trail,
	clk clock.Clock,
	defaults WorkflowSettings,
) SettingsService {
	if clk == nil {
		clk = clock.System
	}
	defaults.ITReviewForms = normalizeFormIDs(defaults.ITReviewForms)
	defaults.OperationsMailbox = model.NormalizeEmail(defaults.OperationsMailbox)
	return &settingsService{
		settings: settings,
		tx:       tx,
		cache:    c,
		guard:    guard,
		auth:     auth,
		trail:    trail,
		clock:    clk,
		defaults: defaults,
	}
}

func (s *settingsService) Current(ctx context.Context) (WorkflowSettings, error) {
	stored, err := cache.Fetch(ctx, s.cache, cache.KeySettings, s.load)
	if err != nil {
		return WorkflowSettings{}, classify(err)
	}

	current := s.defaults
	if raw, ok := stored[model.SettingITReviewForms]; ok {
		current.ITReviewForms = normalizeFormIDs(strings.Split(raw, ","))
	}
	if raw, ok := stored[model.SettingOperationsMailbox]; ok && strings.TrimSpace(raw) != "" {
		current.OperationsMailbox = model.NormalizeEmail(raw)
	}
	return current, nil
}

func (s *settingsService) load(ctx context.Context) (map[string]string, error) {
	rows, err := s.settings.List(ctx)
	if err != nil {
		return nil, err
	}
	stored := make(map[string]string, len(rows))
	for _, row := range rows {
		stored[row.Key] = row.Value
	}
	return stored, nil
}

func (s *settingsService) ITReviewRequired(ctx context.Context, formNumber string) (bool, error) {
	current, err := s.Current(ctx)
	if err != nil {
		return false, err
	}
	formNumber = model.NormalizeFormID(formNumber)
	for _, id := range current.ITReviewForms {
		if id == formNumber {
			return true, nil
		}
	}
	return false, nil
}

func (s *settingsService) OperationsMailbox(ctx context.Context) (string, error) {
	current, err := s.Current(ctx)
	if err != nil {
		return "", err
	}
	return current.OperationsMailbox, nil
}

func (s *settingsService) UpdateSettings(ctx context.Context, actor string, in SettingsInput) Result {
	const op = "updateSettings"
	actor = model.NormalizeEmail(actor)
	entry := audit.Entry{Actor: actor, Op: op, Action: model.ActionUpdateSettings, EntityID: "settings"}

	err := s.updateSettings(ctx, actor, in, &entry)
	s.trail.Record(entry.WithErr(err))
	if err != nil {
		return observed(op, failed(err))
	}
	return observed(op, succeeded("Settings updated", ""))
}

func (s *settingsService) updateSettings(ctx context.Context, actor string, in SettingsInput, entry *audit.Entry) error {
	if err := validateStruct(in); err != nil {
		return err
	}
	now := s.clock.Now()
	var rows []model.Setting
	details := map[string]interface{}{}
	if in.ITReviewForms != nil {
		forms := make([]string, 0, len(*in.ITReviewForms))
		for _, raw := range *in.ITReviewForms {
			if strings.TrimSpace(raw) == "" {
				continue
			}
			if !model.ValidFormID(raw) {
				return apperror.Validation("it_review_forms: %q is not a numeric form id", raw)
			}
			forms = append(forms, model.NormalizeFormID(raw))
		}
		rows = append(rows, model.Setting{Key: model.SettingITReviewForms, Value: strings.Join(forms, ","), UpdatedAt: now})
		details[model.SettingITReviewForms] = forms
	}
	if in.OperationsMailbox != nil {
		mailbox := model.NormalizeEmail(*in.OperationsMailbox)
		rows = append(rows, model.Setting{Key: model.SettingOperationsMailbox, Value: mailbox, UpdatedAt: now})
		details[model.SettingOperationsMailbox] = mailbox
	}
	if len(rows) == 0 {
		return apperror.Validation("no settings to update")
	}
	entry.Details = details

	return locked(ctx, s.guard, func(ctx context.Context) error {
		if err := s.auth.RequireAdmin(ctx, actor); err != nil {
			return err
		}
		err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
			if err := s.settings.Upsert(txCtx, rows); err != nil {
				return err
			}
			return s.trail.Persist(txCtx, *entry)
		})
		if err != nil {
			return classify(err)
		}
		s.cache.Invalidate(ctx, "settings_write", cache.KeySettings)
		return nil
	})
}

func normalizeFormIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			continue
		}
		out = append(out, model.NormalizeFormID(id))
	}
	return out
}
