package repository

import (
	"context"
	"time"

	"approvalflow/internal/model"
	"approvalflow/internal/workflow"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// RequestUpdate is the full set of fields one transition writes.
type RequestUpdate struct {
	Status               workflow.Status
	CurrentApproverEmail string
	History              []model.HistoryEntry
	ITReviewDetails      string
	UpdatedAt            time.Time
}

type RequestRepository interface {
	Create(ctx context.Context, req *model.Request) error
	FindByID(ctx context.Context, id string) (*model.Request, error)
	ApplyTransition(ctx context.Context, id string, update RequestUpdate) error
	ListOpen(ctx context.Context) ([]model.Request, error)
	ListByRequester(ctx context.Context, email string, page, limit int) ([]model.Request, int64, error)
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, req *model.Request) error {
	if err := GetDB(ctx, r.db).Create(req).Error; err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	return nil
}

// FindByID always reads the store; it never goes through the data cache.
func (r *requestRepository) FindByID(ctx context.Context, id string) (*model.Request, error) {
	var req model.Request
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, translate(err, "request")
	}
	return &req, nil
}

func (r *requestRepository) ApplyTransition(ctx context.Context, id string, update RequestUpdate) error {
	res := GetDB(ctx, r.db).
		Model(&model.Request{ID: id}).
		Select(model.ColumnStatus, model.ColumnCurrentApprover, model.ColumnHistory, model.ColumnITReviewDetails, model.ColumnUpdatedAt).
		Updates(&model.Request{
			Status:               update.Status,
			CurrentApproverEmail: update.CurrentApproverEmail,
			History:              update.History,
			ITReviewDetails:      update.ITReviewDetails,
			UpdatedAt:            update.UpdatedAt,
		})
	return requireAffected(res, "request")
}

// ListOpen returns every non-terminal request, newest first.
func (r *requestRepository) ListOpen(ctx context.Context) ([]model.Request, error) {
	var requests []model.Request
	if err := GetDB(ctx, r.db).
		Where("status NOT IN ?", []workflow.Status{workflow.StatusApproved, workflow.StatusRejected}).
		Order("submitted_at DESC").
		Find(&requests).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list open requests")
	}
	return requests, nil
}

func (r *requestRepository) ListByRequester(ctx context.Context, email string, page, limit int) ([]model.Request, int64, error) {
	var requests []model.Request
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Request{}).Where("requester_email = ?", email).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count requests")
	}

	offset := (page - 1) * limit
	if err := db.Where("requester_email = ?", email).
		Order("submitted_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&requests).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to fetch requests")
	}

	return requests, total, nil
}
