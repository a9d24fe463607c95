package repository

import (
	"context"

	"approvalflow/internal/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ApproverRepository is the roster table.
type ApproverRepository interface {
	List(ctx context.Context) ([]model.Approver, error)
	FindByEmail(ctx context.Context, email string) (*model.Approver, error)
	Create(ctx context.Context, approver *model.Approver) error
	Update(ctx context.Context, approver *model.Approver) error
	Delete(ctx context.Context, email string) error
}

type approverRepository struct {
	db *gorm.DB
}

func NewApproverRepository(db *gorm.DB) ApproverRepository {
	return &approverRepository{db: db}
}

// List returns the roster in roster order.
func (r *approverRepository) List(ctx context.Context) ([]model.Approver, error) {
	var approvers []model.Approver
	if err := GetDB(ctx, r.db).Order("position ASC").Order("email ASC").Find(&approvers).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list approvers")
	}
	return approvers, nil
}

func (r *approverRepository) FindByEmail(ctx context.Context, email string) (*model.Approver, error) {
	var approver model.Approver
	if err := GetDB(ctx, r.db).First(&approver, "email = ?", email).Error; err != nil {
		return nil, translate(err, "approver")
	}
	return &approver, nil
}

func (r *approverRepository) Create(ctx context.Context, approver *model.Approver) error {
	if err := GetDB(ctx, r.db).Create(approver).Error; err != nil {
		return errors.Wrap(err, "failed to create approver")
	}
	return nil
}

func (r *approverRepository) Update(ctx context.Context, approver *model.Approver) error {
	res := GetDB(ctx, r.db).Model(&model.Approver{Email: approver.Email}).
		Select("name", "level", "role", "department", "sub_department", "division", "position").
		Updates(approver)
	return requireAffected(res, "approver")
}

func (r *approverRepository) Delete(ctx context.Context, email string) error {
	res := GetDB(ctx, r.db).Where("email = ?", email).Delete(&model.Approver{})
	return requireAffected(res, "approver")
}
