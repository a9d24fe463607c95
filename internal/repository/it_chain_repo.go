package repository

import (
	"context"

	"approvalflow/internal/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type ITChainRepository interface {
	List(ctx context.Context) ([]model.ITReviewChain, error)
	FindByFormID(ctx context.Context, formID string) (*model.ITReviewChain, error)
	Create(ctx context.Context, chain *model.ITReviewChain) error
	Update(ctx context.Context, chain *model.ITReviewChain) error
	Delete(ctx context.Context, formID string) error
}

type itChainRepository struct {
	db *gorm.DB
}

func NewITChainRepository(db *gorm.DB) ITChainRepository {
	return &itChainRepository{db: db}
}

func (r *itChainRepository) List(ctx context.Context) ([]model.ITReviewChain, error) {
	var chains []model.ITReviewChain
	if err := GetDB(ctx, r.db).Order("form_id ASC").Find(&chains).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list it review chains")
	}
	return chains, nil
}

func (r *itChainRepository) FindByFormID(ctx context.Context, formID string) (*model.ITReviewChain, error) {
	var chain model.ITReviewChain
	if err := GetDB(ctx, r.db).First(&chain, "form_id = ?", formID).Error; err != nil {
		return nil, translate(err, "it review chain")
	}
	return &chain, nil
}

func (r *itChainRepository) Create(ctx context.Context, chain *model.ITReviewChain) error {
	if err := GetDB(ctx, r.db).Create(chain).Error; err != nil {
		return errors.Wrap(err, "failed to create it review chain")
	}
	return nil
}

func (r *itChainRepository) Update(ctx context.Context, chain *model.ITReviewChain) error {
	res := GetDB(ctx, r.db).Model(&model.ITReviewChain{FormID: chain.FormID}).
		Select("reviewer_email", "manager_email", "director_email").
		Updates(chain)
	return requireAffected(res, "it review chain")
}

func (r *itChainRepository) Delete(ctx context.Context, formID string) error {
	res := GetDB(ctx, r.db).Where("form_id = ?", formID).Delete(&model.ITReviewChain{})
	return requireAffected(res, "it review chain")
}
