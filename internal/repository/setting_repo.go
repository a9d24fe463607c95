package repository

import (
	"context"

	"approvalflow/internal/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository interface {
	List(ctx context.Context) ([]model.Setting, error)
	Upsert(ctx context.Context, settings []model.Setting) error
}

type settingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) List(ctx context.Context) ([]model.Setting, error) {
	var settings []model.Setting
	if err := GetDB(ctx, r.db).Order("key ASC").Find(&settings).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list settings")
	}
	return settings, nil
}

func (r *settingRepository) Upsert(ctx context.Context, settings []model.Setting) error {
	if len(settings) == 0 {
		return nil
	}
	if err := GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&settings).Error; err != nil {
		return errors.Wrap(err, "failed to upsert settings")
	}
	return nil
}
