package repository

import (
	"context"

	"approvalflow/internal/model"
	"approvalflow/internal/workflow"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type StatisticsRepository interface {
	CountByStatus(ctx context.Context, requesterEmail string) (map[workflow.Status]int64, error)
	CountAwaiting(ctx context.Context, approverEmail string) (int64, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

// CountByStatus groups the requester's requests by status.
func (r *statisticsRepository) CountByStatus(ctx context.Context, requesterEmail string) (map[workflow.Status]int64, error) {
	var rows []struct {
		Status workflow.Status
		Count  int64
	}
	if err := r.db.WithContext(ctx).Model(&model.Request{}).
		Select("status, COUNT(*) as count").
		Where("requester_email = ?", requesterEmail).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to count requests by status")
	}

	counts := make(map[workflow.Status]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *statisticsRepository) CountAwaiting(ctx context.Context, approverEmail string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Request{}).
		Where("current_approver_email = ?", approverEmail).
		Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count awaiting requests")
	}
	return count, nil
}
