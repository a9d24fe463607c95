package repository

import (
	stderrors "errors"

	"approvalflow/internal/apperror"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// translate maps gorm's not-found to apperror.NotFound and wraps any other
// driver error with context.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound("%s not found", what)
	}
	return errors.Wrapf(err, "%s query failed", what)
}

// requireAffected returns NotFound when a write touched no rows.
func requireAffected(res *gorm.DB, what string) error {
	if res.Error != nil {
		return errors.Wrapf(res.Error, "%s write failed", what)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("%s not found", what)
	}
	return nil
}
