package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func countRows(n int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count"}).AddRow(n)
}

func TestValidateSchemaAcceptsCompleteSchema(t *testing.T) {
	db, mock := newMockDB(t)
	mock.MatchExpectationsInOrder(false)

	for _, m := range Models() {
		_, columns, err := columnsOf(db, m)
		require.NoError(t, err)
		mock.ExpectQuery(`(?i)information_schema\.tables`).WillReturnRows(countRows(1))
		for range columns {
			mock.ExpectQuery(`(?i)information_schema\.columns`).WillReturnRows(countRows(1))
		}
	}

	require.NoError(t, ValidateSchema(db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateSchemaReportsMissingTable(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`(?i)information_schema\.tables`).WillReturnRows(countRows(0))

	err := ValidateSchema(db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table requests is missing")
}

func TestModelColumnsCoverTransitionFields(t *testing.T) {
	db, _ := newMockDB(t)
	table, columns, err := columnsOf(db, Models()[0])
	require.NoError(t, err)

	assert.Equal(t, "requests", table)
	assert.Subset(t, columns, []string{"status", "current_approver_email", "history", "it_review_details", "updated_at"})
}
