package database

import (
	"fmt"

	"approvalflow/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table the service owns, in migration order.
func Models() []interface{} {
	return []interface{}{
		&model.Request{},
		&model.Approver{},
		&model.ITReviewChain{},
		&model.Setting{},
		&model.AuditLog{},
	}
}

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every owned table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to auto-migrate models: %w", err)
	}
	return nil
}

// ValidateSchema checks that every table and column the models map to exists
// in the live database, so a drifted schema fails at startup rather than on
// the first write.
func ValidateSchema(db *gorm.DB) error {
	migrator := db.Migrator()
	for _, m := range Models() {
		table, columns, err := columnsOf(db, m)
		if err != nil {
			return err
		}
		if !migrator.HasTable(m) {
			return fmt.Errorf("schema check: table %s is missing", table)
		}
		for _, column := range columns {
			if !migrator.HasColumn(m, column) {
				return fmt.Errorf("schema check: column %s.%s is missing", table, column)
			}
		}
	}
	return nil
}

func columnsOf(db *gorm.DB, m interface{}) (string, []string, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(m); err != nil {
		return "", nil, fmt.Errorf("schema check: %w", err)
	}
	return stmt.Schema.Table, stmt.Schema.DBNames, nil
}
