package model

import "time"

// Known setting keys.
const (
	SettingITReviewForms     = "it_review_forms"    // comma-separated numeric form ids
	SettingOperationsMailbox = "operations_mailbox" // receives finalized documents
)

// Setting is a runtime-editable key/value pair.
type Setting struct {
	Key       string    `gorm:"type:varchar(100);primaryKey" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
