package model

import (
	"time"

	"approvalflow/internal/workflow"
)

// HistoryEntry is one engine-owned entry in a request's append-only history.
type HistoryEntry struct {
	ApproverEmail string    `json:"approver_email"`
	Action        string    `json:"action"`
	Notes         string    `json:"notes"`
	Timestamp     time.Time `json:"timestamp"`
}

// Request is a multi-step approval request routed through the approver roster.
// Details and ITReviewDetails are opaque JSON documents owned by the forms;
// the engine never interprets them.
type Request struct {
	ID                   string          `gorm:"type:varchar(64);primaryKey" json:"id"`
	FormType             string          `gorm:"type:varchar(50);not null;index" json:"form_type"`
	SubmittedAt          time.Time       `gorm:"not null;index" json:"submitted_at"`
	RequesterName        string          `gorm:"type:varchar(255);not null" json:"requester_name"`
	RequesterEmail       string          `gorm:"type:varchar(255);not null;index" json:"requester_email"`
	Department           string          `gorm:"type:varchar(100);not null;index" json:"department"`
	SubDepartment        string          `gorm:"type:varchar(100)" json:"sub_department"`
	Status               workflow.Status `gorm:"type:varchar(30);not null;index" json:"status"`
	CurrentApproverEmail string          `gorm:"type:varchar(255);index" json:"current_approver_email"` // Empty only in terminal states
	History              []HistoryEntry  `gorm:"type:jsonb;serializer:json;not null" json:"history"`
	Details              string          `gorm:"type:jsonb;not null" json:"details"`
	ITReviewDetails      string          `gorm:"type:jsonb;not null" json:"it_review_details"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// EmptyDocument is stored for opaque documents that have not been written yet.
const EmptyDocument = "{}"

// Request column names, validated against the live schema at startup.
const (
	ColumnStatus          = "status"
	ColumnCurrentApprover = "current_approver_email"
	ColumnHistory         = "history"
	ColumnITReviewDetails = "it_review_details"
	ColumnUpdatedAt       = "updated_at"
)
