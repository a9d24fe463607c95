package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionSubmitRequest  = "SUBMIT_REQUEST"
	ActionApproveRequest = "APPROVE_REQUEST"
	ActionRejectRequest  = "REJECT_REQUEST"
	ActionForwardRequest = "FORWARD_REQUEST"
	ActionCreateApprover = "CREATE_APPROVER"
	ActionUpdateApprover = "UPDATE_APPROVER"
	ActionDeleteApprover = "DELETE_APPROVER"
	ActionImportRoster   = "IMPORT_ROSTER"
	ActionCreateITChain  = "CREATE_IT_CHAIN"
	ActionUpdateITChain  = "UPDATE_IT_CHAIN"
	ActionDeleteITChain  = "DELETE_IT_CHAIN"
	ActionUpdateSettings = "UPDATE_SETTINGS"
)

// AuditLog tracks Who, What, and When for every committed mutation
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ActorEmail string    `gorm:"type:varchar(255);index" json:"actor_email"` // Empty for automated jobs
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(100);index" json:"entity_id"`       // Request id, approver email or form id
	EntityName string    `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string    `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
