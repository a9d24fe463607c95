package model

import "strings"

// Approver roles.
const (
	RoleAdmin    = "Admin"
	RoleApprover = "Approver"
)

// VPLevel is the minimum level that makes an approver a VP of their division.
const VPLevel = 10

// Approver is a roster row mapping department/sub-department/level to a person.
type Approver struct {
	Email         string `gorm:"type:varchar(255);primaryKey" json:"email"`
	Name          string `gorm:"type:varchar(255);not null" json:"name"`
	Level         int    `gorm:"not null" json:"level"`
	Role          string `gorm:"type:varchar(20);not null" json:"role"`
	Department    string `gorm:"type:varchar(100);not null;index" json:"department"`
	SubDepartment string `gorm:"type:varchar(100)" json:"sub_department"`
	Division      string `gorm:"type:varchar(100);not null;index" json:"division"`
	// Position preserves roster order; it breaks level ties during routing.
	Position int64 `gorm:"not null;default:0;index" json:"position"`
}

// IsVP reports whether the approver is a VP of their division.
func (a Approver) IsVP() bool {
	return a.Level >= VPLevel
}

// IsAdmin reports whether the approver may run administrative operations.
func (a Approver) IsAdmin() bool {
	return strings.EqualFold(a.Role, RoleAdmin)
}
