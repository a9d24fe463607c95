package model

// ITReviewChain is the Reviewer -> Manager -> Director path for one form id.
type ITReviewChain struct {
	FormID        string `gorm:"type:varchar(20);primaryKey" json:"form_id"`
	ReviewerEmail string `gorm:"type:varchar(255);not null" json:"reviewer_email"`
	ManagerEmail  string `gorm:"type:varchar(255);not null" json:"manager_email"`
	DirectorEmail string `gorm:"type:varchar(255);not null" json:"director_email"`
}

// TableName keeps the plural table name stable.
func (ITReviewChain) TableName() string {
	return "it_review_chains"
}
