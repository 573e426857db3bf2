package models

import "github.com/google/uuid"

// Notification records a membership event for a user. Rows are written
// by the background worker, not by the request path.
type Notification struct {
	Base
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	CompanyID uuid.UUID `gorm:"type:uuid;index" json:"company_id"`
	Event     string    `gorm:"not null" json:"event"`
	Message   string    `json:"message"`
	Read      bool      `gorm:"default:false" json:"read"`
}

func (Notification) TableName() string {
	return "notifications"
}
