package models

import "github.com/google/uuid"

type Company struct {
	Base
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`
	Description string    `json:"description"`
	IsPrivate   bool      `gorm:"default:false" json:"is_private"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`

	// Relationships
	Owner        *User                   `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Members      []Member                `gorm:"foreignKey:CompanyID" json:"-"`
	Applications []MembershipApplication `gorm:"foreignKey:CompanyID" json:"-"`
	Quizzes      []Quiz                  `gorm:"foreignKey:CompanyID" json:"-"`
}

func (Company) TableName() string {
	return "companies"
}
