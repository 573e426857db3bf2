package models

import "github.com/google/uuid"

// Caller is the authenticated principal attached to a request, resolved
// by the auth middleware from the bearer token.
type Caller struct {
	ID          uuid.UUID
	IsSuperuser bool
}

type User struct {
	Base
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Name         string `json:"name"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`
	IsSuperuser  bool   `gorm:"default:false" json:"is_superuser"`
}

func (User) TableName() string {
	return "users"
}
