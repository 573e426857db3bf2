package models

import "github.com/google/uuid"

// ApplicationType distinguishes owner-initiated invites from
// user-initiated join requests.
type ApplicationType string

const (
	ApplicationInvite  ApplicationType = "invite"
	ApplicationRequest ApplicationType = "request"
)

func (t ApplicationType) Valid() bool {
	return t == ApplicationInvite || t == ApplicationRequest
}

// Role is the position a user holds inside a company. The hierarchy is
// owner > admin > member; owner capabilities include admin's, admin's
// include member's.
type Role string

const (
	RoleNone   Role = ""
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

var roleRank = map[Role]int{
	RoleNone:   0,
	RoleMember: 1,
	RoleAdmin:  2,
	RoleOwner:  3,
}

// AtLeast reports whether r carries the capabilities of min.
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min]
}

// MembershipApplication is a pending invite or join request. It is
// transient: accepting converts it into a Member row, rejecting deletes
// it. A user cannot hold two pending applications of the same type for
// the same company.
type MembershipApplication struct {
	Base
	UserID    uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_application" json:"user_id"`
	CompanyID uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_application" json:"company_id"`
	Type      ApplicationType `gorm:"type:varchar(16);not null;uniqueIndex:idx_application" json:"type"`

	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Company *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
}

func (MembershipApplication) TableName() string {
	return "membership_applications"
}

// Member is the durable link between a user and a company. At most one
// row per (user, company); exactly one row per company has RoleOwner and
// its UserID matches Company.OwnerID.
type Member struct {
	Base
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_member" json:"user_id"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_member" json:"company_id"`
	Role      Role      `gorm:"type:varchar(16);not null;default:'member'" json:"role"`

	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Company *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
}

func (Member) TableName() string {
	return "members"
}
