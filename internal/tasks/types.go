package tasks

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeMembershipNotify = "membership:notify"
)

// Membership events carried by notify tasks
const (
	EventInvited     = "invited"
	EventRequested   = "requested"
	EventAccepted    = "accepted"
	EventRejected    = "rejected"
	EventRoleChanged = "role_changed"
	EventRemoved     = "removed"
)

// MembershipNotifyPayload contains the data for a membership notification task.
// UserID is the user the notification is for, not necessarily the actor.
type MembershipNotifyPayload struct {
	UserID      uuid.UUID `json:"user_id"`
	CompanyID   uuid.UUID `json:"company_id"`
	CompanyName string    `json:"company_name"`
	Event       string    `json:"event"`
}

func NewMembershipNotifyTask(payload MembershipNotifyPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeMembershipNotify, data), nil
}
