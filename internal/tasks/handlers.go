package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/quizhub/quizhub/internal/database/models"
	"gorm.io/gorm"
)

type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeMembershipNotify, h.HandleMembershipNotify)
}

func (h *Handler) HandleMembershipNotify(ctx context.Context, t *asynq.Task) error {
	var payload MembershipNotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	notification := models.Notification{
		UserID:    payload.UserID,
		CompanyID: payload.CompanyID,
		Event:     payload.Event,
		Message:   notifyMessage(payload),
	}

	if err := h.db.WithContext(ctx).Create(&notification).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	h.logger.Info("membership notification delivered",
		"user_id", payload.UserID,
		"company_id", payload.CompanyID,
		"event", payload.Event,
	)
	return nil
}

func notifyMessage(p MembershipNotifyPayload) string {
	switch p.Event {
	case EventInvited:
		return fmt.Sprintf("You have been invited to join %s", p.CompanyName)
	case EventRequested:
		return fmt.Sprintf("A user requested to join %s", p.CompanyName)
	case EventAccepted:
		return fmt.Sprintf("Your application for %s was accepted", p.CompanyName)
	case EventRejected:
		return fmt.Sprintf("Your application for %s was rejected", p.CompanyName)
	case EventRoleChanged:
		return fmt.Sprintf("Your role in %s changed", p.CompanyName)
	case EventRemoved:
		return fmt.Sprintf("You were removed from %s", p.CompanyName)
	default:
		return fmt.Sprintf("Membership update for %s", p.CompanyName)
	}
}
