// Package membership implements the application ledger and member roster:
// how users join companies, which role they hold, and the authorization
// gate every company-scoped operation goes through.
package membership

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/quizhub/quizhub/internal/apperr"
	"github.com/quizhub/quizhub/internal/database/models"
	"github.com/quizhub/quizhub/internal/tasks"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	queue  *asynq.Client // nil disables notifications
	logger *slog.Logger
}

func NewService(db *gorm.DB, queue *asynq.Client, logger *slog.Logger) *Service {
	return &Service{db: db, queue: queue, logger: logger}
}

// ApplicationInput is the payload for creating a ledger entry. UserID is
// the invited user for invites; for requests the applicant is always the
// caller and UserID, if set, must match.
type ApplicationInput struct {
	UserID    uuid.UUID
	CompanyID uuid.UUID
	Type      models.ApplicationType
}

// Query filters ledger listings. Zero CompanyID means "my applications"
// of the given type; an empty query lists everything (superuser only).
type Query struct {
	Type      models.ApplicationType
	CompanyID uuid.UUID
}

// RoleOf resolves the caller's effective role for a company from the
// roster. No row means RoleNone.
func (s *Service) RoleOf(ctx context.Context, userID, companyID uuid.UUID) (models.Role, error) {
	var member models.Member
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND company_id = ?", userID, companyID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RoleNone, nil
		}
		return models.RoleNone, err
	}
	return member.Role, nil
}

// RequireRole enforces the minimum role for an operation on a company.
// Superusers pass every gate. Existence of the company must already have
// been checked by the caller; this only answers the authorization question.
func (s *Service) RequireRole(ctx context.Context, caller models.Caller, companyID uuid.UUID, min models.Role) error {
	if caller.IsSuperuser {
		return nil
	}
	role, err := s.RoleOf(ctx, caller.ID, companyID)
	if err != nil {
		return err
	}
	if !role.AtLeast(min) {
		return apperr.Forbidden("insufficient role for this company")
	}
	return nil
}

// Apply creates a ledger entry. Preconditions, in order: the company
// exists; the applicant is not already a member; the type-specific
// legality holds; no duplicate (user, company, type) entry exists.
func (s *Service) Apply(ctx context.Context, caller models.Caller, input ApplicationInput) (*models.MembershipApplication, error) {
	if !input.Type.Valid() {
		return nil, apperr.Validation("membership type must be invite or request")
	}

	company, err := s.getCompany(ctx, input.CompanyID)
	if err != nil {
		return nil, err
	}

	applicantID := input.UserID
	switch input.Type {
	case models.ApplicationRequest:
		if input.UserID != uuid.Nil && input.UserID != caller.ID {
			return nil, apperr.Forbidden("requests can only be filed for yourself")
		}
		applicantID = caller.ID
	case models.ApplicationInvite:
		if applicantID == uuid.Nil {
			return nil, apperr.Validation("invite requires a target user")
		}
		if applicantID == caller.ID {
			return nil, apperr.Validation("cannot invite yourself")
		}
		var target models.User
		if err := s.db.WithContext(ctx).First(&target, "id = ?", applicantID).Error; err != nil {
			return nil, apperr.FromStore(err, "user")
		}
	}

	role, err := s.RoleOf(ctx, applicantID, company.ID)
	if err != nil {
		return nil, err
	}
	if role != models.RoleNone {
		return nil, apperr.Conflict("user is already a member of this company")
	}

	if input.Type == models.ApplicationInvite {
		if err := s.RequireRole(ctx, caller, company.ID, models.RoleAdmin); err != nil {
			return nil, err
		}
	}

	application := models.MembershipApplication{
		UserID:    applicantID,
		CompanyID: company.ID,
		Type:      input.Type,
	}
	if err := s.db.WithContext(ctx).Create(&application).Error; err != nil {
		return nil, apperr.FromStore(err, "membership application")
	}

	switch input.Type {
	case models.ApplicationInvite:
		s.notify(ctx, applicantID, company, tasks.EventInvited)
	case models.ApplicationRequest:
		s.notify(ctx, company.OwnerID, company, tasks.EventRequested)
	}

	return &application, nil
}

// Accept converts a ledger entry into a roster row with role member.
// The invited user accepts invites; company owner/admin accepts requests.
// Insert and delete run in one transaction so the ledger and roster never
// both hold a row for the pair. A racing accept loses on the roster's
// unique index and gets Conflict; the stale ledger row is purged.
func (s *Service) Accept(ctx context.Context, caller models.Caller, applicationID uuid.UUID) (*models.Member, error) {
	application, err := s.getApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	company, err := s.getCompany(ctx, application.CompanyID)
	if err != nil {
		return nil, err
	}

	switch application.Type {
	case models.ApplicationInvite:
		if caller.ID != application.UserID {
			return nil, apperr.Forbidden("only the invited user can accept an invite")
		}
	case models.ApplicationRequest:
		if err := s.RequireRole(ctx, caller, company.ID, models.RoleAdmin); err != nil {
			return nil, err
		}
	}

	member := models.Member{
		UserID:    application.UserID,
		CompanyID: application.CompanyID,
		Role:      models.RoleMember,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		return tx.Delete(&models.MembershipApplication{}, "id = ?", application.ID).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race: a member row already exists. The ledger row
			// is stale now, clean it up best-effort.
			if cleanupErr := s.db.WithContext(ctx).
				Delete(&models.MembershipApplication{}, "id = ?", application.ID).Error; cleanupErr != nil {
				s.logger.Warn("failed to purge stale application", "application_id", application.ID, "error", cleanupErr)
			}
			return nil, apperr.Conflict("user is already a member of this company")
		}
		return nil, err
	}

	s.notify(ctx, application.UserID, company, tasks.EventAccepted)

	return &member, nil
}

// Reject deletes a ledger entry. Either party may do it: the applicant
// (withdraw) or the company's owner/admin side (decline).
func (s *Service) Reject(ctx context.Context, caller models.Caller, applicationID uuid.UUID) error {
	application, err := s.getApplication(ctx, applicationID)
	if err != nil {
		return err
	}
	company, err := s.getCompany(ctx, application.CompanyID)
	if err != nil {
		return err
	}

	if caller.ID != application.UserID {
		if err := s.RequireRole(ctx, caller, company.ID, models.RoleAdmin); err != nil {
			return err
		}
	}

	if err := s.db.WithContext(ctx).
		Delete(&models.MembershipApplication{}, "id = ?", application.ID).Error; err != nil {
		return err
	}

	if caller.ID != application.UserID {
		s.notify(ctx, application.UserID, company, tasks.EventRejected)
	}
	return nil
}

// List returns ledger entries matching the query. An empty query means
// everything and is reserved for superusers; (type, company) is for that
// company's owner/admin; type alone is the caller's own applications.
func (s *Service) List(ctx context.Context, caller models.Caller, q Query) ([]models.MembershipApplication, error) {
	db := s.db.WithContext(ctx).Order("created_at DESC")

	if q.Type == "" && q.CompanyID == uuid.Nil {
		if !caller.IsSuperuser {
			return nil, apperr.Forbidden("listing all applications requires superuser")
		}
		var applications []models.MembershipApplication
		if err := db.Find(&applications).Error; err != nil {
			return nil, err
		}
		return applications, nil
	}

	if !q.Type.Valid() {
		return nil, apperr.Validation("membership type must be invite or request")
	}

	if q.CompanyID != uuid.Nil {
		company, err := s.getCompany(ctx, q.CompanyID)
		if err != nil {
			return nil, err
		}
		if err := s.RequireRole(ctx, caller, company.ID, models.RoleAdmin); err != nil {
			return nil, err
		}
		var applications []models.MembershipApplication
		if err := db.Where("company_id = ? AND type = ?", company.ID, q.Type).
			Find(&applications).Error; err != nil {
			return nil, err
		}
		return applications, nil
	}

	var applications []models.MembershipApplication
	if err := db.Where("user_id = ? AND type = ?", caller.ID, q.Type).
		Find(&applications).Error; err != nil {
		return nil, err
	}
	return applications, nil
}

// ListMembers returns the roster of a company. Requires membership.
func (s *Service) ListMembers(ctx context.Context, caller models.Caller, companyID uuid.UUID) ([]models.Member, error) {
	company, err := s.getCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if err := s.RequireRole(ctx, caller, company.ID, models.RoleMember); err != nil {
		return nil, err
	}

	var members []models.Member
	if err := s.db.WithContext(ctx).
		Preload("User").
		Where("company_id = ?", company.ID).
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// UpdateRole toggles a member between member and admin. Owner only, and
// never against the owner's own row.
func (s *Service) UpdateRole(ctx context.Context, caller models.Caller, companyID, targetUserID uuid.UUID, newRole models.Role) (*models.Member, error) {
	if newRole != models.RoleMember && newRole != models.RoleAdmin {
		return nil, apperr.Validation("role must be member or admin")
	}

	company, err := s.getCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	var member models.Member
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND company_id = ?", targetUserID, company.ID).
		First(&member).Error; err != nil {
		return nil, apperr.FromStore(err, "member")
	}

	if member.Role == models.RoleOwner {
		return nil, apperr.Forbidden("the owner's role cannot be changed")
	}
	if err := s.RequireRole(ctx, caller, company.ID, models.RoleOwner); err != nil {
		return nil, err
	}
	if member.Role == newRole {
		return &member, nil
	}

	if err := s.db.WithContext(ctx).Model(&member).Update("role", newRole).Error; err != nil {
		return nil, err
	}
	member.Role = newRole

	s.notify(ctx, member.UserID, company, tasks.EventRoleChanged)

	return &member, nil
}

// RemoveMember deletes a roster row: the member leaving on their own, or
// the owner removing them. The owner row itself is untouchable here; it
// only goes away with the company.
func (s *Service) RemoveMember(ctx context.Context, caller models.Caller, memberID uuid.UUID) error {
	var member models.Member
	if err := s.db.WithContext(ctx).First(&member, "id = ?", memberID).Error; err != nil {
		return apperr.FromStore(err, "member")
	}
	company, err := s.getCompany(ctx, member.CompanyID)
	if err != nil {
		return err
	}

	if member.Role == models.RoleOwner {
		return apperr.Forbidden("the owner cannot be removed from their company")
	}
	if caller.ID != member.UserID {
		if err := s.RequireRole(ctx, caller, company.ID, models.RoleOwner); err != nil {
			return err
		}
	}

	if err := s.db.WithContext(ctx).Delete(&models.Member{}, "id = ?", member.ID).Error; err != nil {
		return err
	}

	if caller.ID != member.UserID {
		s.notify(ctx, member.UserID, company, tasks.EventRemoved)
	}
	return nil
}

func (s *Service) getCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	if id == uuid.Nil {
		return nil, apperr.Validation("company id is required")
	}
	var company models.Company
	if err := s.db.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		return nil, apperr.FromStore(err, "company")
	}
	return &company, nil
}

func (s *Service) getApplication(ctx context.Context, id uuid.UUID) (*models.MembershipApplication, error) {
	var application models.MembershipApplication
	if err := s.db.WithContext(ctx).First(&application, "id = ?", id).Error; err != nil {
		return nil, apperr.FromStore(err, "membership application")
	}
	return &application, nil
}

// notify enqueues a membership notification. Delivery is best-effort:
// a full queue or missing redis never fails the request.
func (s *Service) notify(ctx context.Context, userID uuid.UUID, company *models.Company, event string) {
	if s.queue == nil {
		return
	}
	task, err := tasks.NewMembershipNotifyTask(tasks.MembershipNotifyPayload{
		UserID:      userID,
		CompanyID:   company.ID,
		CompanyName: company.Name,
		Event:       event,
	})
	if err != nil {
		s.logger.Warn("failed to build notify task", "error", err)
		return
	}
	if _, err := s.queue.EnqueueContext(ctx, task); err != nil {
		s.logger.Warn("failed to enqueue notify task", "event", event, "error", err)
	}
}
