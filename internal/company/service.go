// Package company manages the company registry: creation with the
// implicit owner roster row, visibility-aware reads, and owner-gated
// mutation including the explicit cascade delete.
package company

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/quizhub/quizhub/internal/apperr"
	"github.com/quizhub/quizhub/internal/database/models"
	"github.com/quizhub/quizhub/internal/membership"
	"gorm.io/gorm"
)

type Service struct {
	db         *gorm.DB
	membership *membership.Service
	logger     *slog.Logger
}

func NewService(db *gorm.DB, membershipService *membership.Service, logger *slog.Logger) *Service {
	return &Service{db: db, membership: membershipService, logger: logger}
}

type CreateInput struct {
	Name        string
	Description string
	IsPrivate   bool
}

type UpdateInput struct {
	Name        *string
	Description *string
	IsPrivate   *bool
}

// Create inserts the company and the owner's roster row in one
// transaction, so a company never exists without its owner member.
func (s *Service) Create(ctx context.Context, caller models.Caller, input CreateInput) (*models.Company, error) {
	company := models.Company{
		Name:        input.Name,
		Description: input.Description,
		IsPrivate:   input.IsPrivate,
		OwnerID:     caller.ID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&company).Error; err != nil {
			return err
		}
		owner := models.Member{
			UserID:    caller.ID,
			CompanyID: company.ID,
			Role:      models.RoleOwner,
		}
		return tx.Create(&owner).Error
	})
	if err != nil {
		return nil, apperr.FromStore(err, "company")
	}

	return &company, nil
}

// Get returns a company. Private companies are only visible to their
// members and superusers; existence is checked first, so probing a
// nonexistent id yields NotFound rather than Forbidden.
func (s *Service) Get(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.Company, error) {
	var company models.Company
	if err := s.db.WithContext(ctx).
		Preload("Owner").
		First(&company, "id = ?", id).Error; err != nil {
		return nil, apperr.FromStore(err, "company")
	}

	if company.IsPrivate {
		if err := s.membership.RequireRole(ctx, caller, company.ID, models.RoleMember); err != nil {
			return nil, err
		}
	}
	return &company, nil
}

// List returns all companies visible to the caller: every public one
// plus the private ones the caller belongs to.
func (s *Service) List(ctx context.Context, caller models.Caller) ([]models.Company, error) {
	var companies []models.Company
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&companies).Error; err != nil {
		return nil, err
	}
	if caller.IsSuperuser {
		return companies, nil
	}

	var memberships []models.Member
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", caller.ID).
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	mine := make(map[uuid.UUID]bool, len(memberships))
	for _, m := range memberships {
		mine[m.CompanyID] = true
	}

	visible := companies[:0]
	for _, c := range companies {
		if !c.IsPrivate || mine[c.ID] {
			visible = append(visible, c)
		}
	}
	return visible, nil
}

// ListOwned returns the companies the caller owns.
func (s *Service) ListOwned(ctx context.Context, caller models.Caller) ([]models.Company, error) {
	var companies []models.Company
	if err := s.db.WithContext(ctx).
		Where("owner_id = ?", caller.ID).
		Order("created_at DESC").
		Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

// Update changes name, description or visibility. Owner only.
func (s *Service) Update(ctx context.Context, caller models.Caller, id uuid.UUID, input UpdateInput) (*models.Company, error) {
	var company models.Company
	if err := s.db.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		return nil, apperr.FromStore(err, "company")
	}
	if err := s.membership.RequireRole(ctx, caller, company.ID, models.RoleOwner); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.IsPrivate != nil {
		updates["is_private"] = *input.IsPrivate
	}
	if len(updates) == 0 {
		return &company, nil
	}

	if err := s.db.WithContext(ctx).Model(&company).Updates(updates).Error; err != nil {
		return nil, apperr.FromStore(err, "company")
	}
	return &company, nil
}

// Delete removes the company and everything it owns. The cascade is
// spelled out statement by statement inside one transaction: questions,
// quizzes, roster rows, ledger rows, notifications, then the company.
func (s *Service) Delete(ctx context.Context, caller models.Caller, id uuid.UUID) error {
	var company models.Company
	if err := s.db.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		return apperr.FromStore(err, "company")
	}
	if err := s.membership.RequireRole(ctx, caller, company.ID, models.RoleOwner); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quizIDs := tx.Model(&models.Quiz{}).Select("id").Where("company_id = ?", id)
		if err := tx.Where("quiz_id IN (?)", quizIDs).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Where("company_id = ?", id).Delete(&models.Quiz{}).Error; err != nil {
			return err
		}
		if err := tx.Where("company_id = ?", id).Delete(&models.Member{}).Error; err != nil {
			return err
		}
		if err := tx.Where("company_id = ?", id).Delete(&models.MembershipApplication{}).Error; err != nil {
			return err
		}
		if err := tx.Where("company_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Company{}, "id = ?", id).Error
	})
}
