// Package quiz implements company-owned quizzes and their questions.
// Reads require membership in the owning company, writes require admin.
package quiz

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

type QuestionInput struct {
	Text        string
	Answers     []string
	RightAnswer string
}

type CreateInput struct {
	Name        string
	Description string
	Frequency   int
	Questions   []QuestionInput
}

type UpdateInput struct {
	Name        *string
	Description *string
	Frequency   *int
}

// Create inserts a quiz and its initial questions in one transaction.
// Question payloads are validated at the DTO layer before this runs.
func (s *Service) Create(ctx context.Context, caller models.Caller, companyID uuid.UUID, input CreateInput) (*models.Quiz, error) {
	if err := s.requireCompanyRole(ctx, caller, companyID, models.RoleAdmin); err != nil {
		return nil, err
	}

	quiz := models.Quiz{
		Name:        input.Name,
		Description: input.Description,
		Frequency:   input.Frequency,
		CompanyID:   companyID,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&quiz).Error; err != nil {
			return err
		}
		for _, q := range input.Questions {
			question := models.Question{
				QuizID:      quiz.ID,
				Text:        q.Text,
				Answers:     models.StringList(q.Answers),
				RightAnswer: q.RightAnswer,
			}
			if err := tx.Create(&question).Error; err != nil {
				return err
			}
			quiz.Questions = append(quiz.Questions, question)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.FromStore(err, "quiz")
	}
	return &quiz, nil
}

// Get returns a quiz with its questions.
func (s *Service) Get(ctx context.Context, caller models.Caller, quizID uuid.UUID) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := s.db.WithContext(ctx).
		Preload("Questions").
		First(&quiz, "id = ?", quizID).Error; err != nil {
		return nil, apperr.FromStore(err, "quiz")
	}
	if err := s.membership.RequireRole(ctx, caller, quiz.CompanyID, models.RoleMember); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// ListByCompany returns all quizzes of a company, newest first.
func (s *Service) ListByCompany(ctx context.Context, caller models.Caller, companyID uuid.UUID) ([]models.Quiz, error) {
	if err := s.requireCompanyRole(ctx, caller, companyID, models.RoleMember); err != nil {
		return nil, err
	}

	var quizzes []models.Quiz
	if err := s.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&quizzes).Error; err != nil {
		return nil, err
	}
	return quizzes, nil
}

// Update changes quiz metadata. Admin only.
func (s *Service) Update(ctx context.Context, caller models.Caller, quizID uuid.UUID, input UpdateInput) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := s.db.WithContext(ctx).First(&quiz, "id = ?", quizID).Error; err != nil {
		return nil, apperr.FromStore(err, "quiz")
	}
	if err := s.membership.RequireRole(ctx, caller, quiz.CompanyID, models.RoleAdmin); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Frequency != nil {
		updates["frequency"] = *input.Frequency
	}
	if len(updates) == 0 {
		return &quiz, nil
	}

	if err := s.db.WithContext(ctx).Model(&quiz).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

// Delete removes a quiz and its questions in one transaction. Admin only.
func (s *Service) Delete(ctx context.Context, caller models.Caller, quizID uuid.UUID) error {
	var quiz models.Quiz
	if err := s.db.WithContext(ctx).First(&quiz, "id = ?", quizID).Error; err != nil {
		return apperr.FromStore(err, "quiz")
	}
	if err := s.membership.RequireRole(ctx, caller, quiz.CompanyID, models.RoleAdmin); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", quiz.ID).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Quiz{}, "id = ?", quiz.ID).Error
	})
}

// AddQuestion appends a question to an existing quiz. Admin only.
func (s *Service) AddQuestion(ctx context.Context, caller models.Caller, quizID uuid.UUID, input QuestionInput) (*models.Question, error) {
	var quiz models.Quiz
	if err := s.db.WithContext(ctx).First(&quiz, "id = ?", quizID).Error; err != nil {
		return nil, apperr.FromStore(err, "quiz")
	}
	if err := s.membership.RequireRole(ctx, caller, quiz.CompanyID, models.RoleAdmin); err != nil {
		return nil, err
	}

	question := models.Question{
		QuizID:      quiz.ID,
		Text:        input.Text,
		Answers:     models.StringList(input.Answers),
		RightAnswer: input.RightAnswer,
	}
	if err := s.db.WithContext(ctx).Create(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

// DeleteQuestion removes a single question. Admin only.
func (s *Service) DeleteQuestion(ctx context.Context, caller models.Caller, questionID uuid.UUID) error {
	var question models.Question
	if err := s.db.WithContext(ctx).First(&question, "id = ?", questionID).Error; err != nil {
		return apperr.FromStore(err, "question")
	}

	var quiz models.Quiz
	if err := s.db.WithContext(ctx).First(&quiz, "id = ?", question.QuizID).Error; err != nil {
		return apperr.FromStore(err, "quiz")
	}
	if err := s.membership.RequireRole(ctx, caller, quiz.CompanyID, models.RoleAdmin); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Delete(&models.Question{}, "id = ?", question.ID).Error
}

// requireCompanyRole checks existence before authorization so that a
// nonexistent company id reads as NotFound, not Forbidden.
func (s *Service) requireCompanyRole(ctx context.Context, caller models.Caller, companyID uuid.UUID, min models.Role) error {
	var company models.Company
	if err := s.db.WithContext(ctx).First(&company, "id = ?", companyID).Error; err != nil {
		return apperr.FromStore(err, "company")
	}
	return s.membership.RequireRole(ctx, caller, companyID, min)
}
