package quiz_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/quizhub/quizhub/internal/apperr"
	"github.com/quizhub/quizhub/internal/database/models"
	"github.com/quizhub/quizhub/internal/membership"
	"github.com/quizhub/quizhub/internal/quiz"
	"github.com/quizhub/quizhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	svc      *quiz.Service
	db       *gorm.DB
	owner    *models.User
	admin    *models.User
	member   *models.User
	stranger *models.User
	company  *models.Company
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ms := membership.NewService(db, nil, logger)

	f := &fixture{
		svc:      quiz.NewService(db, ms, logger),
		db:       db,
		owner:    testutil.CreateTestUser(t, db),
		admin:    testutil.CreateTestUser(t, db),
		member:   testutil.CreateTestUser(t, db),
		stranger: testutil.CreateTestUser(t, db),
	}
	f.company = testutil.CreateTestCompany(t, db, f.owner, false)
	testutil.AddTestMember(t, db, f.admin, f.company, models.RoleAdmin)
	testutil.AddTestMember(t, db, f.member, f.company, models.RoleMember)
	return f
}

func sampleInput() quiz.CreateInput {
	return quiz.CreateInput{
		Name:      "Safety basics",
		Frequency: 7,
		Questions: []quiz.QuestionInput{
			{Text: "Fire exit?", Answers: []string{"left", "right"}, RightAnswer: "left"},
			{Text: "Alarm code?", Answers: []string{"111", "112", "113"}, RightAnswer: "112"},
		},
	}
}

func TestCreateQuiz(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, testutil.Caller(f.admin), f.company.ID, sampleInput())
	require.NoError(t, err)
	assert.Equal(t, f.company.ID, created.CompanyID)
	assert.Len(t, created.Questions, 2)

	var count int64
	f.db.Model(&models.Question{}).Where("quiz_id = ?", created.ID).Count(&count)
	assert.Equal(t, int64(2), count)

	t.Run("member cannot create", func(t *testing.T) {
		_, err := f.svc.Create(ctx, testutil.Caller(f.member), f.company.ID, sampleInput())
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("nonexistent company", func(t *testing.T) {
		_, err := f.svc.Create(ctx, testutil.Caller(f.admin), uuid.New(), sampleInput())
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestGetQuiz(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, testutil.Caller(f.owner), f.company.ID, sampleInput())
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, testutil.Caller(f.member), created.ID)
	require.NoError(t, err)
	assert.Len(t, got.Questions, 2)

	_, err = f.svc.Get(ctx, testutil.Caller(f.stranger), created.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.svc.Get(ctx, testutil.Caller(f.member), uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListByCompany(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, testutil.Caller(f.admin), f.company.ID, sampleInput())
	require.NoError(t, err)
	second := sampleInput()
	second.Name = "Compliance"
	_, err = f.svc.Create(ctx, testutil.Caller(f.admin), f.company.ID, second)
	require.NoError(t, err)

	quizzes, err := f.svc.ListByCompany(ctx, testutil.Caller(f.member), f.company.ID)
	require.NoError(t, err)
	assert.Len(t, quizzes, 2)

	_, err = f.svc.ListByCompany(ctx, testutil.Caller(f.stranger), f.company.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestUpdateQuiz(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, testutil.Caller(f.admin), f.company.ID, sampleInput())
	require.NoError(t, err)

	name := "Renamed"
	freq := 30
	updated, err := f.svc.Update(ctx, testutil.Caller(f.admin), created.ID, quiz.UpdateInput{
		Name:      &name,
		Frequency: &freq,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, 30, updated.Frequency)

	_, err = f.svc.Update(ctx, testutil.Caller(f.member), created.ID, quiz.UpdateInput{Name: &name})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestDeleteQuiz(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, testutil.Caller(f.admin), f.company.ID, sampleInput())
	require.NoError(t, err)

	err = f.svc.Delete(ctx, testutil.Caller(f.member), created.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	require.NoError(t, f.svc.Delete(ctx, testutil.Caller(f.admin), created.ID))

	var quizzes, questions int64
	f.db.Model(&models.Quiz{}).Count(&quizzes)
	f.db.Model(&models.Question{}).Count(&questions)
	assert.Equal(t, int64(0), quizzes)
	assert.Equal(t, int64(0), questions)
}

func TestQuestions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, testutil.Caller(f.admin), f.company.ID, sampleInput())
	require.NoError(t, err)

	question, err := f.svc.AddQuestion(ctx, testutil.Caller(f.admin), created.ID, quiz.QuestionInput{
		Text:        "Extinguisher color?",
		Answers:     []string{"red", "blue"},
		RightAnswer: "red",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, question.QuizID)

	_, err = f.svc.AddQuestion(ctx, testutil.Caller(f.member), created.ID, quiz.QuestionInput{
		Text:        "x",
		Answers:     []string{"a", "b"},
		RightAnswer: "a",
	})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	err = f.svc.DeleteQuestion(ctx, testutil.Caller(f.member), question.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	require.NoError(t, f.svc.DeleteQuestion(ctx, testutil.Caller(f.admin), question.ID))

	err = f.svc.DeleteQuestion(ctx, testutil.Caller(f.admin), question.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
