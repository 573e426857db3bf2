package tasks_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/quizhub/quizhub/internal/database/models"
	"github.com/quizhub/quizhub/internal/tasks"
	"github.com/quizhub/quizhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleMembershipNotify(t *testing.T) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	user := testutil.CreateTestUser(t, db)
	owner := testutil.CreateTestUser(t, db)
	company := testutil.CreateTestCompany(t, db, owner, false)

	handler := tasks.NewHandler(db, slog.New(slog.NewTextHandler(io.Discard, nil)))

	task, err := tasks.NewMembershipNotifyTask(tasks.MembershipNotifyPayload{
		UserID:      user.ID,
		CompanyID:   company.ID,
		CompanyName: company.Name,
		Event:       tasks.EventAccepted,
	})
	require.NoError(t, err)

	require.NoError(t, handler.HandleMembershipNotify(context.Background(), task))

	var notification models.Notification
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&notification).Error)
	assert.Equal(t, company.ID, notification.CompanyID)
	assert.Equal(t, tasks.EventAccepted, notification.Event)
	assert.Contains(t, notification.Message, company.Name)
	assert.False(t, notification.Read)
}

func TestHandleMembershipNotify_BadPayload(t *testing.T) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	handler := tasks.NewHandler(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	task := asynq.NewTask(tasks.TypeMembershipNotify, []byte("{not json"))

	assert.Error(t, handler.HandleMembershipNotify(context.Background(), task))
}
