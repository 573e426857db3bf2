package membership_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/quizhub/quizhub/internal/apperr"
	"github.com/quizhub/quizhub/internal/database/models"
	"github.com/quizhub/quizhub/internal/membership"
	"github.com/quizhub/quizhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*membership.Service, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return membership.NewService(db, nil, logger), db
}

func TestApply_RequestFlow(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	owner := testutil.CreateTestUser(t, db)
	applicant := testutil.CreateTestUser(t, db)
	company := testutil.CreateTestCompany(t, db, owner, false)

	app, err := svc.Apply(ctx, testutil.Caller(applicant), membership.ApplicationInput{
		CompanyID: company.ID,
		Type:      models.ApplicationRequest,
	})
	require.NoError(t, err)
	assert.Equal(t, applicant.ID, app.UserID)
	assert.Equal(t, models.ApplicationRequest, app.Type)

	// Owner accepts the request
	member, err := svc.Accept(ctx, testutil.Caller(owner), app.ID)
	require.NoError(t, err)
	assert.Equal(t, applicant.ID, member.UserID)
	assert.Equal(t, models.RoleMember, member.Role)

	// Ledger row is gone, exactly one roster row exists
	var appCount, memberCount int64
	db.Model(&models.MembershipApplication{}).
		Where("user_id = ? AND company_id = ?", applicant.ID, company.ID).
		Count(&appCount)
	db.Model(&models.Member{}).
		Where("user_id = ? AND company_id = ?", applicant.ID, company.ID).
		Count(&memberCount)
	assert.Equal(t, int64(0), appCount)
	assert.Equal(t, int64(1), memberCount)
}

func TestApply_InviteFlow(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	owner := testutil.CreateTestUser(t, db)
	invited := testutil.CreateTestUser(t, db)
	company := testutil.CreateTestCompany(t, db, owner, false)

	app, err := svc.Apply(ctx, testutil.Caller(owner), membership.ApplicationInput{
		UserID:    invited.ID,
		CompanyID: company.ID,
		Type:      models.ApplicationInvite,
	})
	require.NoError(t, err)
	assert.Equal(t, invited.ID, app.UserID)

	// Only the invited user can accept
	_, err = svc.Accept(ctx, testutil.Caller(owner), app.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	member, err := svc.Accept(ctx, testutil.Caller(invited), app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, member.Role)
}

func TestApply_TypeLegality(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	owner := testutil.CreateTestUser(t, db)
	stranger := testutil.CreateTestUser(t, db)
	target := testutil.CreateTestUser(t, db)
	company := testutil.CreateTestCompany(t, db, owner, false)

	t.Run("invite requires admin", func(t *testing.T) {
		_, err := svc.Apply(ctx, testutil.Caller(stranger), membership.ApplicationInput{
			UserID:    target.ID,
			CompanyID: company.ID,
			Type:      models.ApplicationInvite,
		})
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("admin can invite", func(t *testing.T) {
		admin := testutil.CreateTestUser(t, db)
		testutil.AddTestMember(t, db, admin, company, models.RoleAdmin)

		_, err := svc.Apply(ctx, testutil.Caller(admin), membership.ApplicationInput{
			UserID:    target.ID,
			CompanyID: company.ID,
			Type:      models.ApplicationInvite,
		})
		assert.NoError(t, err)
	})

	t.Run("cannot invite yourself", func(t *testing.T) {
		_, err := svc.Apply(ctx, testutil.Caller(owner), membership.ApplicationInput{
			UserID:    owner.ID,
			CompanyID: company.ID,
			Type:      models.ApplicationInvite,
		})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("request for someone else is forbidden", func(t *testing.T) {
		_, err := svc.Apply(ctx, testutil.Caller(stranger), membership.ApplicationInput{
			UserID:    target.ID,
			CompanyID: company.ID,
			Type:      models.ApplicationRequest,
		})
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("owner request reads as already a member", func(t *testing.T) {
		_, err := svc.Apply(ctx, testutil.Caller(owner), membership.ApplicationInput{
			CompanyID: company.ID,
			Type:      models.ApplicationRequest,
		})
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("nonexistent company", func(t *testing.T) {
		_, err := svc.Apply(ctx, testutil.Caller(stranger), membership.ApplicationInput{
			CompanyID: uuid.New(),
			Type:      models.ApplicationRequest,
		})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("invalid type", func(t *testing.T) {
		_, err := svc.Apply(ctx, testutil.Caller(stranger), membership.ApplicationInput{
			CompanyID: company.ID,
			Type:      models.ApplicationType("sponsor"),
		})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestApply_DuplicateApplication(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	owner := testutil.CreateTestUser(t, db)
	applicant := testutil.CreateTestUser(t, db)
	company := testutil.CreateTestCompany(t, db, owner, false)

	input := membership.ApplicationInput{
		CompanyID: company.ID,
		Type:      models.ApplicationRequest,
	}
	_, err := svc.Apply(ctx, testutil.Caller(applicant), input)
	require.NoError(t, err)

	_, err = svc.Apply(ctx, testutil.Caller(applicant), input)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// An invite for the same pair is a different ledger key and still allowed
	_, err = svc.Apply(ctx, testutil.Caller(owner), membership.ApplicationInput{
		UserID:    applicant.ID,
		CompanyID: company.ID,
		Type:      models.ApplicationInvite,
	})
	assert.NoError(t, err)
}

func TestAccept_Race(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	owner := testutil.CreateTestUser(t, db)
	applicant := testutil.CreateTestUser(t, db)
	company := testutil.CreateTestCompany(t, db, owner, false)

	app, err := svc.Apply(ctx, testutil.Caller(applicant), membership.ApplicationInput{
		CompanyID: company.ID,
		Type:      models.ApplicationRequest,
	})
	require.NoError(t, err)

	// Simulate a racing accept that already inserted the roster row
	testutil.AddTestMember(t, db, applicant, company, models.RoleMember)

	_, err = svc.Accept(ctx, testutil.Caller(owner), app.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// The stale ledger row was purged as cleanup
	var count int64
	db.Model(&models.MembershipApplication{}).Where("id = ?", app.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestAccept_RequestNeedsAdmin(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	owner := testutil.CreateTestUser(t, db)
	applicant := testutil.CreateTestUser(t, db)
	company := testutil.CreateTestCompany(t, db, owner, false)

	app, err := svc.Apply(ctx, testutil.Caller(applicant), membership.ApplicationInput{
		CompanyID: company.ID,
		Type:      models.ApplicationRequest,
	})
	require.NoError(t, err)

	// The applicant cannot accept their own request
	_, err = svc.Accept(ctx, testutil.Caller(applicant), app.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.Accept(ctx, testutil.Caller(owner), app.ID)
	assert.NoError(t, err)
}

func TestAccept_NotFound(t *testing.T) {
	svc, db := newTestService(t)
	owner := testutil.CreateTestUser(t, db)

	_, err := svc.Accept(context.Background(), testutil.Caller(owner), uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestReject(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	owner := testutil.CreateTestUser(t, db)
	applicant := testutil.CreateTestUser(t, db)
	stranger := testutil.CreateTestUser(t, db)
	company := testutil.CreateTestCompany(t, db, owner, false)

	newRequest := func() uuid.UUID {
		app, err := svc.Apply(ctx, testutil.Caller(applicant), membership.ApplicationInput{
			CompanyID: company.ID,
			Type:      models.ApplicationRequest,
		})
		require.NoError(t, err)
		return app.ID
	}

	t.Run("stranger cannot reject", func(t *testing.T) {
		id := newRequest()
		err := svc.Reject(ctx, testutil.Caller(stranger), id)
		assert.ErrorIs(t, err, apperr.ErrForbidden)

		// Applicant can withdraw their own request
		assert.NoError(t, svc.Reject(ctx, testutil.Caller(applicant), id))
	})

	t.Run("owner can decline", func(t *testing.T) {
		id := newRequest()
		assert.NoError(t, svc.Reject(ctx, testutil.Caller(owner), id))
	})

	t.Run("missing row", func(t *testing.T) {
		err := svc.Reject(ctx, testutil.Caller(owner), uuid.New())
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestRoleHierarchy(t *testing.T) {
	assert.True(t, models.RoleOwner.AtLeast(models.RoleAdmin))
	assert.True(t, models.RoleOwner.AtLeast(models.RoleMember))
	assert.True(t, models.RoleAdmin.AtLeast(models.RoleMember))
	assert.False(t, models.RoleAdmin.AtLeast(models.RoleOwner))
	assert.False(t, models.RoleMember.AtLeast(models.RoleAdmin))
	assert.False(t, models.RoleNone.AtLeast(models.RoleMember))
	assert.True(t, models.RoleNone.AtLeast(models.RoleNone))
}

func TestRoleOf(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	owner := testutil.CreateTestUser(t, db)
	member := testutil.CreateTestUser(t, db)
	stranger := testutil.CreateTestUser(t, db)
	company := testutil.CreateTestCompany(t, db, owner, false)
	testutil.AddTestMember(t, db, member, company, models.RoleMember)

	role, err := svc.RoleOf(ctx, owner.ID, company.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, role)

	role, err = svc.RoleOf(ctx, member.ID, company.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, role)

	role, err = svc.RoleOf(ctx, stranger.ID, company.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleNone, role)
}

func TestUpdateRole(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	owner := testutil.CreateTestUser(t, db)
	member := testutil.CreateTestUser(t, db)
	admin := testutil.CreateTestUser(t, db)
	company := testutil.CreateTestCompany(t, db, owner, false)
	testutil.AddTestMember(t, db, member, company, models.RoleMember)
	testutil.AddTestMember(t, db, admin, company, models.RoleAdmin)

	t.Run("owner promotes member", func(t *testing.T) {
		updated, err := svc.UpdateRole(ctx, testutil.Caller(owner), company.ID, member.ID, models.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, updated.Role)

		// And demotes again
		updated, err = svc.UpdateRole(ctx, testutil.Caller(owner), company.ID, member.ID, models.RoleMember)
		require.NoError(t, err)
		assert.Equal(t, models.RoleMember, updated.Role)
	})

	t.Run("admin cannot change roles", func(t *testing.T) {
		_, err := svc.UpdateRole(ctx, testutil.Caller(admin), company.ID, member.ID, models.RoleAdmin)
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("owner row is immutable", func(t *testing.T) {
		_, err := svc.UpdateRole(ctx, testutil.Caller(owner), company.ID, owner.ID, models.RoleMember)
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("owner role cannot be granted", func(t *testing.T) {
		_, err := svc.UpdateRole(ctx, testutil.Caller(owner), company.ID, member.ID, models.RoleOwner)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("missing member", func(t *testing.T) {
		outsider := testutil.CreateTestUser(t, db)
		_, err := svc.UpdateRole(ctx, testutil.Caller(owner), company.ID, outsider.ID, models.RoleAdmin)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestRemoveMember(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	owner := testutil.CreateTestUser(t, db)
	company := testutil.CreateTestCompany(t, db, owner, false)

	t.Run("self leave", func(t *testing.T) {
		user := testutil.CreateTestUser(t, db)
		m := testutil.AddTestMember(t, db, user, company, models.RoleMember)

		require.NoError(t, svc.RemoveMember(ctx, testutil.Caller(user), m.ID))

		role, err := svc.RoleOf(ctx, user.ID, company.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoleNone, role)
	})

	t.Run("owner removes member", func(t *testing.T) {
		user := testutil.CreateTestUser(t, db)
		m := testutil.AddTestMember(t, db, user, company, models.RoleMember)

		assert.NoError(t, svc.RemoveMember(ctx, testutil.Caller(owner), m.ID))
	})

	t.Run("stranger cannot remove", func(t *testing.T) {
		user := testutil.CreateTestUser(t, db)
		stranger := testutil.CreateTestUser(t, db)
		m := testutil.AddTestMember(t, db, user, company, models.RoleMember)

		err := svc.RemoveMember(ctx, testutil.Caller(stranger), m.ID)
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("owner row cannot be removed", func(t *testing.T) {
		var ownerRow models.Member
		require.NoError(t, db.Where("user_id = ? AND company_id = ?", owner.ID, company.ID).First(&ownerRow).Error)

		err := svc.RemoveMember(ctx, testutil.Caller(owner), ownerRow.ID)
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("missing member", func(t *testing.T) {
		err := svc.RemoveMember(ctx, testutil.Caller(owner), uuid.New())
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestList(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	owner := testutil.CreateTestUser(t, db)
	applicant := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	super := testutil.CreateTestSuperuser(t, db)
	company := testutil.CreateTestCompany(t, db, owner, false)
	otherCompany := testutil.CreateTestCompany(t, db, other, false)

	_, err := svc.Apply(ctx, testutil.Caller(applicant), membership.ApplicationInput{
		CompanyID: company.ID,
		Type:      models.ApplicationRequest,
	})
	require.NoError(t, err)
	_, err = svc.Apply(ctx, testutil.Caller(applicant), membership.ApplicationInput{
		CompanyID: otherCompany.ID,
		Type:      models.ApplicationRequest,
	})
	require.NoError(t, err)
	_, err = svc.Apply(ctx, testutil.Caller(owner), membership.ApplicationInput{
		UserID:    other.ID,
		CompanyID: company.ID,
		Type:      models.ApplicationInvite,
	})
	require.NoError(t, err)

	t.Run("unfiltered requires superuser", func(t *testing.T) {
		_, err := svc.List(ctx, testutil.Caller(applicant), membership.Query{})
		assert.ErrorIs(t, err, apperr.ErrForbidden)

		all, err := svc.List(ctx, testutil.Caller(super), membership.Query{})
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("company filter requires admin", func(t *testing.T) {
		apps, err := svc.List(ctx, testutil.Caller(owner), membership.Query{
			Type:      models.ApplicationRequest,
			CompanyID: company.ID,
		})
		require.NoError(t, err)
		assert.Len(t, apps, 1)

		_, err = svc.List(ctx, testutil.Caller(applicant), membership.Query{
			Type:      models.ApplicationRequest,
			CompanyID: company.ID,
		})
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("own applications by type", func(t *testing.T) {
		apps, err := svc.List(ctx, testutil.Caller(applicant), membership.Query{
			Type: models.ApplicationRequest,
		})
		require.NoError(t, err)
		assert.Len(t, apps, 2)

		invites, err := svc.List(ctx, testutil.Caller(other), membership.Query{
			Type: models.ApplicationInvite,
		})
		require.NoError(t, err)
		assert.Len(t, invites, 1)
	})

	t.Run("company filter without type", func(t *testing.T) {
		_, err := svc.List(ctx, testutil.Caller(owner), membership.Query{
			CompanyID: company.ID,
		})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestListMembers(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	owner := testutil.CreateTestUser(t, db)
	member := testutil.CreateTestUser(t, db)
	stranger := testutil.CreateTestUser(t, db)
	company := testutil.CreateTestCompany(t, db, owner, false)
	testutil.AddTestMember(t, db, member, company, models.RoleMember)

	members, err := svc.ListMembers(ctx, testutil.Caller(member), company.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	_, err = svc.ListMembers(ctx, testutil.Caller(stranger), company.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.ListMembers(ctx, testutil.Caller(owner), uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
