package service_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "edulist/internal/errors"
	"edulist/internal/model"
	"edulist/internal/repository"
	"edulist/internal/service"
)

func TestUser_DeleteCascadesOwnedData(t *testing.T) {
	f := newFixture(t)
	inst := f.institute(model.StatusApproved)
	courses := service.NewCourseService(f.store)
	owner := service.Actor{ID: inst.UserID, Role: model.RoleInstitute}
	_, err := courses.Create(f.ctx, owner, service.CourseInput{Title: "Grade 10"})
	require.NoError(t, err)
	f.review(inst.ID, 5, model.StatusApproved)

	// the owner's review of another institute is removed and its rating recomputed
	other := f.institute(model.StatusApproved)
	require.NoError(t, f.store.Reviews().Create(f.ctx, &model.Review{
		UserID: inst.UserID, InstituteID: other.ID, Rating: 1, Status: model.StatusApproved, IsActive: true,
	}))
	f.review(other.ID, 5, model.StatusApproved)
	require.NoError(t, f.store.Institutes().UpdateRating(f.ctx, other.ID, 3, 2))

	c := newRecordingCache()
	svc := service.NewUserService(f.store, c, nil)
	require.NoError(t, svc.DeleteUser(f.ctx, adminActor, inst.UserID))

	_, err = f.store.Users().FindByID(f.ctx, inst.UserID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = f.store.Institutes().FindByID(f.ctx, inst.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	n, err := f.store.Courses().CountByInstitute(f.ctx, inst.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = f.store.Reviews().Count(f.ctx, repository.ReviewFilter{InstituteID: inst.ID})
	require.NoError(t, err)
	assert.Zero(t, n)

	got := f.reloadInstitute(other.ID)
	assert.Equal(t, 5.0, got.Rating)
	assert.Equal(t, 1, got.ReviewCount)
	assert.Equal(t, 1, c.deletions())
}

func TestUser_DeleteRollsBackOnFailure(t *testing.T) {
	f := newFixture(t)
	inst := f.institute(model.StatusApproved)
	svc := service.NewUserService(f.store, nil, nil)

	f.store.FailOn("users.Delete", errors.New("lock wait timeout"))
	assert.Error(t, svc.DeleteUser(f.ctx, adminActor, inst.UserID))

	f.reloadUser(inst.UserID)
	f.reloadInstitute(inst.ID)
}

func TestUser_DeleteRules(t *testing.T) {
	f := newFixture(t)
	u := f.user(model.RoleUser, model.StatusApproved)
	svc := service.NewUserService(f.store, nil, nil)

	assert.ErrorIs(t, svc.DeleteUser(f.ctx, actorOf(u), u.ID), apperrors.ErrForbidden)
	assert.ErrorIs(t, svc.DeleteUser(f.ctx, adminActor, adminActor.ID), apperrors.ErrValidation)
}

func TestUser_ProfileAndListing(t *testing.T) {
	f := newFixture(t)
	inst := f.institute(model.StatusPending)
	f.user(model.RoleUser, model.StatusApproved)
	svc := service.NewUserService(f.store, nil, nil)
	owner := service.Actor{ID: inst.UserID, Role: model.RoleInstitute}

	profile, err := svc.GetProfile(f.ctx, owner)
	require.NoError(t, err)
	require.NotNil(t, profile.Institute)
	assert.Equal(t, inst.ID, profile.Institute.ID)

	updated, err := svc.UpdateProfile(f.ctx, owner, " New Name ", "123")
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, model.StatusPending, updated.Status)

	_, err = svc.UpdateProfile(f.ctx, owner, " ", "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	pending, err := svc.ListUsers(f.ctx, adminActor, "", "pending")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
	_, err = svc.ListUsers(f.ctx, adminActor, "wizard", "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
