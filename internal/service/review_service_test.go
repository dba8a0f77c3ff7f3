package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "edulist/internal/errors"
	"edulist/internal/model"
	"edulist/internal/service"
	"edulist/internal/workflow"
)

func TestReview_CreateIsPendingAndUnique(t *testing.T) {
	f := newFixture(t)
	inst := f.institute(model.StatusApproved)
	author := actorOf(f.user(model.RoleUser, model.StatusApproved))
	svc := service.NewReviewService(f.store, nil, nil)

	review, err := svc.Create(f.ctx, author, service.ReviewInput{InstituteID: inst.ID, Rating: 4, Text: " good "})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, review.Status)
	assert.Equal(t, "good", review.Text)

	_, err = svc.Create(f.ctx, author, service.ReviewInput{InstituteID: inst.ID, Rating: 5})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateEntity)
}

func TestReview_CreateRules(t *testing.T) {
	f := newFixture(t)
	approved := f.institute(model.StatusApproved)
	pending := f.institute(model.StatusPending)
	author := actorOf(f.user(model.RoleUser, model.StatusApproved))
	svc := service.NewReviewService(f.store, nil, nil)

	tests := []struct {
		name  string
		actor service.Actor
		in    service.ReviewInput
		want  error
	}{
		{"rating too high", author, service.ReviewInput{InstituteID: approved.ID, Rating: 6}, apperrors.ErrValidation},
		{"rating zero", author, service.ReviewInput{InstituteID: approved.ID}, apperrors.ErrValidation},
		{"unapproved institute", author, service.ReviewInput{InstituteID: pending.ID, Rating: 3}, apperrors.ErrNotFound},
		{"owner reviewing own institute", service.Actor{ID: approved.UserID, Role: model.RoleInstitute}, service.ReviewInput{InstituteID: approved.ID, Rating: 5}, apperrors.ErrForbidden},
		{"unknown course", author, service.ReviewInput{InstituteID: approved.ID, Rating: 3, CourseID: ptr(uuid.New())}, apperrors.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(f.ctx, tt.actor, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReview_EditWhilePending(t *testing.T) {
	f := newFixture(t)
	inst := f.institute(model.StatusApproved)
	mine := f.review(inst.ID, 4, model.StatusPending)
	svc := service.NewReviewService(f.store, nil, nil)
	author := service.Actor{ID: mine.UserID, Role: model.RoleUser}

	updated, err := svc.Update(f.ctx, author, mine.ID, service.ReviewUpdate{Rating: ptr(5), Text: ptr("  great labs  ")})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, updated.Status)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "great labs", updated.Text)

	// same content again is still a valid edit
	_, err = svc.Update(f.ctx, author, mine.ID, service.ReviewUpdate{Rating: ptr(5)})
	require.NoError(t, err)

	_, err = svc.Update(f.ctx, service.Actor{ID: uuid.New(), Role: model.RoleUser}, mine.ID, service.ReviewUpdate{Rating: ptr(5)})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = svc.Update(f.ctx, author, mine.ID, service.ReviewUpdate{Rating: ptr(9)})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestReview_DecidedReviewCannotBeReopened(t *testing.T) {
	for _, status := range []model.Status{model.StatusApproved, model.StatusRejected} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t)
			inst := f.institute(model.StatusApproved)
			decided := f.review(inst.ID, 2, status)
			before := f.reloadInstitute(inst.ID)
			svc := service.NewReviewService(f.store, nil, nil)
			moderation := service.NewModerationService(f.store, nil, nil, nil, 0)

			_, err := svc.Update(f.ctx, service.Actor{ID: decided.UserID, Role: model.RoleUser}, decided.ID,
				service.ReviewUpdate{Rating: ptr(5), Text: ptr("please look again")})
			assert.ErrorIs(t, err, apperrors.ErrAlreadyDecided)

			got, err := f.store.Reviews().FindByID(f.ctx, decided.ID)
			require.NoError(t, err)
			assert.Equal(t, status, got.Status)
			assert.Equal(t, 2, got.Rating)

			_, err = moderation.ApproveOrReject(f.ctx, adminActor, workflow.EntityReview, decided.ID, "approve")
			assert.ErrorIs(t, err, apperrors.ErrAlreadyDecided)

			after := f.reloadInstitute(inst.ID)
			assert.Equal(t, before.Rating, after.Rating)
			assert.Equal(t, before.ReviewCount, after.ReviewCount)
		})
	}
}

func TestReview_DeleteByAdminRecomputes(t *testing.T) {
	f := newFixture(t)
	inst := f.institute(model.StatusApproved)
	f.review(inst.ID, 5, model.StatusApproved)
	low := f.review(inst.ID, 1, model.StatusApproved)
	svc := service.NewReviewService(f.store, newRecordingCache(), nil)

	_, err := svc.ListAll(f.ctx, service.Actor{ID: low.UserID, Role: model.RoleUser}, "")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	require.NoError(t, svc.Delete(f.ctx, adminActor, low.ID))
	got := f.reloadInstitute(inst.ID)
	assert.Equal(t, 5.0, got.Rating)
	assert.Equal(t, 1, got.ReviewCount)

	_, err = f.store.Reviews().FindByID(f.ctx, low.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestReview_ListApprovedOnlyShowsVisible(t *testing.T) {
	f := newFixture(t)
	inst := f.institute(model.StatusApproved)
	f.review(inst.ID, 5, model.StatusApproved)
	f.review(inst.ID, 3, model.StatusPending)
	f.review(inst.ID, 1, model.StatusRejected)
	svc := service.NewReviewService(f.store, nil, nil)

	reviews, err := svc.ListApproved(f.ctx, inst.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, 5, reviews[0].Rating)
	assert.NotEmpty(t, reviews[0].ReviewerName)
}

func ptr[T any](v T) *T { return &v }
