package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "edulist/internal/errors"
	"edulist/internal/model"
	"edulist/internal/repository"
)

func newUser(email string) *model.User {
	return &model.User{Name: "n", Email: email, Role: model.RoleUser, Status: model.StatusPending, IsActive: true}
}

func TestStore_TransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	s := New()
	boom := errors.New("boom")

	err := s.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		require.NoError(t, tx.Users().Create(ctx, newUser("a@example.com")))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.Users().FindByEmail(ctx, "a@example.com")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestStore_FailOnFiresOnce(t *testing.T) {
	ctx := context.Background()
	s := New()
	injected := errors.New("injected")
	s.FailOn("users.Create", injected)

	assert.ErrorIs(t, s.Users().Create(ctx, newUser("a@example.com")), injected)
	assert.NoError(t, s.Users().Create(ctx, newUser("a@example.com")))
}

func TestStore_Uniqueness(t *testing.T) {
	ctx := context.Background()
	s := New()
	u := newUser("A@Example.com")
	require.NoError(t, s.Users().Create(ctx, u))
	assert.ErrorIs(t, s.Users().Create(ctx, newUser("a@example.com ")), apperrors.ErrDuplicateEntity)

	inst := &model.Institute{UserID: u.ID, Name: "i", Category: model.CategorySchool}
	require.NoError(t, s.Institutes().Create(ctx, inst))
	assert.ErrorIs(t, s.Institutes().Create(ctx, &model.Institute{UserID: u.ID, Name: "j"}), apperrors.ErrDuplicateEntity)

	rv := &model.Review{UserID: u.ID, InstituteID: inst.ID, Rating: 3}
	require.NoError(t, s.Reviews().Create(ctx, rv))
	assert.ErrorIs(t, s.Reviews().Create(ctx, &model.Review{UserID: u.ID, InstituteID: inst.ID, Rating: 4}), apperrors.ErrDuplicateEntity)
}

func TestStore_ConditionalStatusUpdate(t *testing.T) {
	ctx := context.Background()
	s := New()
	u := newUser("a@example.com")
	require.NoError(t, s.Users().Create(ctx, u))

	ok, err := s.Users().UpdateStatus(ctx, u.ID, model.StatusPending, model.StatusApproved)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Users().UpdateStatus(ctx, u.ID, model.StatusPending, model.StatusRejected)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := s.Users().FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, got.Status)
}

func TestStore_UnapprovingClearsFeatured(t *testing.T) {
	ctx := context.Background()
	s := New()
	u := newUser("a@example.com")
	require.NoError(t, s.Users().Create(ctx, u))
	inst := &model.Institute{UserID: u.ID, Name: "i", Category: model.CategorySchool, Status: model.StatusPending, IsFeatured: true}
	require.NoError(t, s.Institutes().Create(ctx, inst))

	_, err := s.Institutes().UpdateStatus(ctx, inst.ID, model.StatusPending, model.StatusRejected)
	require.NoError(t, err)
	got, err := s.Institutes().FindByID(ctx, inst.ID)
	require.NoError(t, err)
	assert.False(t, got.IsFeatured)
	require.NotNil(t, got.Owner)
	assert.Empty(t, got.Owner.PasswordHash)
}

func TestStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Users().Count(ctx, repository.UserFilter{})
	assert.ErrorIs(t, err, context.Canceled)
}
