package service_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "edulist/internal/errors"
	"edulist/internal/model"
	"edulist/internal/repository"
	"edulist/internal/service"
)

func seedDashboard(t *testing.T, f *fixture) {
	t.Helper()
	for _, st := range []struct {
		status model.Status
		n      int
	}{{model.StatusApproved, 6}, {model.StatusPending, 3}, {model.StatusRejected, 1}} {
		for i := 0; i < st.n; i++ {
			f.institute(st.status)
		}
	}

	users := make([]*model.User, 20)
	for i := range users {
		users[i] = f.user(model.RoleUser, model.StatusApproved)
	}
	approved, err := f.store.Institutes().List(f.ctx, repository.InstituteFilter{Status: model.StatusApproved})
	require.NoError(t, err)
	for i, status := range []model.Status{
		model.StatusApproved, model.StatusApproved, model.StatusApproved,
		model.StatusPending, model.StatusPending,
	} {
		require.NoError(t, f.store.Reviews().Create(f.ctx, &model.Review{
			UserID:      users[i].ID,
			InstituteID: approved[i].ID,
			Rating:      4,
			Status:      status,
			IsActive:    true,
		}))
	}
}

func TestAnalytics_DashboardStats(t *testing.T) {
	f := newFixture(t)
	seedDashboard(t, f)
	f.user(model.RoleAdmin, model.StatusApproved)

	stats, err := service.NewAnalyticsService(f.store).ComputeDashboardStats(f.ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 20, stats.UserCount)
	assert.Equal(t, service.InstituteCounts{Total: 10, Approved: 6, Pending: 3, Rejected: 1}, stats.InstituteCounts)
	assert.Equal(t, service.ReviewCounts{Total: 5, Approved: 3, Pending: 2}, stats.ReviewCounts)
	assert.Zero(t, stats.EnquiryCount)
}

func TestAnalytics_FailingCountFailsTheCall(t *testing.T) {
	f := newFixture(t)
	seedDashboard(t, f)
	f.store.FailOn("reviews.Count", errors.New("timeout"))

	stats, err := service.NewAnalyticsService(f.store).ComputeDashboardStats(f.ctx)
	assert.Error(t, err)
	assert.Nil(t, stats)
}

func TestAnalytics_InstituteStatsVisibility(t *testing.T) {
	f := newFixture(t)
	inst := f.institute(model.StatusApproved)
	f.review(inst.ID, 5, model.StatusApproved)
	f.review(inst.ID, 2, model.StatusPending)
	svc := service.NewAnalyticsService(f.store)

	stats, err := svc.InstituteStats(f.ctx, service.Actor{ID: inst.UserID, Role: model.RoleInstitute}, inst.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalReviews)
	assert.EqualValues(t, 1, stats.ApprovedReviews)

	_, err = svc.InstituteStats(f.ctx, adminActor, inst.ID)
	require.NoError(t, err)

	_, err = svc.InstituteStats(f.ctx, service.Actor{ID: uuid.New(), Role: model.RoleInstitute}, inst.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
