package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	apperrors "edulist/internal/errors"
	"edulist/internal/model"
	"edulist/internal/repository"
)

// InstituteCounts breaks institutes down by status.
type InstituteCounts struct {
	Total    int64 `json:"total"`
	Approved int64 `json:"approved"`
	Pending  int64 `json:"pending"`
	Rejected int64 `json:"rejected"`
}

// ReviewCounts breaks reviews down by status.
type ReviewCounts struct {
	Total    int64 `json:"total"`
	Approved int64 `json:"approved"`
	Pending  int64 `json:"pending"`
}

// DashboardStats is the admin dashboard aggregate.
type DashboardStats struct {
	UserCount       int64           `json:"user_count"`
	InstituteCounts InstituteCounts `json:"institute_counts"`
	ReviewCounts    ReviewCounts    `json:"review_counts"`
	EnquiryCount    int64           `json:"enquiry_count"`
}

// InstituteStats is the per-institute dashboard shown to owners.
type InstituteStats struct {
	InstituteID     uuid.UUID `json:"institute_id"`
	Rating          float64   `json:"rating"`
	TotalReviews    int64     `json:"total_reviews"`
	ApprovedReviews int64     `json:"approved_reviews"`
	Courses         int64     `json:"courses"`
	Enquiries       int64     `json:"enquiries"`
	NewEnquiries    int64     `json:"new_enquiries"`
}

// AnalyticsService aggregates counts for dashboards.
type AnalyticsService interface {
	ComputeDashboardStats(ctx context.Context) (*DashboardStats, error)
	InstituteStats(ctx context.Context, actor Actor, instituteID uuid.UUID) (*InstituteStats, error)
}

type analyticsService struct {
	store repository.Store
}

// NewAnalyticsService creates an analytics service.
func NewAnalyticsService(store repository.Store) AnalyticsService {
	return &analyticsService{store: store}
}

type countJob struct {
	dst   *int64
	count func(ctx context.Context) (int64, error)
	name  string
}

// runCounts issues every count concurrently. The first failure cancels the
// rest and fails the whole call.
func runCounts(ctx context.Context, jobs []countJob) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, job := range jobs {
		g.Go(func() error {
			n, err := job.count(ctx)
			if err != nil {
				return fmt.Errorf("count %s: %w", job.name, err)
			}
			*job.dst = n
			return nil
		})
	}
	return g.Wait()
}

// ComputeDashboardStats runs nine independent counts. user_count covers
// accounts with the user role only.
func (s *analyticsService) ComputeDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	users, institutes := s.store.Users(), s.store.Institutes()
	reviews, enquiries := s.store.Reviews(), s.store.Enquiries()

	instituteCount := func(st model.Status) func(context.Context) (int64, error) {
		return func(ctx context.Context) (int64, error) {
			return institutes.Count(ctx, repository.InstituteFilter{Status: st})
		}
	}
	reviewCount := func(st model.Status) func(context.Context) (int64, error) {
		return func(ctx context.Context) (int64, error) {
			return reviews.Count(ctx, repository.ReviewFilter{Status: st})
		}
	}

	err := runCounts(ctx, []countJob{
		{&stats.UserCount, func(ctx context.Context) (int64, error) {
			return users.Count(ctx, repository.UserFilter{Role: model.RoleUser})
		}, "users"},
		{&stats.InstituteCounts.Total, instituteCount(""), "institutes"},
		{&stats.InstituteCounts.Approved, instituteCount(model.StatusApproved), "approved institutes"},
		{&stats.InstituteCounts.Pending, instituteCount(model.StatusPending), "pending institutes"},
		{&stats.InstituteCounts.Rejected, instituteCount(model.StatusRejected), "rejected institutes"},
		{&stats.ReviewCounts.Total, reviewCount(""), "reviews"},
		{&stats.ReviewCounts.Approved, reviewCount(model.StatusApproved), "approved reviews"},
		{&stats.ReviewCounts.Pending, reviewCount(model.StatusPending), "pending reviews"},
		{&stats.EnquiryCount, func(ctx context.Context) (int64, error) {
			return enquiries.Count(ctx, repository.EnquiryFilter{})
		}, "enquiries"},
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// InstituteStats is visible to the institute's owner and to admins.
func (s *analyticsService) InstituteStats(ctx context.Context, actor Actor, instituteID uuid.UUID) (*InstituteStats, error) {
	inst, err := s.store.Institutes().FindByID(ctx, instituteID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && inst.UserID != actor.ID {
		return nil, fmt.Errorf("%w: not the institute owner", apperrors.ErrForbidden)
	}

	stats := InstituteStats{InstituteID: inst.ID, Rating: inst.Rating}
	reviews, enquiries := s.store.Reviews(), s.store.Enquiries()
	err = runCounts(ctx, []countJob{
		{&stats.TotalReviews, func(ctx context.Context) (int64, error) {
			return reviews.Count(ctx, repository.ReviewFilter{InstituteID: instituteID})
		}, "reviews"},
		{&stats.ApprovedReviews, func(ctx context.Context) (int64, error) {
			return reviews.Count(ctx, repository.ReviewFilter{InstituteID: instituteID, Status: model.StatusApproved})
		}, "approved reviews"},
		{&stats.Courses, func(ctx context.Context) (int64, error) {
			return s.store.Courses().CountByInstitute(ctx, instituteID)
		}, "courses"},
		{&stats.Enquiries, func(ctx context.Context) (int64, error) {
			return enquiries.Count(ctx, repository.EnquiryFilter{InstituteID: instituteID})
		}, "enquiries"},
		{&stats.NewEnquiries, func(ctx context.Context) (int64, error) {
			return enquiries.Count(ctx, repository.EnquiryFilter{InstituteID: instituteID, Status: model.EnquiryStatusNew})
		}, "new enquiries"},
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
