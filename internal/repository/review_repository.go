package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "edulist/internal/errors"
	"edulist/internal/model"
)

// ReviewFilter selects reviews. Zero values match everything.
type ReviewFilter struct {
	InstituteID uuid.UUID
	UserID      uuid.UUID
	Status      model.Status
	ActiveOnly  bool
}

// ReviewRepository defines review persistence operations.
type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Review, error)
	FindByUserAndInstitute(ctx context.Context, userID, instituteID uuid.UUID) (*model.Review, error)
	// UpdateContent writes rating and text of a pending review. It reports
	// false when the review is no longer pending.
	UpdateContent(ctx context.Context, review *model.Review) (bool, error)
	// UpdateStatus moves the review from one status to another and sets its
	// visibility. It reports false when the review was not in the from status.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.Status, active bool) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByInstitute(ctx context.Context, instituteID uuid.UUID) error
	List(ctx context.Context, filter ReviewFilter) ([]model.Review, error)
	Count(ctx context.Context, filter ReviewFilter) (int64, error)
	// CountedRatings returns the ratings of approved, active reviews of an
	// institute.
	CountedRatings(ctx context.Context, instituteID uuid.UUID) ([]int, error)
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository.
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create creates a new review.
func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	return translate(r.db.WithContext(ctx).Omit("User", "Institute").Create(review).Error, apperrors.ErrReviewNotFound)
}

// FindByID finds a review by ID.
func (r *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	var review model.Review
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&review).Error; err != nil {
		return nil, translate(err, apperrors.ErrReviewNotFound)
	}
	return &review, nil
}

// FindByUserAndInstitute finds the single review a user wrote for an institute.
func (r *reviewRepository) FindByUserAndInstitute(ctx context.Context, userID, instituteID uuid.UUID) (*model.Review, error) {
	var review model.Review
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND institute_id = ?", userID, instituteID).
		First(&review).Error; err != nil {
		return nil, translate(err, apperrors.ErrReviewNotFound)
	}
	return &review, nil
}

// UpdateContent saves the editable review fields while the review is pending.
func (r *reviewRepository) UpdateContent(ctx context.Context, review *model.Review) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("id = ? AND status = ?", review.ID, model.StatusPending).
		Updates(map[string]interface{}{"rating": review.Rating, "text": review.Text})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// UpdateStatus performs a conditional status write.
func (r *reviewRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.Status, active bool) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to, "is_active": active})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Delete removes a review permanently.
func (r *reviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Review{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrReviewNotFound
	}
	return nil
}

// DeleteByInstitute removes every review of an institute.
func (r *reviewRepository) DeleteByInstitute(ctx context.Context, instituteID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("institute_id = ?", instituteID).Delete(&model.Review{}).Error
}

// List lists reviews newest first with reviewer and institute names.
func (r *reviewRepository) List(ctx context.Context, filter ReviewFilter) ([]model.Review, error) {
	var reviews []model.Review
	err := r.scope(ctx, filter).
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name") }).
		Preload("Institute", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name") }).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// Count counts reviews matching filter.
func (r *reviewRepository) Count(ctx context.Context, filter ReviewFilter) (int64, error) {
	var n int64
	if err := r.scope(ctx, filter).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// CountedRatings returns ratings that feed the institute aggregate.
func (r *reviewRepository) CountedRatings(ctx context.Context, instituteID uuid.UUID) ([]int, error) {
	var ratings []int
	err := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("institute_id = ? AND status = ? AND is_active = ?", instituteID, model.StatusApproved, true).
		Pluck("rating", &ratings).Error
	if err != nil {
		return nil, err
	}
	return ratings, nil
}

func (r *reviewRepository) scope(ctx context.Context, filter ReviewFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Review{})
	if filter.InstituteID != uuid.Nil {
		q = q.Where("institute_id = ?", filter.InstituteID)
	}
	if filter.UserID != uuid.Nil {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	return q
}
