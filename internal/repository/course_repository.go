package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "edulist/internal/errors"
	"edulist/internal/model"
)

// CourseRepository defines course persistence operations.
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
	Update(ctx context.Context, course *model.Course) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByInstitute(ctx context.Context, instituteID uuid.UUID) error
	ListByInstitute(ctx context.Context, instituteID uuid.UUID) ([]model.Course, error)
	CountByInstitute(ctx context.Context, instituteID uuid.UUID) (int64, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository creates a new course repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

// Create creates a new course.
func (r *courseRepository) Create(ctx context.Context, course *model.Course) error {
	return translate(r.db.WithContext(ctx).Create(course).Error, apperrors.ErrCourseNotFound)
}

// FindByID finds a course by ID.
func (r *courseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	var course model.Course
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&course).Error; err != nil {
		return nil, translate(err, apperrors.ErrCourseNotFound)
	}
	return &course, nil
}

// Update saves an existing course.
func (r *courseRepository) Update(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Save(course).Error
}

// Delete removes a course permanently.
func (r *courseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Course{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// DeleteByInstitute removes every course of an institute.
func (r *courseRepository) DeleteByInstitute(ctx context.Context, instituteID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("institute_id = ?", instituteID).Delete(&model.Course{}).Error
}

// ListByInstitute lists an institute's courses newest first.
func (r *courseRepository) ListByInstitute(ctx context.Context, instituteID uuid.UUID) ([]model.Course, error) {
	var courses []model.Course
	if err := r.db.WithContext(ctx).Where("institute_id = ?", instituteID).
		Order("created_at DESC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

// CountByInstitute counts an institute's courses.
func (r *courseRepository) CountByInstitute(ctx context.Context, instituteID uuid.UUID) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Course{}).
		Where("institute_id = ?", instituteID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
