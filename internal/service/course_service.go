package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "edulist/internal/errors"
	"edulist/internal/model"
	"edulist/internal/repository"
)

// CourseInput carries the editable course fields.
type CourseInput struct {
	Title       string
	Description string
	Duration    string
	Fees        decimal.Decimal
	Category    string
	ImageURL    string
	Facilities  []string
	Syllabus    []string
}

// CourseService manages an institute's courses.
type CourseService interface {
	Create(ctx context.Context, actor Actor, in CourseInput) (*model.Course, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, in CourseInput) (*model.Course, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	ListByInstitute(ctx context.Context, instituteID uuid.UUID) ([]model.Course, error)
	ListMine(ctx context.Context, actor Actor) ([]model.Course, error)
}

type courseService struct {
	store repository.Store
}

// NewCourseService creates a course service.
func NewCourseService(store repository.Store) CourseService {
	return &courseService{store: store}
}

func applyCourseInput(c *model.Course, in CourseInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return validationError("title is required")
	}
	if in.Fees.IsNegative() {
		return validationError("fees must not be negative")
	}
	c.Title = title
	c.Description = strings.TrimSpace(in.Description)
	c.Duration = strings.TrimSpace(in.Duration)
	c.Fees = in.Fees.Round(2)
	c.Category = strings.TrimSpace(in.Category)
	c.ImageURL = strings.TrimSpace(in.ImageURL)
	c.Facilities = nonNil(in.Facilities)
	c.Syllabus = nonNil(in.Syllabus)
	return nil
}

func (s *courseService) ownInstitute(ctx context.Context, actor Actor) (*model.Institute, error) {
	if err := requireRole(actor, model.RoleInstitute); err != nil {
		return nil, err
	}
	return s.store.Institutes().FindByUserID(ctx, actor.ID)
}

// ownCourse loads a course that belongs to the actor's institute.
func (s *courseService) ownCourse(ctx context.Context, actor Actor, id uuid.UUID) (*model.Course, error) {
	inst, err := s.ownInstitute(ctx, actor)
	if err != nil {
		return nil, err
	}
	course, err := s.store.Courses().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if course.InstituteID != inst.ID {
		return nil, fmt.Errorf("%w: course belongs to another institute", apperrors.ErrForbidden)
	}
	return course, nil
}

func (s *courseService) Create(ctx context.Context, actor Actor, in CourseInput) (*model.Course, error) {
	inst, err := s.ownInstitute(ctx, actor)
	if err != nil {
		return nil, err
	}
	course := &model.Course{InstituteID: inst.ID}
	if err := applyCourseInput(course, in); err != nil {
		return nil, err
	}
	if err := s.store.Courses().Create(ctx, course); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	return course, nil
}

func (s *courseService) Update(ctx context.Context, actor Actor, id uuid.UUID, in CourseInput) (*model.Course, error) {
	course, err := s.ownCourse(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := applyCourseInput(course, in); err != nil {
		return nil, err
	}
	if err := s.store.Courses().Update(ctx, course); err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	return course, nil
}

func (s *courseService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if _, err := s.ownCourse(ctx, actor, id); err != nil {
		return err
	}
	return s.store.Courses().Delete(ctx, id)
}

// ListByInstitute lists the courses of an approved institute.
func (s *courseService) ListByInstitute(ctx context.Context, instituteID uuid.UUID) ([]model.Course, error) {
	inst, err := s.store.Institutes().FindByID(ctx, instituteID)
	if err != nil {
		return nil, err
	}
	if inst.Status != model.StatusApproved {
		return nil, apperrors.ErrInstituteNotFound
	}
	courses, err := s.store.Courses().ListByInstitute(ctx, instituteID)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return nonNil(courses), nil
}

func (s *courseService) ListMine(ctx context.Context, actor Actor) ([]model.Course, error) {
	inst, err := s.ownInstitute(ctx, actor)
	if err != nil {
		return nil, err
	}
	courses, err := s.store.Courses().ListByInstitute(ctx, inst.ID)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return nonNil(courses), nil
}
