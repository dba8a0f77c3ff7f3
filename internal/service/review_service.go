package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"edulist/internal/cache"
	apperrors "edulist/internal/errors"
	"edulist/internal/model"
	"edulist/internal/repository"
)

// ReviewInput is a new review.
type ReviewInput struct {
	InstituteID uuid.UUID
	CourseID    *uuid.UUID
	Rating      int
	Text        string
}

// ReviewUpdate changes rating and/or text. Nil fields are left as they are.
type ReviewUpdate struct {
	Rating *int
	Text   *string
}

// ReviewService manages reviews outside moderation.
type ReviewService interface {
	Create(ctx context.Context, actor Actor, in ReviewInput) (*model.Review, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, in ReviewUpdate) (*model.Review, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	ListApproved(ctx context.Context, instituteID uuid.UUID) ([]model.Review, error)
	ListMine(ctx context.Context, actor Actor) ([]model.Review, error)
	ListAll(ctx context.Context, actor Actor, status string) ([]model.Review, error)
}

type reviewService struct {
	store repository.Store
	cache cache.Cache
	log   *zap.Logger
}

// NewReviewService creates a review service.
func NewReviewService(store repository.Store, cache cache.Cache, log *zap.Logger) ReviewService {
	return &reviewService{store: store, cache: cache, log: orNop(log)}
}

// Create adds a pending review for an approved institute. One review per
// user and institute; owners cannot review their own institute.
func (s *reviewService) Create(ctx context.Context, actor Actor, in ReviewInput) (*model.Review, error) {
	if !model.ValidRating(in.Rating) {
		return nil, validationError("rating must be between %d and %d", model.MinRating, model.MaxRating)
	}
	inst, err := s.store.Institutes().FindByID(ctx, in.InstituteID)
	if err != nil {
		return nil, err
	}
	if inst.Status != model.StatusApproved {
		return nil, apperrors.ErrInstituteNotFound
	}
	if inst.UserID == actor.ID {
		return nil, fmt.Errorf("%w: owners cannot review their own institute", apperrors.ErrForbidden)
	}
	if in.CourseID != nil {
		course, err := s.store.Courses().FindByID(ctx, *in.CourseID)
		if err != nil {
			return nil, err
		}
		if course.InstituteID != inst.ID {
			return nil, validationError("course does not belong to the institute")
		}
	}

	if _, err := s.store.Reviews().FindByUserAndInstitute(ctx, actor.ID, inst.ID); err == nil {
		return nil, fmt.Errorf("%w: institute already reviewed", apperrors.ErrDuplicateEntity)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("find review: %w", err)
	}

	review := &model.Review{
		UserID:      actor.ID,
		InstituteID: inst.ID,
		CourseID:    in.CourseID,
		Rating:      in.Rating,
		Text:        strings.TrimSpace(in.Text),
		Status:      model.StatusPending,
		IsActive:    true,
	}
	if err := s.store.Reviews().Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	return review, nil
}

// Update edits the actor's own review while it is still pending. Decided
// reviews are terminal and can only be deleted.
func (s *reviewService) Update(ctx context.Context, actor Actor, id uuid.UUID, in ReviewUpdate) (*model.Review, error) {
	review, err := s.store.Reviews().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.UserID != actor.ID {
		return nil, fmt.Errorf("%w: not the review author", apperrors.ErrForbidden)
	}
	if review.Status != model.StatusPending {
		return nil, fmt.Errorf("%w: review is already %s", apperrors.ErrAlreadyDecided, review.Status)
	}
	if in.Rating != nil {
		if !model.ValidRating(*in.Rating) {
			return nil, validationError("rating must be between %d and %d", model.MinRating, model.MaxRating)
		}
		review.Rating = *in.Rating
	}
	if in.Text != nil {
		review.Text = strings.TrimSpace(*in.Text)
	}

	applied, err := s.store.Reviews().UpdateContent(ctx, review)
	if err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	if !applied {
		// MySQL reports zero affected rows for an edit that changes nothing.
		current, err := s.store.Reviews().FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.Status != model.StatusPending {
			return nil, fmt.Errorf("%w: review is already %s", apperrors.ErrAlreadyDecided, current.Status)
		}
	}
	return review, nil
}

// Delete removes a review. Authors and admins may delete.
func (s *reviewService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	review, err := s.store.Reviews().FindByID(ctx, id)
	if err != nil {
		return err
	}
	if review.UserID != actor.ID && !actor.IsAdmin() {
		return fmt.Errorf("%w: not the review author", apperrors.ErrForbidden)
	}

	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := tx.Reviews().Delete(ctx, id); err != nil {
			return err
		}
		return recomputeRating(ctx, tx, review.InstituteID)
	})
	if err != nil {
		return err
	}
	invalidateFeatured(ctx, s.cache)
	s.log.Info("review deleted", zap.String("review_id", id.String()), zap.String("actor_id", actor.ID.String()))
	return nil
}

func (s *reviewService) ListApproved(ctx context.Context, instituteID uuid.UUID) ([]model.Review, error) {
	inst, err := s.store.Institutes().FindByID(ctx, instituteID)
	if err != nil {
		return nil, err
	}
	if inst.Status != model.StatusApproved {
		return nil, apperrors.ErrInstituteNotFound
	}
	reviews, err := s.store.Reviews().List(ctx, repository.ReviewFilter{
		InstituteID: instituteID,
		Status:      model.StatusApproved,
		ActiveOnly:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return nonNil(reviews), nil
}

func (s *reviewService) ListMine(ctx context.Context, actor Actor) ([]model.Review, error) {
	reviews, err := s.store.Reviews().List(ctx, repository.ReviewFilter{UserID: actor.ID})
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return nonNil(reviews), nil
}

func (s *reviewService) ListAll(ctx context.Context, actor Actor, status string) ([]model.Review, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	filter := repository.ReviewFilter{}
	if strings.TrimSpace(status) != "" {
		st, ok := model.ParseStatus(status)
		if !ok {
			return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidStatus, status)
		}
		filter.Status = st
	}
	reviews, err := s.store.Reviews().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return nonNil(reviews), nil
}
