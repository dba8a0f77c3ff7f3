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

// Profile is a user together with the institute they own, if any.
type Profile struct {
	User      *model.User      `json:"user"`
	Institute *model.Institute `json:"institute,omitempty"`
}

// UserService exposes account operations.
type UserService interface {
	GetProfile(ctx context.Context, actor Actor) (*Profile, error)
	UpdateProfile(ctx context.Context, actor Actor, name, phone string) (*model.User, error)
	ListUsers(ctx context.Context, actor Actor, role, status string) ([]model.User, error)
	// DeleteUser removes the account, its institute with courses, reviews and
	// enquiries, and the account's own reviews.
	DeleteUser(ctx context.Context, actor Actor, id uuid.UUID) error
}

type userService struct {
	store repository.Store
	cache cache.Cache
	log   *zap.Logger
}

// NewUserService builds a UserService.
func NewUserService(store repository.Store, cache cache.Cache, log *zap.Logger) UserService {
	return &userService{store: store, cache: cache, log: orNop(log)}
}

func (s *userService) GetProfile(ctx context.Context, actor Actor) (*Profile, error) {
	user, err := s.store.Users().FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	profile := &Profile{User: user}
	if user.Role == model.RoleInstitute {
		inst, err := s.store.Institutes().FindByUserID(ctx, user.ID)
		switch {
		case err == nil:
			profile.Institute = inst
		case !errors.Is(err, apperrors.ErrNotFound):
			return nil, fmt.Errorf("find institute: %w", err)
		}
	}
	return profile, nil
}

// UpdateProfile changes name and phone only.
func (s *userService) UpdateProfile(ctx context.Context, actor Actor, name, phone string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("name is required")
	}
	if err := s.store.Users().UpdateProfile(ctx, actor.ID, name, strings.TrimSpace(phone)); err != nil {
		return nil, err
	}
	return s.store.Users().FindByID(ctx, actor.ID)
}

func (s *userService) ListUsers(ctx context.Context, actor Actor, role, status string) ([]model.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	var filter repository.UserFilter
	if strings.TrimSpace(role) != "" {
		r, ok := model.ParseRole(role)
		if !ok {
			return nil, validationError("unknown role %q", role)
		}
		filter.Role = r
	}
	if strings.TrimSpace(status) != "" {
		st, ok := model.ParseStatus(status)
		if !ok {
			return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidStatus, status)
		}
		filter.Status = st
	}
	users, err := s.store.Users().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return nonNil(users), nil
}

func (s *userService) DeleteUser(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if actor.ID == id {
		return validationError("admins cannot delete their own account")
	}
	if _, err := s.store.Users().FindByID(ctx, id); err != nil {
		return err
	}

	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		inst, err := tx.Institutes().FindByUserID(ctx, id)
		switch {
		case err == nil:
			if err := tx.Courses().DeleteByInstitute(ctx, inst.ID); err != nil {
				return fmt.Errorf("delete courses: %w", err)
			}
			if err := tx.Reviews().DeleteByInstitute(ctx, inst.ID); err != nil {
				return fmt.Errorf("delete institute reviews: %w", err)
			}
			if err := tx.Enquiries().DeleteByInstitute(ctx, inst.ID); err != nil {
				return fmt.Errorf("delete enquiries: %w", err)
			}
			if err := tx.Institutes().Delete(ctx, inst.ID); err != nil {
				return fmt.Errorf("delete institute: %w", err)
			}
		case !errors.Is(err, apperrors.ErrNotFound):
			return fmt.Errorf("find institute: %w", err)
		}

		own, err := tx.Reviews().List(ctx, repository.ReviewFilter{UserID: id})
		if err != nil {
			return fmt.Errorf("list reviews: %w", err)
		}
		touched := map[uuid.UUID]bool{}
		for _, review := range own {
			if err := tx.Reviews().Delete(ctx, review.ID); err != nil {
				return fmt.Errorf("delete review: %w", err)
			}
			touched[review.InstituteID] = true
		}
		for instituteID := range touched {
			if err := recomputeRating(ctx, tx, instituteID); err != nil {
				return err
			}
		}

		return tx.Users().Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	invalidateFeatured(ctx, s.cache)
	s.log.Info("user deleted", zap.String("user_id", id.String()), zap.String("actor_id", actor.ID.String()))
	return nil
}
