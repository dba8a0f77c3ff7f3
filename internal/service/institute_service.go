package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"edulist/internal/cache"
	apperrors "edulist/internal/errors"
	"edulist/internal/model"
	"edulist/internal/repository"
)

// InstituteInput carries the owner editable institute fields.
type InstituteInput struct {
	Name        string
	Category    string
	Affiliation string
	Address     string
	City        string
	State       string
	Phone       string
	Email       string
	Website     string
	Description string
	LogoURL     string
	Images      []string
	Facilities  []string
}

// InstituteService manages an institute account's own institute.
type InstituteService interface {
	Register(ctx context.Context, actor Actor, in InstituteInput) (*model.Institute, error)
	Mine(ctx context.Context, actor Actor) (*model.Institute, error)
	UpdateProfile(ctx context.Context, actor Actor, in InstituteInput) (*model.Institute, error)
}

type instituteService struct {
	store repository.Store
	cache cache.Cache
	log   *zap.Logger
}

// NewInstituteService creates an institute service.
func NewInstituteService(store repository.Store, cache cache.Cache, log *zap.Logger) InstituteService {
	return &instituteService{store: store, cache: cache, log: orNop(log)}
}

// newInstitute builds a pending institute for owner. Contact fields default
// to the owner's.
func newInstitute(in InstituteInput, owner *model.User) (*model.Institute, error) {
	inst := &model.Institute{UserID: owner.ID, Status: model.StatusPending}
	if err := applyInstituteInput(inst, in); err != nil {
		return nil, err
	}
	if inst.Name == "" {
		inst.Name = owner.Name
	}
	if inst.Phone == "" {
		inst.Phone = owner.Phone
	}
	if inst.Email == "" {
		inst.Email = owner.Email
	}
	return inst, nil
}

func applyInstituteInput(inst *model.Institute, in InstituteInput) error {
	category := model.Category(strings.ToLower(strings.TrimSpace(in.Category)))
	if !category.Valid() {
		return validationError("category must be one of school, college, coaching, preschool, university")
	}
	inst.Name = strings.TrimSpace(in.Name)
	inst.Category = category
	inst.Affiliation = strings.TrimSpace(in.Affiliation)
	inst.Address = strings.TrimSpace(in.Address)
	inst.City = strings.TrimSpace(in.City)
	inst.State = strings.TrimSpace(in.State)
	inst.Phone = strings.TrimSpace(in.Phone)
	inst.Email = strings.TrimSpace(in.Email)
	inst.Website = strings.TrimSpace(in.Website)
	inst.Description = strings.TrimSpace(in.Description)
	inst.LogoURL = strings.TrimSpace(in.LogoURL)
	inst.Images = nonNil(in.Images)
	inst.Facilities = nonNil(in.Facilities)
	return nil
}

// Register creates the actor's institute, pending moderation. An account
// owns at most one institute.
func (s *instituteService) Register(ctx context.Context, actor Actor, in InstituteInput) (*model.Institute, error) {
	if err := requireRole(actor, model.RoleInstitute); err != nil {
		return nil, err
	}
	owner, err := s.store.Users().FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.Institutes().FindByUserID(ctx, actor.ID); err == nil {
		return nil, fmt.Errorf("%w: account already owns an institute", apperrors.ErrDuplicateEntity)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("find institute: %w", err)
	}

	inst, err := newInstitute(in, owner)
	if err != nil {
		return nil, err
	}
	if err := s.store.Institutes().Create(ctx, inst); err != nil {
		return nil, fmt.Errorf("create institute: %w", err)
	}

	s.log.Info("institute registered", zap.String("institute_id", inst.ID.String()), zap.String("owner_id", actor.ID.String()))
	return s.store.Institutes().FindByID(ctx, inst.ID)
}

func (s *instituteService) Mine(ctx context.Context, actor Actor) (*model.Institute, error) {
	if err := requireRole(actor, model.RoleInstitute); err != nil {
		return nil, err
	}
	return s.store.Institutes().FindByUserID(ctx, actor.ID)
}

// UpdateProfile changes profile fields only. Status, featured flag, rating
// and owner are never touched.
func (s *instituteService) UpdateProfile(ctx context.Context, actor Actor, in InstituteInput) (*model.Institute, error) {
	inst, err := s.Mine(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := applyInstituteInput(inst, in); err != nil {
		return nil, err
	}
	if inst.Name == "" {
		return nil, validationError("name is required")
	}
	if err := s.store.Institutes().UpdateProfile(ctx, inst); err != nil {
		return nil, fmt.Errorf("update institute: %w", err)
	}
	if inst.IsFeatured {
		invalidateFeatured(ctx, s.cache)
	}
	return s.store.Institutes().FindByID(ctx, inst.ID)
}
