package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"edulist/internal/cache"
	apperrors "edulist/internal/errors"
	"edulist/internal/metrics"
	"edulist/internal/model"
	"edulist/internal/repository"
	"edulist/internal/workflow"
)

// DefaultModerationTimeout bounds a single moderation call.
const DefaultModerationTimeout = 5 * time.Second

// ModerationResult is the outcome of a moderation decision. Exactly one of
// User, Institute and Review is set.
type ModerationResult struct {
	Entity    workflow.EntityType `json:"entity"`
	ID        uuid.UUID           `json:"id"`
	Decision  workflow.Decision   `json:"decision"`
	Status    model.Status        `json:"status"`
	Message   string              `json:"message"`
	User      *model.User         `json:"user,omitempty"`
	Institute *model.Institute    `json:"institute,omitempty"`
	Review    *model.Review       `json:"review,omitempty"`
}

// PendingUser is a pending account. Institute accounts carry a summary of
// the institute they registered.
type PendingUser struct {
	model.User
	Institute *model.InstituteSummary `json:"institute,omitempty"`
}

// PendingList holds the pending entities of one kind, newest first.
type PendingList struct {
	Entity     workflow.EntityType `json:"entity"`
	Count      int                 `json:"count"`
	Users      []PendingUser       `json:"users,omitempty"`
	Institutes []model.Institute   `json:"institutes,omitempty"`
	Reviews    []model.Review      `json:"reviews,omitempty"`
}

// ModerationService applies admin decisions to users, institutes and reviews.
type ModerationService interface {
	ApproveOrReject(ctx context.Context, actor Actor, entity workflow.EntityType, id uuid.UUID, decision string) (*ModerationResult, error)
	ListPending(ctx context.Context, actor Actor, entity workflow.EntityType) (*PendingList, error)
	SetFeatured(ctx context.Context, actor Actor, instituteID uuid.UUID, featured bool) (*model.Institute, error)
}

type moderationService struct {
	store   repository.Store
	cache   cache.Cache
	metrics *metrics.Metrics
	log     *zap.Logger
	timeout time.Duration
}

// NewModerationService creates a moderation service. A non-positive timeout
// falls back to DefaultModerationTimeout.
func NewModerationService(
	store repository.Store,
	cache cache.Cache,
	m *metrics.Metrics,
	log *zap.Logger,
	timeout time.Duration,
) ModerationService {
	if timeout <= 0 {
		timeout = DefaultModerationTimeout
	}
	return &moderationService{
		store:   store,
		cache:   cache,
		metrics: m,
		log:     orNop(log),
		timeout: timeout,
	}
}

// ApproveOrReject validates and applies one decision. Checks run in order:
// admin role, entity existence, decision value, stored status, pending state.
func (s *moderationService) ApproveOrReject(ctx context.Context, actor Actor, entity workflow.EntityType, id uuid.UUID, decision string) (*ModerationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.decide(ctx, actor, entity, id, decision)

	label := "unknown"
	if d, perr := workflow.ParseDecision(decision); perr == nil {
		label = string(d)
	}
	log := s.log.With(
		zap.String("entity", string(entity)),
		zap.String("entity_id", id.String()),
		zap.String("decision", label),
		zap.String("actor_id", actor.ID.String()),
	)
	if err != nil {
		s.metrics.RecordDecision(string(entity), label, metrics.OutcomeError)
		log.Warn("moderation decision refused", zap.Error(err))
		return nil, err
	}
	s.metrics.RecordDecision(string(entity), label, metrics.OutcomeSuccess)
	log.Info("moderation decision applied", zap.String("status", string(res.Status)))
	return res, nil
}

func (s *moderationService) decide(ctx context.Context, actor Actor, entity workflow.EntityType, id uuid.UUID, decision string) (*ModerationResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var (
		current     model.Status
		instituteID uuid.UUID
		ownerID     uuid.UUID
	)
	switch entity {
	case workflow.EntityUser:
		user, err := s.store.Users().FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		current = user.Status
	case workflow.EntityInstitute:
		inst, err := s.store.Institutes().FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		current, ownerID = inst.Status, inst.UserID
	case workflow.EntityReview:
		review, err := s.store.Reviews().FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		current, instituteID = review.Status, review.InstituteID
	default:
		return nil, fmt.Errorf("%w: unknown entity type %q", apperrors.ErrValidation, entity)
	}

	plan, err := workflow.Transition(entity, current, decision, actor.Role)
	if err != nil {
		return nil, err
	}

	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		applied, err := s.applyPrimary(ctx, tx, plan, id)
		if err != nil {
			return err
		}
		if !applied {
			return fmt.Errorf("%w: %s was decided concurrently", apperrors.ErrAlreadyDecided, entity)
		}
		if plan.Has(workflow.CascadeOwnerStatus) {
			if err := tx.Users().SetStatus(ctx, ownerID, plan.To); err != nil {
				return fmt.Errorf("update owner status: %w", err)
			}
		}
		if plan.Has(workflow.CascadeRecomputeRating) {
			if err := recomputeRating(ctx, tx, instituteID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyDecided) {
			return nil, err
		}
		s.log.Error("moderation transaction rolled back",
			zap.String("entity", string(entity)),
			zap.String("entity_id", id.String()),
			zap.Error(err),
		)
		return nil, apperrors.ErrTransactionFailed
	}

	if entity != workflow.EntityUser {
		invalidateFeatured(ctx, s.cache)
	}
	return s.result(ctx, plan, id)
}

func (s *moderationService) applyPrimary(ctx context.Context, tx repository.Store, plan workflow.Plan, id uuid.UUID) (bool, error) {
	switch plan.Entity {
	case workflow.EntityUser:
		return tx.Users().UpdateStatus(ctx, id, plan.From, plan.To)
	case workflow.EntityInstitute:
		return tx.Institutes().UpdateStatus(ctx, id, plan.From, plan.To)
	case workflow.EntityReview:
		active := plan.Active != nil && *plan.Active
		return tx.Reviews().UpdateStatus(ctx, id, plan.From, plan.To, active)
	}
	return false, fmt.Errorf("%w: unknown entity type %q", apperrors.ErrValidation, plan.Entity)
}

// result reloads the decided entity after commit.
func (s *moderationService) result(ctx context.Context, plan workflow.Plan, id uuid.UUID) (*ModerationResult, error) {
	res := &ModerationResult{
		Entity:   plan.Entity,
		ID:       id,
		Decision: plan.Decision,
		Status:   plan.To,
		Message:  plan.Message(),
	}
	var err error
	switch plan.Entity {
	case workflow.EntityUser:
		res.User, err = s.store.Users().FindByID(ctx, id)
	case workflow.EntityInstitute:
		res.Institute, err = s.store.Institutes().FindByID(ctx, id)
	case workflow.EntityReview:
		res.Review, err = s.store.Reviews().FindByID(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("reload %s: %w", plan.Entity, err)
	}
	return res, nil
}

// ListPending returns pending entities of one kind, newest first.
func (s *moderationService) ListPending(ctx context.Context, actor Actor, entity workflow.EntityType) (*PendingList, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	list := &PendingList{Entity: entity}
	switch entity {
	case workflow.EntityUser:
		users, err := s.store.Users().List(ctx, repository.UserFilter{Status: model.StatusPending})
		if err != nil {
			return nil, fmt.Errorf("list pending users: %w", err)
		}
		list.Users = make([]PendingUser, 0, len(users))
		for _, u := range users {
			pending := PendingUser{User: u}
			if u.Role == model.RoleInstitute {
				inst, err := s.store.Institutes().FindByUserID(ctx, u.ID)
				switch {
				case err == nil:
					pending.Institute = inst.Summary()
				case !errors.Is(err, apperrors.ErrNotFound):
					return nil, fmt.Errorf("find institute: %w", err)
				}
			}
			list.Users = append(list.Users, pending)
		}
		list.Count = len(list.Users)
	case workflow.EntityInstitute:
		institutes, err := s.store.Institutes().List(ctx, repository.InstituteFilter{Status: model.StatusPending})
		if err != nil {
			return nil, fmt.Errorf("list pending institutes: %w", err)
		}
		list.Institutes, list.Count = nonNil(institutes), len(institutes)
	case workflow.EntityReview:
		reviews, err := s.store.Reviews().List(ctx, repository.ReviewFilter{Status: model.StatusPending})
		if err != nil {
			return nil, fmt.Errorf("list pending reviews: %w", err)
		}
		list.Reviews, list.Count = nonNil(reviews), len(reviews)
	default:
		return nil, fmt.Errorf("%w: unknown entity type %q", apperrors.ErrValidation, entity)
	}
	return list, nil
}

// SetFeatured toggles the featured flag. Only approved institutes can be
// featured; unfeaturing is always allowed.
func (s *moderationService) SetFeatured(ctx context.Context, actor Actor, instituteID uuid.UUID, featured bool) (*model.Institute, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	inst, err := s.store.Institutes().FindByID(ctx, instituteID)
	if err != nil {
		return nil, err
	}
	if featured && inst.Status != model.StatusApproved {
		return nil, validationError("only approved institutes can be featured")
	}
	if err := s.store.Institutes().SetFeatured(ctx, instituteID, featured); err != nil {
		return nil, fmt.Errorf("set featured: %w", err)
	}
	invalidateFeatured(ctx, s.cache)

	s.log.Info("institute featured flag changed",
		zap.String("institute_id", instituteID.String()),
		zap.Bool("featured", featured),
	)
	return s.store.Institutes().FindByID(ctx, instituteID)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
