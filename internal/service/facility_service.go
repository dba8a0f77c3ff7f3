package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"edulist/internal/model"
	"edulist/internal/repository"
)

// FacilityService manages the facility catalogue. Reads are public, writes
// are admin only.
type FacilityService interface {
	List(ctx context.Context) ([]model.Facility, error)
	Create(ctx context.Context, actor Actor, name, icon string) (*model.Facility, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}

type facilityService struct {
	store repository.Store
	log   *zap.Logger
}

// NewFacilityService creates a facility service.
func NewFacilityService(store repository.Store, log *zap.Logger) FacilityService {
	return &facilityService{store: store, log: orNop(log)}
}

func (s *facilityService) List(ctx context.Context) ([]model.Facility, error) {
	facilities, err := s.store.Facilities().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list facilities: %w", err)
	}
	return nonNil(facilities), nil
}

func (s *facilityService) Create(ctx context.Context, actor Actor, name, icon string) (*model.Facility, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("name is required")
	}
	facility := &model.Facility{Name: name, Icon: strings.TrimSpace(icon)}
	if err := s.store.Facilities().Create(ctx, facility); err != nil {
		return nil, fmt.Errorf("create facility: %w", err)
	}
	s.log.Info("facility created", zap.String("facility_id", facility.ID.String()), zap.String("name", name))
	return facility, nil
}

func (s *facilityService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.store.Facilities().Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("facility deleted", zap.String("facility_id", id.String()), zap.String("actor_id", actor.ID.String()))
	return nil
}
