package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "edulist/internal/errors"
	"edulist/internal/model"
)

// FacilityRepository defines facility catalogue persistence.
type FacilityRepository interface {
	Create(ctx context.Context, facility *model.Facility) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns the catalogue sorted by name.
	List(ctx context.Context) ([]model.Facility, error)
}

type facilityRepository struct {
	db *gorm.DB
}

// NewFacilityRepository creates a new facility repository.
func NewFacilityRepository(db *gorm.DB) FacilityRepository {
	return &facilityRepository{db: db}
}

// Create adds a facility. Names are unique.
func (r *facilityRepository) Create(ctx context.Context, facility *model.Facility) error {
	return translate(r.db.WithContext(ctx).Create(facility).Error, apperrors.ErrFacilityNotFound)
}

// Delete removes a facility permanently.
func (r *facilityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Facility{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrFacilityNotFound
	}
	return nil
}

func (r *facilityRepository) List(ctx context.Context) ([]model.Facility, error) {
	var facilities []model.Facility
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&facilities).Error; err != nil {
		return nil, err
	}
	return facilities, nil
}
