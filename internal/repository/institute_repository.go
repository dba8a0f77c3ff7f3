package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "edulist/internal/errors"
	"edulist/internal/model"
)

// InstituteFilter selects institutes for listings. Zero values match
// everything; the caller decides which status is eligible.
type InstituteFilter struct {
	Search    string
	Category  model.Category
	City      string
	MinRating float64
	Status    model.Status
	Featured  bool
	Offset    int
	Limit     int
}

// InstituteRepository defines institute persistence operations.
type InstituteRepository interface {
	Create(ctx context.Context, institute *model.Institute) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Institute, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Institute, error)
	UpdateProfile(ctx context.Context, institute *model.Institute) error
	// UpdateStatus moves the institute from one status to another. It
	// reports false when the institute was not in the from status.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.Status) (bool, error)
	SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error
	UpdateRating(ctx context.Context, id uuid.UUID, rating float64, reviewCount int) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns matching institutes newest first, honouring Offset/Limit.
	List(ctx context.Context, filter InstituteFilter) ([]model.Institute, error)
	// Count ignores Offset/Limit.
	Count(ctx context.Context, filter InstituteFilter) (int64, error)
}

// profileColumns are the fields an owner may change.
var profileColumns = []string{
	"name", "category", "affiliation", "address", "city", "state",
	"phone", "email", "website", "description", "logo_url", "images", "facilities",
}

type instituteRepository struct {
	db *gorm.DB
}

// NewInstituteRepository creates a new institute repository.
func NewInstituteRepository(db *gorm.DB) InstituteRepository {
	return &instituteRepository{db: db}
}

// Create creates a new institute.
func (r *instituteRepository) Create(ctx context.Context, institute *model.Institute) error {
	return translate(r.db.WithContext(ctx).Omit("Owner").Create(institute).Error, apperrors.ErrInstituteNotFound)
}

// FindByID finds an institute by ID with its owner's public fields.
func (r *instituteRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Institute, error) {
	var institute model.Institute
	if err := r.db.WithContext(ctx).Preload("Owner", publicUserColumns).
		Where("id = ?", id).First(&institute).Error; err != nil {
		return nil, translate(err, apperrors.ErrInstituteNotFound)
	}
	return &institute, nil
}

// FindByUserID finds the institute owned by a user.
func (r *instituteRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Institute, error) {
	var institute model.Institute
	if err := r.db.WithContext(ctx).Preload("Owner", publicUserColumns).
		Where("user_id = ?", userID).First(&institute).Error; err != nil {
		return nil, translate(err, apperrors.ErrInstituteNotFound)
	}
	return &institute, nil
}

// UpdateProfile saves owner editable fields only.
func (r *instituteRepository) UpdateProfile(ctx context.Context, institute *model.Institute) error {
	res := r.db.WithContext(ctx).Model(&model.Institute{ID: institute.ID}).
		Select(profileColumns).
		Updates(institute)
	if res.Error != nil {
		return res.Error
	}
	return nil
}

// UpdateStatus performs a conditional status write.
func (r *instituteRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.Status) (bool, error) {
	updates := map[string]interface{}{"status": to}
	if to != model.StatusApproved {
		updates["is_featured"] = false
	}
	res := r.db.WithContext(ctx).Model(&model.Institute{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// SetFeatured toggles the featured flag.
func (r *instituteRepository) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error {
	return r.db.WithContext(ctx).Model(&model.Institute{}).
		Where("id = ?", id).
		Update("is_featured", featured).Error
}

// UpdateRating stores the recomputed aggregate rating.
func (r *instituteRepository) UpdateRating(ctx context.Context, id uuid.UUID, rating float64, reviewCount int) error {
	return r.db.WithContext(ctx).Model(&model.Institute{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"rating": rating, "review_count": reviewCount}).Error
}

// Delete removes an institute permanently.
func (r *instituteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Institute{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrInstituteNotFound
	}
	return nil
}

// List lists institutes for a filter.
func (r *instituteRepository) List(ctx context.Context, filter InstituteFilter) ([]model.Institute, error) {
	q := r.scope(ctx, filter).Preload("Owner", publicUserColumns).Order("created_at DESC")
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var institutes []model.Institute
	if err := q.Find(&institutes).Error; err != nil {
		return nil, err
	}
	return institutes, nil
}

// Count counts institutes for a filter.
func (r *instituteRepository) Count(ctx context.Context, filter InstituteFilter) (int64, error) {
	var n int64
	if err := r.scope(ctx, filter).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *instituteRepository) scope(ctx context.Context, filter InstituteFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Institute{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		q = q.Where("LOWER(name) LIKE ?", containsPattern(filter.Search))
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.City != "" {
		q = q.Where("LOWER(city) LIKE ?", containsPattern(filter.City))
	}
	if filter.MinRating > 0 {
		q = q.Where("rating >= ?", filter.MinRating)
	}
	if filter.Featured {
		q = q.Where("is_featured = ?", true)
	}
	return q
}
