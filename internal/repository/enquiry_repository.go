package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "edulist/internal/errors"
	"edulist/internal/model"
)

// EnquiryFilter selects enquiries. Zero values match everything.
type EnquiryFilter struct {
	InstituteID uuid.UUID
	UserID      uuid.UUID
	Status      model.EnquiryStatus
}

// EnquiryRepository defines enquiry persistence operations.
type EnquiryRepository interface {
	Create(ctx context.Context, enquiry *model.Enquiry) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Enquiry, error)
	// UpdateFollowUp moves the enquiry from one follow-up status to another,
	// optionally storing a response. It reports false when the enquiry was not
	// in the from status.
	UpdateFollowUp(ctx context.Context, id uuid.UUID, from, to model.EnquiryStatus, response *string) (bool, error)
	DeleteByInstitute(ctx context.Context, instituteID uuid.UUID) error
	List(ctx context.Context, filter EnquiryFilter) ([]model.Enquiry, error)
	Count(ctx context.Context, filter EnquiryFilter) (int64, error)
}

type enquiryRepository struct {
	db *gorm.DB
}

// NewEnquiryRepository creates a new enquiry repository.
func NewEnquiryRepository(db *gorm.DB) EnquiryRepository {
	return &enquiryRepository{db: db}
}

// Create creates a new enquiry.
func (r *enquiryRepository) Create(ctx context.Context, enquiry *model.Enquiry) error {
	return translate(r.db.WithContext(ctx).Create(enquiry).Error, apperrors.ErrEnquiryNotFound)
}

// FindByID finds an enquiry by ID.
func (r *enquiryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Enquiry, error) {
	var enquiry model.Enquiry
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&enquiry).Error; err != nil {
		return nil, translate(err, apperrors.ErrEnquiryNotFound)
	}
	return &enquiry, nil
}

// UpdateFollowUp performs a conditional follow-up write.
func (r *enquiryRepository) UpdateFollowUp(ctx context.Context, id uuid.UUID, from, to model.EnquiryStatus, response *string) (bool, error) {
	updates := map[string]interface{}{"status": to}
	if response != nil {
		updates["response"] = *response
	}
	res := r.db.WithContext(ctx).Model(&model.Enquiry{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// DeleteByInstitute removes every enquiry of an institute.
func (r *enquiryRepository) DeleteByInstitute(ctx context.Context, instituteID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("institute_id = ?", instituteID).Delete(&model.Enquiry{}).Error
}

// List lists enquiries newest first.
func (r *enquiryRepository) List(ctx context.Context, filter EnquiryFilter) ([]model.Enquiry, error) {
	var enquiries []model.Enquiry
	if err := r.scope(ctx, filter).Order("created_at DESC").Find(&enquiries).Error; err != nil {
		return nil, err
	}
	return enquiries, nil
}

// Count counts enquiries matching filter.
func (r *enquiryRepository) Count(ctx context.Context, filter EnquiryFilter) (int64, error) {
	var n int64
	if err := r.scope(ctx, filter).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *enquiryRepository) scope(ctx context.Context, filter EnquiryFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Enquiry{})
	if filter.InstituteID != uuid.Nil {
		q = q.Where("institute_id = ?", filter.InstituteID)
	}
	if filter.UserID != uuid.Nil {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	return q
}
