package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a user's rating of an institute. One per (user, institute).
type Review struct {
	ID          uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	UserID      uuid.UUID  `json:"user_id" gorm:"type:char(36);not null;uniqueIndex:idx_review_user_institute"`
	InstituteID uuid.UUID  `json:"institute_id" gorm:"type:char(36);not null;uniqueIndex:idx_review_user_institute;index"`
	CourseID    *uuid.UUID `json:"course_id,omitempty" gorm:"type:char(36)"`
	Rating      int        `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Text        string     `json:"text" gorm:"type:text"`
	Status      Status     `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	IsActive    bool       `json:"is_active" gorm:"not null;default:true"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Derived, never stored.
	ReviewerName  string `json:"reviewer_name,omitempty" gorm:"-"`
	InstituteName string `json:"institute_name,omitempty" gorm:"-"`

	// Relations
	User      *User      `json:"-" gorm:"foreignKey:UserID"`
	Institute *Institute `json:"-" gorm:"foreignKey:InstituteID"`
}

// BeforeCreate sets UUID before creating the record.
func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// AfterFind fills the derived fields.
func (r *Review) AfterFind(tx *gorm.DB) error {
	r.Derive()
	return nil
}

// Derive copies display names from loaded relations.
func (r *Review) Derive() {
	if r.User != nil {
		r.ReviewerName = r.User.Name
	}
	if r.Institute != nil {
		r.InstituteName = r.Institute.Name
	}
}

// Counts reports whether the review contributes to its institute's rating.
func (r *Review) Counts() bool {
	return r.Status == StatusApproved && r.IsActive
}

// ValidRating reports whether v is an allowed star rating.
func ValidRating(v int) bool {
	return v >= MinRating && v <= MaxRating
}
