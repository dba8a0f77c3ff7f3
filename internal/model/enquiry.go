package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Enquiry is a contact request from a prospective student to an institute.
type Enquiry struct {
	ID          uuid.UUID     `json:"id" gorm:"type:char(36);primaryKey"`
	InstituteID uuid.UUID     `json:"institute_id" gorm:"type:char(36);not null;index"`
	UserID      *uuid.UUID    `json:"user_id,omitempty" gorm:"type:char(36);index"`
	CourseID    *uuid.UUID    `json:"course_id,omitempty" gorm:"type:char(36)"`
	Name        string        `json:"name" gorm:"size:255;not null"`
	Email       string        `json:"email" gorm:"size:255;not null"`
	Phone       string        `json:"phone" gorm:"size:32;not null"`
	Message     string        `json:"message" gorm:"type:text;not null"`
	Status      EnquiryStatus `json:"status" gorm:"type:varchar(20);not null;default:'new';index"`
	Response    string        `json:"response,omitempty" gorm:"type:text"`
	CreatedAt   time.Time     `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (e *Enquiry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
