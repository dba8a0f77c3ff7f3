package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Course is an offering of one institute.
type Course struct {
	ID          uuid.UUID                   `json:"id" gorm:"type:char(36);primaryKey"`
	InstituteID uuid.UUID                   `json:"institute_id" gorm:"type:char(36);not null;index"`
	Title       string                      `json:"title" gorm:"size:255;not null"`
	Description string                      `json:"description" gorm:"type:text"`
	Duration    string                      `json:"duration" gorm:"size:64"`
	Fees        decimal.Decimal             `json:"fees" gorm:"type:decimal(12,2);not null;default:0"`
	Category    string                      `json:"category" gorm:"size:64"`
	ImageURL    string                      `json:"image_url,omitempty" gorm:"size:512"`
	Facilities  datatypes.JSONSlice[string] `json:"facilities" swaggertype:"array,string"`
	Syllabus    datatypes.JSONSlice[string] `json:"syllabus" swaggertype:"array,string"`
	CreatedAt   time.Time                   `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
