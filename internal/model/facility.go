package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Facility is an entry of the admin-curated amenity catalogue that
// institutes and courses pick from.
type Facility struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Icon      string    `json:"icon,omitempty" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (f *Facility) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
