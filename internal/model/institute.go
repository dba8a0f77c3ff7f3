package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Institute is a listed educational provider owned by one institute account.
type Institute struct {
	ID          uuid.UUID                   `json:"id" gorm:"type:char(36);primaryKey"`
	UserID      uuid.UUID                   `json:"user_id" gorm:"type:char(36);not null;uniqueIndex"`
	Name        string                      `json:"name" gorm:"size:255;not null;index"`
	Category    Category                    `json:"category" gorm:"type:varchar(20);not null;index"`
	Affiliation string                      `json:"affiliation,omitempty" gorm:"size:255"`
	Address     string                      `json:"address" gorm:"size:512;not null"`
	City        string                      `json:"city" gorm:"size:128;not null;index"`
	State       string                      `json:"state" gorm:"size:128;not null"`
	Phone       string                      `json:"phone" gorm:"size:32;not null"`
	Email       string                      `json:"email" gorm:"size:255;not null"`
	Website     string                      `json:"website,omitempty" gorm:"size:255"`
	Description string                      `json:"description" gorm:"type:text"`
	LogoURL     string                      `json:"logo_url,omitempty" gorm:"size:512"`
	Images      datatypes.JSONSlice[string] `json:"images" swaggertype:"array,string"`
	Facilities  datatypes.JSONSlice[string] `json:"facilities" swaggertype:"array,string"`
	Status      Status                      `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	IsFeatured  bool                        `json:"is_featured" gorm:"not null;default:false;index"`
	Rating      float64                     `json:"rating" gorm:"not null;default:0;index"`
	ReviewCount int                         `json:"review_count" gorm:"not null;default:0"`
	CreatedAt   time.Time                   `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time                   `json:"updated_at"`

	// Derived, never stored.
	IsVerified bool        `json:"is_verified" gorm:"-"`
	OwnerInfo  *PublicUser `json:"owner,omitempty" gorm:"-"`

	// Relations
	Owner *User `json:"-" gorm:"foreignKey:UserID"`
}

// InstituteSummary is the subset of institute fields shown next to its owner.
type InstituteSummary struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category Category  `json:"category"`
	City     string    `json:"city"`
	Status   Status    `json:"status"`
}

// Summary returns the institute's public summary.
func (i *Institute) Summary() *InstituteSummary {
	if i == nil {
		return nil
	}
	return &InstituteSummary{ID: i.ID, Name: i.Name, Category: i.Category, City: i.City, Status: i.Status}
}

// BeforeCreate sets UUID before creating the record.
func (i *Institute) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// AfterFind fills the derived fields.
func (i *Institute) AfterFind(tx *gorm.DB) error {
	i.Derive()
	return nil
}

// Derive recomputes fields that are derived from stored state.
func (i *Institute) Derive() {
	i.IsVerified = i.Status == StatusApproved
	if i.Owner != nil {
		i.OwnerInfo = i.Owner.Public()
	}
}
