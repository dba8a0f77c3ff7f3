package model

import "strings"

// Role is the closed set of account roles.
type Role string

const (
	RoleUser      Role = "user"
	RoleInstitute Role = "institute"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleInstitute, RoleAdmin:
		return true
	}
	return false
}

// ParseRole normalises s into a Role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// Status is the moderation state shared by users, institutes and reviews.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// ParseStatus normalises v into a Status.
func ParseStatus(v string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(v)))
	return s, s.Valid()
}

// Category classifies an institute.
type Category string

const (
	CategorySchool     Category = "school"
	CategoryCollege    Category = "college"
	CategoryCoaching   Category = "coaching"
	CategoryPreschool  Category = "preschool"
	CategoryUniversity Category = "university"
)

// Categories lists every institute category.
var Categories = []Category{
	CategorySchool,
	CategoryCollege,
	CategoryCoaching,
	CategoryPreschool,
	CategoryUniversity,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// EnquiryStatus is the follow-up state of an enquiry.
type EnquiryStatus string

const (
	EnquiryStatusNew       EnquiryStatus = "new"
	EnquiryStatusContacted EnquiryStatus = "contacted"
	EnquiryStatusResolved  EnquiryStatus = "resolved"
)

// Valid reports whether s is a known follow-up status.
func (s EnquiryStatus) Valid() bool {
	switch s {
	case EnquiryStatusNew, EnquiryStatusContacted, EnquiryStatusResolved:
		return true
	}
	return false
}
