package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	apperrors "edulist/internal/errors"
	"edulist/internal/model"
	"edulist/internal/repository"
	"edulist/internal/workflow"
)

// EnquiryInput is a contact request. Name and email default to the caller's
// profile when the caller is signed in.
type EnquiryInput struct {
	InstituteID uuid.UUID
	CourseID    *uuid.UUID
	Name        string
	Email       string
	Phone       string
	Message     string
}

// EnquiryService manages enquiries and their follow-up.
type EnquiryService interface {
	// Create accepts anonymous enquiries when actor is nil.
	Create(ctx context.Context, actor *Actor, in EnquiryInput) (*model.Enquiry, error)
	ListForOwner(ctx context.Context, actor Actor, status string) ([]model.Enquiry, error)
	ListMine(ctx context.Context, actor Actor) ([]model.Enquiry, error)
	ListAll(ctx context.Context, actor Actor) ([]model.Enquiry, error)
	Respond(ctx context.Context, actor Actor, id uuid.UUID, response string) (*model.Enquiry, error)
	Advance(ctx context.Context, actor Actor, id uuid.UUID, status string) (*model.Enquiry, error)
}

type enquiryService struct {
	store repository.Store
}

// NewEnquiryService creates an enquiry service.
func NewEnquiryService(store repository.Store) EnquiryService {
	return &enquiryService{store: store}
}

func (s *enquiryService) Create(ctx context.Context, actor *Actor, in EnquiryInput) (*model.Enquiry, error) {
	inst, err := s.store.Institutes().FindByID(ctx, in.InstituteID)
	if err != nil {
		return nil, err
	}
	if inst.Status != model.StatusApproved {
		return nil, apperrors.ErrInstituteNotFound
	}
	if in.CourseID != nil {
		course, err := s.store.Courses().FindByID(ctx, *in.CourseID)
		if err != nil {
			return nil, err
		}
		if course.InstituteID != inst.ID {
			return nil, validationError("course does not belong to the institute")
		}
	}

	enquiry := &model.Enquiry{
		InstituteID: inst.ID,
		CourseID:    in.CourseID,
		Name:        strings.TrimSpace(in.Name),
		Email:       model.NormalizeEmail(in.Email),
		Phone:       strings.TrimSpace(in.Phone),
		Message:     strings.TrimSpace(in.Message),
		Status:      model.EnquiryStatusNew,
	}
	if actor != nil {
		user, err := s.store.Users().FindByID(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		enquiry.UserID = &user.ID
		if enquiry.Name == "" {
			enquiry.Name = user.Name
		}
		if enquiry.Email == "" {
			enquiry.Email = user.Email
		}
		if enquiry.Phone == "" {
			enquiry.Phone = user.Phone
		}
	}
	if enquiry.Name == "" || enquiry.Email == "" || enquiry.Phone == "" || enquiry.Message == "" {
		return nil, validationError("name, email, phone and message are required")
	}

	if err := s.store.Enquiries().Create(ctx, enquiry); err != nil {
		return nil, fmt.Errorf("create enquiry: %w", err)
	}
	return enquiry, nil
}

func (s *enquiryService) ownInstitute(ctx context.Context, actor Actor) (*model.Institute, error) {
	if err := requireRole(actor, model.RoleInstitute); err != nil {
		return nil, err
	}
	return s.store.Institutes().FindByUserID(ctx, actor.ID)
}

func (s *enquiryService) ownEnquiry(ctx context.Context, actor Actor, id uuid.UUID) (*model.Enquiry, error) {
	inst, err := s.ownInstitute(ctx, actor)
	if err != nil {
		return nil, err
	}
	enquiry, err := s.store.Enquiries().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if enquiry.InstituteID != inst.ID {
		return nil, fmt.Errorf("%w: enquiry belongs to another institute", apperrors.ErrForbidden)
	}
	return enquiry, nil
}

func (s *enquiryService) ListForOwner(ctx context.Context, actor Actor, status string) ([]model.Enquiry, error) {
	inst, err := s.ownInstitute(ctx, actor)
	if err != nil {
		return nil, err
	}
	filter := repository.EnquiryFilter{InstituteID: inst.ID}
	if strings.TrimSpace(status) != "" {
		st, err := workflow.ParseEnquiryStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}
	enquiries, err := s.store.Enquiries().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list enquiries: %w", err)
	}
	return nonNil(enquiries), nil
}

func (s *enquiryService) ListMine(ctx context.Context, actor Actor) ([]model.Enquiry, error) {
	enquiries, err := s.store.Enquiries().List(ctx, repository.EnquiryFilter{UserID: actor.ID})
	if err != nil {
		return nil, fmt.Errorf("list enquiries: %w", err)
	}
	return nonNil(enquiries), nil
}

func (s *enquiryService) ListAll(ctx context.Context, actor Actor) ([]model.Enquiry, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	enquiries, err := s.store.Enquiries().List(ctx, repository.EnquiryFilter{})
	if err != nil {
		return nil, fmt.Errorf("list enquiries: %w", err)
	}
	return nonNil(enquiries), nil
}

// Respond records the owner's response. A new enquiry becomes contacted;
// later states keep their status.
func (s *enquiryService) Respond(ctx context.Context, actor Actor, id uuid.UUID, response string) (*model.Enquiry, error) {
	enquiry, err := s.ownEnquiry(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	response = strings.TrimSpace(response)
	if response == "" {
		return nil, validationError("response is required")
	}

	to := enquiry.Status
	if to == model.EnquiryStatusNew {
		to = model.EnquiryStatusContacted
	}
	applied, err := s.store.Enquiries().UpdateFollowUp(ctx, id, enquiry.Status, to, &response)
	if err != nil {
		return nil, fmt.Errorf("respond to enquiry: %w", err)
	}
	// MySQL reports zero affected rows for a write that changes nothing.
	if !applied && to != enquiry.Status {
		return nil, fmt.Errorf("%w: enquiry changed concurrently", apperrors.ErrAlreadyDecided)
	}
	return s.store.Enquiries().FindByID(ctx, id)
}

// Advance moves the enquiry forward in its follow-up machine.
func (s *enquiryService) Advance(ctx context.Context, actor Actor, id uuid.UUID, status string) (*model.Enquiry, error) {
	to, err := workflow.ParseEnquiryStatus(status)
	if err != nil {
		return nil, err
	}
	enquiry, err := s.ownEnquiry(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !workflow.CanAdvanceEnquiry(enquiry.Status, to) {
		return nil, fmt.Errorf("%w: cannot move enquiry from %s to %s", apperrors.ErrInvalidStatus, enquiry.Status, to)
	}
	applied, err := s.store.Enquiries().UpdateFollowUp(ctx, id, enquiry.Status, to, nil)
	if err != nil {
		return nil, fmt.Errorf("advance enquiry: %w", err)
	}
	if !applied {
		return nil, fmt.Errorf("%w: enquiry changed concurrently", apperrors.ErrAlreadyDecided)
	}
	return s.store.Enquiries().FindByID(ctx, id)
}
