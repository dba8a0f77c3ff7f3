package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "edulist/internal/errors"
	"edulist/internal/model"
	"edulist/internal/service"
)

func TestEnquiry_AnonymousAndSignedIn(t *testing.T) {
	f := newFixture(t)
	inst := f.institute(model.StatusApproved)
	svc := service.NewEnquiryService(f.store)

	anon, err := svc.Create(f.ctx, nil, service.EnquiryInput{
		InstituteID: inst.ID, Name: "Ravi", Email: "RAVI@example.com", Phone: "555", Message: "Admissions?",
	})
	require.NoError(t, err)
	assert.Nil(t, anon.UserID)
	assert.Equal(t, "ravi@example.com", anon.Email)
	assert.Equal(t, model.EnquiryStatusNew, anon.Status)

	user := f.user(model.RoleUser, model.StatusApproved)
	actor := actorOf(user)
	signed, err := svc.Create(f.ctx, &actor, service.EnquiryInput{InstituteID: inst.ID, Message: "Fees?"})
	require.NoError(t, err)
	require.NotNil(t, signed.UserID)
	assert.Equal(t, user.Email, signed.Email)

	_, err = svc.Create(f.ctx, nil, service.EnquiryInput{InstituteID: inst.ID, Message: "no contact"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	mine, err := svc.ListMine(f.ctx, actor)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestEnquiry_FollowUpOnlyMovesForward(t *testing.T) {
	f := newFixture(t)
	inst := f.institute(model.StatusApproved)
	owner := service.Actor{ID: inst.UserID, Role: model.RoleInstitute}
	svc := service.NewEnquiryService(f.store)

	enquiry, err := svc.Create(f.ctx, nil, service.EnquiryInput{
		InstituteID: inst.ID, Name: "A", Email: "a@example.com", Phone: "1", Message: "hi",
	})
	require.NoError(t, err)

	responded, err := svc.Respond(f.ctx, owner, enquiry.ID, "call us")
	require.NoError(t, err)
	assert.Equal(t, model.EnquiryStatusContacted, responded.Status)
	assert.Equal(t, "call us", responded.Response)

	// responding again keeps the status
	again, err := svc.Respond(f.ctx, owner, enquiry.ID, "reminder")
	require.NoError(t, err)
	assert.Equal(t, model.EnquiryStatusContacted, again.Status)

	_, err = svc.Advance(f.ctx, owner, enquiry.ID, "new")
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)

	resolved, err := svc.Advance(f.ctx, owner, enquiry.ID, "completed")
	require.NoError(t, err)
	assert.Equal(t, model.EnquiryStatusResolved, resolved.Status)

	_, err = svc.Advance(f.ctx, owner, enquiry.ID, "contacted")
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
}

func TestEnquiry_OwnershipAndFilters(t *testing.T) {
	f := newFixture(t)
	inst := f.institute(model.StatusApproved)
	other := f.institute(model.StatusApproved)
	svc := service.NewEnquiryService(f.store)

	enquiry, err := svc.Create(f.ctx, nil, service.EnquiryInput{
		InstituteID: inst.ID, Name: "A", Email: "a@example.com", Phone: "1", Message: "hi",
	})
	require.NoError(t, err)

	_, err = svc.Respond(f.ctx, service.Actor{ID: other.UserID, Role: model.RoleInstitute}, enquiry.ID, "x")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = svc.Advance(f.ctx, service.Actor{ID: uuid.New(), Role: model.RoleUser}, enquiry.ID, "resolved")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	owner := service.Actor{ID: inst.UserID, Role: model.RoleInstitute}
	list, err := svc.ListForOwner(f.ctx, owner, "new")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = svc.ListForOwner(f.ctx, owner, "resolved")
	require.NoError(t, err)
	assert.Empty(t, list)
	_, err = svc.ListForOwner(f.ctx, owner, "lost")
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
}
