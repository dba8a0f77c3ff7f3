package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "edulist/internal/errors"
	"edulist/internal/model"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name         string
		entity       EntityType
		current      model.Status
		decision     string
		role         model.Role
		wantErr      error
		wantTo       model.Status
		wantCascades []Cascade
	}{
		{
			name:         "approve pending institute cascades to owner",
			entity:       EntityInstitute,
			current:      model.StatusPending,
			decision:     "approve",
			role:         model.RoleAdmin,
			wantTo:       model.StatusApproved,
			wantCascades: []Cascade{CascadeOwnerStatus},
		},
		{
			name:         "reject pending institute accepts status spelling",
			entity:       EntityInstitute,
			current:      model.StatusPending,
			decision:     "Rejected",
			role:         model.RoleAdmin,
			wantTo:       model.StatusRejected,
			wantCascades: []Cascade{CascadeOwnerStatus},
		},
		{
			name:         "approve review recomputes rating",
			entity:       EntityReview,
			current:      model.StatusPending,
			decision:     "approved",
			role:         model.RoleAdmin,
			wantTo:       model.StatusApproved,
			wantCascades: []Cascade{CascadeRecomputeRating},
		},
		{
			name:     "approve user is a direct write",
			entity:   EntityUser,
			current:  model.StatusPending,
			decision: "approve",
			role:     model.RoleAdmin,
			wantTo:   model.StatusApproved,
		},
		{
			name:     "non admin is forbidden",
			entity:   EntityInstitute,
			current:  model.StatusPending,
			decision: "approve",
			role:     model.RoleInstitute,
			wantErr:  apperrors.ErrForbidden,
		},
		{
			name:     "unknown decision",
			entity:   EntityReview,
			current:  model.StatusPending,
			decision: "maybe",
			role:     model.RoleAdmin,
			wantErr:  apperrors.ErrInvalidDecision,
		},
		{
			name:     "re-approving is already decided",
			entity:   EntityInstitute,
			current:  model.StatusApproved,
			decision: "approve",
			role:     model.RoleAdmin,
			wantErr:  apperrors.ErrAlreadyDecided,
		},
		{
			name:     "no un-reject path",
			entity:   EntityUser,
			current:  model.StatusRejected,
			decision: "approve",
			role:     model.RoleAdmin,
			wantErr:  apperrors.ErrAlreadyDecided,
		},
		{
			name:     "corrupt stored status",
			entity:   EntityUser,
			current:  model.Status("verified"),
			decision: "approve",
			role:     model.RoleAdmin,
			wantErr:  apperrors.ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Transition(tt.entity, tt.current, tt.decision, tt.role)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTo, plan.To)
			assert.Equal(t, tt.current, plan.From)
			assert.Equal(t, tt.wantCascades, plan.Cascades)
			assert.Equal(t, len(tt.wantCascades) > 0, plan.Transactional())
		})
	}
}

func TestTransition_ReviewVisibility(t *testing.T) {
	approve, err := Transition(EntityReview, model.StatusPending, "approve", model.RoleAdmin)
	require.NoError(t, err)
	require.NotNil(t, approve.Active)
	assert.True(t, *approve.Active)

	reject, err := Transition(EntityReview, model.StatusPending, "reject", model.RoleAdmin)
	require.NoError(t, err)
	require.NotNil(t, reject.Active)
	assert.False(t, *reject.Active)
	assert.Equal(t, "Review rejected", reject.Message())
}

func TestTransition_InvalidDecisionCarriesValue(t *testing.T) {
	_, err := Transition(EntityInstitute, model.StatusPending, "archive", model.RoleAdmin)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"archive"`)
}

func TestParseEntityType(t *testing.T) {
	for in, want := range map[string]EntityType{
		"institute":  EntityInstitute,
		"Institutes": EntityInstitute,
		"users":      EntityUser,
		"review":     EntityReview,
	} {
		got, err := ParseEntityType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseEntityType("courses")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCanAdvanceEnquiry(t *testing.T) {
	assert.True(t, CanAdvanceEnquiry(model.EnquiryStatusNew, model.EnquiryStatusContacted))
	assert.True(t, CanAdvanceEnquiry(model.EnquiryStatusNew, model.EnquiryStatusResolved))
	assert.True(t, CanAdvanceEnquiry(model.EnquiryStatusContacted, model.EnquiryStatusResolved))
	assert.False(t, CanAdvanceEnquiry(model.EnquiryStatusResolved, model.EnquiryStatusNew))
	assert.False(t, CanAdvanceEnquiry(model.EnquiryStatusContacted, model.EnquiryStatusNew))
	assert.False(t, CanAdvanceEnquiry(model.EnquiryStatusNew, model.EnquiryStatusNew))
}

func TestParseEnquiryStatus(t *testing.T) {
	s, err := ParseEnquiryStatus("in-progress")
	require.NoError(t, err)
	assert.Equal(t, model.EnquiryStatusContacted, s)

	s, err = ParseEnquiryStatus("Closed")
	require.NoError(t, err)
	assert.Equal(t, model.EnquiryStatusResolved, s)

	_, err = ParseEnquiryStatus("lost")
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
}
