package service_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "edulist/internal/errors"
	"edulist/internal/model"
	"edulist/internal/service"
)

func TestFacility_CatalogueSortedByName(t *testing.T) {
	f := newFixture(t)
	svc := service.NewFacilityService(f.store, nil)

	empty, err := svc.List(f.ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, name := range []string{"Library", "  Hostel ", "Wi-Fi", "Canteen"} {
		_, err := svc.Create(f.ctx, adminActor, name, "")
		require.NoError(t, err)
	}

	list, err := svc.List(f.ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(list))
	for _, fac := range list {
		names = append(names, fac.Name)
	}
	assert.Equal(t, []string{"Canteen", "Hostel", "Library", "Wi-Fi"}, names)
}

func TestFacility_CreateRules(t *testing.T) {
	f := newFixture(t)
	svc := service.NewFacilityService(f.store, nil)
	owner := actorOf(f.user(model.RoleInstitute, model.StatusApproved))

	created, err := svc.Create(f.ctx, adminActor, "Smart Classroom", "chalkboard")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "chalkboard", created.Icon)

	tests := []struct {
		name  string
		actor service.Actor
		fac   string
		want  error
	}{
		{"not admin", owner, "Pool", apperrors.ErrForbidden},
		{"blank name", adminActor, "   ", apperrors.ErrValidation},
		{"duplicate name", adminActor, "smart classroom", apperrors.ErrDuplicateEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(f.ctx, tt.actor, tt.fac, "")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFacility_Delete(t *testing.T) {
	f := newFixture(t)
	svc := service.NewFacilityService(f.store, nil)
	created, err := svc.Create(f.ctx, adminActor, "Transport", "")
	require.NoError(t, err)

	err = svc.Delete(f.ctx, actorOf(f.user(model.RoleUser, model.StatusApproved)), created.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	require.NoError(t, svc.Delete(f.ctx, adminActor, created.ID))
	assert.ErrorIs(t, svc.Delete(f.ctx, adminActor, created.ID), apperrors.ErrNotFound)

	f.store.FailOn("facilities.List", errors.New("connection reset"))
	_, err = svc.List(f.ctx)
	assert.Error(t, err)
}
