package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"edulist/internal/model"
	"edulist/internal/repository/memstore"
	"edulist/internal/service"
)

var adminActor = service.Actor{ID: uuid.New(), Role: model.RoleAdmin}

// fixture seeds a memstore directly, bypassing the services.
type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *memstore.Store
	seq   int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{t: t, ctx: context.Background(), store: memstore.New()}
}

func (f *fixture) user(role model.Role, status model.Status) *model.User {
	f.t.Helper()
	f.seq++
	u := &model.User{
		Name:     "user",
		Email:    uuid.NewString() + "@example.com",
		Phone:    "555-0100",
		Role:     role,
		Status:   status,
		IsActive: true,
	}
	require.NoError(f.t, f.store.Users().Create(f.ctx, u))
	return u
}

func actorOf(u *model.User) service.Actor {
	return service.Actor{ID: u.ID, Role: u.Role}
}

// institute creates an owner account and its institute, both with status.
func (f *fixture) institute(status model.Status, mutate ...func(*model.Institute)) *model.Institute {
	f.t.Helper()
	owner := f.user(model.RoleInstitute, status)
	inst := &model.Institute{
		UserID:   owner.ID,
		Name:     "Institute",
		Category: model.CategorySchool,
		Address:  "Main Road",
		City:     "Pune",
		State:    "Maharashtra",
		Phone:    owner.Phone,
		Email:    owner.Email,
		Status:   status,
	}
	for _, m := range mutate {
		m(inst)
	}
	require.NoError(f.t, f.store.Institutes().Create(f.ctx, inst))
	return inst
}

func (f *fixture) review(instituteID uuid.UUID, rating int, status model.Status) *model.Review {
	f.t.Helper()
	author := f.user(model.RoleUser, model.StatusApproved)
	r := &model.Review{
		UserID:      author.ID,
		InstituteID: instituteID,
		Rating:      rating,
		Status:      status,
		IsActive:    status != model.StatusRejected,
	}
	require.NoError(f.t, f.store.Reviews().Create(f.ctx, r))
	return r
}

func (f *fixture) reloadInstitute(id uuid.UUID) *model.Institute {
	f.t.Helper()
	inst, err := f.store.Institutes().FindByID(f.ctx, id)
	require.NoError(f.t, err)
	return inst
}

func (f *fixture) reloadUser(id uuid.UUID) *model.User {
	f.t.Helper()
	u, err := f.store.Users().FindByID(f.ctx, id)
	require.NoError(f.t, err)
	return u
}

// recordingCache is an in-memory cache.Cache that remembers deletions.
type recordingCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
	sets    int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{data: map[string][]byte{}}
}

func (c *recordingCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *recordingCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.sets++
	return nil
}

func (c *recordingCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

func (c *recordingCache) deletions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.deleted)
}
