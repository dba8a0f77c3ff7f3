package router_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"edulist/internal/auth"
	"edulist/internal/handler"
	"edulist/internal/metrics"
	"edulist/internal/model"
	"edulist/internal/repository/memstore"
	"edulist/internal/router"
	"edulist/internal/service"
)

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

type testServer struct {
	t     *testing.T
	e     *echo.Echo
	store *memstore.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memstore.New()
	c := &memCache{data: map[string][]byte{}}
	log := zap.NewNop()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	authService := service.NewAuthService(store, auth.NewJWTService("test-secret"), auth.NewTokenStore(c), log)
	userService := service.NewUserService(store, c, log)
	listing := service.NewListingService(store, c, 0, log)
	institutes := service.NewInstituteService(store, c, log)
	courses := service.NewCourseService(store)
	reviews := service.NewReviewService(store, c, log)
	enquiries := service.NewEnquiryService(store)
	analytics := service.NewAnalyticsService(store)
	moderation := service.NewModerationService(store, c, m, log, 0)
	facilities := service.NewFacilityService(store, log)

	e := echo.New()
	router.Register(e, router.Handlers{
		Auth:      handler.NewAuthHandler(authService, userService),
		User:      handler.NewUserHandler(userService),
		Institute: handler.NewInstituteHandler(listing, institutes, courses, reviews, analytics),
		Course:    handler.NewCourseHandler(courses),
		Review:    handler.NewReviewHandler(reviews),
		Enquiry:   handler.NewEnquiryHandler(enquiries),
		Facility:  handler.NewFacilityHandler(facilities),
		Admin: handler.NewAdminHandler(handler.AdminServices{
			Moderation: moderation,
			Analytics:  analytics,
			Listing:    listing,
			Users:      userService,
			Reviews:    reviews,
			Enquiries:  enquiries,
		}),
		Health: handler.NewHealthHandler(
			map[string]handler.Pinger{"store": handler.PingFunc(func(context.Context) error { return nil })},
			map[string]handler.Pinger{"cache": handler.PingFunc(func(context.Context) error { return errors.New("down") })},
		),
	}, router.Options{Auth: authService, Metrics: m, Gatherer: reg, Logger: log})

	return &testServer{t: t, e: e, store: store}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var payload string
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		payload = string(raw)
	}
	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

func (s *testServer) seedAdmin() {
	s.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin-pass"), bcrypt.MinCost)
	require.NoError(s.t, err)
	require.NoError(s.t, s.store.Users().Create(context.Background(), &model.User{
		Name: "Admin", Email: "admin@example.com", PasswordHash: string(hash),
		Role: model.RoleAdmin, Status: model.StatusPending, IsActive: true,
	}))
}

func (s *testServer) loginTokens(email, password string) handler.AuthResponse {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	var resp handler.AuthResponse
	decode(s.t, rec, &resp)
	return resp
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	return s.loginTokens(email, password).AccessToken
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	decode(t, rec, &body)
	return body.Code
}

func TestModerationFlow(t *testing.T) {
	s := newTestServer(t)
	s.seedAdmin()
	adminToken := s.login("admin@example.com", "admin-pass")

	rec := s.do(http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name": "Green Valley School", "email": "gv@example.com", "password": "secret123", "role": "institute",
		"institute": map[string]interface{}{"category": "school", "city": "Delhi", "address": "Ring Road"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "gv@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "ACCOUNT_NOT_APPROVED", errorCode(t, rec))

	rec = s.do(http.MethodGet, "/api/admin/pending/institutes", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var pending service.PendingList
	decode(t, rec, &pending)
	require.Equal(t, 1, pending.Count)
	instID := pending.Institutes[0].ID.String()

	rec = s.do(http.MethodPut, "/api/admin/institutes/"+instID+"/status", adminToken, map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result service.ModerationResult
	decode(t, rec, &result)
	assert.Equal(t, "Institute approved", result.Message)

	rec = s.do(http.MethodPut, "/api/admin/institutes/"+instID+"/status", adminToken, map[string]string{"decision": "reject"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ALREADY_DECIDED", errorCode(t, rec))

	ownerToken := s.login("gv@example.com", "secret123")
	rec = s.do(http.MethodGet, "/api/institutes/me", ownerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/institutes?category=school&city=delhi", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page service.InstitutePage
	decode(t, rec, &page)
	assert.EqualValues(t, 1, page.Total)

	rec = s.do(http.MethodPut, "/api/admin/institutes/"+instID+"/featured", adminToken, map[string]bool{"featured": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.do(http.MethodGet, "/api/institutes/featured", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var featured []model.Institute
	decode(t, rec, &featured)
	assert.Len(t, featured, 1)
}

func TestAuthorization(t *testing.T) {
	s := newTestServer(t)
	s.seedAdmin()

	rec := s.do(http.MethodGet, "/api/admin/analytics", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, rec))

	rec = s.do(http.MethodGet, "/api/admin/analytics", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	hash, err := bcrypt.GenerateFromPassword([]byte("pw123456"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, s.store.Users().Create(context.Background(), &model.User{
		Name: "Student", Email: "student@example.com", PasswordHash: string(hash),
		Role: model.RoleUser, Status: model.StatusApproved, IsActive: true,
	}))
	token := s.login("student@example.com", "pw123456")

	rec = s.do(http.MethodGet, "/api/admin/analytics", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(http.MethodPost, "/api/courses", token, map[string]string{"title": "x"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/logout", token, map[string]string{})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	adminToken := s.login("admin@example.com", "admin-pass")
	rec = s.do(http.MethodGet, "/api/admin/analytics", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats service.DashboardStats
	decode(t, rec, &stats)
	assert.EqualValues(t, 1, stats.UserCount)
}

func TestRefreshTokenIsNotABearer(t *testing.T) {
	s := newTestServer(t)
	s.seedAdmin()
	tokens := s.loginTokens("admin@example.com", "admin-pass")

	rec := s.do(http.MethodGet, "/api/admin/analytics", tokens.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/refresh", "", map[string]string{"refresh_token": tokens.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", errorCode(t, rec))

	rec = s.do(http.MethodPost, "/api/auth/logout", tokens.AccessToken, map[string]string{"refresh_token": tokens.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/admin/analytics", tokens.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = s.do(http.MethodPost, "/api/auth/refresh", "", map[string]string{"refresh_token": tokens.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeletedAdminLosesAccess(t *testing.T) {
	s := newTestServer(t)
	s.seedAdmin()
	token := s.login("admin@example.com", "admin-pass")

	admin, err := s.store.Users().FindByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	require.NoError(t, s.store.Users().Delete(context.Background(), admin.ID))

	rec := s.do(http.MethodGet, "/api/admin/analytics", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestValidation(t *testing.T) {
	s := newTestServer(t)
	s.seedAdmin()
	adminToken := s.login("admin@example.com", "admin-pass")

	rec := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{"name": "x", "email": "not-an-email", "password": "secret123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))

	rec = s.do(http.MethodPut, "/api/admin/institutes/not-a-uuid/status", adminToken, map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_UUID", errorCode(t, rec))

	rec = s.do(http.MethodGet, "/api/admin/pending/courses", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/institutes?page=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnonymousEnquiry(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	owner := &model.User{Name: "Owner", Email: "owner@example.com", Role: model.RoleInstitute, Status: model.StatusApproved, IsActive: true}
	require.NoError(t, s.store.Users().Create(ctx, owner))
	inst := &model.Institute{UserID: owner.ID, Name: "Inst", Category: model.CategoryCollege, Status: model.StatusApproved}
	require.NoError(t, s.store.Institutes().Create(ctx, inst))

	rec := s.do(http.MethodPost, "/api/enquiries", "", map[string]string{
		"institute_id": inst.ID.String(), "name": "Visitor", "email": "v@example.com", "phone": "555", "message": "Open day?",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// an invalid token on the optional route is treated as anonymous
	rec = s.do(http.MethodPost, "/api/enquiries", "garbage", map[string]string{
		"institute_id": inst.ID.String(), "name": "Visitor", "email": "v@example.com", "phone": "555", "message": "Again",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestFacilityCatalogue(t *testing.T) {
	s := newTestServer(t)
	s.seedAdmin()
	adminToken := s.login("admin@example.com", "admin-pass")

	for _, name := range []string{"Library", "Auditorium"} {
		rec := s.do(http.MethodPost, "/api/facilities", adminToken, map[string]string{"name": name})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	rec := s.do(http.MethodPost, "/api/facilities", adminToken, map[string]string{"name": "library"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = s.do(http.MethodPost, "/api/facilities", "", map[string]string{"name": "Pool"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/facilities", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []model.Facility
	decode(t, rec, &list)
	require.Len(t, list, 2)
	assert.Equal(t, "Auditorium", list[0].Name)

	rec = s.do(http.MethodDelete, "/api/facilities/"+list[0].ID.String(), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodDelete, "/api/facilities/"+list[0].ID.String(), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var health handler.HealthResponse
	decode(t, rec, &health)
	assert.Equal(t, "degraded", health.Status)
	assert.Equal(t, "ok", health.Checks["store"])

	rec = s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "edulist_http_requests_total")
}
