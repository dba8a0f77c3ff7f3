package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edulist/internal/model"
)

func testUser() *model.User {
	return &model.User{ID: uuid.New(), Email: "asha@example.com", Role: model.RoleInstitute}
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret")
	user := testUser()

	token, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, model.RoleInstitute, claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.InDelta(t, AccessTokenExpiry.Seconds(), claims.Remaining().Seconds(), 5)

	id, err := claims.Subject()
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
}

func TestJWTService_RefreshTokenID(t *testing.T) {
	svc := NewJWTService("test-secret")

	tokenID, token, err := svc.GenerateRefreshToken(testUser())
	require.NoError(t, err)

	extracted, err := svc.ExtractTokenID(token)
	require.NoError(t, err)
	assert.Equal(t, tokenID, extracted)
}

func TestJWTService_TokenTypes(t *testing.T) {
	svc := NewJWTService("test-secret")
	user := testUser()

	access, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	_, refresh, err := svc.GenerateRefreshToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateTokenType(access, TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, TokenAccess, claims.Type)
	claims, err = svc.ValidateTokenType(refresh, TokenRefresh)
	require.NoError(t, err)
	assert.Equal(t, TokenRefresh, claims.Type)

	_, err = svc.ValidateTokenType(refresh, TokenAccess)
	assert.ErrorIs(t, err, ErrWrongTokenType)
	_, err = svc.ValidateTokenType(access, TokenRefresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)
	_, err = svc.ExtractTokenID(access)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	untyped := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:           user.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{ID: "jti"},
	})
	signed, err := untyped.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = svc.ValidateTokenType(signed, TokenAccess)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService("test-secret")

	other, err := NewJWTService("other-secret").GenerateAccessToken(testUser())
	require.NoError(t, err)
	_, err = svc.ValidateToken(other)
	assert.Error(t, err, "wrong signature")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(signed)
	assert.Error(t, err, "expired")

	badSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: "42"})
	signed, err = badSubject.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(signed)
	assert.Error(t, err, "subject must be a uuid")

	_, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}

type mapCache map[string][]byte

func (m mapCache) Get(_ context.Context, key string) ([]byte, error) { return m[key], nil }
func (m mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m[key] = value
	return nil
}
func (m mapCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m, k)
	}
	return nil
}

func TestTokenStore(t *testing.T) {
	ctx := context.Background()
	store := NewTokenStore(mapCache{})
	userID := uuid.New()

	_, err := store.GetRefreshToken(ctx, "missing")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	require.NoError(t, store.StoreRefreshToken(ctx, "jti-1", userID, time.Hour))
	got, err := store.GetRefreshToken(ctx, "jti-1")
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	require.NoError(t, store.DeleteRefreshToken(ctx, "jti-1"))
	_, err = store.GetRefreshToken(ctx, "jti-1")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	blacklisted, err := store.IsAccessTokenBlacklisted(ctx, "access-1")
	require.NoError(t, err)
	assert.False(t, blacklisted)

	require.NoError(t, store.BlacklistAccessToken(ctx, "access-1", time.Minute))
	blacklisted, err = store.IsAccessTokenBlacklisted(ctx, "access-1")
	require.NoError(t, err)
	assert.True(t, blacklisted)

	require.NoError(t, store.BlacklistAccessToken(ctx, "expired", 0))
	blacklisted, _ = store.IsAccessTokenBlacklisted(ctx, "expired")
	assert.False(t, blacklisted, "already expired tokens need no entry")
}
