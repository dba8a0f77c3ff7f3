package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"edulist/internal/auth"
	apperrors "edulist/internal/errors"
	"edulist/internal/model"
	"edulist/internal/repository"
)

const bcryptCost = 10

// ErrTokenRevoked is returned for blacklisted access tokens.
var ErrTokenRevoked = errors.New("token has been revoked")

// RegisterInput is a self-service registration. Institute accounts may
// submit their institute profile in the same request.
type RegisterInput struct {
	Name      string
	Email     string
	Phone     string
	Password  string
	Role      model.Role
	Institute *InstituteInput
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *model.User, err error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	// Logout deletes the refresh token and blacklists the access token
	// described by access until it expires. Either may be empty.
	Logout(ctx context.Context, refreshToken string, access *auth.Claims) error
	// Authenticate validates an access token for the HTTP middleware.
	Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error)
}

type authService struct {
	store      repository.Store
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	log        *zap.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(store repository.Store, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, log *zap.Logger) AuthService {
	return &authService{
		store:      store,
		jwtService: jwtService,
		tokenStore: tokenStore,
		log:        orNop(log),
	}
}

// Register creates a pending account with a hashed password. Admin accounts
// cannot be self-registered.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	role := in.Role
	if role == "" {
		role = model.RoleUser
	}
	if role != model.RoleUser && role != model.RoleInstitute {
		return nil, validationError("role must be user or institute")
	}
	email := model.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" || strings.TrimSpace(in.Name) == "" {
		return nil, validationError("name, email and password are required")
	}
	if in.Institute != nil && role != model.RoleInstitute {
		return nil, validationError("only institute accounts can register an institute")
	}

	existing, err := s.store.Users().FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("%w: email already registered", apperrors.ErrDuplicateEntity)
	}
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: string(hashedPassword),
		Role:         role,
		Status:       model.InitialStatus(role),
		IsActive:     true,
	}

	if in.Institute == nil {
		if err := s.store.Users().Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
	} else {
		inst, err := newInstitute(*in.Institute, user)
		if err != nil {
			return nil, err
		}
		err = s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
			if err := tx.Users().Create(ctx, user); err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			inst.UserID = user.ID
			if err := tx.Institutes().Create(ctx, inst); err != nil {
				return fmt.Errorf("create institute: %w", err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	s.log.Info("account registered", zap.String("user_id", user.ID.String()), zap.String("role", string(role)))
	return user, nil
}

// Login authenticates an account and returns access and refresh tokens.
// Credentials are checked before account state so that state is not
// disclosed to callers without the password.
func (s *authService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *model.User, err error) {
	user, err = s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", "", nil, apperrors.ErrInvalidCredentials
		}
		return "", "", nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", nil, apperrors.ErrInvalidCredentials
	}
	if err := checkAccess(user); err != nil {
		return "", "", nil, err
	}

	accessToken, err = s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return "", "", nil, fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user)
	if err != nil {
		return "", "", nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, auth.RefreshTokenExpiry); err != nil {
		return "", "", nil, fmt.Errorf("store refresh token: %w", err)
	}

	return accessToken, refreshToken, user, nil
}

// checkAccess enforces the login policy: active, and approved unless admin.
func checkAccess(user *model.User) error {
	if !user.IsActive {
		return apperrors.ErrAccountInactive
	}
	if user.EffectiveStatus() != model.StatusApproved {
		return apperrors.ErrAccountNotApproved
	}
	return nil
}

// RefreshToken validates a refresh token and returns a new access token. The
// account must still pass the login policy.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateTokenType(refreshToken, auth.TokenRefresh)
	if err != nil || claims.ID == "" {
		return "", apperrors.ErrInvalidRefreshToken
	}

	storedUserID, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil {
		return "", apperrors.ErrInvalidRefreshToken
	}
	subject, _ := claims.Subject()
	if storedUserID != subject {
		return "", apperrors.ErrInvalidRefreshToken
	}

	user, err := s.store.Users().FindByID(ctx, subject)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", apperrors.ErrInvalidRefreshToken
		}
		return "", fmt.Errorf("find user: %w", err)
	}
	if err := checkAccess(user); err != nil {
		return "", err
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string, access *auth.Claims) error {
	if refreshToken != "" {
		tokenID, err := s.jwtService.ExtractTokenID(refreshToken)
		if err != nil {
			return apperrors.ErrInvalidRefreshToken
		}
		if err := s.tokenStore.DeleteRefreshToken(ctx, tokenID); err != nil {
			return fmt.Errorf("delete refresh token: %w", err)
		}
	}
	if access != nil && access.ID != "" {
		if err := s.tokenStore.BlacklistAccessToken(ctx, access.ID, access.Remaining()); err != nil {
			return fmt.Errorf("blacklist access token: %w", err)
		}
	}
	return nil
}

// Authenticate accepts unrevoked access tokens of accounts that still pass
// the login policy. The returned claims carry the stored role.
func (s *authService) Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error) {
	claims, err := s.jwtService.ValidateTokenType(accessToken, auth.TokenAccess)
	if err != nil {
		return nil, err
	}
	revoked, err := s.tokenStore.IsAccessTokenBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	subject, _ := claims.Subject()
	user, err := s.store.Users().FindByID(ctx, subject)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrTokenRevoked
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := checkAccess(user); err != nil {
		return nil, err
	}
	claims.Role = user.Role
	claims.Email = user.Email
	return claims, nil
}
