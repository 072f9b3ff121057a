package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alcyxob/gym-dashboard/internal/config"
	"alcyxob/gym-dashboard/internal/domain"
	"alcyxob/gym-dashboard/internal/state"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrInvalidCredentials   = errors.New("name, email and password cannot be empty")
)

// AuthService registers users, checks credentials and issues tokens.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (domain.User, error)
	CreateStaff(ctx context.Context, name, email, password string, role domain.Role) (domain.User, error)
	Login(ctx context.Context, email, password string) (token string, user domain.User, err error)
	Logout(ctx context.Context)
	EnsureAdmin(ctx context.Context, seed config.SeedConfig) error
	GetJWTSecret() string
}

// authService implements the AuthService interface.
type authService struct {
	store         *state.Store
	jwtSecret     string
	jwtExpiration time.Duration
	log           *zap.Logger
}

// NewAuthService creates a new instance of authService.
func NewAuthService(store *state.Store, jwtSecret string, jwtExpiration time.Duration, logger *zap.Logger) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour * 1
	}
	return &authService{
		store:         store,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		log:           logger,
	}
}

// Register creates a client account with a Pending membership.
func (s *authService) Register(ctx context.Context, name, email, password string) (domain.User, error) {
	return s.create(ctx, name, email, password, domain.RoleClient)
}

// CreateStaff lets an administrator add an account of any role.
func (s *authService) CreateStaff(ctx context.Context, name, email, password string, role domain.Role) (domain.User, error) {
	return s.create(ctx, name, email, password, role)
}

func (s *authService) create(ctx context.Context, name, email, password string, role domain.Role) (domain.User, error) {
	if name == "" || email == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, ErrHashingFailed
	}

	user, err := s.store.CreateUser(ctx, domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, state.ErrUserAlreadyExists) {
			return domain.User{}, ErrUserAlreadyExists
		}
		return domain.User{}, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(role)))
	user.PasswordHash = ""
	return user, nil
}

// Login authenticates, issues a JWT and records the dashboard session.
func (s *authService) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	if email == "" || password == "" {
		return "", domain.User{}, ErrAuthenticationFailed
	}

	user, ok := s.store.FindUserByEmail(email)
	if !ok {
		return "", domain.User{}, ErrAuthenticationFailed
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domain.User{}, ErrAuthenticationFailed
	}

	token, err := s.generateJWT(user)
	if err != nil {
		s.log.Error("token generation failed", zap.String("user_id", user.ID), zap.Error(err))
		return "", domain.User{}, ErrTokenGeneration
	}

	s.store.SetSession(ctx, user)
	user.PasswordHash = ""
	return token, user, nil
}

// Logout clears the recorded session. Issued tokens stay valid until they expire.
func (s *authService) Logout(ctx context.Context) {
	s.store.ClearSession(ctx)
}

// EnsureAdmin creates the seed administrator when no admin exists yet.
func (s *authService) EnsureAdmin(ctx context.Context, seed config.SeedConfig) error {
	if s.store.HasRole(domain.RoleAdmin) {
		return nil
	}
	if seed.AdminEmail == "" || seed.AdminPassword == "" {
		return fmt.Errorf("no admin account exists and seed credentials are not configured")
	}
	name := seed.AdminName
	if name == "" {
		name = "Administrator"
	}
	admin, err := s.create(ctx, name, seed.AdminEmail, seed.AdminPassword, domain.RoleAdmin)
	if err != nil {
		return fmt.Errorf("seeding admin: %w", err)
	}
	s.log.Warn("seeded admin account; change its password", zap.String("email", admin.Email))
	return nil
}

// --- JWT Helper ---

// Claims is the JWT payload.
type Claims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// generateJWT creates a new JWT token for the given user.
func (s *authService) generateJWT(user domain.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "gym-dashboard",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// GetJWTSecret returns the JWT secret for middleware authentication
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
