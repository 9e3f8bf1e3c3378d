package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/deskflow/internal/domain"
	"github.com/Rrens/deskflow/internal/security"
	"github.com/Rrens/deskflow/internal/stubserver/repository/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// Sentinel errors the handlers map onto HTTP statuses
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("access denied")
)

// Seed credentials for the development admin account
const (
	SeedAdminEmail    = "admin@example.com"
	SeedAdminPassword = "admin123"
)

// AuthService handles authentication operations
type AuthService struct {
	userRepo   *sqlite.UserRepository
	jwtManager *security.JWTManager
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *sqlite.UserRepository, jwtManager *security.JWTManager) *AuthService {
	return &AuthService{userRepo: userRepo, jwtManager: jwtManager}
}

// Register creates a customer account and returns a session for it
func (s *AuthService) Register(ctx context.Context, input domain.RegisterInput) (*domain.Session, error) {
	exists, err := s.userRepo.EmailExists(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:        uuid.NewString(),
		Name:      input.Name,
		Email:     input.Email,
		Role:      domain.RoleCustomer,
		Phone:     input.Phone,
		CreatedAt: time.Now(),
	}

	if err := s.userRepo.Create(ctx, user, string(hashed)); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.sessionFor(user)
}

// Login authenticates a user and returns a session
func (s *AuthService) Login(ctx context.Context, input domain.Credentials) (*domain.Session, error) {
	user, hash, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.sessionFor(user)
}

// GetUserByID retrieves a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// UpdateProfile replaces the editable fields of the user's profile
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, input domain.ProfileUpdate) (*domain.User, error) {
	if _, err := s.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.userRepo.UpdateProfile(ctx, userID, input)
}

// SeedAdmin creates the development admin account if it does not exist
func (s *AuthService) SeedAdmin(ctx context.Context) error {
	exists, err := s.userRepo.EmailExists(ctx, SeedAdminEmail)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(SeedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	admin := &domain.User{
		ID:        uuid.NewString(),
		Name:      "Admin",
		Email:     SeedAdminEmail,
		Role:      domain.RoleAdmin,
		CreatedAt: time.Now(),
	}
	if err := s.userRepo.Create(ctx, admin, string(hashed)); err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}

	log.Info().Str("email", SeedAdminEmail).Msg("Seeded development admin account")
	return nil
}

func (s *AuthService) sessionFor(user *domain.User) (*domain.Session, error) {
	token, err := s.jwtManager.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &domain.Session{Token: token, User: user}, nil
}
