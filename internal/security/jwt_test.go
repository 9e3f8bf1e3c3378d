package security_test

import (
	"testing"
	"time"

	"github.com/Rrens/deskflow/internal/domain"
	"github.com/Rrens/deskflow/internal/security"
	"github.com/google/uuid"
)

func TestJWTManager_GenerateAndValidate(t *testing.T) {
	manager := security.NewJWTManager("test-secret-key-with-32-chars!!", 24*time.Hour)

	user := &domain.User{
		ID:    uuid.NewString(),
		Email: "agent@example.com",
		Role:  domain.RoleAgent,
	}

	token, err := manager.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	if token == "" {
		t.Error("token is empty")
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}

	if claims.UserID != user.ID {
		t.Errorf("user ID mismatch: got %v, want %v", claims.UserID, user.ID)
	}
	if claims.Email != user.Email {
		t.Errorf("email mismatch: got %v, want %v", claims.Email, user.Email)
	}
	if claims.Role != domain.RoleAgent {
		t.Errorf("role mismatch: got %v, want %v", claims.Role, domain.RoleAgent)
	}
}

func TestJWTManager_ValidateToken_Invalid(t *testing.T) {
	manager := security.NewJWTManager("test-secret-key-with-32-chars!!", 24*time.Hour)

	if _, err := manager.ValidateToken("not-a-token"); err == nil {
		t.Error("expected error for malformed token")
	}

	other := security.NewJWTManager("a-completely-different-secret!!!", 24*time.Hour)
	token, err := other.GenerateToken(&domain.User{ID: uuid.NewString(), Email: "x@example.com", Role: domain.RoleCustomer})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err := manager.ValidateToken(token); err == nil {
		t.Error("expected error for token signed with another secret")
	}
}

func TestJWTManager_ExpiredToken(t *testing.T) {
	manager := security.NewJWTManager("test-secret-key-with-32-chars!!", -time.Minute)

	token, err := manager.GenerateToken(&domain.User{ID: uuid.NewString(), Email: "x@example.com", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err := manager.ValidateToken(token); err == nil {
		t.Error("expected error for expired token")
	}
}
