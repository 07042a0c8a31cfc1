package ports

import (
	"context"

	"github.com/campus-market/trading-api/internal/core/domain"
)

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	Name      string
	StudentID string
}

// AuthService handles registration, login and token verification.
type AuthService interface {
	// Register creates an account and returns it with a freshly signed token.
	Register(ctx context.Context, input RegisterInput) (*domain.User, string, error)
	// Login verifies credentials and returns a signed token plus the user.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	// VerifyToken validates a token and returns the user id it carries.
	VerifyToken(token string) (string, error)
}

// UserService exposes profile operations for the authenticated user.
type UserService interface {
	Profile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*domain.User, error)
}
