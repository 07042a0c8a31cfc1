package ports

import (
	"context"
	"time"

	"github.com/campus-market/trading-api/internal/core/domain"
)

// ProfilePatch carries the mutable profile fields for an update. Nil fields
// are left untouched. Identity fields (username, email, student id) and role
// are not reachable through this path.
type ProfilePatch struct {
	Name      *string
	Avatar    *string
	Bio       *string
	Location  *string
	Phone     *string
	Interests []string
}

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// ExistsIdentity reports whether any user already holds one of the given
	// identity values. Checked as a single $or query.
	ExistsIdentity(ctx context.Context, username, email, studentID string) (bool, error)
	UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (*domain.User, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}
