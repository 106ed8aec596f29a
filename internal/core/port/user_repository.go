package port

import (
	"context"

	"github.com/arklim/account-otp-service/internal/core/domain"
)

// UserRepository persists durable account records.
type UserRepository interface {
	// Create inserts a new account row. Returns repository.ErrDuplicate when
	// the email is already taken.
	Create(ctx context.Context, user domain.User) error
	// GetByEmail retrieves an account by its canonical identity. Returns
	// repository.ErrNotFound when no row exists.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// MarkVerified flips is_verified exactly once using a conditional update.
	// Returns false when the account was already verified or does not exist.
	MarkVerified(ctx context.Context, id string) (bool, error)
}
