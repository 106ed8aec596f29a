package port

import (
	"context"

	"github.com/arklim/account-otp-service/internal/core/domain"
)

// EventPublisher emits account lifecycle events to downstream consumers.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishUserVerified(ctx context.Context, event domain.UserVerifiedEvent) error
	PublishUserLogin(ctx context.Context, event domain.UserLoginEvent) error
}
