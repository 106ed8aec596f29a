package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/account-otp-service/internal/core/domain"
	"github.com/arklim/account-otp-service/internal/core/port"
	"github.com/arklim/account-otp-service/internal/infra/logger"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for
// development environments without a broker.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID, email string, at time.Time) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.String("email", logger.MaskEmail(email)),
		zap.Time("timestamp", at.UTC()),
	)
}

// PublishUserRegistered logs user.registered events.
func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	p.logEvent("user.registered", event.UserID, event.Email, event.RegisteredAt)
	return nil
}

// PublishUserVerified logs user.verified events.
func (p *StubPublisher) PublishUserVerified(_ context.Context, event domain.UserVerifiedEvent) error {
	p.logEvent("user.verified", event.UserID, event.Email, event.VerifiedAt)
	return nil
}

// PublishUserLogin logs user.login events.
func (p *StubPublisher) PublishUserLogin(_ context.Context, event domain.UserLoginEvent) error {
	p.logEvent("user.login", event.UserID, event.Email, event.LoginAt)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
