package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/account-otp-service/internal/core/port"
	"github.com/arklim/account-otp-service/internal/infra/logger"
)

const deliveryTimeout = 30 * time.Second

// OTPIssued describes a successfully issued code. The plaintext code is
// carried only so transports can expose it in development environments; it
// must never be logged or returned to production clients.
type OTPIssued struct {
	Email     string
	Code      string
	ExpiresAt time.Time
}

// OTPService is the public face of the OTP subsystem: it validates input,
// generates and hashes codes, drives the lifecycle engine, and dispatches
// delivery out of band.
type OTPService struct {
	lifecycle *OTPLifecycle
	generator port.CodeGenerator
	hasher    port.CodeHasher
	mailer    port.Mailer
	ttl       time.Duration
	log       *zap.Logger
}

// NewOTPService constructs the OTP orchestration service.
func NewOTPService(
	lifecycle *OTPLifecycle,
	generator port.CodeGenerator,
	hasher port.CodeHasher,
	mailer port.Mailer,
	ttl time.Duration,
	log *zap.Logger,
) *OTPService {
	if log == nil {
		log = zap.NewNop()
	}

	return &OTPService{
		lifecycle: lifecycle,
		generator: generator,
		hasher:    hasher,
		mailer:    mailer,
		ttl:       ttl,
		log:       log,
	}
}

// RequestCode issues a fresh code for the identity and dispatches it via the
// delivery channel. Propagates ErrOTPAlreadyActive when a code is in flight.
func (s *OTPService) RequestCode(ctx context.Context, email string) (*OTPIssued, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	return s.issueAndDispatch(ctx, email)
}

// ReissueCode discards any pending code for the identity before issuing a
// fresh one. Used when a stale code must not leak through a repeated flow,
// e.g. re-registration of an unverified account.
func (s *OTPService) ReissueCode(ctx context.Context, email string) (*OTPIssued, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	if err := s.lifecycle.Clear(ctx, email); err != nil {
		return nil, err
	}

	return s.issueAndDispatch(ctx, email)
}

// ConfirmCode verifies a candidate code for the identity. Returns nil on
// success, ErrOTPIncorrect on mismatch, and the engine's errors otherwise.
func (s *OTPService) ConfirmCode(ctx context.Context, email, code string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if err := validateCode(code, s.generator.Digits()); err != nil {
		return err
	}

	matched, err := s.lifecycle.Verify(ctx, email, code)
	if err != nil {
		return err
	}
	if !matched {
		return ErrOTPIncorrect
	}

	return nil
}

func (s *OTPService) issueAndDispatch(ctx context.Context, email string) (*OTPIssued, error) {
	code, err := s.generator.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate otp code: %w", err)
	}

	// Hashing runs on the worker pool so the CPU cost never stalls
	// concurrently scheduled requests.
	hashedCode, err := s.hasher.HashCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("hash otp code: %w", err)
	}

	if err := s.lifecycle.Issue(ctx, email, hashedCode); err != nil {
		return nil, err
	}

	s.dispatch(ctx, email, code)

	return &OTPIssued{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().UTC().Add(s.ttl),
	}, nil
}

// dispatch hands the plaintext code to the delivery channel without blocking
// the request. A failed delivery is logged, never surfaced; the record's TTL
// is the only cleanup mechanism.
func (s *OTPService) dispatch(ctx context.Context, email, code string) {
	if s.mailer == nil {
		return
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
	go func() {
		defer cancel()
		if err := s.mailer.SendOTPCode(sendCtx, email, code); err != nil {
			s.log.Error("failed to deliver otp code",
				zap.String("email", logger.MaskEmail(email)),
				zap.Error(err),
			)
		}
	}()
}
