package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/arklim/account-otp-service/internal/core/port"
	"github.com/arklim/account-otp-service/internal/infra/logger"
	"github.com/arklim/account-otp-service/internal/repository"
)

// OTPLifecycle owns the state machine for one outstanding code per identity:
// absent -> pending(attempts) -> consumed. It never sees plaintext codes on
// the issue path; callers hand it pre-hashed values.
type OTPLifecycle struct {
	store       port.OTPStore
	hasher      port.CodeHasher
	maxAttempts int
	log         *zap.Logger
}

// NewOTPLifecycle constructs the lifecycle engine.
func NewOTPLifecycle(store port.OTPStore, hasher port.CodeHasher, maxAttempts int, log *zap.Logger) *OTPLifecycle {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &OTPLifecycle{
		store:       store,
		hasher:      hasher,
		maxAttempts: maxAttempts,
		log:         log,
	}
}

// Issue transitions an identity from absent to pending(0). A live record is
// never silently replaced: replacing a code means Clear followed by Issue.
func (l *OTPLifecycle) Issue(ctx context.Context, identity, hashedCode string) error {
	exists, err := l.store.Exists(ctx, identity)
	if err != nil {
		return fmt.Errorf("check otp existence: %w", err)
	}
	if exists {
		return ErrOTPAlreadyActive
	}

	created, err := l.store.SetCode(ctx, identity, hashedCode)
	if err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	if !created {
		// Lost the race against a concurrent Issue for the same identity.
		return ErrOTPAlreadyActive
	}

	l.log.Debug("otp issued", zap.String("identity", logger.MaskEmail(identity)))
	return nil
}

// Verify checks a candidate code against the pending record. Every call
// counts toward the attempt budget, including the one that succeeds. A
// mismatch is (false, nil); errors are reserved for exhausted budgets,
// missing records, and store failures.
func (l *OTPLifecycle) Verify(ctx context.Context, identity, candidateCode string) (bool, error) {
	attempts, err := l.store.GetAttempts(ctx, identity)
	if err != nil {
		return false, fmt.Errorf("read otp attempts: %w", err)
	}
	if attempts >= l.maxAttempts {
		return false, ErrOTPAttemptsExceeded
	}

	hashedCode, err := l.store.GetCode(ctx, identity)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrOTPVerificationFailed
		}
		return false, fmt.Errorf("read otp code: %w", err)
	}

	if err := l.store.IncrementAttempts(ctx, identity); err != nil {
		return false, fmt.Errorf("track otp attempt: %w", err)
	}

	matched, err := l.hasher.CompareCode(ctx, hashedCode, candidateCode)
	if err != nil {
		return false, fmt.Errorf("compare otp code: %w", err)
	}
	if !matched {
		return false, nil
	}

	if err := l.store.Delete(ctx, identity); err != nil {
		return false, fmt.Errorf("consume otp: %w", err)
	}

	l.log.Debug("otp consumed", zap.String("identity", logger.MaskEmail(identity)))
	return true, nil
}

// Clear removes any pending record for the identity. Clearing an absent
// record is not an error; the caller only wants the identity back in the
// absent state.
func (l *OTPLifecycle) Clear(ctx context.Context, identity string) error {
	exists, err := l.store.Exists(ctx, identity)
	if err != nil {
		return fmt.Errorf("check otp existence: %w", err)
	}
	if !exists {
		return nil
	}

	if err := l.store.Delete(ctx, identity); err != nil {
		if errors.Is(err, repository.ErrOTPRemovalFailed) {
			// Expired between the existence check and the delete.
			return nil
		}
		return fmt.Errorf("clear otp: %w", err)
	}

	return nil
}
