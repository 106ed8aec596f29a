package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/account-otp-service/internal/core/domain"
	"github.com/arklim/account-otp-service/internal/core/port"
	"github.com/arklim/account-otp-service/internal/infra/logger"
	"github.com/arklim/account-otp-service/internal/repository"
)

// dummyPasswordHash keeps the login path's timing profile identical for
// unknown identities and wrong passwords: a bcrypt comparison runs either way.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// RegisterInput carries the registration payload.
type RegisterInput struct {
	Email    string
	Password string
}

// LoginInput carries the credential-check payload.
type LoginInput struct {
	Email    string
	Password string
}

// AccountService binds the OTP subsystem to account state transitions.
type AccountService struct {
	users  port.UserRepository
	otp    *OTPService
	hasher port.PasswordHasher
	events port.EventPublisher
	log    *zap.Logger
}

// NewAccountService constructs the account orchestration service.
func NewAccountService(
	users port.UserRepository,
	otp *OTPService,
	hasher port.PasswordHasher,
	events port.EventPublisher,
	log *zap.Logger,
) *AccountService {
	if log == nil {
		log = zap.NewNop()
	}

	return &AccountService{
		users:  users,
		otp:    otp,
		hasher: hasher,
		events: events,
		log:    log,
	}
}

// Register creates an unverified account (or reuses a pending one) and
// dispatches a registration code. Registration is not complete until the
// code has been issued.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*domain.User, *OTPIssued, error) {
	if err := validateEmail(input.Email); err != nil {
		return nil, nil, err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, nil, err
	}

	user, err := s.users.GetByEmail(ctx, input.Email)
	switch {
	case err == nil:
		if user.IsVerified {
			return nil, nil, ErrDuplicateAccount
		}
		// Pending account: reuse the row and replace any in-flight code so a
		// stale one cannot leak through the repeated registration.
		issued, err := s.otp.ReissueCode(ctx, user.Email)
		if err != nil {
			return nil, nil, err
		}
		return user, issued, nil
	case errors.Is(err, repository.ErrNotFound):
		// First registration for this identity.
	default:
		return nil, nil, fmt.Errorf("lookup account: %w", err)
	}

	passwordHash, err := s.hasher.HashPassword(ctx, input.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	created := domain.User{
		ID:           uuid.NewString(),
		Email:        input.Email,
		PasswordHash: passwordHash,
		IsActive:     true,
		IsVerified:   false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, created); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, nil, ErrDuplicateAccount
		}
		return nil, nil, fmt.Errorf("create account: %w", err)
	}

	issued, err := s.otp.RequestCode(ctx, created.Email)
	if err != nil {
		return nil, nil, err
	}

	s.publishRegistered(ctx, created)

	return &created, issued, nil
}

// ConfirmRegistration exchanges a valid registration code for the one-shot
// verified flip.
func (s *AccountService) ConfirmRegistration(ctx context.Context, email, code string) (*domain.User, error) {
	user, err := s.lookup(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.IsVerified {
		return nil, ErrAlreadyVerified
	}

	if err := s.otp.ConfirmCode(ctx, email, code); err != nil {
		return nil, err
	}

	flipped, err := s.users.MarkVerified(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("mark account verified: %w", err)
	}
	if !flipped {
		return nil, ErrAlreadyVerified
	}

	user.IsVerified = true
	s.publishVerified(ctx, *user)

	return user, nil
}

// Login re-issues a code gated on a password match. Unknown identities and
// wrong passwords are indistinguishable in both error and timing.
func (s *AccountService) Login(ctx context.Context, input LoginInput) (*OTPIssued, error) {
	if err := validateEmail(input.Email); err != nil {
		return nil, err
	}
	if input.Password == "" {
		return nil, NewValidationError("password is required")
	}

	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_, _ = s.hasher.ComparePassword(ctx, dummyPasswordHash, input.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	ok, err := s.hasher.ComparePassword(ctx, user.PasswordHash, input.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return s.otp.RequestCode(ctx, user.Email)
}

// ConfirmLogin exchanges a valid login code for the account entity; the
// transport layer turns it into an access token.
func (s *AccountService) ConfirmLogin(ctx context.Context, email, code string) (*domain.User, error) {
	user, err := s.lookup(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := s.otp.ConfirmCode(ctx, email, code); err != nil {
		return nil, err
	}

	s.publishLogin(ctx, *user)

	return user, nil
}

func (s *AccountService) lookup(ctx context.Context, email string) (*domain.User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	return user, nil
}

func (s *AccountService) publishRegistered(ctx context.Context, user domain.User) {
	if s.events == nil {
		return
	}

	event := domain.UserRegisteredEvent{
		EventID:      uuid.NewString(),
		UserID:       user.ID,
		Email:        user.Email,
		RegisteredAt: user.CreatedAt,
	}
	if err := s.events.PublishUserRegistered(ctx, event); err != nil {
		s.log.Error("failed to publish user registered event",
			zap.String("email", logger.MaskEmail(user.Email)),
			zap.Error(err),
		)
	}
}

func (s *AccountService) publishVerified(ctx context.Context, user domain.User) {
	if s.events == nil {
		return
	}

	event := domain.UserVerifiedEvent{
		EventID:    uuid.NewString(),
		UserID:     user.ID,
		Email:      user.Email,
		VerifiedAt: time.Now().UTC(),
	}
	if err := s.events.PublishUserVerified(ctx, event); err != nil {
		s.log.Error("failed to publish user verified event",
			zap.String("email", logger.MaskEmail(user.Email)),
			zap.Error(err),
		)
	}
}

func (s *AccountService) publishLogin(ctx context.Context, user domain.User) {
	if s.events == nil {
		return
	}

	event := domain.UserLoginEvent{
		EventID: uuid.NewString(),
		UserID:  user.ID,
		Email:   user.Email,
		LoginAt: time.Now().UTC(),
	}
	if err := s.events.PublishUserLogin(ctx, event); err != nil {
		s.log.Error("failed to publish user login event",
			zap.String("email", logger.MaskEmail(user.Email)),
			zap.Error(err),
		)
	}
}
