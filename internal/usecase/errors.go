package usecase

import "errors"

var (
	// ErrOTPAlreadyActive indicates a live code already exists for the identity.
	ErrOTPAlreadyActive = errors.New("an otp is already active for this identity")
	// ErrOTPVerificationFailed indicates no live code exists, covering both
	// "expired" and "never requested" without distinguishing them.
	ErrOTPVerificationFailed = errors.New("otp verification failed: expired or not requested")
	// ErrOTPAttemptsExceeded indicates the verification attempt budget is spent.
	ErrOTPAttemptsExceeded = errors.New("too many otp verification attempts")
	// ErrOTPIncorrect indicates the candidate code did not match the stored hash.
	ErrOTPIncorrect = errors.New("incorrect otp code")
	// ErrInvalidCredentials covers both unknown identities and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrDuplicateAccount indicates the email is already registered and verified.
	ErrDuplicateAccount = errors.New("email is already registered")
	// ErrAlreadyVerified indicates the account no longer needs verification.
	ErrAlreadyVerified = errors.New("account is already verified")
	// ErrAccountNotFound indicates no account exists for the identity.
	ErrAccountNotFound = errors.New("account not found")
)

// ValidationError reports malformed caller input. It is raised before any
// store interaction takes place.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with the given user-facing message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}
