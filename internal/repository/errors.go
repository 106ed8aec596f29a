package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist. For OTP
	// records this covers both "never created" and "expired"; callers must
	// not be able to tell the two apart.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate indicates a uniqueness constraint was violated.
	ErrDuplicate = errors.New("repository: duplicate record")
	// ErrOTPCreationFailed indicates the OTP record write did not apply.
	ErrOTPCreationFailed = errors.New("repository: otp creation failed")
	// ErrOTPRemovalFailed indicates the OTP record delete removed nothing.
	ErrOTPRemovalFailed = errors.New("repository: otp removal failed")
	// ErrOTPAttemptTracking indicates the attempt counter update failed at
	// the store level, distinct from any business-rule failure.
	ErrOTPAttemptTracking = errors.New("repository: otp attempt tracking failed")
)
