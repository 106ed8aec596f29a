package port

import "context"

// OTPStore exposes the key-value operations backing the OTP lifecycle. All
// implementations must provide per-identity atomicity: the conditional
// create, the TTL application, and the attempt increments may not be
// emulated with read-modify-write sequences.
type OTPStore interface {
	// SetCode writes the hashed code with a zero attempt counter and the TTL
	// in a single atomic round trip. Returns false without error when a live
	// record already exists for the identity. Returns
	// repository.ErrOTPCreationFailed when the write did not apply.
	SetCode(ctx context.Context, identity, hashedCode string) (bool, error)
	// GetCode returns the stored hash. Returns repository.ErrNotFound when no
	// live record exists, covering both "never created" and "expired".
	GetCode(ctx context.Context, identity string) (string, error)
	// Delete removes the record. Returns repository.ErrOTPRemovalFailed when
	// nothing was deleted.
	Delete(ctx context.Context, identity string) error
	// Exists reports whether a live record exists for the identity.
	Exists(ctx context.Context, identity string) (bool, error)
	// IncrementAttempts atomically bumps the attempt counter. Returns
	// repository.ErrOTPAttemptTracking on store-level failures.
	IncrementAttempts(ctx context.Context, identity string) error
	// GetAttempts returns the current attempt count, or -1 when no record
	// exists. The sentinel is not an error.
	GetAttempts(ctx context.Context, identity string) (int, error)
}
