package port

import "context"

// CodeHasher produces and checks salted one-way hashes of OTP codes. Hashing
// is CPU-bound; implementations run it off the request path.
type CodeHasher interface {
	HashCode(ctx context.Context, code string) (string, error)
	// CompareCode reports whether candidate matches the stored hash using a
	// constant-time comparison. A mismatch is (false, nil), not an error.
	CompareCode(ctx context.Context, hashedCode, candidate string) (bool, error)
}

// PasswordHasher mirrors CodeHasher for account credentials.
type PasswordHasher interface {
	HashPassword(ctx context.Context, password string) (string, error)
	ComparePassword(ctx context.Context, hashedPassword, candidate string) (bool, error)
}

// CodeGenerator produces fixed-width decimal one-time codes.
type CodeGenerator interface {
	Generate() (string, error)
	Digits() int
}
