package port

import "context"

// Mailer delivers one-time codes out of band. Implementations own their own
// retry policy; callers treat delivery as fire-and-forget.
type Mailer interface {
	SendOTPCode(ctx context.Context, email, code string) error
}
