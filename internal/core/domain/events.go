package domain

import "time"

// UserRegisteredEvent is emitted when a new account row is created.
type UserRegisteredEvent struct {
	EventID      string
	UserID       string
	Email        string
	RegisteredAt time.Time
	Metadata     map[string]any
}

// UserVerifiedEvent is emitted when a pending account is verified via OTP.
type UserVerifiedEvent struct {
	EventID    string
	UserID     string
	Email      string
	VerifiedAt time.Time
	Metadata   map[string]any
}

// UserLoginEvent is emitted after a login completes its OTP step.
type UserLoginEvent struct {
	EventID  string
	UserID   string
	Email    string
	LoginAt  time.Time
	Metadata map[string]any
}
