package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/account-otp-service/internal/core/domain"
)

// ErrorResponse represents a generic error payload with the request ID for debugging.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// NewErrorResponse creates an error response with the request ID from context.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	requestID, _ := c.Get("request_id")
	requestIDStr, _ := requestID.(string)

	return ErrorResponse{
		Error:     errorMsg,
		RequestID: requestIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserSummary describes a minimal view of an account returned by the API.
type UserSummary struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	IsActive   bool   `json:"is_active"`
	IsVerified bool   `json:"is_verified"`
}

func newUserSummary(user *domain.User) UserSummary {
	return UserSummary{
		ID:         user.ID,
		Email:      user.Email,
		IsActive:   user.IsActive,
		IsVerified: user.IsVerified,
	}
}

// RegisterRequest defines the account registration payload.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse contains registration results and next steps.
type RegisterResponse struct {
	User      UserSummary `json:"user"`
	Message   string      `json:"message"`
	ExpiresAt *string     `json:"expires_at,omitempty"`
	// DevCode is only exposed in development mode. In production the code is
	// sent via email only.
	DevCode *string `json:"dev_code,omitempty"`
}

// VerifyRequest holds an email plus verification code payload.
type VerifyRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// RegisterVerifyResponse is returned after a successful registration verification.
type RegisterVerifyResponse struct {
	Message string      `json:"message"`
	User    UserSummary `json:"user"`
}

// LoginRequest defines the credential-check payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginPendingResponse is returned when credentials match and a login code is in flight.
type LoginPendingResponse struct {
	Message   string  `json:"message"`
	ExpiresAt *string `json:"expires_at,omitempty"`
	DevCode   *string `json:"dev_code,omitempty"`
}

// LoginVerifyResponse carries the access token issued after the OTP step.
type LoginVerifyResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int         `json:"expires_in"`
	User        UserSummary `json:"user"`
}

// OTPRequestPayload defines the standalone code issuance payload.
type OTPRequestPayload struct {
	Email string `json:"email" binding:"required"`
}

// OTPRequestResponse is returned after a standalone code issuance.
type OTPRequestResponse struct {
	Message   string  `json:"message"`
	ExpiresAt *string `json:"expires_at,omitempty"`
	DevCode   *string `json:"dev_code,omitempty"`
}

func formatExpiry(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	formatted := t.UTC().Format(time.RFC3339)
	return &formatted
}
