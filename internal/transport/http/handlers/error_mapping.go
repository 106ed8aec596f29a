package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/account-otp-service/internal/usecase"
)

// ErrorCase maps a sentinel error to an HTTP status code and response message.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

// RespondWithMappedError resolves the provided error against known cases or falls back to a generic response.
// Validation failures always map to 400 with their own message.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	var validationErr *usecase.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, validationErr.Message))
		return
	}

	for _, cs := range cases {
		if cs.Err == nil {
			continue
		}
		if errors.Is(err, cs.Err) {
			c.JSON(cs.Status, NewErrorResponse(c, cs.Message))
			return
		}
	}

	c.JSON(fallbackStatus, NewErrorResponse(c, fallbackMessage))
}

// verificationOutcome labels a failed verification for the outcome counter.
func verificationOutcome(err error) string {
	switch {
	case errors.Is(err, usecase.ErrOTPIncorrect):
		return "incorrect"
	case errors.Is(err, usecase.ErrOTPVerificationFailed):
		return "expired"
	case errors.Is(err, usecase.ErrOTPAttemptsExceeded):
		return "locked"
	default:
		return "error"
	}
}

// otpErrorCases are shared by every endpoint that verifies a code.
func otpErrorCases() []ErrorCase {
	return []ErrorCase{
		{Err: usecase.ErrOTPVerificationFailed, Status: http.StatusBadRequest, Message: "otp verification failed: expired or not requested"},
		{Err: usecase.ErrOTPIncorrect, Status: http.StatusBadRequest, Message: "incorrect otp code"},
		{Err: usecase.ErrOTPAttemptsExceeded, Status: http.StatusTooManyRequests, Message: "too many otp verification attempts"},
		{Err: usecase.ErrOTPAlreadyActive, Status: http.StatusConflict, Message: "an otp is already active for this identity"},
	}
}
