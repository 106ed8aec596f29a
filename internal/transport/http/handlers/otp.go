package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/account-otp-service/internal/infra/telemetry"
	"github.com/arklim/account-otp-service/internal/usecase"
)

// OTPHandler exposes standalone code issuance and verification, decoupled
// from account state.
type OTPHandler struct {
	otp       *usecase.OTPService
	telemetry *telemetry.Provider
	isDev     bool
}

// NewOTPHandler builds the OTP handler.
func NewOTPHandler(otp *usecase.OTPService, provider *telemetry.Provider, isDev bool) *OTPHandler {
	return &OTPHandler{otp: otp, telemetry: provider, isDev: isDev}
}

// RegisterRoutes binds OTP endpoints.
func (h *OTPHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/request", h.Request)
	r.POST("/verify", h.Verify)
}

// Request issues a fresh code for the identity.
func (h *OTPHandler) Request(c *gin.Context) {
	var req OTPRequestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid otp request payload"))
		return
	}

	issued, err := h.otp.RequestCode(c.Request.Context(), req.Email)
	if err != nil {
		RespondWithMappedError(c, err, otpErrorCases(), http.StatusInternalServerError, "failed to issue otp code")
		return
	}

	if h.telemetry != nil {
		h.telemetry.OTPIssued().WithLabelValues("standalone").Inc()
	}

	resp := OTPRequestResponse{
		Message:   "verification code sent",
		ExpiresAt: formatExpiry(issued.ExpiresAt),
	}
	if h.isDev && issued.Code != "" {
		code := issued.Code
		resp.DevCode = &code
	}

	c.JSON(http.StatusCreated, resp)
}

// Verify checks a candidate code for the identity.
func (h *OTPHandler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid verification payload"))
		return
	}

	if err := h.otp.ConfirmCode(c.Request.Context(), req.Email, req.Code); err != nil {
		if h.telemetry != nil {
			h.telemetry.OTPVerified().WithLabelValues(verificationOutcome(err)).Inc()
		}
		RespondWithMappedError(c, err, otpErrorCases(), http.StatusInternalServerError, "failed to verify otp code")
		return
	}

	if h.telemetry != nil {
		h.telemetry.OTPVerified().WithLabelValues("success").Inc()
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "otp verified"})
}
