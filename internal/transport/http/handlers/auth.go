package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/account-otp-service/internal/infra/security"
	"github.com/arklim/account-otp-service/internal/infra/telemetry"
	"github.com/arklim/account-otp-service/internal/usecase"
)

// AuthHandler exposes registration and login endpoints, both gated on the OTP step.
type AuthHandler struct {
	accounts  *usecase.AccountService
	tokens    *security.TokenIssuer
	telemetry *telemetry.Provider
	isDev     bool
}

// NewAuthHandler builds the auth handler.
func NewAuthHandler(accounts *usecase.AccountService, tokens *security.TokenIssuer, provider *telemetry.Provider, isDev bool) *AuthHandler {
	return &AuthHandler{
		accounts:  accounts,
		tokens:    tokens,
		telemetry: provider,
		isDev:     isDev,
	}
}

// RegisterRoutes binds auth endpoints.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/register", h.Register)
	r.POST("/register/verify", h.VerifyRegistration)
	r.POST("/login", h.Login)
	r.POST("/login/verify", h.VerifyLogin)
}

// Register creates an unverified account and dispatches a registration code.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	user, issued, err := h.accounts.Register(c.Request.Context(), usecase.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		cases := append(otpErrorCases(),
			ErrorCase{Err: usecase.ErrDuplicateAccount, Status: http.StatusConflict, Message: "email is already registered"},
		)
		RespondWithMappedError(c, err, cases, http.StatusInternalServerError, "failed to register account")
		return
	}

	h.countIssued("registration")

	resp := RegisterResponse{
		User:      newUserSummary(user),
		Message:   "verification code sent",
		ExpiresAt: formatExpiry(issued.ExpiresAt),
	}
	if h.isDev && issued.Code != "" {
		code := issued.Code
		resp.DevCode = &code
	}

	c.JSON(http.StatusCreated, resp)
}

// VerifyRegistration confirms a registration code and activates the account.
func (h *AuthHandler) VerifyRegistration(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid verification payload"))
		return
	}

	user, err := h.accounts.ConfirmRegistration(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		h.countVerified(verificationOutcome(err))
		cases := append(otpErrorCases(),
			ErrorCase{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
			ErrorCase{Err: usecase.ErrAlreadyVerified, Status: http.StatusConflict, Message: "account is already verified"},
		)
		RespondWithMappedError(c, err, cases, http.StatusInternalServerError, "failed to verify account")
		return
	}

	h.countVerified("success")

	c.JSON(http.StatusOK, RegisterVerifyResponse{
		Message: "account verified",
		User:    newUserSummary(user),
	})
}

// Login checks credentials and dispatches a login code.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	issued, err := h.accounts.Login(c.Request.Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		cases := append(otpErrorCases(),
			ErrorCase{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid email or password"},
		)
		RespondWithMappedError(c, err, cases, http.StatusInternalServerError, "failed to process login")
		return
	}

	h.countIssued("login")

	resp := LoginPendingResponse{
		Message:   "verification code sent",
		ExpiresAt: formatExpiry(issued.ExpiresAt),
	}
	if h.isDev && issued.Code != "" {
		code := issued.Code
		resp.DevCode = &code
	}

	c.JSON(http.StatusAccepted, resp)
}

// VerifyLogin confirms a login code and exchanges it for an access token.
func (h *AuthHandler) VerifyLogin(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid verification payload"))
		return
	}

	user, err := h.accounts.ConfirmLogin(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		h.countVerified(verificationOutcome(err))
		cases := append(otpErrorCases(),
			ErrorCase{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
		)
		RespondWithMappedError(c, err, cases, http.StatusInternalServerError, "failed to verify login")
		return
	}

	token, _, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to issue access token"))
		return
	}

	h.countVerified("success")

	c.JSON(http.StatusOK, LoginVerifyResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.tokens.TTL().Seconds()),
		User:        newUserSummary(user),
	})
}

func (h *AuthHandler) countIssued(flow string) {
	if h.telemetry == nil {
		return
	}
	h.telemetry.OTPIssued().WithLabelValues(flow).Inc()
}

func (h *AuthHandler) countVerified(outcome string) {
	if h.telemetry == nil {
		return
	}
	h.telemetry.OTPVerified().WithLabelValues(outcome).Inc()
}
