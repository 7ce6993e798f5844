package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dropit-api/internal/metrics"
	"github.com/iliyamo/dropit-api/internal/middleware"
	"github.com/iliyamo/dropit-api/internal/model"
	"github.com/iliyamo/dropit-api/internal/service"
)

// requestTimeout bounds the store and mail work done for one request.
const requestTimeout = 5 * time.Second

// Authenticator is the auth core as seen by the HTTP layer.
type Authenticator interface {
	Register(ctx context.Context, in service.RegisterInput) (service.RegisterResult, error)
	VerifyEmail(ctx context.Context, token string) (service.Session, error)
	Login(ctx context.Context, email, password string) (service.Session, error)
	ResendVerification(ctx context.Context, email string) error
	ConnectWallet(ctx context.Context, accountID, wallet string) (string, error)
	Profile(ctx context.Context, accountID string) (model.Profile, error)
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Auth    Authenticator
	Metrics *metrics.Metrics // optional
	Logger  *slog.Logger
}

func NewAuthHandler(auth Authenticator, m *metrics.Metrics, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{Auth: auth, Metrics: m, Logger: logger.With("component", "auth-handler")}
}

// ----- DTOs -----

type registerReq struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role"` // REQUESTER | TASKER | VERIFIER | ADMIN
}
type registerResp struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type verifyEmailReq struct {
	Token string `json:"token"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type sessionResp struct {
	Message string        `json:"message"`
	Token   string        `json:"token"`
	User    model.Profile `json:"user"`
}

type resendReq struct {
	Email string `json:"email"`
}
type messageResp struct {
	Message string `json:"message"`
}

type connectWalletReq struct {
	WalletAddress string `json:"walletAddress"`
}
type connectWalletResp struct {
	Message       string `json:"message"`
	WalletAddress string `json:"walletAddress"`
}

type profileResp struct {
	User model.Profile `json:"user"`
}

// Register: create an unverified account and mail its verification link.
func (h *AuthHandler) Register(c echo.Context) error {
	const op = "register"
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return h.reject(c, op, http.StatusBadRequest, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	res, err := h.Auth.Register(ctx, service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Role:        req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingCredentials):
			return h.reject(c, op, http.StatusBadRequest, "Email and password are required")
		case errors.Is(err, service.ErrWeakPassword):
			return h.reject(c, op, http.StatusBadRequest, "Password must be at least 8 characters")
		case errors.Is(err, service.ErrInvalidInput):
			return h.reject(c, op, http.StatusBadRequest, validationMessage(err))
		case errors.Is(err, service.ErrEmailTaken):
			return h.reject(c, op, http.StatusBadRequest, "Email already registered")
		}
		return h.fail(c, op, err, "Registration failed")
	}

	h.Metrics.AuthEvent(op, metrics.OutcomeSuccess)
	return c.JSON(http.StatusCreated, registerResp{
		Message: "Registration successful. Please check your email to verify your account.",
		UserID:  res.UserID,
	})
}

// VerifyEmail: redeem a verification token and open a session.
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	const op = "verify_email"
	var req verifyEmailReq
	if err := c.Bind(&req); err != nil {
		return h.reject(c, op, http.StatusBadRequest, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	sess, err := h.Auth.VerifyEmail(ctx, strings.TrimSpace(req.Token))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingToken):
			return h.reject(c, op, http.StatusBadRequest, "Verification token is required")
		case errors.Is(err, service.ErrInvalidToken):
			return h.reject(c, op, http.StatusBadRequest, "Invalid verification token")
		case errors.Is(err, service.ErrTokenExpired):
			return h.reject(c, op, http.StatusBadRequest, "Verification token has expired")
		}
		return h.fail(c, op, err, "Email verification failed")
	}

	h.Metrics.AuthEvent(op, metrics.OutcomeSuccess)
	return c.JSON(http.StatusOK, sessionResp{
		Message: "Email verified successfully",
		Token:   sess.Token.Token,
		User:    sess.Profile,
	})
}

// Login: check credentials and return a session token.
func (h *AuthHandler) Login(c echo.Context) error {
	const op = "login"
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return h.reject(c, op, http.StatusBadRequest, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	sess, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingCredentials):
			return h.reject(c, op, http.StatusBadRequest, "Email and password are required")
		case errors.Is(err, service.ErrInvalidCredentials):
			return h.reject(c, op, http.StatusUnauthorized, "Invalid credentials")
		case errors.Is(err, service.ErrEmailNotVerified):
			return h.reject(c, op, http.StatusForbidden, "Please verify your email before logging in")
		case errors.Is(err, service.ErrAccountDisabled):
			return h.reject(c, op, http.StatusForbidden, "Account is disabled")
		}
		return h.fail(c, op, err, "Login failed")
	}

	h.Metrics.AuthEvent(op, metrics.OutcomeSuccess)
	return c.JSON(http.StatusOK, sessionResp{
		Message: "Login successful",
		Token:   sess.Token.Token,
		User:    sess.Profile,
	})
}

// ResendVerification: replace the pending token and mail it again.
func (h *AuthHandler) ResendVerification(c echo.Context) error {
	const op = "resend_verification"
	var req resendReq
	if err := c.Bind(&req); err != nil {
		return h.reject(c, op, http.StatusBadRequest, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Auth.ResendVerification(ctx, req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrMissingEmail):
			return h.reject(c, op, http.StatusBadRequest, "Email is required")
		case errors.Is(err, service.ErrAccountNotFound):
			return h.reject(c, op, http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrAlreadyVerified):
			return h.reject(c, op, http.StatusBadRequest, "Email is already verified")
		}
		return h.fail(c, op, err, "Failed to resend verification email")
	}

	h.Metrics.AuthEvent(op, metrics.OutcomeSuccess)
	return c.JSON(http.StatusOK, messageResp{Message: "Verification email sent"})
}

// ConnectWallet: link an EVM wallet to the authenticated account.
func (h *AuthHandler) ConnectWallet(c echo.Context) error {
	const op = "connect_wallet"
	uid, ok := middleware.UserID(c)
	if !ok {
		return h.reject(c, op, http.StatusUnauthorized, "Unauthorized")
	}
	var req connectWalletReq
	if err := c.Bind(&req); err != nil {
		return h.reject(c, op, http.StatusBadRequest, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	wallet, err := h.Auth.ConnectWallet(ctx, uid, req.WalletAddress)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingWallet):
			return h.reject(c, op, http.StatusBadRequest, "Wallet address is required")
		case errors.Is(err, service.ErrInvalidWallet):
			return h.reject(c, op, http.StatusBadRequest, "Invalid wallet address")
		case errors.Is(err, service.ErrWalletTaken):
			return h.reject(c, op, http.StatusBadRequest, "Wallet already connected to another account")
		case errors.Is(err, service.ErrAccountNotFound):
			return h.reject(c, op, http.StatusNotFound, "User not found")
		}
		return h.fail(c, op, err, "Failed to connect wallet")
	}

	h.Metrics.AuthEvent(op, metrics.OutcomeSuccess)
	return c.JSON(http.StatusOK, connectWalletResp{
		Message:       "Wallet connected successfully",
		WalletAddress: wallet,
	})
}

// Profile: return the sanitized account of the caller.
func (h *AuthHandler) Profile(c echo.Context) error {
	const op = "profile"
	uid, ok := middleware.UserID(c)
	if !ok {
		return h.reject(c, op, http.StatusUnauthorized, "Unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	prof, err := h.Auth.Profile(ctx, uid)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			return h.reject(c, op, http.StatusNotFound, "User not found")
		}
		return h.fail(c, op, err, "Failed to fetch profile")
	}

	h.Metrics.AuthEvent(op, metrics.OutcomeSuccess)
	return c.JSON(http.StatusOK, profileResp{User: prof})
}

// reject answers a client error.
func (h *AuthHandler) reject(c echo.Context, op string, status int, msg string) error {
	h.Metrics.AuthEvent(op, metrics.OutcomeRejected)
	return c.JSON(status, echo.Map{"error": msg})
}

// fail logs an internal error and answers 500 with a generic message.
func (h *AuthHandler) fail(c echo.Context, op string, err error, msg string) error {
	h.Metrics.AuthEvent(op, metrics.OutcomeError)
	h.Logger.ErrorContext(c.Request().Context(), "auth operation failed", "op", op, "err", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
}

// validationMessage strips the sentinel prefix from an ErrInvalidInput.
func validationMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), service.ErrInvalidInput.Error()+": ")
	if msg == "" {
		return "Invalid input"
	}
	return msg
}
