package service

import "errors"

// Errors returned by AuthService. Handlers map them onto HTTP responses with
// errors.Is; anything else is an internal failure.
var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailTaken         = errors.New("email already registered")

	ErrMissingToken = errors.New("verification token is required")
	ErrInvalidToken = errors.New("invalid verification token")
	ErrTokenExpired = errors.New("verification token has expired")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrAccountDisabled    = errors.New("account is disabled")

	ErrMissingEmail    = errors.New("email is required")
	ErrAccountNotFound = errors.New("account not found")
	ErrAlreadyVerified = errors.New("email is already verified")

	ErrMissingWallet = errors.New("wallet address is required")
	ErrInvalidWallet = errors.New("invalid wallet address")
	ErrWalletTaken   = errors.New("wallet already connected to another account")

	// ErrNotificationFailed wraps a transport failure on a mail that the
	// operation depends on (verification mail on register and resend).
	ErrNotificationFailed = errors.New("notification dispatch failed")
)
