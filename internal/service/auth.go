package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/dropit-api/internal/model"
	"github.com/iliyamo/dropit-api/internal/repository"
	"github.com/iliyamo/dropit-api/internal/utils"
)

// AccountStore is the persistence the auth core needs. Implementations must
// enforce unique email and wallet address themselves and report violations
// as repository.ErrEmailExists / repository.ErrWalletTaken.
type AccountStore interface {
	Create(ctx context.Context, a *model.Account) error
	GetByID(ctx context.Context, id string) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	GetByVerificationToken(ctx context.Context, token string) (*model.Account, error)
	GetByWalletAddress(ctx context.Context, wallet string) (*model.Account, error)
	MarkEmailVerified(ctx context.Context, id, token string) error
	SetVerificationToken(ctx context.Context, id, token string, expires time.Time) error
	SetWalletAddress(ctx context.Context, id, wallet string) error
}

// Notifier dispatches account mail.
type Notifier interface {
	SendVerification(ctx context.Context, to, firstName, token string) error
	SendWelcome(ctx context.Context, to, firstName string) error
}

// Options configures an AuthService. Zero values fall back to defaults.
type Options struct {
	JWTSecret       string
	SessionTTL      time.Duration // default 7 days
	BcryptCost      int           // default utils.DefaultBcryptCost
	VerificationTTL time.Duration // default 24h
	PhoneRegion     string        // default region for numbers without a country code
	Now             func() time.Time
}

// RegisterResult is returned by a successful registration.
type RegisterResult struct {
	UserID string
}

// Session is an issued session token plus the sanitized account.
type Session struct {
	Token   utils.SessionToken
	Profile model.Profile
}

// AuthService implements registration, email verification, login, resend of
// verification mail, wallet linking and profile lookup.
type AuthService struct {
	accounts AccountStore
	notifier Notifier
	opts     Options
	logger   *slog.Logger

	// compared against on unknown emails so both login failures cost a
	// bcrypt comparison
	dummyHash string
}

// NewAuthService wires the auth core to its store and notifier.
func NewAuthService(accounts AccountStore, notifier Notifier, opts Options, logger *slog.Logger) (*AuthService, error) {
	if accounts == nil || notifier == nil {
		return nil, errors.New("auth service: nil dependency")
	}
	if opts.JWTSecret == "" {
		return nil, errors.New("auth service: JWT secret is required")
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 7 * 24 * time.Hour
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = utils.DefaultBcryptCost
	}
	if opts.VerificationTTL <= 0 {
		opts.VerificationTTL = 24 * time.Hour
	}
	if opts.PhoneRegion == "" {
		opts.PhoneRegion = "US"
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if logger == nil {
		logger = slog.Default()
	}
	dummy, err := utils.HashPassword(uuid.NewString(), opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}
	return &AuthService{
		accounts:  accounts,
		notifier:  notifier,
		opts:      opts,
		logger:    logger.With("component", "auth"),
		dummyHash: dummy,
	}, nil
}

// Register creates an unverified account and sends its verification mail.
// A failed mail fails the registration; the stored account remains and can
// request a new mail through ResendVerification.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return RegisterResult{}, err
	}
	role := model.RoleRequester
	if in.Role != "" {
		role, _ = model.ParseRole(in.Role)
	}
	var phone *string
	if in.PhoneNumber != "" {
		p, err := normalizePhone(in.PhoneNumber, s.opts.PhoneRegion)
		if err != nil {
			return RegisterResult{}, err
		}
		phone = &p
	}

	// fast path; the unique index is the authority
	if _, err := s.accounts.GetByEmail(ctx, in.Email); err == nil {
		return RegisterResult{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrAccountNotFound) {
		return RegisterResult{}, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := utils.HashPassword(in.Password, s.opts.BcryptCost)
	if err != nil {
		return RegisterResult{}, fmt.Errorf("hash password: %w", err)
	}
	vt, err := utils.NewVerificationToken(s.opts.Now(), s.opts.VerificationTTL)
	if err != nil {
		return RegisterResult{}, fmt.Errorf("verification token: %w", err)
	}

	now := s.opts.Now()
	acc := &model.Account{
		ID:                       uuid.NewString(),
		Email:                    in.Email,
		PasswordHash:             hash,
		Role:                     role,
		EmailVerificationToken:   &vt.Raw,
		EmailVerificationExpires: &vt.Exp,
		KYCStatus:                model.KYCPending,
		FirstName:                optional(in.FirstName),
		LastName:                 optional(in.LastName),
		PhoneNumber:              phone,
		IsActive:                 true,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
	if err := s.accounts.Create(ctx, acc); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return RegisterResult{}, ErrEmailTaken
		}
		return RegisterResult{}, fmt.Errorf("create account: %w", err)
	}
	s.logger.Info("account registered", "user_id", acc.ID, "role", acc.Role)

	if err := s.notifier.SendVerification(ctx, acc.Email, in.FirstName, vt.Raw); err != nil {
		s.logger.Error("verification mail failed", "user_id", acc.ID, "err", err)
		return RegisterResult{}, fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	return RegisterResult{UserID: acc.ID}, nil
}

// VerifyEmail redeems a verification token and opens a session. The welcome
// mail is best effort: a send failure is logged and the verification still
// succeeds.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrMissingToken
	}
	acc, err := s.accounts.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return Session{}, ErrInvalidToken
		}
		return Session{}, fmt.Errorf("lookup token: %w", err)
	}
	if acc.VerificationExpired(s.opts.Now()) {
		return Session{}, ErrTokenExpired
	}
	if err := s.accounts.MarkEmailVerified(ctx, acc.ID, token); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			// redeemed concurrently
			return Session{}, ErrInvalidToken
		}
		return Session{}, fmt.Errorf("mark verified: %w", err)
	}
	acc.IsEmailVerified = true
	acc.EmailVerificationToken = nil
	acc.EmailVerificationExpires = nil
	acc.UpdatedAt = s.opts.Now()
	s.logger.Info("email verified", "user_id", acc.ID)

	if err := s.notifier.SendWelcome(ctx, acc.Email, deref(acc.FirstName)); err != nil {
		s.logger.Warn("welcome mail failed", "user_id", acc.ID, "err", err)
	}
	return s.openSession(acc)
}

// Login checks credentials and issues a session for verified accounts. Unknown
// email and wrong password both return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, ErrMissingCredentials
	}
	acc, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			utils.VerifyPassword(s.dummyHash, password)
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("lookup email: %w", err)
	}
	if !utils.VerifyPassword(acc.PasswordHash, password) {
		return Session{}, ErrInvalidCredentials
	}
	if !acc.IsEmailVerified {
		return Session{}, ErrEmailNotVerified
	}
	if !acc.IsActive {
		return Session{}, ErrAccountDisabled
	}
	return s.openSession(acc)
}

// ResendVerification replaces the token of an unverified account and mails
// the new one. The previous token stops working.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrMissingEmail
	}
	acc, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("lookup email: %w", err)
	}
	if acc.IsEmailVerified {
		return ErrAlreadyVerified
	}
	vt, err := utils.NewVerificationToken(s.opts.Now(), s.opts.VerificationTTL)
	if err != nil {
		return fmt.Errorf("verification token: %w", err)
	}
	if err := s.accounts.SetVerificationToken(ctx, acc.ID, vt.Raw, vt.Exp); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			// verified between the lookup and the update
			return ErrAlreadyVerified
		}
		return fmt.Errorf("store token: %w", err)
	}
	if err := s.notifier.SendVerification(ctx, acc.Email, deref(acc.FirstName), vt.Raw); err != nil {
		s.logger.Error("verification mail failed", "user_id", acc.ID, "err", err)
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	return nil
}

// ConnectWallet links wallet to the account. Linking a wallet the account
// already holds succeeds again; a wallet held by another account does not.
func (s *AuthService) ConnectWallet(ctx context.Context, accountID, wallet string) (string, error) {
	wallet, err := normalizeWallet(wallet)
	if err != nil {
		return "", err
	}
	owner, err := s.accounts.GetByWalletAddress(ctx, wallet)
	switch {
	case err == nil && owner.ID != accountID:
		return "", ErrWalletTaken
	case err != nil && !errors.Is(err, repository.ErrAccountNotFound):
		return "", fmt.Errorf("lookup wallet: %w", err)
	}
	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return "", ErrAccountNotFound
		}
		return "", fmt.Errorf("lookup account: %w", err)
	}
	if err := s.accounts.SetWalletAddress(ctx, accountID, wallet); err != nil {
		switch {
		case errors.Is(err, repository.ErrWalletTaken):
			return "", ErrWalletTaken
		case errors.Is(err, repository.ErrAccountNotFound):
			return "", ErrAccountNotFound
		}
		return "", fmt.Errorf("store wallet: %w", err)
	}
	s.logger.Info("wallet connected", "user_id", accountID)
	return wallet, nil
}

// Profile returns the sanitized account for accountID.
func (s *AuthService) Profile(ctx context.Context, accountID string) (model.Profile, error) {
	acc, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return model.Profile{}, ErrAccountNotFound
		}
		return model.Profile{}, fmt.Errorf("lookup account: %w", err)
	}
	return acc.Profile(), nil
}

func (s *AuthService) openSession(acc *model.Account) (Session, error) {
	tok, err := utils.NewSessionToken(s.opts.JWTSecret, acc.ID, acc.Email, string(acc.Role), s.opts.SessionTTL)
	if err != nil {
		return Session{}, fmt.Errorf("issue session: %w", err)
	}
	return Session{Token: tok, Profile: acc.Profile()}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
