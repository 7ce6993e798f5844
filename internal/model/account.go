package model

import (
	"strings"
	"time"
)

// Role is the marketplace role stored in users.role.
type Role string

const (
	RoleRequester Role = "REQUESTER" // posts tasks
	RoleTasker    Role = "TASKER"    // fulfills tasks
	RoleVerifier  Role = "VERIFIER"
	RoleAdmin     Role = "ADMIN"
)

// Roles lists every known role in declaration order.
var Roles = []Role{RoleRequester, RoleTasker, RoleVerifier, RoleAdmin}

// ParseRole upper-cases and trims s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// KYCStatus mirrors users.kyc_status. The auth core only reads it.
type KYCStatus string

const (
	KYCPending  KYCStatus = "PENDING"
	KYCVerified KYCStatus = "VERIFIED"
	KYCRejected KYCStatus = "REJECTED"
)

// Account represents a row of the `users` table. Nullable columns are
// pointers. The struct is used by the repository layer and the auth
// service; handlers only ever see the Profile projection.
type Account struct {
	ID                       string     `db:"id"`
	Email                    string     `db:"email"`
	PasswordHash             string     `db:"password"`
	Role                     Role       `db:"role"`
	WalletAddress            *string    `db:"wallet_address"`
	IsEmailVerified          bool       `db:"is_email_verified"`
	EmailVerificationToken   *string    `db:"email_verification_token"`
	EmailVerificationExpires *time.Time `db:"email_verification_expires"`
	KYCStatus                KYCStatus  `db:"kyc_status"`
	KYCHash                  *string    `db:"kyc_hash"`
	DIDRecord                *string    `db:"did_record"`
	FirstName                *string    `db:"first_name"`
	LastName                 *string    `db:"last_name"`
	PhoneNumber              *string    `db:"phone_number"`
	ProfileImage             *string    `db:"profile_image"`
	ReputationScore          float64    `db:"reputation_score"`
	IsActive                 bool       `db:"is_active"`
	CreatedAt                time.Time  `db:"created_at"`
	UpdatedAt                time.Time  `db:"updated_at"`
}

// HasPendingVerification reports whether a verification token is stored.
func (a *Account) HasPendingVerification() bool {
	return a.EmailVerificationToken != nil && *a.EmailVerificationToken != ""
}

// VerificationExpired reports whether the stored token expired before now.
// A missing token, or one without an expiry, counts as expired.
func (a *Account) VerificationExpired(now time.Time) bool {
	if !a.HasPendingVerification() || a.EmailVerificationExpires == nil {
		return true
	}
	return a.EmailVerificationExpires.Before(now)
}

// Profile is the sanitized account representation returned to clients.
// It has no field for the password hash or the verification token.
type Profile struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	FirstName       *string   `json:"firstName"`
	LastName        *string   `json:"lastName"`
	PhoneNumber     *string   `json:"phoneNumber"`
	ProfileImage    *string   `json:"profileImage"`
	Role            Role      `json:"role"`
	WalletAddress   *string   `json:"walletAddress"`
	IsEmailVerified bool      `json:"isEmailVerified"`
	KYCStatus       KYCStatus `json:"kycStatus"`
	ReputationScore float64   `json:"reputationScore"`
	IsActive        bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Profile projects the account onto its public representation.
func (a *Account) Profile() Profile {
	return Profile{
		ID:              a.ID,
		Email:           a.Email,
		FirstName:       a.FirstName,
		LastName:        a.LastName,
		PhoneNumber:     a.PhoneNumber,
		ProfileImage:    a.ProfileImage,
		Role:            a.Role,
		WalletAddress:   a.WalletAddress,
		IsEmailVerified: a.IsEmailVerified,
		KYCStatus:       a.KYCStatus,
		ReputationScore: a.ReputationScore,
		IsActive:        a.IsActive,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// Clone returns a deep copy so callers can mutate it without touching the
// original (used by the in-memory store).
func (a *Account) Clone() *Account {
	c := *a
	c.WalletAddress = cloneStr(a.WalletAddress)
	c.EmailVerificationToken = cloneStr(a.EmailVerificationToken)
	c.KYCHash = cloneStr(a.KYCHash)
	c.DIDRecord = cloneStr(a.DIDRecord)
	c.FirstName = cloneStr(a.FirstName)
	c.LastName = cloneStr(a.LastName)
	c.PhoneNumber = cloneStr(a.PhoneNumber)
	c.ProfileImage = cloneStr(a.ProfileImage)
	if a.EmailVerificationExpires != nil {
		t := *a.EmailVerificationExpires
		c.EmailVerificationExpires = &t
	}
	return &c
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
