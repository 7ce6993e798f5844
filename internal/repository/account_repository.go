package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/dropit-api/internal/model"
)

// MySQL duplicate-key error number.
const mysqlDuplicateEntry = 1062

// Unique index names from internal/database/migrations/00001_create_users.sql. The driver only
// reports the index name in the error message, so they are matched by name.
const (
	uniqueEmailIndex  = "uq_users_email"
	uniqueWalletIndex = "uq_users_wallet_address"
)

const accountColumns = `id, email, password, role, wallet_address, is_email_verified,
	email_verification_token, email_verification_expires, kyc_status, kyc_hash, did_record,
	first_name, last_name, phone_number, profile_image, reputation_score, is_active,
	created_at, updated_at`

// AccountRepo persists accounts in the MySQL `users` table.
type AccountRepo struct{ DB *sqlx.DB }

func NewAccountRepo(db *sqlx.DB) *AccountRepo { return &AccountRepo{DB: db} }

// Create inserts a new account. Timestamps are taken from the account when
// set, otherwise from the current UTC time. A duplicate email maps to
// ErrEmailExists regardless of any prior existence check.
func (r *AccountRepo) Create(ctx context.Context, a *model.Account) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (id, email, password, role, wallet_address, is_email_verified,
			email_verification_token, email_verification_expires, kyc_status, first_name,
			last_name, phone_number, reputation_score, is_active, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		a.ID, a.Email, a.PasswordHash, a.Role, a.WalletAddress, a.IsEmailVerified,
		a.EmailVerificationToken, a.EmailVerificationExpires, a.KYCStatus, a.FirstName,
		a.LastName, a.PhoneNumber, a.ReputationScore, a.IsActive, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return mapWriteError("create account", err)
	}
	return nil
}

// GetByID fetches an account by primary key.
func (r *AccountRepo) GetByID(ctx context.Context, id string) (*model.Account, error) {
	return r.getOne(ctx, "SELECT "+accountColumns+" FROM users WHERE id=? LIMIT 1", id)
}

// GetByEmail fetches an account by normalized email.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getOne(ctx, "SELECT "+accountColumns+" FROM users WHERE email=? LIMIT 1", email)
}

// GetByVerificationToken fetches the account currently holding token.
func (r *AccountRepo) GetByVerificationToken(ctx context.Context, token string) (*model.Account, error) {
	return r.getOne(ctx, "SELECT "+accountColumns+" FROM users WHERE email_verification_token=? LIMIT 1", token)
}

// GetByWalletAddress fetches the account holding wallet.
func (r *AccountRepo) GetByWalletAddress(ctx context.Context, wallet string) (*model.Account, error) {
	return r.getOne(ctx, "SELECT "+accountColumns+" FROM users WHERE wallet_address=? LIMIT 1", wallet)
}

// MarkEmailVerified flips the account to verified and clears the token. The
// update only matches while token is still stored, so a token can be
// redeemed once; a lost race returns ErrAccountNotFound.
func (r *AccountRepo) MarkEmailVerified(ctx context.Context, id, token string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET is_email_verified=1, email_verification_token=NULL,
			email_verification_expires=NULL, updated_at=?
		WHERE id=? AND email_verification_token=?`,
		time.Now().UTC(), id, token)
	if err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}
	return requireRow(res)
}

// SetVerificationToken stores a new token and expiry on an unverified account,
// replacing any previous token.
func (r *AccountRepo) SetVerificationToken(ctx context.Context, id, token string, expires time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET email_verification_token=?, email_verification_expires=?, updated_at=?
		WHERE id=? AND is_email_verified=0`,
		token, expires.UTC(), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set verification token: %w", err)
	}
	return requireRow(res)
}

// SetWalletAddress links wallet to the account. A wallet already stored on
// another account maps to ErrWalletTaken.
func (r *AccountRepo) SetWalletAddress(ctx context.Context, id, wallet string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET wallet_address=?, updated_at=? WHERE id=?",
		wallet, time.Now().UTC(), id)
	if err != nil {
		return mapWriteError("set wallet address", err)
	}
	return requireRow(res)
}

func (r *AccountRepo) getOne(ctx context.Context, query string, arg any) (*model.Account, error) {
	var a model.Account
	if err := r.DB.GetContext(ctx, &a, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("query account: %w", err)
	}
	return &a, nil
}

// requireRow turns a zero-row update into ErrAccountNotFound. The DSN sets
// clientFoundRows so unchanged-but-matched rows still count.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func mapWriteError(op string, err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		switch {
		case strings.Contains(me.Message, uniqueWalletIndex):
			return ErrWalletTaken
		case strings.Contains(me.Message, uniqueEmailIndex):
			return ErrEmailExists
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
