package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/dropit-api/internal/model"
)

// MemoryAccountRepo is an in-process account store used with DB_DRIVER=memory
// and in tests. It enforces the same unique email and wallet constraints as
// the MySQL schema. Stored accounts are copied in and out.
type MemoryAccountRepo struct {
	mu       sync.RWMutex
	accounts map[string]*model.Account // keyed by id
}

func NewMemoryAccountRepo() *MemoryAccountRepo {
	return &MemoryAccountRepo{accounts: make(map[string]*model.Account)}
}

func (r *MemoryAccountRepo) Create(_ context.Context, a *model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if strings.EqualFold(existing.Email, a.Email) {
			return ErrEmailExists
		}
		if a.WalletAddress != nil && existing.WalletAddress != nil &&
			strings.EqualFold(*existing.WalletAddress, *a.WalletAddress) {
			return ErrWalletTaken
		}
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}
	r.accounts[a.ID] = a.Clone()
	return nil
}

func (r *MemoryAccountRepo) GetByID(_ context.Context, id string) (*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return a.Clone(), nil
}

func (r *MemoryAccountRepo) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.find(func(a *model.Account) bool { return strings.EqualFold(a.Email, email) })
}

func (r *MemoryAccountRepo) GetByVerificationToken(_ context.Context, token string) (*model.Account, error) {
	if token == "" {
		return nil, ErrAccountNotFound
	}
	return r.find(func(a *model.Account) bool {
		return a.EmailVerificationToken != nil && *a.EmailVerificationToken == token
	})
}

func (r *MemoryAccountRepo) GetByWalletAddress(_ context.Context, wallet string) (*model.Account, error) {
	return r.find(func(a *model.Account) bool {
		return a.WalletAddress != nil && strings.EqualFold(*a.WalletAddress, wallet)
	})
}

func (r *MemoryAccountRepo) MarkEmailVerified(_ context.Context, id, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok || a.EmailVerificationToken == nil || *a.EmailVerificationToken != token {
		return ErrAccountNotFound
	}
	a.IsEmailVerified = true
	a.EmailVerificationToken = nil
	a.EmailVerificationExpires = nil
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryAccountRepo) SetVerificationToken(_ context.Context, id, token string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok || a.IsEmailVerified {
		return ErrAccountNotFound
	}
	exp := expires.UTC()
	a.EmailVerificationToken = &token
	a.EmailVerificationExpires = &exp
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryAccountRepo) SetWalletAddress(_ context.Context, id, wallet string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	for otherID, other := range r.accounts {
		if otherID != id && other.WalletAddress != nil && strings.EqualFold(*other.WalletAddress, wallet) {
			return ErrWalletTaken
		}
	}
	a.WalletAddress = &wallet
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// Len reports the number of stored accounts.
func (r *MemoryAccountRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts)
}

func (r *MemoryAccountRepo) find(match func(*model.Account) bool) (*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if match(a) {
			return a.Clone(), nil
		}
	}
	return nil, ErrAccountNotFound
}
