// Package repository defines error types that are reused across the account
// stores. These sentinel values allow higher layers such as the auth
// service to distinguish between different failure scenarios without
// knowing which store produced them.
package repository

import "errors"

// ErrAccountNotFound is returned when no account matches a lookup.
var ErrAccountNotFound = errors.New("account not found")

// ErrEmailExists is returned when an insert violates the unique email
// index. Handlers should translate this into a duplicate-email response.
var ErrEmailExists = errors.New("email already exists")

// ErrWalletTaken is returned when a wallet address is already stored on
// another account (unique wallet index).
var ErrWalletTaken = errors.New("wallet address already linked")
