package utils

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// VerificationTokenBytes is the amount of random data behind an email
// verification token (64 hex characters once encoded).
const VerificationTokenBytes = 32

// VerificationToken is an opaque single-use token proving control of an
// email address.
type VerificationToken struct {
	Raw string    // hex token embedded in the verification link
	Exp time.Time // UTC expiration time
}

// NewVerificationToken returns a fresh random token that expires ttl after now.
func NewVerificationToken(now time.Time, ttl time.Duration) (VerificationToken, error) {
	raw, err := randomHex(VerificationTokenBytes)
	if err != nil {
		return VerificationToken{}, err
	}
	return VerificationToken{Raw: raw, Exp: now.UTC().Add(ttl)}, nil
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
