package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/nyaruka/phonenumbers"

	"github.com/iliyamo/dropit-api/internal/model"
)

// MinPasswordLength is the minimum number of characters in a password.
const MinPasswordLength = 8

// MaxPasswordBytes is bcrypt's input limit.
const MaxPasswordBytes = 72

var walletPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// RegisterInput carries the registration request fields.
// The json tags name the fields in validation messages.
type RegisterInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role"`
}

// normalize trims every field and lower-cases the email.
func (in *RegisterInput) normalize() {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Role = strings.TrimSpace(in.Role)
}

// validate checks the required fields first so their dedicated errors win,
// then the format of every provided field.
func (in RegisterInput) validate() error {
	if in.Email == "" || in.Password == "" {
		return ErrMissingCredentials
	}
	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		return ErrWeakPassword
	}
	if len(in.Password) > MaxPasswordBytes {
		return fmt.Errorf("%w: password: must be at most %d bytes", ErrInvalidInput, MaxPasswordBytes)
	}
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, validation.Length(3, 255), is.Email),
		validation.Field(&in.FirstName, validation.Length(0, 255)),
		validation.Field(&in.LastName, validation.Length(0, 255)),
		validation.Field(&in.Role, validation.By(knownRole)),
	)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	return nil
}

func knownRole(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, ok := model.ParseRole(s); !ok {
		return errors.New("must be one of REQUESTER, TASKER, VERIFIER, ADMIN")
	}
	return nil
}

// normalizePhone parses raw in the given default region and returns it in
// E.164 form.
func normalizePhone(raw, region string) (string, error) {
	num, err := phonenumbers.Parse(raw, region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("%w: phoneNumber: must be a valid phone number", ErrInvalidInput)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// normalizeWallet validates an EVM address and returns its lower-case form,
// which is what the unique index compares.
func normalizeWallet(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrMissingWallet
	}
	if err := validation.Validate(raw, validation.Match(walletPattern)); err != nil {
		return "", ErrInvalidWallet
	}
	return strings.ToLower(raw), nil
}
