package security

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordMismatch = errors.New("password mismatch")
	ErrMalformedDigest  = errors.New("malformed password digest")
)

type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a bcrypt hasher. Costs outside bcrypt's
// accepted range fall back to bcrypt.DefaultCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Compare returns nil on a match, ErrPasswordMismatch on a wrong password and
// ErrMalformedDigest when the stored digest cannot be parsed.
func (h *PasswordHasher) Compare(plain string, digest string) error {
	if IsBlankDigest(digest) {
		return ErrMalformedDigest
	}

	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrPasswordMismatch
	default:
		return fmt.Errorf("%w: %v", ErrMalformedDigest, err)
	}
}

func (h *PasswordHasher) Verify(plain string, digest string) bool {
	return h.Compare(plain, digest) == nil
}

// IsBlankDigest reports whether no password has been set for an account.
func IsBlankDigest(digest string) bool {
	return strings.TrimSpace(digest) == ""
}
