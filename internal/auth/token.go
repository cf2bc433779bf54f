package auth

import (
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/zoneheat/zoneheat/internal/errors"
)

// DefaultCost is the bcrypt cost used by HashToken.
const DefaultCost = 12

const curatorSubject = "admin-token"

// TokenVerifier turns an admin token into a Capability by checking it against
// a bcrypt hash. With no hash configured every caller is a curator.
type TokenVerifier struct {
	hash []byte
}

// NewTokenVerifier parses hash. An empty hash yields an open verifier.
func NewTokenVerifier(hash string) (*TokenVerifier, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return &TokenVerifier{}, nil
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, errors.New(err).
			Component("auth").
			Category(errors.CategoryConfiguration).
			Context("setting", "admin.token_hash").
			Build()
	}
	return &TokenVerifier{hash: []byte(hash)}, nil
}

// Open reports whether curation is granted without a token.
func (v *TokenVerifier) Open() bool { return len(v.hash) == 0 }

// Verify returns the capability for token.
func (v *TokenVerifier) Verify(token string) Capability {
	if v.Open() {
		return Curator("open")
	}
	if token == "" {
		return None()
	}
	if bcrypt.CompareHashAndPassword(v.hash, []byte(token)) != nil {
		return None()
	}
	return Curator(curatorSubject)
}

// HashToken produces the bcrypt hash to put in admin.token_hash.
func HashToken(token string, cost int) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", errors.ValidationError("token must not be empty")
	}
	if cost == 0 {
		cost = DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(token), cost)
	if err != nil {
		return "", errors.New(err).
			Component("auth").
			Category(errors.CategoryValidation).
			Build()
	}
	return string(h), nil
}
