package middleware

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// UnauthorizedMessage is the fixed body returned on any secret mismatch. It is
// deliberately constant so the response never reveals which part of the
// secret was wrong.
const UnauthorizedMessage = "unauthorized"

// SecretGuard verifies the shared secret carried in each command envelope.
// The configured value may be the plaintext secret or a bcrypt hash of it
// (produced by tools/secret_tool); hashes are recognized by their "$2" prefix
// so the plaintext never has to sit in the environment or on disk.
type SecretGuard struct {
	configured string
	hashed     bool
}

// NewSecretGuard builds a guard for the configured secret value.
func NewSecretGuard(configured string) *SecretGuard {
	return &SecretGuard{
		configured: configured,
		hashed:     strings.HasPrefix(configured, "$2"),
	}
}

// HashSecret returns a bcrypt hash suitable for storing in place of the
// plaintext secret.
func HashSecret(secret string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	return string(bytes), err
}

// Verify reports whether the candidate matches the configured secret.
// Authentication fails closed: an empty configured secret never matches.
func (g *SecretGuard) Verify(candidate string) bool {
	if g == nil || g.configured == "" || candidate == "" {
		return false
	}
	if g.hashed {
		return bcrypt.CompareHashAndPassword([]byte(g.configured), []byte(candidate)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(g.configured), []byte(candidate)) == 1
}
