package password

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the bcrypt cost for passwords and license numbers
	DefaultCost = 10
)

var ErrEmptySecret = errors.New("secret must not be empty")

// Hash hashes a secret (password or license number) using bcrypt.
// The salt is embedded in the output, so hashing the same input twice
// never yields the same bytes.
func Hash(secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(secret), DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify compares a candidate secret with a stored hash.
// A malformed hash is treated as a non-match.
func Verify(candidate, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate))
	return err == nil
}

// HashToken hashes a token using SHA256 (for persisted refresh tokens)
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// dummyHash is a valid bcrypt hash of an unguessable value, used only by DummyVerify.
var dummyHash = func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString([]byte("health-service-dummy"))), DefaultCost)
	return h
}()

// DummyVerify burns one bcrypt comparison against a throwaway hash. Called on
// the unknown-email login path so its timing matches a wrong-password check.
func DummyVerify(candidate string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(candidate))
}

// ValidatePassword checks if password meets requirements
func ValidatePassword(password string) bool {
	// Minimum 8 characters
	if len(password) < 8 {
		return false
	}
	return true
}
