package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	defaultBcryptCost = 10
	minBcryptCost     = 8
	maxBcryptCost     = 14
	highBcryptCost    = 12
)

// ClampBcryptCost maps an operator-supplied cost into safe bounds instead
// of trusting it verbatim. Costs below the minimum fall back to the
// default; costs above the maximum are capped at a high-but-sane value.
func ClampBcryptCost(cost int) int {
	if cost < minBcryptCost {
		return defaultBcryptCost
	}
	if cost > maxBcryptCost {
		return highBcryptCost
	}
	return cost
}

// HashPassword hashes a plaintext password with bcrypt at the given
// (clamped) cost.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), ClampBcryptCost(cost))
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password with a stored hash.
// bcrypt's comparison is constant-time over the full digest.
func VerifyPassword(hash, password string) error {
	if hash == "" {
		return errors.New("password hash is empty")
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
