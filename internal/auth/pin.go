// SPDX-License-Identifier: MIT
package auth

import (
	"errors"
	"regexp"

	"github.com/thatcatcamp/menukitty/internal/config"
	"golang.org/x/crypto/bcrypt"
)

const defaultBcryptCost = 12

// ErrInvalidPIN is returned for PINs that are not 4 to 8 digits.
var ErrInvalidPIN = errors.New("PIN must be 4 to 8 digits")

var pinPattern = regexp.MustCompile(`^[0-9]{4,8}$`)

func bcryptCost() int {
	cost := config.GetInt("auth.bcrypt_cost")
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return defaultBcryptCost
	}
	return cost
}

// ValidatePIN reports whether pin has an acceptable shape.
func ValidatePIN(pin string) error {
	if !pinPattern.MatchString(pin) {
		return ErrInvalidPIN
	}
	return nil
}

// HashPIN hashes an admin PIN using bcrypt
func HashPIN(pin string) (string, error) {
	if err := ValidatePIN(pin); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcryptCost())
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPIN verifies a PIN against a bcrypt hash using constant-time comparison
func CheckPIN(pin, hash string) bool {
	if pin == "" || hash == "" {
		return false
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin))
	return err == nil
}
