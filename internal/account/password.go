package account

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores input past this length, so longer passwords are refused.
const maxPasswordBytes = 72

// ErrPasswordTooLong is returned by Register for passwords over 72 bytes.
var ErrPasswordTooLong = errors.New("password must be at most 72 bytes")

// HashPassword hashes a plaintext password using bcrypt.
func HashPassword(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// VerifyPassword compares a plaintext password with a stored hash.
func VerifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// dummyHash is compared against when the email is unknown so both failure
// paths spend the same time in bcrypt.
var dummyHash = sync.OnceValue(func() string {
	hash, _ := bcrypt.GenerateFromPassword([]byte("shortlinks-dummy-password"), bcrypt.DefaultCost)

	return string(hash)
})
