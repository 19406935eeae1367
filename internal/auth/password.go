// Package auth hashes credentials and issues the bearer and one-time tokens
// used to authenticate callers.
package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// unknownAccountHash is compared against when no account matches a login, so
// unknown emails cost as much to reject as wrong passwords.
var unknownAccountHash = sync.OnceValue(func() string {
	hash, err := bcrypt.GenerateFromPassword([]byte("scribe-unknown-account"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
})

// RejectUnknown spends a full password comparison and reports false. Call it
// in place of CheckPassword when the account does not exist.
func RejectUnknown(password string) bool {
	_ = CheckPassword(password, unknownAccountHash())
	return false
}
