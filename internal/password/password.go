// Package password hashes and verifies account secrets.
// Secrets are stored only as bcrypt digests.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Hash produces a salted bcrypt digest of the plaintext secret.
func Hash(secret string) (string, error) {
	if secret == "" {
		return "", errors.New("the secret is empty")
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(digest), nil
}

// Verify reports whether the plaintext secret matches the stored digest.
func Verify(digest, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}
