package session

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Admin holds the credentials of the one administrator account.
type Admin struct {
	username string
	hash     []byte
}

// NewAdmin builds the account from config. A bcrypt passwordHash wins over a
// plain password, which is hashed once here.
func NewAdmin(username, password, passwordHash string) (*Admin, error) {
	if passwordHash != "" {
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, fmt.Errorf("invalid admin password hash: %w", err)
		}
		return &Admin{username: username, hash: []byte(passwordHash)}, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &Admin{username: username, hash: hash}, nil
}

func (a *Admin) Username() string {
	return a.username
}

// Verify reports whether the credentials match. Both fields are always
// compared.
func (a *Admin) Verify(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(a.hash, []byte(password)) == nil
	return userOK && passOK
}
