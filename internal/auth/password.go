package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"FormatConverter/internal/domain"
)

// HashPassword produces the bcrypt hash stored in the admin configuration.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Admin checks administrator credentials against a configured user and bcrypt hash.
type Admin struct {
	user string
	hash []byte
}

func NewAdmin(user, passwordHash string) *Admin {
	return &Admin{user: user, hash: []byte(passwordHash)}
}

// Enabled reports whether administrative endpoints are configured at all.
func (a *Admin) Enabled() bool {
	return a != nil && a.user != "" && len(a.hash) > 0
}

// Check returns an auth error unless user and password match.
func (a *Admin) Check(user, password string) error {
	if !a.Enabled() || user != a.user {
		return domain.AuthError("Insufficient permissions")
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(password)); err != nil {
		return domain.AuthError("Insufficient permissions")
	}
	return nil
}
