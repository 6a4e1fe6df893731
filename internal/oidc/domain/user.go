package domain

import (
	"slices"
	"time"
)

// User is a local account. Username doubles as the OIDC subject.
type User struct {
	ID            string
	Username      string
	PasswordHash  string // argon2id PHC string
	GivenName     string
	FamilyName    string
	Nickname      string
	Email         string
	EmailVerified bool
	PhoneNumber   string
	Picture       string
	Capabilities  []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasCapability reports whether the user carries capability c.
func (u User) HasCapability(c string) bool {
	return slices.Contains(u.Capabilities, c)
}

// DisplayName is what consent and login pages show for the user.
func (u User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	if u.GivenName != "" {
		return u.GivenName
	}
	return u.Username
}
