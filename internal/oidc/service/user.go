package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aussiebroadwan/openid/internal/oidc/domain"
	"github.com/aussiebroadwan/openid/internal/oidc/store"
	"github.com/aussiebroadwan/openid/pkg/cryptox"
	"github.com/aussiebroadwan/openid/pkg/idx"
)

var ErrUsernameTaken = errors.New("username already taken")

type UserService struct {
	Store store.Store
}

// GetUserByUsername fetches a user by login name, which is also the subject.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.Store.Users().GetUserByUsername(ctx, username)
}

// Authenticate checks a username and password. Unknown users and wrong
// passwords both yield ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn the same time as a real check.
			_ = cryptox.VerifyPassword(password, dummyHash())
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	return user, nil
}

// CreateUserParams describes a new local account.
type CreateUserParams struct {
	Username      string
	Password      string
	GivenName     string
	FamilyName    string
	Nickname      string
	Email         string
	EmailVerified bool
	PhoneNumber   string
	Picture       string
	Capabilities  []string
}

// CreateUser hashes the password and stores the account.
func (s *UserService) CreateUser(ctx context.Context, p CreateUserParams) (domain.User, error) {
	p.Username = strings.TrimSpace(p.Username)
	if p.Username == "" || p.Password == "" {
		return domain.User{}, fmt.Errorf("%w: username and password are required", ErrInvalidRequest)
	}

	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return domain.User{}, err
	}

	u := domain.User{
		ID:            idx.New().String(),
		Username:      p.Username,
		PasswordHash:  hash,
		GivenName:     p.GivenName,
		FamilyName:    p.FamilyName,
		Nickname:      p.Nickname,
		Email:         p.Email,
		EmailVerified: p.EmailVerified,
		PhoneNumber:   p.PhoneNumber,
		Picture:       p.Picture,
		Capabilities:  p.Capabilities,
	}
	u.CreatedAt = idx.MustParse(u.ID).Time()
	u.UpdatedAt = u.CreatedAt

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrUsernameTaken
		}
		return domain.User{}, err
	}
	return u, nil
}

var (
	dummyOnce sync.Once
	dummy     string
)

// dummyHash is computed lazily since hashing needs the pepper.
func dummyHash() string {
	dummyOnce.Do(func() {
		dummy, _ = cryptox.HashPassword("not-a-real-password")
	})
	return dummy
}
