package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/openid/internal/oidc/store"
)

// DefaultRequiredCapability is what CapabilityGate checks when unset.
const DefaultRequiredCapability = "oidc:login"

// Gate decides whether a subject may use the issuer at all. It runs before
// consent is offered.
type Gate interface {
	Allowed(ctx context.Context, subject string) (bool, error)
}

// CapabilityGate admits users carrying Capability.
type CapabilityGate struct {
	Users      store.Users
	Capability string
}

func (g CapabilityGate) Allowed(ctx context.Context, subject string) (bool, error) {
	u, err := g.Users.GetUserByUsername(ctx, subject)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	capability := g.Capability
	if capability == "" {
		capability = DefaultRequiredCapability
	}
	return u.HasCapability(capability), nil
}

// AllowAll admits everyone.
type AllowAll struct{}

func (AllowAll) Allowed(context.Context, string) (bool, error) { return true, nil }
