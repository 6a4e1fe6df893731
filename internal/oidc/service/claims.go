package service

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/aussiebroadwan/openid/internal/oidc/domain"
	"github.com/aussiebroadwan/openid/internal/oidc/store"
	"github.com/aussiebroadwan/openid/pkg/slogx"
)

// ScopeContributor adds the claims one scope unlocks.
type ScopeContributor interface {
	Scope() string
	Claims(u domain.User) map[string]any
	// ClaimNames lists what Claims may return, for discovery.
	ClaimNames() []string
}

// ClaimsRequest asks for the claims of subject under scope. Nonce is copied
// through unchanged when set.
type ClaimsRequest struct {
	Subject string
	Scope   string
	Nonce   string
}

// ClaimsProvider resolves a subject and scope into claims.
type ClaimsProvider struct {
	Users        store.Users
	contributors []ScopeContributor
}

// NewClaimsProvider returns a provider with the given contributors. With
// none it uses the profile, email and phone contributors.
func NewClaimsProvider(users store.Users, contributors ...ScopeContributor) *ClaimsProvider {
	if len(contributors) == 0 {
		contributors = []ScopeContributor{ProfileClaims{}, EmailClaims{}, PhoneClaims{}}
	}
	return &ClaimsProvider{Users: users, contributors: contributors}
}

// ClaimsFor always returns the scope and, when given, the nonce. Each
// contributor whose scope was requested adds its claims. An unknown subject
// gets the base claims only; only storage failures are errors.
func (p *ClaimsProvider) ClaimsFor(ctx context.Context, req ClaimsRequest) (map[string]any, error) {
	claims := map[string]any{"scope": req.Scope}
	if req.Nonce != "" {
		claims["nonce"] = req.Nonce
	}

	scopes := strings.Fields(req.Scope)
	var wanted []ScopeContributor
	for _, c := range p.contributors {
		if slices.Contains(scopes, c.Scope()) {
			wanted = append(wanted, c)
		}
	}
	if len(wanted) == 0 || p.Users == nil {
		return claims, nil
	}

	user, err := p.Users.GetUserByUsername(ctx, req.Subject)
	if errors.Is(err, store.ErrNotFound) {
		slogx.FromContext(ctx).Debug("claims requested for unknown subject", "subject", req.Subject)
		return claims, nil
	}
	if err != nil {
		return nil, err
	}

	for _, c := range wanted {
		for k, v := range c.Claims(user) {
			if k == "scope" || k == "nonce" || k == "sub" {
				continue
			}
			claims[k] = v
		}
	}
	return claims, nil
}

// SupportedScopes lists openid followed by every contributor scope.
func (p *ClaimsProvider) SupportedScopes() []string {
	out := []string{"openid"}
	for _, c := range p.contributors {
		if !slices.Contains(out, c.Scope()) {
			out = append(out, c.Scope())
		}
	}
	return out
}

// SupportedClaims lists the claims the provider can ever emit.
func (p *ClaimsProvider) SupportedClaims() []string {
	out := []string{"sub", "iss", "aud", "exp", "iat", "nonce", "scope"}
	for _, c := range p.contributors {
		for _, name := range c.ClaimNames() {
			if !slices.Contains(out, name) {
				out = append(out, name)
			}
		}
	}
	return out
}

// ProfileClaims serves the profile scope.
type ProfileClaims struct{}

func (ProfileClaims) Scope() string { return "profile" }

func (ProfileClaims) ClaimNames() []string {
	return []string{"username", "preferred_username", "name", "given_name", "family_name", "nickname", "picture"}
}

func (ProfileClaims) Claims(u domain.User) map[string]any {
	out := map[string]any{
		"username":           u.Username,
		"preferred_username": u.Username,
	}
	setNonEmpty(out, "given_name", u.GivenName)
	setNonEmpty(out, "family_name", u.FamilyName)
	setNonEmpty(out, "nickname", u.Nickname)
	setNonEmpty(out, "picture", u.Picture)
	setNonEmpty(out, "name", strings.TrimSpace(u.GivenName+" "+u.FamilyName))
	return out
}

// EmailClaims serves the email scope.
type EmailClaims struct{}

func (EmailClaims) Scope() string        { return "email" }
func (EmailClaims) ClaimNames() []string { return []string{"email", "email_verified"} }

func (EmailClaims) Claims(u domain.User) map[string]any {
	if u.Email == "" {
		return nil
	}
	return map[string]any{"email": u.Email, "email_verified": u.EmailVerified}
}

// PhoneClaims serves the phone scope.
type PhoneClaims struct{}

func (PhoneClaims) Scope() string        { return "phone" }
func (PhoneClaims) ClaimNames() []string { return []string{"phone_number"} }

func (PhoneClaims) Claims(u domain.User) map[string]any {
	out := map[string]any{}
	setNonEmpty(out, "phone_number", u.PhoneNumber)
	return out
}

func setNonEmpty(m map[string]any, k, v string) {
	if v != "" {
		m[k] = v
	}
}
