package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/openid/internal/oidc/domain"
	"github.com/aussiebroadwan/openid/internal/oidc/metrics"
	"github.com/aussiebroadwan/openid/internal/oidc/registry"
	"github.com/aussiebroadwan/openid/pkg/jwtx"
	"github.com/aussiebroadwan/openid/pkg/slogx"
)

// TokenRequest is a decoded token endpoint request. ClientSecret may come
// from the form body or HTTP Basic; the caller decides.
type TokenRequest struct {
	GrantType    string
	Code         string
	RedirectURI  string
	ClientID     string
	ClientSecret string
	CodeVerifier string
}

type TokenService struct {
	Registry  *registry.Registry
	Codes     *CodeService
	Keys      *jwtx.KeyManager
	AccessTTL time.Duration
	Now       func() time.Time
}

// Exchange implements the authorization_code grant.
//
// The client is authenticated before the code is touched, so a bad secret
// never burns a code. After redemption the code is gone even if the
// binding checks fail: a code presented with the wrong redirect_uri or
// verifier is treated as compromised.
func (s *TokenService) Exchange(ctx context.Context, req TokenRequest) (*domain.TokenSet, error) {
	l := slogx.FromContext(ctx)

	switch strings.TrimSpace(req.GrantType) {
	case grantTypeAuthorizationCode:
	case "":
		return nil, fmt.Errorf("%w: grant_type is required", ErrInvalidRequest)
	default:
		return nil, ErrUnsupportedGrantType
	}

	code := strings.TrimSpace(req.Code)
	redirectURI := strings.TrimSpace(req.RedirectURI)
	clientID := strings.TrimSpace(req.ClientID)
	switch {
	case code == "":
		return nil, fmt.Errorf("%w: code is required", ErrInvalidRequest)
	case redirectURI == "":
		return nil, fmt.Errorf("%w: redirect_uri is required", ErrInvalidRequest)
	case clientID == "":
		return nil, fmt.Errorf("%w: client_id is required", ErrInvalidRequest)
	}

	if !s.Registry.ValidateCredentials(clientID, req.ClientSecret) {
		l.Info("token request client authentication failed", slog.String("client_id", clientID))
		return nil, ErrInvalidClient
	}
	if !s.Registry.IsGrantTypeAllowed(clientID, grantTypeAuthorizationCode) {
		return nil, ErrUnauthorizedClient
	}

	authCode, err := s.Codes.Redeem(ctx, code)
	if err != nil {
		return nil, err
	}

	if authCode.ClientID != clientID {
		l.Warn("authorization code presented by another client",
			slog.String("client_id", clientID), slog.String("bound_client_id", authCode.ClientID))
		return nil, fmt.Errorf("%w: code was not issued to this client", ErrInvalidGrant)
	}
	if authCode.RedirectURI != redirectURI {
		return nil, fmt.Errorf("%w: redirect_uri does not match", ErrInvalidGrant)
	}
	if !verifyCodeVerifier(authCode.CodeChallenge, authCode.CodeChallengeMethod, req.CodeVerifier) {
		return nil, fmt.Errorf("%w: code_verifier does not match", ErrInvalidGrant)
	}

	ttl := s.AccessTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultAccessTokenTTL
	}
	claims := jwtx.NewAccessClaims(s.Keys.Issuer(), authCode.Subject, clientID, authCode.Scope, ttl, nowFunc(s.Now))
	access, err := s.Keys.Signer.Sign(claims)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	metrics.TokensIssued.WithLabelValues(metrics.TokenAccess).Inc()
	if authCode.IDToken != "" {
		metrics.TokensIssued.WithLabelValues(metrics.TokenID).Inc()
	}
	l.Info("authorization code exchanged",
		slog.String("client_id", clientID), slog.String("subject", authCode.Subject))

	return &domain.TokenSet{
		AccessToken: access,
		IDToken:     authCode.IDToken,
		TokenType:   "Bearer",
		ExpiresIn:   ttl,
		Scope:       authCode.Scope,
	}, nil
}

// verifyCodeVerifier checks a PKCE verifier against the stored challenge.
// A code issued without a challenge accepts any verifier.
func verifyCodeVerifier(challenge, method, verifier string) bool {
	challenge = strings.TrimSpace(challenge)
	if challenge == "" {
		return true
	}

	verifier = strings.TrimSpace(verifier)
	if verifier == "" {
		return false
	}

	method = strings.TrimSpace(method)
	switch {
	case method == "" || strings.EqualFold(method, "plain"):
		return subtle.ConstantTimeCompare([]byte(challenge), []byte(verifier)) == 1
	case strings.EqualFold(method, "S256"):
		sum := sha256.Sum256([]byte(verifier))
		expected := base64.RawURLEncoding.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(challenge), []byte(expected)) == 1
	default:
		return false
	}
}
