package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/openid/internal/oidc/domain"
	"github.com/aussiebroadwan/openid/internal/oidc/metrics"
	"github.com/aussiebroadwan/openid/internal/oidc/store"
	"github.com/aussiebroadwan/openid/pkg/cryptox"
	"github.com/aussiebroadwan/openid/pkg/slogx"
)

const (
	DefaultCodeTTL         = 30 * time.Second
	DefaultCodeGracePeriod = time.Hour
)

// CodeService owns the authorization code lifecycle: issue, single-use
// redemption, revocation and the expiry sweep.
type CodeService struct {
	Store        store.Store
	TTL          time.Duration
	StoreTimeout time.Duration
	Now          func() time.Time
}

// IssueParams binds a new code to one authorization.
type IssueParams struct {
	ClientID            string
	Subject             string
	RedirectURI         string
	Scope               string
	IDToken             string
	Nonce               string
	CodeChallenge       string
	CodeChallengeMethod string
}

// Issue mints a code, replacing any code still outstanding for the same
// client, subject and redirect_uri. Only the code's fingerprint is stored.
func (s *CodeService) Issue(ctx context.Context, p IssueParams) (string, error) {
	code, err := cryptox.GenerateToken(cryptox.CodeSize)
	if err != nil {
		return "", err
	}

	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	now := nowFunc(s.Now)

	record := domain.AuthorizationCode{
		CodeHash:            cryptox.FingerprintToken(code),
		ClientID:            p.ClientID,
		Subject:             p.Subject,
		RedirectURI:         p.RedirectURI,
		Scope:               p.Scope,
		IDToken:             p.IDToken,
		Nonce:               p.Nonce,
		CodeChallenge:       p.CodeChallenge,
		CodeChallengeMethod: p.CodeChallengeMethod,
		ExpiresAt:           now.Add(ttl),
		CreatedAt:           now,
	}

	ctx, cancel := withStoreTimeout(ctx, s.StoreTimeout)
	defer cancel()

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		replaced, err := tx.AuthorizationCodes().DeleteAuthorizationCodesForRequest(ctx, p.ClientID, p.Subject, p.RedirectURI)
		if err != nil {
			return err
		}
		if replaced > 0 {
			slogx.FromContext(ctx).Debug("replaced outstanding authorization code",
				"client_id", p.ClientID, "replaced", replaced)
		}
		return tx.AuthorizationCodes().CreateAuthorizationCode(ctx, record)
	})
	if err != nil {
		return "", fmt.Errorf("issue authorization code: %w", err)
	}

	metrics.CodesIssued.Inc()
	return code, nil
}

// Redeem consumes code. The row is deleted by the same statement that reads
// it, so of any number of concurrent calls at most one succeeds. Unknown
// codes return ErrInvalidGrant and expired ones ErrCodeExpired; an expired
// code is gone after the call either way.
func (s *CodeService) Redeem(ctx context.Context, code string) (domain.AuthorizationCode, error) {
	if code == "" {
		return domain.AuthorizationCode{}, ErrInvalidGrant
	}

	ctx, cancel := withStoreTimeout(ctx, s.StoreTimeout)
	defer cancel()

	record, err := s.Store.AuthorizationCodes().ConsumeAuthorizationCode(ctx, cryptox.FingerprintToken(code))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.CodesRedeemed.WithLabelValues(metrics.ResultNotFound).Inc()
			return domain.AuthorizationCode{}, ErrInvalidGrant
		}
		metrics.CodesRedeemed.WithLabelValues(metrics.ResultError).Inc()
		return domain.AuthorizationCode{}, fmt.Errorf("redeem authorization code: %w", err)
	}

	if record.Expired(nowFunc(s.Now)) {
		metrics.CodesRedeemed.WithLabelValues(metrics.ResultExpired).Inc()
		return domain.AuthorizationCode{}, ErrCodeExpired
	}

	metrics.CodesRedeemed.WithLabelValues(metrics.ResultSuccess).Inc()
	return record, nil
}

// Revoke deletes code without returning it. Revoking an unknown code is
// not an error.
func (s *CodeService) Revoke(ctx context.Context, code string) error {
	ctx, cancel := withStoreTimeout(ctx, s.StoreTimeout)
	defer cancel()
	return s.Store.AuthorizationCodes().DeleteAuthorizationCode(ctx, cryptox.FingerprintToken(code))
}

// Sweep deletes codes whose expiry plus grace lies in the past.
func (s *CodeService) Sweep(ctx context.Context, grace time.Duration) (int64, error) {
	if grace < 0 {
		grace = 0
	}
	cutoff := nowFunc(s.Now).Add(-grace)

	ctx, cancel := withStoreTimeout(ctx, s.StoreTimeout)
	defer cancel()

	n, err := s.Store.AuthorizationCodes().DeleteExpiredAuthorizationCodes(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep authorization codes: %w", err)
	}
	metrics.CodesSwept.Add(float64(n))
	return n, nil
}

// PurgeAll deletes every outstanding code.
func (s *CodeService) PurgeAll(ctx context.Context) (int64, error) {
	ctx, cancel := withStoreTimeout(ctx, s.StoreTimeout)
	defer cancel()
	return s.Store.AuthorizationCodes().DeleteAllAuthorizationCodes(ctx)
}
