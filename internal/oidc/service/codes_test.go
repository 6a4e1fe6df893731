package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/openid/internal/oidc/metrics"
	"github.com/aussiebroadwan/openid/pkg/cryptox"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func issueTestCode(t *testing.T, h *harness, subject string) string {
	t.Helper()
	code, err := h.codes.Issue(context.Background(), IssueParams{
		ClientID:    confidentialID,
		Subject:     subject,
		RedirectURI: redirectURI,
		Scope:       "openid",
		Nonce:       "n",
	})
	require.NoError(t, err)
	return code
}

func TestCodeIssueStoresOnlyFingerprint(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	code := issueTestCode(t, h, "alice")
	require.Len(t, code, 40)

	_, err := h.store.AuthorizationCodes().ConsumeAuthorizationCode(ctx, code)
	require.Error(t, err, "raw code must not be a row key")

	rec, err := h.store.AuthorizationCodes().ConsumeAuthorizationCode(ctx, cryptox.FingerprintToken(code))
	require.NoError(t, err)
	require.Equal(t, "alice", rec.Subject)
	require.Equal(t, h.clock.Now().Add(DefaultCodeTTL), rec.ExpiresAt)
}

func TestCodeRedeem(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	t.Run("empty code", func(t *testing.T) {
		_, err := h.codes.Redeem(ctx, "")
		require.ErrorIs(t, err, ErrInvalidGrant)
	})

	t.Run("just before expiry", func(t *testing.T) {
		code := issueTestCode(t, h, "alice")
		h.clock.Advance(DefaultCodeTTL - time.Second)
		rec, err := h.codes.Redeem(ctx, code)
		require.NoError(t, err)
		require.Equal(t, "n", rec.Nonce)
	})

	t.Run("at expiry", func(t *testing.T) {
		code := issueTestCode(t, h, "alice")
		h.clock.Advance(DefaultCodeTTL)
		_, err := h.codes.Redeem(ctx, code)
		require.ErrorIs(t, err, ErrCodeExpired)
	})
}

func TestCodeRevoke(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	code := issueTestCode(t, h, "alice")

	require.NoError(t, h.codes.Revoke(ctx, code))
	require.NoError(t, h.codes.Revoke(ctx, code))

	_, err := h.codes.Redeem(ctx, code)
	require.ErrorIs(t, err, ErrInvalidGrant)
}

func TestCodeSweep(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	old := issueTestCode(t, h, "alice")
	h.clock.Advance(DefaultCodeGracePeriod)
	fresh := issueTestCode(t, h, "carol")

	h.clock.Advance(DefaultCodeTTL + time.Second)

	n, err := h.codes.Sweep(ctx, DefaultCodeGracePeriod)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = h.codes.Redeem(ctx, old)
	require.ErrorIs(t, err, ErrInvalidGrant)
	require.NotErrorIs(t, err, ErrCodeExpired)

	// Within grace: still there, but expired.
	_, err = h.codes.Redeem(ctx, fresh)
	require.ErrorIs(t, err, ErrCodeExpired)
}

func TestCodePurgeAll(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	issueTestCode(t, h, "alice")
	issueTestCode(t, h, "carol")

	n, err := h.codes.PurgeAll(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestConsentTTL(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	needs, err := h.consents.NeedsConsent(ctx, "alice", confidentialID)
	require.NoError(t, err)
	require.True(t, needs, "no record yet")

	require.NoError(t, h.consents.RecordConsent(ctx, "alice", confidentialID))

	needs, err = h.consents.NeedsConsent(ctx, "alice", confidentialID)
	require.NoError(t, err)
	require.False(t, needs, "just recorded")

	h.clock.Advance(DefaultConsentTTL - time.Second)
	needs, err = h.consents.NeedsConsent(ctx, "alice", confidentialID)
	require.NoError(t, err)
	require.False(t, needs, "still inside ttl")

	h.clock.Advance(time.Second)
	needs, err = h.consents.NeedsConsent(ctx, "alice", confidentialID)
	require.NoError(t, err)
	require.True(t, needs, "ttl elapsed")

	needs, err = h.consents.NeedsConsent(ctx, "alice", publicID)
	require.NoError(t, err)
	require.True(t, needs, "consent is per client")
}

func TestConsentCustomTTLAndPurge(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.consents.TTL = time.Minute

	require.NoError(t, h.consents.RecordConsent(ctx, "alice", confidentialID))
	require.NoError(t, h.consents.RecordConsent(ctx, "alice", publicID))

	h.clock.Advance(time.Minute)
	needs, err := h.consents.NeedsConsent(ctx, "alice", confidentialID)
	require.NoError(t, err)
	require.True(t, needs)

	n, err := h.consents.PurgeAll(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestCodeMetrics(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	issued := testutil.ToFloat64(metrics.CodesIssued)
	success := testutil.ToFloat64(metrics.CodesRedeemed.WithLabelValues(metrics.ResultSuccess))
	notFound := testutil.ToFloat64(metrics.CodesRedeemed.WithLabelValues(metrics.ResultNotFound))
	expired := testutil.ToFloat64(metrics.CodesRedeemed.WithLabelValues(metrics.ResultExpired))

	code := issueTestCode(t, h, "alice")
	_, err := h.codes.Redeem(ctx, code)
	require.NoError(t, err)
	_, err = h.codes.Redeem(ctx, code)
	require.ErrorIs(t, err, ErrInvalidGrant)

	stale := issueTestCode(t, h, "bob")
	h.clock.Advance(DefaultCodeTTL)
	_, err = h.codes.Redeem(ctx, stale)
	require.ErrorIs(t, err, ErrCodeExpired)

	require.Equal(t, issued+2, testutil.ToFloat64(metrics.CodesIssued))
	require.Equal(t, success+1, testutil.ToFloat64(metrics.CodesRedeemed.WithLabelValues(metrics.ResultSuccess)))
	require.Equal(t, notFound+1, testutil.ToFloat64(metrics.CodesRedeemed.WithLabelValues(metrics.ResultNotFound)))
	require.Equal(t, expired+1, testutil.ToFloat64(metrics.CodesRedeemed.WithLabelValues(metrics.ResultExpired)))
}
