package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/openid/internal/oidc/domain"
	"github.com/aussiebroadwan/openid/internal/oidc/store"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())
	return s
}

func sampleCode(hash string, expiresAt time.Time) domain.AuthorizationCode {
	return domain.AuthorizationCode{
		CodeHash:            hash,
		ClientID:            "client-abc123",
		Subject:             "alice",
		RedirectURI:         "https://app/cb",
		Scope:               "openid profile",
		IDToken:             "header.payload.sig",
		Nonce:               "n-1",
		CodeChallenge:       "challenge",
		CodeChallengeMethod: "S256",
		ExpiresAt:           expiresAt,
		CreatedAt:           expiresAt.Add(-30 * time.Second),
	}
}

func TestAuthorizationCodeConsumeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	codes := s.AuthorizationCodes()

	exp := time.Unix(1_700_000_030, 0).UTC()
	require.NoError(t, codes.CreateAuthorizationCode(ctx, sampleCode("h1", exp)))

	got, err := codes.ConsumeAuthorizationCode(ctx, "h1")
	require.NoError(t, err)
	require.Equal(t, sampleCode("h1", exp), got)

	_, err = codes.ConsumeAuthorizationCode(ctx, "h1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestAuthorizationCodeKeepsSubSecondExpiry(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	codes := s.AuthorizationCodes()

	exp := time.Unix(1_700_000_030, 900*int64(time.Millisecond)).UTC()
	require.NoError(t, codes.CreateAuthorizationCode(ctx, sampleCode("h-ms", exp)))

	n, err := codes.DeleteExpiredAuthorizationCodes(ctx, exp.Add(-100*time.Millisecond))
	require.NoError(t, err)
	require.Zero(t, n, "code still has 100ms left")

	got, err := codes.ConsumeAuthorizationCode(ctx, "h-ms")
	require.NoError(t, err)
	require.Equal(t, exp, got.ExpiresAt)
}

func TestAuthorizationCodeDuplicateHash(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	exp := time.Now().Add(time.Minute)
	require.NoError(t, s.AuthorizationCodes().CreateAuthorizationCode(ctx, sampleCode("dup", exp)))
	err := s.AuthorizationCodes().CreateAuthorizationCode(ctx, sampleCode("dup", exp))
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestAuthorizationCodeConcurrentConsume(t *testing.T) {
	ctx := context.Background()
	// A file database so the pool really runs statements in parallel.
	s, err := NewStore(DSN(filepath.Join(t.TempDir(), "codes.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	require.NoError(t, s.AuthorizationCodes().CreateAuthorizationCode(ctx, sampleCode("race", time.Now().Add(time.Minute))))

	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		notFound int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.AuthorizationCodes().ConsumeAuthorizationCode(ctx, "race")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, store.ErrNotFound):
				notFound++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, wins)
	require.Equal(t, workers-1, notFound)
}

func TestDeleteAuthorizationCodesForRequest(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	codes := s.AuthorizationCodes()
	exp := time.Now().Add(time.Minute)

	a := sampleCode("a", exp)
	b := sampleCode("b", exp)
	other := sampleCode("c", exp)
	other.RedirectURI = "https://app/other"

	for _, c := range []domain.AuthorizationCode{a, b, other} {
		require.NoError(t, codes.CreateAuthorizationCode(ctx, c))
	}

	n, err := codes.DeleteAuthorizationCodesForRequest(ctx, "client-abc123", "alice", "https://app/cb")
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	_, err = codes.ConsumeAuthorizationCode(ctx, "c")
	require.NoError(t, err)
}

func TestDeleteExpiredAuthorizationCodes(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	codes := s.AuthorizationCodes()

	base := time.Unix(1_700_000_000, 0)
	require.NoError(t, codes.CreateAuthorizationCode(ctx, sampleCode("old", base.Add(-2*time.Hour))))
	require.NoError(t, codes.CreateAuthorizationCode(ctx, sampleCode("edge", base)))
	require.NoError(t, codes.CreateAuthorizationCode(ctx, sampleCode("fresh", base.Add(time.Hour))))

	n, err := codes.DeleteExpiredAuthorizationCodes(ctx, base)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	require.NoError(t, codes.DeleteAuthorizationCode(ctx, "edge"))
	require.NoError(t, codes.DeleteAuthorizationCode(ctx, "edge"), "deleting twice is harmless")

	n, err = codes.DeleteAllAuthorizationCodes(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestConsents(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	consents := s.Consents()

	_, err := consents.GetConsent(ctx, "alice", "client-abc123")
	require.ErrorIs(t, err, store.ErrNotFound)

	first := time.Unix(1_700_000_000, 0).UTC()
	require.NoError(t, consents.UpsertConsent(ctx, domain.Consent{Subject: "alice", ClientID: "client-abc123", ConsentedAt: first}))

	got, err := consents.GetConsent(ctx, "alice", "client-abc123")
	require.NoError(t, err)
	require.Equal(t, first, got.ConsentedAt)

	later := first.Add(48 * time.Hour)
	require.NoError(t, consents.UpsertConsent(ctx, domain.Consent{Subject: "alice", ClientID: "client-abc123", ConsentedAt: later}))
	got, err = consents.GetConsent(ctx, "alice", "client-abc123")
	require.NoError(t, err)
	require.Equal(t, later, got.ConsentedAt)

	require.NoError(t, consents.UpsertConsent(ctx, domain.Consent{Subject: "bob", ClientID: "client-abc123", ConsentedAt: later}))
	n, err := consents.DeleteAllConsents(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	users := s.Users()

	empty, err := users.IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	u := domain.User{
		ID:            "01HZZZZZZZZZZZZZZZZZZZZZZZ",
		Username:      "alice",
		PasswordHash:  "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		GivenName:     "Alice",
		FamilyName:    "Liddell",
		Email:         "alice@example.com",
		EmailVerified: true,
		Capabilities:  []string{"oidc:login", "oidc:login", "admin"},
	}
	require.NoError(t, users.CreateUser(ctx, u))
	require.ErrorIs(t, users.CreateUser(ctx, domain.User{ID: "other", Username: "alice", PasswordHash: "x"}), store.ErrAlreadyExists)

	got, err := users.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.True(t, got.EmailVerified)
	require.Equal(t, []string{"oidc:login", "admin"}, got.Capabilities)

	require.NoError(t, users.UpdatePasswordHash(ctx, u.ID, "new-hash"))
	got, err = users.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "new-hash", got.PasswordHash)

	require.ErrorIs(t, users.UpdatePasswordHash(ctx, "missing", "x"), store.ErrNotFound)
	_, err = users.GetUserByUsername(ctx, "nobody")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Consents().UpsertConsent(ctx, domain.Consent{Subject: "alice", ClientID: "c", ConsentedAt: time.Now()}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Consents().GetConsent(ctx, "alice", "c")
	require.ErrorIs(t, err, store.ErrNotFound)
}
