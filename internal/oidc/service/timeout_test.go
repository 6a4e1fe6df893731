package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/openid/internal/oidc/store"
	"github.com/stretchr/testify/require"
)

// deadlineStore records whether bulk deletes ran under a deadline.
type deadlineStore struct {
	store.Store
	deadlines []bool
}

func (s *deadlineStore) AuthorizationCodes() store.AuthorizationCodes {
	return deadlineCodes{AuthorizationCodes: s.Store.AuthorizationCodes(), s: s}
}

func (s *deadlineStore) Consents() store.Consents {
	return deadlineConsents{Consents: s.Store.Consents(), s: s}
}

func (s *deadlineStore) record(ctx context.Context) {
	_, ok := ctx.Deadline()
	s.deadlines = append(s.deadlines, ok)
}

type deadlineCodes struct {
	store.AuthorizationCodes
	s *deadlineStore
}

func (c deadlineCodes) DeleteExpiredAuthorizationCodes(ctx context.Context, cutoff time.Time) (int64, error) {
	c.s.record(ctx)
	return c.AuthorizationCodes.DeleteExpiredAuthorizationCodes(ctx, cutoff)
}

func (c deadlineCodes) DeleteAllAuthorizationCodes(ctx context.Context) (int64, error) {
	c.s.record(ctx)
	return c.AuthorizationCodes.DeleteAllAuthorizationCodes(ctx)
}

type deadlineConsents struct {
	store.Consents
	s *deadlineStore
}

func (c deadlineConsents) DeleteAllConsents(ctx context.Context) (int64, error) {
	c.s.record(ctx)
	return c.Consents.DeleteAllConsents(ctx)
}

func TestBulkDeletesUseStoreTimeout(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	st := &deadlineStore{Store: h.store}

	codes := &CodeService{Store: st, StoreTimeout: time.Second, Now: h.clock.Now}
	consents := &ConsentService{Store: st, StoreTimeout: time.Second, Now: h.clock.Now}

	_, err := codes.Sweep(ctx, time.Hour)
	require.NoError(t, err)
	_, err = codes.PurgeAll(ctx)
	require.NoError(t, err)
	_, err = consents.PurgeAll(ctx)
	require.NoError(t, err)

	require.Equal(t, []bool{true, true, true}, st.deadlines)
}
