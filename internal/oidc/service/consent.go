package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/openid/internal/oidc/domain"
	"github.com/aussiebroadwan/openid/internal/oidc/metrics"
	"github.com/aussiebroadwan/openid/internal/oidc/store"
)

// DefaultConsentTTL is how long an approval is remembered.
const DefaultConsentTTL = 7 * 24 * time.Hour

// ConsentService tracks which clients a user has approved and when.
type ConsentService struct {
	Store        store.Store
	TTL          time.Duration
	StoreTimeout time.Duration
	Now          func() time.Time
}

func (s *ConsentService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultConsentTTL
	}
	return s.TTL
}

// NeedsConsent reports whether subject must approve clientID again: there
// is no record, or the record is at least TTL old.
func (s *ConsentService) NeedsConsent(ctx context.Context, subject, clientID string) (bool, error) {
	ctx, cancel := withStoreTimeout(ctx, s.StoreTimeout)
	defer cancel()

	c, err := s.Store.Consents().GetConsent(ctx, subject, clientID)
	if errors.Is(err, store.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("load consent: %w", err)
	}

	return nowFunc(s.Now).Sub(c.ConsentedAt) >= s.ttl(), nil
}

// RecordConsent stamps consent for (subject, clientID) at now. Callers
// only invoke it after an explicit approval.
func (s *ConsentService) RecordConsent(ctx context.Context, subject, clientID string) error {
	ctx, cancel := withStoreTimeout(ctx, s.StoreTimeout)
	defer cancel()

	err := s.Store.Consents().UpsertConsent(ctx, domain.Consent{
		Subject:     subject,
		ClientID:    clientID,
		ConsentedAt: nowFunc(s.Now),
	})
	if err != nil {
		return fmt.Errorf("record consent: %w", err)
	}
	metrics.ConsentsRecorded.Inc()
	return nil
}

// PurgeAll removes every consent record.
func (s *ConsentService) PurgeAll(ctx context.Context) (int64, error) {
	ctx, cancel := withStoreTimeout(ctx, s.StoreTimeout)
	defer cancel()
	return s.Store.Consents().DeleteAllConsents(ctx)
}
