package service

import (
	"errors"
	"time"

	"github.com/aussiebroadwan/openid/internal/oidc/metrics"
	"github.com/aussiebroadwan/openid/pkg/jwtx"
)

const (
	DefaultSessionTTL       = 12 * time.Hour
	DefaultConsentTicketTTL = 10 * time.Minute
)

var ErrInvalidSession = errors.New("invalid session")

// SessionService mints and checks the two browser-side tokens: the login
// session cookie and the consent ticket carried by the consent form.
type SessionService struct {
	Keys             *jwtx.KeyManager
	SessionTTL       time.Duration
	ConsentTicketTTL time.Duration
	Now              func() time.Time
}

// IssueSession signs a session token for subject.
func (s *SessionService) IssueSession(subject string) (string, time.Time, error) {
	ttl := s.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	now := nowFunc(s.Now)
	claims := jwtx.NewClaims(jwtx.UseSession, s.Keys.Issuer(), subject, []string{s.Keys.Issuer()}, ttl, now)

	token, err := s.Keys.Signer.Sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	metrics.TokensIssued.WithLabelValues(metrics.TokenSession).Inc()
	return token, now.Add(ttl), nil
}

// VerifySession returns the subject of a valid session token.
func (s *SessionService) VerifySession(token string) (string, error) {
	if token == "" {
		return "", ErrInvalidSession
	}
	claims, err := s.Keys.VerifierFor(jwtx.UseSession).Verify(token)
	if err != nil {
		return "", errors.Join(ErrInvalidSession, err)
	}
	if claims.Subject == "" {
		return "", ErrInvalidSession
	}
	return claims.Subject, nil
}

// IssueConsentTicket signs a short-lived ticket proving the consent page
// was shown to subject for clientID.
func (s *SessionService) IssueConsentTicket(subject, clientID string) (string, error) {
	ttl := s.ConsentTicketTTL
	if ttl <= 0 {
		ttl = DefaultConsentTicketTTL
	}
	claims := jwtx.NewClaims(jwtx.UseConsent, s.Keys.Issuer(), subject, []string{clientID}, ttl, nowFunc(s.Now))
	claims.ClientID = clientID
	return s.Keys.Signer.Sign(claims)
}

// VerifyConsentTicket checks the ticket belongs to subject and clientID.
func (s *SessionService) VerifyConsentTicket(token, subject, clientID string) error {
	if token == "" {
		return ErrConsentRequired
	}
	claims, err := s.Keys.VerifierFor(jwtx.UseConsent).Verify(token)
	if err != nil {
		return errors.Join(ErrConsentRequired, err)
	}
	if claims.Subject != subject || claims.ClientID != clientID {
		return ErrConsentRequired
	}
	return nil
}
