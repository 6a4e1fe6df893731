package http

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/openid/internal/oidc/service"
	"github.com/aussiebroadwan/openid/pkg/slogx"
)

const sessionCookieName = "oidc_session"

// SessionCookies reads and writes the login session cookie.
type SessionCookies struct {
	Sessions *service.SessionService
	Secure   bool
}

// Subject returns the logged-in subject, or "" without a valid session.
func (c *SessionCookies) Subject(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	sub, err := c.Sessions.VerifySession(cookie.Value)
	if err != nil {
		slogx.FromContext(r.Context()).Debug("ignoring invalid session cookie", slogx.Err(err))
		return ""
	}
	return sub
}

// Set issues a session for subject and attaches it to w.
func (c *SessionCookies) Set(w http.ResponseWriter, subject string) error {
	token, expires, err := c.Sessions.IssueSession(subject)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie.
func (c *SessionCookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// safeReturnTo accepts only local absolute paths so the login form cannot
// be turned into an open redirect.
func safeReturnTo(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.ContainsAny(raw, "\\\r\n") {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	return raw, true
}
