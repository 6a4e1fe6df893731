package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/openid/internal/oidc/domain"
	"github.com/aussiebroadwan/openid/internal/oidc/registry"
	"github.com/aussiebroadwan/openid/pkg/jwtx"
	"github.com/aussiebroadwan/openid/pkg/slogx"
)

// User decisions on the consent page.
const (
	DecisionAuthorize = "authorize"
	DecisionCancel    = "cancel"
)

const grantTypeAuthorizationCode = "authorization_code"

// AuthorizeService runs the authorization endpoint state machine:
//
//	REQUESTED -> (NEEDS_AUTH) -> NEEDS_CONSENT -> GRANTED -> CODE_ISSUED
//
// with DENIED as the failure state. Login and consent are outcomes, not
// errors: the caller renders them and the user agent comes back with the
// same parameters.
type AuthorizeService struct {
	Registry *registry.Registry
	Codes    *CodeService
	Consents *ConsentService
	Claims   *ClaimsProvider
	Sessions *SessionService
	Users    *UserService
	Gate     Gate
	Keys     *jwtx.KeyManager

	IDTokenTTL  time.Duration
	RequirePKCE bool // for public clients
	Now         func() time.Time
}

// AuthorizeRequest captures an authorization request after transport
// decoding. Subject is empty when the user agent has no session.
type AuthorizeRequest struct {
	ResponseType        string
	ClientID            string
	RedirectURI         string
	Scope               string
	State               string
	Nonce               string
	CodeChallenge       string
	CodeChallengeMethod string

	Subject       string
	Decision      string
	ConsentTicket string
}

// Outcome is where an authorization request ended up.
type Outcome int

const (
	// OutcomeRedirect: a code was issued; send the user agent to RedirectURL.
	OutcomeRedirect Outcome = iota
	// OutcomeLogin: no session; send the user to log in and come back.
	OutcomeLogin
	// OutcomeConsent: render Consent and wait for the user's decision.
	OutcomeConsent
	// OutcomeForbidden: the gate refused the subject.
	OutcomeForbidden
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRedirect:
		return "redirect"
	case OutcomeLogin:
		return "login"
	case OutcomeConsent:
		return "consent"
	case OutcomeForbidden:
		return "forbidden"
	}
	return "unknown"
}

// AuthorizeResult is a successful step of the state machine.
type AuthorizeResult struct {
	Outcome     Outcome
	Client      domain.Client
	RedirectURL string
	Consent     *ConsentPrompt
}

// ConsentPrompt is the data a consent page needs. Markup is the
// renderer's business.
type ConsentPrompt struct {
	ClientID    string
	ClientName  string
	Subject     string
	SubjectName string
	Scopes      []string
	Ticket      string
}

// Authorize advances req as far as it can go. Errors are either one of the
// sentinel errors (client or redirect_uri could not be trusted, report
// directly) or a *RedirectError (report to the client's redirect_uri).
func (s *AuthorizeService) Authorize(ctx context.Context, req AuthorizeRequest) (*AuthorizeResult, error) {
	log := slogx.FromContext(ctx)

	client, req, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	if req.Subject == "" {
		return &AuthorizeResult{Outcome: OutcomeLogin, Client: client}, nil
	}

	allowed, err := s.gate().Allowed(ctx, req.Subject)
	if err != nil {
		return nil, fmt.Errorf("authorization gate: %w", err)
	}
	if !allowed {
		log.Info("subject refused by authorization gate", "client_id", client.ID, "subject", req.Subject)
		return &AuthorizeResult{Outcome: OutcomeForbidden, Client: client}, nil
	}

	if req.Decision == DecisionCancel {
		return nil, redirectError(req, ErrAccessDenied, "the user declined the request")
	}

	needs, err := s.Consents.NeedsConsent(ctx, req.Subject, client.ID)
	if err != nil {
		return nil, err
	}
	if needs {
		if req.Decision != DecisionAuthorize {
			return s.promptConsent(ctx, client, req)
		}
		if err := s.Sessions.VerifyConsentTicket(req.ConsentTicket, req.Subject, client.ID); err != nil {
			log.Warn("consent confirmation without a valid ticket", "client_id", client.ID, slogx.Err(err))
			return s.promptConsent(ctx, client, req)
		}
		if err := s.Consents.RecordConsent(ctx, req.Subject, client.ID); err != nil {
			return nil, err
		}
	}

	return s.issue(ctx, client, req)
}

// validate checks the request against the registry. Client and
// redirect_uri problems come back as plain errors; anything after that as
// a *RedirectError.
func (s *AuthorizeService) validate(req AuthorizeRequest) (domain.Client, AuthorizeRequest, error) {
	req.ClientID = strings.TrimSpace(req.ClientID)
	req.RedirectURI = strings.TrimSpace(req.RedirectURI)
	if req.ClientID == "" {
		return domain.Client{}, req, fmt.Errorf("%w: client_id is required", ErrInvalidRequest)
	}

	client, err := s.Registry.Get(req.ClientID)
	if err != nil {
		if errors.Is(err, registry.ErrClientNotFound) {
			return domain.Client{}, req, ErrInvalidClient
		}
		return domain.Client{}, req, err
	}

	switch {
	case req.RedirectURI == "" && len(client.RedirectURIs) == 1:
		req.RedirectURI = client.RedirectURIs[0]
	case req.RedirectURI == "":
		return client, req, fmt.Errorf("%w: redirect_uri is required", ErrInvalidRequest)
	case !client.HasRedirectURI(req.RedirectURI):
		return client, req, ErrRedirectURIMismatch
	}

	switch strings.TrimSpace(req.ResponseType) {
	case "code":
	case "":
		return client, req, redirectError(req, ErrInvalidRequest, "response_type is required")
	default:
		return client, req, redirectError(req, ErrUnsupportedResponseType, "only response_type=code is supported")
	}

	if !s.Registry.IsGrantTypeAllowed(client.ID, grantTypeAuthorizationCode) {
		return client, req, redirectError(req, ErrUnauthorizedClient, "client may not use the authorization code grant")
	}

	scopes := dedupe(strings.Fields(req.Scope))
	if allowed := client.Scopes(); len(allowed) > 0 {
		for _, sc := range scopes {
			if !slices.Contains(allowed, sc) {
				return client, req, redirectError(req, ErrInvalidScope, fmt.Sprintf("scope %q is not allowed for this client", sc))
			}
		}
		if len(scopes) == 0 {
			scopes = allowed
		}
	}
	req.Scope = strings.Join(scopes, " ")

	challenge, method, err := validatePKCE(req.CodeChallenge, req.CodeChallengeMethod, client.IsPublic() && s.RequirePKCE)
	if err != nil {
		return client, req, redirectError(req, err, "invalid or missing code_challenge")
	}
	req.CodeChallenge, req.CodeChallengeMethod = challenge, method

	return client, req, nil
}

func (s *AuthorizeService) promptConsent(ctx context.Context, client domain.Client, req AuthorizeRequest) (*AuthorizeResult, error) {
	ticket, err := s.Sessions.IssueConsentTicket(req.Subject, client.ID)
	if err != nil {
		return nil, fmt.Errorf("issue consent ticket: %w", err)
	}

	name := req.Subject
	if s.Users != nil {
		if u, err := s.Users.GetUserByUsername(ctx, req.Subject); err == nil {
			name = u.DisplayName()
		}
	}

	clientName := client.Name
	if clientName == "" {
		clientName = client.ID
	}

	return &AuthorizeResult{
		Outcome: OutcomeConsent,
		Client:  client,
		Consent: &ConsentPrompt{
			ClientID:    client.ID,
			ClientName:  clientName,
			Subject:     req.Subject,
			SubjectName: name,
			Scopes:      strings.Fields(req.Scope),
			Ticket:      ticket,
		},
	}, nil
}

// issue signs the ID token now, binds it to a fresh code and builds the
// redirect back to the client.
func (s *AuthorizeService) issue(ctx context.Context, client domain.Client, req AuthorizeRequest) (*AuthorizeResult, error) {
	var idToken string
	if slices.Contains(strings.Fields(req.Scope), "openid") {
		claims, err := s.Claims.ClaimsFor(ctx, ClaimsRequest{
			Subject: req.Subject,
			Scope:   req.Scope,
			Nonce:   req.Nonce,
		})
		if err != nil {
			return nil, fmt.Errorf("resolve claims: %w", err)
		}

		ttl := s.IDTokenTTL
		if ttl <= 0 {
			ttl = jwtx.DefaultIDTokenTTL
		}
		mc := jwtx.NewIDTokenClaims(s.Keys.Issuer(), req.Subject, client.ID, ttl, nowFunc(s.Now), claims)
		idToken, err = s.Keys.Signer.Sign(mc)
		if err != nil {
			return nil, fmt.Errorf("sign id token: %w", err)
		}
	}

	code, err := s.Codes.Issue(ctx, IssueParams{
		ClientID:            client.ID,
		Subject:             req.Subject,
		RedirectURI:         req.RedirectURI,
		Scope:               req.Scope,
		IDToken:             idToken,
		Nonce:               req.Nonce,
		CodeChallenge:       req.CodeChallenge,
		CodeChallengeMethod: req.CodeChallengeMethod,
	})
	if err != nil {
		return nil, err
	}

	q := url.Values{"code": {code}}
	if req.State != "" {
		q.Set("state", req.State)
	}
	if req.Nonce != "" {
		q.Set("nonce", req.Nonce)
	}
	redirectURL, err := AppendQuery(req.RedirectURI, q)
	if err != nil {
		return nil, err
	}

	return &AuthorizeResult{Outcome: OutcomeRedirect, Client: client, RedirectURL: redirectURL}, nil
}

func (s *AuthorizeService) gate() Gate {
	if s.Gate == nil {
		return AllowAll{}
	}
	return s.Gate
}

func redirectError(req AuthorizeRequest, err error, desc string) *RedirectError {
	return &RedirectError{Err: err, Description: desc, RedirectURI: req.RedirectURI, State: req.State}
}

// AppendQuery adds params to base, keeping any query base already has.
func AppendQuery(base string, params url.Values) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, vs := range params {
		q[k] = vs
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// validatePKCE normalises the challenge method. A challenge without a
// method is plain (RFC 7636 section 4.3).
func validatePKCE(challenge, method string, required bool) (string, string, error) {
	challenge = strings.TrimSpace(challenge)
	method = strings.TrimSpace(method)

	if challenge == "" {
		if required {
			return "", "", ErrInvalidRequest
		}
		return "", "", nil
	}

	switch {
	case strings.EqualFold(method, "S256"):
		return challenge, "S256", nil
	case method == "" || strings.EqualFold(method, "plain"):
		return challenge, "plain", nil
	default:
		return "", "", ErrInvalidRequest
	}
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
