package http

import (
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/aussiebroadwan/openid/internal/oidc/service"
	"github.com/aussiebroadwan/openid/pkg/authsdk"
	"github.com/aussiebroadwan/openid/pkg/slogx"
)

// Form fields that steer the flow rather than describe the request. They
// are never replayed.
var controlFields = []string{"authorize", "cancel", "consent_token"}

// AuthorizeHandler serves the authorization endpoint. It translates HTTP
// into service.AuthorizeRequest and the resulting outcome back into a
// redirect or a page.
type AuthorizeHandler struct {
	AuthorizeService *service.AuthorizeService
	Cookies          *SessionCookies
	Consent          ConsentRenderer
	Pages            *Pages

	// Paths the handler links to.
	AuthorizePath string
	LoginPath     string
	LogoutPath    string
}

// HandleGet starts or resumes an authorization request.
//
//	@Summary		OAuth2 authorization endpoint (GET)
//	@Description	Starts the authorization code flow. Without a session the user agent is sent to /login and
//	@Description	returns here with the same parameters. A consent page is shown when the user has not approved
//	@Description	the client within the consent TTL; otherwise a code is issued immediately.
//	@Tags			OAuth2
//	@Produce		html
//	@Param			response_type			query		string					true	"Must be 'code'"	default(code)
//	@Param			client_id				query		string					true	"OAuth2 client identifier"
//	@Param			redirect_uri			query		string					false	"Callback URI (required when the client has several)"
//	@Param			scope					query		string					false	"Space-delimited list of scopes"	example("openid profile")
//	@Param			state					query		string					false	"Opaque value echoed back to the client"
//	@Param			nonce					query		string					false	"Copied into the ID token"
//	@Param			code_challenge			query		string					false	"PKCE code challenge"
//	@Param			code_challenge_method	query		string					false	"PKCE method"	default(plain)	Enums(S256, plain)
//	@Success		200						{string}	string					"Consent page"
//	@Success		302						{string}	string					"Redirect to redirect_uri with code, state and nonce, or to /login"
//	@Failure		400						{object}	authsdk.OAuth2Error		"Invalid client or redirect_uri"
//	@Failure		403						{string}	string					"The user may not use this issuer"
//	@Router			/authorize [get]
func (h *AuthorizeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.process(w, r, r.URL.Query(), false)
}

// HandlePost accepts the same parameters as a form body, plus the consent
// decision.
//
//	@Summary		OAuth2 authorization endpoint (POST)
//	@Description	Same as GET with parameters in the form body. The consent page posts back here with
//	@Description	authorize=Authorize (or cancel=Cancel) and the consent_token it was rendered with.
//	@Tags			OAuth2
//	@Accept			x-www-form-urlencoded
//	@Produce		html
//	@Param			client_id		formData	string					true	"OAuth2 client identifier"
//	@Param			response_type	formData	string					true	"Must be 'code'"
//	@Param			authorize		formData	string					false	"Consent confirmation"	Enums(Authorize)
//	@Param			cancel			formData	string					false	"Consent refusal"
//	@Param			consent_token	formData	string					false	"Ticket issued with the consent page"
//	@Success		302				{string}	string					"Redirect to redirect_uri"
//	@Failure		400				{object}	authsdk.OAuth2Error		"Invalid request"
//	@Router			/authorize [post]
func (h *AuthorizeHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		authsdk.ErrInvalidContentType.WriteError(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		authsdk.ErrInvalidFormBody.WriteError(w)
		return
	}

	// Body wins; the query string fills gaps so a form that posts to a URL
	// carrying parameters still works.
	params := url.Values{}
	for k, v := range r.URL.Query() {
		params[k] = v
	}
	for k, v := range r.PostForm {
		params[k] = v
	}
	h.process(w, r, params, true)
}

func (h *AuthorizeHandler) process(w http.ResponseWriter, r *http.Request, params url.Values, post bool) {
	ctx := slogx.With(r.Context(), "client_id", params.Get("client_id"))
	r = r.WithContext(ctx)
	log := slogx.FromContext(ctx)

	req := service.AuthorizeRequest{
		ResponseType:        params.Get("response_type"),
		ClientID:            params.Get("client_id"),
		RedirectURI:         params.Get("redirect_uri"),
		Scope:               params.Get("scope"),
		State:               params.Get("state"),
		Nonce:               params.Get("nonce"),
		CodeChallenge:       params.Get("code_challenge"),
		CodeChallengeMethod: params.Get("code_challenge_method"),
		Subject:             h.Cookies.Subject(r),
	}
	if post {
		switch {
		case params.Get("authorize") != "":
			req.Decision = service.DecisionAuthorize
		case params.Get("cancel") != "":
			req.Decision = service.DecisionCancel
		}
		req.ConsentTicket = params.Get("consent_token")
	}

	res, err := h.AuthorizeService.Authorize(ctx, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	replay := replayParams(params)

	switch res.Outcome {
	case service.OutcomeRedirect:
		log.Info("authorization code issued", "subject", req.Subject)
		http.Redirect(w, r, res.RedirectURL, http.StatusFound)

	case service.OutcomeLogin:
		returnTo := h.AuthorizePath + "?" + replay.Encode()
		http.Redirect(w, r, h.LoginPath+"?"+url.Values{"return_to": {returnTo}}.Encode(), http.StatusFound)

	case service.OutcomeForbidden:
		page := ForbiddenPage{
			ClientName:   displayName(res.Client.Name, res.Client.ID),
			SubjectName:  req.Subject,
			LogoutAction: h.LogoutPath,
			ReturnTo:     h.AuthorizePath + "?" + replay.Encode(),
		}
		if err := h.Pages.RenderForbidden(w, page); err != nil {
			log.Error("render forbidden page", slogx.Err(err))
		}

	case service.OutcomeConsent:
		prompt := res.Consent
		page := ConsentPage{
			ClientID:    prompt.ClientID,
			ClientName:  prompt.ClientName,
			SubjectName: prompt.SubjectName,
			Scopes:      prompt.Scopes,
			Action:      h.AuthorizePath,
			Fields:      append(hiddenFields(replay), HiddenField{Name: "consent_token", Value: prompt.Ticket}),
		}
		if err := h.Consent.RenderConsent(w, page); err != nil {
			log.Error("render consent page", slogx.Err(err))
		}

	default:
		log.Error("unexpected authorize outcome", "outcome", res.Outcome.String())
		authsdk.ErrServerError.WriteError(w)
	}
}

// writeError reports to the client's redirect_uri when the service says
// it is safe to, and directly otherwise.
func (h *AuthorizeHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	var rerr *service.RedirectError
	if errors.As(err, &rerr) {
		oerr, ok := toOAuth2Error(rerr.Err)
		if !ok {
			log.Error("authorize request failed", slogx.Err(err))
			oerr = authsdk.ErrServerError
		} else if rerr.Description != "" {
			oerr = oerr.WithDescription(rerr.Description)
		}

		target, buildErr := service.AppendQuery(rerr.RedirectURI, oerr.RedirectQuery(rerr.State))
		if buildErr == nil {
			log.Info("authorize request rejected", "error", oerr.Code, "redirect_uri", rerr.RedirectURI)
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		log.Error("build error redirect", slogx.Err(buildErr))
		oerr.WriteError(w)
		return
	}

	// An unknown client is a bad request here, not a failed authentication.
	if errors.Is(err, service.ErrInvalidClient) {
		authsdk.NewOAuth2Error(http.StatusBadRequest, authsdk.ErrorCodeInvalidClient, "unknown client_id").WriteError(w)
		return
	}
	writeServiceError(w, r, err, "authorize request failed")
}

func replayParams(params url.Values) url.Values {
	out := url.Values{}
	for k, v := range params {
		if slices.Contains(controlFields, k) {
			continue
		}
		out[k] = v
	}
	return out
}

func hiddenFields(params url.Values) []HiddenField {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var out []HiddenField
	for _, k := range keys {
		for _, v := range params[k] {
			out = append(out, HiddenField{Name: k, Value: v})
		}
	}
	return out
}

func displayName(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}
