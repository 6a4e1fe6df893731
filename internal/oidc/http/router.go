package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/openid/internal/oidc/registry"
	"github.com/aussiebroadwan/openid/internal/oidc/service"
	"github.com/aussiebroadwan/openid/internal/oidc/store"
	"github.com/aussiebroadwan/openid/pkg/httpx"
	"github.com/aussiebroadwan/openid/pkg/jwtx"
	"github.com/aussiebroadwan/openid/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/aussiebroadwan/openid/api/oidc" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Paths served by the router besides the protocol endpoints in service.
const (
	PathLogin   = "/login"
	PathLogout  = "/logout"
	PathLivez   = "/livez"
	PathReadyz  = "/readyz"
	PathMetrics = "/metrics"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeyManager
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store    store.Store
	registry *registry.Registry

	AuthorizeService *service.AuthorizeService
	TokenService     *service.TokenService
	UserInfoService  *service.UserInfoService
	UserService      *service.UserService
	SessionService   *service.SessionService
	Claims           *service.ClaimsProvider

	// Consent overrides the built-in consent page.
	Consent ConsentRenderer
	Pages   *Pages

	// SecureCookies marks the session cookie Secure. Off only for plain
	// http development setups.
	SecureCookies bool
}

func NewRouter(
	keys *jwtx.KeyManager,
	buildVersion string,
	st store.Store,
	reg *registry.Registry,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		registry:     reg,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	if r.Pages == nil {
		r.Pages = MustPages()
	}
	if r.Consent == nil {
		r.Consent = r.Pages
	}

	cookies := &SessionCookies{Sessions: r.SessionService, Secure: r.SecureCookies}

	r.registerWellKnown()
	r.registerOAuth2(cookies)
	r.registerSession(cookies)
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			OpenID Connect Provider API
//	@version		0.1.0
//	@description	OpenID Connect authorization server: authorization code flow with optional PKCE, RS256 ID
//	@description	and access tokens, sticky per-client consent.
//	@description
//	@description				Tokens can be verified using the JWKS endpoint.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/openid
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Access token from /token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerWellKnown() {
	doc := service.Discovery(r.keys.Issuer(), r.Claims)

	r.Mux.Handle("GET "+service.PathDiscovery,
		httpx.Chain(DiscoveryHandler(doc),
			httpx.AllowAnyOrigin,
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET "+service.PathJWKS,
		httpx.Chain(JWKSHandler(r.keys.KeySet),
			httpx.AllowAnyOrigin,
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerOAuth2(cookies *SessionCookies) {
	authorizeHandler := &AuthorizeHandler{
		AuthorizeService: r.AuthorizeService,
		Cookies:          cookies,
		Consent:          r.Consent,
		Pages:            r.Pages,
		AuthorizePath:    service.PathAuthorize,
		LoginPath:        PathLogin,
		LogoutPath:       PathLogout,
	}

	// GET mostly renders pages; POST carries consent decisions.
	r.Mux.Handle("GET "+service.PathAuthorize,
		httpx.Chain(http.HandlerFunc(authorizeHandler.HandleGet),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST "+service.PathAuthorize,
		httpx.Chain(http.HandlerFunc(authorizeHandler.HandlePost),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// Limited by IP and client so one noisy client cannot starve the rest.
	tokenHandler := &TokenHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST "+service.PathToken,
		httpx.Chain(tokenHandler,
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "client_id"),
		),
	)

	userInfo := httpx.Chain(&UserInfoHandler{UserInfoService: r.UserInfoService},
		httpx.AuthnMiddleware(r.keys.VerifierFor(jwtx.UseAccess)),
		httpx.RequireAnyScope("openid"),
		httpx.RateLimitBySubject(httpx.LenientLimit),
	)
	r.Mux.Handle("GET "+service.PathUserInfo, userInfo)
	r.Mux.Handle("POST "+service.PathUserInfo, userInfo)
}

func (r *Router) registerSession(cookies *SessionCookies) {
	h := &LoginHandler{
		UserService: r.UserService,
		Cookies:     cookies,
		Pages:       r.Pages,
		LoginPath:   PathLogin,
		DefaultPath: PathLogin,
	}

	r.Mux.Handle("GET "+PathLogin,
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	// Password guessing is limited per IP and username.
	r.Mux.Handle("POST "+PathLogin,
		httpx.Chain(http.HandlerFunc(h.HandlePost),
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "username"),
		),
	)
	r.Mux.Handle("POST "+PathLogout,
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET "+PathLivez, LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET "+PathReadyz, ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys.KeySet, r.registry))
	r.Mux.Handle("GET "+PathMetrics, promhttp.Handler())
}
