package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/openid/internal/oidc/registry"
	"github.com/aussiebroadwan/openid/internal/oidc/store"
	"github.com/aussiebroadwan/openid/pkg/authsdk"
	"github.com/aussiebroadwan/openid/pkg/httpx"
	"github.com/aussiebroadwan/openid/pkg/jwtx"
)

// LivezHandler godoc
//
//	@Summary		Liveness Check Endpoint
//	@Description	Always 200 while the process is serving requests
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get]
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, authsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe reporting the database, the signing key and the client registry
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get]
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	keys *jwtx.KeySet,
	clients *registry.Registry,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := authsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  &authsdk.HealthChecks{},
		}

		probe := func(field *string, problem string) {
			if problem == "" {
				*field = "ok"
				return
			}
			*field = "error: " + problem
			resp.Status = "degraded"
		}

		var dbProblem string
		if err := st.Ping(r.Context()); err != nil {
			dbProblem = err.Error()
		}
		probe(&resp.Checks.Database, dbProblem)

		var signerProblem string
		if !keys.IsReady() {
			signerProblem = "no keys loaded"
		}
		probe(&resp.Checks.Signer, signerProblem)

		var clientsProblem string
		if clients == nil || clients.Len() == 0 {
			clientsProblem = "no clients registered"
		}
		probe(&resp.Checks.Clients, clientsProblem)

		code := http.StatusOK
		if resp.Status != "ok" {
			code = http.StatusServiceUnavailable
		}
		httpx.WriteJSON(w, code, resp)
	}
}
