// Package metrics holds the Prometheus counters for the authorization flow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "oidc"

// Redemption results.
const (
	ResultSuccess  = "success"
	ResultNotFound = "not_found"
	ResultExpired  = "expired"
	ResultMismatch = "mismatch"
	ResultError    = "error"
)

// Token types.
const (
	TokenAccess  = "access"
	TokenID      = "id"
	TokenSession = "session"
)

var (
	CodesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_codes_issued_total",
		Help:      "Authorization codes issued at the authorization endpoint.",
	})

	CodesRedeemed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_codes_redeemed_total",
		Help:      "Authorization code redemption attempts by result.",
	}, []string{"result"})

	CodesSwept = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_codes_swept_total",
		Help:      "Expired authorization codes removed by housekeeping.",
	})

	ConsentsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "consents_recorded_total",
		Help:      "Explicit consent approvals recorded.",
	})

	TokensIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Signed tokens issued by type.",
	}, []string{"type"})
)
