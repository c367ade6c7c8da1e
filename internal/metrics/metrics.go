// Package metrics provides Prometheus metrics for zonesync.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every zonesync metric name.
const Namespace = "zonesync"

var (
	// APIRequests counts provider API calls by instance, HTTP method and
	// response status code.
	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "provider",
		Name:      "api_requests_total",
		Help:      "Provider API requests issued, by instance, method and status code.",
	}, []string{"provider", "method", "code"})

	// ChangesApplied counts record changes successfully applied, by instance
	// and operation (create, update, delete).
	ChangesApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "changes_applied_total",
		Help:      "Record changes applied to providers, by instance and operation.",
	}, []string{"provider", "op"})

	// ProviderErrors counts fatal provider errors surfaced to the caller.
	ProviderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "provider_errors_total",
		Help:      "Fatal provider errors, by instance.",
	}, []string{"provider"})

	buildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "build_info",
		Help:      "Build information, value is always 1.",
	}, []string{"version", "go_version"})
)

// SetBuildInfo records the running binary's version labels.
func SetBuildInfo(version, goVersion string) {
	buildInfo.WithLabelValues(version, goVersion).Set(1)
}

// Handler returns the HTTP handler serving the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
