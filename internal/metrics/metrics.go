package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation outcomes.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

var (
	// Registry holds every jewelbook collector plus the Go runtime collectors.
	Registry = prometheus.NewRegistry()

	// LedgerOperations counts ledger mutations by operation and outcome.
	LedgerOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jewelbook_ledger_operations_total",
			Help: "Ledger operations by operation and result.",
		},
		[]string{"op", "result"},
	)

	// HTTPRequests counts served requests by method and status code.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jewelbook_http_requests_total",
			Help: "HTTP requests by method and status code.",
		},
		[]string{"method", "status"},
	)
)

func init() {
	Registry.MustRegister(
		LedgerOperations,
		HTTPRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ObserveOperation records the outcome of one ledger operation.
func ObserveOperation(op, result string) {
	LedgerOperations.WithLabelValues(op, result).Inc()
}

// ObserveRequest records one served HTTP request.
func ObserveRequest(method string, status int) {
	HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
