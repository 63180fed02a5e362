package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(apiRequestsTotal) }

var apiRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "api_requests_total",
		Help: "Operator API requests, labeled by method, path and status code.",
	},
	[]string{"method", "path", "status"},
)

func IncAPIRequest(method, path string, status int) {
	apiRequestsTotal.WithLabelValues(method, norm(path), strconv.Itoa(status)).Inc()
}
