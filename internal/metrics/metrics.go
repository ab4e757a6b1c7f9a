package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var operations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "groupmail",
	Name:      "operations_total",
	Help:      "Account, group and claim operations by outcome.",
}, []string{"operation", "outcome"})

var mailmanRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "groupmail",
	Name:      "mailman_requests_total",
	Help:      "Requests made to the mailing-list server by command and status.",
}, []string{"command", "status"})

// ObserveOperation counts one finished operation. outcome is "ok" or the
// error kind.
func ObserveOperation(operation, outcome string) {
	operations.WithLabelValues(operation, outcome).Inc()
}

// ObserveMailman counts one mailing-list server request.
func ObserveMailman(command, status string) {
	mailmanRequests.WithLabelValues(command, status).Inc()
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
