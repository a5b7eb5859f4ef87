package metric

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/easytv/smclient-go/pkg/smclient"
)

const namespace = "smclient"

// Code label values for requests that carried no application code.
const (
	CodeTransportError = "transport_error"
	CodeUndecodable    = "undecodable"
)

// Registry holds all client metrics.
type Registry struct {
	reg *prometheus.Registry

	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	SessionTransitions *prometheus.CounterVec
}

// *Registry implements smclient.Observer.
var _ smclient.Observer = (*Registry)(nil)

// NewRegistry creates a registry with all metrics registered.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Service Manager requests by method, route and application code.",
		}, []string{"method", "route", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Service Manager request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		SessionTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_transitions_total",
			Help:      "Content-owner session transitions by resulting state.",
		}, []string{"state"}),
	}

	r.reg.MustRegister(r.RequestsTotal, r.RequestDuration, r.SessionTransitions)
	return r
}

// ObserveRequest implements smclient.Observer.
func (r *Registry) ObserveRequest(info smclient.RequestInfo) {
	code := codeLabel(info)
	r.RequestsTotal.WithLabelValues(info.Method, info.Route, code).Inc()
	r.RequestDuration.WithLabelValues(info.Method, info.Route).Observe(info.Elapsed.Seconds())
}

// ObserveSession implements smclient.Observer.
func (r *Registry) ObserveSession(loggedIn bool) {
	state := "logged_out"
	if loggedIn {
		state = "logged_in"
	}
	r.SessionTransitions.WithLabelValues(state).Inc()
}

// Gatherer returns the underlying gatherer.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// WriteTextfile writes all metrics to path in the text exposition format.
// The file is replaced atomically.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}

func codeLabel(info smclient.RequestInfo) string {
	switch {
	case info.Err != nil:
		return CodeTransportError
	case !info.HasCode:
		return CodeUndecodable
	case info.Code == smclient.Success, info.Code == smclient.Unauthorized:
		return info.Code.String()
	default:
		return strconv.Itoa(int(info.Code))
	}
}
