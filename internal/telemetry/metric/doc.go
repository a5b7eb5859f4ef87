// Package metric provides Prometheus metrics for the Service Manager client.
//
// Registry implements smclient.Observer and records:
//
//   - smclient_requests_total{method,route,code}
//   - smclient_request_duration_seconds{method,route}
//   - smclient_session_transitions_total{state}
//
// smctl has no listener, so metrics are exported with WriteTextfile for the
// node exporter textfile collector.
package metric
