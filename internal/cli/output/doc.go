// Package output renders Service Manager results for smctl.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: table rendering of JSON payloads with wide mode
//   - json.go, yaml.go: machine-readable output for scripting
//   - progress.go: progress bar for asset uploads
package output
