// Package buildinfo exposes build information for smctl.
//
// Values are injected at build time via ldflags:
//
//	go build -ldflags "-X github.com/easytv/smclient-go/internal/infra/buildinfo.Version=v1.0.0"
//
// GoVersion falls back to the runtime version when not injected.
package buildinfo
