// Package command defines the smctl command tree on urfave/cli/v2.
//
//   - root.go: App, global flags, runtime setup and teardown
//   - runtime.go: shared clients, logger, metrics and login handling
//   - owner.go: content-owner commands (session authenticated)
//   - backend.go: backend service commands (API key authenticated)
//   - config.go: local configuration commands
//   - repl.go: interactive mode
//
// A single command logs in on demand and logs out when it finishes. In
// interactive mode every line runs on a fresh App that shares one runtime,
// so the session survives until "logout" or exit.
package command
