// Package main provides the entry point for smctl.
//
// smctl is a command-line client for the EasyTV Service Manager:
//
//   - Content-owner session (login, logout, ping, change password)
//   - Service browsing and job submission for content owners
//   - Backend task registration and job processing with an API key
//   - Local configuration management
//
// Usage:
//
//	smctl [global flags] command [flags] [args]
//	smctl -u owner owner jobs list --limit 10
//	smctl --api-key $KEY backend jobs upload 42 ./out.mp4
//	smctl repl
package main
