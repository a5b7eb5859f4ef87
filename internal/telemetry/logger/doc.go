// Package logger provides structured logging for smctl and the client SDK.
//
// This package wraps zap for structured logging:
//
//   - logger.go: Logger interface, configuration and the global default
//   - zap.go: zap core construction and level handling
//   - context.go: Context-aware logging with request IDs
//   - redact.go: Sensitive field redaction
//
// Passwords, session tokens and API keys never reach the output: any string
// field whose key looks sensitive is replaced before encoding.
package logger
