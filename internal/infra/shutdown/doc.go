// Package shutdown coordinates cleanup when smctl exits.
//
// Hooks registered with OnShutdown run once, in reverse order of
// registration, either when Run is called at the end of a command or when
// the process receives SIGINT or SIGTERM.
//
// Usage:
//
//	ctx, stop := shutdown.WithSignals(context.Background())
//	defer stop()
package shutdown
