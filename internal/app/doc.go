// Package app wires the ITA reporting server together: configuration,
// logging, tracing, the scoring service and the HTTP transport. It owns the
// server lifecycle, from startup through graceful shutdown on SIGINT/SIGTERM.
package app
