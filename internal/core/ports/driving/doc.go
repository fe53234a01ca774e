// Package driving holds the use-case interfaces that the cli, mcp and tui
// adapters call: build, query, answer and settings. Their implementations
// live in internal/core/services.
package driving
