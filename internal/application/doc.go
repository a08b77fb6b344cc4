// Package application wires configuration, catalog, planner, stores, tracing
// and the HTTP server together so the main package only parses flags and
// handles signals.
package application
