// Package application wires the resolved configuration into the settings
// inspection server: handler, router and HTTP server instances, keeping the
// main package focused on CLI parsing and orchestration.
package application
