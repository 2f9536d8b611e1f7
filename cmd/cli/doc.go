// Package cli constructs the gikkon command-line interface, wiring the Cobra
// command hierarchy, the TOML configuration loader, and structured logging.
// It exposes helpers to build reusable application instances and to execute
// the default command set.
package cli
