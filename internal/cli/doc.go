// Package cli carries the pieces every command shares: connection flags
// and client construction, progress spinners for long-running calls, and
// the typed errors the process exit code is derived from.
package cli
