// Package logging provides structured logging for ccloudctl with unified
// log handling and level filtering.
//
// The package is built on Go's standard slog package and tags every entry
// with a subsystem identifier so related messages can be filtered together.
//
// # Usage
//
//	import "ccloudctl/pkg/logging"
//
//	// Initialize with Info level logging to stderr
//	logging.Init(logging.LevelInfo, os.Stderr)
//
//	// Log messages
//	logging.Info("Client", "requesting %s %s", method, path)
//	logging.Debug("Manifest", "loaded %d documents from %s", n, path)
//	logging.Warn("Runner", "document skipped: %s", reason)
//	logging.Error("Client", err, "request failed after %d attempts", attempts)
//
// # Subsystem Organization
//
// Logs are organized by subsystem to enable filtering and categorization:
//
//   - **Client**: control-plane HTTP requests, retries, pagination
//   - **Manifest**: manifest loading, templating, and validation
//   - **Reconcile**: desired-state comparison and actions taken
//   - **Runner**: apply/destroy runs and file watching
//
// # Thread Safety
//
// The logging functions are safe for concurrent use from multiple
// goroutines; level filtering happens at the handler level so filtered-out
// messages cost no allocation.
package logging
