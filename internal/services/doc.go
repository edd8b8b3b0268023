// Package services defines shared utilities consumed by the batch runner, the
// CLI, and the supporting stores.
//
// Key responsibilities:
//   - Context helpers that stamp batch run IDs, stage names, and the file under
//     conversion for logging.
//   - Structured error markers plus the Wrap helper so callers can tell an
//     infrastructure abort apart from a configuration or lock problem.
//
// Use these helpers when wiring new behaviour so error classification and log
// fields stay uniform across commands.
package services
