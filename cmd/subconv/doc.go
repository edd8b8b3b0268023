// Package main hosts the subconv CLI entrypoint and command graph.
//
// Running subconv with no arguments converts every subtitle of the configured
// source format in the current directory. The Cobra command tree adds
// configuration scaffolding, a doctor command for readiness checks, and a
// history view over the optional run ledger. This package resolves
// configuration, wires logging, and prints status lines; the conversion
// itself lives in internal/batch.
package main
