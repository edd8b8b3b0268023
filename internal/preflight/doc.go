// Package preflight provides readiness checks for the converter binary and
// the filesystem paths subconv depends on.
//
// The CLI "subconv doctor" command runs RunAll and prints one status line per
// check. Batch runs do not call it; a missing converter surfaces there as an
// infrastructure error on the first file.
package preflight
