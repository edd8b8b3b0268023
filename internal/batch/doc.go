// Package batch converts every subtitle file of one format in a directory into
// a sibling file of another format by invoking an external converter once per
// file.
//
// A run discovers inputs, converts them sequentially in discovery order, and
// reports one Result per file through an Observer. Conversion failures of a
// single file are data (Result.Status == StatusFailure) and never stop the
// batch; infrastructure problems (unreadable directory, missing converter
// binary, cancellation) abort immediately and surface as errors tagged with
// the services markers.
package batch
