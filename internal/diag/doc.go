// Package diag defines the diagnostic model shared by the comment parser,
// the driver and the CLI.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Line – 1-based line of the test file the problem was found on.
//   - Message – human oriented text; keep it short and actionable.
//
// # Emitting diagnostics
//
// Producers either append to a Bag directly or go through a Reporter.
// A Bag never stops a producer: parsing collects every problem of a file and
// the caller decides what to do with a non-empty Bag. Bag.Errors converts the
// collected diagnostics into an Errors value, which is what a failed parse
// returns.
//
// Package diag does not perform any formatting beyond the single-line short
// form in golden.go. Rendering lives in internal/diagfmt.
package diag
