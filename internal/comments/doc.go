// Package comments extracts test directives from the comments of a test file.
//
// Three kinds of lines are recognised:
//
//	//@[rev1, rev2] name: args    a directive, optionally scoped to revisions
//	code //~^ ERROR: message     a diagnostic annotation
//	// anything else              a plain comment, checked for directive-like text
//
// Directives accumulate into one Revisioned bucket per revision key. The
// empty key holds what applies to every revision. Singular settings may be
// given once per bucket; whether a value given in two overlapping buckets is a
// conflict is decided by the reader, see FindOne.
//
// Parse is a pure function of the file content and is safe to call from many
// goroutines at once.
package comments
