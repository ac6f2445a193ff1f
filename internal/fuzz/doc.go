// Package fuzztests houses Go fuzz harnesses for the comment parser. They
// guard against panics, hangs and nondeterminism on arbitrary input, and
// check the structural invariants of every parse result.
//
// Seeds come from testdata/ui at the repository root plus a fixed list of
// directive and annotation snippets.
package fuzztests
