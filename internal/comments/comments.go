package comments

import (
	"slices"
	"strings"
)

// Comments is the parsed configuration of one test file.
//
// A Comments value is immutable once Parse returns and may be read from any
// number of goroutines. Buckets handed out by its methods are copies, so
// changing them does not affect the parse result.
type Comments struct {
	revisions    []string
	hasRevisions bool
	buckets      map[string]*Revisioned
	order        []*Revisioned
}

// Spanned is a singular setting together with the line it was set on.
type Spanned[T any] struct {
	Value T
	Line  int
}

// EnvVar is one KEY=VALUE pair from rustc-env.
type EnvVar struct {
	Key   string
	Value string
}

// AuxBuild is an auxiliary file to build before the test.
type AuxBuild struct {
	Path string
	Kind string
	Line int
}

// Revisioned holds the directives and annotations scoped to one revision key.
type Revisioned struct {
	// Revisions is the key exactly as written in the `[...]` prefix; empty
	// for the unconditional bucket.
	Revisions []string
	// Line is where the bucket was first used.
	Line int
	// Ignore skips the test if any condition holds.
	Ignore []Condition
	// Only runs the test only if all conditions hold.
	Only []Condition
	// StderrPerBitwidth keeps one stderr file per pointer width.
	StderrPerBitwidth bool
	CompileFlags      []string
	EnvVars           []EnvVar
	NormalizeStderr   []Normalization
	// ErrorInOtherFiles are expected diagnostics not tied to a line of this file.
	ErrorInOtherFiles []Spanned[Pattern]
	ErrorMatches      []ErrorMatch
	// RequireAnnotationsForLevel ignores diagnostics below the level; nil
	// means the lowest level used by ErrorMatches.
	RequireAnnotationsForLevel *Spanned[Level]
	AuxBuilds                  []AuxBuild
	Edition                    *Spanned[string]
	Mode                       *Spanned[Mode]
	NeedsAsmSupport            bool
}

func newComments() *Comments {
	return &Comments{buckets: make(map[string]*Revisioned)}
}

func bucketKey(revisions []string) string {
	return strings.Join(revisions, "\x00")
}

// bucket returns the bucket for revisions, creating it at line if needed.
func (c *Comments) bucket(revisions []string, line int) *Revisioned {
	key := bucketKey(revisions)
	if r, ok := c.buckets[key]; ok {
		return r
	}
	r := &Revisioned{Revisions: revisions, Line: line}
	c.buckets[key] = r
	c.order = append(c.order, r)
	return r
}

// Revisions returns the declared revision names and whether a `revisions`
// directive was present at all.
func (c *Comments) Revisions() ([]string, bool) {
	return slices.Clone(c.revisions), c.hasRevisions
}

// Buckets returns copies of all buckets in order of first use.
func (c *Comments) Buckets() []*Revisioned {
	out := make([]*Revisioned, len(c.order))
	for i, r := range c.order {
		out[i] = r.clone()
	}
	return out
}

// Bucket returns a copy of the bucket whose key is exactly revisions.
func (c *Comments) Bucket(revisions ...string) (*Revisioned, bool) {
	r, ok := c.buckets[bucketKey(revisions)]
	if !ok {
		return nil, false
	}
	return r.clone(), true
}

// ForRevision returns copies of the buckets that apply to revision: the
// unconditional one and every bucket whose key names revision.
func (c *Comments) ForRevision(revision string) []*Revisioned {
	var out []*Revisioned
	for _, r := range c.order {
		if len(r.Revisions) == 0 || slices.Contains(r.Revisions, revision) {
			out = append(out, r.clone())
		}
	}
	return out
}

// clone copies every slice and pointer of r. Patterns and regexps are
// shared; they are never modified after compilation.
func (r *Revisioned) clone() *Revisioned {
	out := *r
	out.Revisions = slices.Clone(r.Revisions)
	out.Ignore = slices.Clone(r.Ignore)
	out.Only = slices.Clone(r.Only)
	out.CompileFlags = slices.Clone(r.CompileFlags)
	out.EnvVars = slices.Clone(r.EnvVars)
	out.NormalizeStderr = slices.Clone(r.NormalizeStderr)
	for i := range out.NormalizeStderr {
		out.NormalizeStderr[i].Replacement = slices.Clone(r.NormalizeStderr[i].Replacement)
	}
	out.ErrorInOtherFiles = slices.Clone(r.ErrorInOtherFiles)
	out.ErrorMatches = slices.Clone(r.ErrorMatches)
	out.AuxBuilds = slices.Clone(r.AuxBuilds)
	out.RequireAnnotationsForLevel = clonePtr(r.RequireAnnotationsForLevel)
	out.Edition = clonePtr(r.Edition)
	out.Mode = clonePtr(r.Mode)
	return &out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
