package comments

import (
	"uitest/internal/diag"
)

// FindOne looks up a singular setting for revision. The first bucket (in order
// of first use) that has a value wins; every further value is handed to
// conflict, since a setting must be supplied at most once per revision.
func FindOne[T any](c *Comments, revision string, get func(*Revisioned) (T, bool), conflict func(T)) (T, bool) {
	var (
		result T
		found  bool
	)
	for _, r := range c.ForRevision(revision) {
		v, ok := get(r)
		if !ok {
			continue
		}
		if found {
			if conflict != nil {
				conflict(v)
			}
			continue
		}
		result, found = v, true
	}
	return result, found
}

// Edition resolves the edition for revision, reporting duplicates to rep.
func (c *Comments) Edition(revision string, rep diag.Reporter) (Spanned[string], bool) {
	return FindOne(c, revision,
		func(r *Revisioned) (Spanned[string], bool) {
			if r.Edition == nil {
				return Spanned[string]{}, false
			}
			return *r.Edition, true
		},
		func(dup Spanned[string]) {
			rep.Report(diag.CommentDuplicate, diag.SevError, dup.Line, "`edition` specified twice")
		},
	)
}

// Mode resolves the run mode for revision, reporting duplicates to rep.
func (c *Comments) Mode(revision string, rep diag.Reporter) (Spanned[Mode], bool) {
	return FindOne(c, revision,
		func(r *Revisioned) (Spanned[Mode], bool) {
			if r.Mode == nil {
				return Spanned[Mode]{}, false
			}
			return *r.Mode, true
		},
		func(dup Spanned[Mode]) {
			rep.Report(diag.CommentDuplicate, diag.SevError, dup.Line, "test mode specified twice")
		},
	)
}

// Skipped reports whether revision must not run on t: some ignore condition
// holds, or some only condition does not.
func (c *Comments) Skipped(revision string, t Target) bool {
	for _, r := range c.ForRevision(revision) {
		for _, cond := range r.Ignore {
			if cond.Holds(t) {
				return true
			}
		}
		for _, cond := range r.Only {
			if !cond.Holds(t) {
				return true
			}
		}
	}
	return false
}
