package comments

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"
	"github.com/kballard/go-shellquote"

	"uitest/internal/diag"
)

// commandFunc applies one directive to the bucket selected by its revision
// prefix. Problems go to the parser's diagnostics.
type commandFunc func(p *parser, r *Revisioned, args string)

// commands is the fixed directive vocabulary. ignore-* and only-* are handled
// separately because their suffix is a Condition, not a name.
var commands = map[string]commandFunc{
	"compile-flags":                 compileFlags,
	"rustc-env":                     rustcEnv,
	"normalize-stderr-test":         normalizeStderr,
	"error-pattern":                 errorPattern,
	"error-in-other-file":           errorInOtherFile,
	"stderr-per-bitwidth":           stderrPerBitwidth,
	"run-rustfix":                   runRustfix,
	"check-pass":                    checkPass,
	"run":                           run,
	"needs-asm-support":             needsAsmSupport,
	"aux-build":                     auxBuild,
	"edition":                       edition,
	"require-annotations-for-level": requireAnnotationsForLevel,
}

// commandNames is sorted so that suggestions are deterministic.
var commandNames = func() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}()

// CommandNames returns the names of all known directives, sorted.
func CommandNames() []string {
	return slices.Clone(commandNames)
}

func (p *parser) runCommand(r *Revisioned, name, args string) {
	if cmd, ok := commands[name]; ok {
		cmd(p, r, args)
		return
	}
	// args of ignore-/only- are ignored (can be used as comment)
	if s, ok := strings.CutPrefix(name, "ignore-"); ok {
		if cond, ok := p.parseCondition(s); ok {
			r.Ignore = append(r.Ignore, cond)
		}
		return
	}
	if s, ok := strings.CutPrefix(name, "only-"); ok {
		if cond, ok := p.parseCondition(s); ok {
			r.Only = append(r.Only, cond)
		}
		return
	}
	p.errorf(diag.CommentUnknownDirective,
		"`%s` is not a known test command, did you mean `%s`?", name, suggestCommand(name))
}

func (p *parser) parseCondition(s string) (Condition, bool) {
	cond, err := ParseCondition(s)
	if err != nil {
		p.errorf(diag.CommentBadCondition, "%v", err)
		return Condition{}, false
	}
	return cond, true
}

// suggestCommand returns the known name closest to name.
func suggestCommand(name string) string {
	best, bestDist := "", -1
	for _, candidate := range commandNames {
		d := edlib.DamerauLevenshteinDistance(candidate, name)
		if bestDist < 0 || d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}

func compileFlags(p *parser, r *Revisioned, args string) {
	flags, err := shellquote.Split(args)
	if err != nil {
		p.errorf(diag.CommentSyntax, "`%s` contains an unclosed quotation mark", args)
		return
	}
	r.CompileFlags = append(r.CompileFlags, flags...)
}

func rustcEnv(p *parser, r *Revisioned, args string) {
	for _, env := range strings.Fields(args) {
		key, value, ok := strings.Cut(env, "=")
		if !p.check(ok, diag.CommentBadArgument,
			"environment variables must be key/value pairs separated by a `=`") {
			continue
		}
		r.EnvVars = append(r.EnvVars, EnvVar{Key: key, Value: value})
	}
}

// normalizeStderr parses `"from" -> "to"`.
func normalizeStderr(p *parser, r *Revisioned, args string) {
	from, rest, ok := p.parseStr(args)
	if !ok {
		return
	}
	to, ok := strings.CutPrefix(rest, "->")
	if !ok {
		p.errorf(diag.CommentSyntax, "normalize-stderr-test needs a pattern and replacement separated by `->`")
		return
	}
	to, rest, ok = p.parseStr(strings.TrimLeftFunc(to, unicode.IsSpace))
	if !ok {
		return
	}
	p.check(rest == "", diag.CommentSyntax, fmt.Sprintf("trailing text after pattern replacement: %s", rest))

	if re, ok := p.parseRegex(from); ok {
		r.NormalizeStderr = append(r.NormalizeStderr, Normalization{
			Pattern:     re,
			Replacement: []byte(unescape(to)),
		})
	}
}

func errorPattern(p *parser, _ *Revisioned, _ string) {
	p.errorf(diag.CommentRenamedDirective, "`error-pattern` has been renamed to `error-in-other-file`")
}

func errorInOtherFile(p *parser, r *Revisioned, args string) {
	pat := p.parseErrorPattern(strings.TrimSpace(args))
	r.ErrorInOtherFiles = append(r.ErrorInOtherFiles, Spanned[Pattern]{Value: pat, Line: p.line})
}

// The flag directives below ignore their arguments, which can be used as a
// comment.

func stderrPerBitwidth(p *parser, r *Revisioned, _ string) {
	p.check(!r.StderrPerBitwidth, diag.CommentDuplicate, "cannot specify `stderr-per-bitwidth` twice")
	r.StderrPerBitwidth = true
}

func needsAsmSupport(p *parser, r *Revisioned, _ string) {
	p.check(!r.NeedsAsmSupport, diag.CommentDuplicate, "cannot specify `needs-asm-support` twice")
	r.NeedsAsmSupport = true
}

func runRustfix(p *parser, r *Revisioned, _ string) {
	p.setMode(r, Mode{Kind: ModeFix})
}

func checkPass(p *parser, r *Revisioned, _ string) {
	p.setMode(r, Mode{Kind: ModePass})
}

func run(p *parser, r *Revisioned, args string) {
	if args == "" {
		p.setMode(r, Mode{Kind: ModeRun})
		return
	}
	code, err := strconv.ParseInt(args, 10, 32)
	if err != nil {
		p.check(r.Mode == nil, diag.CommentDuplicate, "cannot specify test mode changes twice")
		p.errorf(diag.CommentBadArgument, "invalid exit code `%s`: %v", args, err)
		return
	}
	p.setMode(r, Mode{Kind: ModeRun, ExitCode: int(code)})
}

func (p *parser) setMode(r *Revisioned, m Mode) {
	p.check(r.Mode == nil, diag.CommentDuplicate, "cannot specify test mode changes twice")
	r.Mode = &Spanned[Mode]{Value: m, Line: p.line}
}

// auxBuild parses `path[:kind]`; kind defaults to lib.
func auxBuild(p *parser, r *Revisioned, args string) {
	path, kind, ok := strings.Cut(args, ":")
	if !ok {
		kind = "lib"
	}
	r.AuxBuilds = append(r.AuxBuilds, AuxBuild{Path: path, Kind: kind, Line: p.line})
}

func edition(p *parser, r *Revisioned, args string) {
	p.check(r.Edition == nil, diag.CommentDuplicate, "cannot specify `edition` twice")
	r.Edition = &Spanned[string]{Value: args, Line: p.line}
}

func requireAnnotationsForLevel(p *parser, r *Revisioned, args string) {
	p.check(r.RequireAnnotationsForLevel == nil, diag.CommentDuplicate,
		"cannot specify `require-annotations-for-level` twice")
	level, err := ParseLevel(strings.TrimSpace(args))
	if err != nil {
		p.errorf(diag.CommentBadLevel, "%v", err)
		return
	}
	r.RequireAnnotationsForLevel = &Spanned[Level]{Value: level, Line: p.line}
}
