package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/spf13/cobra"

	"uitest/internal/comments"
	"uitest/internal/diag"
	"uitest/internal/diagfmt"
	"uitest/internal/source"
	"uitest/internal/trace"
)

func newShowCmd() *cobra.Command {
	showCmd := &cobra.Command{
		Use:   "show [flags] <file>",
		Short: "Print the parsed directives of one test file as JSON",
		Long: `Print every revision bucket of a test file as JSON. With --revision, print
the settings that apply to that revision instead, including whether the
target skips it.`,
		Args: cobra.ExactArgs(1),
		RunE: runShow,
	}

	showCmd.Flags().String("revision", "", "resolve the settings of one revision")
	showCmd.Flags().String("host", "", "host triple for ignore-/only- conditions (default: this machine)")
	showCmd.Flags().String("target", "", "target triple for ignore-/only- conditions (default: host)")
	showCmd.Flags().Uint8("bits", 0, "target pointer width (default: this machine)")

	return showCmd
}

type bucketJSON struct {
	Revisions                  []string        `json:"revisions"`
	Line                       int             `json:"line"`
	Ignore                     []string        `json:"ignore,omitempty"`
	Only                       []string        `json:"only,omitempty"`
	StderrPerBitwidth          bool            `json:"stderr_per_bitwidth,omitempty"`
	CompileFlags               []string        `json:"compile_flags,omitempty"`
	EnvVars                    []string        `json:"env,omitempty"`
	NormalizeStderr            []normalizeJSON `json:"normalize_stderr,omitempty"`
	ErrorInOtherFiles          []string        `json:"error_in_other_files,omitempty"`
	ErrorMatches               []matchJSON     `json:"error_matches,omitempty"`
	RequireAnnotationsForLevel string          `json:"require_annotations_for_level,omitempty"`
	AuxBuilds                  []auxBuildJSON  `json:"aux_builds,omitempty"`
	Edition                    string          `json:"edition,omitempty"`
	Mode                       string          `json:"mode,omitempty"`
	NeedsAsmSupport            bool            `json:"needs_asm_support,omitempty"`
}

type normalizeJSON struct {
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
}

type matchJSON struct {
	Level          string `json:"level"`
	Pattern        string `json:"pattern"`
	Regex          bool   `json:"regex,omitempty"`
	Line           int    `json:"line"`
	DefinitionLine int    `json:"definition_line"`
}

type auxBuildJSON struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
	Line int    `json:"line"`
}

type targetJSON struct {
	Host   string `json:"host"`
	Target string `json:"target"`
	Bits   uint8  `json:"bits"`
}

type resolvedJSON struct {
	Revision     string         `json:"revision"`
	Target       targetJSON     `json:"target"`
	Skipped      bool           `json:"skipped"`
	Edition      string         `json:"edition,omitempty"`
	Mode         string         `json:"mode"`
	CompileFlags []string       `json:"compile_flags,omitempty"`
	EnvVars      []string       `json:"env,omitempty"`
	AuxBuilds    []auxBuildJSON `json:"aux_builds,omitempty"`
	ErrorMatches []matchJSON    `json:"error_matches,omitempty"`
}

type showOutput struct {
	Path      string        `json:"path"`
	Revisions []string      `json:"revisions,omitempty"`
	Buckets   []bucketJSON  `json:"buckets,omitempty"`
	Resolved  *resolvedJSON `json:"resolved,omitempty"`
}

func runShow(cmd *cobra.Command, args []string) error {
	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	ctx, span := trace.Start(cmd.Context(), trace.ScopeDriver, "show")
	defer span.End("")

	revision, err := cmd.Flags().GetString("revision")
	if err != nil {
		return fmt.Errorf("failed to get revision flag: %w", err)
	}
	project, err := loadProjectFile(".")
	if err != nil {
		return err
	}
	target, err := readTarget(cmd, project)
	if err != nil {
		return err
	}

	fileSet := source.NewFileSet()
	id, err := fileSet.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}
	file := fileSet.Get(id)

	parsed, err := comments.Parse(file.Content)
	if err != nil {
		var errs diag.Errors
		if !errors.As(err, &errs) {
			return err
		}
		trace.Point(ctx, trace.ScopeFile, "parse", "failed")
		colored, colorErr := useColor(cmd, os.Stderr)
		if colorErr != nil {
			return colorErr
		}
		report := []diagfmt.FileReport{{Path: file.Path, File: file, Items: errs}}
		if err := diagfmt.Pretty(cmd.ErrOrStderr(), report, diagfmt.PrettyOpts{Color: colored, ShowSource: true}); err != nil {
			return err
		}
		return exitError{code: 1}
	}

	out := showOutput{Path: file.Path}
	out.Revisions, _ = parsed.Revisions()
	if cmd.Flags().Changed("revision") {
		resolved, bag := resolveRevision(parsed, revision, target)
		if bag.Len() > 0 {
			colored, err := useColor(cmd, os.Stderr)
			if err != nil {
				return err
			}
			report := []diagfmt.FileReport{{Path: file.Path, File: file, Items: bag.Items()}}
			if err := diagfmt.Pretty(cmd.ErrOrStderr(), report, diagfmt.PrettyOpts{Color: colored, ShowSource: true}); err != nil {
				return err
			}
			return exitError{code: 1}
		}
		out.Resolved = resolved
	} else {
		for _, b := range parsed.Buckets() {
			out.Buckets = append(out.Buckets, bucketToJSON(b))
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// readTarget merges --host/--target/--bits over [target] over this machine.
func readTarget(cmd *cobra.Command, project *projectFile) (comments.Target, error) {
	t := comments.Target{Host: hostTriple(), Bits: strconv.IntSize}
	if project != nil {
		if project.isSet("target", "host") {
			t.Host = project.Config.Target.Host
		}
		if project.isSet("target", "target") {
			t.Target = project.Config.Target.Target
		}
		if project.isSet("target", "bits") {
			t.Bits = project.Config.Target.Bits
		}
	}

	host, err := cmd.Flags().GetString("host")
	if err != nil {
		return t, fmt.Errorf("failed to get host flag: %w", err)
	}
	if cmd.Flags().Changed("host") {
		t.Host = host
	}
	targetTriple, err := cmd.Flags().GetString("target")
	if err != nil {
		return t, fmt.Errorf("failed to get target flag: %w", err)
	}
	if cmd.Flags().Changed("target") {
		t.Target = targetTriple
	}
	bits, err := cmd.Flags().GetUint8("bits")
	if err != nil {
		return t, fmt.Errorf("failed to get bits flag: %w", err)
	}
	if cmd.Flags().Changed("bits") {
		t.Bits = bits
	}
	if t.Target == "" {
		t.Target = t.Host
	}
	return t, nil
}

// hostTriple approximates the target triple of the running machine.
func hostTriple() string {
	arch := runtime.GOARCH
	switch arch {
	case "amd64":
		arch = "x86_64"
	case "arm64":
		arch = "aarch64"
	case "386":
		arch = "i686"
	}
	switch runtime.GOOS {
	case "linux":
		return arch + "-unknown-linux-gnu"
	case "darwin":
		return arch + "-apple-darwin"
	case "windows":
		return arch + "-pc-windows-msvc"
	default:
		return arch + "-unknown-" + runtime.GOOS
	}
}

// resolveRevision collects what applies to revision. Conflicting singular
// settings end up in the returned bag.
func resolveRevision(c *comments.Comments, revision string, target comments.Target) (*resolvedJSON, *diag.Bag) {
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	out := &resolvedJSON{
		Revision: revision,
		Target:   targetJSON(target),
		Skipped:  c.Skipped(revision, target),
		Mode:     comments.Mode{Kind: comments.ModeFail}.String(),
	}
	if edition, ok := c.Edition(revision, rep); ok {
		out.Edition = edition.Value
	}
	if mode, ok := c.Mode(revision, rep); ok {
		out.Mode = mode.Value.String()
	}
	for _, b := range c.ForRevision(revision) {
		out.CompileFlags = append(out.CompileFlags, b.CompileFlags...)
		out.EnvVars = append(out.EnvVars, envToJSON(b.EnvVars)...)
		out.AuxBuilds = append(out.AuxBuilds, auxBuildsToJSON(b.AuxBuilds)...)
		out.ErrorMatches = append(out.ErrorMatches, matchesToJSON(b.ErrorMatches)...)
	}
	bag.Sort()
	return out, bag
}

func bucketToJSON(b *comments.Revisioned) bucketJSON {
	out := bucketJSON{
		Revisions:         b.Revisions,
		Line:              b.Line,
		StderrPerBitwidth: b.StderrPerBitwidth,
		CompileFlags:      b.CompileFlags,
		EnvVars:           envToJSON(b.EnvVars),
		ErrorMatches:      matchesToJSON(b.ErrorMatches),
		AuxBuilds:         auxBuildsToJSON(b.AuxBuilds),
		NeedsAsmSupport:   b.NeedsAsmSupport,
	}
	if out.Revisions == nil {
		out.Revisions = []string{}
	}
	for _, cond := range b.Ignore {
		out.Ignore = append(out.Ignore, cond.String())
	}
	for _, cond := range b.Only {
		out.Only = append(out.Only, cond.String())
	}
	for _, n := range b.NormalizeStderr {
		out.NormalizeStderr = append(out.NormalizeStderr, normalizeJSON{
			Pattern:     n.Pattern.String(),
			Replacement: string(n.Replacement),
		})
	}
	for _, p := range b.ErrorInOtherFiles {
		out.ErrorInOtherFiles = append(out.ErrorInOtherFiles, p.Value.String())
	}
	if b.RequireAnnotationsForLevel != nil {
		out.RequireAnnotationsForLevel = b.RequireAnnotationsForLevel.Value.String()
	}
	if b.Edition != nil {
		out.Edition = b.Edition.Value
	}
	if b.Mode != nil {
		out.Mode = b.Mode.Value.String()
	}
	return out
}

func envToJSON(vars []comments.EnvVar) []string {
	var out []string
	for _, v := range vars {
		out = append(out, v.Key+"="+v.Value)
	}
	return out
}

func auxBuildsToJSON(builds []comments.AuxBuild) []auxBuildJSON {
	var out []auxBuildJSON
	for _, a := range builds {
		out = append(out, auxBuildJSON(a))
	}
	return out
}

func matchesToJSON(matches []comments.ErrorMatch) []matchJSON {
	var out []matchJSON
	for _, m := range matches {
		_, isRegex := m.Pattern.(comments.Regex)
		out = append(out, matchJSON{
			Level:          m.Level.String(),
			Pattern:        m.Pattern.String(),
			Regex:          isRegex,
			Line:           m.Line,
			DefinitionLine: m.DefinitionLine,
		})
	}
	return out
}
