package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"uitest/internal/diagfmt"
	"uitest/internal/driver"
	"uitest/internal/source"
)

func newCheckCmd() *cobra.Command {
	checkCmd := &cobra.Command{
		Use:   "check [flags] [paths...]",
		Short: "Check the comment directives of test files",
		Long: `Parse the //@ directives and //~ annotations of every test file under the
given paths (files or directories, default ".") and report every problem.
Exits with status 1 if any file fails.`,
		RunE: runCheck,
	}

	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	checkCmd.Flags().StringSlice("ext", nil, "file extensions to collect from directories (default .rs)")
	checkCmd.Flags().Bool("cache", false, "reuse outcomes of unchanged files from the disk cache")
	checkCmd.Flags().String("cache-dir", "", "disk cache location (default $XDG_CACHE_HOME/uitest)")
	checkCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
	checkCmd.Flags().String("path-mode", "auto", "how to print file paths (auto|absolute|relative|basename)")
	checkCmd.Flags().Bool("show-source", false, "print the offending source line under each diagnostic")

	return checkCmd
}

// checkSettings is the merged view of flags and uitest.toml.
type checkSettings struct {
	format     string
	jobs       int
	extensions []string
	cache      bool
	cacheDir   string
	ui         uiMode
	pathMode   diagfmt.PathMode
	showSource bool
}

func readCheckSettings(cmd *cobra.Command, project *projectFile) (checkSettings, error) {
	var s checkSettings
	var err error

	s.format, err = cmd.Flags().GetString("format")
	if err != nil {
		return s, fmt.Errorf("failed to get format flag: %w", err)
	}
	s.format = strings.ToLower(s.format)
	switch s.format {
	case "pretty", "json", "short":
	default:
		return s, fmt.Errorf("unsupported format %q (must be pretty, json or short)", s.format)
	}

	s.jobs, err = cmd.Flags().GetInt("jobs")
	if err != nil {
		return s, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if !cmd.Flags().Changed("jobs") && project.isSet("check", "jobs") {
		s.jobs = project.Config.Check.Jobs
	}

	exts, err := cmd.Flags().GetStringSlice("ext")
	if err != nil {
		return s, fmt.Errorf("failed to get ext flag: %w", err)
	}
	switch {
	case cmd.Flags().Changed("ext"):
		if s.extensions, err = normalizeExtensions(exts); err != nil {
			return s, fmt.Errorf("invalid --ext: %w", err)
		}
	case project.isSet("check", "extensions"):
		s.extensions = project.Config.Check.Extensions
	default:
		s.extensions = source.DefaultExtensions
	}

	s.cache, err = cmd.Flags().GetBool("cache")
	if err != nil {
		return s, fmt.Errorf("failed to get cache flag: %w", err)
	}
	if !cmd.Flags().Changed("cache") && project.isSet("check", "cache") {
		s.cache = project.Config.Check.Cache
	}
	s.cacheDir, err = cmd.Flags().GetString("cache-dir")
	if err != nil {
		return s, fmt.Errorf("failed to get cache-dir flag: %w", err)
	}

	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return s, fmt.Errorf("failed to get ui flag: %w", err)
	}
	uiOrigin := "--ui"
	if !cmd.Flags().Changed("ui") && project.isSet("check", "ui") {
		uiFlag, uiOrigin = project.Config.Check.UI, projectConfigName+" [check].ui"
	}
	if s.ui, err = parseUIMode(uiFlag, uiOrigin); err != nil {
		return s, err
	}

	pathMode, err := cmd.Flags().GetString("path-mode")
	if err != nil {
		return s, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	if s.pathMode, err = diagfmt.ParsePathMode(pathMode); err != nil {
		return s, err
	}

	s.showSource, err = cmd.Flags().GetBool("show-source")
	if err != nil {
		return s, fmt.Errorf("failed to get show-source flag: %w", err)
	}
	return s, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
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
	ctx := cmd.Context()

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	colored, err := useColor(cmd, os.Stdout)
	if err != nil {
		return err
	}

	project, err := loadProjectFile(".")
	if err != nil {
		return err
	}
	settings, err := readCheckSettings(cmd, project)
	if err != nil {
		return err
	}

	roots := args
	if len(roots) == 0 {
		roots = []string{"."}
	}
	files, err := source.Discover(roots, settings.extensions)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no test files found under %s", strings.Join(roots, ", "))
	}

	opts := driver.Options{
		MaxDiagnostics: maxDiagnostics,
		Jobs:           settings.jobs,
	}
	if settings.cache {
		opts.Cache, err = openCache(settings.cacheDir)
		if err != nil {
			// a broken cache only costs speed
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: disk cache disabled: %v\n", err)
		}
	}

	var run *driver.Run
	if settings.format == "pretty" && !quiet && useTUI(settings.ui, cmd.OutOrStdout()) {
		run, err = runCheckWithUI(ctx, cmd.OutOrStdout(), "checking", files, opts)
	} else {
		run, err = driver.CheckFiles(ctx, files, opts)
	}
	if err != nil {
		return err
	}

	reports := buildReports(run)
	out := cmd.OutOrStdout()
	switch settings.format {
	case "json":
		err = diagfmt.JSON(out, reports, diagfmt.JSONOpts{
			PathMode: settings.pathMode,
			BaseDir:  run.Files.BaseDir(),
		})
	case "short":
		err = diagfmt.Short(out, reports, diagfmt.JSONOpts{
			PathMode: settings.pathMode,
			BaseDir:  run.Files.BaseDir(),
		})
	default:
		err = diagfmt.Pretty(out, reports, diagfmt.PrettyOpts{
			Color:      colored,
			ShowSource: settings.showSource,
			PathMode:   settings.pathMode,
			BaseDir:    run.Files.BaseDir(),
		})
		if err == nil && !quiet {
			err = diagfmt.Summary(out, reports, colored)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to write diagnostics: %w", err)
	}

	if showTimings {
		printTimings(cmd.ErrOrStderr(), run.Timings)
	}

	if run.Failed() > 0 {
		dumpTrace(ctx, cmd.ErrOrStderr())
		return exitError{code: 1}
	}
	return nil
}

func openCache(dir string) (*driver.DiskCache, error) {
	if dir != "" {
		return driver.OpenDiskCacheAt(dir)
	}
	return driver.OpenDiskCache("uitest")
}

func buildReports(run *driver.Run) []diagfmt.FileReport {
	reports := make([]diagfmt.FileReport, len(run.Results))
	for i := range run.Results {
		res := &run.Results[i]
		file, _ := run.Files.GetByPath(res.Path)
		reports[i] = diagfmt.FileReport{
			Path:   res.Path,
			File:   file,
			Items:  res.Bag.Items(),
			Cached: res.Cached,
		}
	}
	return reports
}
