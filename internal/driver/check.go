package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"uitest/internal/comments"
	"uitest/internal/diag"
	"uitest/internal/observ"
	"uitest/internal/source"
	"uitest/internal/trace"
)

// Options configures CheckFiles.
type Options struct {
	// MaxDiagnostics caps the diagnostics kept per file; <= 0 keeps all.
	MaxDiagnostics int
	// Jobs limits parallel workers; <= 0 uses GOMAXPROCS.
	Jobs int
	// Cache, if set, short-cuts files whose content was checked before.
	Cache *DiskCache
	// Progress receives per-file events.
	Progress ProgressSink
	// BaseDir is reported as the FileSet base.
	BaseDir string
}

// FileResult is the outcome of checking one file.
type FileResult struct {
	Path   string
	FileID source.FileID
	// Comments is nil when the file could not be loaded or parsed, or when
	// the outcome came from the cache.
	Comments *comments.Comments
	Bag      *diag.Bag
	Cached   bool
	// Revisions lists the declared revisions.
	Revisions []string
	Buckets   int
}

// Failed reports whether the file has any error.
func (r *FileResult) Failed() bool {
	return r.Bag != nil && r.Bag.HasErrors()
}

// Run is the outcome of CheckFiles.
type Run struct {
	Files   *source.FileSet
	Results []FileResult
	Timings observ.Report
}

// Failed counts the files with errors.
func (r *Run) Failed() int {
	n := 0
	for i := range r.Results {
		if r.Results[i].Failed() {
			n++
		}
	}
	return n
}

// CheckFiles parses the comments of every file in paths in parallel. Results
// keep the order of paths. Problems inside files are reported in their Bag;
// the error is reserved for cancellation.
func CheckFiles(ctx context.Context, paths []string, opts Options) (*Run, error) {
	ctx, span := trace.Start(ctx, trace.ScopePass, "check")
	defer span.End("")

	progress := opts.Progress
	if progress == nil {
		progress = nopSink{}
	}
	timer := observ.NewTimer()
	fileSet := source.NewFileSetWithBase(opts.BaseDir)
	run := &Run{Files: fileSet, Results: make([]FileResult, len(paths))}
	if len(paths) == 0 {
		return run, nil
	}

	for _, path := range paths {
		progress.OnEvent(Event{File: path, Stage: StageLoad, Status: StatusQueued})
	}

	// The FileSet is not safe for concurrent mutation, so all loading happens
	// up front.
	loadPhase := timer.Begin("load")
	fileIDs := make([]source.FileID, len(paths))
	loadErrors := make(map[int]error)
	for i, path := range paths {
		id, err := fileSet.Load(path)
		if err != nil {
			loadErrors[i] = err
			continue
		}
		fileIDs[i] = id
	}
	timer.End(loadPhase, fmt.Sprintf("%d files", len(paths)-len(loadErrors)))

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	parsePhase := timer.Begin("parse")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := &run.Results[i]
			res.Path = path
			res.FileID = fileIDs[i]
			res.Bag = diag.NewBag(opts.MaxDiagnostics)

			if loadErr, failed := loadErrors[i]; failed {
				res.Bag.Add(diag.NewError(diag.IOLoadFileError, 0, "failed to load file: "+loadErr.Error()))
				progress.OnEvent(Event{File: path, Stage: StageLoad, Status: StatusError, Errors: res.Bag.Len()})
				return nil
			}
			checkFile(gctx, fileSet.Get(fileIDs[i]), res, opts.Cache, progress)
			return nil
		})
	}
	err := g.Wait()
	timer.End(parsePhase, fmt.Sprintf("jobs=%d", jobs))

	run.Timings = timer.Report()
	span.WithExtra("files", strconv.Itoa(len(paths))).WithExtra("failed", strconv.Itoa(run.Failed()))
	return run, err
}

// checkFile fills res for one loaded file. It never fails: every problem ends
// up in res.Bag.
func checkFile(ctx context.Context, file *source.File, res *FileResult, cache *DiskCache, progress ProgressSink) {
	ctx, span := trace.Start(ctx, trace.ScopeFile, "file:"+file.Path)
	started := time.Now()
	key := cacheKey(file.Hash)

	defer func() {
		status := StatusDone
		switch {
		case res.Failed():
			status = StatusError
		case res.Cached:
			status = StatusCached
		}
		progress.OnEvent(Event{File: res.Path, Stage: StageVerify, Status: status, Errors: res.Bag.Len(), Elapsed: time.Since(started)})
		span.WithExtra("diagnostics", strconv.Itoa(res.Bag.Len())).End(string(status))
	}()

	var payload DiskPayload
	hit, cacheErr := cache.Get(key, &payload)
	switch {
	case cacheErr != nil:
		// reported after the parse outcome so it never takes a capped slot
	case hit && payload.ContentHash == file.Hash:
		trace.Point(ctx, trace.ScopeFile, "cache", "hit")
		res.Cached = true
		res.Revisions = payload.Revisions
		res.Buckets = payload.Buckets
		// the bag applies MaxDiagnostics to the full cached list
		for _, d := range fromCached(payload.Diagnostics) {
			res.Bag.Add(d)
		}
		res.Bag.Sort()
		return
	}

	progress.OnEvent(Event{File: res.Path, Stage: StageParse, Status: StatusWorking})
	// found is uncapped so the cache keeps the full outcome whatever
	// MaxDiagnostics this run uses.
	found := diag.NewBag(0)
	parsed, err := comments.Parse(file.Content)
	if err != nil {
		var errs diag.Errors
		if !errors.As(err, &errs) {
			res.Bag.Add(diag.NewError(diag.UnknownCode, 0, err.Error()))
			return
		}
		for _, d := range errs {
			found.Add(d)
		}
	} else {
		progress.OnEvent(Event{File: res.Path, Stage: StageVerify, Status: StatusWorking})
		res.Comments = parsed
		res.Revisions, _ = parsed.Revisions()
		res.Buckets = len(parsed.Buckets())
		verifyRevisions(parsed, diag.BagReporter{Bag: found})
	}
	found.Sort()
	for _, d := range found.Items() {
		res.Bag.Add(d)
	}
	if cacheErr != nil {
		res.Bag.Add(diag.New(diag.SevWarning, diag.IOCacheError, 0, cacheErr.Error()))
	}
	res.Bag.Sort()

	if cache == nil {
		return
	}
	if err := cache.Put(key, &DiskPayload{
		Schema:      diskCacheSchemaVersion,
		Path:        file.Path,
		ContentHash: file.Hash,
		Revisions:   res.Revisions,
		Buckets:     res.Buckets,
		Diagnostics: toCached(found.Items()),
	}); err != nil {
		res.Bag.Add(diag.New(diag.SevWarning, diag.IOCacheError, 0, "failed to write cache entry: "+err.Error()))
	}
}

// verifyRevisions resolves every singular setting for each revision so that
// conflicts between buckets surface. A file without revisions is checked as
// the single unnamed revision.
func verifyRevisions(c *comments.Comments, rep diag.Reporter) {
	revisions, ok := c.Revisions()
	if !ok || len(revisions) == 0 {
		revisions = []string{""}
	}
	dedup := diag.NewDedupReporter(rep)
	for _, rev := range revisions {
		c.Edition(rev, dedup)
		c.Mode(rev, dedup)
	}
}
