package build

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ultravioletrs/cube-docs/internal/config"
	"github.com/ultravioletrs/cube-docs/internal/content"
	ferrors "github.com/ultravioletrs/cube-docs/internal/foundation/errors"
	"github.com/ultravioletrs/cube-docs/internal/git"
	"github.com/ultravioletrs/cube-docs/internal/history"
	"github.com/ultravioletrs/cube-docs/internal/linkcheck"
	"github.com/ultravioletrs/cube-docs/internal/logfields"
	"github.com/ultravioletrs/cube-docs/internal/manifest"
	"github.com/ultravioletrs/cube-docs/internal/metrics"
	"github.com/ultravioletrs/cube-docs/internal/nav"
	"github.com/ultravioletrs/cube-docs/internal/report"
	"github.com/ultravioletrs/cube-docs/internal/retry"
	"github.com/ultravioletrs/cube-docs/internal/sidebar"
	"github.com/ultravioletrs/cube-docs/internal/version"
)

// Output file names written to Request.OutputDir.
const (
	NavigationFile = "navigation.json"
	ManifestFile   = "manifest.json"
)

// Stage names used in logs and metrics.
const (
	StageConfig   = "config"
	StageSidebars = "sidebars"
	StageContent  = "content"
	StageValidate = "validate"
	StageRender   = "render"
	StageLinks    = "links"
	StageOutput   = "output"
)

// Runner is the standard Service implementation.
type Runner struct {
	recorder  metrics.Recorder
	history   history.Store
	publisher report.Publisher
	retry     retry.Policy
	now       func() time.Time
	newID     func() string
}

var _ Service = (*Runner)(nil)

// NewRunner creates a Runner that records nothing.
func NewRunner() *Runner {
	return &Runner{
		recorder:  metrics.NoopRecorder{},
		publisher: report.NoopPublisher{},
		retry:     retry.Policy{Mode: config.RetryBackoffLinear},
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

// WithRecorder sets the metrics recorder.
func (r *Runner) WithRecorder(rec metrics.Recorder) *Runner {
	if rec != nil {
		r.recorder = rec
	}
	return r
}

// WithHistory records every finished run in store.
func (r *Runner) WithHistory(store history.Store) *Runner {
	r.history = store
	return r
}

// WithPublisher publishes a RunEvent for every finished run.
func (r *Runner) WithPublisher(p report.Publisher) *Runner {
	if p != nil {
		r.publisher = p
	}
	return r
}

// WithRetryPolicy retries failed publishes with the given backoff.
func (r *Runner) WithRetryPolicy(p retry.Policy) *Runner {
	r.retry = p
	return r
}

// run carries the state shared by the stages of one execution.
type run struct {
	req      Request
	res      *Result
	log      *slog.Logger
	siteRoot string
	snap     *git.Snapshot

	configHash   string
	sidebarsPath string
	sidebarsHash string
	docsPath     string
	navJSON      []byte
}

// Run executes the pipeline: config, sidebars, content, validate, render,
// links, output. A fatal error stops the run before anything is written.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	start := r.now()
	res := &Result{RunID: r.newID(), StartTime: start}
	st := &run{
		req: req,
		res: res,
		log: slog.With(logfields.RunID(res.RunID)),
	}

	st.log.Info("Validation run started",
		logfields.Path(req.ConfigPath),
		logfields.Version(req.Version),
		logfields.Revision(req.Revision))

	stages := []struct {
		name string
		fn   func(context.Context, *run) (int, error)
	}{
		{StageConfig, r.loadConfig},
		{StageSidebars, r.loadSidebars},
		{StageContent, r.loadContent},
		{StageValidate, r.validateSidebars},
		{StageRender, r.render},
		{StageLinks, r.checkLinks},
		{StageOutput, r.writeOutput},
	}

	var runErr error
	for _, s := range stages {
		if runErr = r.stage(ctx, st, s.name, s.fn); runErr != nil {
			break
		}
	}

	r.finish(ctx, st, runErr)
	return res, runErr
}

func (r *Runner) stage(ctx context.Context, st *run, name string, fn func(context.Context, *run) (int, error)) error {
	if err := ctx.Err(); err != nil {
		r.recorder.IncStageResult(name, metrics.ResultCanceled)
		return err
	}
	start := time.Now()
	warnings, err := fn(ctx, st)
	elapsed := time.Since(start)
	r.recorder.ObserveStageDuration(name, elapsed)

	switch {
	case err != nil && errors.Is(err, context.Canceled):
		r.recorder.IncStageResult(name, metrics.ResultCanceled)
		return err
	case err != nil:
		r.recorder.IncStageResult(name, metrics.ResultFatal)
		st.log.Error("Stage failed", logfields.Stage(name), logfields.Error(err))
		return err
	case warnings > 0:
		r.recorder.IncStageResult(name, metrics.ResultWarning)
	default:
		r.recorder.IncStageResult(name, metrics.ResultSuccess)
	}
	st.log.Debug("Stage complete",
		logfields.Stage(name),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000),
		slog.Int("warnings", warnings))
	return nil
}

func (r *Runner) loadConfig(_ context.Context, st *run) (int, error) {
	cfg := st.req.Config
	if cfg == nil {
		if st.req.ConfigPath == "" {
			return 0, ferrors.ConfigError("config path required").Build()
		}
		loaded, err := config.Load(st.req.ConfigPath)
		if err != nil {
			return 0, err
		}
		cfg = loaded
	}
	st.res.Config = cfg

	st.siteRoot = st.req.SiteRoot
	if st.siteRoot == "" && st.req.ConfigPath != "" {
		st.siteRoot = filepath.Dir(st.req.ConfigPath)
	}
	if st.siteRoot == "" {
		st.siteRoot = "."
	}

	// The effective configuration is hashed so defaults and env expansion count.
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return 0, ferrors.InternalError("failed to encode configuration").WithCause(err).Build()
	}
	st.configHash = manifest.HashBytes(data)
	return 0, nil
}

func (r *Runner) loadSidebars(_ context.Context, st *run) (int, error) {
	cfg := st.res.Config
	docs := cfg.Docs
	st.sidebarsPath = docs.SidebarPath
	st.docsPath = docs.Path

	if st.req.Revision != "" {
		snap, err := git.OpenSnapshot(st.siteRoot, st.req.Revision)
		if err != nil {
			return 0, err
		}
		st.snap = snap
	}

	if st.req.Version != "" {
		versions, err := st.versions(docs.VersionsPath)
		if err != nil {
			return 0, err
		}
		if !slices.Contains(versions, st.req.Version) {
			return 0, ferrors.ValidationError("unknown docs version").
				WithContext("version", st.req.Version).
				WithContext("versions", versions).
				Build()
		}
		st.sidebarsPath = sidebar.VersionedSidebarPath(docs.VersionedSidebars, st.req.Version)
		st.docsPath = sidebar.VersionedDocsPath(docs.VersionedDocs, st.req.Version)
	} else {
		if st.req.SidebarsPath != "" {
			st.sidebarsPath = st.req.SidebarsPath
		}
		if st.req.DocsDir != "" {
			st.docsPath = st.req.DocsDir
		}
	}

	var (
		sbs sidebar.Sidebars
		err error
	)
	if st.snap != nil {
		sbs, err = sidebar.LoadRevision(st.snap, filepath.ToSlash(st.sidebarsPath))
	} else {
		sbs, err = sidebar.Load(st.resolve(st.sidebarsPath))
	}
	if err != nil {
		return 0, err
	}
	st.res.Sidebars = sbs

	data, err := json.Marshal(sbs)
	if err != nil {
		return 0, ferrors.InternalError("failed to encode sidebars").WithCause(err).Build()
	}
	st.sidebarsHash = manifest.HashBytes(data)

	for _, sb := range sbs {
		entries := 0
		_ = sb.Walk(func(*sidebar.Entry, int) error {
			entries++
			return nil
		})
		r.recorder.SetSidebarEntries(sb.Name, entries)
	}
	return 0, nil
}

// versions reads the versions file from the working tree or the snapshot.
func (st *run) versions(rel string) ([]string, error) {
	if st.snap == nil {
		return sidebar.ReadVersions(st.resolve(rel))
	}
	data, err := st.snap.ReadFile(filepath.ToSlash(rel))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return sidebar.ParseVersions(data)
}

func (st *run) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(st.siteRoot, p)
}

func (r *Runner) loadContent(_ context.Context, st *run) (int, error) {
	var (
		idx *content.Index
		err error
	)
	if st.snap != nil {
		idx, err = content.LoadSnapshot(st.snap, filepath.ToSlash(st.docsPath))
	} else {
		idx, err = content.LoadDir(st.resolve(st.docsPath))
	}
	if err != nil {
		return 0, err
	}
	st.res.Documents = idx
	r.recorder.SetDocuments(idx.Len())
	st.log.Info("Content loaded", logfields.Path(st.docsPath), logfields.Count(idx.Len()))
	return 0, nil
}

// staticFiles lists the static directories, from the snapshot when the run
// reads a revision.
func (st *run) staticFiles() (content.Files, error) {
	files := content.Files{}
	for _, dir := range st.res.Config.StaticDirectories {
		var (
			listed content.Files
			err    error
		)
		if st.snap != nil {
			listed, err = content.ListSnapshot(st.snap, filepath.ToSlash(dir))
		} else {
			listed, err = content.ListDir(st.resolve(dir))
		}
		if err != nil {
			return nil, err
		}
		files.Merge(listed)
	}
	return files, nil
}

func (r *Runner) validateSidebars(_ context.Context, st *run) (int, error) {
	broken, err := sidebar.Validate(st.res.Sidebars, st.res.Documents, st.res.Config.OnBrokenLinks)
	st.res.Broken = broken
	if len(broken) > 0 {
		r.recorder.AddBrokenLinks(string(linkcheck.ScopeNavigation), len(broken))
	}
	return len(broken), err
}

func (r *Runner) render(_ context.Context, st *run) (int, error) {
	st.res.Navigation = nav.RenderAll(st.res.Sidebars, st.res.Documents, nav.OptionsFromConfig(st.res.Config))

	var buf bytes.Buffer
	if err := nav.WriteJSON(&buf, st.res.Navigation); err != nil {
		return 0, ferrors.InternalError("failed to encode navigation").WithCause(err).Build()
	}
	st.navJSON = buf.Bytes()
	return 0, nil
}

func (r *Runner) checkLinks(_ context.Context, st *run) (int, error) {
	if st.req.SkipLinks {
		return 0, nil
	}
	static, err := st.staticFiles()
	if err != nil {
		return 0, err
	}
	checker := linkcheck.NewChecker(st.res.Config, st.res.Sidebars, st.res.Documents, st.res.Navigation).
		WithStaticFiles(static)
	rep, err := checker.Run()
	if err != nil {
		return 0, err
	}
	st.res.Links = rep
	if n := len(rep.Navigation); n > 0 {
		r.recorder.AddBrokenLinks(string(linkcheck.ScopeNavigation), n)
	}
	if n := len(rep.Prose); n > 0 {
		r.recorder.AddBrokenLinks(string(linkcheck.ScopeProse), n)
	}
	return rep.Count(), rep.Enforce(st.res.Config)
}

func (r *Runner) writeOutput(_ context.Context, st *run) (int, error) {
	st.res.Manifest = r.buildManifest(st, nil)
	if st.req.OutputDir == "" {
		return 0, nil
	}

	if err := os.MkdirAll(st.req.OutputDir, 0o750); err != nil {
		return 0, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create output directory").
			WithContext("path", st.req.OutputDir).
			Build()
	}

	navPath := filepath.Join(st.req.OutputDir, NavigationFile)
	if err := writeFile(navPath, st.navJSON); err != nil {
		return 0, err
	}
	st.res.Written = append(st.res.Written, navPath)
	st.res.Manifest.Outputs.ArtifactHashes = map[string]string{
		NavigationFile: manifest.HashBytes(st.navJSON),
	}

	data, err := st.res.Manifest.ToJSON()
	if err != nil {
		return 0, ferrors.InternalError("failed to encode manifest").WithCause(err).Build()
	}
	manifestPath := filepath.Join(st.req.OutputDir, ManifestFile)
	if err := writeFile(manifestPath, data); err != nil {
		return 0, err
	}
	st.res.Written = append(st.res.Written, manifestPath)
	st.log.Info("Run outputs written", logfields.Path(st.req.OutputDir), logfields.Count(len(st.res.Written)))
	return 0, nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write output file").
			WithContext("path", path).
			Build()
	}
	return nil
}

// buildManifest describes what the run has read and produced so far.
func (r *Runner) buildManifest(st *run, runErr error) *manifest.RunManifest {
	res := st.res
	m := &manifest.RunManifest{
		ID:        res.RunID,
		Timestamp: res.StartTime.UTC(),
		Tool:      "cubedocs " + version.Version,
		Inputs: manifest.Inputs{
			ConfigHash:   st.configHash,
			SidebarsHash: st.sidebarsHash,
			SidebarsPath: filepath.ToSlash(st.sidebarsPath),
			DocsPath:     filepath.ToSlash(st.docsPath),
			Version:      st.req.Version,
			Revision:     st.req.Revision,
			Documents:    map[string]string{},
		},
		Status:   manifest.StatusSuccess,
		Duration: r.now().Sub(res.StartTime).Milliseconds(),
	}
	if st.snap != nil {
		m.Inputs.Commit = st.snap.Hash()
	}
	if res.Documents != nil {
		for _, d := range res.Documents.Documents() {
			m.Inputs.Documents[d.ID] = d.Fingerprint
		}
	}
	for _, n := range res.Navigation {
		entries := 0
		if sb, ok := res.Sidebars.Lookup(n.Sidebar); ok {
			_ = sb.Walk(func(*sidebar.Entry, int) error {
				entries++
				return nil
			})
		}
		m.Outputs.Sidebars = append(m.Outputs.Sidebars, manifest.SidebarSummary{
			Name:    n.Sidebar,
			Entries: entries,
			Pages:   len(n.Flatten()),
		})
	}
	if st.navJSON != nil {
		m.Outputs.NavigationHash = manifest.HashBytes(st.navJSON)
	}

	for _, b := range res.Broken {
		m.Warnings = append(m.Warnings, manifest.Warning{
			Scope:   string(linkcheck.ScopeNavigation),
			Source:  "sidebar " + b.Sidebar + " " + b.Path,
			Message: "unknown document " + b.DocID,
		})
	}
	if res.Links != nil {
		for _, f := range slices.Concat(res.Links.Navigation, res.Links.Prose) {
			m.Warnings = append(m.Warnings, manifest.Warning{
				Scope:   string(f.Scope),
				Source:  f.Source,
				Message: string(f.Reason) + ": " + f.Destination,
			})
		}
	}
	if len(m.Warnings) > 0 {
		m.Status = manifest.StatusWarning
	}
	switch {
	case runErr != nil && errors.Is(runErr, context.Canceled):
		m.Status = manifest.StatusCanceled
		m.Error = runErr.Error()
	case runErr != nil:
		m.Status = manifest.StatusFailed
		m.Error = runErr.Error()
	}
	return m
}

// finish sets the final status and records the run. Failures of the
// recording sinks are logged and never change the run outcome.
func (r *Runner) finish(ctx context.Context, st *run, runErr error) {
	res := st.res
	res.EndTime = r.now()
	res.Duration = res.EndTime.Sub(res.StartTime)

	outcome := metrics.RunOutcomeSuccess
	switch {
	case runErr != nil && errors.Is(runErr, context.Canceled):
		res.Status = StatusCanceled
		outcome = metrics.RunOutcomeCanceled
	case runErr != nil:
		res.Status = StatusFailed
		outcome = metrics.RunOutcomeFailed
	case res.WarningCount() > 0:
		res.Status = StatusWarning
		outcome = metrics.RunOutcomeWarning
	default:
		res.Status = StatusSuccess
	}
	if runErr != nil || res.Manifest == nil {
		res.Manifest = r.buildManifest(st, runErr)
	}
	res.Manifest.Duration = res.Duration.Milliseconds()

	r.recorder.ObserveRunDuration(res.Duration)
	r.recorder.IncRunOutcome(outcome)

	// Sinks still run when the caller's context was canceled.
	sinkCtx := context.WithoutCancel(ctx)
	r.recordHistory(sinkCtx, st, runErr)
	r.publish(sinkCtx, st, runErr)

	attrs := []any{
		slog.String("status", string(res.Status)),
		logfields.DurationMS(float64(res.Duration.Microseconds()) / 1000),
		slog.Int("warnings", res.WarningCount()),
	}
	if runErr != nil {
		st.log.Error("Validation run failed", append(attrs, logfields.Error(runErr))...)
		return
	}
	st.log.Info("Validation run finished", attrs...)
}

func (r *Runner) recordHistory(ctx context.Context, st *run, runErr error) {
	if r.history == nil {
		return
	}
	res := st.res
	data, err := res.Manifest.ToJSON()
	if err != nil {
		st.log.Warn("Failed to encode manifest for history", logfields.Error(err))
	}
	entry := history.Run{
		ID:         res.RunID,
		StartedAt:  res.StartTime,
		Duration:   res.Duration,
		Status:     string(res.Status),
		Version:    st.req.Version,
		Revision:   st.req.Revision,
		InputsHash: res.Manifest.InputsHash(),
		Manifest:   data,
	}
	if res.Documents != nil {
		entry.Documents = res.Documents.Len()
	}
	entry.NavFindings = len(res.Broken)
	if res.Links != nil {
		entry.NavFindings += len(res.Links.Navigation)
		entry.ProseFindings = len(res.Links.Prose)
	}
	if runErr != nil {
		entry.Error = runErr.Error()
	}
	if err := r.history.Record(ctx, entry); err != nil {
		st.log.Warn("Failed to record run history", logfields.Error(err))
	}
}

func (r *Runner) publish(ctx context.Context, st *run, runErr error) {
	res := st.res
	event := &report.RunEvent{
		RunID:      res.RunID,
		Status:     string(res.Status),
		Timestamp:  res.StartTime.UTC(),
		DurationMS: res.Duration.Milliseconds(),
		Version:    st.req.Version,
		Revision:   st.req.Revision,
		InputsHash: res.Manifest.InputsHash(),
	}
	if res.Config != nil {
		event.Site = res.Config.Title
	}
	if st.snap != nil {
		event.Commit = st.snap.Hash()
	}
	if res.Documents != nil {
		event.Documents = res.Documents.Len()
	}
	if runErr != nil {
		event.Error = runErr.Error()
	}
	event.BrokenLinks = brokenLinkEvents(res)

	err := retry.Do(ctx, r.retry, "publish run event", func(ctx context.Context) error {
		return r.publisher.Publish(ctx, event)
	})
	if err != nil {
		st.log.Warn("Failed to publish run event", logfields.Error(err))
	}
}

func brokenLinkEvents(res *Result) []report.BrokenLinkEvent {
	var out []report.BrokenLinkEvent
	for _, b := range res.Broken {
		out = append(out, report.BrokenLinkEvent{
			RunID:       res.RunID,
			Scope:       string(linkcheck.ScopeNavigation),
			Source:      strings.TrimSpace("sidebar " + b.Sidebar + " " + b.Path),
			DocID:       b.DocID,
			Destination: b.DocID,
			Reason:      string(linkcheck.ReasonDocNotFound),
			Line:        b.Line,
		})
	}
	if res.Links == nil {
		return out
	}
	for _, f := range slices.Concat(res.Links.Navigation, res.Links.Prose) {
		out = append(out, report.BrokenLinkEvent{
			RunID:       res.RunID,
			Scope:       string(f.Scope),
			Source:      f.Source,
			DocID:       f.DocID,
			Destination: f.Destination,
			Reason:      string(f.Reason),
			Line:        f.Line,
		})
	}
	return out
}
