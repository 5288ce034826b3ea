package build

import (
	"context"
	"time"

	"github.com/ultravioletrs/cube-docs/internal/config"
	"github.com/ultravioletrs/cube-docs/internal/content"
	"github.com/ultravioletrs/cube-docs/internal/linkcheck"
	"github.com/ultravioletrs/cube-docs/internal/manifest"
	"github.com/ultravioletrs/cube-docs/internal/nav"
	"github.com/ultravioletrs/cube-docs/internal/sidebar"
)

// Service executes validation runs.
type Service interface {
	Run(ctx context.Context, req Request) (*Result, error)
}

// Request contains all inputs of one run.
type Request struct {
	// ConfigPath is the site configuration file. Relative paths in the
	// configuration resolve against its directory.
	ConfigPath string

	// Config, when set, is used instead of loading ConfigPath.
	Config *config.SiteConfig

	// SiteRoot overrides the directory relative paths resolve against.
	SiteRoot string

	// DocsDir and SidebarsPath override the configured locations of the
	// current docs. They are ignored when Version is set.
	DocsDir      string
	SidebarsPath string

	// Version selects a named docs version from the versions file.
	Version string

	// Revision reads sidebars and content from a git revision of the site
	// repository instead of the working tree.
	Revision string

	// OutputDir receives navigation.json and manifest.json on success.
	// Nothing is written when empty.
	OutputDir string

	// SkipLinks disables the link check stage.
	SkipLinks bool
}

// Result is the outcome of a run. It is returned, partially filled, even
// when the run fails.
type Result struct {
	RunID  string
	Status Status

	Config     *config.SiteConfig
	Sidebars   sidebar.Sidebars
	Documents  *content.Index
	Navigation []*nav.Navigation
	Broken     []sidebar.BrokenReference
	Links      *linkcheck.Report
	Manifest   *manifest.RunManifest

	// Written lists the files stored in OutputDir.
	Written []string

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Status is the final state of a run.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusWarning  Status = "warning"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

// IsSuccess reports whether the run finished without fatal errors.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess || s == StatusWarning
}

// WarningCount returns the number of non-fatal findings of the run.
func (r *Result) WarningCount() int {
	n := len(r.Broken)
	if r.Links != nil {
		n += r.Links.Count()
	}
	return n
}
