package linkcheck

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ultravioletrs/cube-docs/internal/config"
	ferrors "github.com/ultravioletrs/cube-docs/internal/foundation/errors"
	"github.com/ultravioletrs/cube-docs/internal/logfields"
)

// Scope tells which policy a finding falls under.
type Scope string

const (
	ScopeNavigation Scope = "navigation"
	ScopeProse      Scope = "prose"
)

// Reason describes why a link did not resolve.
type Reason string

const (
	ReasonDocNotFound     Reason = "document not found"
	ReasonRouteNotFound   Reason = "route not found"
	ReasonSidebarNotFound Reason = "sidebar not found"
	ReasonSidebarEmpty    Reason = "sidebar has no pages"
	ReasonFileNotFound    Reason = "file not found"
)

// Finding is one broken link.
type Finding struct {
	Scope       Scope  `json:"scope"`
	Source      string `json:"source"` // Config field path or document source path
	DocID       string `json:"doc_id,omitempty"`
	Destination string `json:"destination"`
	Kind        string `json:"kind"`
	Line        int    `json:"line,omitempty"`
	Reason      Reason `json:"reason"`
}

// Report collects the findings of a run.
type Report struct {
	Navigation []Finding `json:"navigation"`
	Prose      []Finding `json:"prose"`
	Checked    int       `json:"checked"` // Internal links inspected
}

// Count returns the number of findings in both scopes.
func (r *Report) Count() int {
	return len(r.Navigation) + len(r.Prose)
}

// Enforce applies the configured policies. Fatal policies return an error
// listing every broken destination of that scope; navigation is checked
// first. Non-fatal findings are logged at the level their policy asks for.
func (r *Report) Enforce(cfg *config.SiteConfig) error {
	if err := enforce(r.Navigation, cfg.OnBrokenLinks, func(msg string) *ferrors.ErrorBuilder {
		return ferrors.NavigationError(msg)
	}); err != nil {
		return err
	}
	return enforce(r.Prose, cfg.OnBrokenMarkdownLinks, func(msg string) *ferrors.ErrorBuilder {
		return ferrors.ContentError(msg).Fatal()
	})
}

func enforce(findings []Finding, policy config.Strictness, build func(string) *ferrors.ErrorBuilder) error {
	if len(findings) == 0 {
		return nil
	}
	if policy.IsFatal() {
		dests := make([]string, len(findings))
		for i, f := range findings {
			dests[i] = f.Destination
		}
		return build("broken "+string(findings[0].Scope)+" links: "+strings.Join(dests, ", ")).
			WithContext("source", findings[0].Source).
			WithContext("link", findings[0].Destination).
			WithContext("count", len(findings)).
			WithContext("policy", string(policy)).
			Build()
	}
	level, ok := policy.LogLevel()
	if !ok {
		return nil
	}
	for _, f := range findings {
		attrs := []slog.Attr{
			slog.String("source", f.Source),
			logfields.Link(f.Destination),
			slog.String("reason", string(f.Reason)),
			logfields.Policy(string(policy)),
		}
		if f.Line > 0 {
			attrs = append(attrs, slog.Int("line", f.Line))
		}
		slog.LogAttrs(context.Background(), level, "Broken "+string(f.Scope)+" link", attrs...)
	}
	return nil
}
