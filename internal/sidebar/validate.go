package sidebar

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ultravioletrs/cube-docs/internal/config"
	ferrors "github.com/ultravioletrs/cube-docs/internal/foundation/errors"
	"github.com/ultravioletrs/cube-docs/internal/logfields"
)

// DocumentResolver answers whether a document ID exists in the content store.
type DocumentResolver interface {
	Exists(id string) bool
}

// BrokenReference is a sidebar entry whose document does not resolve.
type BrokenReference struct {
	Sidebar string
	Path    string
	DocID   string
	Line    int
}

// Validate resolves every document reference of every sidebar, top-down in
// declaration order. All broken references are collected before the policy
// is applied, so a fatal error lists every missing ID at once.
//
// Under a fatal policy the returned error is a navigation ClassifiedError.
// Otherwise broken references are logged according to the policy and
// returned with a nil error.
func Validate(sbs Sidebars, docs DocumentResolver, policy config.Strictness) ([]BrokenReference, error) {
	var broken []BrokenReference
	for _, sb := range sbs {
		_ = sb.Walk(func(e *Entry, _ int) error {
			id := ""
			switch {
			case e.Kind == KindDoc:
				id = e.ID
			case e.Kind == KindCategory && e.Link != nil && e.Link.Type == CategoryLinkDoc:
				id = e.Link.ID
			default:
				return nil
			}
			if !docs.Exists(id) {
				broken = append(broken, BrokenReference{Sidebar: sb.Name, Path: e.Path, DocID: id, Line: e.Line})
			}
			return nil
		})
	}
	if len(broken) == 0 {
		return nil, nil
	}

	if policy.IsFatal() {
		ids := make([]string, len(broken))
		paths := make([]string, len(broken))
		for i, b := range broken {
			ids[i] = b.DocID
			paths[i] = b.Path
		}
		return broken, ferrors.NavigationError("sidebar references unknown documents: "+strings.Join(ids, ", ")).
			WithContext("sidebar", broken[0].Sidebar).
			WithContext("doc_id", broken[0].DocID).
			WithContext("doc_ids", ids).
			WithContext("paths", paths).
			WithContext("count", len(broken)).
			Build()
	}

	if level, ok := policy.LogLevel(); ok {
		for _, b := range broken {
			slog.Log(context.Background(), level, "Sidebar references unknown document",
				logfields.Sidebar(b.Sidebar),
				logfields.DocID(b.DocID),
				logfields.Path(b.Path),
				logfields.Policy(string(policy)))
		}
	}
	return broken, nil
}
