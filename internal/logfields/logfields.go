package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeySidebar    = "sidebar"
	KeyDocID      = "doc_id"
	KeyCategory   = "category"
	KeyField      = "field"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyRevision   = "revision"
	KeyVersion    = "version"
	KeyLink       = "link"
	KeyPolicy     = "policy"
	KeyCount      = "count"
	KeyURL        = "url"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Sidebar(name string) slog.Attr   { return slog.String(KeySidebar, name) }
func DocID(id string) slog.Attr       { return slog.String(KeyDocID, id) }
func Category(label string) slog.Attr { return slog.String(KeyCategory, label) }
func Field(name string) slog.Attr     { return slog.String(KeyField, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Revision(r string) slog.Attr     { return slog.String(KeyRevision, r) }
func Version(v string) slog.Attr      { return slog.String(KeyVersion, v) }
func Link(dest string) slog.Attr      { return slog.String(KeyLink, dest) }
func Policy(p string) slog.Attr       { return slog.String(KeyPolicy, p) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
