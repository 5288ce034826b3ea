package errors

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "malformed sidebar", err: ValidationError("category has no items").Build(), expected: 2},
		{name: "missing document", err: NavigationError("unresolved doc").Build(), expected: 3},
		{name: "bad config", err: ConfigError("bad base_url").Build(), expected: 7},
		{name: "git failure", err: GitError("revision not found").Build(), expected: 8},
		{name: "filesystem", err: FileSystemError("read failed").Build(), expected: 11},
		{name: "internal", err: InternalError("bug").Build(), expected: 10},
		{name: "content warning", err: ContentError("broken link").Build(), expected: 0},
		{name: "navigation downgraded to warning", err: NavigationError("x").Warning().Build(), expected: 0},
		{name: "unclassified error", err: errors.New("unknown error"), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	err := ConfigError("default locale is not listed in locales").WithField("i18n.default_locale").Build()

	quiet := NewCLIErrorAdapter(false, nil)
	assert.Equal(t, "Error (config): default locale is not listed in locales [field: i18n.default_locale]", quiet.FormatError(err))
	assert.Equal(t, "Error: boom", quiet.FormatError(errors.New("boom")))
	assert.Empty(t, quiet.FormatError(nil))

	verbose := NewCLIErrorAdapter(true, nil)
	assert.Equal(t, "[config:fatal] default locale is not listed in locales", verbose.FormatError(err))
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var logs, out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	adapter := NewCLIErrorAdapter(false, logger)
	adapter.out = &out

	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(NavigationError("sidebar references missing documents").WithContext("sidebar", "tutorialSidebar").Build())

	assert.Equal(t, 3, code)
	assert.Contains(t, out.String(), "sidebar references missing documents")
	assert.Contains(t, logs.String(), "category=navigation")
	assert.Contains(t, logs.String(), "sidebar=tutorialSidebar")

	code = -1
	adapter.HandleError(nil)
	assert.Equal(t, -1, code)
}
