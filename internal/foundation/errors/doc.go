// Package errors provides the classified error primitives used across cubedocs.
//
// Every failure a run can produce is one of three kinds: a configuration
// error (malformed or inconsistent site configuration), a navigation error
// (a sidebar or navbar target that does not resolve) or a content warning
// (a broken cross-link inside prose). The category decides the CLI exit code
// and the severity decides whether the run halts.
//
// Example usage:
//
//	err := errors.ConfigError("default locale is not listed in locales").
//		WithContext("field", "i18n.default_locale").
//		WithContext("value", cfg.I18n.DefaultLocale).
//		Build()
package errors
