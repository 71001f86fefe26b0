package sitemap

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingBaseURL is returned when no base URL was configured.
var ErrMissingBaseURL = errors.New(`"baseUrl" is required`)

// Hook names reported by HookError.
const (
	HookBeforeRender = "onBeforeRender"
	HookAfterRender  = "onAfterRender"
	HookURLBuilder   = "urlBuilder"
)

// ConfigurationError reports an invalid configuration detected before any fetch.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("sitemap configuration: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// FetchError wraps a failure returned by the document fetcher.
type FetchError struct {
	Err   error
	Types []string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch documents [%s]: %v", strings.Join(e.Types, ", "), e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// HookError wraps a failure returned by a user-supplied hook or URL builder.
type HookError struct {
	Err  error
	Hook string
	// Type is set for URL builder failures.
	Type string
}

func (e *HookError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s for type %q: %v", e.Hook, e.Type, e.Err)
	}

	return fmt.Sprintf("%s: %v", e.Hook, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}

// ValidateBaseURL returns a ConfigurationError when opts has no base URL.
func ValidateBaseURL(opts Options) error {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return &ConfigurationError{Err: ErrMissingBaseURL}
	}

	return nil
}
