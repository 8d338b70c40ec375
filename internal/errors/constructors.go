package errors

import (
	"fmt"
	"strings"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(paths ...string) *PortalError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found (searched: %s)", strings.Join(paths, ", "))).
		WithDetail("paths", paths)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *PortalError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// VariantNotFound creates an unknown variant error
func VariantNotFound(name string) *PortalError {
	return New(ErrCodeVariantNotFound, fmt.Sprintf("variant '%s' not found", name)).
		WithDetail("variant", name)
}

// PageNotFound creates an error for a route without a page
func PageNotFound(route string) *PortalError {
	return New(ErrCodePageNotFound, fmt.Sprintf("no page for route %s", route)).
		WithDetail("route", route)
}

// PageParse creates an error for an unparseable page source
func PageParse(file string, err error) *PortalError {
	return Wrap(err, ErrCodePageParse, fmt.Sprintf("failed to parse page %s", file)).
		WithDetail("file", file)
}

// WriteFailed creates an output write error
func WriteFailed(path string, err error) *PortalError {
	return Wrap(err, ErrCodeWriteFailed, fmt.Sprintf("failed to write %s", path)).
		WithDetail("path", path)
}
