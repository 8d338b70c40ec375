package main

import (
	"errors"
	"fmt"
	"io"

	perrors "github.com/owif/web-portal/internal/errors"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Out     io.Writer
	Verbose bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(out io.Writer, verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Out:     out,
		Verbose: verbose,
	}
}

// Handle prints a message based on the error code and returns err
func (h *ErrorHandler) Handle(err error) error {
	var pe *perrors.PortalError
	errors.As(err, &pe)

	switch perrors.GetCode(err) {
	case perrors.ErrCodeConfigNotFound:
		fmt.Fprintf(h.Out, "Error: configuration file not found (%v)\n", pe.Details["paths"])
		fmt.Fprintln(h.Out, "Pass --config or create owif-portal.yaml in the working directory.")

	case perrors.ErrCodeConfigInvalid:
		fmt.Fprintln(h.Out, "Error: invalid configuration")
		if problems, ok := pe.Details["problems"].([]string); ok {
			for _, p := range problems {
				fmt.Fprintf(h.Out, "  - %s\n", p)
			}
		} else {
			fmt.Fprintf(h.Out, "  %v\n", err)
		}

	case perrors.ErrCodeVariantNotFound:
		fmt.Fprintf(h.Out, "Error: variant '%v' not found\n", pe.Details["variant"])
		fmt.Fprintln(h.Out, "Run 'owif-portal variants' to see available variants.")

	case perrors.ErrCodePageNotFound:
		fmt.Fprintf(h.Out, "Error: no page for route %v\n", pe.Details["route"])
		fmt.Fprintln(h.Out, "Check site.pages in the config and the source directory.")

	case perrors.ErrCodeWriteFailed:
		fmt.Fprintf(h.Out, "Error: cannot write %v\n", pe.Details["path"])
		if pe.Cause != nil {
			fmt.Fprintf(h.Out, "  %v\n", pe.Cause)
		}

	default:
		fmt.Fprintf(h.Out, "Error: %v\n", err)
	}

	if h.Verbose && pe != nil {
		fmt.Fprintf(h.Out, "\nError details:\n%s\n", pe.ToJSON())
	}
	return err
}
