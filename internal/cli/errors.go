// Package cli provides shared configuration and utilities for the pgquery CLI.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/pthm/pgquery/pkg/schema"
)

// Process exit codes.
const (
	ExitSuccess     = 0
	ExitGeneral     = 1
	ExitConfig      = 2
	ExitSchemaParse = 3
	ExitDBConnect   = 4
)

// ExitError attaches a process exit code and a short description to err.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode classifies err. An ExitError anywhere in the chain decides;
// otherwise schema errors exit with ExitSchemaParse and everything else with
// ExitGeneral. A nil err is ExitSuccess.
func ExitCode(err error) int {
	var exitErr *ExitError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &exitErr):
		return exitErr.Code
	case schema.IsInvalidSchemaErr(err), schema.IsCyclicSchemaErr(err):
		return ExitSchemaParse
	default:
		return ExitGeneral
	}
}

// Report writes err to w and returns its exit code.
func Report(w io.Writer, err error) int {
	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintln(w, "Error:", err)
	return ExitCode(err)
}

func newExitError(code int, msg string, err error) *ExitError {
	return &ExitError{Code: code, Message: msg, Err: err}
}

// ConfigError reports a configuration problem (exit code 2).
func ConfigError(msg string, err error) *ExitError {
	return newExitError(ExitConfig, msg, err)
}

// SchemaParseError reports an unreadable or invalid schema file (exit code 3).
func SchemaParseError(msg string, err error) *ExitError {
	return newExitError(ExitSchemaParse, msg, err)
}

// DBConnectError reports a database that cannot be reached (exit code 4).
func DBConnectError(msg string, err error) *ExitError {
	return newExitError(ExitDBConnect, msg, err)
}

// GeneralError reports any other failure (exit code 1).
func GeneralError(msg string, err error) *ExitError {
	return newExitError(ExitGeneral, msg, err)
}
