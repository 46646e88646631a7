// Package device resolves, opens and creates the Linux input devices the
// autoclicker reads from and writes to.
package device

import "fmt"

// Process exit codes for device resolution failures.
const (
	ExitEmptyQuery      = 1
	ExitOpenFailed      = 2
	ExitNotFound        = 3
	ExitLegacyForRun    = 4
	ExitMiceForLegacy   = 5
	ExitBlacklistedCode = 10
)

// ExitError is a failure that ends the process with a specific status.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func exitErrorf(code int, format string, args ...any) *ExitError {
	return &ExitError{Code: code, Err: fmt.Errorf(format, args...)}
}
