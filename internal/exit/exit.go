package exit

import (
	"fmt"
	"io"
	"os"
)

const (
	CodeOK = 0
	// CodeFailure reports that at least one input failed to parse.
	CodeFailure = 1
	// CodeUsage reports invalid flags, configuration or profile.
	CodeUsage = 2
)

// Result holds the output destination and exit code for program termination.
type Result struct {
	Output   io.Writer
	ExitCode int
	Message  string
}

// Print writes the result message to the configured output destination.
func (r *Result) Print() {
	if r.Message == "" {
		return
	}
	fmt.Fprint(r.Output, r.Message)
}

// Success creates a successful exit result that outputs to stdout.
func Success(message string) *Result {
	return &Result{
		Output:   os.Stdout,
		ExitCode: CodeOK,
		Message:  message,
	}
}

// Failure creates a result for inputs that did not parse.
func Failure(message string) *Result {
	return &Result{
		Output:   os.Stderr,
		ExitCode: CodeFailure,
		Message:  message,
	}
}

// Usage creates a result for a run that could not start.
func Usage(message string) *Result {
	return &Result{
		Output:   os.Stderr,
		ExitCode: CodeUsage,
		Message:  message,
	}
}

func Usagef(format string, a ...any) *Result {
	return Usage(fmt.Sprintf(format, a...))
}

// FromError maps a command error to a result. A nil error is success.
func FromError(err error, failed bool) *Result {
	switch {
	case err != nil:
		return Usagef("Error: %v\n", err)
	case failed:
		return Failure("")
	default:
		return Success("")
	}
}
