package exit

import (
	"fmt"
	"io"
	"os"
)

// Process exit codes.
const (
	CodeOK    = 0
	CodeError = 1
	CodeUsage = 2
)

// Result holds the output destination and exit code for program termination.
type Result struct {
	Output   io.Writer
	ExitCode int
	Message  string
}

// Print writes the message, if any, to the configured output.
func (r *Result) Print() {
	if r.Message == "" {
		return
	}
	fmt.Fprint(r.Output, r.Message)
}

// Success creates a result that prints to stdout and exits 0.
func Success(message string) *Result {
	return &Result{Output: os.Stdout, ExitCode: CodeOK, Message: message}
}

// Error creates a result that prints to stderr and exits 1.
func Error(message string) *Result {
	return &Result{Output: os.Stderr, ExitCode: CodeError, Message: message}
}

func Errorf(format string, a ...any) *Result {
	return Error(fmt.Sprintf(format, a...))
}

// Usagef creates a result for invalid invocations: stderr, exit 2.
func Usagef(format string, a ...any) *Result {
	return &Result{Output: os.Stderr, ExitCode: CodeUsage, Message: fmt.Sprintf(format, a...)}
}

// Silent exits with code without printing anything.
func Silent(code int) *Result {
	return &Result{Output: io.Discard, ExitCode: code}
}
