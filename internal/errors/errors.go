// Package errors renders user-facing failures. Every fatal path logs
// before exiting so the rotating log keeps what the terminal showed.
package errors

import (
	"fmt"
	"os"

	"github.com/julianstephens/shiftlog/internal/logger"
)

// Format prefixes an error for terminal output.
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf is Format over a format string.
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs the error, prints it to stderr, and exits with status 1.
// A nil error is a no-op.
func Fatal(err error) {
	if err == nil {
		return
	}
	logger.Error("command failed", "error", err)
	fmt.Fprintln(os.Stderr, Format(err))
	os.Exit(1)
}

// Fatalf logs a formatted error, prints it to stderr, and exits with
// status 1.
func Fatalf(format string, args ...interface{}) {
	logger.Error("command failed", "error", fmt.Sprintf(format, args...))
	fmt.Fprintln(os.Stderr, Formatf(format, args...))
	os.Exit(1)
}
