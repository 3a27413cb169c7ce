package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aitch25/lib-mysqludf-str/internal/udf"
)

// Process exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // a function refused to bind, a query failed or a suite failed
	ExitCommandError = 2 // bad flags, unreadable files, invalid config or suites
)

// Codes reported in the JSON error envelope.
const (
	ErrCodeParse      = "E_PARSE"
	ErrCodeBind       = "E_BIND"
	ErrCodeQuery      = "E_QUERY"
	ErrCodeTestFailed = "E_TEST_FAILED"
)

// ExitError carries the process exit code for a failed command.
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

// NewExitError returns an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError returns an ExitError caused by err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode maps err to a process exit code. Errors that are not
// ExitErrors count as ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter writes command results as text or as a JSON envelope.
// Text diagnostics go to ErrWriter, or to Writer when it is unset.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// CLIResponse is the JSON envelope every command prints with --format json.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError describes a failure in the JSON envelope.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// BindDetails is attached to an error response when a function refused to
// bind.
type BindDetails struct {
	Input    string `json:"input"`
	Function string `json:"function"`
	Reason   string `json:"reason"`
}

// Success prints data. In text mode data is printed with fmt.Println, so a
// fmt.Stringer controls its own rendering.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error reports a failure without deciding the exit code.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	w := f.diag()
	fmt.Fprintf(w, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(w, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err for input under code and returns the ExitError the
// command should exit with. A bind error from any layer is reported with
// its function and reason as details.
func (f *OutputFormatter) Fail(exit int, code, input string, err error) error {
	var details any = input
	var be *udf.BindError
	if errors.As(err, &be) {
		details = BindDetails{Input: input, Function: be.Function, Reason: string(be.Code)}
	}
	_ = f.Error(code, err.Error(), details)

	switch code {
	case ErrCodeParse:
		return WrapExitError(exit, "failed to parse expression", err)
	case ErrCodeBind:
		return WrapExitError(exit, "failed to evaluate expression", err)
	default:
		return WrapExitError(exit, "statement failed", err)
	}
}

// VerboseLog prints a diagnostic line when --verbose is set.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if f.Verbose {
		fmt.Fprintf(f.diag(), format+"\n", args...)
	}
}

func (f *OutputFormatter) diag() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
