package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aitch25/lib-mysqludf-str/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // suite filter (glob pattern on the suite name)
	Jobs   int    // suites run at once
}

// SuiteResult holds the result of a single suite.
type SuiteResult struct {
	Name   string               `json:"name"`
	Pass   bool                 `json:"pass"`
	Cases  []harness.CaseResult `json:"cases,omitempty"`
	Errors []string             `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Suites []SuiteResult `json:"suites"`
	Passed int           `json:"passed"`
	Failed int           `json:"failed"`
	Total  int           `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <suites-path>",
		Short: "Run conformance suites",
		Long: `Run YAML conformance suites against the enabled functions.

<suites-path> is a suite file or a directory searched for .yaml files.
When <dir>/golden/<suite>.golden exists next to a suite, the suite's
report must also match it byte for byte.

Exit codes:
  0 - All suites passed
  1 - One or more suites failed
  2 - Command error (invalid paths, malformed suites, etc.)

Examples:
  strudf test ./suites
  strudf test ./suites --filter "xor*"
  strudf test ./suites --update
  strudf test ./suites/rot13.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter suites by glob pattern")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 0, "suites run in parallel (default GOMAXPROCS)")

	return cmd
}

func runTests(ctx context.Context, opts *TestOptions, path string, cmd *cobra.Command) error {
	if err := opts.load(); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("suites path not found: %s", path))
	}

	suites, err := harness.LoadSuites(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load suites", err)
	}
	suites, err = filterSuites(suites, opts.Filter)
	if err != nil {
		return err
	}

	if len(suites) == 0 {
		if opts.Format == "json" {
			return outputTestJSON(cmd, TestResult{Suites: []SuiteResult{}})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No suites found.")
		return nil
	}

	results, err := harness.RunAll(ctx, suites,
		harness.WithLogger(opts.logger),
		harness.WithMaxRandomBytes(opts.cfg.MaxRandomBytes),
		harness.WithFunctions(opts.cfg.Functions),
		harness.WithParallelism(opts.Jobs),
	)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run suites", err)
	}

	result := TestResult{
		Suites: make([]SuiteResult, 0, len(suites)),
		Total:  len(suites),
	}
	for i, s := range suites {
		sr := checkSuite(opts, s, results[i], cmd)
		result.Suites = append(result.Suites, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return outputTestJSON(cmd, result)
	}
	return outputTestText(cmd, result)
}

func filterSuites(suites []*harness.Suite, filter string) ([]*harness.Suite, error) {
	if filter == "" {
		return suites, nil
	}
	var out []*harness.Suite
	for _, s := range suites {
		matched, err := filepath.Match(filter, s.Name)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid filter pattern", err)
		}
		if matched {
			out = append(out, s)
		}
	}
	return out, nil
}

// checkSuite folds the golden comparison into a suite result and prints
// the text status line.
func checkSuite(opts *TestOptions, s *harness.Suite, r *harness.Result, cmd *cobra.Command) SuiteResult {
	sr := SuiteResult{Name: s.Name, Pass: r.Pass, Cases: r.Cases}
	for _, c := range r.Failed() {
		for _, e := range c.Errors {
			sr.Errors = append(sr.Errors, fmt.Sprintf("%s: %s", c.Name, e))
		}
	}

	report := harness.Report(r)
	goldenPath := goldenFilePath(s)
	status := ""

	switch {
	case opts.Update:
		if err := writeGolden(goldenPath, report); err != nil {
			sr.Pass = false
			sr.Errors = append(sr.Errors, fmt.Sprintf("failed to update golden file: %v", err))
		} else {
			status = " (golden updated)"
		}
	default:
		golden, err := os.ReadFile(goldenPath)
		switch {
		case os.IsNotExist(err):
			// No golden file: case expectations only.
		case err != nil:
			sr.Pass = false
			sr.Errors = append(sr.Errors, fmt.Sprintf("failed to read golden file: %v", err))
		case !bytes.Equal(golden, report):
			sr.Pass = false
			sr.Errors = append(sr.Errors, "report does not match golden file (run with --update to regenerate)")
		}
	}

	if opts.Format != "json" {
		w := cmd.OutOrStdout()
		if sr.Pass {
			fmt.Fprintf(w, "✓ %s%s\n", s.Name, status)
		} else {
			fmt.Fprintf(w, "✗ %s\n", s.Name)
			for _, e := range sr.Errors {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
	}
	return sr
}

// goldenFilePath returns <suite dir>/golden/<suite name>.golden.
func goldenFilePath(s *harness.Suite) string {
	return filepath.Join(filepath.Dir(s.Path()), "golden", s.Name+".golden")
}

func writeGolden(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(cmd *cobra.Command, result TestResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if result.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeTestFailed,
			Message: fmt.Sprintf("%d suite(s) failed", result.Failed),
		}
	}

	f := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
	if err := f.encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d suite(s) failed", result.Failed))
	}
	return nil
}

// outputTestText outputs the test summary as text.
func outputTestText(cmd *cobra.Command, result TestResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d suite(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All suites passed")
	return nil
}
