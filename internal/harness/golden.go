package harness

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Report renders a result as a stable text report: one line per case and
// a summary. Outputs are left out so that reports stay byte-identical
// when only random bytes differ.
func Report(r *Result) []byte {
	var buf strings.Builder
	fmt.Fprintf(&buf, "suite: %s\n", r.Suite)

	failed := 0
	for _, c := range r.Cases {
		status := "PASS"
		if !c.Pass {
			status = "FAIL"
			failed++
		}
		fmt.Fprintf(&buf, "%s %s\n", status, c.Name)
		for _, e := range c.Errors {
			for _, line := range strings.Split(e, "\n") {
				fmt.Fprintf(&buf, "    %s\n", line)
			}
		}
	}

	fmt.Fprintf(&buf, "summary: %d passed, %d failed\n", len(r.Cases)-failed, failed)
	return []byte(buf.String())
}

// RunWithGolden runs a suite and compares its report against
// testdata/golden/{suite.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, suite *Suite, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), suite, opts...)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, suite.Name, result)
	return result, nil
}

// AssertGolden compares an already computed result against its golden
// report.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Report(result))
}
