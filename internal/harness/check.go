package harness

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/aitch25/lib-mysqludf-str/internal/udf"
)

// Value is one observed function output.
type Value struct {
	Null  bool
	Type  udf.Type
	Bytes []byte
}

func valueOfResult(r udf.Result) Value {
	if r.Null {
		return Value{Null: true, Type: udf.TypeNull}
	}
	return Value{Type: r.Type, Bytes: bytes.Clone(r.Bytes)}
}

func valueOfArg(a udf.Arg) Value {
	switch {
	case a.IsNull():
		return Value{Null: true, Type: udf.TypeNull}
	case a.Type == udf.TypeInt:
		return Value{Type: udf.TypeInt, Bytes: strconv.AppendInt(nil, a.Int, 10)}
	default:
		return Value{Type: a.Type, Bytes: bytes.Clone(a.Bytes)}
	}
}

// String renders blobs as x'HEX' and everything else as text.
func (v Value) String() string {
	if v.Null {
		return "NULL"
	}
	if v.Type == udf.TypeBlob {
		return fmt.Sprintf("x'%X'", v.Bytes)
	}
	return string(v.Bytes)
}

// ExpectationError describes a failed check.
type ExpectationError struct {
	// Kind is the expectation field that failed, e.g. "expect_hex".
	Kind string

	// Expected and Actual are human-readable.
	Expected string
	Actual   string

	// Diff is a cmp diff for byte comparisons, if any.
	Diff string
}

// Error implements the error interface.
func (e *ExpectationError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%s: expected %s, got %s", e.Kind, e.Expected, e.Actual)
	if e.Diff != "" {
		fmt.Fprintf(&buf, "\n(-want +got):\n%s", e.Diff)
	}
	return buf.String()
}

// check evaluates every set field of exp against v and returns the first
// failure.
func check(exp Expectation, v Value) error {
	if exp.ExpectNull {
		if !v.Null {
			return &ExpectationError{Kind: "expect_null", Expected: "NULL", Actual: v.String()}
		}
		return nil
	}

	if v.Null {
		return &ExpectationError{Kind: firstKind(exp), Expected: "a value", Actual: "NULL"}
	}

	if exp.Expect != nil {
		if want := *exp.Expect; want != string(v.Bytes) {
			return &ExpectationError{
				Kind:     "expect",
				Expected: strconv.Quote(want),
				Actual:   strconv.Quote(string(v.Bytes)),
				Diff:     cmp.Diff(want, string(v.Bytes)),
			}
		}
	}

	if exp.ExpectHex != nil {
		want, err := hex.DecodeString(*exp.ExpectHex)
		if err != nil {
			return fmt.Errorf("expect_hex: invalid hex %q: %w", *exp.ExpectHex, err)
		}
		if !bytes.Equal(want, v.Bytes) {
			return &ExpectationError{
				Kind:     "expect_hex",
				Expected: fmt.Sprintf("%X", want),
				Actual:   fmt.Sprintf("%X", v.Bytes),
				Diff:     cmp.Diff(want, v.Bytes),
			}
		}
	}

	if exp.ExpectLen != nil && *exp.ExpectLen != len(v.Bytes) {
		return &ExpectationError{
			Kind:     "expect_len",
			Expected: strconv.Itoa(*exp.ExpectLen),
			Actual:   strconv.Itoa(len(v.Bytes)),
		}
	}

	if exp.ExpectMultisetOf != nil {
		want := sortedBytes([]byte(*exp.ExpectMultisetOf))
		got := sortedBytes(v.Bytes)
		if !bytes.Equal(want, got) {
			return &ExpectationError{
				Kind:     "expect_multiset_of",
				Expected: "a permutation of " + strconv.Quote(*exp.ExpectMultisetOf),
				Actual:   strconv.Quote(string(v.Bytes)),
				Diff:     cmp.Diff(want, got),
			}
		}
	}

	return nil
}

// checkRows compares a sql result column with per-row expectations.
func checkRows(exps []Expectation, got []Value) []error {
	var errs []error
	if len(exps) != len(got) {
		errs = append(errs, &ExpectationError{
			Kind:     "rows",
			Expected: fmt.Sprintf("%d rows", len(exps)),
			Actual:   fmt.Sprintf("%d rows", len(got)),
		})
	}
	for i := range min(len(exps), len(got)) {
		if err := check(exps[i], got[i]); err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", i+1, err))
		}
	}
	return errs
}

// checkBindError reports whether err carries the bind error code. SQL
// drivers flatten function errors to text, so the message is searched when
// the typed error is gone.
func checkBindError(code string, err error) error {
	if err == nil {
		return &ExpectationError{Kind: "expect_bind_error", Expected: code, Actual: "success"}
	}
	if udf.HasCode(err, udf.BindErrorCode(code)) || strings.Contains(err.Error(), code+":") {
		return nil
	}
	return &ExpectationError{Kind: "expect_bind_error", Expected: code, Actual: err.Error()}
}

func firstKind(exp Expectation) string {
	switch {
	case exp.Expect != nil:
		return "expect"
	case exp.ExpectHex != nil:
		return "expect_hex"
	case exp.ExpectLen != nil:
		return "expect_len"
	default:
		return "expect_multiset_of"
	}
}

func sortedBytes(b []byte) []byte {
	out := bytes.Clone(b)
	slices.Sort(out)
	return out
}
