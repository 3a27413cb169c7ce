package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aitch25/lib-mysqludf-str/internal/expr"
	"github.com/aitch25/lib-mysqludf-str/internal/udf"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Hex bool // print every non-NULL result as hex
}

// EvalResult is one evaluated expression.
type EvalResult struct {
	Expr  string `json:"expr"`
	Type  string `json:"type"`
	Null  bool   `json:"null"`
	Value string `json:"value,omitempty"`
	Hex   string `json:"hex,omitempty"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <expr>...",
		Short: "Evaluate function call expressions",
		Long: `Evaluate one or more call expressions.

Arguments may be NULL, integers, 'SQL strings' (double a quote to escape
it), x'hex' blobs or nested calls. Every call is bound with its actual
argument values, so bind errors such as RANDOM_LIMIT are reported here.

Exit codes:
  0 - All expressions evaluated
  1 - An expression failed to bind
  2 - An expression failed to parse

Examples:
  strudf eval "str_numtowords(123456)"
  strudf eval "str_translate('a big string', 'ab', 'xy')"
  strudf eval --hex "str_xor(x'0E33', x'E0')"
  strudf eval "str_rot13(str_ucwords('hello world'))" --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return evalExpressions(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Hex, "hex", false, "print results as hex")

	return cmd
}

func evalExpressions(opts *EvalOptions, srcs []string, cmd *cobra.Command) error {
	if err := opts.load(); err != nil {
		return err
	}
	reg, err := opts.registry()
	if err != nil {
		return err
	}

	f := opts.formatter(cmd)
	ev := expr.NewEvaluator(udf.NewSession(reg))

	results := make([]EvalResult, 0, len(srcs))
	for _, src := range srcs {
		e, err := expr.Parse(src)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeParse, src, err)
		}

		res, err := ev.Eval(e)
		if err != nil {
			return f.Fail(ExitFailure, ErrCodeBind, src, err)
		}
		f.VerboseLog("%s -> %d bytes", e, len(res.Bytes))

		results = append(results, newEvalResult(e.String(), res))
	}

	if opts.Format == "json" {
		return f.Success(results)
	}

	w := cmd.OutOrStdout()
	for _, r := range results {
		switch {
		case r.Null:
			fmt.Fprintln(w, "NULL")
		case opts.Hex || r.Type == udf.TypeBlob.String():
			fmt.Fprintln(w, r.Hex)
		default:
			fmt.Fprintln(w, r.Value)
		}
	}
	return nil
}

func newEvalResult(src string, res udf.Result) EvalResult {
	r := EvalResult{Expr: src, Type: res.Type.String(), Null: res.Null}
	if res.Null {
		return r
	}
	r.Hex = fmt.Sprintf("%X", res.Bytes)
	if res.Type != udf.TypeBlob {
		r.Value = string(res.Bytes)
	}
	return r
}

// decodeHexFlag decodes a hex flag value, accepting an optional x'...'
// wrapper.
func decodeHexFlag(name, s string) ([]byte, error) {
	if len(s) >= 3 && (s[0] == 'x' || s[0] == 'X') && s[1] == '\'' && s[len(s)-1] == '\'' {
		s = s[2 : len(s)-1]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("invalid --%s: %v", name, err))
	}
	return b, nil
}
