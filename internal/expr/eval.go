package expr

import (
	"fmt"
	"strconv"

	"github.com/aitch25/lib-mysqludf-str/internal/udf"
)

// Evaluator evaluates expressions against a session's functions.
type Evaluator struct {
	sess *udf.Session
}

// NewEvaluator returns an evaluator binding through sess.
func NewEvaluator(sess *udf.Session) *Evaluator {
	return &Evaluator{sess: sess}
}

// EvalString parses and evaluates src.
func (ev *Evaluator) EvalString(src string) (udf.Result, error) {
	e, err := Parse(src)
	if err != nil {
		return udf.Result{}, err
	}
	return ev.Eval(e)
}

// Eval evaluates e. Every call is bound with its evaluated arguments as
// constants and run once, innermost first. A literal evaluates to itself.
func (ev *Evaluator) Eval(e *Expr) (udf.Result, error) {
	if e.Call == nil {
		return toResult(literal(e)), nil
	}

	args := make([]udf.Arg, len(e.Call.Args))
	for i, a := range e.Call.Args {
		res, err := ev.Eval(a)
		if err != nil {
			return udf.Result{}, err
		}
		args[i] = toArg(res)
	}

	res, err := ev.sess.Eval(e.Call.Name, args...)
	if err != nil {
		return udf.Result{}, fmt.Errorf("%s: %w", e.Call.Pos, err)
	}
	return res, nil
}

func literal(e *Expr) udf.Arg {
	switch {
	case e.Null:
		return udf.Null()
	case e.Int != nil:
		n, _ := strconv.ParseInt(*e.Int, 10, 64)
		return udf.Int(n)
	case e.Hex != nil:
		b, _ := e.hexBytes()
		return udf.Blob(b)
	default:
		return udf.Text(e.text())
	}
}

func toResult(a udf.Arg) udf.Result {
	if a.IsNull() {
		return udf.NullResult
	}
	return udf.Result{Type: a.Type, Bytes: a.AsBytes()}
}

func toArg(r udf.Result) udf.Arg {
	switch {
	case r.Null:
		return udf.Null()
	case r.Type == udf.TypeInt:
		n, _ := strconv.ParseInt(string(r.Bytes), 10, 64)
		return udf.Int(n)
	case r.Type == udf.TypeBlob:
		return udf.Blob(r.Bytes)
	default:
		return udf.Text(string(r.Bytes))
	}
}
