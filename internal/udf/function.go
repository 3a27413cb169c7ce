package udf

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Function is a string function a host can bind.
type Function interface {
	// Name returns the SQL name.
	Name() string

	// Params returns the parameter list; optional parameters come last.
	Params() []Param

	// Returns returns the result type.
	Returns() Type

	// Bind checks the argument shapes and computes the SizeBound. Problems
	// are reported as *BindError.
	Bind(args []ArgSpec) (Instance, error)
}

// Instance is a bound Function, valid for one query execution.
type Instance interface {
	// ID identifies the instance in logs.
	ID() string

	// Bound is the capacity every OutputBuffer handed to Call must have.
	Bound() SizeBound

	// Call evaluates one row. The returned bytes alias dst. Call panics when
	// dst is smaller than Bound or args does not match the bound arity.
	Call(args []Arg, dst *OutputBuffer) Result
}

// Summarizer is implemented by functions carrying a one-line description.
type Summarizer interface {
	Summary() string
}

// Deterministic reports whether fn always returns the same result for the
// same arguments. Functions drawing random bytes are not deterministic.
func Deterministic(fn Function) bool {
	if d, ok := fn.(interface{ Deterministic() bool }); ok {
		return d.Deterministic()
	}
	return true
}

// Signature renders fn as name(params) -> type.
func Signature(fn Function) string {
	params := make([]string, 0, len(fn.Params()))
	for _, p := range fn.Params() {
		params = append(params, p.String())
	}
	return fmt.Sprintf("%s(%s) -> %s", fn.Name(), strings.Join(params, ", "), fn.Returns())
}

// body runs the transform of one row into dst, which is exactly Bound
// bytes long, and returns the number of bytes written. args are coerced to
// the parameter types and none of the NULL-propagating ones is NULL.
type body func(args []Arg, dst []byte) int

type binding struct {
	bound SizeBound
	body  body
}

type binder func(cfg *settings, args []ArgSpec) (binding, error)

type scalar struct {
	name    string
	summary string
	params  []Param
	returns Type
	bind    binder
	cfg     *settings

	volatile bool
}

func (f *scalar) Name() string { return f.name }
func (f *scalar) Params() []Param { return f.params }
func (f *scalar) Returns() Type { return f.returns }
func (f *scalar) Summary() string { return f.summary }

func (f *scalar) Deterministic() bool { return !f.volatile }

func (f *scalar) Bind(args []ArgSpec) (Instance, error) {
	b, err := f.bindArgs(args)
	if err != nil {
		fields := []zap.Field{zap.String("function", f.name), zap.Error(err)}
		var be *BindError
		if errors.As(err, &be) {
			fields = append(fields, zap.String("code", string(be.Code)))
		}
		f.cfg.log.Debug("bind rejected", fields...)
		return nil, err
	}

	inst := &instance{
		id:      f.cfg.ids.Generate(),
		fn:      f,
		bound:   b.bound,
		body:    b.body,
		coerced: make([]Arg, len(args)),
	}
	f.cfg.log.Debug("function bound",
		zap.String("function", f.name),
		zap.String("instance", inst.id),
		zap.Int("bound", int(inst.bound)))
	return inst, nil
}

func (f *scalar) bindArgs(args []ArgSpec) (binding, error) {
	required := 0
	for _, p := range f.params {
		if !p.Optional {
			required++
		}
	}
	if len(args) < required || len(args) > len(f.params) {
		return binding{}, newBindError(ErrCodeArgCount, f.name,
			"expects %s, got %d", arity(required, len(f.params)), len(args))
	}

	for i, a := range args {
		p := f.params[i]
		if a.Type < TypeNull || a.Type > TypeBlob {
			return binding{}, newBindError(ErrCodeArgType, f.name, "argument %q has unknown type %d", p.Name, a.Type)
		}
		if p.Type == TypeInt && a.Type == TypeBlob {
			return binding{}, newBindError(ErrCodeArgType, f.name, "argument %q must be an integer, got %s", p.Name, a.Type)
		}
		if p.Const && !a.Const {
			return binding{}, newBindError(ErrCodeNotConstant, f.name, "argument %q must be a constant", p.Name)
		}
	}

	return f.bind(f.cfg, args)
}

func arity(required, total int) string {
	switch {
	case required == total && total == 1:
		return "1 argument"
	case required == total:
		return fmt.Sprintf("%d arguments", total)
	default:
		return fmt.Sprintf("%d to %d arguments", required, total)
	}
}

type instance struct {
	id      string
	fn      *scalar
	bound   SizeBound
	body    body
	coerced []Arg
}

func (in *instance) ID() string { return in.id }
func (in *instance) Bound() SizeBound { return in.bound }

func (in *instance) Call(args []Arg, dst *OutputBuffer) Result {
	if dst.Cap() < int(in.bound) {
		panic(fmt.Sprintf("udf: %s: buffer of %d bytes is below the bound of %d", in.fn.name, dst.Cap(), in.bound))
	}
	if len(args) != len(in.coerced) {
		panic(fmt.Sprintf("udf: %s: called with %d arguments, bound with %d", in.fn.name, len(args), len(in.coerced)))
	}

	for i, a := range args {
		p := in.fn.params[i]
		if a.IsNull() && !p.Nullable {
			dst.set(0)
			return NullResult
		}
		in.coerced[i] = a.coerce(p.Type)
	}

	dst.set(in.body(in.coerced, dst.buf[:in.bound]))
	return Result{Type: in.fn.returns, Bytes: dst.Bytes()}
}
