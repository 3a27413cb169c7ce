package sqlhost

import (
	"bytes"
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aitch25/lib-mysqludf-str/internal/udf"
)

// minColumnLen is the smallest byte length a per-row argument is bound for.
const minColumnLen = 16

// callSite adapts one udf.Function to SQLite's row callback. It is safe for
// concurrent use; SQLite serializes calls on one connection anyway, but the
// pure-Go build shares call sites between connections.
type callSite struct {
	mu    sync.Mutex
	fn    udf.Function
	log   *zap.Logger
	inst  udf.Instance
	specs []udf.ArgSpec
	buf   *udf.OutputBuffer
	args  []udf.Arg
}

func newCallSite(fn udf.Function, log *zap.Logger) *callSite {
	return &callSite{fn: fn, log: log, buf: udf.NewOutputBuffer(0)}
}

// call evaluates one row of SQLite values and returns the SQLite result:
// nil for NULL, []byte for BLOB results and string for TEXT ones.
func (c *callSite) call(values ...any) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.args = c.args[:0]
	for _, v := range values {
		a, err := toArg(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.fn.Name(), err)
		}
		c.args = append(c.args, a)
	}

	if !c.fits(c.args) {
		if err := c.rebind(c.args); err != nil {
			return nil, err
		}
	}

	res := c.inst.Call(c.args, c.buf)
	switch {
	case res.Null:
		return nil, nil
	case res.Type == udf.TypeBlob && len(res.Bytes) == 0:
		return emptyBlob, nil
	case res.Type == udf.TypeBlob:
		return bytes.Clone(res.Bytes), nil
	default:
		return string(res.Bytes), nil
	}
}

// fits reports whether the current instance was bound for shapes that cover
// args.
func (c *callSite) fits(args []udf.Arg) bool {
	if c.inst == nil || len(args) != len(c.specs) {
		return false
	}

	params := c.fn.Params()
	for i, a := range args {
		s := c.specs[i]
		if params[i].Const {
			if !sameArg(s.Value, a) {
				return false
			}
			continue
		}
		if a.IsNull() {
			continue
		}
		if a.Type != s.Type || a.Len() > s.MaxLen {
			return false
		}
	}
	return true
}

func (c *callSite) rebind(args []udf.Arg) error {
	params := c.fn.Params()
	specs := make([]udf.ArgSpec, len(args))
	for i, a := range args {
		if i < len(params) && params[i].Const {
			specs[i] = udf.ConstSpec(cloneArg(a))
			continue
		}

		s := udf.ColumnSpec(a.Type, columnLen(a.Len()))
		if i < len(c.specs) && !a.IsNull() && a.Type == c.specs[i].Type {
			s.MaxLen = max(s.MaxLen, c.specs[i].MaxLen)
		}
		if a.IsNull() && i < len(c.specs) {
			s = c.specs[i]
		}
		specs[i] = s
	}

	inst, err := c.fn.Bind(specs)
	if err != nil {
		return err
	}

	c.log.Debug("rebound",
		zap.String("function", c.fn.Name()),
		zap.String("instance", inst.ID()),
		zap.Int("bound", int(inst.Bound())))
	c.inst = inst
	c.specs = specs
	c.buf.Ensure(inst.Bound())
	return nil
}

// columnLen rounds n up to a power of two so a column of growing values
// rebinds O(log n) times.
func columnLen(n int) int {
	if n <= minColumnLen {
		return minColumnLen
	}
	return 1 << bits.Len(uint(n-1))
}

func sameArg(a, b udf.Arg) bool {
	return a.Type == b.Type && a.Int == b.Int && bytes.Equal(a.Bytes, b.Bytes)
}

// cloneArg copies the bytes of a, which SQLite only lends for one call.
func cloneArg(a udf.Arg) udf.Arg {
	if a.Bytes != nil {
		a.Bytes = bytes.Clone(a.Bytes)
	}
	return a
}

// toArg converts a value handed over by either SQLite driver.
func toArg(v any) (udf.Arg, error) {
	switch v := v.(type) {
	case nil:
		return udf.Null(), nil
	case int64:
		return udf.Int(v), nil
	case float64:
		if v == math.Trunc(v) && v >= math.MinInt64 && v < math.MaxInt64 {
			return udf.Int(int64(v)), nil
		}
		return udf.Text(strconv.FormatFloat(v, 'g', -1, 64)), nil
	case bool:
		if v {
			return udf.Int(1), nil
		}
		return udf.Int(0), nil
	case string:
		return udf.Text(v), nil
	case []byte:
		if v == nil {
			return udf.Null(), nil
		}
		return udf.Blob(v), nil
	case time.Time:
		return udf.Text(v.Format(time.RFC3339Nano)), nil
	default:
		return udf.Arg{}, fmt.Errorf("unsupported argument type %T", v)
	}
}
