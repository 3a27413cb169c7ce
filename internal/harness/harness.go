package harness

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aitch25/lib-mysqludf-str/internal/expr"
	"github.com/aitch25/lib-mysqludf-str/internal/sqlhost"
	"github.com/aitch25/lib-mysqludf-str/internal/testutil"
	"github.com/aitch25/lib-mysqludf-str/internal/udf"
)

// Option configures a run.
type Option func(*runOptions)

type runOptions struct {
	log            *zap.Logger
	maxRandomBytes int
	functions      []string
	parallelism    int
}

// WithLogger sets the logger for suite results and function binds.
func WithLogger(l *zap.Logger) Option {
	return func(o *runOptions) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMaxRandomBytes sets the str_srand limit for suites that do not set
// their own.
func WithMaxRandomBytes(n int) Option {
	return func(o *runOptions) {
		o.maxRandomBytes = n
	}
}

// WithFunctions limits the registry to the named functions.
func WithFunctions(names []string) Option {
	return func(o *runOptions) {
		o.functions = names
	}
}

// WithParallelism caps how many suites RunAll runs at once. Values below
// one mean GOMAXPROCS.
func WithParallelism(n int) Option {
	return func(o *runOptions) {
		o.parallelism = n
	}
}

func newRunOptions(opts []Option) *runOptions {
	o := &runOptions{log: zap.NewNop(), maxRandomBytes: udf.DefaultMaxRandomBytes}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Harness runs one suite. It owns the suite's registry, its direct
// session and, once a sql case needs it, an in-memory SQLite host.
type Harness struct {
	suite *Suite
	opts  *runOptions
	reg   *udf.Registry
	eval  *expr.Evaluator
	host  *sqlhost.Host
}

// Run executes a suite and returns its result. Case failures are reported
// in the result; the error is reserved for infrastructure problems such as
// a database that will not open or a failing setup statement.
//
// Every suite gets a fresh registry with sequential instance ids and a
// fixed entropy seed, so runs are reproducible.
func Run(ctx context.Context, suite *Suite, opts ...Option) (*Result, error) {
	o := newRunOptions(opts)

	h, err := newHarness(suite, o)
	if err != nil {
		return nil, err
	}
	defer h.close()

	result := NewResult(suite.Name)
	for _, c := range suite.Cases {
		cr, err := h.runCase(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", c.Name, err)
		}
		result.add(cr)
	}

	o.log.Info("suite finished",
		zap.String("suite", suite.Name),
		zap.Bool("pass", result.Pass),
		zap.Int("cases", len(result.Cases)),
		zap.Int("failed", len(result.Failed())),
	)
	return result, nil
}

// RunAll runs suites concurrently and returns their results in input
// order. The first infrastructure error cancels the remaining suites.
// Builds whose SQLite functions are process-wide run one suite at a time.
func RunAll(ctx context.Context, suites []*Suite, opts ...Option) ([]*Result, error) {
	o := newRunOptions(opts)
	limit := o.parallelism
	if limit < 1 {
		limit = runtime.GOMAXPROCS(0)
	}
	if sqlhost.SharedFunctions {
		// Each suite has its own registry, and only one can be installed.
		limit = 1
	}

	results := make([]*Result, len(suites))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, s := range suites {
		g.Go(func() error {
			res, err := Run(ctx, s, opts...)
			if err != nil {
				return fmt.Errorf("suite %s: %w", s.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func newHarness(suite *Suite, o *runOptions) (*Harness, error) {
	seed := suite.Seed
	if seed == 0 {
		seed = 1
	}
	maxRandom := o.maxRandomBytes
	if suite.MaxRandomBytes > 0 {
		maxRandom = suite.MaxRandomBytes
	}

	reg := udf.Builtin(
		udf.WithLogger(o.log),
		udf.WithIDGenerator(testutil.NewSequenceIDGenerator(suite.Name)),
		udf.WithMaxRandomBytes(maxRandom),
		udf.WithEntropy(testutil.FixedEntropy(seed)),
	)
	if len(o.functions) > 0 {
		sub, err := reg.Subset(o.functions)
		if err != nil {
			return nil, err
		}
		reg = sub
	}

	return &Harness{
		suite: suite,
		opts:  o,
		reg:   reg,
		eval:  expr.NewEvaluator(udf.NewSession(reg)),
	}, nil
}

func (h *Harness) close() {
	if h.host != nil {
		_ = h.host.Close()
	}
}

// sqlHost opens the suite database and runs setup on first use.
func (h *Harness) sqlHost(ctx context.Context) (*sqlhost.Host, error) {
	if h.host != nil {
		return h.host, nil
	}

	host, err := sqlhost.Open(":memory:", h.reg, sqlhost.WithLogger(h.opts.log))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	for i, stmt := range h.suite.Setup {
		if _, err := host.Exec(ctx, stmt); err != nil {
			_ = host.Close()
			return nil, fmt.Errorf("setup[%d]: %w", i, err)
		}
	}
	h.host = host
	return host, nil
}

func (h *Harness) runCase(ctx context.Context, c Case) (CaseResult, error) {
	cr := CaseResult{Name: c.Name, Pass: true}

	var (
		got     []Value
		callErr error
	)
	if c.Expr != "" {
		var res udf.Result
		res, callErr = h.eval.EvalString(c.Expr)
		if callErr == nil {
			got = []Value{valueOfResult(res)}
		}
	} else {
		host, err := h.sqlHost(ctx)
		if err != nil {
			return cr, err
		}
		var table *sqlhost.Table
		table, callErr = host.QueryAll(ctx, c.SQL)
		if callErr == nil {
			got, callErr = firstColumn(table)
		}
	}

	for _, v := range got {
		cr.Got = append(cr.Got, v.String())
	}

	if c.ExpectBindError != "" {
		if err := checkBindError(c.ExpectBindError, callErr); err != nil {
			cr.addError(err)
		}
		return cr, nil
	}
	if callErr != nil {
		cr.addError(callErr)
		return cr, nil
	}

	if len(c.Rows) > 0 {
		for _, err := range checkRows(c.Rows, got) {
			cr.addError(err)
		}
		return cr, nil
	}
	if len(got) != 1 {
		cr.addError(fmt.Errorf("expected 1 row, got %d", len(got)))
		return cr, nil
	}
	if err := check(c.Expectation, got[0]); err != nil {
		cr.addError(err)
	}
	return cr, nil
}

func firstColumn(t *sqlhost.Table) ([]Value, error) {
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("query returned no columns")
	}
	out := make([]Value, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = valueOfArg(row[0])
	}
	return out, nil
}
