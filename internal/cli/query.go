package cli

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aitch25/lib-mysqludf-str/internal/sqlhost"
	"github.com/aitch25/lib-mysqludf-str/internal/udf"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	DB string // database path; overrides the config DSN
}

// QueryResult is a query result in JSON output. NULL cells are null and
// blob cells are rendered as x'HEX'.
type QueryResult struct {
	Columns []string    `json:"columns"`
	Rows    [][]*string `json:"rows"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <sql>...",
		Short: "Run SQL with the functions installed",
		Long: `Run SQL statements on a SQLite database with every enabled function
installed. Statements run in order on the same connection; the rows of the
last one are printed.

The database defaults to the sqlite.dsn config value (":memory:").

Exit codes:
  0 - All statements succeeded
  1 - A statement failed (including bind errors such as RANDOM_LIMIT)
  2 - Command error (database cannot be opened, bad config)

Examples:
  strudf query "SELECT str_numtowords(42)"
  strudf query "CREATE TABLE t (s TEXT)" "INSERT INTO t VALUES ('abc')" "SELECT s, str_rot13(s) FROM t"
  strudf query --db app.db "SELECT str_ucwords(name) FROM users" --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "database path (default from config)")

	return cmd
}

func runQuery(ctx context.Context, opts *QueryOptions, stmts []string, cmd *cobra.Command) error {
	if err := opts.load(); err != nil {
		return err
	}
	reg, err := opts.registry()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	dsn := opts.cfg.SQLite.DSN
	if opts.DB != "" {
		dsn = opts.DB
	}

	host, err := sqlhost.Open(dsn, reg,
		sqlhost.WithLogger(opts.logger),
		sqlhost.WithPragmas(opts.cfg.SQLite.Pragmas...))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer host.Close()

	f := opts.formatter(cmd)
	last := len(stmts) - 1
	for _, stmt := range stmts[:last] {
		f.VerboseLog("exec: %s", stmt)
		if _, err := host.Exec(ctx, stmt); err != nil {
			return f.Fail(ExitFailure, ErrCodeQuery, stmt, err)
		}
	}

	f.VerboseLog("query: %s", stmts[last])
	table, err := host.QueryAll(ctx, stmts[last])
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeQuery, stmts[last], err)
	}

	if opts.Format == "json" {
		return f.Success(newQueryResult(table))
	}
	return writeTable(cmd, table)
}

func newQueryResult(t *sqlhost.Table) QueryResult {
	res := QueryResult{Columns: t.Columns, Rows: make([][]*string, len(t.Rows))}
	for i, row := range t.Rows {
		cells := make([]*string, len(row))
		for j, a := range row {
			if a.IsNull() {
				continue
			}
			s := renderCell(a)
			cells[j] = &s
		}
		res.Rows[i] = cells
	}
	return res
}

func writeTable(cmd *cobra.Command, t *sqlhost.Table) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for i, c := range t.Columns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, c)
	}
	fmt.Fprintln(tw)

	for _, row := range t.Rows {
		for i, a := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			if a.IsNull() {
				fmt.Fprint(tw, "NULL")
			} else {
				fmt.Fprint(tw, renderCell(a))
			}
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func renderCell(a udf.Arg) string {
	switch a.Type {
	case udf.TypeInt:
		return strconv.FormatInt(a.Int, 10)
	case udf.TypeBlob:
		return fmt.Sprintf("x'%X'", []byte(a.Bytes))
	default:
		return string(a.Bytes)
	}
}
