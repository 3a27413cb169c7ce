package sqlhost

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/aitch25/lib-mysqludf-str/internal/udf"
)

// ErrRegistryInUse is returned by Open when function registrations are
// process-wide and another open Host installed a different registry.
var ErrRegistryInUse = errors.New("sqlite functions are installed for another registry")

// Host is a SQLite database with the string functions installed.
type Host struct {
	db      *sql.DB
	dsn     string
	log     *zap.Logger
	release func()
}

type options struct {
	log     *zap.Logger
	pragmas []string
}

// Option configures Open.
type Option func(*options)

// WithLogger sets the logger for connection and rebind events.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithPragmas sets the pragmas applied at Open, without the PRAGMA
// keyword, e.g. "foreign_keys = ON".
func WithPragmas(pragmas ...string) Option {
	return func(o *options) {
		o.pragmas = pragmas
	}
}

// Open opens the SQLite database at dsn and installs every function of reg
// on its connections.
func Open(dsn string, reg *udf.Registry, opts ...Option) (*Host, error) {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	db, release, err := openDB(dsn, reg, o.log)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		release()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// A second connection to ":memory:" would be a second, empty database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db, o.pragmas); err != nil {
		db.Close()
		release()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	o.log.Info("sqlite host opened",
		zap.String("dsn", dsn),
		zap.String("driver", DriverType),
		zap.Int("functions", reg.Len()))
	return &Host{db: db, dsn: dsn, log: o.log, release: release}, nil
}

// Close closes the database.
func (h *Host) Close() error {
	if h.db == nil {
		return nil
	}
	h.log.Info("sqlite host closed", zap.String("dsn", h.dsn))
	err := h.db.Close()
	h.release()
	return err
}

// DB returns the underlying sql.DB.
func (h *Host) DB() *sql.DB {
	return h.db
}

// Exec runs a statement that returns no rows.
func (h *Host) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return h.db.ExecContext(ctx, query, args...)
}

// Query runs a query. Callers are responsible for closing the returned rows.
func (h *Host) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return h.db.QueryContext(ctx, query, args...)
}

// QueryRow runs a query expected to return at most one row.
func (h *Host) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return h.db.QueryRowContext(ctx, query, args...)
}

// applyPragmas executes each pragma in order.
func applyPragmas(db *sql.DB, pragmas []string) error {
	for _, p := range pragmas {
		stmt := p
		if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(p)), "PRAGMA ") {
			stmt = "PRAGMA " + p
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute %q: %w", stmt, err)
		}
	}
	return nil
}
