//go:build !purego

package sqlhost

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/aitch25/lib-mysqludf-str/internal/udf"
)

// DriverType identifies the SQLite implementation compiled in.
const DriverType = "cgo"

// SharedFunctions reports whether function registrations are process-wide.
const SharedFunctions = false

// emptyBlob is returned for a zero-length BLOB result. go-sqlite3 turns a
// zero-length []byte result into NULL, so the empty string stands in.
var emptyBlob any = ""

// openDB installs the functions from a connect hook, giving every
// connection its own call sites.
func openDB(dsn string, reg *udf.Registry, log *zap.Logger) (*sql.DB, func(), error) {
	drv := &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			for _, fn := range reg.List() {
				site := newCallSite(fn, log)
				if err := conn.RegisterFunc(fn.Name(), site.call, udf.Deterministic(fn)); err != nil {
					return fmt.Errorf("register %s: %w", fn.Name(), err)
				}
			}
			log.Debug("connection opened", zap.Int("functions", reg.Len()))
			return nil
		},
	}
	return sql.OpenDB(&connector{drv: drv, dsn: dsn}), func() {}, nil
}

// connector opens connections through a private driver so that nothing is
// registered with database/sql globally.
type connector struct {
	drv *sqlite3.SQLiteDriver
	dsn string
}

func (c *connector) Connect(context.Context) (driver.Conn, error) {
	return c.drv.Open(c.dsn)
}

func (c *connector) Driver() driver.Driver {
	return c.drv
}
