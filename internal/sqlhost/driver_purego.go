//go:build purego

package sqlhost

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"modernc.org/sqlite"

	"github.com/aitch25/lib-mysqludf-str/internal/udf"
)

// DriverType identifies the SQLite implementation compiled in.
const DriverType = "purego"

// SharedFunctions reports whether function registrations are process-wide.
const SharedFunctions = true

// emptyBlob is returned for a zero-length BLOB result; modernc.org/sqlite
// reports it as a zero-length blob.
var emptyBlob any = []byte{}

// modernc.org/sqlite registers functions for the whole process and refuses
// to register a name twice. Each name is registered once and dispatches to
// the call sites of the one registry currently installed. Hosts on other
// registries are refused until every host on the installed one has closed.
var shared = struct {
	mu         sync.RWMutex
	reg        *udf.Registry
	hosts      int
	sites      map[string]*callSite
	registered map[string]bool
}{
	sites:      make(map[string]*callSite),
	registered: make(map[string]bool),
}

func openDB(dsn string, reg *udf.Registry, log *zap.Logger) (*sql.DB, func(), error) {
	shared.mu.Lock()
	defer shared.mu.Unlock()

	switch {
	case shared.hosts > 0 && shared.reg != reg:
		return nil, nil, ErrRegistryInUse
	case shared.hosts == 0:
		shared.reg = reg
		shared.sites = make(map[string]*callSite)
		for _, fn := range reg.List() {
			shared.sites[fn.Name()] = newCallSite(fn, log)
		}
	}

	for _, fn := range reg.List() {
		name := fn.Name()
		if shared.registered[name] {
			continue
		}
		err := sqlite.RegisterFunction(name, &sqlite.FunctionImpl{
			NArgs:         -1,
			Deterministic: udf.Deterministic(fn),
			Scalar:        dispatch(name),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("register %s: %w", name, err)
		}
		shared.registered[name] = true
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, err
	}
	shared.hosts++

	var once sync.Once
	release := func() {
		once.Do(func() {
			shared.mu.Lock()
			defer shared.mu.Unlock()
			shared.hosts--
			if shared.hosts == 0 {
				shared.reg = nil
				shared.sites = make(map[string]*callSite)
			}
		})
	}
	return db, release, nil
}

// dispatch returns the scalar callback for name. A name registered for an
// earlier registry but missing from the installed one is reported as
// unknown.
func dispatch(name string) func(*sqlite.FunctionContext, []driver.Value) (driver.Value, error) {
	return func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		shared.mu.RLock()
		site := shared.sites[name]
		shared.mu.RUnlock()
		if site == nil {
			return nil, fmt.Errorf("no such function: %s", name)
		}

		values := make([]any, len(args))
		for i, a := range args {
			values[i] = a
		}
		return site.call(values...)
	}
}
