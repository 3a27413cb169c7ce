// Package sqlhost runs the string functions inside SQLite.
//
// Open returns a Host whose connections have every function of a registry
// installed. SQLite has no bind phase of its own, so each connection keeps
// one call site per function that binds lazily on the first row and rebinds
// when a row no longer fits the current bind: an argument longer than the
// bound it was sized for, a different argument type, or a new value for a
// parameter that must be constant. Binding errors abort the statement.
//
// The default build uses github.com/mattn/go-sqlite3 and installs functions
// per connection. Building with the purego tag switches to modernc.org/sqlite,
// whose function registrations are process-wide: hosts open at the same
// time must share one registry, and Open fails with ErrRegistryInUse for a
// different one. SharedFunctions reports which case applies.
//
// A parameter that must be constant is checked per distinct value, not per
// statement: SQLite does not say whether an argument is a literal, so
// str_srand(id) over a table binds again for each new id. Two calls of one
// function with different constants in a single statement, such as two
// str_translate tables, rely on the same rebinding.
//
// # Database Configuration
//
//   - One open connection, so that ":memory:" databases persist across
//     queries of one Host
//   - Configurable pragmas, applied at Open
package sqlhost
