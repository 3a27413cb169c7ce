// Package harness runs conformance suites against the string functions.
//
// A suite is a YAML file of cases. Each case evaluates either a call
// expression directly or a SQL query on an in-memory SQLite database with
// every function registered, then checks the first column of the result:
//
//	name: rot13
//	description: ROT13 rotates letters and keeps everything else
//	setup:
//	  - CREATE TABLE t (s TEXT)
//	  - INSERT INTO t VALUES ('abc'), (NULL)
//	cases:
//	  - name: literal
//	    expr: str_rot13('Hello')
//	    expect: Uryyb
//	  - name: column
//	    sql: SELECT str_rot13(s) FROM t ORDER BY rowid
//	    rows:
//	      - expect: nop
//	      - expect_null: true
//	  - name: too many bytes
//	    expr: str_srand(300)
//	    expect_bind_error: RANDOM_LIMIT
//
// Expectations are expect (exact bytes), expect_hex, expect_null,
// expect_len, expect_multiset_of (any permutation) and expect_bind_error.
// Several value expectations may be combined on one case.
//
// Unseeded str_shuffle and str_srand calls draw from a fixed seed (the
// suite's seed field, default 1), and instance ids are sequential, so a
// suite's result is reproducible. Report renders a result as text for
// golden comparison.
package harness
