package sqlhost

import (
	"context"
	"database/sql"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/aitch25/lib-mysqludf-str/internal/testutil"
	"github.com/aitch25/lib-mysqludf-str/internal/udf"
)

func openTestHost(t *testing.T, opts ...Option) *Host {
	t.Helper()
	reg := udf.Builtin(
		udf.WithIDGenerator(testutil.NewSequenceIDGenerator("sql")),
		udf.WithEntropy(testutil.FixedEntropy(1)),
	)
	h, err := Open(":memory:", reg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

func mustExec(t *testing.T, h *Host, stmts ...string) {
	t.Helper()
	for _, s := range stmts {
		_, err := h.Exec(context.Background(), s)
		require.NoError(t, err, s)
	}
}

func queryStrings(t *testing.T, h *Host, query string) []sql.NullString {
	t.Helper()
	rows, err := h.Query(context.Background(), query)
	require.NoError(t, err)
	defer rows.Close()

	var out []sql.NullString
	for rows.Next() {
		var s sql.NullString
		require.NoError(t, rows.Scan(&s))
		out = append(out, s)
	}
	require.NoError(t, rows.Err())
	return out
}

func str(s string) sql.NullString { return sql.NullString{String: s, Valid: true} }

var null = sql.NullString{}

func TestNumToWords(t *testing.T) {
	h := openTestHost(t)

	var price string
	require.NoError(t, h.QueryRow(context.Background(), "SELECT str_numtowords(123456) AS price").Scan(&price))
	assert.Equal(t, "one hundred twenty-three thousand four hundred fifty-six", price)

	assert.Equal(t, []sql.NullString{str("one hundred thousand")},
		queryStrings(t, h, "SELECT str_numtowords(100000)"))

	mustExec(t, h,
		"CREATE TEMPORARY TABLE numbers (id INTEGER PRIMARY KEY, num INT)",
		"INSERT INTO numbers(id, num) VALUES (1, -67423), (2, NULL)")
	assert.Equal(t, []sql.NullString{str("negative sixty-seven thousand four hundred twenty-three"), null},
		queryStrings(t, h, "SELECT str_numtowords(num) FROM numbers ORDER BY id"))
}

func TestRot13_ColumnWithNull(t *testing.T) {
	h := openTestHost(t)

	assert.Equal(t, []sql.NullString{str("frperg zrffntr")},
		queryStrings(t, h, "SELECT str_rot13('secret message') AS crypted"))

	mustExec(t, h,
		"CREATE TEMPORARY TABLE email (email_id INTEGER PRIMARY KEY, email_address VARCHAR(255))",
		"INSERT INTO email(email_id, email_address) VALUES (1, NULL), (2, 'dtrebbien@gmail.com')")
	assert.Equal(t, []sql.NullString{null, str("qgeroovra@tznvy.pbz")},
		queryStrings(t, h, "SELECT str_rot13(email_address) FROM email ORDER BY email_id"))
}

func TestShuffle(t *testing.T) {
	h := openTestHost(t)

	var got []byte
	require.NoError(t, h.QueryRow(context.Background(), "SELECT str_shuffle('shake me!') AS nonsense").Scan(&got))

	want := []byte("shake me!")
	slices.Sort(got)
	slices.Sort(want)
	assert.Equal(t, want, got)

	var same bool
	require.NoError(t, h.QueryRow(context.Background(),
		"SELECT str_shuffle('abcdefgh', 7) = str_shuffle('abcdefgh', 7)").Scan(&same))
	assert.True(t, same)
}

func TestTranslate(t *testing.T) {
	h := openTestHost(t)

	assert.Equal(t, []sql.NullString{str("x yig string")},
		queryStrings(t, h, "SELECT str_translate('a big string', 'ab', 'xy') AS translated"))

	mustExec(t, h,
		"CREATE TEMPORARY TABLE strings (id INTEGER PRIMARY KEY, str VARCHAR(255))",
		"INSERT INTO strings(id, str) VALUES (1, 'a big string'), (2, NULL)")
	assert.Equal(t, []sql.NullString{str("x yig string"), null},
		queryStrings(t, h, "SELECT str_translate(str, 'ab', 'xy') FROM strings ORDER BY id"))

	err := h.QueryRow(context.Background(), "SELECT str_translate('abc', 'abc', 'x')").Scan(new(string))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TABLE_LENGTH")
}

func TestCaseFunctions(t *testing.T) {
	h := openTestHost(t)
	mustExec(t, h,
		"CREATE TEMPORARY TABLE strings (id INTEGER PRIMARY KEY, str VARCHAR(255))",
		"INSERT INTO strings(id, str) VALUES (1, 'sAmple strinG'), (2, NULL)")

	assert.Equal(t, []sql.NullString{str("SAmple strinG"), null},
		queryStrings(t, h, "SELECT str_ucfirst(str) FROM strings ORDER BY id"))
	assert.Equal(t, []sql.NullString{str("SAmple StrinG"), null},
		queryStrings(t, h, "SELECT str_ucwords(str) FROM strings ORDER BY id"))
}

func TestXor(t *testing.T) {
	h := openTestHost(t)

	assert.Equal(t, []sql.NullString{str("EE33"), str("A49A989A")},
		queryStrings(t, h, "SELECT upper(hex(str_xor(x'0E33', x'E0'))) AS result "+
			"UNION ALL SELECT upper(hex(str_xor('Wiki', x'F3F3F3F3')))"))

	mustExec(t, h,
		"CREATE TEMPORARY TABLE strings (id INTEGER PRIMARY KEY, str BLOB)",
		"INSERT INTO strings(id, str) VALUES (1, x'0E33'), (3, NULL)")

	rows, err := h.Query(context.Background(),
		"SELECT upper(hex(str_xor(str, x'E0'))), upper(hex(str_xor(x'E0', str))) FROM strings ORDER BY id")
	require.NoError(t, err)
	defer rows.Close()

	var got [][2]sql.NullString
	for rows.Next() {
		var a, b sql.NullString
		require.NoError(t, rows.Scan(&a, &b))
		got = append(got, [2]sql.NullString{a, b})
	}
	require.NoError(t, rows.Err())

	// hex(NULL) is the empty string in SQLite.
	assert.Equal(t, [][2]sql.NullString{{str("EE33"), str("EE33")}, {str(""), str("")}}, got)

	var isNull bool
	require.NoError(t, h.QueryRow(context.Background(),
		"SELECT str_xor(str, x'E0') IS NULL FROM strings WHERE id = 3").Scan(&isNull))
	assert.True(t, isNull)
}

func TestSrand(t *testing.T) {
	h := openTestHost(t)

	var n int
	require.NoError(t, h.QueryRow(context.Background(), "SELECT length(str_srand(123)) AS len").Scan(&n))
	assert.Equal(t, 123, n)

	var typ string
	require.NoError(t, h.QueryRow(context.Background(), "SELECT typeof(str_srand(4))").Scan(&typ))
	assert.Equal(t, "blob", typ)

	var a, b []byte
	require.NoError(t, h.QueryRow(context.Background(), "SELECT str_srand(16, 99), str_srand(16, 99)").Scan(&a, &b))
	assert.Equal(t, a, b)

	err := h.QueryRow(context.Background(), "SELECT str_srand(256)").Scan(new([]byte))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RANDOM_LIMIT")
}

func TestSrand_ZeroRowsNeverBind(t *testing.T) {
	h := openTestHost(t)
	mustExec(t, h, "CREATE TEMPORARY TABLE empty (id INTEGER)")

	assert.Empty(t, queryStrings(t, h, "SELECT str_srand(100000) FROM empty"))
}

func TestInfo(t *testing.T) {
	h := openTestHost(t)

	var info string
	require.NoError(t, h.QueryRow(context.Background(), "SELECT lib_mysqludf_str_info() AS info").Scan(&info))
	assert.Equal(t, "lib_mysqludf_str version 0.5", info)
}

func TestArgCountError(t *testing.T) {
	h := openTestHost(t)

	err := h.QueryRow(context.Background(), "SELECT str_rot13('a', 'b')").Scan(new(string))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ARG_COUNT")
}

func TestRebindOnGrowth(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := openTestHost(t, WithLogger(zap.New(core)))

	mustExec(t, h, "CREATE TEMPORARY TABLE words (id INTEGER PRIMARY KEY, w TEXT)")
	var want []sql.NullString
	for i := 1; i <= 100; i++ {
		w := strings.Repeat("n", i)
		_, err := h.Exec(context.Background(), "INSERT INTO words(id, w) VALUES (?, ?)", i, w)
		require.NoError(t, err)
		want = append(want, str(strings.Repeat("a", i)))
	}

	assert.Equal(t, want, queryStrings(t, h, "SELECT str_rot13(w) FROM words ORDER BY id"))

	// 16, 32, 64, 128
	assert.Len(t, logs.FilterMessage("rebound").All(), 4)
}

func TestQueryAll(t *testing.T) {
	h := openTestHost(t)

	table, err := h.QueryAll(context.Background(),
		"SELECT str_rot13('abc') AS r, str_xor(x'01', x'03') AS x, str_rot13(NULL) AS n, 5 AS i")
	require.NoError(t, err)

	assert.Equal(t, []string{"r", "x", "n", "i"}, table.Columns)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, udf.Text("nop"), table.Rows[0][0])
	assert.Equal(t, udf.Blob([]byte{0x02}), table.Rows[0][1])
	assert.True(t, table.Rows[0][2].IsNull())
	assert.Equal(t, udf.Int(5), table.Rows[0][3])
}

func TestOpen_Pragmas(t *testing.T) {
	h := openTestHost(t, WithPragmas("foreign_keys = ON", "PRAGMA user_version = 7"))

	var fk, version int
	require.NoError(t, h.QueryRow(context.Background(), "PRAGMA foreign_keys").Scan(&fk))
	require.NoError(t, h.QueryRow(context.Background(), "PRAGMA user_version").Scan(&version))
	assert.Equal(t, 1, fk)
	assert.Equal(t, 7, version)
}

func TestOpen_BadPragma(t *testing.T) {
	_, err := Open(":memory:", udf.Builtin(), WithPragmas("this is not sql"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to apply pragmas")
}

func TestOpen_SubsetRegistry(t *testing.T) {
	reg, err := udf.Builtin().Subset([]string{udf.NameRot13})
	require.NoError(t, err)

	h, err := Open(":memory:", reg)
	require.NoError(t, err)
	defer h.Close()

	var s string
	require.NoError(t, h.QueryRow(context.Background(), "SELECT str_rot13('a')").Scan(&s))
	assert.Equal(t, "n", s)
}

func TestEmptyBlobResultsAreNotNull(t *testing.T) {
	h := openTestHost(t)

	for _, expr := range []string{"str_srand(0)", "str_xor(x'', x'')", "str_shuffle('')", "str_shuffle(x'', 3)"} {
		t.Run(expr, func(t *testing.T) {
			var isNull bool
			var n int
			require.NoError(t, h.QueryRow(context.Background(),
				"SELECT "+expr+" IS NULL, length("+expr+")").Scan(&isNull, &n))
			assert.False(t, isNull)
			assert.Zero(t, n)
		})
	}

	table, err := h.QueryAll(context.Background(), "SELECT str_srand(0)")
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.False(t, table.Rows[0][0].IsNull())
	assert.Zero(t, table.Rows[0][0].Len())
}

func TestOpen_SubsetAfterFullRegistry(t *testing.T) {
	full, err := Open(":memory:", udf.Builtin())
	require.NoError(t, err)
	require.NoError(t, full.Close())

	reg, err := udf.Builtin().Subset([]string{udf.NameRot13})
	require.NoError(t, err)
	h, err := Open(":memory:", reg)
	require.NoError(t, err)
	defer h.Close()

	err = h.QueryRow(context.Background(), "SELECT str_xor('a', 'b')").Scan(new([]byte))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such function")
}

func TestConstantArgumentsRebindPerValue(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := openTestHost(t, WithLogger(zap.New(core)))
	mustExec(t, h,
		"CREATE TEMPORARY TABLE counts (id INTEGER PRIMARY KEY)",
		"INSERT INTO counts(id) VALUES (1), (2), (3)")

	// SQLite cannot tell a column from a literal, so a count taken from a
	// column binds once per distinct value.
	assert.Equal(t, []sql.NullString{str("1"), str("2"), str("3")},
		queryStrings(t, h, "SELECT length(str_srand(id)) FROM counts ORDER BY id"))
	srand := slices.DeleteFunc(logs.FilterMessage("rebound").All(), func(e observer.LoggedEntry) bool {
		return e.ContextMap()["function"] != udf.NameSrand
	})
	assert.Len(t, srand, 3)

	err := h.QueryRow(context.Background(),
		"SELECT str_srand(id * 100) FROM counts WHERE id = 3").Scan(new([]byte))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RANDOM_LIMIT")

	// Two tables in one statement share the call site.
	assert.Equal(t, []sql.NullString{str("xy|ba")},
		queryStrings(t, h, "SELECT str_translate('ab', 'ab', 'xy') || '|' || str_translate('ab', 'ab', 'ba')"))
}
