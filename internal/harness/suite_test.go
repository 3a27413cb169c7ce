package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSuite(t *testing.T) {
	s, err := LoadSuite("testdata/suites/rot13.yaml")
	require.NoError(t, err)

	assert.Equal(t, "rot13", s.Name)
	assert.Equal(t, "testdata/suites/rot13.yaml", s.Path())
	assert.Len(t, s.Setup, 2)
	require.Len(t, s.Cases, 5)

	literal := s.Cases[0]
	assert.Equal(t, "str_rot13('secret message')", literal.Expr)
	require.NotNil(t, literal.Expect)
	assert.Equal(t, "frperg zrffntr", *literal.Expect)

	column := s.Cases[3]
	assert.NotEmpty(t, column.SQL)
	require.Len(t, column.Rows, 2)
	assert.True(t, column.Rows[0].ExpectNull)

	assert.Equal(t, "ARG_COUNT", s.Cases[4].ExpectBindError)
}

func TestLoadSuite_Invalid(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"unknown_field.yaml", "field expects not found"},
		{"both_expr_and_sql.yaml", "exactly one of expr and sql is required"},
		{"no_expectation.yaml", "an expectation is required"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			_, err := LoadSuite(filepath.Join("testdata/invalid", tt.file))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), tt.file)
		})
	}
}

func TestLoadSuite_MissingFile(t *testing.T) {
	_, err := LoadSuite("testdata/nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read suite file")
}

func TestParseSuite_Validation(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "missing name",
			src:  "description: d\ncases: [{name: a, expr: \"str_rot13('a')\", expect: n}]",
			want: "name is required",
		},
		{
			name: "missing description",
			src:  "name: n\ncases: [{name: a, expr: \"str_rot13('a')\", expect: n}]",
			want: "description is required",
		},
		{
			name: "no cases",
			src:  "name: n\ndescription: d\ncases: []",
			want: "cases list is required",
		},
		{
			name: "unnamed case",
			src:  "name: n\ndescription: d\ncases: [{expr: \"str_rot13('a')\", expect: n}]",
			want: "cases[0]: name is required",
		},
		{
			name: "duplicate case",
			src: "name: n\ndescription: d\ncases:\n" +
				"  - {name: a, expr: \"str_rot13('a')\", expect: n}\n" +
				"  - {name: a, expr: \"str_rot13('b')\", expect: o}",
			want: `duplicate name "a"`,
		},
		{
			name: "rows on expr",
			src:  "name: n\ndescription: d\ncases: [{name: a, expr: \"str_rot13('a')\", rows: [{expect: n}]}]",
			want: "rows is only valid for sql cases",
		},
		{
			name: "bind error with value",
			src:  "name: n\ndescription: d\ncases: [{name: a, expr: \"str_srand(300)\", expect_len: 1, expect_bind_error: RANDOM_LIMIT}]",
			want: "expect_bind_error excludes other expectations",
		},
		{
			name: "rows and single",
			src:  "name: n\ndescription: d\ncases: [{name: a, sql: SELECT 1, expect: \"1\", rows: [{expect: \"1\"}]}]",
			want: "use either rows or a single expectation",
		},
		{
			name: "empty row",
			src:  "name: n\ndescription: d\ncases: [{name: a, sql: SELECT 1, rows: [{}]}]",
			want: "rows[0]: an expectation is required",
		},
		{
			name: "negative limit",
			src:  "name: n\ndescription: d\nmax_random_bytes: -1\ncases: [{name: a, expr: \"str_rot13('a')\", expect: n}]",
			want: "max_random_bytes must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSuite([]byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadSuites(t *testing.T) {
	suites, err := LoadSuites("testdata/suites")
	require.NoError(t, err)

	var names []string
	for _, s := range suites {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"case", "info", "numtowords", "random", "rot13", "translate", "xor"}, names)

	single, err := LoadSuites("testdata/suites/xor.yaml")
	require.NoError(t, err)
	require.Len(t, single, 1)
	assert.Equal(t, "xor", single[0].Name)
}

func TestLoadSuites_Empty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	_, err := LoadSuites(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no suite files found")
}
