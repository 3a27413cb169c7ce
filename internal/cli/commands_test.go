package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeResponse(t *testing.T, out string, data any) CLIResponse {
	t.Helper()
	resp := CLIResponse{Data: data}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	return resp
}

func TestListCommand_Text(t *testing.T) {
	out, _, err := execute(NewListCommand(testOptions("text")))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 9)
	assert.True(t, strings.HasPrefix(lines[0], "lib_mysqludf_str_info() -> TEXT"))
	assert.Contains(t, out, "str_srand(CONST n INT, [seed INT]) -> BLOB")
	assert.Contains(t, out, "str_translate(s TEXT, CONST from TEXT, CONST to TEXT) -> TEXT")
}

func TestListCommand_JSON(t *testing.T) {
	out, _, err := execute(NewListCommand(testOptions("json")))
	require.NoError(t, err)

	var infos []FunctionInfo
	resp := decodeResponse(t, out, &infos)
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, infos, 9)

	byName := make(map[string]FunctionInfo)
	for _, fi := range infos {
		byName[fi.Name] = fi
	}
	assert.False(t, byName["str_shuffle"].Deterministic)
	assert.True(t, byName["str_rot13"].Deterministic)
	assert.Equal(t, "BLOB", byName["str_xor"].Returns)
	assert.NotEmpty(t, byName["str_numtowords"].Summary)
}

func TestInfoCommand(t *testing.T) {
	out, _, err := execute(NewInfoCommand(testOptions("text")))
	require.NoError(t, err)
	assert.Equal(t, "lib_mysqludf_str version 0.5\n", out)
}

func TestInfoCommand_JSON(t *testing.T) {
	out, _, err := execute(NewInfoCommand(testOptions("json")))
	require.NoError(t, err)

	var info InfoResult
	decodeResponse(t, out, &info)
	assert.Equal(t, "lib_mysqludf_str version 0.5", info.Info)
	assert.Equal(t, "0.5", info.Version)
	assert.Equal(t, 9, info.Functions)
	assert.Equal(t, 255, info.MaxRandomBytes)
	assert.NotEmpty(t, info.SQLiteDriver)
}

func TestEvalCommand(t *testing.T) {
	out, _, err := execute(NewEvalCommand(testOptions("text")),
		"str_numtowords(123456)",
		"str_translate('a big string', 'ab', 'xy')",
		"str_xor(x'0E33', x'E0')",
		"str_rot13(NULL)",
	)
	require.NoError(t, err)
	assert.Equal(t, "one hundred twenty-three thousand four hundred fifty-six\n"+
		"x yig string\n"+
		"EE33\n"+
		"NULL\n", out)
}

func TestEvalCommand_Hex(t *testing.T) {
	out, _, err := execute(NewEvalCommand(testOptions("text")), "--hex", "str_ucfirst('abc')")
	require.NoError(t, err)
	assert.Equal(t, "416263\n", out)
}

func TestEvalCommand_JSON(t *testing.T) {
	out, _, err := execute(NewEvalCommand(testOptions("json")),
		"str_rot13( 'secret message' )", "str_srand(4, 1)", "str_ucwords(NULL)")
	require.NoError(t, err)

	var results []EvalResult
	decodeResponse(t, out, &results)
	require.Len(t, results, 3)

	assert.Equal(t, EvalResult{
		Expr:  "str_rot13('secret message')",
		Type:  "TEXT",
		Value: "frperg zrffntr",
		Hex:   "667270657267207A7266666E7472",
	}, results[0])
	assert.Equal(t, "BLOB", results[1].Type)
	assert.Len(t, results[1].Hex, 8)
	assert.Empty(t, results[1].Value)
	assert.True(t, results[2].Null)
}

func TestEvalCommand_BindError(t *testing.T) {
	_, errOut, err := execute(NewEvalCommand(testOptions("text")), "str_srand(1000)")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, errOut, "Error [E_BIND]")
	assert.Contains(t, errOut, "RANDOM_LIMIT")
}

func TestEvalCommand_ParseError(t *testing.T) {
	out, _, err := execute(NewEvalCommand(testOptions("json")), "str_rot13('unterminated)")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeResponse(t, out, nil)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeParse, resp.Error.Code)
}

func TestEvalCommand_MaxRandomBytesFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strudf.cue")
	require.NoError(t, os.WriteFile(path, []byte(`max_random_bytes: 1024`), 0o644))

	opts := testOptions("text")
	opts.Config = path
	out, _, err := execute(NewEvalCommand(opts), "--hex", "str_srand(1000, 5)")
	require.NoError(t, err)
	assert.Len(t, strings.TrimSpace(out), 2000)
}

func TestQueryCommand(t *testing.T) {
	out, _, err := execute(NewQueryCommand(testOptions("text")),
		"CREATE TABLE t (id INTEGER PRIMARY KEY, s TEXT)",
		"INSERT INTO t (id, s) VALUES (1, 'sAmple strinG'), (2, NULL)",
		"SELECT id, str_ucwords(s) AS w, str_xor(s, x'20') AS x FROM t ORDER BY id",
	)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"id", "w", "x"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"1", "SAmple", "StrinG", "x'53416D706C6520737472696E47'"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"2", "NULL", "NULL"}, strings.Fields(lines[2]))
}

func TestQueryCommand_JSON(t *testing.T) {
	out, _, err := execute(NewQueryCommand(testOptions("json")),
		"SELECT str_numtowords(7) AS words, str_rot13(NULL) AS r")
	require.NoError(t, err)

	var res QueryResult
	decodeResponse(t, out, &res)
	assert.Equal(t, []string{"words", "r"}, res.Columns)
	require.Len(t, res.Rows, 1)
	require.NotNil(t, res.Rows[0][0])
	assert.Equal(t, "seven", *res.Rows[0][0])
	assert.Nil(t, res.Rows[0][1])
}

func TestQueryCommand_FileDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "app.db")

	_, _, err := execute(NewQueryCommand(testOptions("text")), "--db", db,
		"CREATE TABLE words (w TEXT)", "INSERT INTO words VALUES ('abc')", "SELECT 1")
	require.NoError(t, err)

	out, _, err := execute(NewQueryCommand(testOptions("text")), "--db", db, "SELECT str_rot13(w) AS r FROM words")
	require.NoError(t, err)
	assert.Equal(t, "r\nnop\n", out)
}

func TestQueryCommand_BindError(t *testing.T) {
	_, errOut, err := execute(NewQueryCommand(testOptions("text")), "SELECT str_srand(256)")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, errOut, "Error [E_QUERY]")
	assert.Contains(t, errOut, "RANDOM_LIMIT")
}

func TestPipeCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		in   string
		want string
	}{
		{"rot13", []string{"-f", "rot13"}, "secret message", "frperg zrffntr"},
		{"str prefix", []string{"-f", "str_rot13"}, "abc", "nop"},
		{"translate", []string{"-f", "translate", "--from", "ab", "--to", "xy"}, "a big string", "x yig string"},
		{"ucfirst", []string{"-f", "ucfirst"}, "sAmple strinG", "SAmple strinG"},
		{"ucwords", []string{"-f", "ucwords"}, "sAmple strinG", "SAmple StrinG"},
		{"xor text key", []string{"-f", "xor", "--key", " "}, "abc", "ABC"},
		{"xor hex key", []string{"-f", "xor", "--key-hex", "x'20'"}, "ABC", "abc"},
		{"chain", []string{"-f", "ucwords", "-f", "rot13"}, "hello world", "Uryyb Jbeyq"},
		{"chain in one flag", []string{"-f", "rot13,rot13"}, "unchanged", "unchanged"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewPipeCommand(testOptions("text"))
			cmd.SetIn(strings.NewReader(tt.in))
			out, _, err := execute(cmd, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestPipeCommand_InputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("abc ", 5000)), 0o644))

	out, _, err := execute(NewPipeCommand(testOptions("text")), "-f", "ucwords", "--input", path)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("Abc ", 5000), out)
}

func TestPipeCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing function", nil, `required flag(s) "function" not set`},
		{"unknown function", []string{"-f", "shuffle"}, `unknown function "shuffle"`},
		{"unequal table", []string{"-f", "translate", "--from", "ab", "--to", "x"}, "invalid translate table"},
		{"xor without key", []string{"-f", "xor"}, "xor needs --key or --key-hex"},
		{"bad hex key", []string{"-f", "xor", "--key-hex", "zz"}, "invalid --key-hex"},
		{"missing input", []string{"-f", "rot13", "--input", "/nonexistent/in.txt"}, "failed to open input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewPipeCommand(testOptions("text"))
			cmd.SetIn(strings.NewReader(""))
			_, _, err := execute(cmd, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
