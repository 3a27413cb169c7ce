// Package expr parses and evaluates single function-call expressions such
// as
//
//	str_xor(x'0E33', x'E0')
//	str_ucwords(str_rot13('fnzcyr grkg'))
//	str_numtowords(NULL)
//
// Literals follow SQL: NULL, decimal integers, 'single-quoted strings' with
// '' as the escaped quote, and x'..' hex blobs. Calls nest to any depth.
package expr

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Expr is a parsed expression: a call or a literal.
//
//nolint:govet // participle grammar tags are not standard struct tags
type Expr struct {
	Pos lexer.Position

	Call *Call   `  @@`
	Null bool    `| @Null`
	Int  *string `| @Int`
	Hex  *string `| @Hex`
	Str  *string `| @String`
}

// Call is a function call.
//
//nolint:govet // participle grammar tags are not standard struct tags
type Call struct {
	Pos lexer.Position

	Name string  `@Ident "("`
	Args []*Expr `( @@ ( "," @@ )* )? ")"`
}

var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Null", Pattern: `(?i)NULL\b`},
	{Name: "Hex", Pattern: `[xX]'[^']*'`},
	{Name: "String", Pattern: `'(?:[^']|'')*'`},
	{Name: "Int", Pattern: `[-+]?[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[(),]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var exprParser = participle.MustBuild[Expr](
	participle.Lexer(exprLexer),
	participle.Elide("Whitespace"),
)

// Parse parses one expression.
func Parse(src string) (*Expr, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("empty expression")
	}

	e, err := exprParser.ParseString("", src)
	if err != nil {
		return nil, fmt.Errorf("invalid expression %q: %w", src, err)
	}
	if err := e.check(); err != nil {
		return nil, err
	}
	return e, nil
}

// check validates literals the lexer cannot: integer range and hex digits.
func (e *Expr) check() error {
	switch {
	case e.Call != nil:
		for _, a := range e.Call.Args {
			if err := a.check(); err != nil {
				return err
			}
		}
	case e.Int != nil:
		if _, err := strconv.ParseInt(*e.Int, 10, 64); err != nil {
			return fmt.Errorf("%s: integer %s out of range", e.Pos, *e.Int)
		}
	case e.Hex != nil:
		if _, err := e.hexBytes(); err != nil {
			return fmt.Errorf("%s: invalid hex literal %s: %w", e.Pos, *e.Hex, err)
		}
	}
	return nil
}

func (e *Expr) hexBytes() ([]byte, error) {
	digits := (*e.Hex)[2 : len(*e.Hex)-1]
	return hex.DecodeString(digits)
}

func (e *Expr) text() string {
	s := (*e.Str)[1 : len(*e.Str)-1]
	return strings.ReplaceAll(s, "''", "'")
}

// String renders the expression in canonical form: upper-case NULL and
// hex digits, no optional whitespace.
func (e *Expr) String() string {
	switch {
	case e.Call != nil:
		args := make([]string, len(e.Call.Args))
		for i, a := range e.Call.Args {
			args[i] = a.String()
		}
		return e.Call.Name + "(" + strings.Join(args, ", ") + ")"
	case e.Null:
		return "NULL"
	case e.Int != nil:
		n, _ := strconv.ParseInt(*e.Int, 10, 64)
		return strconv.FormatInt(n, 10)
	case e.Hex != nil:
		b, _ := e.hexBytes()
		return fmt.Sprintf("x'%X'", b)
	default:
		return "'" + strings.ReplaceAll(e.text(), "'", "''") + "'"
	}
}
