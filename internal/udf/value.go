package udf

import (
	"math"
	"strconv"
)

// Type is the SQL type of an argument or a result.
type Type int

const (
	TypeNull Type = iota
	TypeInt
	TypeText
	TypeBlob
)

// String returns the SQL name of the type.
func (t Type) String() string {
	switch t {
	case TypeNull:
		return "NULL"
	case TypeInt:
		return "INT"
	case TypeText:
		return "TEXT"
	case TypeBlob:
		return "BLOB"
	default:
		return "UNKNOWN"
	}
}

// maxIntTextLen is the longest decimal rendering of an int64.
const maxIntTextLen = len("-9223372036854775808")

// ByteString is a read-only view of argument bytes. Its length is explicit;
// it may hold zero bytes and is never terminated. A ByteString is only valid
// for the call that supplies it.
type ByteString []byte

// Len returns the number of bytes in the view.
func (b ByteString) Len() int {
	return len(b)
}

// Arg is one argument value for one row.
type Arg struct {
	Type  Type
	Int   int64
	Bytes ByteString
}

// Null returns a NULL argument.
func Null() Arg {
	return Arg{Type: TypeNull}
}

// Int returns an integer argument.
func Int(n int64) Arg {
	return Arg{Type: TypeInt, Int: n}
}

// Text returns a text argument holding s.
func Text(s string) Arg {
	return Arg{Type: TypeText, Bytes: ByteString(s)}
}

// Blob returns a binary argument viewing b.
func Blob(b []byte) Arg {
	return Arg{Type: TypeBlob, Bytes: b}
}

// IsNull reports whether the argument is NULL.
func (a Arg) IsNull() bool {
	return a.Type == TypeNull
}

// Len returns the byte length of the argument as a string.
func (a Arg) Len() int {
	switch a.Type {
	case TypeNull:
		return 0
	case TypeInt:
		return len(strconv.FormatInt(a.Int, 10))
	default:
		return len(a.Bytes)
	}
}

// AsInt converts the argument to an integer the way the host does for a
// numeric parameter: the longest leading decimal integer of a string,
// clamped to the int64 range, or 0 when there is none.
func (a Arg) AsInt() int64 {
	switch a.Type {
	case TypeInt:
		return a.Int
	case TypeText, TypeBlob:
		return parseIntPrefix(a.Bytes)
	default:
		return 0
	}
}

// AsBytes converts the argument to bytes for a string parameter. Integers
// are rendered in decimal.
func (a Arg) AsBytes() ByteString {
	switch a.Type {
	case TypeInt:
		return strconv.AppendInt(nil, a.Int, 10)
	case TypeText, TypeBlob:
		return a.Bytes
	default:
		return nil
	}
}

func (a Arg) coerce(t Type) Arg {
	if a.Type == TypeNull || a.Type == t {
		return a
	}
	if t == TypeInt {
		return Int(a.AsInt())
	}
	return Arg{Type: t, Bytes: a.AsBytes()}
}

func parseIntPrefix(b []byte) int64 {
	i := 0
	for i < len(b) && (b[i] == ' ' || b[i] == '\t' || b[i] == '\n' || b[i] == '\r') {
		i++
	}

	neg := false
	if i < len(b) && (b[i] == '+' || b[i] == '-') {
		neg = b[i] == '-'
		i++
	}

	var u uint64
	overflow := false
	for ; i < len(b) && b[i] >= '0' && b[i] <= '9'; i++ {
		d := uint64(b[i] - '0')
		if u > (math.MaxUint64-d)/10 {
			overflow = true
			continue
		}
		u = u*10 + d
	}

	switch {
	case neg && (overflow || u > uint64(math.MaxInt64)+1):
		return math.MinInt64
	case neg:
		return -int64(u - 1) - 1
	case overflow || u > math.MaxInt64:
		return math.MaxInt64
	default:
		return int64(u)
	}
}

// ArgSpec describes one argument at bind time. MaxLen is the largest byte
// length any row can supply for a string argument. Constant arguments also
// carry their Value.
type ArgSpec struct {
	Type   Type
	MaxLen int
	Const  bool
	Value  Arg
}

// ColumnSpec describes a per-row argument of type t whose values are at
// most maxLen bytes long.
func ColumnSpec(t Type, maxLen int) ArgSpec {
	return ArgSpec{Type: t, MaxLen: maxLen}
}

// ConstSpec describes a constant argument.
func ConstSpec(v Arg) ArgSpec {
	return ArgSpec{Type: v.Type, MaxLen: v.Len(), Const: true, Value: v}
}

// SpecsOf describes args as constants.
func SpecsOf(args []Arg) []ArgSpec {
	specs := make([]ArgSpec, len(args))
	for i, a := range args {
		specs[i] = ConstSpec(a)
	}
	return specs
}

// ByteLen returns the largest byte length the argument can have when read
// as a string.
func (s ArgSpec) ByteLen() int {
	switch s.Type {
	case TypeNull:
		return 0
	case TypeInt:
		if s.Const {
			return s.Value.Len()
		}
		return maxIntTextLen
	default:
		return s.MaxLen
	}
}

// IsNullConst reports whether the argument is the constant NULL.
func (s ArgSpec) IsNullConst() bool {
	return s.Const && s.Value.IsNull()
}

// Param declares one parameter of a Function.
type Param struct {
	Name string
	Type Type

	// Optional parameters may be omitted; they all follow the required ones.
	Optional bool

	// Const parameters must be bound to a constant.
	Const bool

	// Nullable parameters accept NULL without forcing a NULL result.
	Nullable bool
}

func (p Param) String() string {
	s := p.Name + " " + p.Type.String()
	if p.Const {
		s = "CONST " + s
	}
	if p.Optional {
		s = "[" + s + "]"
	}
	return s
}
