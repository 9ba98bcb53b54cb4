package lispy

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type ValueKind int

const (
	ValNil ValueKind = iota
	ValInt
	ValFloat
	ValBool
	ValString
	ValSymbol
	ValList
	ValFn
)

// Builtin is a function implemented in Go, called with eagerly evaluated arguments.
type Builtin func(args []Value) (Value, error)

// Function is either a native builtin or a closure over the environment
// active where it was created.
type Function struct {
	Name   string
	Native Builtin

	Params []string
	Body   Value
	Env    *Env
}

// IsNative reports whether f is implemented in Go.
func (f *Function) IsNative() bool { return f.Native != nil }

type Value struct {
	Kind  ValueKind
	Int   int64
	Float float64
	Bool  bool
	Str   string
	List  []Value
	Fn    *Function
}

func NilVal() Value             { return Value{Kind: ValNil} }
func IntVal(n int64) Value      { return Value{Kind: ValInt, Int: n} }
func FloatVal(f float64) Value  { return Value{Kind: ValFloat, Float: f} }
func BoolVal(b bool) Value      { return Value{Kind: ValBool, Bool: b} }
func StringVal(s string) Value  { return Value{Kind: ValString, Str: s} }
func SymbolVal(s string) Value  { return Value{Kind: ValSymbol, Str: s} }
func FnVal(fn *Function) Value  { return Value{Kind: ValFn, Fn: fn} }
func ListVal(elems []Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{Kind: ValList, List: elems}
}

// NativeVal wraps a Go function as a callable value.
func NativeVal(name string, fn Builtin) Value {
	return FnVal(&Function{Name: name, Native: fn})
}

// Truthy: only nil and false are falsy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case ValNil:
		return false
	case ValBool:
		return v.Bool
	default:
		return true
	}
}

// IsSymbol reports whether v is the symbol name.
func (v Value) IsSymbol(name string) bool {
	return v.Kind == ValSymbol && v.Str == name
}

// String renders the canonical textual form used by print, str and the REPL.
func (v Value) String() string {
	switch v.Kind {
	case ValNil:
		return "nil"
	case ValInt:
		return strconv.FormatInt(v.Int, 10)
	case ValFloat:
		return formatFloat(v.Float)
	case ValBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case ValString, ValSymbol:
		return v.Str
	case ValList:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	case ValFn:
		if v.Fn.IsNative() {
			return fmt.Sprintf("<builtin %s>", v.Fn.Name)
		}
		return fmt.Sprintf("<fn %s>", v.Fn.Name)
	default:
		return fmt.Sprintf("<unknown:%d>", v.Kind)
	}
}

// formatFloat always keeps a decimal point or exponent so floats stay
// distinguishable from integers: 2.0, 0.1, 1e+16, 1e-05.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

func (v Value) KindName() string {
	switch v.Kind {
	case ValNil:
		return "Nil"
	case ValInt:
		return "Int"
	case ValFloat:
		return "Float"
	case ValBool:
		return "Bool"
	case ValString:
		return "String"
	case ValSymbol:
		return "Symbol"
	case ValList:
		return "List"
	case ValFn:
		return "Fn"
	default:
		return "Unknown"
	}
}

func (v Value) isNumber() bool {
	return v.Kind == ValInt || v.Kind == ValFloat
}

func (v Value) asFloat() float64 {
	if v.Kind == ValInt {
		return float64(v.Int)
	}
	return v.Float
}

// ValuesEqual compares two Values for deep equality. Int and Float compare
// numerically; functions compare by identity.
func ValuesEqual(a, b Value) bool {
	if a.isNumber() && b.isNumber() {
		if a.Kind == ValInt && b.Kind == ValInt {
			return a.Int == b.Int
		}
		return a.asFloat() == b.asFloat()
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ValNil:
		return true
	case ValBool:
		return a.Bool == b.Bool
	case ValString, ValSymbol:
		return a.Str == b.Str
	case ValList:
		if len(a.List) != len(b.List) {
			return false
		}
		for i := range a.List {
			if !ValuesEqual(a.List[i], b.List[i]) {
				return false
			}
		}
		return true
	case ValFn:
		return a.Fn == b.Fn
	}
	return false
}

// ValueToGo converts a Value to a native Go value for JSON serialization.
func ValueToGo(v Value) (any, error) {
	switch v.Kind {
	case ValNil:
		return nil, nil
	case ValInt:
		return v.Int, nil
	case ValFloat:
		if math.IsInf(v.Float, 0) || math.IsNaN(v.Float) {
			return formatFloat(v.Float), nil
		}
		return v.Float, nil
	case ValBool:
		return v.Bool, nil
	case ValString:
		return v.Str, nil
	case ValSymbol:
		return "sym:" + v.Str, nil
	case ValList:
		arr := make([]any, len(v.List))
		for i, e := range v.List {
			j, err := ValueToGo(e)
			if err != nil {
				return nil, err
			}
			arr[i] = j
		}
		return arr, nil
	case ValFn:
		return v.String(), nil
	default:
		return nil, fmt.Errorf("unknown value kind")
	}
}
