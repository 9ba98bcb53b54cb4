package lispy

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// Builtins returns the native library. print writes to out.
func Builtins(out io.Writer) map[string]Builtin {
	return map[string]Builtin{
		"print": func(args []Value) (Value, error) { return builtinPrint(out, args) },
		"str":   builtinStr,
		"list":  builtinList,
		"nth":   builtinNth,
		"head":  builtinHead,
		"tail":  builtinTail,
		// Arithmetic
		"+": builtinAdd,
		"-": builtinSub,
		"*": builtinMul,
		"/": builtinDiv,
		// Comparison
		"<":  builtinLt,
		">":  builtinGt,
		"<=": builtinLe,
		">=": builtinGe,
		"==": builtinEq,
	}
}

func builtinPrint(out io.Writer, args []Value) (Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	if _, err := fmt.Fprintln(out, strings.Join(parts, " ")); err != nil {
		return Value{}, fmt.Errorf("write output: %w", err)
	}
	return NilVal(), nil
}

func builtinStr(args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, semanticf("str: expected 1 arg, got %d", len(args))
	}
	return StringVal(args[0].String()), nil
}

func builtinList(args []Value) (Value, error) {
	elems := make([]Value, len(args))
	copy(elems, args)
	return ListVal(elems), nil
}

func builtinNth(args []Value) (Value, error) {
	if len(args) != 2 {
		return Value{}, semanticf("nth: expected 2 args (list index), got %d", len(args))
	}
	if args[0].Kind != ValList {
		return Value{}, semanticf("nth: first arg must be List, got %s", args[0].KindName())
	}
	if args[1].Kind != ValInt {
		return Value{}, semanticf("nth: index must be Int, got %s", args[1].KindName())
	}
	elems := args[0].List
	idx := args[1].Int
	if idx < 0 || idx >= int64(len(elems)) {
		return Value{}, semanticf("nth: index %d out of range for list of length %d", idx, len(elems))
	}
	return elems[idx], nil
}

func builtinHead(args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, semanticf("head: expected 1 arg, got %d", len(args))
	}
	if args[0].Kind != ValList {
		return Value{}, semanticf("head: expected List, got %s", args[0].KindName())
	}
	elems := args[0].List
	if len(elems) == 0 {
		return NilVal(), nil
	}
	return elems[0], nil
}

func builtinTail(args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, semanticf("tail: expected 1 arg, got %d", len(args))
	}
	if args[0].Kind != ValList {
		return Value{}, semanticf("tail: expected List, got %s", args[0].KindName())
	}
	elems := args[0].List
	if len(elems) <= 1 {
		return ListVal(nil), nil
	}
	rest := make([]Value, len(elems)-1)
	copy(rest, elems[1:])
	return ListVal(rest), nil
}

// --- Arithmetic ---

// numericArgs extracts two numeric args, promoting to float if mixed.
func numericArgs(name string, args []Value) (int64, int64, float64, float64, bool, error) {
	if len(args) != 2 {
		return 0, 0, 0, 0, false, semanticf("%s: expected 2 args, got %d", name, len(args))
	}
	a, b := args[0], args[1]
	if !a.isNumber() {
		return 0, 0, 0, 0, false, semanticf("%s: expected number, got %s", name, a.KindName())
	}
	if !b.isNumber() {
		return 0, 0, 0, 0, false, semanticf("%s: expected number, got %s", name, b.KindName())
	}
	if a.Kind == ValInt && b.Kind == ValInt {
		return a.Int, b.Int, 0, 0, false, nil
	}
	return 0, 0, a.asFloat(), b.asFloat(), true, nil
}

func builtinAdd(args []Value) (Value, error) {
	ai, bi, af, bf, isFloat, err := numericArgs("+", args)
	if err != nil {
		return Value{}, err
	}
	if isFloat {
		return FloatVal(af + bf), nil
	}
	sum := ai + bi
	if (sum > ai) != (bi > 0) {
		return Value{}, semanticf("+: integer overflow")
	}
	return IntVal(sum), nil
}

func builtinSub(args []Value) (Value, error) {
	ai, bi, af, bf, isFloat, err := numericArgs("-", args)
	if err != nil {
		return Value{}, err
	}
	if isFloat {
		return FloatVal(af - bf), nil
	}
	diff := ai - bi
	if (diff < ai) != (bi > 0) {
		return Value{}, semanticf("-: integer overflow")
	}
	return IntVal(diff), nil
}

func builtinMul(args []Value) (Value, error) {
	ai, bi, af, bf, isFloat, err := numericArgs("*", args)
	if err != nil {
		return Value{}, err
	}
	if isFloat {
		return FloatVal(af * bf), nil
	}
	if ai != 0 && bi != 0 {
		prod := ai * bi
		if prod/bi != ai || (ai == -1 && bi == math.MinInt64) || (bi == -1 && ai == math.MinInt64) {
			return Value{}, semanticf("*: integer overflow")
		}
		return IntVal(prod), nil
	}
	return IntVal(0), nil
}

// builtinDiv is true division: the result is always a Float.
func builtinDiv(args []Value) (Value, error) {
	ai, bi, af, bf, isFloat, err := numericArgs("/", args)
	if err != nil {
		return Value{}, err
	}
	if !isFloat {
		af, bf = float64(ai), float64(bi)
	}
	if bf == 0 {
		return Value{}, semanticf("/: division by zero")
	}
	return FloatVal(af / bf), nil
}

// --- Comparison ---

// compareTwo orders two numbers (across Int and Float) or two strings.
func compareTwo(name string, args []Value) (int, error) {
	if len(args) != 2 {
		return 0, semanticf("%s: expected 2 args, got %d", name, len(args))
	}
	a, b := args[0], args[1]
	switch {
	case a.isNumber() && b.isNumber():
		if a.Kind == ValInt && b.Kind == ValInt {
			return cmp3(a.Int < b.Int, a.Int > b.Int), nil
		}
		fa, fb := a.asFloat(), b.asFloat()
		return cmp3(fa < fb, fa > fb), nil
	case a.Kind == ValString && b.Kind == ValString:
		return strings.Compare(a.Str, b.Str), nil
	default:
		return 0, semanticf("%s: cannot compare %s and %s", name, a.KindName(), b.KindName())
	}
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	default:
		return 0
	}
}

func builtinLt(args []Value) (Value, error) {
	c, err := compareTwo("<", args)
	if err != nil {
		return Value{}, err
	}
	return BoolVal(c < 0), nil
}

func builtinGt(args []Value) (Value, error) {
	c, err := compareTwo(">", args)
	if err != nil {
		return Value{}, err
	}
	return BoolVal(c > 0), nil
}

func builtinLe(args []Value) (Value, error) {
	c, err := compareTwo("<=", args)
	if err != nil {
		return Value{}, err
	}
	return BoolVal(c <= 0), nil
}

func builtinGe(args []Value) (Value, error) {
	c, err := compareTwo(">=", args)
	if err != nil {
		return Value{}, err
	}
	return BoolVal(c >= 0), nil
}

func builtinEq(args []Value) (Value, error) {
	if len(args) != 2 {
		return Value{}, semanticf("==: expected 2 args, got %d", len(args))
	}
	return BoolVal(ValuesEqual(args[0], args[1])), nil
}
