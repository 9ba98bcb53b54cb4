package lispy

import "errors"

// specialForms maps each special-form head to its evaluator. Populated in init
// to break the initialization cycle through Eval.
var specialForms map[string]func(node Value, env *Env) (Value, error)

func init() {
	specialForms = map[string]func(Value, *Env) (Value, error){
		"def":    evalDef,
		"let":    evalLet,
		"defn":   evalDefn,
		"lambda": evalLambda,
		"do":     evalDo,
		"if":     evalIf,
		"set!":   evalSet,
	}
}

// Eval evaluates a desugared tree in env.
func Eval(node Value, env *Env) (Value, error) {
	switch node.Kind {
	case ValSymbol:
		return env.Lookup(node.Str)
	case ValList:
		return evalList(node, env)
	default:
		return node, nil
	}
}

func evalList(node Value, env *Env) (Value, error) {
	if len(node.List) == 0 {
		return ListVal(nil), nil
	}

	head := node.List[0]
	if head.Kind == ValSymbol {
		if form, ok := specialForms[head.Str]; ok {
			return form(node, env)
		}
	}

	fnVal, err := Eval(head, env)
	if err != nil {
		return Value{}, err
	}
	args := make([]Value, len(node.List)-1)
	for i, argNode := range node.List[1:] {
		val, err := Eval(argNode, env)
		if err != nil {
			return Value{}, err
		}
		args[i] = val
	}
	return Apply(fnVal, args)
}

// Apply calls a function value with already evaluated arguments.
func Apply(fnVal Value, args []Value) (Value, error) {
	if fnVal.Kind != ValFn {
		return Value{}, semanticf("cannot call %s value %s: not a function", fnVal.KindName(), fnVal.String())
	}
	fn := fnVal.Fn
	if fn.IsNative() {
		val, err := fn.Native(args)
		if err != nil {
			return Value{}, nativeError(fn.Name, err)
		}
		return val, nil
	}

	if len(args) != len(fn.Params) {
		return Value{}, semanticf("function '%s' expected %d args, got %d", fn.Name, len(fn.Params), len(args))
	}
	callEnv := NewEnv(fn.Env)
	for i, param := range fn.Params {
		if err := callEnv.Define(param, args[i]); err != nil {
			return Value{}, err
		}
	}
	return Eval(fn.Body, callEnv)
}

// nativeError passes typed errors through and turns anything else into a
// SemanticError naming the builtin.
func nativeError(name string, err error) error {
	var se *SemanticError
	var le *LexError
	var pe *SyntaxError
	if errors.As(err, &se) || errors.As(err, &le) || errors.As(err, &pe) {
		return err
	}
	return semanticf("%s: %v", name, err)
}

// evalDef: (def name expr)
func evalDef(node Value, env *Env) (Value, error) {
	if len(node.List) != 3 {
		return Value{}, semanticf("def: expected (def name expr), got %d operands", len(node.List)-1)
	}
	name := node.List[1]
	if name.Kind != ValSymbol {
		return Value{}, semanticf("def: name must be a symbol, got %s", name.KindName())
	}
	if env.Has(name.Str) {
		return Value{}, semanticf("symbol '%s' already defined in this scope", name.Str)
	}
	val, err := Eval(node.List[2], env)
	if err != nil {
		return Value{}, err
	}
	if err := env.Define(name.Str, val); err != nil {
		return Value{}, err
	}
	return name, nil
}

// evalLet: (let ((a 1) (b a)) body...) or (let (a 1 b a) body...).
// Bindings are evaluated in the new scope, so later ones see earlier ones.
func evalLet(node Value, env *Env) (Value, error) {
	if len(node.List) < 3 {
		return Value{}, semanticf("let: expected bindings and body")
	}
	pairs, err := letPairs(node.List[1])
	if err != nil {
		return Value{}, err
	}
	letEnv := NewEnv(env)
	for _, pair := range pairs {
		name := pair[0]
		if name.Kind != ValSymbol {
			return Value{}, semanticf("let: binding name must be a symbol, got %s", name.KindName())
		}
		if letEnv.Has(name.Str) {
			return Value{}, semanticf("symbol '%s' already defined in this let scope", name.Str)
		}
		val, err := Eval(pair[1], letEnv)
		if err != nil {
			return Value{}, err
		}
		if err := letEnv.Define(name.Str, val); err != nil {
			return Value{}, err
		}
	}
	return Eval(bodyOf(node.List[2:]), letEnv)
}

// letPairs accepts a list of 2-element lists, or a flat even-length list.
func letPairs(bindings Value) ([][2]Value, error) {
	if bindings.Kind != ValList {
		return nil, semanticf("let: bindings must be a list, got %s", bindings.KindName())
	}
	elems := bindings.List
	if len(elems) > 0 && allPairs(elems) {
		pairs := make([][2]Value, len(elems))
		for i, p := range elems {
			pairs[i] = [2]Value{p.List[0], p.List[1]}
		}
		return pairs, nil
	}
	if len(elems)%2 != 0 {
		return nil, semanticf("let: bindings malformed, expected ((name expr) ...) or (name expr ...)")
	}
	pairs := make([][2]Value, 0, len(elems)/2)
	for i := 0; i < len(elems); i += 2 {
		pairs = append(pairs, [2]Value{elems[i], elems[i+1]})
	}
	return pairs, nil
}

func allPairs(elems []Value) bool {
	for _, e := range elems {
		if e.Kind != ValList || len(e.List) != 2 {
			return false
		}
	}
	return true
}

// bodyOf wraps several body forms in (do ...).
func bodyOf(forms []Value) Value {
	if len(forms) == 1 {
		return forms[0]
	}
	return ListVal(append([]Value{SymbolVal("do")}, forms...))
}

// evalDefn: (defn name (params...) body...)
func evalDefn(node Value, env *Env) (Value, error) {
	if len(node.List) < 4 {
		return Value{}, semanticf("defn: expected (defn name (params...) body...)")
	}
	name := node.List[1]
	if name.Kind != ValSymbol {
		return Value{}, semanticf("defn: function name must be a symbol, got %s", name.KindName())
	}
	params, err := paramNames("defn", node.List[2])
	if err != nil {
		return Value{}, err
	}
	if env.Has(name.Str) {
		return Value{}, semanticf("symbol '%s' already defined in this scope", name.Str)
	}
	fn := &Function{
		Name:   name.Str,
		Params: params,
		Body:   bodyOf(node.List[3:]),
		Env:    env,
	}
	if err := env.Define(name.Str, FnVal(fn)); err != nil {
		return Value{}, err
	}
	return name, nil
}

// evalLambda: (lambda (params...) body...)
func evalLambda(node Value, env *Env) (Value, error) {
	if len(node.List) < 3 {
		return Value{}, semanticf("lambda: expected (lambda (params...) body...)")
	}
	params, err := paramNames("lambda", node.List[1])
	if err != nil {
		return Value{}, err
	}
	return FnVal(&Function{
		Name:   "<lambda>",
		Params: params,
		Body:   bodyOf(node.List[2:]),
		Env:    env,
	}), nil
}

func paramNames(form string, paramsNode Value) ([]string, error) {
	if paramsNode.Kind != ValList {
		return nil, semanticf("%s: params must be a list, got %s", form, paramsNode.KindName())
	}
	params := make([]string, len(paramsNode.List))
	seen := make(map[string]bool, len(paramsNode.List))
	for i, p := range paramsNode.List {
		if p.Kind != ValSymbol {
			return nil, semanticf("%s: param names must be symbols, got %s", form, p.KindName())
		}
		if seen[p.Str] {
			return nil, semanticf("%s: duplicate param '%s'", form, p.Str)
		}
		seen[p.Str] = true
		params[i] = p.Str
	}
	return params, nil
}

// evalDo: (do expr...) returns the last value, or nil when empty.
func evalDo(node Value, env *Env) (Value, error) {
	result := NilVal()
	for _, child := range node.List[1:] {
		val, err := Eval(child, env)
		if err != nil {
			return Value{}, err
		}
		result = val
	}
	return result, nil
}

// evalIf: (if cond then [else])
func evalIf(node Value, env *Env) (Value, error) {
	if len(node.List) != 3 && len(node.List) != 4 {
		return Value{}, semanticf("if: expected (if cond then [else]), got %d operands", len(node.List)-1)
	}
	cond, err := Eval(node.List[1], env)
	if err != nil {
		return Value{}, err
	}
	if cond.Truthy() {
		return Eval(node.List[2], env)
	}
	if len(node.List) == 4 {
		return Eval(node.List[3], env)
	}
	return NilVal(), nil
}

// evalSet: (set! name expr) rebinds the nearest existing name.
func evalSet(node Value, env *Env) (Value, error) {
	if len(node.List) != 3 {
		return Value{}, semanticf("set!: expected (set! name expr), got %d operands", len(node.List)-1)
	}
	name := node.List[1]
	if name.Kind != ValSymbol {
		return Value{}, semanticf("set!: name must be a symbol, got %s", name.KindName())
	}
	val, err := Eval(node.List[2], env)
	if err != nil {
		return Value{}, err
	}
	if err := env.Assign(name.Str, val); err != nil {
		return Value{}, err
	}
	return val, nil
}

// FormNames lists the special forms, for manuals and completion.
func FormNames() []string {
	return []string{"def", "let", "defn", "lambda", "do", "if", "set!"}
}
