package lispy

var variadicOps = map[string]bool{
	"+": true, "-": true, "*": true, "/": true,
	"<": true, ">": true, "<=": true, ">=": true, "==": true,
}

// Desugar folds variadic operator forms into left-associative binary ones,
// bottom-up: (op a b c d) becomes (op (op (op a b) c) d). Everything else is
// rebuilt unchanged. The input tree is not modified.
func Desugar(node Value) Value {
	if node.Kind != ValList || len(node.List) == 0 {
		return node
	}
	head := Desugar(node.List[0])
	args := make([]Value, len(node.List)-1)
	for i, arg := range node.List[1:] {
		args[i] = Desugar(arg)
	}
	if head.Kind == ValSymbol && variadicOps[head.Str] && len(args) > 2 {
		acc := ListVal([]Value{head, args[0], args[1]})
		for _, arg := range args[2:] {
			acc = ListVal([]Value{head, acc, arg})
		}
		return acc
	}
	return ListVal(append([]Value{head}, args...))
}
