package lispy

import (
	"io"
	"os"
)

// NewGlobalEnv creates a top-level environment with the builtin library
// registered. print writes to out (os.Stdout when nil).
func NewGlobalEnv(out io.Writer) *Env {
	if out == nil {
		out = os.Stdout
	}
	env := NewEnv(nil)
	for name, fn := range Builtins(out) {
		env.bindings[name] = NativeVal(name, fn)
	}
	env.bindings["nil"] = NilVal()
	return env
}

// Run lexes, parses, desugars and evaluates src as one program against env.
// Top-level def and defn forms mutate env.
func Run(src string, env *Env) (Value, error) {
	tree, err := ParseString(src)
	if err != nil {
		return Value{}, err
	}
	return Eval(Desugar(tree), env)
}

// Interpreter pairs a persistent top-level environment with the writer its
// print builtin uses.
type Interpreter struct {
	Global *Env
	Out    io.Writer
}

func NewInterpreter(out io.Writer) *Interpreter {
	if out == nil {
		out = os.Stdout
	}
	return &Interpreter{Global: NewGlobalEnv(out), Out: out}
}

// Run evaluates src against the interpreter's global environment.
func (in *Interpreter) Run(src string) (Value, error) {
	return Run(src, in.Global)
}
