// Package expr compiles CEL expressions into cell filters. The raw cell value
// is bound to the variable "_".
package expr

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"

	"github.com/bjaus/tabula"
)

// Evaluator compiles expressions against a shared environment.
type Evaluator struct {
	env *cel.Env
	log logr.Logger
}

// NewEvaluator creates an evaluator with the string, encoder, list and math
// extensions. Extra options extend the environment.
func NewEvaluator(log logr.Logger, opts ...cel.EnvOption) (*Evaluator, error) {
	all := make([]cel.EnvOption, 0, 5+len(opts))
	all = append(all,
		cel.Variable("_", cel.DynType),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
	all = append(all, opts...)
	env, err := cel.NewEnv(all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env, log: log}, nil
}

// Compile parses and checks expr.
func (e *Evaluator) Compile(expr string) (cel.Program, error) {
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return prg, nil
}

// Evaluate compiles and runs expr against v.
func (e *Evaluator) Evaluate(expr string, v any) (any, error) {
	prg, err := e.Compile(expr)
	if err != nil {
		return nil, err
	}
	return eval(prg, v)
}

// Filter compiles expr into a direct filter. A value the expression cannot
// evaluate renders as an empty cell.
func (e *Evaluator) Filter(expr string) (tabula.Filter, error) {
	prg, err := e.Compile(expr)
	if err != nil {
		return tabula.Filter{}, err
	}
	return tabula.Direct(func(v any) any {
		out, err := eval(prg, v)
		if err != nil {
			e.log.V(1).Info("filter evaluation failed", "expr", expr, "error", err.Error())
			return nil
		}
		return out
	}), nil
}

func eval(prg cel.Program, v any) (any, error) {
	result, _, err := prg.Eval(map[string]any{"_": v})
	if err != nil {
		return nil, fmt.Errorf("eval: %w", err)
	}
	return ToGo(result), nil
}

// ToGo converts a CEL value to plain Go values, recursing into lists and maps.
func ToGo(val ref.Val) any {
	if val == nil {
		return nil
	}
	switch v := val.(type) {
	case types.Null:
		return nil
	case types.Bool:
		return bool(v)
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.String:
		return string(v)
	case types.Bytes:
		return []byte(v)
	}

	inner := val.Value()
	switch in := inner.(type) {
	case []ref.Val:
		out := make([]any, len(in))
		for i, elem := range in {
			out[i] = ToGo(elem)
		}
		return out
	case []any:
		out := make([]any, len(in))
		for i, elem := range in {
			out[i] = native(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(in))
		for k, elem := range in {
			out[k] = native(elem)
		}
		return out
	case map[ref.Val]ref.Val:
		out := make(map[string]any, len(in))
		for k, elem := range in {
			out[fmt.Sprint(ToGo(k))] = ToGo(elem)
		}
		return out
	}
	return inner
}

func native(v any) any {
	if rv, ok := v.(ref.Val); ok {
		return ToGo(rv)
	}
	return v
}
