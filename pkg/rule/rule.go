package rule

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
)

// Rule decides whether a recorded answer triggers a follow-up question or
// reveals a conditional step. Implementations must be pure: the same answer
// always yields the same result.
type Rule interface {
	Match(answer string) bool
}

// Func adapts a plain function into a Rule.
type Func func(answer string) bool

// Match delegates to the underlying function.
func (fn Func) Match(answer string) bool {
	return fn(answer)
}

// Equals matches when the trimmed answer equals any of values, ignoring case.
func Equals(values ...string) Rule {
	set := normalizeSet(values)
	return Func(func(answer string) bool {
		_, ok := set[normalize(answer)]
		return ok
	})
}

// NotEquals matches a present answer that equals none of values.
func NotEquals(values ...string) Rule {
	set := normalizeSet(values)
	return Func(func(answer string) bool {
		key := normalize(answer)
		if key == "" {
			return false
		}
		_, ok := set[key]
		return !ok
	})
}

// Present matches any non-blank answer.
func Present() Rule {
	return Func(func(answer string) bool {
		return strings.TrimSpace(answer) != ""
	})
}

var programCache sync.Map

// Expr compiles a CEL expression evaluated against the string variable
// `answer`. The expression must produce a bool. Evaluation errors count as a
// non-match.
func Expr(expr string) (Rule, error) {
	program, err := compile(expr)
	if err != nil {
		return nil, err
	}
	return Func(func(answer string) bool {
		out, _, err := program.Eval(map[string]any{"answer": answer})
		if err != nil {
			return false
		}
		matched, ok := out.Value().(bool)
		return ok && matched
	}), nil
}

// MustExpr is like Expr but panics on compile errors. Useful for tests and
// package-level defaults.
func MustExpr(expr string) Rule {
	r, err := Expr(expr)
	if err != nil {
		panic(err)
	}
	return r
}

func compile(expr string) (cel.Program, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, errors.New("rule: expression required")
	}
	if cached, ok := programCache.Load(expr); ok {
		return cached.(cel.Program), nil
	}
	env, err := cel.NewEnv(cel.Variable("answer", cel.StringType))
	if err != nil {
		return nil, fmt.Errorf("rule: cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("rule: compile %q: %w", expr, issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("rule: expression %q must evaluate to bool", expr)
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("rule: program %q: %w", expr, err)
	}
	programCache.Store(expr, program)
	return program, nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func normalizeSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if key := normalize(v); key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}
