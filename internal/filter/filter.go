// Package filter applies a user-supplied boolean expression to table rows.
package filter

import (
	"fmt"
	"strings"

	"gosieve/domain/table"
	"gosieve/internal/errors"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Filter is a compiled row predicate such as `depth > 10 && temp < 20`.
// Column names that are not identifiers are reachable as $env["name"].
type Filter struct {
	source  string
	program *vm.Program
}

// Compile parses expression. An empty expression yields a nil Filter,
// which keeps every row.
func Compile(expression string) (*Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, nil
	}

	program, err := expr.Compile(expression, expr.AsBool())
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("invalid filter %q: %w", expression, err))
	}
	return &Filter{source: expression, program: program}, nil
}

// String returns the source expression
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.source
}

// Apply returns the rows of t for which the expression is true, in order
func (f *Filter) Apply(t *table.Table) (*table.Table, error) {
	if f == nil {
		return t, nil
	}

	keep := make([]int, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		ok, err := f.Match(rowEnv(t, i))
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i)
		}
		if ok {
			keep = append(keep, i)
		}
	}
	return t.SelectRows(keep), nil
}

// Match evaluates the expression against one row environment
func (f *Filter) Match(env map[string]interface{}) (bool, error) {
	out, err := expr.Run(f.program, env)
	if err != nil {
		return false, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("filter %q failed: %w", f.source, err))
	}
	matched, ok := out.(bool)
	if !ok {
		return false, errors.InvalidInput(fmt.Sprintf("filter %q returned %T, expected bool", f.source, out))
	}
	return matched, nil
}

func rowEnv(t *table.Table, i int) map[string]interface{} {
	columns := t.Columns()
	env := make(map[string]interface{}, len(columns))
	for _, col := range columns {
		env[col.Name] = col.Cells[i].Value()
	}
	return env
}
