package filter

import (
	"fmt"
	"strings"

	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

type resolver func(name string) (any, bool)

func evaluate(e *expr.Expr, resolve resolver) (bool, error) {
	call, ok := e.ExprKind.(*expr.Expr_CallExpr)
	if !ok {
		return false, fmt.Errorf("unsupported expression type: %T", e.ExprKind)
	}
	op, err := operator(call.CallExpr.Function)
	if err != nil {
		return false, err
	}
	args := call.CallExpr.Args
	if len(args) != 2 {
		return false, fmt.Errorf("%s requires 2 arguments", op)
	}
	switch op {
	case "AND":
		left, err := evaluate(args[0], resolve)
		if err != nil || !left {
			return false, err
		}
		return evaluate(args[1], resolve)
	case "OR":
		left, err := evaluate(args[0], resolve)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}
		return evaluate(args[1], resolve)
	}

	name, err := extractFieldName(args[0])
	if err != nil {
		return false, err
	}
	left, ok := resolve(name)
	if !ok {
		return false, fmt.Errorf("unknown field: %s", name)
	}
	right, err := extractValue(args[1])
	if err != nil {
		return false, err
	}
	cmp, err := compare(left, right)
	if err != nil {
		return false, err
	}
	switch op {
	case "=":
		return cmp == 0, nil
	case "!=":
		return cmp != 0, nil
	case "<":
		return cmp < 0, nil
	case "<=":
		return cmp <= 0, nil
	case ">":
		return cmp > 0, nil
	default:
		return cmp >= 0, nil
	}
}

func compare(left, right any) (int, error) {
	switch l := left.(type) {
	case string:
		r, ok := right.(string)
		if !ok {
			return 0, fmt.Errorf("type mismatch: string vs %T", right)
		}
		return strings.Compare(l, r), nil
	case int64:
		r, ok := right.(int64)
		if !ok {
			return 0, fmt.Errorf("type mismatch: int vs %T", right)
		}
		switch {
		case l < r:
			return -1, nil
		case l > r:
			return 1, nil
		default:
			return 0, nil
		}
	default:
		return 0, fmt.Errorf("unsupported value type: %T", left)
	}
}
