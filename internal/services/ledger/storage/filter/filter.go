// Package filter parses AIP-160 filter expressions over journal events and
// renders them either as SQL conditions or as in-memory predicates.
package filter

import (
	"fmt"
	"strings"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/event"
)

// field describes one filterable event attribute.
type field struct {
	column  string
	typ     *expr.Type
	resolve func(event.Event) any
}

var fields = map[string]field{
	"type":        {column: "event_type", typ: filtering.TypeString, resolve: func(e event.Event) any { return string(e.Type) }},
	"domain":      {column: "domain", typ: filtering.TypeString, resolve: func(e event.Event) any { return e.Type.Domain() }},
	"actor_id":    {column: "actor_id", typ: filtering.TypeString, resolve: func(e event.Event) any { return e.ActorID }},
	"request_id":  {column: "request_id", typ: filtering.TypeString, resolve: func(e event.Event) any { return e.RequestID }},
	"entity_type": {column: "entity_type", typ: filtering.TypeString, resolve: func(e event.Event) any { return e.EntityType }},
	"entity_id":   {column: "entity_id", typ: filtering.TypeString, resolve: func(e event.Event) any { return e.EntityID }},
	"stream_id":   {column: "stream_id", typ: filtering.TypeString, resolve: func(e event.Event) any { return e.StreamID }},
	"day":         {column: "day", typ: filtering.TypeInt, resolve: func(e event.Event) any { return int64(e.Day) }},
	"seq":         {column: "seq", typ: filtering.TypeInt, resolve: func(e event.Event) any { return int64(e.Seq) }},
}

// Filter is a parsed event filter. The zero Filter matches everything.
type Filter struct {
	expr *expr.Expr
	text string
}

// SQLCondition represents a SQL WHERE clause fragment with parameters.
type SQLCondition struct {
	// Clause is the SQL WHERE clause (e.g., "event_type = ?").
	Clause string
	// Params are the positional parameters for the clause.
	Params []any
}

// Declarations returns the identifier declarations for event filters.
func Declarations() (*filtering.Declarations, error) {
	opts := []filtering.DeclarationOption{filtering.DeclareStandardFunctions()}
	for name, f := range fields {
		opts = append(opts, filtering.DeclareIdent(name, f.typ))
	}
	return filtering.NewDeclarations(opts...)
}

// Parse parses an AIP-160 filter expression. An empty string yields the
// match-all filter.
func Parse(filterStr string) (Filter, error) {
	if strings.TrimSpace(filterStr) == "" {
		return Filter{}, nil
	}
	decls, err := Declarations()
	if err != nil {
		return Filter{}, fmt.Errorf("create declarations: %w", err)
	}
	parsed, err := filtering.ParseFilterString(filterStr, decls)
	if err != nil {
		return Filter{}, fmt.Errorf("parse filter: %w", err)
	}
	return Filter{expr: parsed.CheckedExpr.GetExpr(), text: strings.TrimSpace(filterStr)}, nil
}

// String returns the filter source text.
func (f Filter) String() string {
	return f.text
}

// Empty reports whether the filter matches everything.
func (f Filter) Empty() bool {
	return f.expr == nil
}

// SQL renders the filter as a WHERE fragment over the events table.
func (f Filter) SQL() (SQLCondition, error) {
	if f.expr == nil {
		return SQLCondition{}, nil
	}
	return translateExpr(f.expr)
}

// Match evaluates the filter against evt.
func (f Filter) Match(evt event.Event) (bool, error) {
	if f.expr == nil {
		return true, nil
	}
	return evaluate(f.expr, func(name string) (any, bool) {
		fd, ok := fields[name]
		if !ok {
			return nil, false
		}
		return fd.resolve(evt), true
	})
}

func translateExpr(e *expr.Expr) (SQLCondition, error) {
	if e == nil {
		return SQLCondition{}, nil
	}
	call, ok := e.ExprKind.(*expr.Expr_CallExpr)
	if !ok {
		return SQLCondition{}, fmt.Errorf("unsupported expression type: %T", e.ExprKind)
	}
	op, err := operator(call.CallExpr.Function)
	if err != nil {
		return SQLCondition{}, err
	}
	args := call.CallExpr.Args
	if len(args) != 2 {
		return SQLCondition{}, fmt.Errorf("%s requires 2 arguments", op)
	}
	if op == "AND" || op == "OR" {
		left, err := translateExpr(args[0])
		if err != nil {
			return SQLCondition{}, err
		}
		right, err := translateExpr(args[1])
		if err != nil {
			return SQLCondition{}, err
		}
		return SQLCondition{
			Clause: fmt.Sprintf("(%s %s %s)", left.Clause, op, right.Clause),
			Params: append(left.Params, right.Params...),
		}, nil
	}

	name, err := extractFieldName(args[0])
	if err != nil {
		return SQLCondition{}, err
	}
	fd, ok := fields[name]
	if !ok {
		return SQLCondition{}, fmt.Errorf("unknown field: %s", name)
	}
	value, err := extractValue(args[1])
	if err != nil {
		return SQLCondition{}, err
	}
	if name == "domain" {
		// Domain is the event type prefix before the first dot.
		if op != "=" && op != "!=" {
			return SQLCondition{}, fmt.Errorf("domain supports only = and !=")
		}
		s, _ := value.(string)
		clause := "event_type LIKE ?"
		if op == "!=" {
			clause = "event_type NOT LIKE ?"
		}
		return SQLCondition{Clause: clause, Params: []any{s + ".%"}}, nil
	}
	return SQLCondition{
		Clause: fmt.Sprintf("%s %s ?", fd.column, op),
		Params: []any{value},
	}, nil
}

func operator(function string) (string, error) {
	switch function {
	case "_&&_", "AND":
		return "AND", nil
	case "_||_", "OR":
		return "OR", nil
	case "_==_", "=":
		return "=", nil
	case "_!=_", "!=":
		return "!=", nil
	case "_<_", "<":
		return "<", nil
	case "_<=_", "<=":
		return "<=", nil
	case "_>_", ">":
		return ">", nil
	case "_>=_", ">=":
		return ">=", nil
	default:
		return "", fmt.Errorf("unsupported function: %s", function)
	}
}

func extractFieldName(e *expr.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil expression")
	}
	ident, ok := e.ExprKind.(*expr.Expr_IdentExpr)
	if !ok {
		return "", fmt.Errorf("expected identifier, got %T", e.ExprKind)
	}
	return ident.IdentExpr.Name, nil
}

func extractValue(e *expr.Expr) (any, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}
	constant, ok := e.ExprKind.(*expr.Expr_ConstExpr)
	if !ok {
		return nil, fmt.Errorf("expected constant, got %T", e.ExprKind)
	}
	switch kind := constant.ConstExpr.ConstantKind.(type) {
	case *expr.Constant_StringValue:
		return kind.StringValue, nil
	case *expr.Constant_Int64Value:
		return kind.Int64Value, nil
	case *expr.Constant_Uint64Value:
		return int64(kind.Uint64Value), nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", kind)
	}
}
