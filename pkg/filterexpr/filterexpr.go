// Package filterexpr binds the CEL-shaped filter and order_by inputs of list
// requests onto typed query parameter structs. Only a small, whitelisted
// subset of CEL is accepted: identifiers restricted to the schema's fields,
// the operators ==, >=, <= and in, string/number/timestamp() literals, and
// conjunction via &&.
package filterexpr

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/google/cel-go/cel"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// ValueKind describes the kind of literal a filter field accepts.
type ValueKind string

const (
	KindString    ValueKind = "string"
	KindNumber    ValueKind = "number"
	KindTimestamp ValueKind = "timestamp"
)

// Op is a supported comparison operator.
type Op string

const (
	OpEQ  Op = "=="
	OpGTE Op = ">="
	OpLTE Op = "<="
	OpIN  Op = "in"
)

// Field declares how one filter identifier maps onto the params struct: the
// allowed operators and, per operator, the destination field name.
type Field struct {
	Kind ValueKind
	Ops  map[Op]string
}

// Schema whitelists the filterable fields and orderable keys of one resource.
type Schema struct {
	Fields map[string]Field

	// Ordering: whitelisted order keys mapped to SQL expressions, plus
	// the default applied when order_by is empty.
	OrderKeys    map[string]string
	DefaultOrder string
	DefaultDesc  bool
}

// Order is the parsed order_by result.
type Order struct {
	Expr string
	Desc bool
}

// Request is any DTO exposing raw filter and order_by inputs.
type Request interface {
	GetFilter() string
	GetOrderBy() string
}

// Bind parses the request's filter and order_by against the schema and
// populates the params struct. Unknown fields, disallowed operators and
// malformed literals are rejected.
func Bind[R Request, P any](req R, params *P, schema Schema) (Order, error) {
	if params == nil {
		return Order{}, errors.New("params must not be nil")
	}
	order, err := ParseOrder(req.GetOrderBy(), schema)
	if err != nil {
		return Order{}, fmt.Errorf("order_by: %w", err)
	}
	if err := BindFilter(req.GetFilter(), params, schema); err != nil {
		return Order{}, fmt.Errorf("filter: %w", err)
	}
	return order, nil
}

// BindFilter applies only the filter portion of a request.
func BindFilter(filter string, params any, schema Schema) error {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil
	}
	if len(schema.Fields) == 0 {
		return errors.New("schema has no filterable fields")
	}

	env, err := buildEnv(schema.Fields)
	if err != nil {
		return err
	}
	ast, issues := env.Parse(filter)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("invalid filter: %w", issues.Err())
	}
	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return fmt.Errorf("convert filter AST: %w", err)
	}

	dest := reflect.ValueOf(params)
	if dest.Kind() != reflect.Ptr || dest.IsNil() {
		return errors.New("params must be a non-nil pointer")
	}
	dest = dest.Elem()
	if dest.Kind() != reflect.Struct {
		return errors.New("params must point to a struct")
	}

	predicates, err := conjuncts(parsed.GetExpr())
	if err != nil {
		return err
	}
	for _, expr := range predicates {
		if err := applyPredicate(dest, expr, schema.Fields); err != nil {
			return err
		}
	}
	return nil
}

// ParseOrder validates order_by against the schema's whitelisted keys. The
// accepted shape is "key" or "key asc|desc".
func ParseOrder(raw string, schema Schema) (Order, error) {
	order := Order{Expr: schema.OrderKeys[schema.DefaultOrder], Desc: schema.DefaultDesc}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if order.Expr == "" {
			return Order{}, errors.New("schema has no default order key")
		}
		return order, nil
	}

	parts := strings.Fields(raw)
	if len(parts) > 2 {
		return Order{}, fmt.Errorf("invalid order_by %q", raw)
	}
	expr, ok := schema.OrderKeys[parts[0]]
	if !ok {
		return Order{}, fmt.Errorf("field %q cannot be used for ordering", parts[0])
	}
	order.Expr = expr
	order.Desc = false
	if len(parts) == 2 {
		switch strings.ToLower(parts[1]) {
		case "asc":
		case "desc":
			order.Desc = true
		default:
			return Order{}, fmt.Errorf("invalid direction %q", parts[1])
		}
	}
	return order, nil
}

func buildEnv(fields map[string]Field) (*cel.Env, error) {
	opts := make([]cel.EnvOption, 0, len(fields)+1)
	for name, field := range fields {
		celType, err := celTypeFor(field.Kind)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		opts = append(opts, cel.Variable(name, celType))
	}
	opts = append(opts, cel.CrossTypeNumericComparisons(true))
	return cel.NewEnv(opts...)
}

func celTypeFor(kind ValueKind) (*cel.Type, error) {
	switch kind {
	case KindString:
		return cel.StringType, nil
	case KindNumber:
		return cel.DoubleType, nil
	case KindTimestamp:
		return cel.TimestampType, nil
	default:
		return nil, fmt.Errorf("unsupported field kind %s", kind)
	}
}

// conjuncts flattens nested && chains into their atomic predicates. Any other
// logical operator is rejected.
func conjuncts(expr *exprpb.Expr) ([]*exprpb.Expr, error) {
	if expr == nil {
		return nil, errors.New("empty expression")
	}
	call := expr.GetCallExpr()
	if call == nil {
		return []*exprpb.Expr{expr}, nil
	}
	switch call.Function {
	case "_&&_":
		var result []*exprpb.Expr
		for _, arg := range call.Args {
			nested, err := conjuncts(arg)
			if err != nil {
				return nil, err
			}
			result = append(result, nested...)
		}
		return result, nil
	case "_||_", "_?_:_", "!_":
		return nil, fmt.Errorf("logical operator %q is not supported; only AND is allowed", call.Function)
	default:
		return []*exprpb.Expr{expr}, nil
	}
}

func applyPredicate(dest reflect.Value, expr *exprpb.Expr, fields map[string]Field) error {
	call := expr.GetCallExpr()
	if call == nil {
		return errors.New("expected a comparison expression")
	}

	var op Op
	switch call.Function {
	case "_==_":
		op = OpEQ
	case "_>=_":
		op = OpGTE
	case "_<=_":
		op = OpLTE
	case "_in_", "@in":
		op = OpIN
	default:
		return fmt.Errorf("operator %q is not supported", call.Function)
	}
	if call.Target != nil || len(call.Args) != 2 {
		return fmt.Errorf("operator %q expects two operands", op)
	}

	ident := call.Args[0].GetIdentExpr()
	if ident == nil {
		return errors.New("left-hand side must be a field identifier")
	}
	name := ident.GetName()
	field, ok := fields[name]
	if !ok {
		return fmt.Errorf("field %q is not allowed", name)
	}
	target, ok := field.Ops[op]
	if !ok {
		return fmt.Errorf("operator %q is not allowed for field %q", op, name)
	}

	value, err := literal(call.Args[1])
	if err != nil {
		return fmt.Errorf("field %q: %w", name, err)
	}
	if err := checkLiteral(field.Kind, op, value); err != nil {
		return fmt.Errorf("field %q: %w", name, err)
	}

	fv := dest.FieldByName(target)
	if !fv.IsValid() {
		return fmt.Errorf("params struct %s has no field named %q", dest.Type(), target)
	}
	if !fv.CanSet() {
		return fmt.Errorf("cannot set field %q on params struct", target)
	}
	return assign(fv, value)
}

func literal(expr *exprpb.Expr) (any, error) {
	if constant := expr.GetConstExpr(); constant != nil {
		switch constant.ConstantKind.(type) {
		case *exprpb.Constant_StringValue:
			return constant.GetStringValue(), nil
		case *exprpb.Constant_Int64Value:
			return float64(constant.GetInt64Value()), nil
		case *exprpb.Constant_Uint64Value:
			return float64(constant.GetUint64Value()), nil
		case *exprpb.Constant_DoubleValue:
			return constant.GetDoubleValue(), nil
		default:
			return nil, fmt.Errorf("literal type %T is not supported", constant.ConstantKind)
		}
	}

	if list := expr.GetListExpr(); list != nil {
		elements := list.GetElements()
		if len(elements) == 0 {
			return nil, errors.New("list literal must not be empty")
		}
		values := make([]string, len(elements))
		for i, elem := range elements {
			value, err := literal(elem)
			if err != nil {
				return nil, fmt.Errorf("list element %d: %w", i, err)
			}
			str, ok := value.(string)
			if !ok {
				return nil, errors.New("list literal elements must be strings")
			}
			values[i] = str
		}
		return values, nil
	}

	if call := expr.GetCallExpr(); call != nil && call.Function == "timestamp" {
		if call.Target != nil || len(call.Args) != 1 {
			return nil, errors.New("timestamp() expects a single string argument")
		}
		arg := call.Args[0].GetConstExpr()
		if arg == nil || arg.GetStringValue() == "" {
			return nil, errors.New("timestamp() argument must be a string literal")
		}
		ts, err := time.Parse(time.RFC3339, arg.GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("timestamp literal %q is not RFC3339", arg.GetStringValue())
		}
		return ts, nil
	}

	return nil, errors.New("right-hand side must be a literal, list literal, or timestamp() call")
}

func checkLiteral(kind ValueKind, op Op, value any) error {
	if op == OpIN {
		if _, ok := value.([]string); !ok {
			return errors.New("in operator requires a list of string literals")
		}
		return nil
	}
	switch kind {
	case KindString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("expected %s literal", kind)
		}
	case KindNumber:
		if _, ok := value.(float64); !ok {
			return fmt.Errorf("expected %s literal", kind)
		}
	case KindTimestamp:
		if _, ok := value.(time.Time); !ok {
			return fmt.Errorf("expected %s literal", kind)
		}
	default:
		return fmt.Errorf("unsupported field kind %s", kind)
	}
	return nil
}

var timeType = reflect.TypeOf(time.Time{})

func assign(field reflect.Value, value any) error {
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		return assign(field.Elem(), value)
	}

	switch v := value.(type) {
	case string:
		if field.Kind() != reflect.String {
			return fmt.Errorf("expected string destination, got %s", field.Kind())
		}
		field.SetString(v)
	case []string:
		if field.Kind() != reflect.Slice || field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("expected []string destination, got %s", field.Type())
		}
		clone := make([]string, len(v))
		copy(clone, v)
		field.Set(reflect.ValueOf(clone).Convert(field.Type()))
	case float64:
		return assignNumeric(field, v)
	case time.Time:
		if field.Type() != timeType {
			return fmt.Errorf("expected time.Time destination, got %s", field.Type())
		}
		field.Set(reflect.ValueOf(v))
	default:
		return fmt.Errorf("unsupported literal type %T", value)
	}
	return nil
}

func assignNumeric(field reflect.Value, value float64) error {
	switch field.Kind() {
	case reflect.Float32, reflect.Float64:
		field.SetFloat(value)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if math.Trunc(value) != value {
			return fmt.Errorf("cannot assign non-integer value %v to integer field", value)
		}
		if field.OverflowInt(int64(value)) {
			return fmt.Errorf("value %v overflows integer field", value)
		}
		field.SetInt(int64(value))
		return nil
	default:
		return fmt.Errorf("numeric assignment requires an integer or float field, got %s", field.Kind())
	}
}
