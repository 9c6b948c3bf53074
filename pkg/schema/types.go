package schema

import (
	"fmt"
	"math"
	"reflect"
	"strings"
)

// Type checks a single prop value.
type Type interface {
	Name() string
	Check(value any) error
}

type scalarType struct {
	name  string
	check func(any) bool
}

func (t scalarType) Name() string { return t.name }

func (t scalarType) Check(value any) error {
	if t.check(value) {
		return nil
	}
	return fmt.Errorf("expected %s, got %T", t.name, value)
}

var (
	StringType = scalarType{"string", func(v any) bool { _, ok := v.(string); return ok }}
	BoolType   = scalarType{"bool", func(v any) bool { _, ok := v.(bool); return ok }}
	NumberType = scalarType{"number", func(v any) bool { _, ok := toFloat(v); return ok }}
	IntType    = scalarType{"int", func(v any) bool {
		f, ok := toFloat(v)
		return ok && f == math.Trunc(f)
	}}
	ObjectType = scalarType{"object", func(v any) bool {
		rv := reflect.ValueOf(v)
		return rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String
	}}
	ArrayType = scalarType{"array", func(v any) bool {
		k := reflect.ValueOf(v).Kind()
		return k == reflect.Slice || k == reflect.Array
	}}
	AnyType = scalarType{"any", func(any) bool { return true }}
)

// SliceType checks every element of a list against Elem.
type SliceType struct {
	Elem Type
}

func (t SliceType) Name() string { return "[" + t.Elem.Name() + "]" }

func (t SliceType) Check(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected %s, got %T", t.Name(), value)
	}
	for i := 0; i < rv.Len(); i++ {
		if err := t.Elem.Check(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

// EnumType accepts one of a fixed set of strings.
type EnumType struct {
	Options []string
}

func (t EnumType) Name() string { return "enum(" + strings.Join(t.Options, "|") + ")" }

func (t EnumType) Check(value any) error {
	s, ok := value.(string)
	if ok {
		for _, o := range t.Options {
			if o == s {
				return nil
			}
		}
	}
	return fmt.Errorf("expected one of %v, got %v", t.Options, value)
}

// ParseType resolves a type name such as "string", "[int]" or "enum(a|b)".
func ParseType(name string) (Type, error) {
	name = strings.TrimSpace(name)
	switch name {
	case "string":
		return StringType, nil
	case "bool", "boolean":
		return BoolType, nil
	case "number", "float":
		return NumberType, nil
	case "int", "integer":
		return IntType, nil
	case "object", "map":
		return ObjectType, nil
	case "array", "list":
		return ArrayType, nil
	case "any", "":
		return AnyType, nil
	}
	if strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]") {
		elem, err := ParseType(name[1 : len(name)-1])
		if err != nil {
			return nil, err
		}
		return SliceType{Elem: elem}, nil
	}
	if strings.HasPrefix(name, "enum(") && strings.HasSuffix(name, ")") {
		opts := strings.Split(name[len("enum("):len(name)-1], "|")
		return EnumType{Options: opts}, nil
	}
	return nil, fmt.Errorf("unknown prop type %q", name)
}

// IsVariable reports whether v is a variable-binding envelope.
func IsVariable(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	t, _ := m["type"].(string)
	return t == "variable"
}

// IsJSBlock reports whether v is a JSBlock wrapper carrying a component.
func IsJSBlock(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	t, _ := m["type"].(string)
	return t == "JSBlock"
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
