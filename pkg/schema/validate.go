package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Declarations maps prop names to their types.
type Declarations map[string]Type

// ParseDeclarations builds Declarations from name/type-name pairs.
func ParseDeclarations(raw map[string]string) (Declarations, error) {
	out := make(Declarations, len(raw))
	for k, v := range raw {
		t, err := ParseType(v)
		if err != nil {
			return nil, fmt.Errorf("prop %q: %w", k, err)
		}
		out[k] = t
	}
	return out, nil
}

// ValidationError describes one prop that failed its declared type.
type ValidationError struct {
	Path   string
	Prop   string
	Reason string
	Value  any
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("prop %q: %s", e.Prop, e.Reason)
	}
	return fmt.Sprintf("%s: prop %q: %s", e.Path, e.Prop, e.Reason)
}

// AggregateError collects every ValidationError of a run.
type AggregateError struct {
	Errors []*ValidationError
}

func (e *AggregateError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		parts[i] = err.Error()
	}
	return fmt.Sprintf("%d invalid props: %s", len(e.Errors), strings.Join(parts, "; "))
}

func (e *AggregateError) Unwrap() []error {
	out := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		out[i] = err
	}
	return out
}

// Validate checks props against decls. Undeclared props and variable
// bindings are accepted; nil values are accepted as unset.
func (d Declarations) Validate(props map[string]any) error {
	return d.validate("", props)
}

func (d Declarations) validate(path string, props map[string]any) error {
	var errs []*ValidationError
	for _, name := range sortedNames(props) {
		t, ok := d[name]
		if !ok {
			continue
		}
		v := props[name]
		if v == nil || IsVariable(v) {
			continue
		}
		if err := t.Check(v); err != nil {
			errs = append(errs, &ValidationError{Path: path, Prop: name, Reason: err.Error(), Value: v})
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &AggregateError{Errors: errs}
}

// Resolver returns the declarations of a component, or false when the
// component is not known.
type Resolver func(componentName string) (Declarations, bool)

// ValidateTree walks root and validates every component known to resolve.
func ValidateTree(root *ComponentSchema, resolve Resolver) error {
	agg := &AggregateError{}
	var visit func(c *ComponentSchema, path string)
	visit = func(c *ComponentSchema, path string) {
		if c == nil {
			return
		}
		if c.ComponentName != "" {
			path = path + "/" + c.ComponentName
			if c.ID != "" {
				path += "#" + c.ID
			}
		}
		if decls, ok := resolve(c.ComponentName); ok {
			if err := decls.validate(path, c.Props); err != nil {
				agg.Errors = append(agg.Errors, err.(*AggregateError).Errors...)
			}
		}
		for _, child := range c.Children {
			visit(child, path)
		}
	}
	visit(root, "")
	if len(agg.Errors) == 0 {
		return nil
	}
	return agg
}

func sortedNames(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
