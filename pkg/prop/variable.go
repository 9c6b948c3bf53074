package prop

import (
	"github.com/aretw0/pagecraft/pkg/hot"
)

const variableType = "variable"

// envelope is the decoded form of a variable binding.
type envelope struct {
	variable string
	inner    any
}

// parseEnvelope recognizes {type:"variable", variable, <innerKey>} in live or
// frozen form.
func parseEnvelope(v any, innerKey string) (envelope, bool) {
	m, ok := hot.AsMap(v)
	if !ok || m.String("type") != variableType {
		return envelope{}, false
	}
	return envelope{variable: m.String("variable"), inner: m.Get(innerKey)}, true
}

func wrapVariable(variable string, innerKey string, inner any) map[string]any {
	return map[string]any{
		"type":     variableType,
		"variable": variable,
		innerKey:   inner,
	}
}
