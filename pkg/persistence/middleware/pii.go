package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/pagecraft/pkg/ports"
	"github.com/aretw0/pagecraft/pkg/schema"
)

// Mask replaces every masked value.
const Mask = "***"

type piiMiddleware struct {
	next     ports.PageStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks, on save, the values of
// page params and component props whose keys match one of the patterns.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.PageStore) ports.PageStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, page *schema.PageData) error {
	// The caller keeps editing its own copy.
	cloned := page.Clone()

	maskProps := func(c *schema.ComponentSchema, _ int) bool {
		maskMap(c.Props, m.patterns)
		return true
	}
	maskMap(cloned.Params, m.patterns)
	maskMap(cloned.Props, m.patterns)
	for _, root := range cloned.ComponentsTree {
		root.Walk(maskProps)
	}
	cloned.Layout.Walk(maskProps)
	for _, c := range cloned.Children {
		c.Walk(maskProps)
	}

	return m.next.Save(ctx, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, id string) (*schema.PageData, error) {
	return m.next.Load(ctx, id)
}

func (m *piiMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		masked := false
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				masked = true
				break
			}
		}
		if masked {
			continue
		}

		switch sub := v.(type) {
		case map[string]any:
			maskMap(sub, patterns)
		case []any:
			for _, item := range sub {
				if subMap, ok := item.(map[string]any); ok {
					maskMap(subMap, patterns)
				}
			}
		}
	}
}
