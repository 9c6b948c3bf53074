// Package html exports a page as a static HTML skeleton: one element per
// component, its scalar props as data attributes.
package html

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/aretw0/pagecraft/pkg/schema"
)

// TextProps are the props whose string value becomes the element text.
var TextProps = []string{"content", "text", "children"}

// Option configures an export.
type Option func(*exporter)

// WithTags maps component names to element names. Unmapped components
// become div.
func WithTags(tags map[string]string) Option {
	return func(e *exporter) {
		for k, v := range tags {
			e.tags[k] = v
		}
	}
}

type exporter struct {
	tags map[string]string
}

// Export renders the page document.
func Export(page *schema.PageData, opts ...Option) (string, error) {
	doc, err := Build(page, opts...)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", fmt.Errorf("failed to render page %s: %w", page.ID, err)
	}
	return buf.String(), nil
}

// Build returns the document tree of the page.
func Build(page *schema.PageData, opts ...Option) (*html.Node, error) {
	if page == nil {
		return nil, fmt.Errorf("page is nil")
	}
	e := &exporter{tags: map[string]string{}}
	for _, opt := range opts {
		opt(e)
	}

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	root := element(atom.Html, "html", nil)
	doc.AppendChild(root)

	head := element(atom.Head, "head", nil)
	head.AppendChild(element(atom.Meta, "meta", []html.Attribute{{Key: "charset", Val: "utf-8"}}))
	title := element(atom.Title, "title", nil)
	title.AppendChild(&html.Node{Type: html.TextNode, Data: page.ID})
	head.AppendChild(title)
	root.AppendChild(head)

	body := element(atom.Body, "body", []html.Attribute{{Key: "data-page-id", Val: page.ID}})
	root.AppendChild(body)
	if c := page.Root(); !c.IsEmpty() {
		body.AppendChild(e.component(c))
	}
	return doc, nil
}

func (e *exporter) component(c *schema.ComponentSchema) *html.Node {
	tag := e.tags[c.ComponentName]
	if tag == "" {
		tag = "div"
	}
	attrs := []html.Attribute{{Key: "data-component", Val: c.ComponentName}}
	if c.ID != "" {
		attrs = append(attrs, html.Attribute{Key: "data-node-id", Val: c.ID})
	}

	var text string
	keys := make([]string, 0, len(c.Props))
	for k := range c.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := c.Props[k]
		if s, ok := v.(string); ok && text == "" && isTextProp(k) {
			text = s
			continue
		}
		if val, ok := scalar(v); ok {
			attrs = append(attrs, html.Attribute{Key: "data-prop-" + strings.ToLower(k), Val: val})
		}
	}

	n := element(atom.Lookup([]byte(tag)), tag, attrs)
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	for _, child := range c.Children {
		n.AppendChild(e.component(child))
	}
	return n
}

func element(a atom.Atom, tag string, attrs []html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: tag, Attr: attrs}
}

func isTextProp(k string) bool {
	for _, p := range TextProps {
		if p == k {
			return true
		}
	}
	return false
}

func scalar(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case bool, int, int64, float64:
		return fmt.Sprint(v), true
	}
	return "", false
}
