package node

import (
	"fmt"
	"maps"
	"slices"
)

// Addons a node can export next to its schema.
var SupportedAddons = []string{"css", "state", "dataSource", "methods"}

// RegisterAddon installs an exporter for a supported addon. The exported
// value replaces the raw addon data read from the schema.
func (n *Node) RegisterAddon(name string, exporter func() any) error {
	if !slices.Contains(SupportedAddons, name) {
		return fmt.Errorf("%w: %s", ErrUnknownAddon, name)
	}
	if _, ok := n.addons[name]; ok {
		return fmt.Errorf("%w: %s", ErrAddonExists, name)
	}
	if n.addons == nil {
		n.addons = make(map[string]func() any)
	}
	n.addons[name] = exporter
	return nil
}

// Addon returns the current value of an addon.
func (n *Node) Addon(name string) (any, bool) {
	if fn, ok := n.addons[name]; ok {
		return fn(), true
	}
	v, ok := n.rawAddons[name]
	return v, ok
}

func (n *Node) exportAddons() map[string]any {
	if len(n.addons) == 0 && len(n.rawAddons) == 0 {
		return nil
	}
	out := maps.Clone(n.rawAddons)
	if out == nil {
		out = make(map[string]any)
	}
	for name, fn := range n.addons {
		if v := fn(); v != nil {
			out[name] = v
		} else {
			delete(out, name)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
