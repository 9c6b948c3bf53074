package node

import (
	"github.com/aretw0/pagecraft/pkg/hot"
	"github.com/aretw0/pagecraft/pkg/schema"
)

// NewRoot builds the root of a page. The root is always a container, is
// never moved, removed or cloned and covers the owner bounds.
func NewRoot(owner Owner, data *schema.ComponentSchema, opts ...Option) *Node {
	if data == nil {
		data = &schema.ComponentSchema{}
	}
	return FromSchema(owner, data, nil, append(opts, asRoot())...)
}

// NewRootFromSnapshot rebuilds a root from hot data.
func NewRootFromSnapshot(owner Owner, data hot.Map) (*Node, error) {
	return FromSnapshot(owner, data, nil, asRoot())
}
