package middleware

import "github.com/aretw0/pagecraft/pkg/ports"

// Middleware allows wrapping a PageStore to add behavior.
type Middleware func(ports.PageStore) ports.PageStore

// Chain applies mws so that the first one is the outermost.
func Chain(store ports.PageStore, mws ...Middleware) ports.PageStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
