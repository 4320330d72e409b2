// Package middleware wraps patch stores with extra behavior.
package middleware

import "github.com/aretw0/patchbay/pkg/ports"

// Middleware allows wrapping a PatchStore to add behavior.
type Middleware func(ports.PatchStore) ports.PatchStore

// Chain applies mws to store, the first one outermost.
func Chain(store ports.PatchStore, mws ...Middleware) ports.PatchStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
