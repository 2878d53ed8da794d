package middleware

import "github.com/aretw0/quire/pkg/ports"

// Middleware allows wrapping a StoryStore to add behavior.
type Middleware func(ports.StoryStore) ports.StoryStore

// Chain applies middlewares so that the first one is the outermost.
func Chain(store ports.StoryStore, mws ...Middleware) ports.StoryStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
