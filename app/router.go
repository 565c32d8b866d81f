package app

import (
	"fmt"
	"regexp"

	"github.com/iov-one/swap"
	"github.com/iov-one/swap/errors"
)

// isPath is the RegExp to ensure the routes make sense
var isPath = regexp.MustCompile(`^[a-zA-Z0-9_/]+$`).MatchString

// Router allows us to register many handlers with different
// paths and then direct each message to the proper handler.
//
// Minimal interface modeled after net/http.ServeMux
type Router struct {
	routes map[string]swap.Handler
}

var _ swap.Registry = (*Router)(nil)
var _ swap.Handler = (*Router)(nil)

// NewRouter initializes a router with no routes
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]swap.Handler, 10),
	}
}

// Handle adds a new Handler for the given path. This function panics if a
// handler for given path is already registered.
func (r *Router) Handle(path string, h swap.Handler) {
	if !isPath(path) {
		panic(fmt.Sprintf("invalid path: %s", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route: %s", path))
	}
	r.routes[path] = h
}

// handler returns the registered Handler for this path. If no path is
// found, returns a noSuchPath Handler. This function always returns a
// non-nil Handler.
func (r *Router) handler(path string) swap.Handler {
	if h, ok := r.routes[path]; ok {
		return h
	}
	return notFoundHandler(path)
}

// Deliver dispatches to the handler registered for the message path.
func (r *Router) Deliver(ctx swap.Context, store swap.KVStore, msg swap.Msg) (*swap.DeliverResult, error) {
	return r.handler(msg.Path()).Deliver(ctx, store, msg)
}

// notFoundHandler always returns ErrNotFound error regardless of the
// message.
type notFoundHandler string

func (path notFoundHandler) Deliver(swap.Context, swap.KVStore, swap.Msg) (*swap.DeliverResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", string(path))
}
