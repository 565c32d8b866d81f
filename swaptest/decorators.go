package swaptest

import "github.com/iov-one/swap"

// Decorator is a mock implementation of the swap.Decorator interface.
//
// Set DeliverErr to force error response. If not set then wrapped handler
// is called and its result returned.
// Each call is counted regardless of the result.
type Decorator struct {
	deliverCall int
	// DeliverErr if set is returned by the Deliver method before calling
	// the wrapped handler.
	DeliverErr error
}

var _ swap.Decorator = (*Decorator)(nil)

func (d *Decorator) Deliver(ctx swap.Context, db swap.KVStore, msg swap.Msg, next swap.Handler) (*swap.DeliverResult, error) {
	d.deliverCall++

	if d.DeliverErr != nil {
		return nil, d.DeliverErr
	}
	return next.Deliver(ctx, db, msg)
}

func (d *Decorator) CallCount() int {
	return d.deliverCall
}

// Decorate returns a handler that calls given decorator with given handler
// as the next one.
func Decorate(h swap.Handler, d swap.Decorator) swap.Handler {
	return &decoratedHandler{hn: h, dc: d}
}

type decoratedHandler struct {
	hn swap.Handler
	dc swap.Decorator
}

var _ swap.Handler = (*decoratedHandler)(nil)

func (d *decoratedHandler) Deliver(ctx swap.Context, db swap.KVStore, msg swap.Msg) (*swap.DeliverResult, error) {
	return d.dc.Deliver(ctx, db, msg, d.hn)
}
