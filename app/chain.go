package app

import (
	"reflect"

	"github.com/iov-one/swap"
)

// Decorators is an ordered list of decorators that still lacks the final
// handler. The first decorator sees a message first. The ledger stack is
// logging, recovery, signature check and savepoint, in that order.
type Decorators struct {
	chain []swap.Decorator
}

// ChainDecorators returns the given decorators as a chain. Nil entries,
// including typed nil pointers, are skipped so that optional decorators can
// be passed in directly.
func ChainDecorators(ds ...swap.Decorator) Decorators {
	return Decorators{}.Chain(ds...)
}

// Chain returns a new chain with ds appended. The receiver is not modified.
func (d Decorators) Chain(ds ...swap.Decorator) Decorators {
	chain := make([]swap.Decorator, len(d.chain), len(d.chain)+len(ds))
	copy(chain, d.chain)
	for _, dec := range ds {
		if !isNilDecorator(dec) {
			chain = append(chain, dec)
		}
	}
	return Decorators{chain: chain}
}

func isNilDecorator(d swap.Decorator) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// WithHandler closes the chain with h.
func (d Decorators) WithHandler(h swap.Handler) swap.Handler {
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = decorated{dec: d.chain[i], next: h}
	}
	return h
}

// decorated is a handler that runs dec around next.
type decorated struct {
	dec  swap.Decorator
	next swap.Handler
}

var _ swap.Handler = decorated{}

func (d decorated) Deliver(ctx swap.Context, store swap.KVStore, msg swap.Msg) (*swap.DeliverResult, error) {
	return d.dec.Deliver(ctx, store, msg, d.next)
}
