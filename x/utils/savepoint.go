package utils

import (
	"github.com/iov-one/swap"
	"github.com/iov-one/swap/errors"
)

// Savepoint will isolate all data inside of the call,
// and commit/rollback to savepoint based on if error
type Savepoint struct{}

var _ swap.Decorator = Savepoint{}

// NewSavepoint creates a Savepoint decorator
func NewSavepoint() Savepoint {
	return Savepoint{}
}

// Deliver runs next on a cache of the store. The cache is written only if
// next succeeds. Stores that cannot be cache wrapped are used directly.
func (s Savepoint) Deliver(ctx swap.Context, store swap.KVStore, msg swap.Msg, next swap.Handler) (*swap.DeliverResult, error) {
	cstore, ok := store.(swap.CacheableKVStore)
	if !ok {
		return next.Deliver(ctx, store, msg)
	}

	cache := cstore.CacheWrap()
	res, err := next.Deliver(ctx, cache, msg)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if werr := cache.Write(); werr != nil {
		return nil, errors.Wrap(werr, "writing savepoint")
	}
	return res, nil
}
