package utils

import (
	"github.com/iov-one/swap"
	"github.com/iov-one/swap/errors"
)

// Recovery turns a panic raised while delivering a message into an
// ErrPanic carrying the message path. The panic is logged together with the
// path so that a broken handler can be found without a stack dump.
type Recovery struct{}

var _ swap.Decorator = Recovery{}

// NewRecovery returns a Recovery decorator.
func NewRecovery() Recovery {
	return Recovery{}
}

func (Recovery) Deliver(ctx swap.Context, store swap.KVStore, msg swap.Msg, next swap.Handler) (res *swap.DeliverResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = errors.Wrapf(errors.ErrPanic, "%s: %v", msg.Path(), r)
			swap.GetLogger(ctx).Error("handler panic", "path", msg.Path(), "value", r)
		}
	}()
	return next.Deliver(ctx, store, msg)
}
