package sigs

import (
	"github.com/iov-one/swap"
	"github.com/iov-one/swap/errors"
	"github.com/iov-one/swap/orm"
	"github.com/iov-one/swap/x"
)

func RegisterRoutes(r swap.Registry, auth x.Authenticator) {
	r.Handle(pathBumpSequenceMsg, &bumpSequenceHandler{
		b:    NewBucket(),
		auth: auth,
	})
}

type bumpSequenceHandler struct {
	auth x.Authenticator
	b    orm.ModelBucket
}

func (h *bumpSequenceHandler) Deliver(ctx swap.Context, db swap.KVStore, msg swap.Msg) (*swap.DeliverResult, error) {
	m, ok := msg.(*BumpSequenceMsg)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidMsg, "%T", msg)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	pubkey := x.MainSigner(ctx, h.auth)
	if pubkey == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	var user UserData
	if err := h.b.One(db, pubkey.Address(), &user); err != nil {
		return nil, errors.Wrap(err, "no sequence")
	}

	// Each transaction processing bumps the sequence by one. Increment
	// must represent the total increment value.
	incr := int64(m.Increment) - 1
	if incr == 0 {
		return &swap.DeliverResult{}, nil
	}
	if user.Sequence+incr > maxSequenceValue {
		return nil, errors.Wrap(errors.ErrOverflow, "user sequence")
	}
	user.Sequence += incr
	if err := h.b.Put(db, user.Pubkey.Address(), &user); err != nil {
		return nil, errors.Wrap(err, "save user")
	}
	return &swap.DeliverResult{}, nil
}
