package escrow

import (
	"fmt"

	"github.com/iov-one/swap"
	"github.com/iov-one/swap/errors"
	"github.com/iov-one/swap/gconf"
	"github.com/iov-one/swap/x"
	"github.com/iov-one/swap/x/custody"
)

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r swap.Registry, auth x.Authenticator, ctrl *Controller) {
	r.Handle(pathMakeMsg, MakeHandler{auth: auth, ctrl: ctrl})
	r.Handle(pathTakeMsg, TakeHandler{auth: auth, ctrl: ctrl})
	r.Handle(pathRefundMsg, RefundHandler{auth: auth, ctrl: ctrl})
	r.Handle(pathUpdateConfigurationMsg, gconf.NewUpdateConfigurationHandler(confPkg, &Configuration{}, auth, nil))
}

// MakeHandler opens escrows. The maker must sign the message.
type MakeHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ swap.Handler = MakeHandler{}

func (h MakeHandler) Deliver(ctx swap.Context, db swap.KVStore, msg swap.Msg) (*swap.DeliverResult, error) {
	m, ok := msg.(*MakeMsg)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidMsg, "%T", msg)
	}
	if !h.auth.HasAddress(ctx, m.Maker) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "maker signature required")
	}
	key, err := h.ctrl.Make(ctx, db, m, custody.Signers(h.auth))
	if err != nil {
		return nil, err
	}
	return &swap.DeliverResult{
		Data: key,
		Log:  fmt.Sprintf("%s escrow %s opened", m.Kind, FormatID(key)),
	}, nil
}

// TakeHandler settles escrows. The taker must sign the message.
type TakeHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ swap.Handler = TakeHandler{}

func (h TakeHandler) Deliver(ctx swap.Context, db swap.KVStore, msg swap.Msg) (*swap.DeliverResult, error) {
	m, ok := msg.(*TakeMsg)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidMsg, "%T", msg)
	}
	if !h.auth.HasAddress(ctx, m.Taker) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "taker signature required")
	}
	open, err := h.ctrl.Take(ctx, db, m, custody.Signers(h.auth))
	if err != nil {
		return nil, err
	}
	res := &swap.DeliverResult{Data: m.EscrowID}
	if open == nil {
		res.Log = fmt.Sprintf("escrow %s closed", FormatID(m.EscrowID))
	} else {
		res.Log = fmt.Sprintf("escrow %s remaining %d", FormatID(m.EscrowID), open.Remaining)
	}
	return res, nil
}

// RefundHandler returns vault content to the maker and closes the escrow.
type RefundHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ swap.Handler = RefundHandler{}

func (h RefundHandler) Deliver(ctx swap.Context, db swap.KVStore, msg swap.Msg) (*swap.DeliverResult, error) {
	m, ok := msg.(*RefundMsg)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidMsg, "%T", msg)
	}
	refunded, err := h.ctrl.Refund(ctx, db, m.EscrowID, custody.Signers(h.auth))
	if err != nil {
		return nil, err
	}
	return &swap.DeliverResult{
		Data: m.EscrowID,
		Log:  fmt.Sprintf("escrow %s refunded %s", FormatID(m.EscrowID), refunded),
	}, nil
}
