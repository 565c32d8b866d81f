package custody

import (
	"github.com/iov-one/swap"
	"github.com/iov-one/swap/errors"
	"github.com/iov-one/swap/gconf"
	"github.com/iov-one/swap/x"
)

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r swap.Registry, auth x.Authenticator, ctrl *Controller) {
	r.Handle(pathTransferMsg, TransferHandler{auth: auth, exec: NewExecutor(ctrl)})
	r.Handle(pathUpdateConfigurationMsg, gconf.NewUpdateConfigurationHandler(confPkg, &Configuration{}, auth, nil))
}

// TransferHandler moves funds between owners.
type TransferHandler struct {
	auth x.Authenticator
	exec *Executor
}

var _ swap.Handler = TransferHandler{}

func (h TransferHandler) Deliver(ctx swap.Context, db swap.KVStore, msg swap.Msg) (*swap.DeliverResult, error) {
	m, ok := msg.(*TransferMsg)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidMsg, "%T", msg)
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid message")
	}
	if !h.auth.HasAddress(ctx, m.Sender) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "sender signature required")
	}

	from := AccountAddress(m.Sender, m.Amount.Ticker)
	to, err := h.exec.EnsureAccount(db, m.Recipient, m.Amount.Ticker, m.Sender)
	if err != nil {
		return nil, errors.Wrap(err, "recipient account")
	}
	if err := h.exec.Transfer(ctx, db, m.Amount.Ticker, from, to, m.Amount.Amount, Signers(h.auth)); err != nil {
		return nil, err
	}
	return &swap.DeliverResult{Log: "transferred " + m.Amount.String()}, nil
}
