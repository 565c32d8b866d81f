// Package sigs checks the ed25519 signatures of a message envelope and keeps
// a per-signer sequence against replays.
package sigs

import (
	"github.com/iov-one/swap"
	"github.com/iov-one/swap/errors"
)

// Decorator verifies envelope signatures and hands the payload down the
// stack with the signers stored in the context. Messages that are not
// envelopes pass through untouched and carry no signers.
type Decorator struct{}

var _ swap.Decorator = Decorator{}

// NewDecorator returns a decorator that requires at least one valid
// signature on every envelope.
func NewDecorator() Decorator {
	return Decorator{}
}

func (Decorator) Deliver(ctx swap.Context, store swap.KVStore, msg swap.Msg, next swap.Handler) (*swap.DeliverResult, error) {
	stx, ok := msg.(SignedTx)
	if !ok {
		return next.Deliver(ctx, store, msg)
	}

	payload := msg
	if env, ok := msg.(*Envelope); ok {
		if _, nested := env.Payload.(*Envelope); nested {
			return nil, errors.Wrap(errors.ErrInvalidMsg, "nested envelope")
		}
		payload = env.GetMsg()
	}

	signers, err := VerifyTxSignatures(store, stx, swap.GetChainID(ctx))
	if err != nil {
		return nil, errors.Wrapf(err, "verify %s", msg.Path())
	}
	if len(signers) == 0 {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "%s: missing signature", msg.Path())
	}

	swap.GetLogger(ctx).Debug("signed",
		"path", msg.Path(),
		"signer", signers[0].Address(),
		"signers", len(signers))
	return next.Deliver(withSigners(ctx, signers), store, payload)
}
