package swapd

import (
	"github.com/iov-one/swap"
	"github.com/iov-one/swap/errors"
	"github.com/iov-one/swap/x/custody"
	"github.com/iov-one/swap/x/escrow"
	"github.com/iov-one/swap/x/sigs"
)

// prototypes returns an empty message for every path this ledger accepts.
var prototypes = map[string]func() swap.Msg{
	"escrow/make":                  func() swap.Msg { return &escrow.MakeMsg{} },
	"escrow/take":                  func() swap.Msg { return &escrow.TakeMsg{} },
	"escrow/refund":                func() swap.Msg { return &escrow.RefundMsg{} },
	"escrow/update_configuration":  func() swap.Msg { return &escrow.UpdateConfigurationMsg{} },
	"custody/transfer":             func() swap.Msg { return &custody.TransferMsg{} },
	"custody/update_configuration": func() swap.Msg { return &custody.UpdateConfigurationMsg{} },
	"sigs/bump_sequence":           func() swap.Msg { return &sigs.BumpSequenceMsg{} },
}

// DecodeEnvelope reads a serialized signed message. The payload type is
// selected by the message path.
func DecodeEnvelope(raw []byte) (*sigs.Envelope, error) {
	path, err := sigs.PeekPath(raw)
	if err != nil {
		return nil, errors.Wrap(err, "read path")
	}
	proto, ok := prototypes[path]
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidMsg, "unknown message path %q", path)
	}
	env := sigs.NewEnvelope(proto())
	if err := env.Unmarshal(raw); err != nil {
		return nil, err
	}
	return env, nil
}
