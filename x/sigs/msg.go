package sigs

import (
	"github.com/iov-one/swap/codec"
	"github.com/iov-one/swap/errors"
)

const (
	pathBumpSequenceMsg = "sigs/bump_sequence"

	maxSequenceIncrement = 1000
	minSequenceIncrement = 1
)

// BumpSequenceMsg increments the sequence of the main signer. Processing
// the message bumps the sequence by one already so Increment is the total
// change.
type BumpSequenceMsg struct {
	Increment uint32 `cbor:"1,keyasint"`
}

func (msg *BumpSequenceMsg) Marshal() ([]byte, error) { return codec.Marshal(msg) }
func (msg *BumpSequenceMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, msg) }

func (msg *BumpSequenceMsg) Validate() error {
	if msg.Increment < minSequenceIncrement {
		return errors.Wrapf(errors.ErrInvalidMsg, "increment must be at least %d", minSequenceIncrement)
	}
	if msg.Increment > maxSequenceIncrement {
		return errors.Wrapf(errors.ErrInvalidMsg, "increment must not be greater than %d", maxSequenceIncrement)
	}
	return nil
}

func (BumpSequenceMsg) Path() string {
	return pathBumpSequenceMsg
}
