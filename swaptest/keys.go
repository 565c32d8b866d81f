package swaptest

import (
	"github.com/iov-one/swap"
	"github.com/iov-one/swap/crypto"
)

// NewKey returns a new random ed25519 private key.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// NewCondition returns a signer condition of a random key.
func NewCondition() swap.Condition {
	return NewKey().PublicKey().Condition()
}
