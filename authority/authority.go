/*
Package authority derives keyless addresses that control escrow vaults.

An authority address is computed from a tag, the maker address, a maker
chosen seed and a discriminant byte (the bump). The bump is chosen so that
the condition digest is not a valid ed25519 public key. No private key can
therefore exist for the derived address and the only way to move funds out
of a vault it owns is to present a Proof recomputed from the same inputs.
*/
package authority

import (
	"encoding/binary"

	"filippo.io/edwards25519"
	"github.com/iov-one/swap"
	"github.com/iov-one/swap/errors"
)

// conditionType is the type section of every derived condition.
const conditionType = "seed"

// Condition returns the condition of the authority derived from given
// inputs. The data section is maker | seed (big endian) | bump, so the
// encoding is injective for valid maker addresses.
func Condition(tag string, maker swap.Address, seed uint64, bump uint8) swap.Condition {
	data := make([]byte, 0, len(maker)+9)
	data = append(data, maker...)
	var s [8]byte
	binary.BigEndian.PutUint64(s[:], seed)
	data = append(data, s[:]...)
	data = append(data, bump)
	return swap.NewCondition(tag, conditionType, data)
}

// IsOffCurve returns true if given digest does not encode a point on the
// ed25519 curve.
func IsOffCurve(digest [32]byte) bool {
	_, err := new(edwards25519.Point).SetBytes(digest[:])
	return err != nil
}

// Derive returns the authority address for given inputs together with the
// greatest bump for which the condition digest is off curve.
func Derive(tag string, maker swap.Address, seed uint64) (swap.Address, uint8, error) {
	if err := validateInputs(tag, maker); err != nil {
		return nil, 0, err
	}
	for bump := 255; bump >= 0; bump-- {
		cond := Condition(tag, maker, seed, uint8(bump))
		if IsOffCurve(cond.Digest()) {
			return cond.Address(), uint8(bump), nil
		}
	}
	return nil, 0, errors.Wrap(errors.ErrUnauthorizedAuthority, "no off curve bump found")
}

// Authorize recomputes the authority from given inputs and returns a proof
// that can move funds owned by owner. Authorization fails closed: if the
// recomputed address is not owner, or the bump does not produce an off
// curve digest, ErrUnauthorizedAuthority is returned.
func Authorize(tag string, maker swap.Address, seed uint64, bump uint8, owner swap.Address) (*Proof, error) {
	if err := validateInputs(tag, maker); err != nil {
		return nil, err
	}
	cond := Condition(tag, maker, seed, bump)
	if !IsOffCurve(cond.Digest()) {
		return nil, errors.Wrapf(errors.ErrUnauthorizedAuthority, "bump %d is on curve", bump)
	}
	addr := cond.Address()
	if !addr.Equals(owner) {
		return nil, errors.Wrapf(errors.ErrUnauthorizedAuthority, "derived %s, owner %s", addr, owner)
	}
	return &Proof{cond: cond}, nil
}

func validateInputs(tag string, maker swap.Address) error {
	if err := swap.NewCondition(tag, conditionType, []byte{0}).Validate(); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "tag %q", tag)
	}
	if err := maker.Validate(); err != nil {
		return errors.Wrap(err, "maker")
	}
	return nil
}

// Proof is an authorization to move funds out of accounts owned by a
// derived authority address. It can only be created by Authorize.
type Proof struct {
	cond swap.Condition
}

// Condition returns the derived condition this proof was created for.
func (p *Proof) Condition() swap.Condition {
	return p.cond
}

// Address returns the derived authority address.
func (p *Proof) Address() swap.Address {
	if p == nil {
		return nil
	}
	return p.cond.Address()
}

// Authorizes returns true if this proof grants access to funds owned by
// given address.
func (p *Proof) Authorizes(ctx swap.Context, owner swap.Address) bool {
	if p == nil || len(p.cond) == 0 {
		return false
	}
	return p.cond.Address().Equals(owner)
}

func (p *Proof) String() string {
	if p == nil {
		return "(nil)"
	}
	return p.cond.Address().String()
}
