package escrow

import (
	"fmt"

	"github.com/iov-one/swap"
	"github.com/iov-one/swap/asset"
	"github.com/iov-one/swap/errors"
)

// legArity is the number of handles describing a single leg.
const legArity = 3

// Leg is a single transfer of a multi asset settlement.
type Leg struct {
	Asset       string       `cbor:"1,keyasint"`
	Source      swap.Address `cbor:"2,keyasint"`
	Destination swap.Address `cbor:"3,keyasint"`
}

func (l Leg) Validate() error {
	var errs error
	if !asset.IsTicker(l.Asset) {
		errs = errors.AppendField(errs, "Asset", errors.Wrapf(errors.ErrInvalidInput, "invalid ticker %q", l.Asset))
	}
	errs = errors.AppendField(errs, "Source", l.Source.Validate())
	errs = errors.AppendField(errs, "Destination", l.Destination.Validate())
	return errs
}

func (l Leg) String() string {
	return fmt.Sprintf("%s,%s,%s", l.Asset, l.Source, l.Destination)
}

// ParseLegs decodes a flat list of handles, three per leg: the asset
// ticker, the source account and the destination account.
func ParseLegs(handles []string) ([]Leg, error) {
	if len(handles)%legArity != 0 {
		return nil, errors.Wrapf(errors.ErrBundleLength, "%d handles is not a multiple of %d", len(handles), legArity)
	}
	legs := make([]Leg, 0, len(handles)/legArity)
	for i := 0; i < len(handles); i += legArity {
		src, err := swap.ParseAddress(handles[i+1])
		if err != nil {
			return nil, errors.Wrapf(err, "leg %d source", i/legArity)
		}
		dst, err := swap.ParseAddress(handles[i+2])
		if err != nil {
			return nil, errors.Wrapf(err, "leg %d destination", i/legArity)
		}
		leg := Leg{Asset: handles[i], Source: src, Destination: dst}
		if err := leg.Validate(); err != nil {
			return nil, errors.Wrapf(err, "leg %d", i/legArity)
		}
		legs = append(legs, leg)
	}
	return legs, nil
}

// match pairs bundle entries with legs by position. The number of legs is
// verified before any leg is read.
func match(bundle asset.Bundle, legs []Leg) error {
	if len(legs) != len(bundle) {
		return errors.Wrapf(errors.ErrBundleLength, "%d legs for a bundle of %d", len(legs), len(bundle))
	}
	for i, e := range bundle {
		if legs[i].Asset != e.Ticker {
			return errors.Wrapf(errors.ErrAssetMismatch, "leg %d: want %s, got %s", i, e.Ticker, legs[i].Asset)
		}
	}
	return nil
}

// matchTake splits take legs into payment legs, one per expected entry,
// followed by release legs, one per offered entry.
func matchTake(e *Escrow, legs []Leg) (pay, release []Leg, err error) {
	if want := len(e.Expected) + len(e.Offered); len(legs) != want {
		return nil, nil, errors.Wrapf(errors.ErrBundleLength, "%d legs, want %d", len(legs), want)
	}
	pay, release = legs[:len(e.Expected)], legs[len(e.Expected):]
	if err := match(e.Expected, pay); err != nil {
		return nil, nil, errors.Wrap(err, "payment")
	}
	if err := match(e.Offered, release); err != nil {
		return nil, nil, errors.Wrap(err, "release")
	}
	return pay, release, nil
}

// TakeLegs returns the legs settling given escrow in favour of the taker
// using the taker's own accounts.
func TakeLegs(e *Escrow, taker swap.Address) []Leg {
	legs := make([]Leg, 0, len(e.Expected)+len(e.Offered))
	for _, x := range e.Expected {
		legs = append(legs, Leg{
			Asset:       x.Ticker,
			Source:      accountOf(taker, x.Ticker),
			Destination: accountOf(e.Maker, x.Ticker),
		})
	}
	vaults := e.Vaults()
	for i, o := range e.Offered {
		legs = append(legs, Leg{
			Asset:       o.Ticker,
			Source:      vaults[i],
			Destination: accountOf(taker, o.Ticker),
		})
	}
	return legs
}
