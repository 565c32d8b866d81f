package escrow

import (
	"fmt"

	"github.com/iov-one/swap"
	"github.com/iov-one/swap/asset"
	"github.com/iov-one/swap/codec"
	"github.com/iov-one/swap/errors"
)

const (
	pathMakeMsg                = "escrow/make"
	pathTakeMsg                = "escrow/take"
	pathRefundMsg              = "escrow/refund"
	pathUpdateConfigurationMsg = "escrow/update_configuration"
)

var _ swap.Msg = (*MakeMsg)(nil)
var _ swap.Msg = (*TakeMsg)(nil)
var _ swap.Msg = (*RefundMsg)(nil)
var _ swap.Msg = (*UpdateConfigurationMsg)(nil)

// MakeMsg opens a new escrow.
type MakeMsg struct {
	Kind  Kind         `cbor:"1,keyasint"`
	Maker swap.Address `cbor:"2,keyasint"`
	Seed  uint64       `cbor:"3,keyasint"`
	// Offered is locked in vaults. Single asset kinds offer one entry.
	Offered asset.Bundle `cbor:"4,keyasint"`
	// Expected is the payment. For a partial fill escrow this is the
	// price of a single offered unit.
	Expected asset.Bundle `cbor:"5,keyasint"`
	// Duration in seconds, required by time boxed escrows only.
	Duration int64 `cbor:"6,keyasint"`
}

// Path fulfills swap.Msg interface to allow routing
func (MakeMsg) Path() string {
	return pathMakeMsg
}

func (m *MakeMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *MakeMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }

func (m *MakeMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Kind", m.Kind.Validate())
	errs = errors.AppendField(errs, "Maker", m.Maker.Validate())
	errs = errors.AppendField(errs, "Offered", m.Offered.Validate(maxBundleSize))
	errs = errors.AppendField(errs, "Expected", m.Expected.Validate(maxBundleSize))
	if errs != nil {
		return errs
	}
	if m.Kind.single() {
		if len(m.Offered) != 1 {
			errs = errors.AppendField(errs, "Offered", errors.Wrapf(errors.ErrInvalidInput, "%s escrow offers a single asset", m.Kind))
		}
		if len(m.Expected) != 1 {
			errs = errors.AppendField(errs, "Expected", errors.Wrapf(errors.ErrInvalidInput, "%s escrow expects a single asset", m.Kind))
		}
	}
	switch {
	case m.Kind == TimeBoxed && m.Duration <= 0:
		errs = errors.AppendField(errs, "Duration", errors.Wrap(errors.ErrInvalidInput, "must be positive"))
	case m.Kind != TimeBoxed && m.Duration != 0:
		errs = errors.AppendField(errs, "Duration", errors.Wrapf(errors.ErrInvalidInput, "not used by %s escrow", m.Kind))
	}
	return errs
}

// TakeMsg settles an escrow in favour of the taker.
type TakeMsg struct {
	EscrowID []byte       `cbor:"1,keyasint"`
	Taker    swap.Address `cbor:"2,keyasint"`
	// Amount of the offered asset to take, partial fill escrows only.
	Amount uint64 `cbor:"3,keyasint"`
	// Legs of a multi asset settlement: one per expected entry followed by
	// one per offered entry, in bundle order.
	Legs []Leg `cbor:"4,keyasint"`
}

// Path fulfills swap.Msg interface to allow routing
func (TakeMsg) Path() string {
	return pathTakeMsg
}

func (m *TakeMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *TakeMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }

func (m *TakeMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "EscrowID", validateID(m.EscrowID))
	errs = errors.AppendField(errs, "Taker", m.Taker.Validate())
	for i, l := range m.Legs {
		errs = errors.AppendField(errs, fmt.Sprintf("Legs.%d", i), l.Validate())
	}
	return errs
}

// RefundMsg closes an escrow returning vault content to the maker.
type RefundMsg struct {
	EscrowID []byte `cbor:"1,keyasint"`
}

// Path fulfills swap.Msg interface to allow routing
func (RefundMsg) Path() string {
	return pathRefundMsg
}

func (m *RefundMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *RefundMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }

func (m *RefundMsg) Validate() error {
	return errors.Field("EscrowID", validateID(m.EscrowID), "invalid escrow id")
}

// UpdateConfigurationMsg patches the escrow configuration.
type UpdateConfigurationMsg struct {
	Patch *Configuration `cbor:"1,keyasint"`
}

// Path fulfills swap.Msg interface to allow routing
func (UpdateConfigurationMsg) Path() string {
	return pathUpdateConfigurationMsg
}

func (m *UpdateConfigurationMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *UpdateConfigurationMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }

func (m *UpdateConfigurationMsg) Validate() error {
	if m.Patch == nil {
		return errors.Wrap(errors.ErrEmpty, "patch")
	}
	return m.Patch.Validate()
}

func validateID(id []byte) error {
	maker, _, err := SplitKey(id)
	if err != nil {
		return err
	}
	return maker.Validate()
}
