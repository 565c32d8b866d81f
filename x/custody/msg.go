package custody

import (
	"github.com/iov-one/swap"
	"github.com/iov-one/swap/asset"
	"github.com/iov-one/swap/codec"
	"github.com/iov-one/swap/errors"
)

const (
	pathTransferMsg            = "custody/transfer"
	pathUpdateConfigurationMsg = "custody/update_configuration"
)

var _ swap.Msg = (*TransferMsg)(nil)
var _ swap.Msg = (*UpdateConfigurationMsg)(nil)

// TransferMsg moves funds from the sender account to the recipient
// account of the same asset. Missing recipient account is created and
// paid by the sender.
type TransferMsg struct {
	Sender    swap.Address `cbor:"1,keyasint"`
	Recipient swap.Address `cbor:"2,keyasint"`
	Amount    asset.Entry  `cbor:"3,keyasint"`
}

func (TransferMsg) Path() string {
	return pathTransferMsg
}

func (m *TransferMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *TransferMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }

func (m *TransferMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Sender", m.Sender.Validate())
	errs = errors.AppendField(errs, "Recipient", m.Recipient.Validate())
	errs = errors.AppendField(errs, "Amount", m.Amount.Validate())
	return errs
}

// UpdateConfigurationMsg patches the custody configuration. Zero value
// fields are not updated.
type UpdateConfigurationMsg struct {
	Patch *Configuration `cbor:"1,keyasint"`
}

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
