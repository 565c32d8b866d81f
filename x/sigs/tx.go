package sigs

import (
	"github.com/iov-one/swap"
	"github.com/iov-one/swap/codec"
	"github.com/iov-one/swap/crypto"
	"github.com/iov-one/swap/errors"
)

// SignedTx represents a message that carries signatures, which can be
// verified by the Decorator.
type SignedTx interface {
	// GetSignBytes returns the canonical byte representation of the
	// signed content, without the signatures.
	GetSignBytes() ([]byte, error)

	// GetSignatures returns the signatures of signers.
	GetSignatures() []*StdSignature
}

// StdSignature is a signature with the public key and the sequence it was
// created for.
type StdSignature struct {
	Pubkey    *crypto.PublicKey `cbor:"1,keyasint"`
	Signature *crypto.Signature `cbor:"2,keyasint"`
	Sequence  int64             `cbor:"3,keyasint"`
}

// Validate ensures the StdSignature meets basic standards
func (s *StdSignature) Validate() error {
	if s.Sequence < 0 {
		return errors.Wrap(ErrInvalidSequence, "negative")
	}
	if s.Pubkey == nil {
		return errors.Wrap(errors.ErrUnauthorized, "missing public key")
	}
	if s.Signature == nil {
		return errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return nil
}

// Envelope wraps a message with signatures of its signers. It implements
// swap.Msg by delegating to the payload so that it can be routed like the
// message it carries.
type Envelope struct {
	Payload    swap.Msg
	Signatures []*StdSignature
}

var _ SignedTx = (*Envelope)(nil)
var _ swap.Msg = (*Envelope)(nil)

// NewEnvelope returns an unsigned envelope carrying msg.
func NewEnvelope(msg swap.Msg) *Envelope {
	return &Envelope{Payload: msg}
}

type envelopeWire struct {
	Path       string          `cbor:"1,keyasint"`
	Payload    []byte          `cbor:"2,keyasint"`
	Signatures []*StdSignature `cbor:"3,keyasint,omitempty"`
}

func (e *Envelope) Path() string {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.Path()
}

func (e *Envelope) Validate() error {
	if e.Payload == nil {
		return errors.Wrap(errors.ErrEmpty, "payload")
	}
	for i, s := range e.Signatures {
		if err := s.Validate(); err != nil {
			return errors.Wrapf(err, "signature %d", i)
		}
	}
	return e.Payload.Validate()
}

// GetMsg returns the wrapped message.
func (e *Envelope) GetMsg() swap.Msg {
	return e.Payload
}

func (e *Envelope) GetSignatures() []*StdSignature {
	return e.Signatures
}

// GetSignBytes returns the serialized path and payload.
func (e *Envelope) GetSignBytes() ([]byte, error) {
	w, err := e.wire()
	if err != nil {
		return nil, err
	}
	w.Signatures = nil
	return codec.Marshal(w)
}

func (e *Envelope) wire() (*envelopeWire, error) {
	if e.Payload == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "payload")
	}
	raw, err := e.Payload.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "payload")
	}
	return &envelopeWire{
		Path:       e.Payload.Path(),
		Payload:    raw,
		Signatures: e.Signatures,
	}, nil
}

func (e *Envelope) Marshal() ([]byte, error) {
	w, err := e.wire()
	if err != nil {
		return nil, err
	}
	return codec.Marshal(w)
}

// Unmarshal decodes the envelope. Payload must be set to an empty message
// of the expected type before calling this method.
func (e *Envelope) Unmarshal(b []byte) error {
	if e.Payload == nil {
		return errors.Wrap(errors.ErrHuman, "payload prototype required")
	}
	var w envelopeWire
	if err := codec.Unmarshal(b, &w); err != nil {
		return err
	}
	if w.Path != e.Payload.Path() {
		return errors.Wrapf(errors.ErrInvalidMsg, "path %q, expected %q", w.Path, e.Payload.Path())
	}
	if err := e.Payload.Unmarshal(w.Payload); err != nil {
		return errors.Wrap(err, "payload")
	}
	e.Signatures = w.Signatures
	return nil
}

// PeekPath returns the path of a serialized envelope without decoding its
// payload.
func PeekPath(b []byte) (string, error) {
	var w envelopeWire
	if err := codec.Unmarshal(b, &w); err != nil {
		return "", err
	}
	return w.Path, nil
}

// Sign appends a signature of signer for given chain and sequence.
func (e *Envelope) Sign(signer crypto.Signer, chainID string, seq int64) error {
	sig, err := SignTx(signer, e, chainID, seq)
	if err != nil {
		return err
	}
	e.Signatures = append(e.Signatures, sig)
	return nil
}
