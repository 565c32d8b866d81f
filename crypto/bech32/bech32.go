// Package bech32 converts addresses to and from their bech32 form. Only a
// single human readable prefix is accepted when decoding.
package bech32

import (
	"github.com/btcsuite/btcutil/bech32"
	"github.com/iov-one/swap/errors"
)

// Encode returns the bech32 text of payload under the given prefix.
func Encode(prefix string, payload []byte) (string, error) {
	if prefix == "" {
		return "", errors.Wrap(errors.ErrEmpty, "bech32 prefix")
	}
	words, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInvalidInput, "convert bits: %s", err)
	}
	text, err := bech32.Encode(prefix, words)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInvalidInput, "bech32 encode: %s", err)
	}
	return text, nil
}

// Decode returns the payload of text. A text carrying any other prefix than
// the one given is rejected.
func Decode(prefix, text string) ([]byte, error) {
	got, words, err := bech32.Decode(text)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "bech32 decode: %s", err)
	}
	if got != prefix {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "bech32 prefix %q, want %q", got, prefix)
	}
	payload, err := bech32.ConvertBits(words, 5, 8, false)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "convert bits: %s", err)
	}
	return payload, nil
}
