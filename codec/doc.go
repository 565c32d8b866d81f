/*
Package codec is the binary serialization used for everything persisted in
the store and for messages passed to the ledger.

Encoding is CBOR with Core Deterministic Encoding: sorted map keys, smallest
integer encoding, no indefinite-length items. Same logical data always
produces identical bytes, so serialized models can be hashed and compared.

Models declare integer keys for their fields:

  type Mint struct {
      Ticker   string `cbor:"1,keyasint"`
      Decimals uint8  `cbor:"2,keyasint"`
  }

and implement swap.Persistent by calling Marshal and Unmarshal from here.
*/
package codec
