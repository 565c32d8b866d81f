package escrow

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/iov-one/swap"
	"github.com/iov-one/swap/asset"
	"github.com/iov-one/swap/codec"
	"github.com/iov-one/swap/errors"
	"github.com/iov-one/swap/orm"
	"github.com/iov-one/swap/x/custody"
)

// Kind selects settlement and precondition rules of an escrow.
type Kind uint8

const (
	FullFill    Kind = 1
	PartialFill Kind = 2
	MultiAsset  Kind = 3
	TimeBoxed   Kind = 4
)

var kindNames = map[Kind]string{
	FullFill:    "full",
	PartialFill: "partial",
	MultiAsset:  "multi",
	TimeBoxed:   "timeboxed",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind returns the kind of given name.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, errors.Wrapf(errors.ErrInvalidInput, "unknown escrow kind %q", name)
}

// Validate returns an error if the kind is not known.
func (k Kind) Validate() error {
	if _, ok := kindNames[k]; !ok {
		return errors.Wrapf(errors.ErrInvalidInput, "unknown escrow kind %d", uint8(k))
	}
	return nil
}

// single returns true for kinds trading one asset for another.
func (k Kind) single() bool {
	return k != MultiAsset
}

const (
	// authorityTag is the extension name of every vault authority.
	authorityTag = "escrow"

	// maxBundleSize is the upper bound of any bundle length.
	maxBundleSize = 10

	keyLen = swap.AddressLength + 8
)

// Escrow is an open deal. A closed escrow does not exist in the store.
//
// For single asset kinds Offered and Expected hold exactly one entry. In a
// FullFill and TimeBoxed escrow the expected entry is the payment for the
// whole vault. In a PartialFill escrow the expected amount is the price of a
// single unit of the offered asset, Total is the deposited amount and
// Remaining what is left in the vault.
type Escrow struct {
	Kind      Kind          `cbor:"1,keyasint"`
	Maker     swap.Address  `cbor:"2,keyasint"`
	Seed      uint64        `cbor:"3,keyasint"`
	Offered   asset.Bundle  `cbor:"4,keyasint"`
	Expected  asset.Bundle  `cbor:"5,keyasint"`
	Total     uint64        `cbor:"6,keyasint"`
	Remaining uint64        `cbor:"7,keyasint"`
	ExpiresAt swap.UnixTime `cbor:"8,keyasint"`
	// Bump is the discriminant of the vault authority.
	Bump      uint8        `cbor:"9,keyasint"`
	Authority swap.Address `cbor:"10,keyasint"`
	// Deposit is the record storage deposit paid by the maker.
	Deposit uint64 `cbor:"11,keyasint"`
}

var _ orm.Model = (*Escrow)(nil)

func (e *Escrow) Marshal() ([]byte, error) { return codec.Marshal(e) }
func (e *Escrow) Unmarshal(b []byte) error { return codec.Unmarshal(b, e) }

// Validate ensures the escrow is consistent. A fulfilled partial escrow is
// not valid, it must be deleted instead.
func (e *Escrow) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Kind", e.Kind.Validate())
	errs = errors.AppendField(errs, "Maker", e.Maker.Validate())
	errs = errors.AppendField(errs, "Authority", e.Authority.Validate())
	errs = errors.AppendField(errs, "Offered", e.Offered.Validate(maxBundleSize))
	errs = errors.AppendField(errs, "Expected", e.Expected.Validate(maxBundleSize))
	if errs != nil {
		return errs
	}

	if e.Kind.single() && (len(e.Offered) != 1 || len(e.Expected) != 1) {
		return errors.Wrapf(errors.ErrInvalidInput, "%s escrow trades a single asset", e.Kind)
	}

	if e.Kind == PartialFill {
		if e.Total != e.Offered[0].Amount {
			errs = errors.AppendField(errs, "Total", errors.Wrap(errors.ErrInvalidState, "must equal the offered amount"))
		}
		if e.Remaining == 0 {
			errs = errors.AppendField(errs, "Remaining", errors.Wrap(errors.ErrInvalidState, "fulfilled escrow"))
		}
		if e.Remaining > e.Total {
			errs = errors.AppendField(errs, "Remaining", errors.Wrap(errors.ErrInvalidState, "greater than total"))
		}
	} else if e.Total != 0 || e.Remaining != 0 {
		errs = errors.AppendField(errs, "Remaining", errors.Wrapf(errors.ErrInvalidState, "not used by %s escrow", e.Kind))
	}

	if e.Kind == TimeBoxed {
		if e.ExpiresAt == 0 {
			errs = errors.AppendField(errs, "ExpiresAt", errors.Wrap(errors.ErrEmpty, "deadline required"))
		}
	} else if e.ExpiresAt != 0 {
		errs = errors.AppendField(errs, "ExpiresAt", errors.Wrapf(errors.ErrInvalidState, "not used by %s escrow", e.Kind))
	}
	return errs
}

// Vaults returns custody account addresses holding the offered assets, in
// the order of the offered bundle.
func (e *Escrow) Vaults() []swap.Address {
	res := make([]swap.Address, len(e.Offered))
	for i, o := range e.Offered {
		res[i] = custody.AccountAddress(e.Authority, o.Ticker)
	}
	return res
}

// Key returns the identifier of the escrow created by maker with given seed.
func Key(maker swap.Address, seed uint64) []byte {
	key := make([]byte, 0, len(maker)+8)
	key = append(key, maker...)
	var s [8]byte
	binary.BigEndian.PutUint64(s[:], seed)
	return append(key, s[:]...)
}

// SplitKey returns the maker and the seed encoded in the key.
func SplitKey(key []byte) (swap.Address, uint64, error) {
	if len(key) != keyLen {
		return nil, 0, errors.Wrapf(errors.ErrInvalidInput, "escrow id length %d", len(key))
	}
	return swap.Address(key[:swap.AddressLength]), binary.BigEndian.Uint64(key[swap.AddressLength:]), nil
}

// FormatID returns a human readable escrow identifier in the
// <maker>/<seed> format.
func FormatID(key []byte) string {
	maker, seed, err := SplitKey(key)
	if err != nil {
		return fmt.Sprintf("%X", key)
	}
	return fmt.Sprintf("%s/%d", maker, seed)
}

// ParseID parses an identifier created by FormatID and returns the key.
func ParseID(id string) ([]byte, error) {
	chunks := strings.SplitN(id, "/", 2)
	if len(chunks) != 2 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "escrow id %q, expected <maker>/<seed>", id)
	}
	maker, err := swap.ParseAddress(chunks[0])
	if err == nil {
		err = maker.Validate()
	}
	if err != nil {
		return nil, errors.Wrap(err, "maker")
	}
	seed, err := strconv.ParseUint(chunks[1], 10, 64)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "seed %q", chunks[1])
	}
	return Key(maker, seed), nil
}

// NewBucket returns a bucket storing escrows by key. Escrows are indexed by
// maker and by every offered asset.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket("escrow", &Escrow{},
		orm.WithIndex("maker", makerIndexer, false),
		orm.WithMultiKeyIndex("offered", offeredIndexer, false),
	)
}

func makerIndexer(m orm.Model) ([]byte, error) {
	e, ok := m.(*Escrow)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidType, "%T", m)
	}
	return e.Maker, nil
}

func offeredIndexer(m orm.Model) ([][]byte, error) {
	e, ok := m.(*Escrow)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidType, "%T", m)
	}
	keys := make([][]byte, len(e.Offered))
	for i, o := range e.Offered {
		keys[i] = []byte(o.Ticker)
	}
	return keys, nil
}
