package custody

import (
	"github.com/iov-one/swap"
	"github.com/iov-one/swap/asset"
	"github.com/iov-one/swap/codec"
	"github.com/iov-one/swap/errors"
	"github.com/iov-one/swap/orm"
)

// Mint describes an asset that can be held in custody accounts.
type Mint struct {
	Ticker   string `cbor:"1,keyasint"`
	Decimals uint8  `cbor:"2,keyasint"`
}

var _ orm.Model = (*Mint)(nil)

func (m *Mint) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *Mint) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }

func (m *Mint) Validate() error {
	var errs error
	if !asset.IsTicker(m.Ticker) {
		errs = errors.AppendField(errs, "Ticker", errors.Wrapf(errors.ErrInvalidInput, "invalid ticker %q", m.Ticker))
	}
	if m.Decimals > asset.MaxDecimals {
		errs = errors.AppendField(errs, "Decimals", errors.Wrapf(errors.ErrInvalidInput, "greater than %d", asset.MaxDecimals))
	}
	return errs
}

// Account holds a balance of a single asset on behalf of its owner.
type Account struct {
	Owner   swap.Address `cbor:"1,keyasint"`
	Ticker  string       `cbor:"2,keyasint"`
	Balance uint64       `cbor:"3,keyasint"`
	// Deposit is the storage deposit paid when the account was opened. It
	// is released when the account is closed.
	Deposit uint64 `cbor:"4,keyasint"`
}

var _ orm.Model = (*Account)(nil)

func (a *Account) Marshal() ([]byte, error) { return codec.Marshal(a) }
func (a *Account) Unmarshal(b []byte) error { return codec.Unmarshal(b, a) }

func (a *Account) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Owner", a.Owner.Validate())
	if !asset.IsTicker(a.Ticker) {
		errs = errors.AppendField(errs, "Ticker", errors.Wrapf(errors.ErrInvalidInput, "invalid ticker %q", a.Ticker))
	}
	return errs
}

// Address returns the address this account is stored under.
func (a *Account) Address() swap.Address {
	return AccountAddress(a.Owner, a.Ticker)
}

// AccountCondition returns the condition of the account associated with
// given owner and asset.
func AccountCondition(owner swap.Address, ticker string) swap.Condition {
	data := make([]byte, 0, len(owner)+len(ticker))
	data = append(data, owner...)
	data = append(data, ticker...)
	return swap.NewCondition("custody", "acct", data)
}

// AccountAddress returns the address of the account associated with given
// owner and asset.
func AccountAddress(owner swap.Address, ticker string) swap.Address {
	return AccountCondition(owner, ticker).Address()
}

// Reserve is the native balance of an identity, used to pay storage
// deposits.
type Reserve struct {
	Balance uint64 `cbor:"1,keyasint"`
}

var _ orm.Model = (*Reserve)(nil)

func (r *Reserve) Marshal() ([]byte, error) { return codec.Marshal(r) }
func (r *Reserve) Unmarshal(b []byte) error { return codec.Unmarshal(b, r) }
func (r *Reserve) Validate() error          { return nil }

// NewMintBucket returns a bucket storing mints by ticker.
func NewMintBucket() orm.ModelBucket {
	return orm.NewModelBucket("mint", &Mint{})
}

// NewAccountBucket returns a bucket storing custody accounts by address.
// Accounts are indexed by owner and by ticker.
func NewAccountBucket() orm.ModelBucket {
	return orm.NewModelBucket("acct", &Account{},
		orm.WithIndex("owner", accountOwnerIndexer, false),
		orm.WithIndex("ticker", accountTickerIndexer, false),
	)
}

// NewReserveBucket returns a bucket storing reserves by owner address.
func NewReserveBucket() orm.ModelBucket {
	return orm.NewModelBucket("reserve", &Reserve{})
}

func accountOwnerIndexer(m orm.Model) ([]byte, error) {
	a, ok := m.(*Account)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidType, "%T", m)
	}
	return a.Owner, nil
}

func accountTickerIndexer(m orm.Model) ([]byte, error) {
	a, ok := m.(*Account)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidType, "%T", m)
	}
	return []byte(a.Ticker), nil
}
