package custody

import (
	"github.com/iov-one/swap"
	"github.com/iov-one/swap/errors"
)

// Custodian is the set of custody operations the Executor relies on.
type Custodian interface {
	Decimals(db swap.ReadOnlyKVStore, ticker string) (uint8, error)
	Account(db swap.ReadOnlyKVStore, addr swap.Address) (*Account, error)
	Balance(db swap.ReadOnlyKVStore, addr swap.Address) (uint64, error)
	CreateAccount(db swap.KVStore, owner swap.Address, ticker string, payer swap.Address) (swap.Address, error)
	EnsureAccount(db swap.KVStore, owner swap.Address, ticker string, payer swap.Address) (swap.Address, error)
	TransferChecked(ctx swap.Context, db swap.KVStore, ticker string, decimals uint8, from, to swap.Address, amount uint64, auth Authority) error
	CloseAndReclaim(ctx swap.Context, db swap.KVStore, account, destination swap.Address, auth Authority) (uint64, error)
	Charge(db swap.KVStore, owner swap.Address, amount uint64) error
	Fund(db swap.KVStore, owner swap.Address, amount uint64) error
}

var _ Custodian = (*Controller)(nil)

// Executor issues verified transfer and close requests to the custodian.
type Executor struct {
	custodian Custodian
}

// NewExecutor returns an executor using given custodian.
func NewExecutor(c Custodian) *Executor {
	return &Executor{custodian: c}
}

// Transfer moves exactly amount of ticker from one account to another. The
// asset scale is read from the mint and declared with the request.
func (e *Executor) Transfer(ctx swap.Context, db swap.KVStore, ticker string, from, to swap.Address, amount uint64, auth Authority) error {
	decimals, err := e.custodian.Decimals(db, ticker)
	if err != nil {
		return errors.Wrap(err, "decimals")
	}
	if err := e.custodian.TransferChecked(ctx, db, ticker, decimals, from, to, amount, auth); err != nil {
		return err
	}
	swap.GetLogger(ctx).Debug("transfer",
		"ticker", ticker, "decimals", decimals, "from", from, "to", to, "amount", amount)
	return nil
}

// CloseAndReclaim closes account moving its whole balance and storage
// deposit to destination. The destination account is created if missing,
// paid by payer. It returns the moved balance.
func (e *Executor) CloseAndReclaim(ctx swap.Context, db swap.KVStore, account, destinationOwner, payer swap.Address, auth Authority) (uint64, error) {
	acc, err := e.custodian.Account(db, account)
	if err != nil {
		return 0, err
	}
	dest, err := e.custodian.EnsureAccount(db, destinationOwner, acc.Ticker, payer)
	if err != nil {
		return 0, errors.Wrap(err, "destination account")
	}
	moved, err := e.custodian.CloseAndReclaim(ctx, db, account, dest, auth)
	if err != nil {
		return 0, err
	}
	swap.GetLogger(ctx).Debug("close",
		"account", account, "ticker", acc.Ticker, "destination", dest, "amount", moved)
	return moved, nil
}

// Account returns the account under given address.
func (e *Executor) Account(db swap.ReadOnlyKVStore, addr swap.Address) (*Account, error) {
	return e.custodian.Account(db, addr)
}

// Balance returns the balance of an account.
func (e *Executor) Balance(db swap.ReadOnlyKVStore, addr swap.Address) (uint64, error) {
	return e.custodian.Balance(db, addr)
}

// CreateAccount opens a new account. It fails if the account exists.
func (e *Executor) CreateAccount(db swap.KVStore, owner swap.Address, ticker string, payer swap.Address) (swap.Address, error) {
	return e.custodian.CreateAccount(db, owner, ticker, payer)
}

// EnsureAccount returns the account of owner, creating it if needed.
func (e *Executor) EnsureAccount(db swap.KVStore, owner swap.Address, ticker string, payer swap.Address) (swap.Address, error) {
	return e.custodian.EnsureAccount(db, owner, ticker, payer)
}

// Lock charges a storage deposit from the reserve of payer. Zero amount is
// a no-op.
func (e *Executor) Lock(db swap.KVStore, payer swap.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	return e.custodian.Charge(db, payer, amount)
}

// Unlock releases a storage deposit to the reserve of beneficiary.
func (e *Executor) Unlock(db swap.KVStore, beneficiary swap.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	return e.custodian.Fund(db, beneficiary, amount)
}

// Decimals returns the scale of given asset.
func (e *Executor) Decimals(db swap.ReadOnlyKVStore, ticker string) (uint8, error) {
	return e.custodian.Decimals(db, ticker)
}
