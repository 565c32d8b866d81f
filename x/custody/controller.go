package custody

import (
	"github.com/iov-one/swap"
	"github.com/iov-one/swap/asset"
	"github.com/iov-one/swap/errors"
	"github.com/iov-one/swap/orm"
)

// Controller is the custodian. It owns all mints, accounts and reserves.
type Controller struct {
	mints    orm.ModelBucket
	accounts orm.ModelBucket
	reserves orm.ModelBucket
}

// NewController returns a controller using the default buckets.
func NewController() *Controller {
	return &Controller{
		mints:    NewMintBucket(),
		accounts: NewAccountBucket(),
		reserves: NewReserveBucket(),
	}
}

// RegisterMint declares a new asset. An asset cannot be redeclared.
func (c *Controller) RegisterMint(db swap.KVStore, ticker string, decimals uint8) error {
	switch err := c.mints.Has(db, []byte(ticker)); {
	case err == nil:
		return errors.Wrapf(errors.ErrDuplicate, "mint %s", ticker)
	case !errors.ErrNotFound.Is(err):
		return err
	}
	m := Mint{Ticker: ticker, Decimals: decimals}
	if err := c.mints.Put(db, []byte(ticker), &m); err != nil {
		return errors.Wrap(err, "save mint")
	}
	return nil
}

// Mint returns the mint of given asset.
func (c *Controller) Mint(db swap.ReadOnlyKVStore, ticker string) (*Mint, error) {
	var m Mint
	if err := c.mints.One(db, []byte(ticker), &m); err != nil {
		return nil, errors.Wrapf(err, "mint %s", ticker)
	}
	return &m, nil
}

// Decimals returns the fixed point scale of given asset.
func (c *Controller) Decimals(db swap.ReadOnlyKVStore, ticker string) (uint8, error) {
	m, err := c.Mint(db, ticker)
	if err != nil {
		return 0, err
	}
	return m.Decimals, nil
}

// Account returns the account stored under given address.
func (c *Controller) Account(db swap.ReadOnlyKVStore, addr swap.Address) (*Account, error) {
	var a Account
	if err := c.accounts.One(db, addr, &a); err != nil {
		return nil, errors.Wrapf(err, "account %s", addr)
	}
	return &a, nil
}

// HasAccount returns true if an account exists under given address.
func (c *Controller) HasAccount(db swap.ReadOnlyKVStore, addr swap.Address) (bool, error) {
	switch err := c.accounts.Has(db, addr); {
	case err == nil:
		return true, nil
	case errors.ErrNotFound.Is(err):
		return false, nil
	default:
		return false, err
	}
}

// Balance returns the current balance of an account.
func (c *Controller) Balance(db swap.ReadOnlyKVStore, addr swap.Address) (uint64, error) {
	a, err := c.Account(db, addr)
	if err != nil {
		return 0, err
	}
	return a.Balance, nil
}

// AccountsOf returns all accounts of given owner.
func (c *Controller) AccountsOf(db swap.ReadOnlyKVStore, owner swap.Address) ([]*Account, error) {
	it, err := c.accounts.IndexScan(db, "owner", owner)
	if err != nil {
		return nil, err
	}
	_, models, err := orm.ToSlice(it, &Account{})
	if err != nil {
		return nil, err
	}
	res := make([]*Account, len(models))
	for i, m := range models {
		res[i] = m.(*Account)
	}
	return res, nil
}

// CreateAccount opens the account associated with owner and ticker. The
// configured storage deposit is charged from the payer reserve. It fails
// with ErrDuplicate if the account already exists.
func (c *Controller) CreateAccount(db swap.KVStore, owner swap.Address, ticker string, payer swap.Address) (swap.Address, error) {
	if err := owner.Validate(); err != nil {
		return nil, errors.Wrap(err, "owner")
	}
	if _, err := c.Mint(db, ticker); err != nil {
		return nil, err
	}
	addr := AccountAddress(owner, ticker)
	switch ok, err := c.HasAccount(db, addr); {
	case err != nil:
		return nil, err
	case ok:
		return nil, errors.Wrapf(errors.ErrDuplicate, "account %s", addr)
	}

	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	if conf.AccountDeposit > 0 {
		if err := c.Charge(db, payer, conf.AccountDeposit); err != nil {
			return nil, errors.Wrap(err, "account deposit")
		}
	}

	return c.open(db, owner, ticker, conf.AccountDeposit)
}

func (c *Controller) open(db swap.KVStore, owner swap.Address, ticker string, deposit uint64) (swap.Address, error) {
	addr := AccountAddress(owner, ticker)
	acc := Account{Owner: owner, Ticker: ticker, Deposit: deposit}
	if err := c.accounts.Put(db, addr, &acc); err != nil {
		return nil, errors.Wrap(err, "save account")
	}
	return addr, nil
}

// EnsureAccount returns the address of the account associated with owner
// and ticker, creating it first if it does not exist.
func (c *Controller) EnsureAccount(db swap.KVStore, owner swap.Address, ticker string, payer swap.Address) (swap.Address, error) {
	addr := AccountAddress(owner, ticker)
	ok, err := c.HasAccount(db, addr)
	if err != nil {
		return nil, err
	}
	if ok {
		return addr, nil
	}
	return c.CreateAccount(db, owner, ticker, payer)
}

// TransferChecked works like Transfer but additionally requires the caller
// to declare the asset decimal scale. A scale different from the mint one
// fails with ErrAssetMismatch.
func (c *Controller) TransferChecked(ctx swap.Context, db swap.KVStore, ticker string, decimals uint8, from, to swap.Address, amount uint64, auth Authority) error {
	want, err := c.Decimals(db, ticker)
	if err != nil {
		return err
	}
	if want != decimals {
		return errors.Wrapf(errors.ErrAssetMismatch, "%s has %d decimals, not %d", ticker, want, decimals)
	}
	return c.Transfer(ctx, db, ticker, from, to, amount, auth)
}

// Transfer moves amount of ticker between two accounts. Both accounts must
// hold given asset and auth must authorize the source account owner.
func (c *Controller) Transfer(ctx swap.Context, db swap.KVStore, ticker string, from, to swap.Address, amount uint64, auth Authority) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrInvalidAmount, "must be greater than zero")
	}
	src, err := c.Account(db, from)
	if err != nil {
		return errors.Wrap(err, "source")
	}
	if src.Ticker != ticker {
		return errors.Wrapf(errors.ErrAssetMismatch, "source holds %s, not %s", src.Ticker, ticker)
	}
	if auth == nil || !auth.Authorizes(ctx, src.Owner) {
		return errors.Wrap(errors.ErrUnauthorized, "source owner authorization required")
	}
	dst, err := c.Account(db, to)
	if err != nil {
		return errors.Wrap(err, "destination")
	}
	if dst.Ticker != ticker {
		return errors.Wrapf(errors.ErrAssetMismatch, "destination holds %s, not %s", dst.Ticker, ticker)
	}
	if src.Balance < amount {
		return errors.Wrapf(errors.ErrInsufficientAmount, "balance %d, requested %d", src.Balance, amount)
	}
	if from.Equals(to) {
		return nil
	}

	if src.Balance, err = asset.Sub(src.Balance, amount); err != nil {
		return err
	}
	if dst.Balance, err = asset.Add(dst.Balance, amount); err != nil {
		return err
	}
	if err := c.accounts.Put(db, from, src); err != nil {
		return errors.Wrap(err, "save source")
	}
	if err := c.accounts.Put(db, to, dst); err != nil {
		return errors.Wrap(err, "save destination")
	}
	return nil
}

// CloseAndReclaim closes an account. Its whole balance is moved to the
// destination account and the storage deposit is released to the
// destination owner reserve. It returns the moved balance.
func (c *Controller) CloseAndReclaim(ctx swap.Context, db swap.KVStore, account, destination swap.Address, auth Authority) (uint64, error) {
	acc, err := c.Account(db, account)
	if err != nil {
		return 0, err
	}
	if auth == nil || !auth.Authorizes(ctx, acc.Owner) {
		return 0, errors.Wrap(errors.ErrUnauthorized, "account owner authorization required")
	}
	if account.Equals(destination) {
		return 0, errors.Wrap(errors.ErrInvalidInput, "cannot close into itself")
	}
	dst, err := c.Account(db, destination)
	if err != nil {
		return 0, errors.Wrap(err, "destination")
	}
	if dst.Ticker != acc.Ticker {
		return 0, errors.Wrapf(errors.ErrAssetMismatch, "destination holds %s, not %s", dst.Ticker, acc.Ticker)
	}

	moved := acc.Balance
	if dst.Balance, err = asset.Add(dst.Balance, moved); err != nil {
		return 0, err
	}
	if err := c.accounts.Put(db, destination, dst); err != nil {
		return 0, errors.Wrap(err, "save destination")
	}
	if acc.Deposit > 0 {
		if err := c.Fund(db, dst.Owner, acc.Deposit); err != nil {
			return 0, errors.Wrap(err, "release deposit")
		}
	}
	if err := c.accounts.Delete(db, account); err != nil {
		return 0, errors.Wrap(err, "delete account")
	}
	return moved, nil
}

// Issue creates new units of an asset in given account. It is used by the
// genesis and tests only.
func (c *Controller) Issue(db swap.KVStore, addr swap.Address, amount uint64) error {
	acc, err := c.Account(db, addr)
	if err != nil {
		return err
	}
	if acc.Balance, err = asset.Add(acc.Balance, amount); err != nil {
		return err
	}
	return c.accounts.Put(db, addr, acc)
}

// Reserve returns the native reserve of given owner. A missing reserve is
// empty.
func (c *Controller) Reserve(db swap.ReadOnlyKVStore, owner swap.Address) (uint64, error) {
	var r Reserve
	switch err := c.reserves.One(db, owner, &r); {
	case err == nil:
		return r.Balance, nil
	case errors.ErrNotFound.Is(err):
		return 0, nil
	default:
		return 0, err
	}
}

// Fund increases the reserve of given owner.
func (c *Controller) Fund(db swap.KVStore, owner swap.Address, amount uint64) error {
	if err := owner.Validate(); err != nil {
		return errors.Wrap(err, "reserve owner")
	}
	balance, err := c.Reserve(db, owner)
	if err != nil {
		return err
	}
	if balance, err = asset.Add(balance, amount); err != nil {
		return err
	}
	return c.reserves.Put(db, owner, &Reserve{Balance: balance})
}

// Charge decreases the reserve of given owner. It fails with
// ErrInsufficientAmount if the reserve is too small.
func (c *Controller) Charge(db swap.KVStore, owner swap.Address, amount uint64) error {
	if len(owner) == 0 {
		return errors.Wrap(errors.ErrEmpty, "payer")
	}
	balance, err := c.Reserve(db, owner)
	if err != nil {
		return err
	}
	if balance < amount {
		return errors.Wrapf(errors.ErrInsufficientAmount, "reserve %d, required %d", balance, amount)
	}
	return c.reserves.Put(db, owner, &Reserve{Balance: balance - amount})
}
