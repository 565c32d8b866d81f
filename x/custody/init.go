package custody

import (
	"github.com/iov-one/swap"
	"github.com/iov-one/swap/asset"
	"github.com/iov-one/swap/errors"
	"github.com/iov-one/swap/gconf"
)

const optKey = "custody"

// Genesis is the custody section of the genesis file.
type Genesis struct {
	Mints    []GenesisMint    `json:"mints"`
	Reserves []GenesisReserve `json:"reserves"`
	Accounts []GenesisAccount `json:"accounts"`
}

type GenesisMint struct {
	Ticker   string `json:"ticker"`
	Decimals uint8  `json:"decimals"`
}

type GenesisReserve struct {
	Owner  swap.Address `json:"owner"`
	Amount uint64       `json:"amount"`
}

// GenesisAccount is an account funded at genesis. No storage deposit is
// charged for it.
type GenesisAccount struct {
	Owner   swap.Address `json:"owner"`
	Balance asset.Entry  `json:"balance"`
}

// Initializer fulfils the Initializer interface to load data from the
// genesis file.
type Initializer struct{}

var _ swap.Initializer = Initializer{}

// FromGenesis will parse initial mints, reserves and accounts from genesis
// and save them to the database.
func (Initializer) FromGenesis(opts swap.Options, db swap.KVStore) error {
	var conf Configuration
	switch err := gconf.InitConfig(db, opts, confPkg, &conf); {
	case err == nil, errors.ErrNotFound.Is(err):
	default:
		return errors.Wrap(err, "init configuration")
	}

	var gen Genesis
	if err := opts.ReadOptions(optKey, &gen); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}

	ctrl := NewController()
	for i, m := range gen.Mints {
		if err := ctrl.RegisterMint(db, m.Ticker, m.Decimals); err != nil {
			return errors.Wrapf(err, "mint #%d", i)
		}
	}
	for i, r := range gen.Reserves {
		if err := ctrl.Fund(db, r.Owner, r.Amount); err != nil {
			return errors.Wrapf(err, "reserve #%d", i)
		}
	}
	for i, a := range gen.Accounts {
		if err := a.Owner.Validate(); err != nil {
			return errors.Wrapf(err, "account #%d owner", i)
		}
		if _, err := ctrl.Mint(db, a.Balance.Ticker); err != nil {
			return errors.Wrapf(err, "account #%d", i)
		}
		addr := AccountAddress(a.Owner, a.Balance.Ticker)
		if ok, err := ctrl.HasAccount(db, addr); err != nil {
			return err
		} else if !ok {
			if _, err := ctrl.open(db, a.Owner, a.Balance.Ticker, 0); err != nil {
				return errors.Wrapf(err, "account #%d", i)
			}
		}
		if err := ctrl.Issue(db, addr, a.Balance.Amount); err != nil {
			return errors.Wrapf(err, "account #%d", i)
		}
	}
	return nil
}
